package http

import (
	"net/http"

	"github.com/arolux/auth-service/internal/auth/service"
	"github.com/arolux/auth-service/pkg/httpx"
)

// UserHandler serves the user-facing authentication endpoints.
type UserHandler struct {
	Users *service.UserService
	OTP   *service.OTPService

	errorSink
}

type sendLoginVerificationRequest struct {
	CountryCode string `json:"countryCode" validate:"required,countrycode"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phonenum"`
}

// SendLoginVerification issues an SMS code for phone login or signup.
func (h *UserHandler) SendLoginVerification(w http.ResponseWriter, r *http.Request) {
	var req sendLoginVerificationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.OTP.RequestPhoneCode(r.Context(), req.CountryCode, req.PhoneNumber); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Verification code sent", nil)
}

type verifyLoginVerificationRequest struct {
	CountryCode      string `json:"countryCode" validate:"required,countrycode"`
	PhoneNumber      string `json:"phoneNumber" validate:"required,phonenum"`
	VerificationCode string `json:"verificationCode" validate:"required,len=4,numeric"`
}

type verifyLoginVerificationResponse struct {
	IsNewUser    bool      `json:"isNewUser"`
	AccessToken  string    `json:"accessToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	User         *userView `json:"user,omitempty"`
}

// VerifyLoginVerification checks the SMS code. Known numbers get a session;
// unknown ones get isNewUser back and must call sign-up.
func (h *UserHandler) VerifyLoginVerification(w http.ResponseWriter, r *http.Request) {
	var req verifyLoginVerificationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Users.VerifyPhoneLogin(r.Context(), req.CountryCode, req.PhoneNumber, req.VerificationCode)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if res.IsNewUser {
		httpx.OK(w, http.StatusOK, "Verification successful", verifyLoginVerificationResponse{IsNewUser: true})
		return
	}

	view := newUserView(res.Session.User)
	httpx.OK(w, http.StatusOK, "Login successful", verifyLoginVerificationResponse{
		AccessToken:  res.Session.Tokens.AccessToken,
		RefreshToken: res.Session.Tokens.RefreshToken,
		User:         &view,
	})
}

type phoneSignupRequest struct {
	FirstName        string `json:"firstName" validate:"required,max=64"`
	LastName         string `json:"lastName" validate:"omitempty,max=64"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required"`
	CountryCode      string `json:"countryCode" validate:"required,countrycode"`
	PhoneNumber      string `json:"phoneNumber" validate:"required,phonenum"`
	VerificationCode string `json:"verificationCode" validate:"required,len=4,numeric"`
	DeviceType       string `json:"deviceType" validate:"omitempty,oneof=android ios"`
	DeviceToken      string `json:"deviceToken" validate:"omitempty,max=512"`
}

// PhoneSignup completes registration for a phone number that just passed
// verification.
func (h *UserHandler) PhoneSignup(w http.ResponseWriter, r *http.Request) {
	var req phoneSignupRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.Users.SignupPhone(r.Context(), service.SignupParams{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Password:         req.Password,
		CountryCode:      req.CountryCode,
		PhoneNumber:      req.PhoneNumber,
		VerificationCode: req.VerificationCode,
		DeviceType:       req.DeviceType,
		DeviceToken:      req.DeviceToken,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusCreated, "Account created", newSessionView(sess.User, sess.Tokens))
}

type emailSignupRequest struct {
	FirstName   string `json:"firstName" validate:"required,max=64"`
	LastName    string `json:"lastName" validate:"omitempty,max=64"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DeviceType  string `json:"deviceType" validate:"omitempty,oneof=android ios"`
	DeviceToken string `json:"deviceToken" validate:"omitempty,max=512"`
}

// EmailSignup registers an account by email and password.
func (h *UserHandler) EmailSignup(w http.ResponseWriter, r *http.Request) {
	var req emailSignupRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.Users.SignupEmail(r.Context(), service.SignupParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		DeviceType:  req.DeviceType,
		DeviceToken: req.DeviceToken,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusCreated, "Account created", newSessionView(sess.User, sess.Tokens))
}

type loginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DeviceType  string `json:"deviceType" validate:"omitempty,oneof=android ios"`
	DeviceToken string `json:"deviceToken" validate:"omitempty,max=512"`
}

// Login authenticates by email and password.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.Users.Login(r.Context(), req.Email, req.Password, req.DeviceType, req.DeviceToken)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Login successful", newSessionView(sess.User, sess.Tokens))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Token exchanges a refresh token for a fresh session pair.
func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.Users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Token refreshed", newSessionView(sess.User, sess.Tokens))
}

// Logout records the sign-out for the session's account.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	h.Users.Logout(r.Context(), p.ID, p.AdminID)
	httpx.OK(w, http.StatusOK, "Logged out", nil)
}

// Profile returns the session's account.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())

	user, err := h.Users.Profile(r.Context(), p.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Profile fetched", newUserView(user))
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ChangePassword swaps the account password. Impersonating admins are kept
// out by the NoImpersonation middleware on the route.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	p, _ := PrincipalFromContext(r.Context())
	if err := h.Users.ChangePassword(r.Context(), p.ID, req.OldPassword, req.NewPassword); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Password changed", nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword starts the email recovery flow.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Users.ForgotPassword(r.Context(), req.Email); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Password recovery email sent", nil)
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ResetPassword finishes the recovery flow with the emailed token.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Users.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Password reset", nil)
}

// SendEmailVerification re-issues the verification email for the session's
// account, subject to the configured cooldown.
func (h *UserHandler) SendEmailVerification(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())

	if err := h.Users.SendEmailVerification(r.Context(), p.ID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Verification email sent", nil)
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// VerifyEmail consumes an emailed verification token. Public: the click
// arrives without a session.
func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Users.VerifyEmail(r.Context(), req.Token); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Email verified", nil)
}
