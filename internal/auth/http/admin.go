package http

import (
	"net/http"

	"github.com/arolux/auth-service/internal/auth/domain"
	"github.com/arolux/auth-service/internal/auth/service"
	"github.com/arolux/auth-service/pkg/httpx"
)

// AdminHandler serves the back-office endpoints.
type AdminHandler struct {
	Admins *service.AdminService

	errorSink
}

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an admin. The route wraps this in DecryptBody, so the
// credentials arrive RSA-encrypted from the dashboard.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.Admins.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Login successful", adminSessionView{
		AccessToken:  sess.Tokens.AccessToken,
		RefreshToken: sess.Tokens.RefreshToken,
		Admin:        newAdminView(sess.Admin),
	})
}

// Logout records the admin sign-out.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	h.Admins.Logout(r.Context(), p.ID)
	httpx.OK(w, http.StatusOK, "Logged out", nil)
}

// Profile returns the session's admin account.
func (h *AdminHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())

	admin, err := h.Admins.Profile(r.Context(), p.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Profile fetched", newAdminView(admin))
}

type createAccountRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=20"`
	Password    string `json:"password" validate:"required"`
	AdminType   string `json:"adminType" validate:"required"`
}

// CreateAccount provisions a new admin. Super-admin only, enforced on the
// route.
func (h *AdminHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	role, err := domain.ParseAdminRole(req.AdminType)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid value for field 'adminType'")
		return
	}

	p, _ := PrincipalFromContext(r.Context())
	admin, err := h.Admins.CreateAccount(r.Context(), p.ID, service.CreateAccountParams{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Role:        role,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusCreated, "Admin account created", newAdminView(admin))
}

type adminPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required"`
}

// UpdatePassword sets a new password on the addressed admin account.
func (h *AdminHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req adminPasswordRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	p, _ := PrincipalFromContext(r.Context())
	if err := h.Admins.UpdatePassword(r.Context(), p.ID, r.PathValue("adminId"), req.NewPassword); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Password updated", nil)
}

type statusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// UpdateStatus toggles the addressed admin account.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	p, _ := PrincipalFromContext(r.Context())
	if err := h.Admins.UpdateStatus(r.Context(), p.ID, r.PathValue("adminId"), *req.IsActive); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Status updated", nil)
}

// ListAccounts returns every admin account.
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	admins, err := h.Admins.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	views := make([]adminView, 0, len(admins))
	for _, a := range admins {
		views = append(views, newAdminView(a))
	}
	httpx.OK(w, http.StatusOK, "Accounts fetched", views)
}

// GetAccount returns a single admin account.
func (h *AdminHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	admin, err := h.Admins.Get(r.Context(), r.PathValue("adminId"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Account fetched", newAdminView(admin))
}

// UserLoginToken mints a user session on the admin's behalf. The returned
// pair is marked with the admin's id, so user-side guards can restrict it.
func (h *AdminHandler) UserLoginToken(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())

	sess, err := h.Admins.ImpersonateUser(r.Context(), p.ID, r.PathValue("userId"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Login token issued", newSessionView(sess.User, sess.Tokens))
}

// UpdateUserStatus activates or deactivates a user account.
func (h *AdminHandler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	p, _ := PrincipalFromContext(r.Context())
	if err := h.Admins.SetUserStatus(r.Context(), p.ID, r.PathValue("userId"), *req.IsActive); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httpx.OK(w, http.StatusOK, "User status updated", nil)
}
