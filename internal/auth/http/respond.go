package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/arolux/auth-service/internal/auth/domain"
	"github.com/arolux/auth-service/internal/auth/service"
	"github.com/arolux/auth-service/pkg/httpx"
	"github.com/arolux/auth-service/pkg/jwtx"
	"github.com/arolux/auth-service/pkg/slogx"
)

// errorSink maps service errors onto the envelope. Unexpected errors become
// a generic 500 and are recorded in the error log; the real error never
// reaches the client.
type errorSink struct {
	audit *service.AuditService
}

func (s errorSink) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.Fail(w, http.StatusBadRequest, "Invalid email or password")
	case errors.Is(err, service.ErrInvalidToken):
		httpx.Fail(w, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, service.ErrDeactivated):
		httpx.Fail(w, http.StatusUnauthorized, "Account is deactivated")
	case errors.Is(err, service.ErrCodeMismatch):
		httpx.Fail(w, http.StatusBadRequest, "Invalid verification code")
	case errors.Is(err, service.ErrCodeExpired):
		httpx.Fail(w, http.StatusBadRequest, "Verification code has expired")
	case errors.Is(err, service.ErrTooSoon):
		httpx.Fail(w, http.StatusBadRequest, "Please wait before requesting another email")
	case errors.Is(err, service.ErrWeakPassword):
		httpx.Fail(w, http.StatusBadRequest,
			"Password must be at least 8 characters and contain upper, lower, digit and symbol characters")
	case errors.Is(err, service.ErrAlreadyVerified):
		httpx.Fail(w, http.StatusBadRequest, "Email is already verified")
	case errors.Is(err, service.ErrNotFound):
		httpx.Fail(w, http.StatusBadRequest, "Account not found")
	case errors.Is(err, service.ErrDuplicateEmail):
		httpx.Fail(w, http.StatusConflict, "An account with same email already exists")
	case errors.Is(err, service.ErrDuplicatePhone):
		httpx.Fail(w, http.StatusConflict, "An account with same phone number already exists")
	case errors.Is(err, service.ErrNotAuthorized):
		httpx.Fail(w, http.StatusForbidden, "Not authorized.")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		s.recordError(r, err)
		httpx.Fail(w, http.StatusInternalServerError, "Something went wrong")
	}
}

// recordError files an error-log entry for an unexpected failure, tagged
// with the route and the acting principal when one is attached.
func (s errorSink) recordError(r *http.Request, err error) {
	if s.audit == nil {
		return
	}

	detail := r.Method + " " + r.URL.Path
	if p, ok := PrincipalFromContext(r.Context()); ok {
		detail += " actor=" + p.ID
		if p.AdminID != "" {
			detail += " admin=" + p.AdminID
		}
	}
	s.audit.Error(r.URL.Path, err.Error(), detail)
}

// userView is the wire shape for a user account. The password hash and all
// token columns stay server-side.
type userView struct {
	ID              string     `json:"_id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	CountryCode     string     `json:"countryCode,omitempty"`
	PhoneNumber     string     `json:"phoneNumber,omitempty"`
	DeviceType      string     `json:"deviceType,omitempty"`
	Status          string     `json:"status"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	IsPhoneVerified bool       `json:"isPhoneVerified"`
	LastLoginTime   *time.Time `json:"lastLoginTime,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func newUserView(u domain.User) userView {
	return userView{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		CountryCode:     u.CountryCode,
		PhoneNumber:     u.PhoneNumber,
		DeviceType:      u.DeviceType,
		Status:          u.Status,
		IsEmailVerified: u.IsEmailVerified,
		IsPhoneVerified: u.IsPhoneVerified,
		LastLoginTime:   u.LastLoginTime,
		CreatedAt:       u.CreatedAt,
	}
}

type adminView struct {
	ID            string           `json:"_id"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	PhoneNumber   string           `json:"phoneNumber,omitempty"`
	Role          domain.AdminRole `json:"adminType"`
	IsActive      bool             `json:"isActive"`
	CreatedBy     string           `json:"createdBy,omitempty"`
	LastLoginTime *time.Time       `json:"lastLoginTime,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func newAdminView(a domain.Admin) adminView {
	return adminView{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		PhoneNumber:   a.PhoneNumber,
		Role:          a.Role,
		IsActive:      a.IsActive,
		CreatedBy:     a.CreatedBy,
		LastLoginTime: a.LastLoginTime,
		CreatedAt:     a.CreatedAt,
	}
}

// sessionView is what login-shaped endpoints return in data.
type sessionView struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         userView `json:"user"`
}

func newSessionView(u domain.User, tokens jwtx.SessionPair) sessionView {
	return sessionView{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         newUserView(u),
	}
}

type adminSessionView struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	Admin        adminView `json:"admin"`
}
