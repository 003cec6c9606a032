package http

import (
	"net/http"

	"github.com/arolux/auth-service/pkg/httpx"
)

type sessionInfoView struct {
	ID      string `json:"_id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Kind    string `json:"kind"`
	Role    string `json:"adminType,omitempty"`
	LoginAs string `json:"loginAs"`
	AdminID string `json:"adminId,omitempty"`
}

// SessionHandler reports the principal the presented token resolved to.
// Works for user and admin tokens alike; clients use it to validate a
// stored token before restoring a session.
func SessionHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	loginAs := p.LoginAs
	if loginAs == "" {
		loginAs = p.Kind
	}
	httpx.OK(w, http.StatusOK, "Session fetched", sessionInfoView{
		ID:      p.ID,
		Email:   p.Email,
		Name:    p.Name,
		Kind:    p.Kind,
		Role:    p.Role.String(),
		LoginAs: loginAs,
		AdminID: p.AdminID,
	})
}
