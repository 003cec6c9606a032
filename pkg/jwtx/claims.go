package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// IdentityType distinguishes the two principal collections a token can
// resolve against.
const (
	TypeUser  = ""
	TypeAdmin = "admin"
)

// Identity is what a caller proves about themselves when a token verifies.
type Identity struct {
	// ID of the user or admin account the token was issued for.
	ID string

	// Email recorded at issuance. Verification re-checks the account still
	// exists under this exact id+email pair, so a changed address invalidates
	// outstanding tokens.
	Email string

	// Type is "admin" for admin sessions, empty for user sessions.
	Type string

	// AdminID is set when an admin obtained a user session on the user's
	// behalf. It records who is really driving the session.
	AdminID string
}

// IsAdmin reports whether the token belongs to an admin session.
func (id Identity) IsAdmin() bool { return id.Type == TypeAdmin }

// Impersonated reports whether an admin minted this user session.
func (id Identity) Impersonated() bool { return id.AdminID != "" }

// Claims is the wire shape of our tokens. Field names are fixed: mobile and
// web clients already decode these payloads.
//
// An admin-minted user session carries adminId but NOT type: type names the
// collection the id resolves against, so impersonated sessions look like
// user sessions with the acting admin recorded. Consumers must key
// impersonation checks on adminId alone.
type Claims struct {
	jwt.RegisteredClaims

	UserID  string `json:"_id"`
	Email   string `json:"email"`
	Type    string `json:"type,omitempty"`
	AdminID string `json:"adminId,omitempty"`
}

// Identity flattens claims back into an Identity.
func (c Claims) Identity() Identity {
	return Identity{
		ID:      c.UserID,
		Email:   c.Email,
		Type:    c.Type,
		AdminID: c.AdminID,
	}
}
