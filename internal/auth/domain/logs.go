package domain

import "time"

// Action log types. The audit trail is append-only; these names are stable
// identifiers reporting queries key on.
const (
	LogUserSignedUp          = "user-signed-up"
	LogUserSignedIn          = "user-signed-in"
	LogUserSignedOut         = "user-signed-out"
	LogUserPasswordChanged   = "user-password-changed"
	LogUserPasswordRecovered = "user-password-recovered"
	LogUserEmailVerified     = "user-email-verified"
	LogUserStatusChanged     = "user-status-changed"
	LogAdminSignedIn         = "admin-logged-in"
	LogAdminSignedOut        = "admin-logged-out"
	LogAdminCreated          = "admin-account-created"
	LogAdminPasswordChanged  = "admin-password-changed"
	LogAdminStatusChanged    = "admin-account-status-changed"
	LogAdminLoggedInAsUser   = "admin-logged-in-as-a-user"
	LogUserConfigsUpdated    = "user-configs-updated"
)

// ActionLog records who did what. ActorID is the session owner; AdminID is
// additionally set when an admin was acting through a user session.
type ActionLog struct {
	ID        string
	Type      string
	ActorID   string
	ActorKind string // "user" or "admin"
	AdminID   string
	Detail    string
	IP        string
	CreatedAt time.Time
}

// ErrorLog captures a failed operation for later inspection. Writing one is
// always best-effort.
type ErrorLog struct {
	ID        string
	Source    string // endpoint or service name
	Message   string
	Detail    string
	CreatedAt time.Time
}
