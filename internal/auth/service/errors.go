package service

import "errors"

// Sentinel errors the HTTP layer maps onto status codes. Handlers pick the
// client-facing message; these stay terse and greppable.
var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrCodeMismatch       = errors.New("verification_code_mismatch")
	ErrCodeExpired        = errors.New("verification_code_expired")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrTooSoon            = errors.New("too_soon")
	ErrDeactivated        = errors.New("account_deactivated")
	ErrDuplicateEmail     = errors.New("duplicate_email")
	ErrDuplicatePhone     = errors.New("duplicate_phone")
	ErrNotAuthorized      = errors.New("not_authorized")
	ErrNotFound           = errors.New("not_found")
	ErrWeakPassword       = errors.New("weak_password")
	ErrAlreadyVerified    = errors.New("already_verified")
)
