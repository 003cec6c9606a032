package domain

import "time"

// PendingAccount is a pre-signup placeholder keyed by phone number. It holds
// the outstanding SMS code until the caller either verifies and completes
// signup (promoting it to a User) or lets it expire.
type PendingAccount struct {
	ID          string
	CountryCode string
	PhoneNumber string

	VerificationCode       string
	VerificationCodeExpiry time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the held code is past its expiry at the given time.
func (p *PendingAccount) Expired(now time.Time) bool {
	return !now.Before(p.VerificationCodeExpiry)
}
