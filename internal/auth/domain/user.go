package domain

import "time"

// User account statuses. Anything other than StatusActive is refused a
// session at the door.
const (
	StatusActive   = "active"
	StatusInactive = "inActive"
)

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string // bcrypt encoded
	CountryCode  string // e.g. "+61"
	PhoneNumber  string
	DeviceType   string // "android" or "ios"
	DeviceToken  string // push token, opaque to us
	Status       string // StatusActive or StatusInactive

	IsEmailVerified bool
	IsPhoneVerified bool

	// Phone verification code currently outstanding, if any.
	VerificationCode       *string
	VerificationCodeExpiry *time.Time

	// Email verification token lifecycle.
	EmailVerificationToken       *string
	EmailVerificationRequestedAt *time.Time
	EmailVerificationTokenExpiry *time.Time

	// Password recovery token lifecycle.
	PasswordRecoveryToken       *string
	PasswordRecoveryRequestedAt *time.Time
	PasswordRecoveryTokenExpiry *time.Time

	LastLoginTime *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Active reports whether the account may hold a session.
func (u *User) Active() bool { return u.Status == StatusActive }
