package domain

import "time"

// Configuration is the single-row runtime tuning record for token and code
// lifecycles. Intervals gate how often a client may re-request a token;
// expiries bound how long an issued one stays usable.
//
// A zero expiry is honoured literally: the token is born expired. Operators
// who zero a column have disabled that flow.
type Configuration struct {
	ID string

	EmailVerificationIntervalSecs        int
	EmailVerificationExpiryTimeInMinutes int

	PasswordRecoveryIntervalSecs        int
	PasswordRecoveryExpiryTimeInMinutes int

	PhoneVerificationExpiryTimeInMins int

	UpdatedAt time.Time
}

// EmailVerificationInterval returns the minimum gap between verification
// email requests.
func (c *Configuration) EmailVerificationInterval() time.Duration {
	return time.Duration(c.EmailVerificationIntervalSecs) * time.Second
}

// EmailVerificationExpiry returns how long an emailed verification token
// remains valid.
func (c *Configuration) EmailVerificationExpiry() time.Duration {
	return time.Duration(c.EmailVerificationExpiryTimeInMinutes) * time.Minute
}

func (c *Configuration) PasswordRecoveryInterval() time.Duration {
	return time.Duration(c.PasswordRecoveryIntervalSecs) * time.Second
}

func (c *Configuration) PasswordRecoveryExpiry() time.Duration {
	return time.Duration(c.PasswordRecoveryExpiryTimeInMinutes) * time.Minute
}

func (c *Configuration) PhoneVerificationExpiry() time.Duration {
	return time.Duration(c.PhoneVerificationExpiryTimeInMins) * time.Minute
}
