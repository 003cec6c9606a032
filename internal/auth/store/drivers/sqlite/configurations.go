package sqlite

import (
	"context"

	"github.com/arolux/auth-service/internal/auth/domain"
)

type configurationsRepo struct {
	db dbtx
}

func (r *configurationsRepo) GetConfiguration(ctx context.Context) (domain.Configuration, error) {
	var c domain.Configuration
	err := r.db.QueryRowContext(ctx, `
		SELECT id,
			email_verification_interval_secs,
			email_verification_expiry_time_in_minutes,
			password_recovery_interval_secs,
			password_recovery_expiry_time_in_minutes,
			phone_verification_expiry_time_in_mins,
			updated_at
		FROM configurations
		LIMIT 1`,
	).Scan(
		&c.ID,
		&c.EmailVerificationIntervalSecs,
		&c.EmailVerificationExpiryTimeInMinutes,
		&c.PasswordRecoveryIntervalSecs,
		&c.PasswordRecoveryExpiryTimeInMinutes,
		&c.PhoneVerificationExpiryTimeInMins,
		&c.UpdatedAt,
	)
	if err != nil {
		return domain.Configuration{}, mapNotFound(err)
	}
	return c, nil
}
