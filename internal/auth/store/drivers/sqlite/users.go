package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/arolux/auth-service/internal/auth/domain"
	"github.com/arolux/auth-service/internal/auth/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, first_name, last_name, email, password_hash,
	country_code, phone_number, device_type, device_token, status,
	is_email_verified, is_phone_verified,
	verification_code, verification_code_expiry,
	email_verification_token, email_verification_requested_at, email_verification_token_expiry,
	password_recovery_token, password_recovery_requested_at, password_recovery_token_expiry,
	last_login_time, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u domain.User

		verificationCode       sql.NullString
		verificationCodeExpiry sql.NullTime

		emailToken       sql.NullString
		emailRequestedAt sql.NullTime
		emailExpiry      sql.NullTime

		recoveryToken       sql.NullString
		recoveryRequestedAt sql.NullTime
		recoveryExpiry      sql.NullTime

		lastLogin sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.CountryCode, &u.PhoneNumber, &u.DeviceType, &u.DeviceToken, &u.Status,
		&u.IsEmailVerified, &u.IsPhoneVerified,
		&verificationCode, &verificationCodeExpiry,
		&emailToken, &emailRequestedAt, &emailExpiry,
		&recoveryToken, &recoveryRequestedAt, &recoveryExpiry,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.VerificationCode = mapNullStringPtr(verificationCode)
	u.VerificationCodeExpiry = mapNullTimePtr(verificationCodeExpiry)
	u.EmailVerificationToken = mapNullStringPtr(emailToken)
	u.EmailVerificationRequestedAt = mapNullTimePtr(emailRequestedAt)
	u.EmailVerificationTokenExpiry = mapNullTimePtr(emailExpiry)
	u.PasswordRecoveryToken = mapNullStringPtr(recoveryToken)
	u.PasswordRecoveryRequestedAt = mapNullTimePtr(recoveryRequestedAt)
	u.PasswordRecoveryTokenExpiry = mapNullTimePtr(recoveryExpiry)
	u.LastLoginTime = mapNullTimePtr(lastLogin)

	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByIDAndEmail(ctx context.Context, id, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND email = ?`, id, email))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByPhone(ctx context.Context, countryCode, phoneNumber string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE country_code = ? AND phone_number = ?`,
		countryCode, phoneNumber))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, first_name, last_name, email, password_hash,
			country_code, phone_number, device_type, device_token, status,
			is_email_verified, is_phone_verified,
			verification_code, verification_code_expiry,
			email_verification_token, email_verification_requested_at, email_verification_token_expiry,
			password_recovery_token, password_recovery_requested_at, password_recovery_token_expiry,
			last_login_time, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash,
		u.CountryCode, u.PhoneNumber, u.DeviceType, u.DeviceToken, u.Status,
		u.IsEmailVerified, u.IsPhoneVerified,
		mapOptionalString(u.VerificationCode), mapOptionalTime(u.VerificationCodeExpiry),
		mapOptionalString(u.EmailVerificationToken), mapOptionalTime(u.EmailVerificationRequestedAt), mapOptionalTime(u.EmailVerificationTokenExpiry),
		mapOptionalString(u.PasswordRecoveryToken), mapOptionalTime(u.PasswordRecoveryRequestedAt), mapOptionalTime(u.PasswordRecoveryTokenExpiry),
		mapOptionalTime(u.LastLoginTime), u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *usersRepo) SetPhoneVerificationCode(ctx context.Context, userID, code string, expiry time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET verification_code = ?, verification_code_expiry = ?, updated_at = ?
		WHERE id = ?`,
		code, expiry, time.Now().UTC(), userID)
}

func (r *usersRepo) MarkPhoneVerified(ctx context.Context, userID string) error {
	return r.exec(ctx, `
		UPDATE users
		SET is_phone_verified = 1, verification_code = NULL, verification_code_expiry = NULL, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID)
}

func (r *usersRepo) SetEmailVerificationToken(ctx context.Context, userID, token string, requestedAt, expiry time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET email_verification_token = ?, email_verification_requested_at = ?, email_verification_token_expiry = ?, updated_at = ?
		WHERE id = ?`,
		token, requestedAt, expiry, requestedAt, userID)
}

func (r *usersRepo) ConsumeEmailVerificationToken(ctx context.Context, token string, now time.Time) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE email_verification_token = ? AND email_verification_token_expiry > ?`,
		token, now))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	// Conditioned on the token still being present so two racing
	// confirmations cannot both win.
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET is_email_verified = 1,
			email_verification_token = NULL,
			email_verification_requested_at = NULL,
			email_verification_token_expiry = NULL,
			updated_at = ?
		WHERE id = ? AND email_verification_token = ?`,
		now, u.ID, token)
	if err != nil {
		return domain.User{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, err
	}
	if affected == 0 {
		return domain.User{}, store.ErrNotFound
	}

	u.IsEmailVerified = true
	return u, nil
}

func (r *usersRepo) SetPasswordRecoveryToken(ctx context.Context, userID, token string, requestedAt, expiry time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET password_recovery_token = ?, password_recovery_requested_at = ?, password_recovery_token_expiry = ?, updated_at = ?
		WHERE id = ?`,
		token, requestedAt, expiry, requestedAt, userID)
}

func (r *usersRepo) ConsumePasswordRecoveryToken(ctx context.Context, token, newHash string, now time.Time) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE password_recovery_token = ? AND password_recovery_token_expiry > ?`,
		token, now))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?,
			password_recovery_token = NULL,
			password_recovery_requested_at = NULL,
			password_recovery_token_expiry = NULL,
			updated_at = ?
		WHERE id = ? AND password_recovery_token = ?`,
		newHash, now, u.ID, token)
	if err != nil {
		return domain.User{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, err
	}
	if affected == 0 {
		// Lost a race with another consumer of the same token.
		return domain.User{}, store.ErrNotFound
	}

	return u, nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return r.exec(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID)
}

func (r *usersRepo) UpdateStatus(ctx context.Context, userID, status string) error {
	return r.exec(ctx, `
		UPDATE users SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), userID)
}

func (r *usersRepo) UpdateDevice(ctx context.Context, userID, deviceType, deviceToken string) error {
	return r.exec(ctx, `
		UPDATE users SET device_type = ?, device_token = ?, updated_at = ? WHERE id = ?`,
		deviceType, deviceToken, time.Now().UTC(), userID)
}

func (r *usersRepo) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.exec(ctx, `
		UPDATE users SET last_login_time = ?, updated_at = ? WHERE id = ?`,
		at, at, userID)
}

// exec runs an UPDATE that must hit exactly one row.
func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
