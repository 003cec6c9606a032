package sqlite

import (
	"context"
	"time"

	"github.com/arolux/auth-service/internal/auth/domain"
)

type pendingAccountsRepo struct {
	db dbtx
}

func (r *pendingAccountsRepo) UpsertPendingAccount(ctx context.Context, p domain.PendingAccount) error {
	// Re-requesting a code replaces the old one for the same phone.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_accounts (
			id, country_code, phone_number,
			verification_code, verification_code_expiry,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (country_code, phone_number) DO UPDATE SET
			verification_code = excluded.verification_code,
			verification_code_expiry = excluded.verification_code_expiry,
			updated_at = excluded.updated_at`,
		p.ID, p.CountryCode, p.PhoneNumber,
		p.VerificationCode, p.VerificationCodeExpiry,
		p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *pendingAccountsRepo) GetPendingByPhone(ctx context.Context, countryCode, phoneNumber string) (domain.PendingAccount, error) {
	var p domain.PendingAccount
	err := r.db.QueryRowContext(ctx, `
		SELECT id, country_code, phone_number,
			verification_code, verification_code_expiry,
			created_at, updated_at
		FROM pending_accounts
		WHERE country_code = ? AND phone_number = ?`,
		countryCode, phoneNumber,
	).Scan(
		&p.ID, &p.CountryCode, &p.PhoneNumber,
		&p.VerificationCode, &p.VerificationCodeExpiry,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.PendingAccount{}, mapNotFound(err)
	}
	return p, nil
}

func (r *pendingAccountsRepo) DeletePendingAccount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_accounts WHERE id = ?`, id)
	return err
}

func (r *pendingAccountsRepo) DeleteExpiredPendingAccounts(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_accounts WHERE verification_code_expiry <= ?`, now)
	return err
}
