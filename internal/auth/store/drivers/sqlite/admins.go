package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/arolux/auth-service/internal/auth/domain"
	"github.com/arolux/auth-service/internal/auth/store"
)

type adminsRepo struct {
	db dbtx
}

const adminColumns = `id, name, email, phone_number, password_hash, role,
	is_active, created_by, last_login_time, created_at, updated_at`

func scanAdmin(row interface{ Scan(...any) error }) (domain.Admin, error) {
	var (
		a         domain.Admin
		role      string
		lastLogin sql.NullTime
	)

	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.PhoneNumber, &a.PasswordHash, &role,
		&a.IsActive, &a.CreatedBy, &lastLogin, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Admin{}, err
	}

	a.Role = domain.AdminRole(role)
	a.LastLoginTime = mapNullTimePtr(lastLogin)
	return a, nil
}

func (r *adminsRepo) GetAdminByID(ctx context.Context, id string) (domain.Admin, error) {
	a, err := scanAdmin(r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = ?`, id))
	if err != nil {
		return domain.Admin{}, mapNotFound(err)
	}
	return a, nil
}

func (r *adminsRepo) GetAdminByEmail(ctx context.Context, email string) (domain.Admin, error) {
	a, err := scanAdmin(r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = ?`, email))
	if err != nil {
		return domain.Admin{}, mapNotFound(err)
	}
	return a, nil
}

func (r *adminsRepo) GetAdminByIDAndEmail(ctx context.Context, id, email string) (domain.Admin, error) {
	a, err := scanAdmin(r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = ? AND email = ?`, id, email))
	if err != nil {
		return domain.Admin{}, mapNotFound(err)
	}
	return a, nil
}

func (r *adminsRepo) CreateAdmin(ctx context.Context, a domain.Admin) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admins (
			id, name, email, phone_number, password_hash, role,
			is_active, created_by, last_login_time, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Email, a.PhoneNumber, a.PasswordHash, string(a.Role),
		a.IsActive, a.CreatedBy, mapOptionalTime(a.LastLoginTime), a.CreatedAt, a.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *adminsRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM admins WHERE email = ?`, email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *adminsRepo) UpdatePasswordHash(ctx context.Context, adminID, newHash string) error {
	return r.exec(ctx, `
		UPDATE admins SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), adminID)
}

func (r *adminsRepo) UpdateActive(ctx context.Context, adminID string, active bool) error {
	return r.exec(ctx, `
		UPDATE admins SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), adminID)
}

func (r *adminsRepo) TouchLastLogin(ctx context.Context, adminID string, at time.Time) error {
	return r.exec(ctx, `
		UPDATE admins SET last_login_time = ?, updated_at = ? WHERE id = ?`,
		at, at, adminID)
}

func (r *adminsRepo) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+adminColumns+` FROM admins ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var admins []domain.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *adminsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM admins`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *adminsRepo) exec(ctx context.Context, query string, args ...any) error {
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
