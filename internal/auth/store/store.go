package store

import (
	"context"
	"errors"
	"time"

	"github.com/arolux/auth-service/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Admins() Admins
	PendingAccounts() PendingAccounts
	Configurations() Configurations
	ActionLogs() ActionLogs
	ErrorLogs() ErrorLogs

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., promoting
	// a pending account to a user). The caller MUST call Commit() or
	// Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction. If fn returns an
	// error the transaction is rolled back, otherwise committed. This is the
	// recommended way to handle transactions.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByIDAndEmail is the session re-check: both values come from
	// token claims and must still match a live row.
	GetUserByIDAndEmail(ctx context.Context, id, email string) (domain.User, error)

	GetUserByPhone(ctx context.Context, countryCode, phoneNumber string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// SetPhoneVerificationCode replaces any outstanding SMS code.
	SetPhoneVerificationCode(ctx context.Context, userID, code string, expiry time.Time) error

	// MarkPhoneVerified clears the outstanding code and flips the flag.
	MarkPhoneVerified(ctx context.Context, userID string) error

	SetEmailVerificationToken(ctx context.Context, userID, token string, requestedAt, expiry time.Time) error

	// ConsumeEmailVerificationToken marks the matching user verified and
	// clears the token in one statement. Returns ErrNotFound when no row
	// holds the token unexpired.
	ConsumeEmailVerificationToken(ctx context.Context, token string, now time.Time) (domain.User, error)

	SetPasswordRecoveryToken(ctx context.Context, userID, token string, requestedAt, expiry time.Time) error

	// ConsumePasswordRecoveryToken swaps in the new password hash for the
	// user holding the token unexpired, clearing the token as it goes.
	ConsumePasswordRecoveryToken(ctx context.Context, token, newHash string, now time.Time) (domain.User, error)

	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	UpdateStatus(ctx context.Context, userID, status string) error

	UpdateDevice(ctx context.Context, userID, deviceType, deviceToken string) error

	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

type Admins interface {
	GetAdminByID(ctx context.Context, id string) (domain.Admin, error)

	GetAdminByEmail(ctx context.Context, email string) (domain.Admin, error)

	GetAdminByIDAndEmail(ctx context.Context, id, email string) (domain.Admin, error)

	CreateAdmin(ctx context.Context, a domain.Admin) error

	ExistsByEmail(ctx context.Context, email string) (bool, error)

	UpdatePasswordHash(ctx context.Context, adminID, newHash string) error

	UpdateActive(ctx context.Context, adminID string, active bool) error

	TouchLastLogin(ctx context.Context, adminID string, at time.Time) error

	// ListAdmins returns all admins ordered by creation date (newest first).
	ListAdmins(ctx context.Context) ([]domain.Admin, error)

	// IsEmpty returns true if there are no admins. Used to decide whether
	// the root admin needs seeding.
	IsEmpty(ctx context.Context) (bool, error)
}

type PendingAccounts interface {
	// UpsertPendingAccount replaces the code for the phone number, creating
	// the row if needed.
	UpsertPendingAccount(ctx context.Context, p domain.PendingAccount) error

	GetPendingByPhone(ctx context.Context, countryCode, phoneNumber string) (domain.PendingAccount, error)

	DeletePendingAccount(ctx context.Context, id string) error

	// DeleteExpiredPendingAccounts is housekeeping.
	DeleteExpiredPendingAccounts(ctx context.Context, now time.Time) error
}

type Configurations interface {
	// GetConfiguration returns the singleton tuning row.
	GetConfiguration(ctx context.Context) (domain.Configuration, error)
}

type ActionLogs interface {
	InsertActionLog(ctx context.Context, l domain.ActionLog) error
}

type ErrorLogs interface {
	InsertErrorLog(ctx context.Context, l domain.ErrorLog) error

	// DeleteErrorLogsOlderThan is housekeeping.
	DeleteErrorLogsOlderThan(ctx context.Context, cutoff time.Time) error
}
