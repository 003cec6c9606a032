package sqlite

import (
	"context"
	"database/sql"

	"github.com/arolux/auth-service/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits/rolls back; outer DB stays open

// Ping is a no-op for transactions, the connection already exists.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                     { return &usersRepo{db: t.tx} }
func (t *txStore) Admins() store.Admins                   { return &adminsRepo{db: t.tx} }
func (t *txStore) PendingAccounts() store.PendingAccounts { return &pendingAccountsRepo{db: t.tx} }
func (t *txStore) Configurations() store.Configurations   { return &configurationsRepo{db: t.tx} }
func (t *txStore) ActionLogs() store.ActionLogs           { return &actionLogsRepo{db: t.tx} }
func (t *txStore) ErrorLogs() store.ErrorLogs             { return &errorLogsRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts
