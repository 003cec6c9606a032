package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/arolux/auth-service/internal/auth/domain"
	"github.com/arolux/auth-service/internal/auth/store"
	"github.com/arolux/auth-service/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newTestUser(email string) domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.User{
		ID:          idx.New().String(),
		FirstName:   "Jordan",
		LastName:    "Smith",
		Email:       email,
		CountryCode: "+61",
		PhoneNumber: "412345678",
		Status:      domain.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestUsersRepoCreateAndGet(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("jordan@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
	require.Equal(t, domain.StatusActive, got.Status)

	got, err = s.Users().GetUserByEmail(ctx, "jordan@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	got, err = s.Users().GetUserByIDAndEmail(ctx, u.ID, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	// Wrong pairing misses.
	_, err = s.Users().GetUserByIDAndEmail(ctx, u.ID, "other@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err = s.Users().GetUserByPhone(ctx, "+61", "412345678")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersRepoDuplicateEmail(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("dup@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	again := newTestUser("dup@example.com")
	again.PhoneNumber = "499999999"
	err := s.Users().CreateUser(ctx, again)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// Email uniqueness is case-insensitive.
	upper := newTestUser("DUP@EXAMPLE.COM")
	upper.PhoneNumber = "488888888"
	err = s.Users().CreateUser(ctx, upper)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	exists, err := s.Users().ExistsByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestUsersRepoEmailVerificationTokenLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	u := newTestUser("verify@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.NoError(t, s.Users().SetEmailVerificationToken(ctx, u.ID, "tok-1", now, now.Add(time.Hour)))

	// Unknown token misses.
	_, err := s.Users().ConsumeEmailVerificationToken(ctx, "tok-unknown", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Expired token misses.
	_, err = s.Users().ConsumeEmailVerificationToken(ctx, "tok-1", now.Add(2*time.Hour))
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Users().ConsumeEmailVerificationToken(ctx, "tok-1", now.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.True(t, got.IsEmailVerified)

	// Consumption is one-shot.
	_, err = s.Users().ConsumeEmailVerificationToken(ctx, "tok-1", now.Add(time.Minute))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersRepoPasswordRecoveryTokenLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	u := newTestUser("recover@example.com")
	u.PasswordHash = "old-hash"
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.NoError(t, s.Users().SetPasswordRecoveryToken(ctx, u.ID, "rec-1", now, now.Add(time.Hour)))

	got, err := s.Users().ConsumePasswordRecoveryToken(ctx, "rec-1", "new-hash", now.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	fresh, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", fresh.PasswordHash)
	require.Nil(t, fresh.PasswordRecoveryToken)

	// Second consume of the same token fails.
	_, err = s.Users().ConsumePasswordRecoveryToken(ctx, "rec-1", "third-hash", now.Add(2*time.Minute))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersRepoPhoneVerification(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	u := newTestUser("phone@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.NoError(t, s.Users().SetPhoneVerificationCode(ctx, u.ID, "1234", now.Add(5*time.Minute)))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VerificationCode)
	require.Equal(t, "1234", *got.VerificationCode)
	require.False(t, got.IsPhoneVerified)

	require.NoError(t, s.Users().MarkPhoneVerified(ctx, u.ID))

	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.IsPhoneVerified)
	require.Nil(t, got.VerificationCode)
}

func TestAdminsRepo(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	empty, err := s.Admins().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	a := domain.Admin{
		ID:           idx.New().String(),
		Name:         "Root",
		Email:        "root@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Admins().CreateAdmin(ctx, a))

	empty, err = s.Admins().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)

	got, err := s.Admins().GetAdminByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleSuperAdmin, got.Role)
	require.True(t, got.IsActive)

	require.NoError(t, s.Admins().UpdateActive(ctx, a.ID, false))
	got, err = s.Admins().GetAdminByID(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	dup := a
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Admins().CreateAdmin(ctx, dup), store.ErrAlreadyExists)

	list, err := s.Admins().ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestPendingAccountsRepoUpsert(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	p := domain.PendingAccount{
		ID:                     idx.New().String(),
		CountryCode:            "+61",
		PhoneNumber:            "400000001",
		VerificationCode:       "1111",
		VerificationCodeExpiry: now.Add(5 * time.Minute),
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	require.NoError(t, s.PendingAccounts().UpsertPendingAccount(ctx, p))

	// Second request for the same phone replaces the code.
	p2 := p
	p2.ID = idx.New().String()
	p2.VerificationCode = "2222"
	p2.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, s.PendingAccounts().UpsertPendingAccount(ctx, p2))

	got, err := s.PendingAccounts().GetPendingByPhone(ctx, "+61", "400000001")
	require.NoError(t, err)
	require.Equal(t, "2222", got.VerificationCode)
	require.Equal(t, p.ID, got.ID) // original row survives, code replaced

	require.NoError(t, s.PendingAccounts().DeleteExpiredPendingAccounts(ctx, now.Add(10*time.Minute)))
	_, err = s.PendingAccounts().GetPendingByPhone(ctx, "+61", "400000001")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConfigurationsSeeded(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	cfg, err := s.Configurations().GetConfiguration(context.Background())
	require.NoError(t, err)
	require.Equal(t, 60, cfg.EmailVerificationIntervalSecs)
	require.Equal(t, 60, cfg.EmailVerificationExpiryTimeInMinutes)
	require.Equal(t, 60, cfg.PasswordRecoveryIntervalSecs)
	require.Equal(t, 60, cfg.PasswordRecoveryExpiryTimeInMinutes)
	require.Equal(t, 5, cfg.PhoneVerificationExpiryTimeInMins)
}

func TestLogsRepos(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.ActionLogs().InsertActionLog(ctx, domain.ActionLog{
		ID:        idx.New().String(),
		Type:      domain.LogUserSignedIn,
		ActorID:   "user-1",
		ActorKind: "user",
		CreatedAt: now,
	}))

	require.NoError(t, s.ErrorLogs().InsertErrorLog(ctx, domain.ErrorLog{
		ID:        idx.New().String(),
		Source:    "user/login",
		Message:   "boom",
		CreatedAt: now.Add(-48 * time.Hour),
	}))
	require.NoError(t, s.ErrorLogs().DeleteErrorLogsOlderThan(ctx, now.Add(-24*time.Hour)))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("txn@example.com")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return context.Canceled // force rollback
	})
	require.Error(t, err)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommits(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser("commit@example.com")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	})
	require.NoError(t, err)

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
}
