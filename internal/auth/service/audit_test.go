package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/arolux/auth-service/internal/auth/domain"
	"github.com/arolux/auth-service/internal/auth/store"
	"github.com/stretchr/testify/require"
)

// countingAuditStore implements just enough of store.Store for the audit
// dispatcher. Calls to anything else panic via the embedded nil interface.
type countingAuditStore struct {
	store.Store

	mu      sync.Mutex
	actions []domain.ActionLog
	errs    []domain.ErrorLog
}

func (s *countingAuditStore) ActionLogs() store.ActionLogs { return countingActionLogs{s} }
func (s *countingAuditStore) ErrorLogs() store.ErrorLogs   { return countingErrorLogs{s} }

type countingActionLogs struct{ s *countingAuditStore }

func (r countingActionLogs) InsertActionLog(ctx context.Context, l domain.ActionLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.actions = append(r.s.actions, l)
	return nil
}

type countingErrorLogs struct{ s *countingAuditStore }

func (r countingErrorLogs) InsertErrorLog(ctx context.Context, l domain.ErrorLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.errs = append(r.s.errs, l)
	return nil
}

func (r countingErrorLogs) DeleteErrorLogsOlderThan(ctx context.Context, cutoff time.Time) error {
	return nil
}

func TestAuditDrainsOnClose(t *testing.T) {
	t.Parallel()

	st := &countingAuditStore{}
	audit := NewAuditService(st, slog.Default(), 128)

	for i := 0; i < 50; i++ {
		audit.Action(domain.ActionLog{Type: domain.LogUserSignedIn, ActorID: "u", ActorKind: "user"})
	}
	audit.Error("user/login", "boom", "details")

	audit.Close()

	st.mu.Lock()
	defer st.mu.Unlock()
	require.Len(t, st.actions, 50)
	require.Len(t, st.errs, 1)
	require.Zero(t, audit.Dropped())

	// Every entry got an id and timestamp assigned.
	for _, a := range st.actions {
		require.NotEmpty(t, a.ID)
		require.False(t, a.CreatedAt.IsZero())
	}
}

func TestAuditAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	st := &countingAuditStore{}
	audit := NewAuditService(st, slog.Default(), 8)
	audit.Close()

	audit.Action(domain.ActionLog{Type: domain.LogUserSignedIn})
	require.Equal(t, uint64(1), audit.Dropped())
}

func TestAuditCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	audit := NewAuditService(&countingAuditStore{}, slog.Default(), 8)
	audit.Close()
	audit.Close()
}
