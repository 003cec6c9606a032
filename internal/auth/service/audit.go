package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arolux/auth-service/internal/auth/domain"
	"github.com/arolux/auth-service/internal/auth/store"
	"github.com/arolux/auth-service/pkg/idx"
)

// AuditService writes the append-only action and error logs. Entries are
// handed to a background worker over a buffered channel so the request path
// never blocks on audit writes; when the buffer is full the entry is dropped
// and counted.
type AuditService struct {
	store  store.Store
	logger *slog.Logger

	ch      chan auditEntry
	done    chan struct{}
	dropped atomic.Uint64

	closeOnce sync.Once
}

type auditEntry struct {
	action *domain.ActionLog
	errLog *domain.ErrorLog
}

// NewAuditService starts the dispatcher. buffer <= 0 gets a sane default.
func NewAuditService(st store.Store, logger *slog.Logger, buffer int) *AuditService {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &AuditService{
		store:  st,
		logger: logger,
		ch:     make(chan auditEntry, buffer),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Action records an action log entry. Best-effort: a full buffer drops the
// entry rather than stalling the caller.
func (s *AuditService) Action(l domain.ActionLog) {
	if l.ID == "" {
		l.ID = idx.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	s.enqueue(auditEntry{action: &l})
}

// Error records an error log entry, same best-effort contract as Action.
func (s *AuditService) Error(source, message, detail string) {
	s.enqueue(auditEntry{errLog: &domain.ErrorLog{
		ID:        idx.New().String(),
		Source:    source,
		Message:   message,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}})
}

// Dropped reports how many entries were discarded due to backpressure.
func (s *AuditService) Dropped() uint64 {
	return s.dropped.Load()
}

// Close stops accepting entries and blocks until the worker has drained
// everything already queued.
func (s *AuditService) Close() {
	s.closeOnce.Do(func() {
		close(s.ch)
		<-s.done
	})
}

func (s *AuditService) enqueue(e auditEntry) {
	defer func() {
		// Sending on the closed channel after Close loses the entry, which
		// matches the best-effort contract.
		if recover() != nil {
			s.dropped.Add(1)
		}
	}()

	select {
	case s.ch <- e:
	default:
		dropped := s.dropped.Add(1)
		s.logger.Warn("audit buffer full, entry dropped", "total_dropped", dropped)
	}
}

func (s *AuditService) run() {
	defer close(s.done)

	for e := range s.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		switch {
		case e.action != nil:
			if err := s.store.ActionLogs().InsertActionLog(ctx, *e.action); err != nil {
				s.logger.Error("failed to write action log", "type", e.action.Type, "error", err)
			}
		case e.errLog != nil:
			if err := s.store.ErrorLogs().InsertErrorLog(ctx, *e.errLog); err != nil {
				s.logger.Error("failed to write error log", "source", e.errLog.Source, "error", err)
			}
		}
		cancel()
	}
}
