package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/arolux/auth-service/internal/auth/store"
)

// errorLogRetention is how long error logs are kept before housekeeping
// removes them.
const errorLogRetention = 30 * 24 * time.Hour

// HousekeepingService periodically cleans up expired database records to
// prevent unbounded growth of pending accounts and error logs.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop() to shut it
// down gracefully.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress cleanup ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup deletes expired records. Each deletion is independent; a failure
// in one won't stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.Store.PendingAccounts().DeleteExpiredPendingAccounts(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired pending accounts", "error", err)
	}

	if err := s.Store.ErrorLogs().DeleteErrorLogsOlderThan(ctx, now.Add(-errorLogRetention)); err != nil {
		s.Logger.Error("failed to prune error logs", "error", err)
	}

	s.Logger.Debug("housekeeping cleanup finished")
}
