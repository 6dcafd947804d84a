package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/store"
)

// HousekeepingService periodically deletes expired refresh tokens and
// sessions idle past IdleTimeout.
type HousekeepingService struct {
	Store       store.Store
	Sessions    *SessionRegistry
	Logger      *slog.Logger
	Interval    time.Duration
	IdleTimeout time.Duration
	Now         func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// HousekeepingStats is what one cleanup pass removed.
type HousekeepingStats struct {
	RefreshTokens int64
	Sessions      int64
	Failures      int
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, sessions *SessionRegistry, logger *slog.Logger, interval, idle time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}

	return &HousekeepingService{
		Store:       st,
		Sessions:    sessions,
		Logger:      logger,
		Interval:    interval,
		IdleTimeout: idle,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "idle_timeout", s.IdleTimeout)
}

// Stop blocks until the worker has finished any in-progress cleanup.
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
	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce performs one cleanup pass. Each deletion is independent: a
// failure is logged and the next one still runs.
func (s *HousekeepingService) RunOnce(ctx context.Context) HousekeepingStats {
	var stats HousekeepingStats
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	n, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", "error", err)
		stats.Failures++
	} else {
		stats.RefreshTokens = n
	}

	n, err = s.Sessions.SweepInactive(ctx, s.IdleTimeout)
	if err != nil {
		s.Logger.Error("failed to sweep inactive sessions", "error", err)
		stats.Failures++
	} else {
		stats.Sessions = n
	}

	s.Logger.Info("housekeeping cleanup completed",
		"refresh_tokens_deleted", stats.RefreshTokens,
		"sessions_deleted", stats.Sessions,
		"failures", stats.Failures,
	)
	return stats
}
