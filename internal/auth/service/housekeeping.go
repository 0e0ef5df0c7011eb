package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/campusauth/internal/auth/store"
)

// HousekeepingService periodically clears reset codes that have passed
// their expiry so an Expired code is also gone from storage.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the background worker and blocks until any in-progress
// cleanup has finished.
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
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup clears expired reset codes once and returns how many accounts
// were touched.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	n, err := s.Store.Users().ClearExpiredResetCodes(ctx, s.Now())
	if err != nil {
		s.Logger.Error("failed to clear expired reset codes", "error", err)
		return 0
	}
	s.Logger.Info("housekeeping cleanup completed", "expired_reset_codes", n)
	return n
}
