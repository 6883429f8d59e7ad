package application

import (
	"context"
	"log/slog"
	"time"
)

// reloadResult carries the outcome of one manually triggered reload.
type reloadResult struct {
	channels []string
	err      error
}

// CredentialReloader rehydrates the credential cache from the store.
// *AuthManager satisfies it.
type CredentialReloader interface {
	ReloadAll(ctx context.Context) ([]string, error)
}

// ReloadService runs the periodic credential cache reload, independent of
// request traffic, and serializes manual reload triggers onto the same
// loop.
type ReloadService struct {
	reloader  CredentialReloader
	interval  time.Duration
	logger    *slog.Logger
	triggerCh chan chan reloadResult
}

// NewReloadService creates a ReloadService reloading on the given interval.
func NewReloadService(reloader CredentialReloader, interval time.Duration, logger *slog.Logger) *ReloadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadService{
		reloader:  reloader,
		interval:  interval,
		logger:    logger,
		triggerCh: make(chan chan reloadResult),
	}
}

// Start begins the reload loop: an immediate reload, then one per interval,
// plus any manual triggers. Start blocks until the context is canceled.
func (s *ReloadService) Start(ctx context.Context) {
	if _, err := s.reloader.ReloadAll(ctx); err != nil {
		s.logger.Error("initial credential reload failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reload service stopped")
			return
		case <-ticker.C:
			if _, err := s.reloader.ReloadAll(ctx); err != nil {
				// Store hiccups are retried transparently on the next tick.
				s.logger.Error("periodic credential reload failed", "error", err)
			}
		case done := <-s.triggerCh:
			channels, err := s.reloader.ReloadAll(ctx)
			done <- reloadResult{channels: channels, err: err}
		}
	}
}

// Trigger runs a reload immediately, bypassing the interval. It blocks
// until the reload completes or the context is canceled.
func (s *ReloadService) Trigger(ctx context.Context) ([]string, error) {
	done := make(chan reloadResult, 1)

	select {
	case s.triggerCh <- done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-done:
		return res.channels, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
