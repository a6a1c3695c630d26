package background

import (
	"context"
	"log/slog"
	"time"
)

// VerificationCleaner removes expired verification codes
type VerificationCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// PushCleaner removes long-dead push subscriptions
type PushCleaner interface {
	CleanupInactive(ctx context.Context) (int64, error)
}

// CleanupWorker periodically purges expired verification codes and stale
// push subscriptions.
type CleanupWorker struct {
	verification VerificationCleaner
	push         PushCleaner
	interval     time.Duration
	logger       *slog.Logger
}

func NewCleanupWorker(verification VerificationCleaner, push PushCleaner, interval time.Duration, logger *slog.Logger) *CleanupWorker {
	return &CleanupWorker{
		verification: verification,
		push:         push,
		interval:     interval,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled, running one cleanup pass per interval.
func (w *CleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("cleanup worker started", slog.String("interval", w.interval.String()))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *CleanupWorker) runOnce(ctx context.Context) {
	codes, err := w.verification.CleanupExpired(ctx)
	if err != nil {
		w.logger.Error("verification code cleanup failed", slog.Any("error", err))
	} else if codes > 0 {
		w.logger.Info("purged expired verification codes", slog.Int64("count", codes))
	}

	subs, err := w.push.CleanupInactive(ctx)
	if err != nil {
		w.logger.Error("push subscription cleanup failed", slog.Any("error", err))
	} else if subs > 0 {
		w.logger.Info("purged inactive push subscriptions", slog.Int64("count", subs))
	}
}
