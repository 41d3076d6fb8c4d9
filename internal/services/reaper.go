package services

import (
	"context"
	"time"

	"github.com/skillbridge/skillbridge-api/internal/repository"
	apperrors "github.com/skillbridge/skillbridge-api/pkg/errors"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/skillbridge/skillbridge-api/pkg/metrics"
	"github.com/skillbridge/skillbridge-api/pkg/retry"
	"go.uber.org/zap"
)

// ExpiryReaper periodically sweeps pending requests past their expiry into
// cancelled. Expiry is also enforced lazily at action time; the sweep only
// keeps listings tidy, so a missed tick is harmless.
type ExpiryReaper struct {
	requestRepo repository.RequestRepositoryInterface
	interval    time.Duration
}

// NewExpiryReaper creates a reaper; intervalMinutes of 0 disables it
func NewExpiryReaper(requestRepo repository.RequestRepositoryInterface, intervalMinutes int) *ExpiryReaper {
	return &ExpiryReaper{
		requestRepo: requestRepo,
		interval:    time.Duration(intervalMinutes) * time.Minute,
	}
}

// Start launches the background sweep loop. Returns immediately; the loop
// stops when ctx is cancelled.
func (r *ExpiryReaper) Start(ctx context.Context) {
	if r.interval <= 0 {
		logger.Info("Request expiry reaper disabled")
		return
	}

	logger.Info("Request expiry reaper started", zap.Duration("interval", r.interval))

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("Request expiry reaper stopped")
				return
			case <-ticker.C:
				r.sweep(ctx)
			}
		}
	}()
}

func (r *ExpiryReaper) sweep(ctx context.Context) {
	// The bulk cancel is idempotent, so transient failures can be retried.
	// Conflicts never surface here; they are excluded anyway.
	retryConfig := retry.DatabaseConfig(func(err error) bool {
		return !apperrors.Is(err, apperrors.ErrConflict)
	})

	count, err := retry.DoWithResult(ctx, retryConfig, "cancelExpiredRequests", func() (int64, error) {
		return r.requestRepo.CancelExpired(ctx, time.Now())
	})
	if err != nil {
		logger.Error("Expired request sweep failed", zap.Error(err))
		return
	}

	if count > 0 {
		metrics.RequestsExpired.Add(float64(count))
		logger.Info("Expired requests cancelled", zap.Int64("count", count))
	}
}
