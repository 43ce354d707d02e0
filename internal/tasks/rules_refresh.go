package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/ollan-health/checkout-api/internal/lock"
	"github.com/ollan-health/checkout-api/internal/rules"
)

// TypeRulesRefresh identifies the periodic pricing rules refresh task.
const TypeRulesRefresh = "rules:refresh"

const refreshLockKey = "lock:rules:refresh"

// NewRulesRefreshTask builds the task enqueued by the scheduler.
func NewRulesRefreshTask() *asynq.Task {
	return asynq.NewTask(TypeRulesRefresh, nil)
}

// RulesRefresher re-reads the pricing rules from the store and rewrites the
// cache. The lock keeps multiple worker replicas from refreshing concurrently.
type RulesRefresher struct {
	Svc     *rules.Service
	Locker  lock.Locker
	LockTTL time.Duration
	Logger  *zerolog.Logger
}

// Handle implements the asynq handler for rules refresh tasks.
func (rf RulesRefresher) Handle(ctx context.Context, _ *asynq.Task) error {
	if rf.Svc == nil {
		return errors.New("rules refresher: service not configured")
	}
	ttl := rf.LockTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return rf.Locker.WithLock(ctx, refreshLockKey, ttl, func(ctx context.Context) error {
		start := time.Now()
		refreshed, err := rf.Svc.Refresh(ctx)
		if err != nil {
			if rf.Logger != nil {
				rf.Logger.Error().Err(err).Msg("rules refresh failed")
			}
			return err
		}
		if rf.Logger != nil {
			rf.Logger.Info().
				Int("campus_areas", len(refreshed.CampusAreas)).
				Int("category_codes", len(refreshed.CategoryCodes)).
				Int("free_delivery_codes", len(refreshed.FreeDeliveryCodes)).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("rules refreshed")
		}
		return nil
	})
}
