package scheduler

import (
	"context"
	"time"

	"homesafe_backend/internal/scoring"
	"homesafe_backend/platform/logger"
)

// RecomputeEnqueuer is the redis-backed path for recompute triggers.
type RecomputeEnqueuer interface {
	EnqueueScoreRecompute(ctx context.Context, propertyID int64) error
}

// Recomputer runs a single-property recompute in process.
type Recomputer interface {
	RecomputeOne(ctx context.Context, propertyID int64) (scoring.Result, error)
}

// inlineTimeout bounds the in-process fallback recompute so a detached
// trigger cannot hang forever.
const inlineTimeout = 30 * time.Second

// Trigger is the fire-and-forget recompute surface handed to the mutation
// paths (reviews, incidents, flood reports, sync pushes). With redis
// configured it enqueues an asynq task; without, it recomputes inline on a
// detached goroutine so single-instance deployments still converge.
type Trigger struct {
	client   RecomputeEnqueuer
	fallback Recomputer
	log      *logger.Logger
}

func NewTrigger(client RecomputeEnqueuer, fallback Recomputer, log *logger.Logger) *Trigger {
	return &Trigger{client: client, fallback: fallback, log: log}
}

func (t *Trigger) RecomputeAsync(propertyID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), inlineTimeout)
		defer cancel()

		if t.client != nil {
			if err := t.client.EnqueueScoreRecompute(ctx, propertyID); err == nil {
				return
			} else {
				t.log.Warn("recompute enqueue failed, running inline", "property_id", propertyID, "error", err)
			}
		}

		if t.fallback == nil {
			return
		}
		if _, err := t.fallback.RecomputeOne(ctx, propertyID); err != nil {
			t.log.Error("inline recompute failed", "property_id", propertyID, "error", err)
		}
	}()
}
