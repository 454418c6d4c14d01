package enrichment

import (
	"context"

	"homesafe_backend/internal/enrichment/repository"
	"homesafe_backend/platform/config"
	"homesafe_backend/platform/logger"
)

// JobStore is the queue surface the enqueuer needs.
type JobStore interface {
	Enqueue(ctx context.Context, propertyID int64, payload repository.Payload) error
}

// Queue enqueues narrative jobs after a score is persisted. It satisfies the
// scoring orchestrator's enqueuer contract and is a no-op when enrichment is
// disabled by configuration.
type Queue struct {
	repo    JobStore
	enabled bool
	log     *logger.Logger
}

func NewQueue(repo JobStore, cfg config.EnrichmentConfig, log *logger.Logger) *Queue {
	return &Queue{repo: repo, enabled: cfg.IsEnrichmentEnabled(), log: log}
}

func (q *Queue) Enqueue(ctx context.Context, propertyID int64, crime, user, env, overall float64) error {
	if !q.enabled {
		return nil
	}
	return q.repo.Enqueue(ctx, propertyID, repository.Payload{
		CrimeScore:   crime,
		UserScore:    user,
		EnvScore:     env,
		OverallScore: overall,
	})
}
