package scoring

import (
	"context"

	"golang.org/x/sync/errgroup"

	"homesafe_backend/internal/scoring/repository"
	"homesafe_backend/platform/logger"
)

// EnrichmentEnqueuer queues a property for AI narrative generation after its
// score has been refreshed. The component scores are snapshotted into the job
// payload so the narrative reflects the scores that were just stored.
type EnrichmentEnqueuer interface {
	Enqueue(ctx context.Context, propertyID int64, crime, user, env, overall float64) error
}

// SweepStats summarizes a full recompute run.
type SweepStats struct {
	Processed int
	Skipped   int
	Failed    int
}

// Orchestrator drives score recomputation for one property or the whole
// portfolio.
type Orchestrator struct {
	repo        repository.ScoreRepository
	svc         *Service
	enricher    EnrichmentEnqueuer // optional
	logger      *logger.Logger
	batchSize   int
	concurrency int
}

func NewOrchestrator(repo repository.ScoreRepository, svc *Service, enricher EnrichmentEnqueuer, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		repo:        repo,
		svc:         svc,
		enricher:    enricher,
		logger:      log,
		batchSize:   50,
		concurrency: 8,
	}
}

// RecomputeOne refreshes the stored score for a single property and queues it
// for narrative enrichment.
func (o *Orchestrator) RecomputeOne(ctx context.Context, propertyID int64) (Result, error) {
	prop, err := o.repo.GetProperty(ctx, propertyID)
	if err != nil {
		return Result{}, err
	}
	return o.recompute(ctx, prop)
}

// recompute computes, persists and enqueues enrichment for a loaded property.
// Enrichment enqueue failures are logged, not surfaced: the score itself is
// already durable at that point.
func (o *Orchestrator) recompute(ctx context.Context, prop *repository.Property) (Result, error) {
	res, err := o.svc.Compute(ctx, prop)
	if err != nil {
		return Result{}, err
	}

	if err := o.repo.UpsertScore(ctx, repository.ScoreRecord{
		PropertyID:    res.PropertyID,
		SafetyScore:   res.SafetyScore,
		CrimeScore:    res.CrimeScore,
		UserScore:     res.UserScore,
		EnvScore:      res.EnvScore,
		AdminOverride: res.AdminOverride,
		ConfigVersion: res.ConfigVersion,
	}); err != nil {
		return Result{}, err
	}

	if o.enricher != nil {
		if err := o.enricher.Enqueue(ctx, prop.ID, res.CrimeScore, res.UserScore, res.EnvScore, res.SafetyScore); err != nil {
			o.logger.WithProperty(prop.ID).Warn("enrichment enqueue failed", "error", err)
		}
	}

	o.logger.WithProperty(prop.ID).Info("safety score recomputed",
		"safety_score", res.SafetyScore,
		"config_version", res.ConfigVersion,
	)
	return res, nil
}

// RecomputeAll walks every property in keyset-paginated batches and refreshes
// each score. Batches run sequentially; properties within a batch run
// concurrently. A failing property is logged and skipped so one bad row
// cannot stall the sweep.
func (o *Orchestrator) RecomputeAll(ctx context.Context) (SweepStats, error) {
	var stats SweepStats
	lastID := int64(0)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		ids, err := o.repo.ListPropertyIDsAfter(ctx, lastID, o.batchSize)
		if err != nil {
			return stats, err
		}
		if len(ids) == 0 {
			break
		}
		lastID = ids[len(ids)-1]

		results := make([]sweepOutcome, len(ids))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.concurrency)
		for i, id := range ids {
			g.Go(func() error {
				results[i] = o.sweepOne(gctx, id)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return stats, err
		}

		for i, out := range results {
			switch {
			case out.err != nil:
				stats.Failed++
				o.logger.WithProperty(ids[i]).Error("sweep recompute failed", "error", out.err)
			case out.skipped:
				stats.Skipped++
			default:
				stats.Processed++
			}
		}
	}

	o.logger.Info("score sweep finished",
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats, nil
}

type sweepOutcome struct {
	skipped bool
	err     error
}

// sweepOne scores a single property during a sweep. Properties with no
// coordinates are skipped rather than scored with neutral defaults.
func (o *Orchestrator) sweepOne(ctx context.Context, propertyID int64) sweepOutcome {
	prop, err := o.repo.GetProperty(ctx, propertyID)
	if err != nil {
		return sweepOutcome{err: err}
	}
	if !prop.HasCoordinates() {
		return sweepOutcome{skipped: true}
	}
	if _, err := o.recompute(ctx, prop); err != nil {
		return sweepOutcome{err: err}
	}
	return sweepOutcome{}
}
