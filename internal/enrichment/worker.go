package enrichment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"homesafe_backend/internal/enrichment/repository"
	prepo "homesafe_backend/internal/properties/repository"
	rrepo "homesafe_backend/internal/reviews/repository"
	"homesafe_backend/platform/config"
	"homesafe_backend/platform/logger"
)

// WorkQueue is the claiming side of the job store.
type WorkQueue interface {
	Claim(ctx context.Context) (*repository.Job, error)
	MarkDone(ctx context.Context, jobID uuid.UUID, propertyID int64, summary string) error
	MarkFailed(ctx context.Context, jobID uuid.UUID) error
}

// PropertyReader loads the property fields the prompt needs.
type PropertyReader interface {
	GetByID(ctx context.Context, id int64) (*prepo.Property, error)
}

// ReviewReader loads recent review comments for the prompt.
type ReviewReader interface {
	ListByProperty(ctx context.Context, propertyID int64, limit, offset int) ([]rrepo.Review, error)
}

// Worker polls the queue and generates narratives one job at a time. A
// job's failure marks that job failed and the loop continues; the worker
// only stops when its context is canceled.
type Worker struct {
	queue        WorkQueue
	properties   PropertyReader
	reviews      ReviewReader
	gen          TextGenerator
	log          *logger.Logger
	pollInterval time.Duration
	errorBackoff time.Duration
}

func NewWorker(queue WorkQueue, properties PropertyReader, reviews ReviewReader, gen TextGenerator, cfg config.EnrichmentConfig, log *logger.Logger) *Worker {
	return &Worker{
		queue:        queue,
		properties:   properties,
		reviews:      reviews,
		gen:          gen,
		log:          log,
		pollInterval: cfg.GetEnrichmentPollInterval(),
		errorBackoff: cfg.GetEnrichmentErrorBackoff(),
	}
}

// Run blocks until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("enrichment worker started", "poll_interval", w.pollInterval.String())

	for {
		if err := ctx.Err(); err != nil {
			w.log.Info("enrichment worker stopping")
			return err
		}

		job, err := w.queue.Claim(ctx)
		if err != nil {
			w.log.Error("claim enrichment job failed", "error", err)
			if !w.sleep(ctx, w.errorBackoff) {
				return ctx.Err()
			}
			continue
		}
		if job == nil {
			if !w.sleep(ctx, w.pollInterval) {
				return ctx.Err()
			}
			continue
		}

		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *repository.Job) {
	summary, err := w.generate(ctx, job)
	if err != nil {
		w.log.Error("narrative generation failed", "job_id", job.ID.String(), "property_id", job.PropertyID, "error", err)
		if markErr := w.queue.MarkFailed(ctx, job.ID); markErr != nil {
			w.log.Error("mark job failed errored", "job_id", job.ID.String(), "error", markErr)
		}
		return
	}

	if err := w.queue.MarkDone(ctx, job.ID, job.PropertyID, summary); err != nil {
		w.log.Error("mark job done errored", "job_id", job.ID.String(), "error", err)
		return
	}
	w.log.Info("narrative stored", "job_id", job.ID.String(), "property_id", job.PropertyID)
}

func (w *Worker) generate(ctx context.Context, job *repository.Job) (string, error) {
	prop, err := w.properties.GetByID(ctx, job.PropertyID)
	if err != nil {
		return "", err
	}
	if prop == nil {
		// Score cache can outlive a property removed upstream; nothing
		// sensible to say about it.
		return fallbackSummary, nil
	}

	reviews, err := w.reviews.ListByProperty(ctx, job.PropertyID, maxPromptReviews, 0)
	if err != nil {
		w.log.Warn("review lookup for prompt failed", "property_id", job.PropertyID, "error", err)
		reviews = nil
	}

	return w.gen.Generate(ctx, BuildPrompt(prop, job.Payload, reviews))
}

// sleep waits d or until cancellation; false means the context ended.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
