// Package repository implements the durable narrative work queue on
// Postgres. Claiming uses FOR UPDATE SKIP LOCKED inside a transaction so a
// job is owned by at most one worker even with concurrent pollers.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"homesafe_backend/platform/apperr"
	"homesafe_backend/platform/db"
)

// Job statuses form the state machine pending -> processing -> done|failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Payload snapshots the component scores at enqueue time so the worker
// never recomputes them.
type Payload struct {
	CrimeScore   float64 `json:"crime_score"`
	UserScore    float64 `json:"user_score"`
	EnvScore     float64 `json:"env_score"`
	OverallScore float64 `json:"overall_score"`
}

// Job is one narrative-generation work item.
type Job struct {
	ID         uuid.UUID
	PropertyID int64
	Payload    Payload
	Status     string
	CreatedAt  time.Time
}

type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

// Enqueue inserts a pending job carrying the score snapshot.
func (r *Repository) Enqueue(ctx context.Context, propertyID int64, payload Payload) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO enrichment_jobs (id, property_id, payload, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, uuid.New(), propertyID, payload, StatusPending)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "enqueue enrichment job", err)
	}
	return nil
}

// Claim takes exclusive ownership of the oldest pending job and flips it to
// processing before returning, committing the transaction so the lease
// survives the claimer's slow work. Returns (nil, nil) when the queue is
// empty or every pending row is locked by another worker.
func (r *Repository) Claim(ctx context.Context) (*Job, error) {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "begin claim", err)
	}
	defer tx.Rollback(ctx)

	var job Job
	err = tx.QueryRow(ctx, `
		SELECT id, property_id, payload, status, created_at
		FROM enrichment_jobs
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, StatusPending).Scan(&job.ID, &job.PropertyID, &job.Payload, &job.Status, &job.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "select pending job", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE enrichment_jobs SET status = $1 WHERE id = $2
	`, StatusProcessing, job.ID); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "mark job processing", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "commit claim", err)
	}

	job.Status = StatusProcessing
	return &job, nil
}

// MarkDone patches the property's cached narrative and resolves the job.
func (r *Repository) MarkDone(ctx context.Context, jobID uuid.UUID, propertyID int64, summary string) error {
	if _, err := r.q.Exec(ctx, `
		UPDATE property_safety_scores SET ai_summary = $1 WHERE property_id = $2
	`, summary, propertyID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "store narrative", err)
	}

	if _, err := r.q.Exec(ctx, `
		UPDATE enrichment_jobs SET status = $1, processed_at = NOW() WHERE id = $2
	`, StatusDone, jobID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "mark job done", err)
	}
	return nil
}

// MarkFailed resolves the job as failed. No automatic retry.
func (r *Repository) MarkFailed(ctx context.Context, jobID uuid.UUID) error {
	if _, err := r.q.Exec(ctx, `
		UPDATE enrichment_jobs SET status = $1, processed_at = NOW() WHERE id = $2
	`, StatusFailed, jobID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "mark job failed", err)
	}
	return nil
}

// CountStuckProcessing reports leases older than the threshold. Surfaced for
// operators; nothing reclaims these rows automatically.
func (r *Repository) CountStuckProcessing(ctx context.Context, olderThan time.Duration) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM enrichment_jobs
		WHERE status = $1 AND created_at < NOW() - $2::interval
	`, StatusProcessing, olderThan.String()).Scan(&n)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "count stuck jobs", err)
	}
	return n, nil
}
