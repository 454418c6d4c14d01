package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"

	"homesafe_backend/internal/scoring/repository"
	"homesafe_backend/platform/logger"
)

type fakeEnqueuer struct {
	mu       sync.Mutex
	ids      []int64
	overalls []float64
	err      error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, propertyID int64, _, _, _, overall float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, propertyID)
	f.overalls = append(f.overalls, overall)
	return nil
}

func newTestOrchestrator(repo *fakeRepo, enq *fakeEnqueuer) *Orchestrator {
	svc := newTestService(repo)
	var e EnrichmentEnqueuer
	if enq != nil {
		e = enq
	}
	return NewOrchestrator(repo, svc, e, logger.New("development"))
}

func TestRecomputeOnePersistsAndEnqueues(t *testing.T) {
	repo := newFakeRepo()
	repo.properties[1] = testProperty(1)
	repo.avgRating[1] = ptrF(4.0)
	enq := &fakeEnqueuer{}
	orch := newTestOrchestrator(repo, enq)

	res, err := orch.RecomputeOne(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecomputeOne: %v", err)
	}

	// user 8.0, crime 10.0, env 5*0.6+10*0.4 = 7.0
	if res.SafetyScore != 8.6 {
		t.Fatalf("safety score = %v, want 8.6", res.SafetyScore)
	}
	if len(repo.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(repo.upserts))
	}
	rec := repo.upserts[0]
	if rec.PropertyID != 1 || rec.SafetyScore != 8.6 || rec.ConfigVersion != configVersion {
		t.Fatalf("unexpected score record: %+v", rec)
	}
	if len(enq.ids) != 1 || enq.ids[0] != 1 {
		t.Fatalf("enqueued = %v, want [1]", enq.ids)
	}
	if enq.overalls[0] != 8.6 {
		t.Fatalf("enqueued overall = %v, want 8.6", enq.overalls[0])
	}
}

func TestRecomputeOneUnknownProperty(t *testing.T) {
	orch := newTestOrchestrator(newFakeRepo(), nil)
	if _, err := orch.RecomputeOne(context.Background(), 404); err == nil {
		t.Fatal("want error for unknown property")
	}
}

func TestRecomputeOneToleratesEnqueueFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.properties[1] = testProperty(1)
	enq := &fakeEnqueuer{err: errors.New("queue full")}
	orch := newTestOrchestrator(repo, enq)

	if _, err := orch.RecomputeOne(context.Background(), 1); err != nil {
		t.Fatalf("RecomputeOne: %v", err)
	}
	if len(repo.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1 despite enqueue failure", len(repo.upserts))
	}
}

func TestRecomputeAllSkipsAndContinues(t *testing.T) {
	repo := newFakeRepo()
	repo.properties[1] = testProperty(1)
	repo.properties[2] = &repository.Property{ID: 2} // no coordinates
	repo.propertyErr[3] = errors.New("row corrupt")
	repo.properties[4] = testProperty(4)
	enq := &fakeEnqueuer{}
	orch := newTestOrchestrator(repo, enq)

	stats, err := orch.RecomputeAll(context.Background())
	if err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	if stats.Processed != 2 || stats.Skipped != 1 || stats.Failed != 1 {
		t.Fatalf("stats = %+v, want 2 processed, 1 skipped, 1 failed", stats)
	}
	if len(repo.upserts) != 2 {
		t.Fatalf("upserts = %d, want 2", len(repo.upserts))
	}
	if len(enq.ids) != 2 {
		t.Fatalf("enqueued = %v, want two ids", enq.ids)
	}
}

func TestRecomputeAllPaginates(t *testing.T) {
	repo := newFakeRepo()
	for id := int64(1); id <= 7; id++ {
		repo.properties[id] = testProperty(id)
	}
	orch := newTestOrchestrator(repo, nil)
	orch.batchSize = 3

	stats, err := orch.RecomputeAll(context.Background())
	if err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	if stats.Processed != 7 {
		t.Fatalf("processed = %d, want 7", stats.Processed)
	}
	if len(repo.upserts) != 7 {
		t.Fatalf("upserts = %d, want 7", len(repo.upserts))
	}
}

func TestRecomputeAllHonorsCancellation(t *testing.T) {
	repo := newFakeRepo()
	repo.properties[1] = testProperty(1)
	orch := newTestOrchestrator(repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := orch.RecomputeAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
