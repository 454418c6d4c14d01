package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"homesafe_backend/internal/scoring"
	"homesafe_backend/platform/logger"
)

type fakeEnqueuer struct {
	ids chan int64
	err error
}

func (f *fakeEnqueuer) EnqueueScoreRecompute(_ context.Context, propertyID int64) error {
	if f.err != nil {
		return f.err
	}
	f.ids <- propertyID
	return nil
}

type fakeRecomputer struct {
	ids chan int64
	err error
}

func (f *fakeRecomputer) RecomputeOne(_ context.Context, propertyID int64) (scoring.Result, error) {
	f.ids <- propertyID
	return scoring.Result{PropertyID: propertyID}, f.err
}

func waitForID(t *testing.T, ch chan int64) int64 {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("no trigger observed")
		return 0
	}
}

func TestTriggerPrefersEnqueue(t *testing.T) {
	enq := &fakeEnqueuer{ids: make(chan int64, 1)}
	rec := &fakeRecomputer{ids: make(chan int64, 1)}
	trig := NewTrigger(enq, rec, logger.New("development"))

	trig.RecomputeAsync(42)

	if id := waitForID(t, enq.ids); id != 42 {
		t.Errorf("enqueued id = %d, want 42", id)
	}
	select {
	case <-rec.ids:
		t.Error("inline recompute ran despite successful enqueue")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTriggerFallsBackInlineOnEnqueueFailure(t *testing.T) {
	enq := &fakeEnqueuer{ids: make(chan int64, 1), err: errors.New("redis down")}
	rec := &fakeRecomputer{ids: make(chan int64, 1)}
	trig := NewTrigger(enq, rec, logger.New("development"))

	trig.RecomputeAsync(42)

	if id := waitForID(t, rec.ids); id != 42 {
		t.Errorf("inline id = %d, want 42", id)
	}
}

func TestTriggerInlineWithoutClient(t *testing.T) {
	rec := &fakeRecomputer{ids: make(chan int64, 1)}
	trig := NewTrigger(nil, rec, logger.New("development"))

	trig.RecomputeAsync(7)

	if id := waitForID(t, rec.ids); id != 7 {
		t.Errorf("inline id = %d, want 7", id)
	}
}

func TestScoreRecomputeTaskRoundTrip(t *testing.T) {
	task, err := NewScoreRecomputeTask(ScoreRecomputePayload{PropertyID: 42})
	if err != nil {
		t.Fatalf("NewScoreRecomputeTask: %v", err)
	}
	if task.Type() != TaskScoreRecompute {
		t.Errorf("task type = %q", task.Type())
	}
	payload, err := ParseScoreRecomputePayload(task)
	if err != nil {
		t.Fatalf("ParseScoreRecomputePayload: %v", err)
	}
	if payload.PropertyID != 42 {
		t.Errorf("property id = %d, want 42", payload.PropertyID)
	}
}
