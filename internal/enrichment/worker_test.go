package enrichment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"homesafe_backend/internal/enrichment/repository"
	prepo "homesafe_backend/internal/properties/repository"
	rrepo "homesafe_backend/internal/reviews/repository"
	"homesafe_backend/platform/logger"
)

type stubEnrichmentConfig struct {
	enabled bool
}

func (s stubEnrichmentConfig) GetGeminiAPIKey() string                  { return "test-key" }
func (s stubEnrichmentConfig) GetGeminiModel() string                   { return "gemini-2.0-flash" }
func (s stubEnrichmentConfig) IsEnrichmentEnabled() bool                { return s.enabled }
func (s stubEnrichmentConfig) GetEnrichmentPollInterval() time.Duration { return time.Millisecond }
func (s stubEnrichmentConfig) GetEnrichmentErrorBackoff() time.Duration { return time.Millisecond }

// fakeQueue hands each pending job out exactly once, mirroring the
// SKIP LOCKED claim.
type fakeQueue struct {
	mu      sync.Mutex
	pending []*repository.Job
	done    map[uuid.UUID]string
	failed  map[uuid.UUID]bool
}

func newFakeQueue(jobs ...*repository.Job) *fakeQueue {
	return &fakeQueue{
		pending: jobs,
		done:    make(map[uuid.UUID]string),
		failed:  make(map[uuid.UUID]bool),
	}
}

func (f *fakeQueue) Claim(context.Context) (*repository.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return nil, nil
	}
	job := f.pending[0]
	f.pending = f.pending[1:]
	job.Status = repository.StatusProcessing
	return job, nil
}

func (f *fakeQueue) MarkDone(_ context.Context, jobID uuid.UUID, _ int64, summary string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.done[jobID]; dup {
		return errors.New("job resolved twice")
	}
	f.done[jobID] = summary
	return nil
}

func (f *fakeQueue) MarkFailed(_ context.Context, jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[jobID] = true
	return nil
}

func (f *fakeQueue) resolved() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.done) + len(f.failed)
}

type fakeProperties struct {
	props map[int64]*prepo.Property
}

func (f *fakeProperties) GetByID(_ context.Context, id int64) (*prepo.Property, error) {
	return f.props[id], nil
}

type fakeReviews struct {
	rows []rrepo.Review
	err  error
}

func (f *fakeReviews) ListByProperty(context.Context, int64, int, int) ([]rrepo.Review, error) {
	return f.rows, f.err
}

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	text    string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func str(s string) *string { return &s }

func testProperty(id int64) *prepo.Property {
	return &prepo.Property{
		ID:       id,
		Name:     "Room 12A",
		District: str("Dong Da"),
		City:     str("Hanoi"),
	}
}

func testJob(propertyID int64) *repository.Job {
	return &repository.Job{
		ID:         uuid.New(),
		PropertyID: propertyID,
		Payload:    repository.Payload{CrimeScore: 8.2, UserScore: 8.0, EnvScore: 5.0, OverallScore: 7.5},
		Status:     repository.StatusPending,
		CreatedAt:  time.Now(),
	}
}

func newTestWorker(queue *fakeQueue, props *fakeProperties, reviews *fakeReviews, gen *fakeGenerator) *Worker {
	return NewWorker(queue, props, reviews, gen, stubEnrichmentConfig{enabled: true}, logger.New("development"))
}

func runUntil(t *testing.T, w *Worker, cond func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	doneCh := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(doneCh)
	}()

	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not reached")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-doneCh
}

func TestWorkerResolvesJobAndStoresNarrative(t *testing.T) {
	job := testJob(42)
	queue := newFakeQueue(job)
	gen := &fakeGenerator{text: "A calm, well-lit neighborhood."}
	w := newTestWorker(queue, &fakeProperties{props: map[int64]*prepo.Property{42: testProperty(42)}}, &fakeReviews{}, gen)

	runUntil(t, w, func() bool { return queue.resolved() == 1 })

	if got := queue.done[job.ID]; got != "A calm, well-lit neighborhood." {
		t.Errorf("stored narrative = %q", got)
	}
}

func TestWorkerMarksFailedOnGenerationError(t *testing.T) {
	job := testJob(42)
	queue := newFakeQueue(job)
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	w := newTestWorker(queue, &fakeProperties{props: map[int64]*prepo.Property{42: testProperty(42)}}, &fakeReviews{}, gen)

	runUntil(t, w, func() bool { return queue.resolved() == 1 })

	if !queue.failed[job.ID] {
		t.Error("job not marked failed")
	}
	if len(queue.done) != 0 {
		t.Error("failed job marked done")
	}
}

func TestWorkerFallsBackWhenPropertyMissing(t *testing.T) {
	bad := testJob(1)
	good := testJob(42)
	queue := newFakeQueue(bad, good)
	gen := &fakeGenerator{text: "fine"}
	props := &fakeProperties{props: map[int64]*prepo.Property{42: testProperty(42)}}

	// property 1 resolves to nil, which produces the fallback summary
	w := newTestWorker(queue, props, &fakeReviews{}, gen)

	runUntil(t, w, func() bool { return queue.resolved() == 2 })

	if queue.done[bad.ID] != fallbackSummary {
		t.Errorf("missing-property job summary = %q, want fallback", queue.done[bad.ID])
	}
	if queue.done[good.ID] != "fine" {
		t.Errorf("second job summary = %q", queue.done[good.ID])
	}
}

func TestConcurrentWorkersClaimEachJobOnce(t *testing.T) {
	jobs := make([]*repository.Job, 20)
	for i := range jobs {
		jobs[i] = testJob(42)
	}
	queue := newFakeQueue(jobs...)
	props := &fakeProperties{props: map[int64]*prepo.Property{42: testProperty(42)}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := newTestWorker(queue, props, &fakeReviews{}, &fakeGenerator{text: "ok"})
			_ = w.Run(ctx)
		}()
	}

	deadline := time.After(2 * time.Second)
	for queue.resolved() < len(jobs) {
		select {
		case <-deadline:
			t.Fatalf("resolved %d of %d jobs", queue.resolved(), len(jobs))
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	wg.Wait()

	// MarkDone errors on double resolution, so every job done exactly once
	// means no job was claimed twice.
	if len(queue.done) != len(jobs) || len(queue.failed) != 0 {
		t.Errorf("done = %d, failed = %d, want %d done", len(queue.done), len(queue.failed), len(jobs))
	}
}

func TestBuildPromptCarriesScoresAndComments(t *testing.T) {
	reviews := []rrepo.Review{
		{Comment: "Felt safe walking home at night."},
		{Comment: ""},
		{Comment: "Street floods after heavy rain."},
	}
	prompt := BuildPrompt(testProperty(42), repository.Payload{
		CrimeScore: 8.2, UserScore: 8.0, EnvScore: 5.0, OverallScore: 7.5,
	}, reviews)

	for _, want := range []string{
		"Room 12A",
		"Dong Da, Hanoi",
		"Overall safety score: 7.5",
		"Crime score: 8.2",
		"Guest review score: 8.0",
		"Environment score: 5.0",
		"Felt safe walking home at night.",
		"Street floods after heavy rain.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "\n- \n") {
		t.Error("empty comment included in prompt")
	}
}

func TestQueueNoOpWhenDisabled(t *testing.T) {
	store := &captureStore{}
	q := NewQueue(store, stubEnrichmentConfig{enabled: false}, logger.New("development"))

	if err := q.Enqueue(context.Background(), 42, 8.2, 8.0, 5.0, 7.5); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if store.calls != 0 {
		t.Error("disabled queue still enqueued")
	}
}

func TestQueueSnapshotsScores(t *testing.T) {
	store := &captureStore{}
	q := NewQueue(store, stubEnrichmentConfig{enabled: true}, logger.New("development"))

	if err := q.Enqueue(context.Background(), 42, 8.2, 8.0, 5.0, 7.5); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if store.calls != 1 || store.lastID != 42 {
		t.Fatalf("calls = %d, id = %d", store.calls, store.lastID)
	}
	want := repository.Payload{CrimeScore: 8.2, UserScore: 8.0, EnvScore: 5.0, OverallScore: 7.5}
	if store.lastPayload != want {
		t.Errorf("payload = %+v, want %+v", store.lastPayload, want)
	}
}

type captureStore struct {
	calls       int
	lastID      int64
	lastPayload repository.Payload
}

func (c *captureStore) Enqueue(_ context.Context, propertyID int64, payload repository.Payload) error {
	c.calls++
	c.lastID = propertyID
	c.lastPayload = payload
	return nil
}
