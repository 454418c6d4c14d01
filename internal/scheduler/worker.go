package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"homesafe_backend/internal/scoring"
	"homesafe_backend/platform/config"
	"homesafe_backend/platform/logger"
)

// Sweeper runs the full recompute sweep.
type Sweeper interface {
	RecomputeAll(ctx context.Context) (scoring.SweepStats, error)
}

// Worker consumes score tasks from redis and drives the orchestrator.
// A co-located asynq scheduler enqueues the periodic sweep task.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	single    Recomputer
	sweep     Sweeper
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, single Recomputer, sweep Sweeper, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := queueName(cfg)
	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	periodic := asynq.NewScheduler(opt, nil)
	cron := cfg.GetSweepCronSpec()
	if cron == "" {
		cron = "0 */12 * * *"
	}
	if _, err := periodic.Register(cron, NewScoreSweepTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register sweep schedule: %w", err)
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		scheduler: periodic,
		mux:       mux,
		single:    single,
		sweep:     sweep,
		log:       log,
	}

	mux.HandleFunc(TaskScoreRecompute, w.handleScoreRecompute)
	mux.HandleFunc(TaskScoreSweep, w.handleScoreSweep)

	return w, nil
}

func (w *Worker) handleScoreRecompute(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseScoreRecomputePayload(task)
	if err != nil {
		return err
	}

	result, err := w.single.RecomputeOne(ctx, payload.PropertyID)
	if err != nil {
		w.log.Error("recompute task failed", "property_id", payload.PropertyID, "error", err)
		return err
	}
	w.log.Info("score recomputed", "property_id", payload.PropertyID, "safety_score", result.SafetyScore)
	return nil
}

func (w *Worker) handleScoreSweep(ctx context.Context, _ *asynq.Task) error {
	stats, err := w.sweep.RecomputeAll(ctx)
	if err != nil {
		w.log.Error("sweep task failed", "error", err)
		return err
	}
	w.log.Info("sweep finished", "processed", stats.Processed, "skipped", stats.Skipped, "failed", stats.Failed)
	return nil
}

// Run blocks until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	go func() {
		if err := w.scheduler.Run(); err != nil {
			w.log.Error("periodic scheduler stopped", "error", err)
		}
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
