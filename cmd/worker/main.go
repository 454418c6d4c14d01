package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"homesafe_backend/internal/enrichment"
	enrichrepo "homesafe_backend/internal/enrichment/repository"
	proprepo "homesafe_backend/internal/properties/repository"
	reviewrepo "homesafe_backend/internal/reviews/repository"
	"homesafe_backend/platform/config"
	"homesafe_backend/platform/db"
	"homesafe_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting enrichment worker", "env", cfg.Env)

	if !cfg.IsEnrichmentEnabled() {
		log.Warn("enrichment disabled or GEMINI_API_KEY missing; nothing to do")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	gen, err := enrichment.NewGeminiGenerator(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize narrative generator", "error", err)
		panic("failed to initialize narrative generator: " + err.Error())
	}

	worker := enrichment.NewWorker(
		enrichrepo.New(pool),
		proprepo.New(pool),
		reviewrepo.New(pool),
		gen,
		cfg,
		log,
	)

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("enrichment worker stopped", "error", err)
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return lastErr
}
