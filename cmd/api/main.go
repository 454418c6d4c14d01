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
	"homesafe_backend/internal/floods"
	"homesafe_backend/internal/geoapi"
	apphttp "homesafe_backend/internal/http"
	"homesafe_backend/internal/http/router"
	"homesafe_backend/internal/incidents"
	"homesafe_backend/internal/properties"
	"homesafe_backend/internal/reviews"
	"homesafe_backend/internal/scheduler"
	"homesafe_backend/internal/scoring"
	scorerepo "homesafe_backend/internal/scoring/repository"
	"homesafe_backend/platform/config"
	"homesafe_backend/platform/db"
	"homesafe_backend/platform/logger"
	"homesafe_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	val := validator.New()

	// ========================================================================
	// Scoring Engine (Composition Root)
	// ========================================================================

	scoreRepo := scorerepo.New(pool)
	scoreSvc := scoring.NewService(
		scoreRepo,
		geoapi.NewPlacesClient(cfg, log),
		geoapi.NewElevationClient(cfg, log),
		log,
	)

	enrichQueue := enrichment.NewQueue(enrichrepo.New(pool), cfg, log)
	orchestrator := scoring.NewOrchestrator(scoreRepo, scoreSvc, enrichQueue, log)

	trigger, closeTrigger := initTrigger(cfg, orchestrator, log)
	if closeTrigger != nil {
		defer closeTrigger()
	}

	// ========================================================================
	// Domain Modules
	// ========================================================================

	propertiesModule := properties.NewModule(pool, cfg, scoreRepo, orchestrator, trigger, val, log)
	propertiesSvc := propertiesModule.Service()

	reviewsModule := reviews.NewModule(pool, propertiesSvc, trigger, val, log)
	floodsModule := floods.NewModule(pool, propertiesSvc, trigger, val, log)
	incidentsModule := incidents.NewModule(pool, propertiesSvc, propertiesSvc, trigger, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			propertiesModule,
			reviewsModule,
			floodsModule,
			incidentsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initTrigger builds the recompute trigger. Without redis the trigger
// recomputes inline on a detached goroutine.
func initTrigger(cfg config.SchedulerConfig, orchestrator *scoring.Orchestrator, log *logger.Logger) (*scheduler.Trigger, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; recompute triggers run in process")
		return scheduler.NewTrigger(nil, orchestrator, log), nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return scheduler.NewTrigger(nil, orchestrator, log), nil
	}

	return scheduler.NewTrigger(client, orchestrator, log), func() {
		_ = client.Close()
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
