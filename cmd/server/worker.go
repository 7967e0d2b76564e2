package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/DevPulseHQ/devpulse-web/internal/backfill"
	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/logger"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

var workerTracer = otel.Tracer("devpulse/worker")

// WorkerConfig holds configuration for the periodic ingestion worker.
type WorkerConfig struct {
	PollInterval time.Duration
	LookbackDays int  // Days before today each cycle re-ingests
	DryRun       bool // If true, log the planned range without fetching
}

// Worker periodically re-ingests a trailing window so late-arriving
// provider data converges without manual backfills. Last-write-wins
// storage makes the repeated runs safe.
type Worker struct {
	db     *db.DB
	runner *backfill.Runner
	config WorkerConfig
}

// runWorker is the entry point for the background worker process.
func runWorker() {
	logger.Info("starting ingestion worker")

	// Initialize OpenTelemetry (same as server)
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		logger.Warn("failed to configure OpenTelemetry for worker", "error", err)
	} else {
		defer otelShutdown()
	}

	workerConfig := loadWorkerConfig()
	logger.Info("worker configuration loaded",
		"poll_interval", workerConfig.PollInterval,
		"lookback_days", workerConfig.LookbackDays,
		"dry_run", workerConfig.DryRun,
	)

	if workerConfig.DryRun {
		logger.Info("DRY-RUN MODE ENABLED - no data will be fetched or stored")
	}

	config := loadConfig()

	database, err := db.Connect(config.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.Conn()); err != nil {
		logger.Fatal("failed to run migrations", "error", err)
	}

	runner := buildRunner(context.Background(), database, config)
	if runner == nil {
		logger.Fatal("no provider credentials configured",
			"hint", "set GITHUB_TOKEN, CURSOR_API_KEY or ANTHROPIC_ADMIN_KEY")
	}

	worker := &Worker{
		db:     database,
		runner: runner,
		config: workerConfig,
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("shutdown signal received, stopping worker")
		cancel()
	}()

	worker.Run(ctx)
	logger.Info("worker stopped")
}

// Run executes the main worker loop.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Run immediately on startup
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce executes a single ingestion cycle over the trailing window.
func (w *Worker) runOnce(ctx context.Context) {
	ctx, span := workerTracer.Start(ctx, "worker.run_once")
	defer span.End()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -w.config.LookbackDays)
	req := backfill.Request{
		Start: metrics.DateKey(start),
		End:   metrics.DateKey(end),
	}
	span.SetAttributes(
		attribute.String("backfill.start", req.Start),
		attribute.String("backfill.end", req.End),
	)

	if w.config.DryRun {
		logger.Info("[DRY-RUN] would backfill range", "start", req.Start, "end", req.End)
		span.SetAttributes(attribute.Bool("dry_run", true))
		return
	}

	logger.Info("starting ingestion cycle", "start", req.Start, "end", req.End)

	result, err := w.runner.Run(ctx, req)
	if err != nil {
		logger.Error("ingestion cycle failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	logger.Info("ingestion cycle complete",
		"run_id", result.RunID,
		"saved", result.Saved,
		"failed", result.Failed,
	)
	span.SetAttributes(
		attribute.String("backfill.run_id", result.RunID),
		attribute.Int("backfill.saved", result.Saved),
		attribute.Int("backfill.failed", result.Failed),
	)
}

// loadWorkerConfig loads worker configuration from environment variables.
func loadWorkerConfig() WorkerConfig {
	config := WorkerConfig{
		PollInterval: 6 * time.Hour, // Providers publish daily; a few cycles a day is plenty
		LookbackDays: 3,             // Re-ingest recent days so late provider data converges
		DryRun:       false,
	}

	if interval := os.Getenv("WORKER_POLL_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil && parsed > 0 {
			config.PollInterval = parsed
		}
	}

	if lookback := os.Getenv("WORKER_LOOKBACK_DAYS"); lookback != "" {
		parsed, err := strconv.Atoi(lookback)
		if err != nil || parsed < 0 {
			logger.Fatal("invalid WORKER_LOOKBACK_DAYS", "value", lookback)
		}
		config.LookbackDays = parsed
	}

	if dryRun := os.Getenv("WORKER_DRY_RUN"); dryRun == "true" || dryRun == "1" {
		config.DryRun = true
	}

	return config
}
