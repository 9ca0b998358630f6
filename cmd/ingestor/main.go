package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockingest/config"
	"stockingest/internal/ingest"
	"stockingest/internal/scheduler"
	"stockingest/logger"
	"stockingest/pkg/alphavantage"
	"stockingest/pkg/httputil"
	"stockingest/pkg/storage"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	// viper config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return 1
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		return 1
	}
	defer log.Sync()

	if err := cfg.ValidateIngest(); err != nil {
		log.Error("invalid config", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var params config.ParameterStore
	if cfg.NeedsParameterStore() {
		ssmStore, err := config.NewSSMParameterStore(ctx)
		if err != nil {
			log.Error("failed to init parameter store", zap.Error(err))
			return 1
		}
		params = ssmStore
	}
	if err := cfg.ResolveSecrets(ctx, params); err != nil {
		log.Error("failed to resolve secrets", zap.Error(err))
		return 1
	}

	outputSize, err := alphavantage.ParseOutputSize(cfg.AlphaVantage.OutputSize)
	if err != nil {
		log.Error("invalid config", zap.Error(err))
		return 1
	}
	client := alphavantage.NewRESTClient(
		cfg.AlphaVantage.Endpoint,
		cfg.AlphaVantage.APIKey,
		cfg.AlphaVantage.Timeout,
		httputil.RetryConfig{
			MaxAttempts: cfg.AlphaVantage.Retry.MaxAttempts,
			BaseDelay:   cfg.AlphaVantage.Retry.BaseDelay,
			MaxDelay:    cfg.AlphaVantage.Retry.MaxDelay,
		},
		log.Named("alphavantage"),
	).WithOutputSize(outputSize)

	store, err := storage.Open(ctx, cfg, params)
	if err != nil {
		log.Error("failed to open store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
		return 1
	}
	defer store.Close()

	pipeline := ingest.NewPipeline(client, store, log.Named("ingest"))

	ingestOnce := func(ctx context.Context) error {
		filter, err := ingest.FilterFor(cfg.Ingest, time.Now())
		if err != nil {
			return err
		}
		summary, err := pipeline.Run(ctx, cfg.Ingest.Symbols, filter)
		if err != nil {
			return err
		}
		return summary.Err()
	}

	if cfg.Ingest.Schedule == "" {
		if err := ingestOnce(ctx); err != nil {
			log.Error("ingestion finished with errors", zap.Error(err))
			return 1
		}
		return 0
	}

	sched, err := newScheduler(cfg.Ingest, log.Named("scheduler"))
	if err != nil {
		log.Error("invalid schedule", zap.Error(err))
		return 1
	}

	// Failures of a scheduled run are logged; the process keeps going until signalled.
	if err := sched.Run(ctx, func(ctx context.Context) {
		if err := ingestOnce(ctx); err != nil {
			log.Error("ingestion finished with errors", zap.Error(err))
		}
	}); err != nil {
		log.Error("scheduler failed", zap.Error(err))
		return 1
	}
	return 0
}

// newScheduler builds the cron scheduler in the configured timezone.
func newScheduler(cfg config.IngestConfig, log *zap.Logger) (*scheduler.Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return scheduler.New(cfg.Schedule, loc, log)
}
