package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stockingest/config"
	"stockingest/internal/report"
	"stockingest/logger"
	"stockingest/pkg/storage"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return 1
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		return 1
	}
	defer log.Sync()

	if err := cfg.ValidateStorage(); err != nil {
		log.Error("invalid config", zap.Error(err))
		return 1
	}
	if cfg.Storage.Driver == config.DriverMemory {
		log.Error("the memory store does not persist between runs; choose postgres or sqlite")
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

	store, err := storage.Open(ctx, cfg, params)
	if err != nil {
		log.Error("failed to open store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
		return 1
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure schema", zap.Error(err))
		return 1
	}

	paths, err := report.Generate(ctx, store, cfg.Report.OutputPath, log.Named("report"))
	if err != nil {
		log.Error("report export failed", zap.Error(err))
		return 1
	}

	log.Info("reports exported", zap.Strings("files", paths))
	return 0
}
