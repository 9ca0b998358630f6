// Package storage selects the price store backend from configuration.
package storage

import (
	"context"
	"fmt"

	"stockingest/config"
	"stockingest/internal/pricebar"
	"stockingest/pkg/storage/memory"
	"stockingest/pkg/storage/postgres"
	"stockingest/pkg/storage/sqlite"
)

// Store is implemented by every backend.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, bars []pricebar.PriceBar) error

	DailyVariations(ctx context.Context) ([]pricebar.Variation, error)
	VolumeChanges(ctx context.Context) ([]pricebar.VolumeChange, error)
	MedianVariations(ctx context.Context) ([]pricebar.MedianVariation, error)

	Close() error
}

var (
	_ Store = (*postgres.PostgresClient)(nil)
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*memory.Store)(nil)
)

// Open connects to the backend named by storage.driver. storage.dsn, when set,
// replaces the driver specific connection settings. params may be nil outside prod.
func Open(ctx context.Context, cfg *config.Config, params config.ParameterStore) (Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		dsn := cfg.Storage.DSN
		if dsn == "" {
			var err error
			if dsn, err = cfg.Postgres.DSN(ctx, cfg.Log.Environment, params); err != nil {
				return nil, fmt.Errorf("postgres dsn: %w", err)
			}
		}
		client, err := postgres.Connect(ctx, cfg.Postgres, dsn)
		if err != nil {
			return nil, err
		}
		return client, nil

	case config.DriverSQLite:
		path := cfg.Storage.DSN
		if path == "" {
			path = cfg.SQLite.Path
		}
		store, err := sqlite.NewStore(ctx, path)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverMemory:
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
