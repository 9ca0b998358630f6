package postgres

import (
	"context"
	"fmt"

	"stockingest/config"
	"stockingest/internal/apperr"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type PostgresClient struct {
	DB *gorm.DB
}

// NewClient opens a pooled connection and pings it. Connection failures are StoreUnavailable.
func NewClient(dsn string) (*PostgresClient, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, apperr.StoreUnavailable("postgres.connect", err, "failed to connect to postgres")
	}

	return &PostgresClient{DB: db}, nil
}

// ConfigurePool applies the pool limits from cfg.
func (p *PostgresClient) ConfigurePool(cfg config.PostgresConfig) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return nil
}

// Connect optionally creates the database, opens a client and applies the pool limits.
// The schema is left to EnsureSchema.
func Connect(ctx context.Context, cfg config.PostgresConfig, dsn string) (*PostgresClient, error) {
	if cfg.CreateDatabase {
		if err := CreateDatabase(ctx, cfg); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	client, err := NewClient(dsn)
	if err != nil {
		return nil, err
	}

	if err := client.ConfigurePool(cfg); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// EnsureSchema creates stock_data when it is missing. Safe to call repeatedly.
func (p *PostgresClient) EnsureSchema(ctx context.Context) error {
	if err := p.DB.WithContext(ctx).AutoMigrate(&StockDataRecord{}); err != nil {
		return classify("postgres.ensure_schema", err)
	}
	return nil
}

func (p *PostgresClient) IsHealthy(ctx context.Context) bool {
	db, err := p.DB.DB()
	if err != nil {
		return false
	}
	return db.PingContext(ctx) == nil
}

func (p *PostgresClient) Close() error {
	db, err := p.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	return db.Close()
}
