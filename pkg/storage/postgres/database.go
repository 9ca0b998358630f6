package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"stockingest/config"
	"stockingest/internal/apperr"

	"github.com/lib/pq"
)

// CreateDatabase connects to the server's maintenance database and creates
// cfg.DBName if it doesn't exist.
func CreateDatabase(ctx context.Context, cfg config.PostgresConfig) error {
	db, err := sql.Open("postgres", cfg.MaintenanceDSN())
	if err != nil {
		return apperr.StoreUnavailable("postgres.create_database", err, "connect failed")
	}
	defer db.Close()

	// Check if database exists
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1);`
	if err := db.QueryRowContext(ctx, query, cfg.DBName).Scan(&exists); err != nil {
		return apperr.StoreUnavailable("postgres.create_database", err, "check db exists failed")
	}

	if exists {
		return nil
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(cfg.DBName)))
	if err != nil {
		return apperr.StoreWrite("postgres.create_database", err, "create db failed")
	}

	return nil
}
