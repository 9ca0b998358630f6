package config

import (
	"context"
	"fmt"
	"time"
)

// PostgresConfig defines the configuration for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`

	// CreateDatabase creates DBName on startup when it does not exist.
	CreateDatabase bool `mapstructure:"create_database"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// SSM names the Parameter Store entries used for credentials in prod.
	SSM PostgresSSMConfig `mapstructure:"ssm"`
}

type PostgresSSMConfig struct {
	HostParameter     string `mapstructure:"host_parameter"`
	UserParameter     string `mapstructure:"user_parameter"`
	PasswordParameter string `mapstructure:"password_parameter"`
}

// DSN builds a key=value connection string. In the "prod" environment the host,
// user and password come from Parameter Store when their parameter names are set.
func (cfg *PostgresConfig) DSN(ctx context.Context, env string, params ParameterStore) (string, error) {
	host, user, password := cfg.Host, cfg.User, cfg.Password

	if env == "prod" && params != nil {
		var err error
		if host, err = resolveParameter(ctx, params, cfg.SSM.HostParameter, host); err != nil {
			return "", err
		}
		if user, err = resolveParameter(ctx, params, cfg.SSM.UserParameter, user); err != nil {
			return "", err
		}
		if password, err = resolveParameter(ctx, params, cfg.SSM.PasswordParameter, password); err != nil {
			return "", err
		}
	}

	return cfg.dsnFor(host, user, password, cfg.DBName), nil
}

// MaintenanceDSN points at the "postgres" database, used to create DBName.
func (cfg *PostgresConfig) MaintenanceDSN() string {
	return cfg.dsnFor(cfg.Host, cfg.User, cfg.Password, "postgres")
}

func (cfg *PostgresConfig) dsnFor(host, user, password, dbname string) string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, cfg.Port, user, password, dbname, cfg.SSLMode,
	)

	if cfg.TimeZone != "" {
		dsn += fmt.Sprintf(" TimeZone=%s", cfg.TimeZone)
	}

	return dsn
}

func resolveParameter(ctx context.Context, params ParameterStore, name, fallback string) (string, error) {
	if name == "" {
		return fallback, nil
	}
	v, err := params.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("resolve parameter %s: %w", name, err)
	}
	return v, nil
}
