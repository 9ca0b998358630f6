package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // ingest.timezone must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvConfigFile names an explicit config file, bypassing the search path.
const EnvConfigFile = "STOCKINGEST_CONFIG"

type Config struct {
	AlphaVantage AlphaVantageConfig `mapstructure:"alphavantage"`
	Ingest       IngestConfig       `mapstructure:"ingest"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Postgres     PostgresConfig     `mapstructure:"postgres"`
	SQLite       SQLiteConfig       `mapstructure:"sqlite"`
	Report       ReportConfig       `mapstructure:"report"`
	Log          LogConfig          `mapstructure:"log"`
}

type AlphaVantageConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	APIKey          string        `mapstructure:"api_key"`
	APIKeyParameter string        `mapstructure:"api_key_parameter"` // SSM parameter holding the key (optional)
	OutputSize      string        `mapstructure:"output_size"`       // "full" or "compact"
	Timeout         time.Duration `mapstructure:"timeout"`
	Retry           RetryConfig   `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

type IngestConfig struct {
	Mode      string          `mapstructure:"mode"` // "daily" or "range"
	Symbols   []string        `mapstructure:"symbols"`
	DateRange DateRangeConfig `mapstructure:"date_range"`
	Timezone  string          `mapstructure:"timezone"` // zone used to compute "yesterday"
	Schedule  string          `mapstructure:"schedule"` // cron spec with seconds; empty runs once
}

type DateRangeConfig struct {
	Start string `mapstructure:"start"` // YYYY-MM-DD
	End   string `mapstructure:"end"`   // YYYY-MM-DD
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // "postgres", "sqlite" or "memory"
	DSN    string `mapstructure:"dsn"`    // overrides the driver specific settings when set
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type ReportConfig struct {
	OutputPath string `mapstructure:"output_path"` // directory for the CSV files
}

type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
}

const (
	ModeDaily = "daily"
	ModeRange = "range"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// DefaultSymbols are the ten largest BSE listings by market cap.
var DefaultSymbols = []string{
	"RELIANCE.BSE", "TCS.BSE", "HDFCBANK.BSE", "ICICIBANK.BSE", "BHARTIARTL.BSE",
	"SBIN.BSE", "INFY.BSE", "LICI.BSE", "HINDUNILVR.BSE", "ITC.BSE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("alphavantage.endpoint", "https://www.alphavantage.co/query")
	v.SetDefault("alphavantage.api_key", "")
	v.SetDefault("alphavantage.api_key_parameter", "")
	v.SetDefault("alphavantage.output_size", "full")
	v.SetDefault("alphavantage.timeout", 30*time.Second)
	v.SetDefault("alphavantage.retry.max_attempts", 3)
	v.SetDefault("alphavantage.retry.base_delay", 2*time.Second)
	v.SetDefault("alphavantage.retry.max_delay", 20*time.Second)

	v.SetDefault("ingest.mode", ModeDaily)
	v.SetDefault("ingest.symbols", DefaultSymbols)
	v.SetDefault("ingest.date_range.start", "")
	v.SetDefault("ingest.date_range.end", "")
	v.SetDefault("ingest.timezone", "UTC")
	v.SetDefault("ingest.schedule", "")

	v.SetDefault("storage.driver", DriverPostgres)
	v.SetDefault("storage.dsn", "")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "stock_market_data")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
	v.SetDefault("postgres.create_database", false)
	v.SetDefault("postgres.max_open_conns", 5)
	v.SetDefault("postgres.max_idle_conns", 2)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("postgres.ssm.host_parameter", "")
	v.SetDefault("postgres.ssm.user_parameter", "")
	v.SetDefault("postgres.ssm.password_parameter", "")

	v.SetDefault("sqlite.path", "stock_data.db")

	v.SetDefault("report.output_path", ".")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_file", "")
	v.SetDefault("log.environment", "dev")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 7)
}

// Load loads application configuration using Viper.
// A .env file in the working directory is applied to the environment first,
// then config.yaml is read and environment variables override it
// (e.g. ALPHAVANTAGE_API_KEY, INGEST_SYMBOLS=TCS.BSE,INFY.BSE).
// A missing config.yaml is not an error; defaults and the environment still apply.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path := os.Getenv(EnvConfigFile); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // config.yaml
		v.SetConfigType("yaml")

		ex, _ := os.Executable()
		if strings.Contains(ex, "go-build") {
			pwd, _ := os.Getwd()
			v.AddConfigPath(filepath.Join(pwd, "../../config"))
		} else {
			v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Support environment variables with dot notation (e.g., ALPHAVANTAGE_API_KEY)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Ingest.Symbols = cleanSymbols(cfg.Ingest.Symbols)

	return &cfg, nil
}

func cleanSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Validate checks the settings every entry point needs.
func (c *Config) Validate() error {
	if len(c.Ingest.Symbols) == 0 {
		return fmt.Errorf("ingest.symbols must not be empty")
	}
	switch c.Ingest.Mode {
	case ModeDaily:
	case ModeRange:
		if _, _, err := c.Ingest.DateRange.Parse(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("ingest.mode must be %q or %q, got %q", ModeDaily, ModeRange, c.Ingest.Mode)
	}
	if _, err := c.Ingest.Location(); err != nil {
		return err
	}
	if err := c.ValidateStorage(); err != nil {
		return err
	}
	if c.AlphaVantage.Retry.MaxAttempts < 1 {
		return fmt.Errorf("alphavantage.retry.max_attempts must be at least 1")
	}
	return nil
}

// ValidateStorage checks only the store settings, for entry points that never fetch.
func (c *Config) ValidateStorage() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	case DriverSQLite:
		if c.Storage.DSN == "" && c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver must be one of postgres, sqlite, memory, got %q", c.Storage.Driver)
	}
	return nil
}

// ValidateIngest adds the checks only the ingestor needs.
func (c *Config) ValidateIngest() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.AlphaVantage.APIKey == "" && c.AlphaVantage.APIKeyParameter == "" {
		return fmt.Errorf("alphavantage.api_key or alphavantage.api_key_parameter is required")
	}
	return nil
}

// Parse returns the configured range as dates.
func (r DateRangeConfig) Parse() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("ingest.date_range.start: %w", err)
	}
	end, err := time.Parse("2006-01-02", r.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("ingest.date_range.end: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("ingest.date_range.end %s is before start %s", r.End, r.Start)
	}
	return start, end, nil
}

// Location resolves the configured timezone.
func (c IngestConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("ingest.timezone: %w", err)
	}
	return loc, nil
}
