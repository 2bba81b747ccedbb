// Package config defines all configuration structures for the toxscope
// service. No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/toxscope/toxscope/internal/infrastructure/fetch"
	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// AllowedOrigins configures CORS for the dashboard frontend. "*" allows
	// any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DataConfig selects where the compound dataset, descriptor statistics, and
// embedding resources are fetched from.
type DataConfig struct {
	// Source is "file", "http" or "object".
	Source string `mapstructure:"source"`

	// Root is the base directory for the "file" source.
	Root string `mapstructure:"root"`

	HTTP   fetch.HTTPConfig        `mapstructure:"http"`
	Object fetch.ObjectStoreConfig `mapstructure:"object"`

	// CompoundsResource and StatsResource name the dataset files relative to
	// the source root.
	CompoundsResource string `mapstructure:"compounds_resource"`
	StatsResource     string `mapstructure:"stats_resource"`
}

// CacheConfig holds the Redis read-through fetch cache settings.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`

	fetch.CacheConfig `mapstructure:",squash"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the optional
// relational dataset source.
type DatabaseConfig struct {
	Enabled bool `mapstructure:"enabled"`

	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnTimeout     time.Duration `mapstructure:"conn_timeout"`
}

// EmbeddingConfig holds embedding loader settings.
type EmbeddingConfig struct {
	// IDsResource names the canonical positional id list.
	IDsResource string `mapstructure:"ids_resource"`
}

// ExploreConfig holds exploration session tunables.
type ExploreConfig struct {
	// InitialDose is the therapeutic dose a new session starts at.
	InitialDose float64 `mapstructure:"initial_dose"`

	// QuietInterval is the trailing-edge debounce window for dose and range
	// controls.
	QuietInterval time.Duration `mapstructure:"quiet_interval"`

	// BinCount is the descriptor histogram resolution.
	BinCount int `mapstructure:"bin_count"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the whole service. Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       logging.Config  `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Data      DataConfig      `mapstructure:"data"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Explore   ExploreConfig   `mapstructure:"explore"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the service.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Data
	switch c.Data.Source {
	case "file":
		if c.Data.Root == "" {
			return fmt.Errorf("config: data.root is required for the file source")
		}
	case "http":
		if c.Data.HTTP.BaseURL == "" {
			return fmt.Errorf("config: data.http.base_url is required for the http source")
		}
	case "object":
		if c.Data.Object.Endpoint == "" || c.Data.Object.Bucket == "" {
			return fmt.Errorf("config: data.object.endpoint and data.object.bucket are required for the object source")
		}
	default:
		return fmt.Errorf("config: data.source %q is invalid; expected file|http|object", c.Data.Source)
	}
	if c.Data.CompoundsResource == "" {
		return fmt.Errorf("config: data.compounds_resource is required")
	}

	// Cache
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return fmt.Errorf("config: cache.addr is required when the cache is enabled")
	}

	// Database
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required")
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
		}
	}

	// Explore
	if c.Explore.InitialDose <= 0 || math.IsNaN(c.Explore.InitialDose) || math.IsInf(c.Explore.InitialDose, 0) {
		return fmt.Errorf("config: explore.initial_dose must be a finite positive number, got %v", c.Explore.InitialDose)
	}
	if c.Explore.BinCount < 1 {
		return fmt.Errorf("config: explore.bin_count must be >= 1, got %d", c.Explore.BinCount)
	}
	if c.Explore.QuietInterval < 0 {
		return fmt.Errorf("config: explore.quiet_interval must not be negative, got %v", c.Explore.QuietInterval)
	}

	return nil
}
