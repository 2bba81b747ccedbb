package config

import (
	"time"

	"github.com/toxscope/toxscope/internal/application/embedding"
	"github.com/toxscope/toxscope/internal/application/explore"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort      = 8080
	DefaultShutdownTimeout = 15 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath = "/metrics"

	DefaultDataSource        = "file"
	DefaultDataRoot          = "./data"
	DefaultCompoundsResource = "compounds.json"
	DefaultStatsResource     = "stats.json"

	DefaultDBPort     = 5432
	DefaultDBMaxConns = 10

	DefaultInitialDose = 10.0
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields that have already been set by the caller are left unchanged so that
// explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Data ──────────────────────────────────────────────────────────────────
	if cfg.Data.Source == "" {
		cfg.Data.Source = DefaultDataSource
	}
	if cfg.Data.Root == "" {
		cfg.Data.Root = DefaultDataRoot
	}
	if cfg.Data.CompoundsResource == "" {
		cfg.Data.CompoundsResource = DefaultCompoundsResource
	}
	if cfg.Data.StatsResource == "" {
		cfg.Data.StatsResource = DefaultStatsResource
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Embedding ─────────────────────────────────────────────────────────────
	if cfg.Embedding.IDsResource == "" {
		cfg.Embedding.IDsResource = embedding.IDsResource
	}

	// ── Explore ───────────────────────────────────────────────────────────────
	if cfg.Explore.InitialDose == 0 {
		cfg.Explore.InitialDose = DefaultInitialDose
	}
	if cfg.Explore.QuietInterval == 0 {
		cfg.Explore.QuietInterval = explore.DefaultQuietInterval
	}
	if cfg.Explore.BinCount == 0 {
		cfg.Explore.BinCount = explore.DefaultBinCount
	}
}
