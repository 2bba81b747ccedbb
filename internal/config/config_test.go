package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultMetricsPath, cfg.Metrics.Path)
	assert.Equal(t, DefaultDataSource, cfg.Data.Source)
	assert.Equal(t, DefaultCompoundsResource, cfg.Data.CompoundsResource)
	assert.Equal(t, "ids.txt", cfg.Embedding.IDsResource)
	assert.Equal(t, DefaultInitialDose, cfg.Explore.InitialDose)
	assert.Equal(t, 200*time.Millisecond, cfg.Explore.QuietInterval)
	assert.Equal(t, 24, cfg.Explore.BinCount)
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Explore.InitialDose = 2.5
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 2.5, cfg.Explore.InitialDose)
}

func TestApplyDefaultsNil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
		{
			name:    "unknown data source",
			mutate:  func(c *Config) { c.Data.Source = "ftp" },
			wantErr: "data.source",
		},
		{
			name: "http source without base url",
			mutate: func(c *Config) {
				c.Data.Source = "http"
			},
			wantErr: "data.http.base_url",
		},
		{
			name: "object source without bucket",
			mutate: func(c *Config) {
				c.Data.Source = "object"
				c.Data.Object.Endpoint = "localhost:9000"
			},
			wantErr: "data.object",
		},
		{
			name:    "missing compounds resource",
			mutate:  func(c *Config) { c.Data.CompoundsResource = "" },
			wantErr: "data.compounds_resource",
		},
		{
			name:    "cache enabled without addr",
			mutate:  func(c *Config) { c.Cache.Enabled = true },
			wantErr: "cache.addr",
		},
		{
			name: "database enabled without host",
			mutate: func(c *Config) {
				c.Database.Enabled = true
				c.Database.User = "toxscope"
				c.Database.DBName = "toxscope"
			},
			wantErr: "database.host",
		},
		{
			name:    "zero initial dose",
			mutate:  func(c *Config) { c.Explore.InitialDose = -1 },
			wantErr: "explore.initial_dose",
		},
		{
			name:    "zero bins",
			mutate:  func(c *Config) { c.Explore.BinCount = -1 },
			wantErr: "explore.bin_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toxscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
data:
  source: file
  root: /srv/toxscope/data
explore:
  initial_dose: 25
  bin_count: 12
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/toxscope/data", cfg.Data.Root)
	assert.Equal(t, 25.0, cfg.Explore.InitialDose)
	assert.Equal(t, 12, cfg.Explore.BinCount)
	// Unset fields were defaulted.
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toxscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: verbose\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TOXSCOPE_SERVER_PORT", "7070")
	t.Setenv("TOXSCOPE_DATA_ROOT", "/var/lib/toxscope")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/var/lib/toxscope", cfg.Data.Root)
}

func TestMustLoadPanics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yaml")) })
}
