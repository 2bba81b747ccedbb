package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all service settings.
const envPrefix = "TOXSCOPE"

// configKeys enumerates every settable key. Viper only unmarshals keys it
// knows about, so each one is bound explicitly; without this an env-only
// setting such as TOXSCOPE_SERVER_PORT would be silently ignored.
var configKeys = []string{
	"server.port",
	"server.read_timeout",
	"server.write_timeout",
	"server.max_body_size",
	"server.shutdown_timeout",
	"server.allowed_origins",
	"log.level",
	"log.format",
	"log.output_paths",
	"metrics.enabled",
	"metrics.path",
	"data.source",
	"data.root",
	"data.http.base_url",
	"data.http.timeout",
	"data.http.max_body_size",
	"data.object.endpoint",
	"data.object.access_key_id",
	"data.object.secret_access_key",
	"data.object.use_ssl",
	"data.object.region",
	"data.object.bucket",
	"data.object.prefix",
	"data.compounds_resource",
	"data.stats_resource",
	"cache.enabled",
	"cache.addr",
	"cache.password",
	"cache.db",
	"cache.ttl",
	"cache.key_prefix",
	"database.enabled",
	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.db_name",
	"database.ssl_mode",
	"database.max_conns",
	"database.min_conns",
	"database.conn_max_lifetime",
	"database.conn_timeout",
	"embedding.ids_resource",
	"explore.initial_dose",
	"explore.quiet_interval",
	"explore.bin_count",
}

// newViper builds a pre-configured Viper instance with the service's standard
// settings: YAML file type, TOXSCOPE_ env prefix, automatic env binding, and
// a key replacer that maps "." → "_" so that nested keys like "data.source"
// resolve to "TOXSCOPE_DATA_SOURCE".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges any TOXSCOPE_* environment
// variable overrides, applies service defaults for unset fields, and
// validates the result. It returns a fully-populated *Config or a
// descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from TOXSCOPE_* environment variables,
// with no config file required. This is the preferred loading strategy for
// containerised deployments.
//
// Environment variable naming convention:
//
//	TOXSCOPE_<SECTION>_<FIELD>   e.g.  TOXSCOPE_SERVER_PORT, TOXSCOPE_DATA_ROOT
func LoadFromEnv() (*Config, error) {
	v := newViper()
	// No config file; rely solely on env vars and defaults.
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk. It is intended for
// hot-reloading non-critical settings such as the log level; callers are
// responsible for applying only the safe subset of changes at runtime.
//
// Watch is non-blocking; it starts a background goroutine managed by viper.
// A changed file that fails to parse or validate is skipped without invoking
// onChange.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read; errors are ignored here, callers should call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always
// fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
