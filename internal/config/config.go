// Package config loads the scheduler's runtime configuration from a
// YAML/JSON file with environment-variable overrides, in the same layered
// style the rest of this codebase's services use.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Search   SearchConfig   `json:"search"`
	Logging  LoggingConfig  `json:"logging"`
	Metrics  MetricsConfig  `json:"metrics"`
	Store    StoreConfig    `json:"store"`
	Cache    CacheConfig    `json:"cache"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr             string `json:"addr"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst            int    `json:"burst"`
}

// SearchConfig holds time-limit settings for the search engine. The serve
// command caps each request's time limit at MaxTimeLimitSeconds.
// DefaultTimeLimitSeconds is only checked by Validate; a request that omits
// its limit gets model.DefaultTimeLimitSeconds from its adapter instead.
type SearchConfig struct {
	DefaultTimeLimitSeconds int `json:"default_time_limit_seconds"`
	MaxTimeLimitSeconds     int `json:"max_time_limit_seconds"`
}

// LoggingConfig holds the log level. Validate checks it; the logger the
// serve command builds does not read it.
type LoggingConfig struct {
	Level string `json:"level"`
}

// MetricsConfig holds Prometheus endpoint settings. The HTTP API always
// serves metrics at /metrics and does not read these fields.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StoreConfig points at the audit store backend. DSN empty means run with
// the in-memory store instead of Postgres.
type StoreConfig struct {
	DSN string `json:"dsn"`
}

// CacheConfig points at the response cache backend. Addr empty means run
// with the in-memory cache instead of Redis.
type CacheConfig struct {
	Addr string        `json:"addr"`
	TTLSeconds int      `json:"ttl_seconds"`
}

// SetDefaults applies sane defaults to every zero-valued field.
func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RequestsPerSecond == 0 {
		c.Server.RequestsPerSecond = 20
	}
	if c.Server.Burst == 0 {
		c.Server.Burst = 40
	}
	if c.Search.DefaultTimeLimitSeconds == 0 {
		c.Search.DefaultTimeLimitSeconds = 30
	}
	if c.Search.MaxTimeLimitSeconds == 0 {
		c.Search.MaxTimeLimitSeconds = 300
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 60
	}
}

// Validate checks mandatory invariants once defaults have been applied.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Search.DefaultTimeLimitSeconds <= 0 {
		return fmt.Errorf("search.default_time_limit_seconds must be > 0")
	}
	if c.Search.MaxTimeLimitSeconds < c.Search.DefaultTimeLimitSeconds {
		return fmt.Errorf("search.max_time_limit_seconds must be >= default_time_limit_seconds")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}

// Load reads path (yaml or json), overlays SCHEDULER_-prefixed environment
// variables, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("SCHEDULER_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "scheduler_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
