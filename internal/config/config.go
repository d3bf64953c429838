package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/pljobs/internal/scheduler"
)

// Config is the root configuration for pljobs.
type Config struct {
	Storage      StorageConfig
	Reference    ReferenceConfig
	Salary       SalaryConfig
	Role         RoleConfig
	Translate    TranslateConfig
	Notification NotificationConfig
	Schedule     string // cron expression for `pljobs start`
	Telemetry    TelemetryConfig
	Log          LogConfig
}

// StorageConfig selects the backend holding staging rows and postings.
type StorageConfig struct {
	Driver     string           `yaml:"driver"` // "sqlite" or "clickhouse"
	Path       string           `yaml:"path"`   // sqlite database file
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

type ClickHouseConfig struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ReferenceConfig points at a directory whose taxonomy.yaml / gazetteer.csv
// replace the built-in ones.
type ReferenceConfig struct {
	Dir string `yaml:"dir"`
}

type SalaryConfig struct {
	TaxRate         float64 `yaml:"tax_rate"`
	HoursPerMonth   float64 `yaml:"hours_per_month"`
	HourlyThreshold float64 `yaml:"hourly_threshold"`
}

type RoleConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// TranslateConfig controls the optional machine-translation backend. The
// word dictionary applies regardless.
type TranslateConfig struct {
	Enabled    bool
	BaseURL    string
	APIKey     string // expanded from env var by Load
	Timeout    time.Duration
	Workers    int
	MinDelay   time.Duration // gap between requests to the backend
	MaxRetries int
	RetryDelay time.Duration
	Cache      CacheConfig
}

// CacheConfig selects where translations are memoized.
type CacheConfig struct {
	Type     string // "none", "memory" or "redis"
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NotificationConfig controls where run summaries go.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log", "slack" or "nats"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
	NATSURL    string `yaml:"nats_url"`    // required if type is "nats"
	Subject    string `yaml:"subject"`
}

type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint"` // OTLP gRPC collector, empty disables tracing
}

type LogConfig struct {
	Format string `yaml:"format"` // "text" or "json"
}

// rawConfig is used for YAML unmarshaling (durations as strings).
type rawConfig struct {
	Storage      StorageConfig      `yaml:"storage"`
	Reference    ReferenceConfig    `yaml:"reference"`
	Salary       SalaryConfig       `yaml:"salary"`
	Role         RoleConfig         `yaml:"role"`
	Translate    rawTranslateConfig `yaml:"translate"`
	Notification NotificationConfig `yaml:"notification"`
	Schedule     string             `yaml:"schedule"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Log          LogConfig          `yaml:"log"`
}

type rawTranslateConfig struct {
	Enabled    bool           `yaml:"enabled"`
	BaseURL    string         `yaml:"base_url"`
	APIKey     string         `yaml:"api_key"`
	Timeout    string         `yaml:"timeout"`
	Workers    int            `yaml:"workers"`
	MinDelay   string         `yaml:"min_delay"`
	MaxRetries int            `yaml:"max_retries"`
	RetryDelay string         `yaml:"retry_delay"`
	Cache      rawCacheConfig `yaml:"cache"`
}

type rawCacheConfig struct {
	Type     string `yaml:"type"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"`
}

// defaults are overwritten by whatever the file sets.
func defaults() rawConfig {
	return rawConfig{
		Storage: StorageConfig{Driver: "sqlite", Path: "pljobs.db"},
		Salary:  SalaryConfig{TaxRate: 0.23, HoursPerMonth: 160, HourlyThreshold: 1000},
		Role:    RoleConfig{Threshold: 0.7},
		Translate: rawTranslateConfig{
			Timeout:    "30s",
			Workers:    4,
			MinDelay:   "200ms",
			MaxRetries: 2,
			RetryDelay: "5s",
			Cache:      rawCacheConfig{Type: "memory", TTL: "720h"},
		},
		Notification: NotificationConfig{Type: "log", Subject: "pljobs.runs.completed"},
		Schedule:     "@daily",
		Log:          LogConfig{Format: "text"},
	}
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML, expanding ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	raw := defaults()
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	durations := map[string]*time.Duration{}
	var tr TranslateConfig
	var cacheTTL time.Duration
	durations["translate.timeout"] = &tr.Timeout
	durations["translate.min_delay"] = &tr.MinDelay
	durations["translate.retry_delay"] = &tr.RetryDelay
	durations["translate.cache.ttl"] = &cacheTTL
	values := map[string]string{
		"translate.timeout":     raw.Translate.Timeout,
		"translate.min_delay":   raw.Translate.MinDelay,
		"translate.retry_delay": raw.Translate.RetryDelay,
		"translate.cache.ttl":   raw.Translate.Cache.TTL,
	}
	for key, dst := range durations {
		d, err := time.ParseDuration(values[key])
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", key, values[key], err)
		}
		*dst = d
	}

	tr.Enabled = raw.Translate.Enabled
	tr.BaseURL = raw.Translate.BaseURL
	tr.APIKey = raw.Translate.APIKey
	tr.Workers = raw.Translate.Workers
	tr.MaxRetries = raw.Translate.MaxRetries
	tr.Cache = CacheConfig{
		Type:     raw.Translate.Cache.Type,
		Addr:     raw.Translate.Cache.Addr,
		Password: raw.Translate.Cache.Password,
		DB:       raw.Translate.Cache.DB,
		TTL:      cacheTTL,
	}

	cfg := &Config{
		Storage:      raw.Storage,
		Reference:    raw.Reference,
		Salary:       raw.Salary,
		Role:         raw.Role,
		Translate:    tr,
		Notification: raw.Notification,
		Schedule:     raw.Schedule,
		Telemetry:    raw.Telemetry,
		Log:          raw.Log,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Storage.Driver {
	case "sqlite":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case "clickhouse":
		if cfg.Storage.ClickHouse.Addr == "" {
			return fmt.Errorf("storage.clickhouse.addr is required for the clickhouse driver")
		}
	default:
		return fmt.Errorf("storage.driver must be \"sqlite\" or \"clickhouse\", got %q", cfg.Storage.Driver)
	}

	s := cfg.Salary
	if s.TaxRate < 0 || s.TaxRate >= 1 {
		return fmt.Errorf("salary.tax_rate must be in [0, 1), got %v", s.TaxRate)
	}
	if s.HoursPerMonth <= 0 || s.HourlyThreshold <= 0 {
		return fmt.Errorf("salary.hours_per_month and salary.hourly_threshold must be positive")
	}

	if cfg.Role.Threshold <= 0 || cfg.Role.Threshold > 1 {
		return fmt.Errorf("role.threshold must be in (0, 1], got %v", cfg.Role.Threshold)
	}

	t := cfg.Translate
	if t.Workers < 1 {
		return fmt.Errorf("translate.workers must be at least 1, got %d", t.Workers)
	}
	if t.Enabled {
		if t.BaseURL == "" {
			return fmt.Errorf("translate.base_url is required when translate.enabled is true")
		}
		if t.MaxRetries < 0 {
			return fmt.Errorf("translate.max_retries must not be negative")
		}
		switch t.Cache.Type {
		case "none", "memory":
		case "redis":
			if t.Cache.Addr == "" {
				return fmt.Errorf("translate.cache.addr is required when translate.cache.type is \"redis\"")
			}
		default:
			return fmt.Errorf("translate.cache.type must be none, memory or redis, got %q", t.Cache.Type)
		}
	}

	n := cfg.Notification
	switch n.Type {
	case "log":
	case "slack":
		if n.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(n.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	case "nats":
		if n.NATSURL == "" {
			return fmt.Errorf("notification.nats_url is required when type is \"nats\"")
		}
	default:
		return fmt.Errorf("notification.type must be log, slack or nats, got %q", n.Type)
	}

	if err := scheduler.ValidateSpec(cfg.Schedule); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", cfg.Log.Format)
	}
	return nil
}
