// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/crowelogic/tiergate/domain/tier"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TIERGATE_"

// Storage kinds.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Backend kinds.
const (
	BackendMock   = "mock"
	BackendRemote = "remote"
)

// Config is the root configuration structure.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Auth          AuthConfig         `yaml:"auth"`
	Storage       StorageConfig      `yaml:"storage"`
	Usage         UsageConfig        `yaml:"usage"`
	Backend       BackendConfig      `yaml:"backend"`
	Logging       LoggingConfig      `yaml:"logging"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	OpenAPI       OpenAPIConfig      `yaml:"openapi"`
	Subscriptions []SubscriptionSeed `yaml:"subscriptions"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig configures operator authentication. The admin API is disabled
// when AdminKeyHash is empty.
type AuthConfig struct {
	AdminKeyHash string `yaml:"admin_key_hash,omitempty"` // bcrypt hash, see `tiergate hash-admin-key`
}

// StorageConfig selects the subscription store and usage ledger backends.
type StorageConfig struct {
	Subscriptions string      `yaml:"subscriptions"` // "memory" or "sqlite"
	Usage         string      `yaml:"usage"`         // "memory", "sqlite" or "redis"
	DSN           string      `yaml:"dsn"`           // sqlite path
	Redis         RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig configures the Redis usage ledger.
type RedisConfig struct {
	URL       string `yaml:"url"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// UsageConfig configures usage retention.
type UsageConfig struct {
	RetentionPeriods int           `yaml:"retention_periods"` // months kept, current included
	PruneInterval    time.Duration `yaml:"prune_interval"`
	Shards           int           `yaml:"shards,omitempty"` // memory ledger only
}

// BackendConfig configures the generation backend.
type BackendConfig struct {
	Kind    string            `yaml:"kind"` // "mock" or "remote"
	URL     string            `yaml:"url,omitempty"`
	APIKey  string            `yaml:"api_key,omitempty"`
	Timeout time.Duration     `yaml:"timeout,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Latency time.Duration     `yaml:"latency,omitempty"` // mock only
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"` // Enable /metrics endpoint
}

// OpenAPIConfig configures OpenAPI/Swagger documentation.
type OpenAPIConfig struct {
	Enabled bool `yaml:"enabled"` // Enable /swagger endpoints
}

// SubscriptionSeed declares a subscription applied at startup and on
// reload. Exactly one of APIKey or CallerID names the caller.
type SubscriptionSeed struct {
	APIKey      string `yaml:"api_key,omitempty"`
	CallerID    string `yaml:"caller_id,omitempty"`
	Tier        string `yaml:"tier"`
	CustomerRef string `yaml:"customer_ref,omitempty"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, then applies environment overrides,
// defaults and validation.
func Parse(data []byte) (*Config, error) {
	data = expandEnv(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// envRef matches ${NAME} references. Bare $ text is left alone so bcrypt
// hashes ($2a$10$...) survive loading.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv substitutes ${NAME} with the environment value of NAME.
func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		name := envRef.FindSubmatch(ref)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	TIERGATE_SERVER_HOST          - Server host (default: 0.0.0.0)
//	TIERGATE_SERVER_PORT          - Server port (default: 8080)
//	TIERGATE_ADMIN_KEY_HASH       - bcrypt hash of the operator key
//	TIERGATE_STORAGE_SUBSCRIPTIONS - memory or sqlite (default: sqlite)
//	TIERGATE_STORAGE_USAGE        - memory, sqlite or redis (default: sqlite)
//	TIERGATE_STORAGE_DSN          - SQLite path (default: tiergate.db)
//	TIERGATE_REDIS_URL            - Redis URL for the usage ledger
//	TIERGATE_USAGE_RETENTION      - Monthly periods kept (default: 12)
//	TIERGATE_BACKEND_KIND         - mock or remote (default: mock)
//	TIERGATE_BACKEND_URL          - Remote backend base URL
//	TIERGATE_BACKEND_API_KEY      - Remote backend API key
//	TIERGATE_LOG_LEVEL            - debug, info, warn, error (default: info)
//	TIERGATE_LOG_FORMAT           - json or console (default: json)
//	TIERGATE_METRICS_ENABLED      - Enable /metrics (default: false)
//	TIERGATE_OPENAPI_ENABLED      - Enable /swagger (default: false)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFallback loads path when it exists and falls back to environment
// variables otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies TIERGATE_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	if v := env("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := env("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := env("SERVER_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.RequestTimeout = d
		}
	}

	if v := env("ADMIN_KEY_HASH"); v != "" {
		cfg.Auth.AdminKeyHash = v
	}

	if v := env("STORAGE_SUBSCRIPTIONS"); v != "" {
		cfg.Storage.Subscriptions = v
	}
	if v := env("STORAGE_USAGE"); v != "" {
		cfg.Storage.Usage = v
	}
	if v := env("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := env("REDIS_URL"); v != "" {
		cfg.Storage.Redis.URL = v
	}

	if v := env("USAGE_RETENTION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Usage.RetentionPeriods = n
		}
	}
	if v := env("USAGE_PRUNE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Usage.PruneInterval = d
		}
	}

	if v := env("BACKEND_KIND"); v != "" {
		cfg.Backend.Kind = v
	}
	if v := env("BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := env("BACKEND_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}

	if v := env("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := env("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := env("OPENAPI_ENABLED"); v != "" {
		cfg.OpenAPI.Enabled = parseBool(v)
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Storage.Subscriptions == "" {
		cfg.Storage.Subscriptions = StorageSQLite
	}
	if cfg.Storage.Usage == "" {
		cfg.Storage.Usage = StorageSQLite
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "tiergate.db"
	}

	if cfg.Usage.RetentionPeriods == 0 {
		cfg.Usage.RetentionPeriods = 12
	}
	if cfg.Usage.PruneInterval == 0 {
		cfg.Usage.PruneInterval = 24 * time.Hour
	}

	if cfg.Backend.Kind == "" {
		cfg.Backend.Kind = BackendMock
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", cfg.Server.Port)
	}

	validSubscriptionStores := map[string]bool{StorageMemory: true, StorageSQLite: true}
	if !validSubscriptionStores[cfg.Storage.Subscriptions] {
		return fmt.Errorf("storage.subscriptions must be 'memory' or 'sqlite', got %q", cfg.Storage.Subscriptions)
	}
	validUsageStores := map[string]bool{StorageMemory: true, StorageSQLite: true, StorageRedis: true}
	if !validUsageStores[cfg.Storage.Usage] {
		return fmt.Errorf("storage.usage must be one of: memory, sqlite, redis, got %q", cfg.Storage.Usage)
	}
	if cfg.Storage.Usage == StorageRedis && cfg.Storage.Redis.URL == "" {
		return fmt.Errorf("storage.redis.url is required when storage.usage is 'redis'")
	}

	if cfg.Usage.RetentionPeriods < 1 {
		return fmt.Errorf("usage.retention_periods must be at least 1, got %d", cfg.Usage.RetentionPeriods)
	}
	if cfg.Usage.PruneInterval < 0 {
		return fmt.Errorf("usage.prune_interval must not be negative")
	}

	validBackends := map[string]bool{BackendMock: true, BackendRemote: true}
	if !validBackends[cfg.Backend.Kind] {
		return fmt.Errorf("backend.kind must be 'mock' or 'remote', got %q", cfg.Backend.Kind)
	}
	if cfg.Backend.Kind == BackendRemote && cfg.Backend.URL == "" {
		return fmt.Errorf("backend.url is required when backend.kind is 'remote'")
	}
	if cfg.Backend.Latency < 0 {
		return fmt.Errorf("backend.latency must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	for i, s := range cfg.Subscriptions {
		if (s.APIKey == "") == (s.CallerID == "") {
			return fmt.Errorf("subscriptions[%d]: exactly one of api_key or caller_id is required", i)
		}
		if _, err := tier.Parse(s.Tier); err != nil {
			return fmt.Errorf("subscriptions[%d]: %w", i, err)
		}
	}

	return nil
}

// NeedsSQLite reports whether any configured store uses SQLite.
func (cfg *Config) NeedsSQLite() bool {
	return cfg.Storage.Subscriptions == StorageSQLite || cfg.Storage.Usage == StorageSQLite
}
