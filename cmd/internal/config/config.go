package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Query modes understood by the search package.
const (
	QueryModeHybrid     = "hybrid"
	QueryModeMultiMatch = "multi_match"
)

// Config holds the settings resolved once at startup. It is passed by value
// and never mutated afterwards.
type Config struct {
	ElasticsearchURL      string        `yaml:"elasticsearch_url"`
	ElasticsearchIndex    string        `yaml:"elasticsearch_index"`
	ElasticsearchUsername string        `yaml:"elasticsearch_username"`
	ElasticsearchPassword string        `yaml:"elasticsearch_password"`
	LoggingEnabled        bool          `yaml:"-"`
	LoggingIndex          string        `yaml:"elasticsearch_logging_index"`
	LogSinkQueueSize      int           `yaml:"log_sink_queue_size"`
	HTTPAddr              string        `yaml:"http_addr"`
	LogLevel              string        `yaml:"log_level"`
	Env                   string        `yaml:"env"`
	SearchTimeout         time.Duration `yaml:"search_timeout"`
	QueryMode             string        `yaml:"query_mode"`
	SurfaceErrors         bool          `yaml:"-"`
	RedisAddr             string        `yaml:"redis_addr"`
	CacheTTL              time.Duration `yaml:"cache_ttl"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		ElasticsearchURL:   "http://host.docker.internal:9200",
		ElasticsearchIndex: "posts",
		LoggingEnabled:     false,
		LoggingIndex:       "okblog-search-logs",
		LogSinkQueueSize:   256,
		HTTPAddr:           ":3001",
		LogLevel:           "info",
		Env:                "prod",
		SearchTimeout:      10 * time.Second,
		QueryMode:          QueryModeHybrid,
		SurfaceErrors:      false,
		CacheTTL:           30 * time.Second,
	}
}

// Load resolves the configuration from the process environment. When
// SEARCH_CONFIG_FILE is set the YAML file is applied first and environment
// variables override it.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("SEARCH_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.ElasticsearchURL = getEnv("ELASTICSEARCH_URL", cfg.ElasticsearchURL)
	cfg.ElasticsearchIndex = getEnv("ELASTICSEARCH_INDEX", cfg.ElasticsearchIndex)
	cfg.ElasticsearchUsername = getEnv("ELASTICSEARCH_USERNAME", cfg.ElasticsearchUsername)
	cfg.ElasticsearchPassword = getEnv("ELASTICSEARCH_PASSWORD", cfg.ElasticsearchPassword)
	cfg.LoggingEnabled = getEnvBool("ELASTICSEARCH_LOGGING_ENABLED", cfg.LoggingEnabled)
	cfg.LoggingIndex = getEnv("ELASTICSEARCH_LOGGING_INDEX", cfg.LoggingIndex)
	cfg.LogSinkQueueSize = getEnvInt("LOG_SINK_QUEUE_SIZE", cfg.LogSinkQueueSize)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.SearchTimeout = getEnvDuration("SEARCH_TIMEOUT", cfg.SearchTimeout)
	cfg.QueryMode = strings.ToLower(getEnv("SEARCH_QUERY_MODE", cfg.QueryMode))
	cfg.SurfaceErrors = getEnvBool("SEARCH_SURFACE_ERRORS", cfg.SurfaceErrors)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.CacheTTL = getEnvDuration("SEARCH_CACHE_TTL", cfg.CacheTTL)

	if cfg.QueryMode != QueryModeMultiMatch {
		cfg.QueryMode = QueryModeHybrid
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	switch cfg.Env {
	case "prod", "local", "dev", "docker":
	default:
		cfg.Env = "prod"
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// CacheEnabled reports whether a Redis address was configured.
func (c Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Flags are read as strings so the file follows the same rule as the
	// environment.
	var flags struct {
		LoggingEnabled *string `yaml:"elasticsearch_logging_enabled"`
		SurfaceErrors  *string `yaml:"surface_errors"`
	}
	if err := yaml.Unmarshal(data, &flags); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if flags.LoggingEnabled != nil {
		c.LoggingEnabled = parseBool(*flags.LoggingEnabled)
	}
	if flags.SurfaceErrors != nil {
		c.SurfaceErrors = parseBool(*flags.SurfaceErrors)
	}

	defaults := Defaults()
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = defaults.SearchTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaults.CacheTTL
	}
	if c.LogSinkQueueSize <= 0 {
		c.LogSinkQueueSize = defaults.LogSinkQueueSize
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool treats only a case-insensitive "true" as true. Any other value,
// malformed ones included, is false.
func getEnvBool(key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return parseBool(value)
}

func parseBool(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
