package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Storage
	DataBackend      string
	SQLiteDBPath     string
	StorageNamespace string

	// AMQP. An empty URL disables change events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// WorkerMetricsPort serves /metrics from the worker. "0" disables it.
	WorkerMetricsPort string

	// Advice
	AdviceProvider string
	AdviceAPIKey   string
	AdviceModel    string
	AdviceBaseURL  string
	AdviceTimeout  time.Duration
	AdviceCacheTTL time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		DataBackend:      getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath:     getEnv("SQLITE_DB_PATH", "./data/arthasync.db"),
		StorageNamespace: getEnv("STORAGE_NAMESPACE", "arthasync"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "arthasync"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_changes"),

		WorkerMetricsPort: getEnv("WORKER_METRICS_PORT", "9091"),

		AdviceProvider: getEnv("ADVICE_PROVIDER", "gemini"),
		AdviceAPIKey:   getEnv("ADVICE_API_KEY", os.Getenv("API_KEY")),
		AdviceModel:    getEnv("ADVICE_MODEL", ""),
		AdviceBaseURL:  getEnv("ADVICE_BASE_URL", ""),
		AdviceTimeout:  getEnvDuration("ADVICE_TIMEOUT", 20*time.Second),
		AdviceCacheTTL: getEnvDuration("ADVICE_CACHE_TTL", 10*time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// WorkerMetricsEnabled reports whether the worker should serve metrics.
func (c *Config) WorkerMetricsEnabled() bool {
	return c.WorkerMetricsPort != "" && c.WorkerMetricsPort != "0"
}

// AdviceEnabled reports whether an advice provider key is configured.
func (c *Config) AdviceEnabled() bool {
	return c.AdviceAPIKey != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must not be negative", c.RateLimitPerMinute))
	}

	validBackends := []string{"memory", "sqlite"}
	if !oneOf(c.DataBackend, validBackends) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if strings.TrimSpace(c.StorageNamespace) == "" {
		errors = append(errors, "storage namespace cannot be empty")
	} else if strings.ContainsAny(c.StorageNamespace, " \t/") {
		errors = append(errors, fmt.Sprintf("invalid storage namespace '%s': must not contain spaces or slashes", c.StorageNamespace))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.WorkerMetricsEnabled() {
		if port, err := strconv.Atoi(c.WorkerMetricsPort); err != nil || port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid worker metrics port '%s': must be between 1 and 65535", c.WorkerMetricsPort))
		}
	}

	validProviders := []string{"gemini", "openai"}
	if !oneOf(c.AdviceProvider, validProviders) {
		errors = append(errors, fmt.Sprintf("invalid advice provider '%s': must be one of %v", c.AdviceProvider, validProviders))
	}
	if c.AdviceBaseURL != "" {
		if u, err := url.Parse(c.AdviceBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid advice base URL '%s': must be an http(s) URL", c.AdviceBaseURL))
		}
	}
	if c.AdviceTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid advice timeout %v: must be at least 1 second", c.AdviceTimeout))
	} else if c.AdviceTimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid advice timeout %v: must be at most 2 minutes", c.AdviceTimeout))
	}
	if c.AdviceCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid advice cache TTL %v: must not be negative", c.AdviceCacheTTL))
	}

	validFormats := []string{"text", "json", "console"}
	if !oneOf(c.LogFormat, validFormats) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}
	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	if !oneOf(strings.ToLower(c.LogLevel), validLevels) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateWorker checks the settings the budget worker needs on top of
// Validate. The worker runs in its own process, so it must read a shared
// persistent store and receive change events over AMQP.
func (c *Config) ValidateWorker() error {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the worker")
	}
	if c.DataBackend == "memory" {
		errors = append(errors, "the worker cannot use the memory backend: set DATA_BACKEND=sqlite")
	}
	if len(errors) > 0 {
		return fmt.Errorf("worker configuration invalid:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
