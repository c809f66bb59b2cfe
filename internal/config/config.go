package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// KV backend names accepted by KVBackend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendGCS    = "gcs"
	BackendMemory = "memory"
)

// Category policy names accepted by CategoryPolicy. They decide what
// happens to model-returned categories outside the fixed set.
const (
	PolicyAccept = "accept"
	PolicyReject = "reject"
	PolicyCoerce = "coerce"
)

type Config struct {
	// HTTP Server
	Port string

	// Model service
	GeminiAPIKey string
	GeminiModel  string

	// Persistence
	KVBackend  string
	DataDir    string
	SQLitePath string
	GCSBucket  string
	GCSPrefix  string

	// Behavior
	CategoryPolicy string
	JobQueueSize   int

	// Logging
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", ""),

		KVBackend:  getEnv("KV_BACKEND", BackendFile),
		DataDir:    getEnv("DATA_DIR", "./data"),
		SQLitePath: getEnv("SQLITE_PATH", "./data/finance-dashboard.db"),
		GCSBucket:  getEnv("GCS_BUCKET", ""),
		GCSPrefix:  getEnv("GCS_PREFIX", "finance-dashboard"),

		CategoryPolicy: getEnv("CATEGORY_POLICY", PolicyAccept),
		JobQueueSize:   getEnvInt("JOB_QUEUE_SIZE", 100),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{BackendFile, BackendSQLite, BackendGCS, BackendMemory}
	if !contains(validBackends, c.KVBackend) {
		errors = append(errors, fmt.Sprintf("invalid kv backend '%s': must be one of %v", c.KVBackend, validBackends))
	}

	switch c.KVBackend {
	case BackendFile:
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendGCS:
		if c.GCSBucket == "" {
			errors = append(errors, "GCS_BUCKET is required when using gcs backend")
		}
	}

	validPolicies := []string{PolicyAccept, PolicyReject, PolicyCoerce}
	if !contains(validPolicies, c.CategoryPolicy) {
		errors = append(errors, fmt.Sprintf("invalid category policy '%s': must be one of %v", c.CategoryPolicy, validPolicies))
	}

	if c.JobQueueSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid job queue size %d: must be at least 1", c.JobQueueSize))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, val := range values {
		if val == v {
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
