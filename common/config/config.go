package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration
type Config struct {
	Service   ServiceConfig
	Storage   StorageConfig
	Tool      ToolConfig
	Convert   ConvertConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Version     string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
	CORSOrigins []string
}

// StorageConfig holds scratch directory and retention settings
type StorageConfig struct {
	UploadDir      string
	CompressedDir  string
	MaxUploadBytes int64
	RetentionTTL   time.Duration
	SweepInterval  time.Duration
}

// ToolConfig holds external PDF tool settings
type ToolConfig struct {
	Binary  string
	Timeout time.Duration
}

// ConvertConfig holds image conversion settings
type ConvertConfig struct {
	JPEGQuality int
}

// RedisConfig holds Redis connection settings (used only when rate limiting is on)
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RateLimitConfig holds per-client upload rate limit settings
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerWindow int64
	Window            time.Duration
}

// TelemetryConfig holds observability settings
type TelemetryConfig struct {
	EnableMetrics bool
	EnablePprof   bool
	PprofPort     int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Version:     "2.0.0",
			Port:        getEnvInt("PORT", 5000),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
			CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"*"}),
		},
		Storage: StorageConfig{
			UploadDir:      getEnv("UPLOAD_DIR", "/tmp/uploads"),
			CompressedDir:  getEnv("COMPRESSED_DIR", "/tmp/compressed"),
			MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 50<<20),
			RetentionTTL:   getEnvDuration("RETENTION_TTL", 1*time.Hour),
			SweepInterval:  getEnvDuration("SWEEP_INTERVAL", 1*time.Hour),
		},
		Tool: ToolConfig{
			Binary:  getEnv("GS_BINARY", "gs"),
			Timeout: getEnvDuration("GS_TIMEOUT", 120*time.Second),
		},
		Convert: ConvertConfig{
			JPEGQuality: getEnvInt("JPEG_QUALITY", 85),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvBool("RATE_LIMIT_ENABLED", false),
			RequestsPerWindow: getEnvInt64("RATE_LIMIT_REQUESTS", 30),
			Window:            getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		Telemetry: TelemetryConfig{
			EnableMetrics: getEnvBool("ENABLE_METRICS", true),
			EnablePprof:   getEnvBool("ENABLE_PPROF", false),
			PprofPort:     getEnvInt("PPROF_PORT", 6060),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Storage.UploadDir == "" || c.Storage.CompressedDir == "" {
		return fmt.Errorf("scratch directories are required")
	}

	if c.Storage.UploadDir == c.Storage.CompressedDir {
		return fmt.Errorf("upload and compressed directories must differ")
	}

	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.Storage.MaxUploadBytes)
	}

	if c.Storage.RetentionTTL <= 0 {
		return fmt.Errorf("retention ttl must be positive")
	}

	if c.Tool.Timeout <= 0 {
		return fmt.Errorf("tool timeout must be positive")
	}

	if c.Convert.JPEGQuality < 1 || c.Convert.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be in [1,100], got %d", c.Convert.JPEGQuality)
	}

	return nil
}

// RedisAddr returns the host:port address for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
