package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// StoreBackend selects the file store implementation
type StoreBackend string

const (
	StoreBackendDisk  StoreBackend = "disk"
	StoreBackendBolt  StoreBackend = "bolt"
	StoreBackendRedis StoreBackend = "redis"
)

const defaultSweepSchedule = "@every 1m"

// Config holds all application configuration
// Fields are private to ensure immutability after creation
type Config struct {
	// HTTP server configuration
	httpPort       int
	maxUploadBytes int64

	// File store configuration
	storeBackend StoreBackend
	storeDir     string
	boltPath     string

	// Redis configuration
	redisHost   string
	redisPort   int
	notifyRedis bool

	// Expired interest sweeping, empty disables it
	sweepSchedule string

	// Logging configuration
	logLevel LogLevel
	logFile  string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{
		httpPort:       18812,
		maxUploadBytes: 32 << 20,
		storeBackend:   StoreBackendDisk,
		storeDir:       "files",
		boltPath:       "fileserver.db",
		redisPort:      6379, // Standard Redis port
		sweepSchedule:  defaultSweepSchedule,
	}

	if portStr := os.Getenv("HTTP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_PORT: %w", err)
		}
		config.httpPort = port
	}

	if sizeStr := os.Getenv("MAX_UPLOAD_MB"); sizeStr != "" {
		mb, err := strconv.Atoi(sizeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
		}
		config.maxUploadBytes = int64(mb) << 20
	}

	// Store configuration
	if backend := os.Getenv("STORE_BACKEND"); backend != "" {
		config.storeBackend = StoreBackend(strings.ToLower(backend))
		if !isValidStoreBackend(config.storeBackend) {
			return nil, fmt.Errorf("invalid STORE_BACKEND: %s (valid: disk, bolt, redis)", backend)
		}
	}
	if dir := os.Getenv("STORE_DIR"); dir != "" {
		config.storeDir = dir
	}
	if path := os.Getenv("BOLT_PATH"); path != "" {
		config.boltPath = path
	}

	// Redis configuration
	config.redisHost = os.Getenv("REDIS_HOST")
	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
		}
		config.redisPort = port
	}
	if notifyStr := os.Getenv("NOTIFY_REDIS"); notifyStr != "" {
		notify, err := strconv.ParseBool(notifyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTIFY_REDIS: %w", err)
		}
		config.notifyRedis = notify
	}
	if (config.storeBackend == StoreBackendRedis || config.notifyRedis) && config.redisHost == "" {
		return nil, fmt.Errorf("REDIS_HOST environment variable is required")
	}

	// An explicitly empty SWEEP_SCHEDULE disables sweeping
	if schedule, ok := os.LookupEnv("SWEEP_SCHEDULE"); ok {
		config.sweepSchedule = strings.TrimSpace(schedule)
	}

	// Logging configuration
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		return nil, fmt.Errorf("LOG_LEVEL environment variable is required")
	}
	logLevel := LogLevel(levelStr)
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %s (valid: debug, info, warn, error)", levelStr)
	}
	config.logLevel = logLevel

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		return nil, fmt.Errorf("LOG_FILE environment variable is required")
	}
	config.logFile = logFile

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {

	if c.httpPort <= 0 || c.httpPort > 65535 {
		return fmt.Errorf("http port must be between 1 and 65535")
	}

	if c.maxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be greater than 0")
	}

	if !isValidStoreBackend(c.storeBackend) {
		return fmt.Errorf("invalid store backend: %s (valid: disk, bolt, redis)", c.storeBackend)
	}

	if c.storeBackend == StoreBackendDisk && c.storeDir == "" {
		return fmt.Errorf("store directory cannot be empty")
	}

	if c.storeBackend == StoreBackendBolt && c.boltPath == "" {
		return fmt.Errorf("bolt path cannot be empty")
	}

	if (c.storeBackend == StoreBackendRedis || c.notifyRedis) && c.redisHost == "" {
		return fmt.Errorf("redis host cannot be empty")
	}

	if c.sweepSchedule != "" {
		if _, err := cron.ParseStandard(c.sweepSchedule); err != nil {
			return fmt.Errorf("invalid sweep schedule %q: %w", c.sweepSchedule, err)
		}
	}

	if !isValidLogLevel(c.logLevel) {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.logLevel)
	}

	if c.logFile == "" {
		return fmt.Errorf("log file path cannot be empty")
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address in :port format
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.httpPort)
}

// GetMaxUploadBytes returns the largest accepted upload
func (c *Config) GetMaxUploadBytes() int64 {
	return c.maxUploadBytes
}

// GetStoreBackend returns the selected store backend
func (c *Config) GetStoreBackend() StoreBackend {
	return c.storeBackend
}

// GetStoreDir returns the disk backend directory
func (c *Config) GetStoreDir() string {
	return c.storeDir
}

// GetBoltPath returns the bbolt database path
func (c *Config) GetBoltPath() string {
	return c.boltPath
}

// GetRedisAddr returns the Redis address in host:port format
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.redisHost, c.redisPort)
}

// IsRedisNotifyEnabled returns true if events are published on Redis
func (c *Config) IsRedisNotifyEnabled() bool {
	return c.notifyRedis
}

// GetSweepSchedule returns the cron expression of the expiry sweeper
func (c *Config) GetSweepSchedule() string {
	return c.sweepSchedule
}

// GetLogLevel returns the configured log level
func (c *Config) GetLogLevel() LogLevel {
	return c.logLevel
}

// GetLogFile returns the log file path
func (c *Config) GetLogFile() string {
	return c.logFile
}

// IsDebugEnabled returns true if debug logging is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.logLevel == LogLevelDebug
}

// Helper function to validate log levels
func isValidLogLevel(level LogLevel) bool {
	switch level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

func isValidStoreBackend(backend StoreBackend) bool {
	switch backend {
	case StoreBackendDisk, StoreBackendBolt, StoreBackendRedis:
		return true
	default:
		return false
	}
}
