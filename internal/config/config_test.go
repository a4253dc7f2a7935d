package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	// Clean environment
	clearEnv()
	defer clearEnv()

	os.Setenv("LOG_LEVEL", "info")
	os.Setenv("LOG_FILE", "/var/log/test.log")

	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, ":18812", cfg.GetHTTPAddr())
	assert.Equal(t, int64(32<<20), cfg.GetMaxUploadBytes())
	assert.Equal(t, StoreBackendDisk, cfg.GetStoreBackend())
	assert.Equal(t, "files", cfg.GetStoreDir())
	assert.Equal(t, "fileserver.db", cfg.GetBoltPath())
	assert.False(t, cfg.IsRedisNotifyEnabled())
	assert.Equal(t, "@every 1m", cfg.GetSweepSchedule())
	assert.Equal(t, LogLevelInfo, cfg.GetLogLevel())
	assert.Equal(t, "/var/log/test.log", cfg.GetLogFile())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_ValidConfig(t *testing.T) {
	clearEnv()
	defer clearEnv()

	os.Setenv("HTTP_PORT", "9000")
	os.Setenv("MAX_UPLOAD_MB", "4")
	os.Setenv("STORE_BACKEND", "Redis")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "1111")
	os.Setenv("NOTIFY_REDIS", "true")
	os.Setenv("SWEEP_SCHEDULE", "*/5 * * * *")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FILE", "/var/log/test.log")

	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.GetHTTPAddr())
	assert.Equal(t, int64(4<<20), cfg.GetMaxUploadBytes())
	assert.Equal(t, StoreBackendRedis, cfg.GetStoreBackend())
	assert.Equal(t, "localhost:1111", cfg.GetRedisAddr())
	assert.True(t, cfg.IsRedisNotifyEnabled())
	assert.Equal(t, "*/5 * * * *", cfg.GetSweepSchedule())
	assert.True(t, cfg.IsDebugEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_EmptySweepScheduleDisables(t *testing.T) {
	clearEnv()
	defer clearEnv()

	os.Setenv("SWEEP_SCHEDULE", "")
	os.Setenv("LOG_LEVEL", "info")
	os.Setenv("LOG_FILE", "/var/log/test.log")

	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, "", cfg.GetSweepSchedule())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr string
	}{
		{
			name:    "missing log level",
			envVars: map[string]string{},
			wantErr: "LOG_LEVEL environment variable is required",
		},
		{
			name: "invalid log level",
			envVars: map[string]string{
				"LOG_LEVEL": "invalid",
			},
			wantErr: "invalid LOG_LEVEL: invalid (valid: debug, info, warn, error)",
		},
		{
			name: "missing log file",
			envVars: map[string]string{
				"LOG_LEVEL": "info",
			},
			wantErr: "LOG_FILE environment variable is required",
		},
		{
			name: "invalid HTTP_PORT",
			envVars: map[string]string{
				"HTTP_PORT": "http",
			},
			wantErr: "invalid HTTP_PORT",
		},
		{
			name: "invalid MAX_UPLOAD_MB",
			envVars: map[string]string{
				"MAX_UPLOAD_MB": "lots",
			},
			wantErr: "invalid MAX_UPLOAD_MB",
		},
		{
			name: "invalid store backend",
			envVars: map[string]string{
				"STORE_BACKEND": "s3",
			},
			wantErr: "invalid STORE_BACKEND: s3 (valid: disk, bolt, redis)",
		},
		{
			name: "redis backend without host",
			envVars: map[string]string{
				"STORE_BACKEND": "redis",
			},
			wantErr: "REDIS_HOST environment variable is required",
		},
		{
			name: "redis notifications without host",
			envVars: map[string]string{
				"NOTIFY_REDIS": "1",
			},
			wantErr: "REDIS_HOST environment variable is required",
		},
		{
			name: "invalid NOTIFY_REDIS",
			envVars: map[string]string{
				"NOTIFY_REDIS": "maybe",
			},
			wantErr: "invalid NOTIFY_REDIS",
		},
		{
			name: "invalid REDIS_PORT",
			envVars: map[string]string{
				"REDIS_HOST": "localhost",
				"REDIS_PORT": "invalid",
			},
			wantErr: "invalid REDIS_PORT: strconv.Atoi: parsing \"invalid\": invalid syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv()
			defer clearEnv()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := LoadFromEnv()

			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			httpPort:       18812,
			maxUploadBytes: 1 << 20,
			storeBackend:   StoreBackendDisk,
			storeDir:       "files",
			boltPath:       "fileserver.db",
			redisPort:      6379,
			sweepSchedule:  "@every 1m",
			logLevel:       LogLevelInfo,
			logFile:        "/var/log/test.log",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.httpPort = 0 },
			wantErr: "http port must be between 1 and 65535",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.httpPort = 70000 },
			wantErr: "http port must be between 1 and 65535",
		},
		{
			name:    "zero upload size",
			mutate:  func(c *Config) { c.maxUploadBytes = 0 },
			wantErr: "max upload size must be greater than 0",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.storeBackend = "tape" },
			wantErr: "invalid store backend: tape",
		},
		{
			name:    "disk backend without directory",
			mutate:  func(c *Config) { c.storeDir = "" },
			wantErr: "store directory cannot be empty",
		},
		{
			name: "bolt backend without path",
			mutate: func(c *Config) {
				c.storeBackend = StoreBackendBolt
				c.boltPath = ""
			},
			wantErr: "bolt path cannot be empty",
		},
		{
			name:    "redis backend without host",
			mutate:  func(c *Config) { c.storeBackend = StoreBackendRedis },
			wantErr: "redis host cannot be empty",
		},
		{
			name:    "invalid sweep schedule",
			mutate:  func(c *Config) { c.sweepSchedule = "every so often" },
			wantErr: "invalid sweep schedule",
		},
		{
			name:    "empty sweep schedule",
			mutate:  func(c *Config) { c.sweepSchedule = "" },
			wantErr: "",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.logLevel = LogLevel("invalid") },
			wantErr: "invalid log level: invalid (valid: debug, info, warn, error)",
		},
		{
			name:    "empty log file",
			mutate:  func(c *Config) { c.logFile = "" },
			wantErr: "log file path cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIsDebugEnabled(t *testing.T) {
	tests := []struct {
		name     string
		logLevel LogLevel
		want     bool
	}{
		{name: "debug level returns true", logLevel: LogLevelDebug, want: true},
		{name: "info level returns false", logLevel: LogLevelInfo, want: false},
		{name: "warn level returns false", logLevel: LogLevelWarn, want: false},
		{name: "error level returns false", logLevel: LogLevelError, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				logLevel: tt.logLevel,
			}
			assert.Equal(t, tt.want, cfg.IsDebugEnabled())
		})
	}
}

func TestIsValidLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level LogLevel
		want  bool
	}{
		{name: "debug is valid", level: LogLevelDebug, want: true},
		{name: "info is valid", level: LogLevelInfo, want: true},
		{name: "warn is valid", level: LogLevelWarn, want: true},
		{name: "error is valid", level: LogLevelError, want: true},
		{name: "invalid level", level: LogLevel("invalid"), want: false},
		{name: "empty level", level: LogLevel(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidLogLevel(tt.level))
		})
	}
}

// Helper function to clear environment variables
func clearEnv() {
	envVars := []string{
		"HTTP_PORT", "MAX_UPLOAD_MB", "STORE_BACKEND", "STORE_DIR", "BOLT_PATH",
		"REDIS_HOST", "REDIS_PORT", "NOTIFY_REDIS", "SWEEP_SCHEDULE",
		"LOG_LEVEL", "LOG_FILE",
	}
	for _, env := range envVars {
		os.Unsetenv(env)
	}
}
