package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.True(t, cfg.TransactionalWrites)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_Precedence(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "crux.yaml")
	writeFile(t, path, `
storage: sqlite
database_dsn: crux.db
log_level: warn
rate_limit_per_minute: 30
breaker_timeout: 45s
cors_allowed_origins:
  - https://app.example.com
`)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRANSACTIONAL_WRITES", "false")

	// Act
	cfg, err := Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress, "default survives")
	assert.Equal(t, StorageSQLite, cfg.Storage, "file overrides default")
	assert.Equal(t, "crux.db", cfg.DatabaseDSN)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.Equal(t, 45*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel, "env overrides file")
	assert.False(t, cfg.TransactionalWrites)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadConfig_ReadsConfigFileEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crux.yaml")
	writeFile(t, path, "event_bus_name: custom-bus\n")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "custom-bus", cfg.EventBusName)
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "storage: [unterminated\n")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "unknown storage",
			mutate:  func(c *Config) { c.Storage = "mongo" },
			wantErr: `unknown storage "mongo"`,
		},
		{
			name:    "sql storage needs a dsn",
			mutate:  func(c *Config) { c.Storage = StoragePostgres },
			wantErr: "DATABASE_DSN is required",
		},
		{
			name:    "rate limit must be positive",
			mutate:  func(c *Config) { c.RateLimitPerMinute = 0 },
			wantErr: "RATE_LIMIT_PER_MINUTE",
		},
		{
			name: "production needs a secret and a real store",
			mutate: func(c *Config) {
				c.Environment = "production"
			},
			wantErr: "JWT_SECRET is required in production",
		},
		{
			name: "production behind the gateway needs no secret",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.IsLambda = true
				c.Storage = StorageDynamoDB
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.JWTSecret = "s3cret"

	out := cfg.Redacted()

	assert.Equal(t, "****", out.JWTSecret)
	assert.Equal(t, "s3cret", cfg.JWTSecret)

	data, err := out.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "s3cret")
}

func TestConfigWatcher_ReloadsLogLevel(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "crux.yaml")
	writeFile(t, path, "log_level: info\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	watcher, err := NewConfigWatcher(cfg, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Stop()
	watcher.OnChange(ApplyLogLevel(level, zap.NewNop()))

	// Act
	writeFile(t, path, "log_level: debug\n")

	// Assert
	assert.Eventually(t, func() bool {
		return level.Level() == zapcore.DebugLevel
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, "debug", watcher.Current().LogLevel)
}

func TestConfigWatcher_RequiresFile(t *testing.T) {
	_, err := NewConfigWatcher(Default(), zap.NewNop())
	assert.Error(t, err)
}

func TestApplyLogLevel_IgnoresUnknown(t *testing.T) {
	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg := Default()
	cfg.LogLevel = "loud"

	ApplyLogLevel(level, zap.NewNop())(cfg)

	assert.Equal(t, zapcore.WarnLevel, level.Level())
}
