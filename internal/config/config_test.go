package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Server.OperationTimeout)

	assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Security.EnableCORS)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)
	assert.Equal(t, 50, cfg.Security.RateLimit.Burst)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Empty(t, cfg.Data.SourceFile)
	assert.Equal(t, []string{"*.csv", "*.xlsx"}, cfg.Data.FilePatterns)

	assert.Equal(t, 6, cfg.Analytics.TrendWindow)
	assert.Equal(t, "calendar", cfg.Analytics.YoYMode)

	assert.Equal(t, 1024, cfg.WebSocket.ReadBufferSize)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PingPeriod)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FUEL_SERVER_PORT", "9090")
	t.Setenv("FUEL_SERVER_READ_TIMEOUT", "30s")
	t.Setenv("FUEL_SECURITY_ALLOWED_ORIGINS", "http://example.com,https://example.com")
	t.Setenv("FUEL_LOGGING_LEVEL", "debug")
	t.Setenv("FUEL_ANALYTICS_TREND_WINDOW", "12")
	t.Setenv("FUEL_ANALYTICS_YOY_MODE", "positional")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 12, cfg.Analytics.TrendWindow)
	assert.Equal(t, "positional", cfg.Analytics.YoYMode)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port too large", "FUEL_SERVER_PORT", "99999"},
		{"unknown yoy mode", "FUEL_ANALYTICS_YOY_MODE", "fiscal"},
		{"trend window too small", "FUEL_ANALYTICS_TREND_WINDOW", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults pass", func(t *testing.T) {
		cfg := Default()
		require.NoError(t, cfg.validate())
	})

	t.Run("missing origins rejected", func(t *testing.T) {
		cfg := Default()
		cfg.Security.AllowedOrigins = nil
		require.Error(t, cfg.validate())
	})

	t.Run("unknown logging format coerced to json", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Format = "xml"
		require.NoError(t, cfg.validate())
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("unknown logging output coerced to both", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Output = "syslog"
		require.NoError(t, cfg.validate())
		assert.Equal(t, "both", cfg.Logging.Output)
	})
}

func TestMergeConfigs(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Server.Port = 9000
	fileCfg.Logging.Level = "warn"
	fileCfg.Data.SourceFile = "from-file.csv"
	fileCfg.Analytics.TrendWindow = 9

	envCfg := Config{}
	envCfg.Server.Port = 8081 // env wins
	envCfg.Analytics.YoYMode = "positional"

	merged := mergeConfigs(fileCfg, envCfg)

	assert.Equal(t, 8081, merged.Server.Port)
	assert.Equal(t, "warn", merged.Logging.Level)
	assert.Equal(t, "from-file.csv", merged.Data.SourceFile)
	assert.Equal(t, 9, merged.Analytics.TrendWindow)
	assert.Equal(t, "positional", merged.Analytics.YoYMode)
}

func TestConfig_GetSourceFile(t *testing.T) {
	cfg := Default()

	assert.Empty(t, cfg.GetSourceFile())

	abs := filepath.Join(t.TempDir(), "fuel.csv")
	cfg.Data.SourceFile = abs
	assert.Equal(t, abs, cfg.GetSourceFile())

	cfg.Data.SourceFile = "relative.csv"
	got := cfg.GetSourceFile()
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "relative.csv", filepath.Base(got))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 7070
analytics:
  trend_window: 8
  yoy_mode: calendar
data:
  source_file: fuel_prices.csv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := loadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Analytics.TrendWindow)
	assert.Equal(t, "fuel_prices.csv", cfg.Data.SourceFile)
}
