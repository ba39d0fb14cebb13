package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/histpath/readingorder/layout"
)

var envKeys = []string{
	"ORDER_STRATEGY", "ORDER_EPS", "ORDER_THRESHOLD", "ORDER_MIN_SAMPLES",
	"ORDER_MAX_REASSIGN_DISTANCE", "ORDER_NORMALIZE_TEXT", "BATCH_WORKERS",
	"HTTP_ADDR", "HTTP_BODY_LIMIT_MB", "JOB_STORE", "JOB_TTL", "REDIS_ADDRESS",
	"REDIS_PASSWORD", "REDIS_DB", "OCR_LANG", "OCR_BINARIZE_THRESHOLD",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, layout.StrategyDensityBased, cfg.Strategy)
	assert.Equal(t, layout.DefaultEps, cfg.Eps)
	assert.Equal(t, layout.DefaultThreshold, cfg.Threshold)
	assert.Equal(t, 1, cfg.MinSamples)
	assert.Equal(t, 0.0, cfg.MaxReassignDistance)
	assert.Equal(t, 4, cfg.BatchWorkers)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.JobStore)
	assert.Equal(t, 24*time.Hour, cfg.JobTTL)
	assert.Equal(t, "chi_tra_vert", cfg.OCRLanguage)
	assert.Equal(t, 127, cfg.OCRBinarizeThreshold)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORDER_STRATEGY", "Sequential")
	t.Setenv("ORDER_THRESHOLD", "35.5")
	t.Setenv("ORDER_MIN_SAMPLES", "2")
	t.Setenv("ORDER_NORMALIZE_TEXT", "true")
	t.Setenv("JOB_STORE", "redis")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("JOB_TTL", "90m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sequential", cfg.Strategy)
	assert.Equal(t, 35.5, cfg.Threshold)
	assert.True(t, cfg.NormalizeText)
	assert.Equal(t, 90*time.Minute, cfg.JobTTL)

	orderCfg, err := cfg.OrderConfig(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, layout.Sequential{Threshold: 35.5}, orderCfg.Strategy)
}

func TestLoad_ParseErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORDER_EPS", "wide")
	t.Setenv("BATCH_WORKERS", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORDER_EPS")
	assert.Contains(t, err.Error(), "BATCH_WORKERS")
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero eps", "ORDER_EPS", "0"},
		{"negative threshold", "ORDER_THRESHOLD", "-1"},
		{"zero min samples", "ORDER_MIN_SAMPLES", "0"},
		{"unknown strategy", "ORDER_STRATEGY", "kmeans"},
		{"unknown store", "JOB_STORE", "etcd"},
		{"too many workers", "BATCH_WORKERS", "1000"},
		{"threshold out of range", "OCR_BINARIZE_THRESHOLD", "300"},
		{"bad log level", "LOG_LEVEL", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_RedisRequiresAddress(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOB_STORE", "redis")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ADDRESS")
}

func TestLoadEnvFiles(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("ORDER_EPS")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ORDER_EPS=80\n"), 0o644))

	require.NoError(t, LoadEnvFiles(path, filepath.Join(t.TempDir(), "missing.env")))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 80.0, cfg.Eps)
}

func TestGetLoggerConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	lc := cfg.GetLoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "stderr", lc.Output)
}

func TestOCRConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCR_LANG", "chi_tra")

	cfg, err := Load()
	require.NoError(t, err)

	oc := cfg.OCRConfig()
	assert.Equal(t, "chi_tra", oc.Language)
	assert.Equal(t, 127, oc.BinarizeThreshold)
}
