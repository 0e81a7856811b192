package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origKey := os.Getenv("API_KEY")
	defer os.Setenv("API_KEY", origKey)

	os.Setenv("API_KEY", "secret-key")
	os.Setenv("RATE_LIMIT_MAX", "120")
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("LINK_FILE", "/tmp/sheet.json")
	defer func() {
		os.Unsetenv("RATE_LIMIT_MAX")
		os.Unsetenv("DB_HOST")
		os.Unsetenv("MINIO_USE_SSL")
		os.Unsetenv("LINK_FILE")
	}()

	cfg := Load()

	assert.Equal(t, "secret-key", cfg.HTTP.APIKey)
	assert.Equal(t, 120, cfg.HTTP.RateLimitMax)
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "/tmp/sheet.json", cfg.LinkFile)
	assert.Equal(t, 5, cfg.Google.MaxRetries)
}

func TestFeatureFlags(t *testing.T) {
	cfg := &AppConfig{}
	assert.False(t, cfg.HistoryEnabled())
	assert.False(t, cfg.ExportEnabled())

	cfg.Database.Host = "db"
	cfg.MinIO.Endpoint = "minio:9000"
	assert.True(t, cfg.HistoryEnabled())
	assert.True(t, cfg.ExportEnabled())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
