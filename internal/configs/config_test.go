package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missingEnv - путь к несуществующему .env, чтобы тест не зависел от рабочей директории
func missingEnv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadConfig_RequiresPropertyAPIURL(t *testing.T) {
	t.Setenv("PROPERTY_API_URL", "")

	_, err := LoadConfig(missingEnv(t))
	assert.ErrorContains(t, err, "PROPERTY_API_URL")
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PROPERTY_API_URL", "http://property-api:3000/")
	for _, key := range []string{"PORT", "CORS_ALLOWED_ORIGINS", "PROPERTY_API_TIMEOUT", "LISTING_SESSION_TTL",
		"DATABASE_URL", "REDIS_ADDR", "REDIS_CACHE_TTL", "RABBITMQ_URL", "FLUENTBIT_ENABLED", "STDOUT_LOG_JSON"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig(missingEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "http://property-api:3000", cfg.PropertyAPI.URL, "trailing slash is trimmed")
	assert.Equal(t, "8080", cfg.Rest.PORT)
	assert.Equal(t, []string{"*"}, cfg.Rest.CORSAllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.PropertyAPI.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Listing.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Empty(t, cfg.Postgres.DATABASE_URL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.False(t, cfg.FluentBit.Enabled)
	assert.False(t, cfg.StdoutLogger.JSON)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PROPERTY_API_URL", "http://api")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("PROPERTY_API_TIMEOUT", "3s")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_CACHE_TTL", "not-a-duration")
	t.Setenv("FLUENTBIT_ENABLED", "true")
	t.Setenv("FLUENTBIT_HOST", "")
	t.Setenv("STDOUT_LOG_JSON", "yes-please")

	cfg, err := LoadConfig(missingEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Rest.PORT)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Rest.CORSAllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.PropertyAPI.Timeout)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL, "invalid duration falls back to default")
	assert.False(t, cfg.FluentBit.Enabled, "fluent bit without host is disabled")
	assert.False(t, cfg.StdoutLogger.JSON, "invalid bool falls back to default")
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	// godotenv не перезаписывает существующие переменные, даже пустые;
	// t.Setenv восстановит исходные значения после теста
	t.Setenv("PROPERTY_API_URL", "")
	os.Unsetenv("PROPERTY_API_URL")
	t.Setenv("APP_NAME", "")
	os.Unsetenv("APP_NAME")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PROPERTY_API_URL=http://from-file\nAPP_NAME=listing-web-test\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file", cfg.PropertyAPI.URL)
	assert.Equal(t, "listing-web-test", cfg.AppName)
}
