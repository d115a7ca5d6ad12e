package app

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef-secret")
	unsetEnv(t, "APP_ENV", "APP_ADDR", "JWT_EXPIRES_IN", "JWT_COOKIE_EXPIRES_IN", "S3_BUCKET")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 90*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 90, cfg.CookieConfig().Days)
	assert.Equal(t, []byte("0123456789abcdef-secret"), cfg.TokenConfig().Secret)
	assert.Equal(t, "storefront-assets", cfg.StorageConfig().Bucket)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsWeakSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef-secret")
	t.Setenv("JWT_EXPIRES_IN", "1h")
	t.Setenv("JWT_COOKIE_EXPIRES_IN", "7")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 7, cfg.JWTCookieExpiresIn)
	assert.True(t, cfg.IsProduction())
}

// unsetEnv clears keys for the test and restores them afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
