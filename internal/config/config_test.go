package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, "log", cfg.MailBackend)
	assert.Equal(t, 5, cfg.SignupRatePerMin)
	assert.True(t, cfg.PrometheusEnabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("MAIL_BACKEND", "redis")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("GO_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "redis", cfg.MailBackend)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfig_InvalidInt(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "eighty")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &Config{
		HTTPPort:         0,
		JWTSecret:        "short",
		AccessTokenTTL:   time.Hour,
		SignupRatePerMin: 1,
		MailBackend:      "pigeon",
		LogLevel:         "loud",
		LogFormat:        "text",
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"HTTP_PORT", "JWT_SECRET", "MAIL_BACKEND", "LOG_LEVEL"} {
		assert.True(t, strings.Contains(err.Error(), key), key)
	}
}
