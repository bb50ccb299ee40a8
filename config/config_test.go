package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/intramurals?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "unit-test-secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("R2_ACCOUNT_ID", "")
	t.Setenv("R2_ACCESS_KEY_ID", "")
	t.Setenv("R2_SECRET_ACCESS_KEY", "")
	t.Setenv("R2_BUCKET_NAME", "")
	t.Setenv("R2_PUBLIC_BASE_URL", "")
}

func TestLoadDefaultsPort(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.False(t, cfg.R2Configured())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

func TestLoadRejectsBadPort(t *testing.T) {
	setRequiredEnv(t)

	for _, port := range []string{"abc", "0", "-1", "70000"} {
		t.Setenv("SERVER_PORT", port)
		_, err := Load()
		assert.Error(t, err, "port %q should be rejected", port)
	}
}

func TestR2Configured(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "logos")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.R2Configured())
}
