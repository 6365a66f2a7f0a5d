package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_UnsetEnvironmentIsProduction(t *testing.T) {
	unsetEnv(t, "ENVIRONMENT")
	t.Setenv("SPUG_URL", "http://sms.local/send")

	cfg := Load()

	assert.Equal(t, "production", cfg.Environment)
	assert.False(t, cfg.DevelopmentMode)
	assert.Equal(t, "http://sms.local/send", cfg.SMSURL)
}

func TestLoad_DevelopmentOnlyWhenRequested(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	unsetEnv(t, "SPUG_URL")

	cfg := Load()

	assert.True(t, cfg.DevelopmentMode)
	assert.Empty(t, cfg.SMSURL)

	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("SPUG_URL", "http://sms.local/send")
	assert.False(t, Load().DevelopmentMode)
}

func TestLoad_Timeouts(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SMS_TIMEOUT_SECONDS", "3")
	t.Setenv("TELEGRAM_TIMEOUT_SECONDS", "7")
	unsetEnv(t, "STORE_TIMEOUT_SECONDS")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.SMSTimeout)
	assert.Equal(t, 7*time.Second, cfg.TelegramTimeout)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("INVITE_CODES", " A, ,B ,C")
	assert.Equal(t, []string{"A", "B", "C"}, getEnvList("INVITE_CODES", ""))

	unsetEnv(t, "INVITE_CODES")
	assert.Equal(t, []string{"X", "Y"}, getEnvList("INVITE_CODES", "X,Y"))
}
