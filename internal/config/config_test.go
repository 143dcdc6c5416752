package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
linkedin:
  email: user@example.com
  password: secret
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Outreach.DailyLimit)
	assert.Equal(t, 10, cfg.Outreach.HourlyLimit)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestParseRequiresCredentials(t *testing.T) {
	_, err := Parse([]byte(`
linkedin:
  email: user@example.com
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestParseRejectsBadLogLevel(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + `
logging:
  level: verbose
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestParseRejectsInvertedDelays(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + `
outreach:
  daily_limit: 10
  min_delay_seconds: 30
  max_delay_seconds: 5
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_delay_seconds")
}

func TestParseRejectsInvertedActionDelays(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + `
stealth:
  min_action_delay_ms: 900
  max_action_delay_ms: 300
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_action_delay_ms")
}

func TestActionDelayAccessors(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + `
stealth:
  min_action_delay_ms: 500
  max_action_delay_ms: 2000
`))
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.GetMinActionDelay())
	assert.Equal(t, 2*time.Second, cfg.GetMaxActionDelay())
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_LI_EMAIL", "env@example.com")

	cfg, err := Parse([]byte(`
linkedin:
  email: ${TEST_LI_EMAIL}
  password: ${TEST_LI_PASSWORD:fallback}
`))
	require.NoError(t, err)

	assert.Equal(t, "env@example.com", cfg.LinkedIn.Email)
	assert.Equal(t, "fallback", cfg.LinkedIn.Password)
}
