package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REPORTING_TZ_OFFSET", "")
	t.Setenv("CHECKIN_RATE_PER_SEC", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "+05:30", cfg.TZOffset)
	assert.Equal(t, 1.0, cfg.CheckInRate)
	assert.EqualError(t, cfg.RequireAPI(), "JWT_SECRET is required")
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("REPORTING_TZ_OFFSET", "-04:00")
	t.Setenv("CHECKIN_RATE_PER_SEC", "0.5")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "-04:00", cfg.TZOffset)
	assert.Equal(t, 0.5, cfg.CheckInRate)
	assert.NoError(t, cfg.RequireAPI())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("REPORTING_TZ_OFFSET", "IST")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("REPORTING_TZ_OFFSET", "")
	t.Setenv("CHECKIN_RATE_PER_SEC", "fast")
	_, err = LoadConfig()
	assert.Error(t, err)
}
