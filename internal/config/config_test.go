package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/perks/internal/availability"

	_ "time/tzdata"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/perks")
	t.Setenv("JWT_SECRET", "secret")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "./migrations", cfg.MigrationsPath)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "UTC", cfg.DefaultLocation.String())
	assert.Equal(t, availability.DefaultPolicy, cfg.Policy)
	assert.False(t, cfg.Development())
}

func TestFromEnv_Required(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/perks")
	t.Setenv("JWT_SECRET", "")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("DEFAULT_TIMEZONE", "America/Denver")
	t.Setenv("AVAILABILITY_WEEKDAY", "legacy_offset")
	t.Setenv("AVAILABILITY_PRECISION", "hour")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Development())
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "America/Denver", cfg.DefaultLocation.String())
	assert.Equal(t, availability.LegacyOffset, cfg.Policy.Weekday)
	assert.Equal(t, availability.HourPrecision, cfg.Policy.Precision)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]string{
		"CACHE_TTL":              "soon",
		"DEFAULT_TIMEZONE":       "Nowhere/Special",
		"AVAILABILITY_WEEKDAY":   "sunday_first",
		"AVAILABILITY_PRECISION": "second",
		"LOG_LEVEL":              "loud",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, val)
			_, err := FromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}
