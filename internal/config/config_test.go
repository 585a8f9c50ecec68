package config_test

import (
	"testing"
	"time"

	"timely/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 20, cfg.RateLimit.AuthMax)
	assert.Equal(t, time.Hour, cfg.RateLimit.TokenGenWindow)
}

func TestFromViper_ProductionRequiresSecret(t *testing.T) {
	v := newViper()
	v.Set("APP_ENV", "production")
	_, err := config.FromViper(v)
	assert.Error(t, err)

	v.Set("JWT_SECRET", "prod-secret")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.True(t, cfg.CookieSecure)
	assert.True(t, cfg.IsProduction())
}

func TestFromViper_Invalid(t *testing.T) {
	v := newViper()
	v.Set("TIMEZONE", "Mars/Olympus")
	_, err := config.FromViper(v)
	assert.Error(t, err)

	v = newViper()
	v.Set("DATABASE_DRIVER", "mongo")
	_, err = config.FromViper(v)
	assert.Error(t, err)

	v = newViper()
	v.Set("TIMEZONE", "Europe/Berlin")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
}
