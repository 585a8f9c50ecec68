// Package config loads runtime settings once at startup. Nothing else in the
// module reads the environment; the resulting Config is passed to the
// packages that need it.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	// Env is "development" or "production".
	Env     string
	AppPort string

	// DatabaseDriver selects the GORM dialector ("sqlite" or "postgres") or
	// "memory" for the in-process repositories.
	DatabaseDriver string
	DatabaseDSN    string

	// JWTSecret signs session credentials. It is read once and never rotated
	// while the process runs.
	JWTSecret  string
	SessionTTL time.Duration
	BcryptCost int

	// Location is the reference timezone for streak calendar days.
	Location *time.Location

	CookieSecure   bool
	CookieSameSite string
	CORSOrigins    string

	// RedisURL and RabbitMQURL are optional; empty disables the integration.
	RedisURL    string
	RabbitMQURL string

	RateLimit RateLimitConfig
}

// RateLimitConfig holds per-IP request budgets.
type RateLimitConfig struct {
	APIMax         int
	APIWindow      time.Duration
	AuthMax        int
	AuthWindow     time.Duration
	TokenGenMax    int
	TokenGenWindow time.Duration
}

// IsProduction reports whether the process runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SetDefaults registers development defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "timely.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("COOKIE_SAMESITE", "Lax")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RATE_LIMIT_API_MAX", 200)
	v.SetDefault("RATE_LIMIT_API_WINDOW", "15m")
	v.SetDefault("RATE_LIMIT_AUTH_MAX", 20)
	v.SetDefault("RATE_LIMIT_AUTH_WINDOW", "15m")
	v.SetDefault("RATE_LIMIT_TOKEN_MAX", 10)
	v.SetDefault("RATE_LIMIT_TOKEN_WINDOW", "1h")
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg := &Config{
		Env:            v.GetString("APP_ENV"),
		AppPort:        v.GetString("APP_PORT"),
		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		Location:       loc,
		CookieSecure:   v.GetBool("COOKIE_SECURE"),
		CookieSameSite: v.GetString("COOKIE_SAMESITE"),
		CORSOrigins:    v.GetString("CORS_ORIGINS"),
		RedisURL:       v.GetString("REDIS_URL"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		RateLimit: RateLimitConfig{
			APIMax:         v.GetInt("RATE_LIMIT_API_MAX"),
			APIWindow:      v.GetDuration("RATE_LIMIT_API_WINDOW"),
			AuthMax:        v.GetInt("RATE_LIMIT_AUTH_MAX"),
			AuthWindow:     v.GetDuration("RATE_LIMIT_AUTH_WINDOW"),
			TokenGenMax:    v.GetInt("RATE_LIMIT_TOKEN_MAX"),
			TokenGenWindow: v.GetDuration("RATE_LIMIT_TOKEN_WINDOW"),
		},
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "development-only-secret"
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL %s", cfg.SessionTTL)
	}
	switch cfg.DatabaseDriver {
	case "sqlite", "postgres", "memory":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	if cfg.IsProduction() {
		cfg.CookieSecure = true
	}
	return cfg, nil
}
