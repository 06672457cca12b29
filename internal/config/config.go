// Package config loads the API configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting the API process reads at startup
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port int    `env:"PORT" envDefault:"3000"`

	DatabaseURL string `env:"DATABASE_URL,required"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// SessionSecrets signs the session cookie with the first entry and
	// accepts any entry when verifying, so secrets can be rotated.
	SessionSecrets    []string      `env:"SESSION_SECRET,required" envSeparator:","`
	SessionMaxAge     time.Duration `env:"SESSION_MAX_AGE" envDefault:"720h"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	CORSOrigins []string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
}

// Load parses the environment into a Config and validates it
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the constraints struct tags cannot express
func (c *Config) Validate() error {
	secrets := c.SessionSecrets[:0]
	for _, s := range c.SessionSecrets {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}
	c.SessionSecrets = secrets

	if len(c.SessionSecrets) == 0 {
		return errors.New("SESSION_SECRET is required")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", c.SessionMaxAge)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}

	return nil
}

// IsProduction reports whether secure cookies should be issued
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
