// Package config loads server settings from the environment.
//
// Order of precedence (highest first):
//  1. process environment
//  2. .env file in the working directory (development; optional)
//  3. defaults in the struct tags below
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DevSessionSecret is the fallback signing key. Fine locally, never in production.
const DevSessionSecret = "dev_secret_change_me"

// Config holds every tunable of the server.
type Config struct {
	Port      string `env:"PORT" envDefault:"5175"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json | console

	ClientOrigins []string `env:"CLIENT_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	SessionSecret string        `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"` // token lifetime
	SessionIdle   time.Duration `env:"SESSION_IDLE" envDefault:"2h"` // sweep after this long untouched
	CookieName    string        `env:"COOKIE_NAME" envDefault:"sortlab_session"`
	SecureCookies bool          `env:"SECURE_COOKIES" envDefault:"false"`

	LessonsFile string `env:"LESSONS_FILE"` // empty = embedded catalog
	DailySalt   string `env:"DAILY_SALT" envDefault:"local_dev_salt"`
}

// Load reads .env (if present) and then parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse fills a Config from the current environment only.
func Parse() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is empty"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.SessionIdle <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE must be positive"))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q: want json or console", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for Port.
func (c Config) Addr() string { return ":" + c.Port }
