// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the serve and mcp commands. Flags
// given on the command line take precedence over these values.
type Config struct {
	Addr           string `env:"NETSPEC_ADDR" envDefault:":8080"`
	Store          string `env:"NETSPEC_STORE" envDefault:"file://.netspec/specs"`
	LogLevel       string `env:"NETSPEC_LOG_LEVEL" envDefault:"info"`
	LogFormat      string `env:"NETSPEC_LOG_FORMAT" envDefault:"text"`
	ValidateOnSave bool   `env:"NETSPEC_VALIDATE_ON_SAVE" envDefault:"true"`
	Redis          Redis
}

// Redis configures redis:// stores. The address comes from the store URI.
type Redis struct {
	Password string        `env:"NETSPEC_REDIS_PASSWORD"`
	DB       int           `env:"NETSPEC_REDIS_DB" envDefault:"0"`
	Prefix   string        `env:"NETSPEC_REDIS_PREFIX" envDefault:"netspec:spec:"`
	TTL      time.Duration `env:"NETSPEC_REDIS_TTL" envDefault:"0s"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadFrom reads the configuration from the given variables only.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
