// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings. Every field is overridable through
// POTLEDGER_-prefixed environment variables.
type Config struct {
	Addr      string        `envconfig:"ADDR" default:":8080"`
	DBPath    string        `envconfig:"DB_PATH" default:"./data/potledger.db"`
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	LogLevel  string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("potledger", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
