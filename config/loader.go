package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML configuration file and unmarshals it into the
// specified type. T must be a struct type that can be unmarshaled from
// YAML.
func LoadConfig[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg T
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// Load reads the config file, layers environment overrides on top,
// applies defaults and validates. A .env file in the working directory is
// honored if present; RCONSOLE_HOST, RCONSOLE_PORT and RCONSOLE_PASSWORD
// override the file so credentials can stay out of it.
func Load(path string) (*Config, error) {
	logger := log.With().Str("component", "config-loader").Logger()

	if err := godotenv.Load(); err == nil {
		logger.Debug().Msg("loaded .env file")
	}

	cfg, err := LoadConfig[Config](path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info().
		Str("server", cfg.Server.Addr()).
		Int("locations", len(cfg.Locations)).
		Msg("loaded configuration")

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv(EnvPrefix + "HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv(EnvPrefix + "PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Server.Port = port
		}
	}
	if password := os.Getenv(EnvPrefix + "PASSWORD"); password != "" {
		cfg.Server.Password = password
	}
}
