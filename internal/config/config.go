// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds recipe-box configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Scaling  ScalingConfig  `yaml:"scaling"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScalingConfig bounds the serving counts accepted from requests.
type ScalingConfig struct {
	MaxServings int `yaml:"max_servings"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8012,
		},
		Database: DatabaseConfig{
			Path: "/data/recipe-box.db",
		},
		Scaling: ScalingConfig{
			MaxServings: 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults, then
// applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if host := os.Getenv("RECIPE_BOX_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("RECIPE_BOX_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid RECIPE_BOX_PORT %q: %w", port, err)
		}
		c.Server.Port = n
	}
	if path := os.Getenv("RECIPE_BOX_DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if level := os.Getenv("RECIPE_BOX_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if maxServings := os.Getenv("RECIPE_BOX_MAX_SERVINGS"); maxServings != "" {
		n, err := strconv.Atoi(maxServings)
		if err != nil {
			return fmt.Errorf("invalid RECIPE_BOX_MAX_SERVINGS %q: %w", maxServings, err)
		}
		c.Scaling.MaxServings = n
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Scaling.MaxServings <= 0 {
		return fmt.Errorf("max_servings must be positive, got %d", c.Scaling.MaxServings)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
