package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration, loadable from a YAML file with
// environment overrides.
type Config struct {
	ServerURL      string        `yaml:"serverUrl"`
	APIKey         string        `yaml:"apiKey"`
	Timeout        time.Duration `yaml:"timeout"`
	PageSize       int           `yaml:"pageSize"`
	CachePath      string        `yaml:"cachePath"`
	LogMode        string        `yaml:"logMode"`
	MetricsEnabled bool          `yaml:"metricsEnabled"`
}

// loadConfig reads path (when non-empty), applies environment overrides, and
// fills defaults. A missing file is only an error when it was requested
// explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := Config{
		Timeout:  30 * time.Second,
		PageSize: 10,
		LogMode:  "dev",
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
			// Fall through to env/defaults.
		default:
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if v := os.Getenv("INVENTORY_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("INVENTORY_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("INVENTORY_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if cfg.ServerURL == "" {
		return Config{}, fmt.Errorf("no server URL: set serverUrl in the config file or INVENTORY_SERVER_URL")
	}
	return cfg, nil
}
