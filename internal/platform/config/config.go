// Package config resolves client configuration from the environment and an
// optional YAML config file so main stays lean. Environment variables win
// over file values; both fall back to defaults.
package config

import (
	"fmt"
	"os"

	"github.com/Atrox/homedir"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is consulted when no explicit config file is given.
const DefaultConfigPath = "~/.config/inkwell/config.yaml"

// Config captures everything the client needs to reach the blog API and keep
// its session.
type Config struct {
	// APIURL is the base URL of the blog API.
	APIURL string `yaml:"api_url"`

	// CredentialPath is where the file-backed credential store lives.
	CredentialPath string `yaml:"credential_path"`

	// RedisURL, when set, switches the credential store to the shared
	// Redis backend.
	RedisURL string `yaml:"redis_url"`

	// Scope segments the Redis credential key per deployment.
	Scope string `yaml:"scope"`

	// LogLevel is debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`

	// LogJSON switches the logger to JSON output.
	LogJSON bool `yaml:"log_json"`
}

func defaults() Config {
	return Config{
		APIURL:   "http://localhost:8000",
		Scope:    "default",
		LogLevel: "info",
	}
}

// Load builds a Config from the file at path (if it exists) overlaid with
// environment variables. An empty path means DefaultConfigPath; a missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path == "" {
		path = DefaultConfigPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("expand config path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() Config {
	cfg := defaults()
	applyEnv(&cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("INKWELL_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("INKWELL_CREDENTIAL_PATH"); v != "" {
		cfg.CredentialPath = v
	}
	if v := os.Getenv("INKWELL_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("INKWELL_SCOPE"); v != "" {
		cfg.Scope = v
	}
	if v := os.Getenv("INKWELL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if os.Getenv("INKWELL_LOG_JSON") == "true" {
		cfg.LogJSON = true
	}
}
