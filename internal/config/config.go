// Package config loads the application configuration from a YAML file,
// falling back to defaults and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pressline/pressline/internal/model"
)

// Config is the persistent application configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Store   StoreConfig   `yaml:"store"`
	Summary SummaryConfig `yaml:"summary"`
	Refresh RefreshConfig `yaml:"refresh"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig holds the news endpoint settings.
type APIConfig struct {
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
}

// StoreConfig holds the local database settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// SummaryConfig holds the summary provider settings. The API key is
// usually supplied via GLM_API_KEY rather than the file.
type SummaryConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"api_key,omitempty"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RefreshConfig holds the background refresh settings.
type RefreshConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Cron       string   `yaml:"cron"`
	Categories []string `yaml:"categories"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Dir string `yaml:"dir"`
}

// Timeout returns the API timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Timeout returns the summary timeout as a duration.
func (s SummaryConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".pressline")

	return &Config{
		API: APIConfig{
			TimeoutSeconds: 30,
			RatePerSecond:  2,
		},
		Store: StoreConfig{
			Path: filepath.Join(base, "pressline.db"),
		},
		Summary: SummaryConfig{
			Model:          "glm-4",
			TimeoutSeconds: 60,
		},
		Refresh: RefreshConfig{
			Enabled:    false,
			Cron:       "@every 30m",
			Categories: []string{model.CategoryAll},
		},
		Log: LogConfig{
			Dir: filepath.Join(base, "logs"),
		},
	}
}

// Path returns the default config file location.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pressline", "config.yaml")
}

// Load reads the config at path, or the default location when path is
// empty. A missing file yields defaults; a corrupt file is an error,
// silently discarding a user's settings would be worse.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.populateFromEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.populateFromEnv()
	return cfg, nil
}

// Save writes the config to path, creating parent directories. The file
// is private since it may hold an API key.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// populateFromEnv overrides file values with environment variables.
func (c *Config) populateFromEnv() {
	if v := os.Getenv("PRESSLINE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("PRESSLINE_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("GLM_API_KEY"); v != "" {
		c.Summary.APIKey = v
	}
}
