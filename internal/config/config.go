// Package config resolves client configuration from an optional YAML file,
// environment, and defaults, and locates the per-user state directory.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvAPIBaseURL overrides the backend base URL when set.
const EnvAPIBaseURL = "ACCIDENT_FORM_API"

const defaultBaseURL = "http://localhost:8000/api"

// Config holds the client settings.
type Config struct {
	APIBaseURL     string `yaml:"api_base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	FormType       string `yaml:"form_type"`
}

// Timeout returns the per-call timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Dir returns the per-user state directory, honoring XDG_CONFIG_HOME.
func Dir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "accident-form")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "accident-form")
}

// Load reads path (empty means Dir()/config.yaml), applies defaults and the
// environment override. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Config{
		APIBaseURL:     defaultBaseURL,
		TimeoutSeconds: 20,
		FormType:       "EWYP",
	}
	if path == "" {
		path = filepath.Join(Dir(), "config.yaml")
	}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults apply
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, err
		}
	}
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 20
	}
	if cfg.FormType == "" {
		cfg.FormType = "EWYP"
	}
	return cfg, nil
}
