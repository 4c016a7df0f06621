package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000/api" {
		t.Fatalf("base url: %q", cfg.APIBaseURL)
	}
	if cfg.Timeout() != 20*time.Second {
		t.Fatalf("timeout: %v", cfg.Timeout())
	}
	if cfg.FormType != "EWYP" {
		t.Fatalf("form type: %q", cfg.FormType)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "api_base_url: https://api.example.com/api\ntimeout_seconds: 5\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.com/api" {
		t.Fatalf("base url: %q", cfg.APIBaseURL)
	}
	if cfg.TimeoutSeconds != 5 {
		t.Fatalf("timeout: %d", cfg.TimeoutSeconds)
	}
	// unset keys keep their defaults
	if cfg.FormType != "EWYP" {
		t.Fatalf("form type: %q", cfg.FormType)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_base_url: https://file.example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvAPIBaseURL, "https://env.example.com/api")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIBaseURL != "https://env.example.com/api" {
		t.Fatalf("env must win: %q", cfg.APIBaseURL)
	}
}

func TestLoad_FloorsBadTimeout(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("timeout_seconds: -3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TimeoutSeconds != 20 {
		t.Fatalf("negative timeout must fall back: %d", cfg.TimeoutSeconds)
	}
}

func TestDir_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	if got := Dir(); got != filepath.Join("/tmp/xdg-test", "accident-form") {
		t.Fatalf("dir: %q", got)
	}
}
