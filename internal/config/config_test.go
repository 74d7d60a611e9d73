package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("API.TimeoutSeconds = %d, want 30", cfg.API.TimeoutSeconds)
	}
	if cfg.Refresh.Cron == "" {
		t.Error("default refresh cron is empty")
	}
	if cfg.Store.Path == "" {
		t.Error("default store path is empty")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
api:
  base_url: http://localhost:9000/news
  timeout_seconds: 5
store:
  path: /tmp/test.db
refresh:
  enabled: true
  cron: "@every 5m"
  categories: ["科技", "财经"]
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:9000/news" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 5 {
		t.Errorf("TimeoutSeconds = %d, want 5", cfg.API.TimeoutSeconds)
	}
	if !cfg.Refresh.Enabled || cfg.Refresh.Cron != "@every 5m" {
		t.Errorf("Refresh = %+v", cfg.Refresh)
	}
	if len(cfg.Refresh.Categories) != 2 {
		t.Errorf("Categories = %v", cfg.Refresh.Categories)
	}
	// Unset sections keep their defaults.
	if cfg.Summary.Model != "glm-4" {
		t.Errorf("Summary.Model = %q, want the default", cfg.Summary.Model)
	}
}

func TestLoadCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [not: closed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load accepted corrupt YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GLM_API_KEY", "env-key")
	t.Setenv("PRESSLINE_API_URL", "http://env:8080")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Summary.APIKey != "env-key" {
		t.Errorf("Summary.APIKey = %q, want the env value", cfg.Summary.APIKey)
	}
	if cfg.API.BaseURL != "http://env:8080" {
		t.Errorf("API.BaseURL = %q, want the env value", cfg.API.BaseURL)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.API.BaseURL = "http://saved:1234"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.API.BaseURL != "http://saved:1234" {
		t.Errorf("BaseURL = %q after round trip", loaded.API.BaseURL)
	}
}
