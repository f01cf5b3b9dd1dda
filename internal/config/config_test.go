package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"capturedesk/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CAPTUREDESK_WEBHOOK_URL", "N8N_ANALYZE_WEBHOOK_URL", "CAPTUREDESK_API_TOKEN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultsExpandPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".local", "share", "capturedesk"); cfg.Paths.DataDir != want {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, want)
	}
	if cfg.Server.Bind != "127.0.0.1:7610" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if cfg.AnalysisTimeout() != 25*time.Second {
		t.Fatalf("expected 25s analysis timeout, got %s", cfg.AnalysisTimeout())
	}
	if cfg.MaxUploadBytes() != 32<<20 {
		t.Fatalf("unexpected upload limit: %d", cfg.MaxUploadBytes())
	}
	if err := cfg.RequireWebhook(); !errors.Is(err, config.ErrWebhookRequired) {
		t.Fatalf("expected ErrWebhookRequired, got %v", err)
	}
}

func TestLoadWebhookFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("N8N_ANALYZE_WEBHOOK_URL", " https://hooks.example.test/analyze ")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Analysis.WebhookURL != "https://hooks.example.test/analyze" {
		t.Fatalf("expected webhook from env, got %q", cfg.Analysis.WebhookURL)
	}
	if err := cfg.RequireWebhook(); err != nil {
		t.Fatalf("RequireWebhook returned error: %v", err)
	}
}

func TestLoadCustomFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	payload := map[string]any{
		"paths": map[string]any{
			"data_dir": filepath.Join(dir, "data"),
		},
		"server": map[string]any{
			"bind":       "0.0.0.0:9000",
			"server_url": "http://desk.local:9000/",
			"api_token":  " secret ",
		},
		"analysis": map[string]any{
			"webhook_url":     "http://n8n.local/webhook/analyze",
			"timeout_seconds": 10,
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "Debug",
		},
	}
	encoded, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config %q to exist, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Server.ServerURL != "http://desk.local:9000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Server.ServerURL)
	}
	if cfg.Server.APIToken != "secret" {
		t.Fatalf("expected trimmed token, got %q", cfg.Server.APIToken)
	}
	if cfg.AnalysisTimeout() != 10*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.AnalysisTimeout())
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.StorePath() != filepath.Join(dir, "data", "capturedesk.db") {
		t.Fatalf("unexpected store path: %q", cfg.StorePath())
	}
}

func TestValidateRejectsBadEndpoints(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad webhook scheme", func(c *config.Config) { c.Analysis.WebhookURL = "ftp://example.test" }, "analysis.webhook_url"},
		{"webhook without host", func(c *config.Config) { c.Analysis.WebhookURL = "http://" }, "analysis.webhook_url"},
		{"bad bind", func(c *config.Config) { c.Server.Bind = "localhost" }, "server.bind"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"long timeout", func(c *config.Config) { c.Analysis.TimeoutSeconds = 301 }, "timeout_seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load, exists=%v err=%v", exists, err)
	}
}
