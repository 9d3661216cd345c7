package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEnvOverridesUndefaultedKeys(t *testing.T) {
	t.Setenv("RD_AGENT_API_KEY", "sk-from-env")
	t.Setenv("RD_AGENT_PROMPTS_FILE", "prompts.toml")

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Agent.APIKey != "sk-from-env" {
		t.Fatalf("Load() agent.api_key = %q, want %q", cfg.Agent.APIKey, "sk-from-env")
	}
	if cfg.Agent.PromptsFile != "prompts.toml" {
		t.Fatalf("Load() agent.prompts_file = %q, want %q", cfg.Agent.PromptsFile, "prompts.toml")
	}
}

func TestLoadEnvOverridesDefaultedKeys(t *testing.T) {
	t.Setenv("RD_AGENT_API_KEY", "sk-test")
	t.Setenv("RD_AUTH_SECRET", "env-secret")
	t.Setenv("RD_HTTP_ADDR", ":9090")

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Fatalf("Load() auth.secret = %q, want %q", cfg.Auth.Secret, "env-secret")
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("Load() http.addr = %q, want %q", cfg.HTTP.Addr, ":9090")
	}
}

func TestLoadFallsBackToDefaultsWithoutFile(t *testing.T) {
	t.Setenv("RD_AGENT_API_KEY", "sk-test")

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Name != "reviewd" {
		t.Fatalf("Load() app.name = %q, want %q", cfg.App.Name, "reviewd")
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("Load() http.addr = %q, want %q", cfg.HTTP.Addr, ":8080")
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("Load() database.driver = %q, want %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.Agent.TimeoutSeconds != 30 {
		t.Fatalf("Load() agent.timeout_seconds = %d, want 30", cfg.Agent.TimeoutSeconds)
	}
}

func TestLoadRequiresAgentAPIKey(t *testing.T) {
	t.Setenv("RD_AGENT_API_KEY", "")

	_, err := Load(context.Background(), "")
	if err == nil {
		t.Fatal("Load() error = nil, want agent.api_key validation failure")
	}
	if !strings.Contains(err.Error(), "agent.api_key") {
		t.Fatalf("Load() error = %v, want mention of agent.api_key", err)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
auth:
  secret: file-secret
agent:
  api_key: sk-from-file
  model: test-model
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Agent.APIKey != "sk-from-file" {
		t.Fatalf("Load() agent.api_key = %q, want %q", cfg.Agent.APIKey, "sk-from-file")
	}
	if cfg.Agent.Model != "test-model" {
		t.Fatalf("Load() agent.model = %q, want %q", cfg.Agent.Model, "test-model")
	}
	if cfg.Auth.Secret != "file-secret" {
		t.Fatalf("Load() auth.secret = %q, want %q", cfg.Auth.Secret, "file-secret")
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load() error = nil, want read failure for explicit missing file")
	}
}
