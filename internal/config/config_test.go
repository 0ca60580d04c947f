package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("OpenAI.Model = %q, want %q", cfg.OpenAI.Model, "gpt-4o-mini")
	}
	if cfg.Memory.HistoryTTL != Duration(30*24*time.Hour) {
		t.Errorf("Memory.HistoryTTL = %v, want 30 days", cfg.Memory.HistoryTTL)
	}
	if cfg.Eval.Concurrency != 4 {
		t.Errorf("Eval.Concurrency = %d, want 4", cfg.Eval.Concurrency)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agentforge.yaml")

	yaml := `
log_level: debug
server:
  addr: ":9090"
ghostfolio:
  base_url: "https://ghostfol.io"
memory:
  path: /var/lib/agentforge/memory.db
  history_ttl: 72h
eval:
  concurrency: 8
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Ghostfolio.BaseURL != "https://ghostfol.io" {
		t.Errorf("Ghostfolio.BaseURL = %q", cfg.Ghostfolio.BaseURL)
	}
	if cfg.Memory.HistoryTTL != Duration(72*time.Hour) {
		t.Errorf("Memory.HistoryTTL = %v, want 72h", cfg.Memory.HistoryTTL)
	}
	if cfg.Eval.Concurrency != 8 {
		t.Errorf("Eval.Concurrency = %d, want 8", cfg.Eval.Concurrency)
	}
	// Unset fields keep their defaults.
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("OpenAI.Model = %q, want default", cfg.OpenAI.Model)
	}
}

func TestLoadMissing(t *testing.T) {
	cfg, err := Load("/nonexistent/path/agentforge.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default %q", cfg.Server.Addr, ":8080")
	}
}

func TestLoadInterpolatesEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agentforge.yaml")

	t.Setenv("TEST_OPENAI_KEY", "sk-test123")

	yaml := `
openai:
  api_key: "${TEST_OPENAI_KEY}"
eval:
  report:
    github_token: "${UNSET_GH_TOKEN}"
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OpenAI.APIKey != "sk-test123" {
		t.Errorf("OpenAI.APIKey = %q, want %q", cfg.OpenAI.APIKey, "sk-test123")
	}
	if cfg.Eval.Report.GitHubToken != "${UNSET_GH_TOKEN}" {
		t.Errorf("unresolved var = %q, want left as-is", cfg.Eval.Report.GitHubToken)
	}
}

func TestInterpolateEnvVars(t *testing.T) {
	t.Setenv("FOO", "bar")
	t.Setenv("NUM_123", "456")

	tests := []struct {
		input string
		want  string
	}{
		{"${FOO}", "bar"},
		{"prefix-${FOO}-suffix", "prefix-bar-suffix"},
		{"${UNSET_VAR}", "${UNSET_VAR}"}, // unresolved stays
		{"${FOO} and ${NUM_123}", "bar and 456"},
		{"no vars here", "no vars here"},
	}

	for _, tt := range tests {
		got := interpolateEnvVars(tt.input)
		if got != tt.want {
			t.Errorf("interpolateEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
