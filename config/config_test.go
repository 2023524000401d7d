package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultChain(t *testing.T) {
	cfg := Default()
	if len(cfg.Models) != 2 {
		t.Fatalf("models = %d", len(cfg.Models))
	}
	if cfg.Models[0].Model != "gemini-2.5-flash" || cfg.Models[0].RPM != 10 {
		t.Errorf("primary = %+v", cfg.Models[0])
	}
	if cfg.Models[1].Model != "gemini-2.5-pro" || cfg.Models[1].RPM != 5 {
		t.Errorf("fallback = %+v", cfg.Models[1])
	}
	if cfg.Models[0].Provider != "gemini" {
		t.Errorf("provider = %q", cfg.Models[0].Provider)
	}
	if cfg.Limits.MaxSteps != 40 {
		t.Errorf("max steps = %d", cfg.Limits.MaxSteps)
	}
	if cfg.CommandTimeout() != 10*time.Minute {
		t.Errorf("timeout = %s", cfg.CommandTimeout())
	}
	if !cfg.ScaffoldAutoDone() {
		t.Error("auto done should default to true")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Models) != 2 {
		t.Errorf("models = %d", len(cfg.Models))
	}
}

func TestLoadOverridesAndAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobsmith.yaml")
	content := `
models:
  - model: flash
    rpm: 3
  - provider: groq
    model: llama-3.1-70b-versatile
limits:
  max_steps: 12
scaffold:
  auto_done: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Models[0].Model != "gemini-2.5-flash" {
		t.Errorf("alias not resolved: %q", cfg.Models[0].Model)
	}
	if cfg.Models[0].RPM != 3 {
		t.Errorf("rpm override lost: %d", cfg.Models[0].RPM)
	}
	if cfg.Models[1].RPM != 100 {
		t.Errorf("catalog rpm not applied: %d", cfg.Models[1].RPM)
	}
	if cfg.Limits.MaxSteps != 12 {
		t.Errorf("max steps = %d", cfg.Limits.MaxSteps)
	}
	if cfg.Limits.CommandTimeoutSeconds != 600 {
		t.Errorf("timeout default lost: %d", cfg.Limits.CommandTimeoutSeconds)
	}
	if cfg.ScaffoldAutoDone() {
		t.Error("auto_done: false not honored")
	}
}

func TestLoadRejectsUnknownProviderlessModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobsmith.yaml")
	content := "models:\n  - model: mystery-9000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobsmith.yaml")
	if err := os.WriteFile(path, []byte("models: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
