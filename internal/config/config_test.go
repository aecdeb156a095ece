package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskforge/internal/config"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.BaseURL() != "http://localhost:8000" {
		t.Errorf("expected default base URL, got %q", cfg.BaseURL())
	}
	if !cfg.Enabled {
		t.Error("expected remote sync enabled by default")
	}
	if cfg.Backend != config.BackendTaskServer {
		t.Errorf("expected backend %q, got %q", config.BackendTaskServer, cfg.Backend)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("expected timeout %s, got %s", config.DefaultTimeout, cfg.Timeout)
	}
	if cfg.DefaultProject != "madness_interactive" {
		t.Errorf("expected default project, got %q", cfg.DefaultProject)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `host: tasks.internal
port: 9100
enabled: false
timeout: 3s
target_agent: crystal-bot
default_project: Terraria
projects:
  - terraria
  - hammerspoon
`
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.BaseURL() != "http://tasks.internal:9100" {
		t.Errorf("unexpected base URL %q", cfg.BaseURL())
	}
	if cfg.Enabled {
		t.Error("expected remote sync disabled")
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.Timeout)
	}
	if cfg.TargetAgent != "crystal-bot" {
		t.Errorf("unexpected target agent %q", cfg.TargetAgent)
	}
	if cfg.DefaultProject != "terraria" {
		t.Errorf("expected lower-cased default project, got %q", cfg.DefaultProject)
	}
	if !cfg.IsProject("HammerSpoon") {
		t.Error("expected hammerspoon to be a configured project")
	}
	if cfg.IsProject("omnispindle") {
		t.Error("configured list should replace the defaults")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TASKFORGE_PORT", "8123")
	t.Setenv("TASKFORGE_HOST", "10.0.0.5")

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL() != "http://10.0.0.5:8123" {
		t.Errorf("unexpected base URL %q", cfg.BaseURL())
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("port: 70000\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := config.Load(dir); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestLoad_TimeoutForms(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want time.Duration
	}{
		{"bare seconds", "timeout: 10\n", 10 * time.Second},
		{"fractional seconds", "timeout: 2.5\n", 2500 * time.Millisecond},
		{"duration", "timeout: 1m30s\n", 90 * time.Second},
		{"quoted seconds", "timeout: \"7\"\n", 7 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(tt.yaml), 0600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			cfg, err := config.Load(dir)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Timeout != tt.want {
				t.Errorf("expected timeout %s, got %s", tt.want, cfg.Timeout)
			}
		})
	}
}

func TestLoad_TimeoutEnvSeconds(t *testing.T) {
	t.Setenv("TASKFORGE_TIMEOUT", "10")

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.Timeout)
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	for _, raw := range []string{"timeout: 10ns\n", "timeout: 0\n", "timeout: soon\n", "timeout: -5\n"} {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(raw), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := config.Load(dir); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("backend: trello\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := config.Load(dir); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := config.DefaultConfigDir(); got != filepath.Join("/tmp/xdg", config.AppName) {
		t.Errorf("unexpected config dir %q", got)
	}
}
