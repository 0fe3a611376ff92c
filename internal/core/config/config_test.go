package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gauge/internal/core/errors"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Scan.SkipGenerated {
		t.Fatal("generated-file skipping should default on")
	}
	if cfg.Watch.Debounce() != 500*time.Millisecond {
		t.Fatalf("debounce = %v, want 500ms", cfg.Watch.Debounce())
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gauge.toml")
	content := `
paths = ["./src"]

[scan]
workers = 8
include_tests = true

[exclude]
dirs = ["build"]

[languages.css]
enabled = false

[languages.go]
extensions = [".go", ".gox"]

[observability]
port = 2112
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Scan.Workers != 8 || !cfg.Scan.IncludeTests {
		t.Fatalf("scan section not applied: %+v", cfg.Scan)
	}
	if cfg.Observability.Port != 2112 {
		t.Fatalf("port = %d, want 2112", cfg.Observability.Port)
	}

	overrides := cfg.GrammarOverrides()
	css, ok := overrides["css"]
	if !ok || css.Enabled == nil || *css.Enabled {
		t.Fatalf("css override missing or not disabled: %+v", overrides)
	}
	if got := overrides["go"].Extensions; len(got) != 2 {
		t.Fatalf("go extensions override = %v", got)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.IsCode(err, errors.CodeConfig) {
		t.Fatalf("error = %v, want CodeConfig", err)
	}
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	t.Setenv("GAUGE_SCAN_WORKERS", "3")
	t.Setenv("GAUGE_HISTORY_ENABLED", "true")
	t.Setenv("GAUGE_OBSERVABILITY_PORT", "1234")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Scan.Workers != 3 {
		t.Fatalf("workers = %d, want 3", cfg.Scan.Workers)
	}
	if !cfg.History.Enabled {
		t.Fatal("history should be enabled from environment")
	}
	if cfg.Observability.Port != 1234 {
		t.Fatalf("port = %d, want 1234", cfg.Observability.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Scan.Workers = -2
	if err := cfg.Validate(); !errors.IsCode(err, errors.CodeConfig) {
		t.Fatalf("error = %v, want CodeConfig", err)
	}

	cfg = Default()
	cfg.Observability.Port = 0
	if err := cfg.Validate(); !errors.IsCode(err, errors.CodeConfig) {
		t.Fatalf("error = %v, want CodeConfig", err)
	}
}
