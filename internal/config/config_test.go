package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test cook defaults
	if cfg.Cook.MaxSkinBanks != 10 {
		t.Errorf("expected max skin banks 10, got %d", cfg.Cook.MaxSkinBanks)
	}
	if cfg.Cook.MaterialGroups != 0 {
		t.Errorf("expected 0 material groups, got %d", cfg.Cook.MaterialGroups)
	}
	if cfg.Cook.UseSecondaryUV {
		t.Error("expected secondary UV to be off by default")
	}

	// Test output defaults
	if cfg.Output.Mode != "classic" {
		t.Errorf("expected mode 'classic', got %s", cfg.Output.Mode)
	}
	if cfg.Output.Dir != "." {
		t.Errorf("expected output dir '.', got %s", cfg.Output.Dir)
	}
	if cfg.Output.WorldMatrix {
		t.Error("expected world matrix to be off by default")
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `cook:
  max_skin_banks: 6
  use_secondary_uv: true
output:
  mode: extended
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.Cook.MaxSkinBanks != 6 {
		t.Errorf("expected max skin banks 6, got %d", cfg.Cook.MaxSkinBanks)
	}
	if !cfg.Cook.UseSecondaryUV {
		t.Error("expected secondary UV enabled")
	}
	if cfg.Output.Mode != "extended" {
		t.Errorf("expected mode 'extended', got %s", cfg.Output.Mode)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level 'debug', got %s", cfg.Logging.Level)
	}
	// Untouched values keep their defaults
	if cfg.Output.Dir != "." {
		t.Errorf("expected default output dir, got %s", cfg.Output.Dir)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("cook: ["), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestApplyFlags(t *testing.T) {
	set := func(name, value string) {
		t.Helper()
		old := flag.Lookup(name).Value.String()
		if err := flag.Set(name, value); err != nil {
			t.Fatalf("setting -%s: %v", name, err)
		}
		t.Cleanup(func() { flag.Set(name, old) })
	}
	set("debug", "true")
	set("banks", "3")
	set("mode", "extended")
	set("out", "/tmp/assets")

	cfg := Default()
	applyFlags(cfg)

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Cook.MaxSkinBanks != 3 {
		t.Errorf("expected max skin banks 3, got %d", cfg.Cook.MaxSkinBanks)
	}
	if cfg.Output.Mode != "extended" {
		t.Errorf("expected mode 'extended', got %s", cfg.Output.Mode)
	}
	if cfg.Output.Dir != "/tmp/assets" {
		t.Errorf("expected output dir '/tmp/assets', got %s", cfg.Output.Dir)
	}
}

func TestApplyFlags_UnsetLeavesConfig(t *testing.T) {
	// The -banks sentinel is -1; an unset flag must not clobber the file
	// or default value.
	cfg := Default()
	cfg.Cook.MaxSkinBanks = 7
	applyFlags(cfg)
	if cfg.Cook.MaxSkinBanks != 7 {
		t.Errorf("expected max skin banks 7 untouched, got %d", cfg.Cook.MaxSkinBanks)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.Cook.MaxSkinBanks = 4
	cfg.Output.Mode = "extended"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Cook.MaxSkinBanks != 4 {
		t.Errorf("expected max skin banks 4 after round trip, got %d", loaded.Cook.MaxSkinBanks)
	}
	if loaded.Output.Mode != "extended" {
		t.Errorf("expected mode 'extended' after round trip, got %s", loaded.Output.Mode)
	}
}
