package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Git.Binary != "git" {
		t.Errorf("Git.Binary = %q, want git", cfg.Git.Binary)
	}
	if cfg.Git.TimeoutMs <= 0 {
		t.Error("Git.TimeoutMs should be positive by default")
	}
	if cfg.Cache.MemoEntries <= 0 {
		t.Error("Cache.MemoEntries should be positive")
	}
	if len(cfg.Parser.Languages) == 0 {
		t.Error("Parser.Languages should not be empty")
	}
	if !cfg.History.Enabled {
		t.Error("History should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"version 0 unsupported", func(c *Config) { c.Version = 0 }, true},
		{"version 2 unsupported", func(c *Config) { c.Version = 2 }, true},
		{"negative memo", func(c *Config) { c.Cache.MemoEntries = -1 }, true},
		{"negative timeout", func(c *Config) { c.Git.TimeoutMs = -5 }, true},
		{"zero timeout allowed", func(c *Config) { c.Git.TimeoutMs = 0 }, false},
		{"empty git binary", func(c *Config) { c.Git.Binary = "" }, true},
		{"negative max file", func(c *Config) { c.Parser.MaxFileBytes = -1 }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"json log format", func(c *Config) { c.Logging.Format = "json" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if _, ok := err.(*ConfigError); !ok {
					t.Errorf("Validate() error type = %T, want *ConfigError", err)
				}
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "version", Message: "unsupported version 99"}

	want := "config error in field 'version': unsupported version 99"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Git.Binary != "git" || cfg.Cache.MemoEntries != 8 {
		t.Errorf("missing config should load defaults, got %+v", cfg)
	}
}

func TestLoadConfig_SaveRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Cache.Dir = "snapshots"
	cfg.Git.TimeoutMs = 3000
	cfg.Parser.Languages = []string{"go"}
	cfg.Logging.Level = "debug"

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".docdelta", "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Cache.Dir != "snapshots" {
		t.Errorf("Cache.Dir = %q, want snapshots", loaded.Cache.Dir)
	}
	if loaded.Git.TimeoutMs != 3000 {
		t.Errorf("Git.TimeoutMs = %d, want 3000", loaded.Git.TimeoutMs)
	}
	if len(loaded.Parser.Languages) != 1 || loaded.Parser.Languages[0] != "go" {
		t.Errorf("Parser.Languages = %v, want [go]", loaded.Parser.Languages)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", loaded.Logging.Level)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".docdelta")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"version": 1, "git": {"timeoutMs": 10}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Git.TimeoutMs != 10 {
		t.Errorf("Git.TimeoutMs = %d, want 10", cfg.Git.TimeoutMs)
	}
	if cfg.Git.Binary != "git" {
		t.Errorf("Git.Binary = %q, want default git", cfg.Git.Binary)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("DOCDELTA_GIT_TIMEOUTMS", "42")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Git.TimeoutMs != 42 {
		t.Errorf("Git.TimeoutMs = %d, want 42 from env", cfg.Git.TimeoutMs)
	}
}

func TestLoadConfig_InvalidVersion(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".docdelta")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"version": 9}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(root); err == nil {
		t.Fatal("expected validation error for version 9")
	}
}
