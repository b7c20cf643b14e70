package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr != ":8087" {
		t.Fatalf("expected default addr :8087, got %q", cfg.Server.Addr)
	}
	if cfg.Runtime.MaxSourceBytes != 1<<20 {
		t.Fatalf("expected default source limit %d, got %d", 1<<20, cfg.Runtime.MaxSourceBytes)
	}
	if cfg.Runtime.MaxExpressionDepth != 256 {
		t.Fatalf("expected default depth 256, got %d", cfg.Runtime.MaxExpressionDepth)
	}
	if cfg.REPL.Prompt != ">> " {
		t.Fatalf("expected default prompt, got %q", cfg.REPL.Prompt)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadFromStringYAML(t *testing.T) {
	content := `
server:
  addr: ":9090"
runtime:
  cache_entries: 64
  log_run_execution: false
logging:
  level: debug
`
	cfg, err := LoadFromString(content, "yaml")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("expected addr :9090, got %q", cfg.Server.Addr)
	}
	if cfg.Runtime.CacheEntries != 64 {
		t.Fatalf("expected cache_entries 64, got %d", cfg.Runtime.CacheEntries)
	}
	if cfg.Runtime.LogRunExecution == nil || *cfg.Runtime.LogRunExecution {
		t.Fatalf("expected log_run_execution false")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level debug, got %q", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.REPL.Prompt != ">> " {
		t.Fatalf("expected default prompt kept, got %q", cfg.REPL.Prompt)
	}
	if cfg.Runtime.MaxExpressionDepth != 256 {
		t.Fatalf("expected default depth kept, got %d", cfg.Runtime.MaxExpressionDepth)
	}
}

func TestLoadFromStringJSON(t *testing.T) {
	content := `{"server":{"addr":":7070"},"repl":{"prompt":"rabbit> ","history_path":"/tmp/hist.json"}}`
	cfg, err := LoadFromString(content, "json")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("expected addr :7070, got %q", cfg.Server.Addr)
	}
	if cfg.REPL.Prompt != "rabbit> " {
		t.Fatalf("expected prompt overridden, got %q", cfg.REPL.Prompt)
	}
	if cfg.REPL.HistoryPath != "/tmp/hist.json" {
		t.Fatalf("expected history path set, got %q", cfg.REPL.HistoryPath)
	}
}

func TestLoadFromStringUnknownFormat(t *testing.T) {
	_, err := LoadFromString("x", "toml")
	if err == nil {
		t.Fatalf("expected unsupported format error")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rabbit.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":6060\"\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Addr != ":6060" {
		t.Fatalf("expected addr :6060, got %q", cfg.Server.Addr)
	}

	if _, err := Load(filepath.Join(dir, "rabbit.toml")); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected read error for missing file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Runtime.MaxSourceBytes = -1 },
		func(c *Config) { c.Runtime.MaxExpressionDepth = -5 },
		func(c *Config) { c.Runtime.CacheEntries = -2 },
		func(c *Config) { c.Logging.Level = "verbose" },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestValidationFailsDuringLoad(t *testing.T) {
	_, err := LoadFromString(`{"logging":{"level":"loud"}}`, "json")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("unexpected error %v", err)
	}
}
