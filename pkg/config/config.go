package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oarkflow/bcl"
	"github.com/oarkflow/errors"
	"github.com/oarkflow/json"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration shared by the rabbit CLI, the
// REPL, and the HTTP service, so one file drives all of them.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`
	REPL    REPLConfig    `json:"repl" yaml:"repl"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ServerConfig describes where the HTTP service listens.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// RuntimeConfig mirrors the engine's runtime limits so deployments can
// tune them from a file instead of code. A nil LogRunExecution keeps
// the engine default.
type RuntimeConfig struct {
	MaxSourceBytes     int   `json:"max_source_bytes" yaml:"max_source_bytes"`
	MaxExpressionDepth int   `json:"max_expression_depth" yaml:"max_expression_depth"`
	CacheEntries       int64 `json:"cache_entries" yaml:"cache_entries"`
	LogRunExecution    *bool `json:"log_run_execution" yaml:"log_run_execution"`
}

// REPLConfig controls the interactive session. An empty HistoryPath
// disables history persistence.
type REPLConfig struct {
	Prompt      string `json:"prompt" yaml:"prompt"`
	HistoryPath string `json:"history_path" yaml:"history_path"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8087"},
		Runtime: RuntimeConfig{
			MaxSourceBytes:     1 << 20,
			MaxExpressionDepth: 256,
			CacheEntries:       1024,
		},
		REPL:    REPLConfig{Prompt: ">> "},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a config file, choosing the decoder by extension.
func Load(path string) (*Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return load(path, yaml.Unmarshal)
	case ".json":
		return load(path, func(data []byte, v any) error {
			return json.Unmarshal(data, v)
		})
	case ".bcl":
		return load(path, func(data []byte, v any) error {
			_, err := bcl.Unmarshal(data, v)
			return err
		})
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// LoadFromString loads the config from raw text, useful for tests.
func LoadFromString(content, format string) (*Config, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return decode([]byte(content), yaml.Unmarshal)
	case "json":
		return decode([]byte(content), func(data []byte, v any) error {
			return json.Unmarshal(data, v)
		})
	case "bcl":
		return decode([]byte(content), func(data []byte, v any) error {
			_, err := bcl.Unmarshal(data, v)
			return err
		})
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Validate checks basic invariants before a config is applied.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Runtime.MaxSourceBytes < 0 {
		return errors.New("runtime.max_source_bytes must not be negative")
	}
	if cfg.Runtime.MaxExpressionDepth < 0 {
		return errors.New("runtime.max_expression_depth must not be negative")
	}
	if cfg.Runtime.CacheEntries < 0 {
		return errors.New("runtime.cache_entries must not be negative")
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return errors.New(fmt.Sprintf("unknown logging.level %q", cfg.Logging.Level))
	}
	return nil
}

func load(path string, fn func([]byte, any) error) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(raw, fn)
}

func decode(data []byte, fn func([]byte, any) error) (*Config, error) {
	cfg := Default()
	if err := fn(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}
