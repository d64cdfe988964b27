package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file.
const FileName = "ledgr.yaml"

// Storage backends.
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// Config represents the top-level ledgr.yaml configuration.
type Config struct {
	Journal  JournalConfig   `yaml:"journal"`
	Storage  StorageConfig   `yaml:"storage"`
	History  HistoryConfig   `yaml:"history"`
	Accounts []AccountConfig `yaml:"accounts,omitempty"`
	Log      LogConfig       `yaml:"log"`
	Server   ServerConfig    `yaml:"server"`
	Audit    AuditConfig     `yaml:"audit"`
}

// JournalConfig names the journal and its default currency.
type JournalConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Currency    string `yaml:"currency"`
}

// StorageConfig selects where the journal document is kept.
type StorageConfig struct {
	Backend string `yaml:"backend"` // "yaml" or "sqlite"
	Path    string `yaml:"path"`    // relative to the workspace root
}

// HistoryConfig bounds the undo history.
type HistoryConfig struct {
	Limit int `yaml:"limit"` // <= 0 means unlimited
}

// AccountConfig defines one account.
type AccountConfig struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Kind     string            `yaml:"kind"` // noop, basic, no-invoice
	Fields   map[string]string `yaml:"fields,omitempty"`
	Required []string          `yaml:"required,omitempty"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ServerConfig controls `ledgr serve`.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// AuditConfig controls the edit audit trail.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads a ledgr.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later and far from the file.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendYAML, BackendSQLite:
	default:
		return fmt.Errorf("invalid storage backend %q: must be %q or %q", c.Storage.Backend, BackendYAML, BackendSQLite)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path cannot be empty")
	}
	seen := make(map[string]bool, len(c.Accounts))
	for _, a := range c.Accounts {
		if seen[a.ID] {
			return fmt.Errorf("duplicate account id %q", a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

// Default returns a Config with sensible defaults for a new journal.
func Default(name, currency string) *Config {
	return &Config{
		Journal: JournalConfig{
			Name:     name,
			Currency: currency,
		},
		Storage: StorageConfig{
			Backend: BackendYAML,
			Path:    "journal.yaml",
		},
		History: HistoryConfig{
			Limit: 100,
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:    "127.0.0.1:8080",
			Metrics: true,
		},
		Audit: AuditConfig{
			Enabled: true,
		},
	}
}
