// Package config handles the configuration management for passman.
// It provides functionality to load, save, and manage application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the passman configuration
type Config struct {
	VaultPath    string          `yaml:"vault_path"`
	AuditPath    string          `yaml:"audit_path"`
	AuditEnabled bool            `yaml:"audit_enabled"`
	LogFile      string          `yaml:"log_file"`
	LogLevel     string          `yaml:"log_level"`
	LockTimeout  time.Duration   `yaml:"lock_timeout"`
	Generator    GeneratorConfig `yaml:"generator"`
}

// GeneratorConfig controls passwords produced by the G key and passgen
type GeneratorConfig struct {
	Length  int    `yaml:"length"`
	Charset string `yaml:"charset"`
}

// DefaultConfigPath returns ~/.config/passman/config.yaml
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "passman", "config.yaml")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".local", "share", "passman")
	return &Config{
		VaultPath:    filepath.Join(dataDir, "vault.txt"),
		AuditPath:    filepath.Join(dataDir, "audit.db"),
		AuditEnabled: true,
		LogLevel:     "info",
		LockTimeout:  2 * time.Second,
		Generator: GeneratorConfig{
			Length:  20,
			Charset: "alnum_special",
		},
	}
}

// LoadConfig loads configuration from file or returns default. A missing file
// is created with the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	cleanPath := filepath.Clean(configPath)

	if _, err := os.Stat(cleanPath); os.IsNotExist(err) {
		if err := SaveConfig(cfg, cleanPath); err != nil {
			return cfg, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.VaultPath = expandHome(cfg.VaultPath)
	cfg.AuditPath = expandHome(cfg.AuditPath)
	cfg.LogFile = expandHome(cfg.LogFile)

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, configPath string) error {
	cleanPath := filepath.Clean(configPath)

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandHome replaces a leading ~/ with the user's home directory
func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
