// Package config loads and validates the bot's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alekspetrov/goaltrack/internal/digest"
	"github.com/alekspetrov/goaltrack/internal/logging"
)

// Config represents the main configuration
type Config struct {
	Version  string          `yaml:"version"`
	Telegram *TelegramConfig `yaml:"telegram"`
	Storage  *StorageConfig  `yaml:"storage"`
	Logging  *logging.Config `yaml:"logging"`
	Digest   *digest.Config  `yaml:"digest"`
}

// TelegramConfig holds transport settings.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
}

// StorageConfig holds data directory settings. Both SQLite databases
// (goal domain and identities) live under Path.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Version:  "1.0",
		Telegram: &TelegramConfig{},
		Storage: &StorageConfig{
			Path: filepath.Join(homeDir, ".goaltrack", "data"),
		},
		Logging: logging.DefaultConfig(),
		Digest:  digest.DefaultConfig(),
	}
}

// Load loads configuration from a file. A missing file yields defaults.
// Values may reference environment variables with $VAR / ${VAR}.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Storage != nil {
		config.Storage.Path = expandPath(config.Storage.Path)
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks the configuration is runnable.
func (c *Config) Validate() error {
	if c.Telegram == nil || c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (env TELEGRAM_BOT_TOKEN via ${TELEGRAM_BOT_TOKEN})")
	}
	if c.Storage == nil || c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	return nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".goaltrack", "config.yaml")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
