package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	ContextDir string `json:"context_dir"`
	LogLevel   string `json:"log_level"`
	// Locking serializes concurrent writers to one session within a process.
	Locking   bool `json:"locking"`
	Tokenizer struct {
		Model string `json:"model"`
	} `json:"tokenizer"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() *Config {
	cfg := &Config{
		ContextDir: filepath.Join(os.Getenv("HOME"), ".sharedctx", "shared-context"),
		LogLevel:   "info",
	}
	cfg.Tokenizer.Model = "gpt-4"
	return cfg
}

// DefaultPath is where the config file lives unless overridden.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".sharedctx", "config.json")
}

// Load reads the config at path, writing defaults there first if it does not
// exist. Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if dir := os.Getenv("SHARED_CONTEXT_DIR"); dir != "" {
		cfg.ContextDir = dir
	}
	if level := os.Getenv("SHAREDCTX_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	return cfg, nil
}

// readFile loads the file layer only, without environment overrides.
func readFile(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
