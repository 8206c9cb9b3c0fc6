package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	TemplatesDir   string          `yaml:"templates_dir"`
	CommandTimeout time.Duration   `yaml:"command_timeout"`
	Telemetry      TelemetryConfig `yaml:"telemetry"`
}

type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DBPath        string `yaml:"db_path"`
	RetentionDays int    `yaml:"retention_days"`
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func DefaultConfigDir() string {
	return filepath.Join(homeDir(), ".mcf")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

func DefaultTemplatesDir() string {
	return filepath.Join(homeDir(), "mcf", "templates")
}

func DefaultConfig() *Config {
	return &Config{
		TemplatesDir:   DefaultTemplatesDir(),
		CommandTimeout: 300 * time.Second,
		Telemetry: TelemetryConfig{
			Enabled:       true,
			DBPath:        filepath.Join(DefaultConfigDir(), "history.db"),
			RetentionDays: 30,
		},
	}
}

// LoadConfig reads the YAML config at configPath, or the default path when
// empty. A missing file yields the defaults; unset fields keep their
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.TemplatesDir = expandPath(cfg.TemplatesDir)
	cfg.Telemetry.DBPath = expandPath(cfg.Telemetry.DBPath)

	if cfg.CommandTimeout <= 0 {
		return nil, fmt.Errorf("invalid command_timeout %s: must be positive", cfg.CommandTimeout)
	}
	if cfg.Telemetry.RetentionDays < 0 {
		return nil, fmt.Errorf("invalid telemetry.retention_days %d", cfg.Telemetry.RetentionDays)
	}

	return cfg, nil
}

// WriteConfig writes cfg as YAML, creating parent directories.
func WriteConfig(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func expandPath(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
