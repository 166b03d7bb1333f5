package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

// ServerConfig holds the configuration for the HTTP server and its storage.
type ServerConfig struct {
	ServerAddr       string `json:"server_addr"`
	LogLevel         string `json:"log_level"`
	DataDir          string `json:"data_dir"`
	DatabasePath     string `json:"database_path"`
	MetricsEnabled   bool   `json:"metrics_enabled"`
	MetricsNamespace string `json:"metrics_namespace"`
}

// GenerationConfig holds the limits applied to generation requests.
type GenerationConfig struct {
	DefaultTermCount int `json:"default_term_count"`
	MaxTermCount     int `json:"max_term_count"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server     *ServerConfig     `json:"server_config"`
	Generation *GenerationConfig `json:"generation_config"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: &ServerConfig{
			ServerAddr:       ":7290",
			LogLevel:         "info",
			DataDir:          "./data",
			DatabasePath:     "./data/babble.db?_journal_mode=WAL&_busy_timeout=5000",
			MetricsEnabled:   true,
			MetricsNamespace: "babble",
		},
		Generation: &GenerationConfig{
			DefaultTermCount: 15,
			MaxTermCount:     10000,
		},
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The server can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Server == nil || c.Generation == nil {
		return fmt.Errorf("server_config and generation_config are required")
	}
	if c.Generation.DefaultTermCount < 1 {
		return fmt.Errorf("default_term_count must be at least 1, got %d", c.Generation.DefaultTermCount)
	}
	if c.Generation.MaxTermCount < c.Generation.DefaultTermCount {
		return fmt.Errorf("max_term_count (%d) is below default_term_count (%d)", c.Generation.MaxTermCount, c.Generation.DefaultTermCount)
	}
	return nil
}

// logLevel maps the configured level name to a slog.Level, defaulting to info.
func (c *ServerConfig) logLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
