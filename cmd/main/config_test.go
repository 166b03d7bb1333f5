package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Generation.DefaultTermCount != 15 {
		t.Errorf("DefaultTermCount = %d, want 15", config.Generation.DefaultTermCount)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}
	var written Config
	if err = json.Unmarshal(data, &written); err != nil {
		t.Fatalf("written config is not valid JSON: %v", err)
	}
	if written.Server.ServerAddr != config.Server.ServerAddr {
		t.Errorf("written server_addr = %q, want %q", written.Server.ServerAddr, config.Server.ServerAddr)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"server_config": {"server_addr": ":9999", "log_level": "debug"}, "generation_config": {"default_term_count": 20, "max_term_count": 50}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Server.ServerAddr != ":9999" {
		t.Errorf("ServerAddr = %q, want %q", config.Server.ServerAddr, ":9999")
	}
	if config.Server.MetricsNamespace != "babble" {
		t.Errorf("expected unset fields to keep defaults, got namespace %q", config.Server.MetricsNamespace)
	}
	if config.Generation.DefaultTermCount != 20 || config.Generation.MaxTermCount != 50 {
		t.Errorf("unexpected generation config: %+v", config.Generation)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	testCases := []struct {
		name          string
		content       string
		errorContains string
	}{
		{name: "Malformed JSON", content: `{`, errorContains: "failed to parse"},
		{name: "Zero default term count", content: `{"generation_config": {"default_term_count": 0, "max_term_count": 10}}`, errorContains: "default_term_count"},
		{name: "Max below default", content: `{"generation_config": {"default_term_count": 10, "max_term_count": 5}}`, errorContains: "max_term_count"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tc.errorContains) {
				t.Errorf("expected error containing %q, got %v", tc.errorContains, err)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for name, expected := range testCases {
		if got := (&ServerConfig{LogLevel: name}).logLevel(); got != expected {
			t.Errorf("logLevel(%q) = %v, want %v", name, got, expected)
		}
	}
}
