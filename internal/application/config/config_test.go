// ABOUTME: Tests for configuration parsing across YAML, TOML, and JSONC
// ABOUTME: Verifies structure, defaults, and validation
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	yamlContent := `
listen:
  host: 0.0.0.0
  port: 8000

cors:
  allowed_origins: ["http://localhost:3000"]

servers:
  - id: living_room
    host: 192.168.0.2
    framing: stream
    reconnect:
      enabled: false
    build:
      format: "{artist} - {title}"
      strip_single_quotes: true
      fallback_key_order: [album]

logging:
  level: debug
  json: true
`

	cfg, err := Load(writeConfig(t, "config.yaml", yamlContent))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Listen.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Listen.Host)
	}
	if cfg.Listen.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Listen.Port)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 {
		t.Errorf("expected 1 allowed origin, got %v", cfg.CORS.AllowedOrigins)
	}
	if len(cfg.Servers) != 1 {
		t.Fatalf("expected 1 server, got %d", len(cfg.Servers))
	}

	s := cfg.Servers[0]
	if s.ID != "living_room" {
		t.Errorf("expected ID living_room, got %s", s.ID)
	}
	if s.Port != 1705 {
		t.Errorf("expected default port 1705, got %d", s.Port)
	}
	if s.Framing != "stream" {
		t.Errorf("expected stream framing, got %s", s.Framing)
	}
	if s.Reconnect.On() {
		t.Error("expected reconnect disabled")
	}
	if !s.Build.StripSingleQuotes || len(s.Build.FallbackKeyOrder) != 1 {
		t.Errorf("unexpected build config %+v", s.Build)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.JSON {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoad_TOML(t *testing.T) {
	tomlContent := `
[listen]
port = 9000

[[servers]]
id = "kitchen"
host = "snapserver.local"
port = 1780
history_size = 8

[servers.reconnect]
min_backoff_ms = 500
max_backoff_ms = 2000
`

	cfg, err := Load(writeConfig(t, "config.toml", tomlContent))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Listen.Host != DefaultListenHost || cfg.Listen.Port != 9000 {
		t.Errorf("unexpected listen config %+v", cfg.Listen)
	}
	s := cfg.Servers[0]
	if s.Port != 1780 || s.HistorySize != 8 {
		t.Errorf("unexpected server config %+v", s)
	}
	if !s.Reconnect.On() || s.Reconnect.MinBackoffMs != 500 || s.Reconnect.MaxBackoffMs != 2000 {
		t.Errorf("unexpected reconnect config %+v", s.Reconnect)
	}
	if s.Framing != "chunk" {
		t.Errorf("expected default chunk framing, got %s", s.Framing)
	}
}

func TestLoad_JSONC(t *testing.T) {
	jsoncContent := `{
  // Snapcast servers to follow
  "servers": [
    {"id": "office", "host": "10.0.0.5", "dial_timeout_ms": 250,},
  ],
}`

	cfg, err := Load(writeConfig(t, "config.jsonc", jsoncContent))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s := cfg.Servers[0]
	if s.ID != "office" || s.DialTimeoutMs != 250 {
		t.Errorf("unexpected server config %+v", s)
	}
	if s.HistorySize != DefaultHistorySize {
		t.Errorf("expected default history size, got %d", s.HistorySize)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unknown extension", "config.ini", "x=1", "unsupported config extension"},
		{"bad yaml", "config.yaml", "servers: [", "parse yaml"},
		{"no servers", "config.yaml", "listen: {port: 1}", "no servers"},
		{"missing id", "config.yaml", "servers: [{host: a}]", "missing id"},
		{"missing host", "config.yaml", "servers: [{id: a}]", "missing host"},
		{"duplicate id", "config.yaml", "servers: [{id: a, host: x}, {id: a, host: y}]", "duplicate id"},
		{"bad framing", "config.yaml", "servers: [{id: a, host: x, framing: lines}]", "unknown framing"},
		{"bad port", "config.yaml", "servers: [{id: a, host: x, port: 70000}]", "out of range"},
		{"bad backoff", "config.yaml", "servers: [{id: a, host: x, reconnect: {min_backoff_ms: 10, max_backoff_ms: 5}}]", "min_backoff_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("expected error for empty path")
	}
}
