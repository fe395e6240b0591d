// ABOUTME: Configuration parsing and validation for YAML, TOML, and JSONC files
// ABOUTME: Defines the Snapcast servers to follow plus API, CORS, and logging settings
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListenHost    = "127.0.0.1"
	DefaultListenPort    = 8780
	DefaultSnapcastPort  = 1705
	DefaultHistorySize   = 32
	DefaultDialTimeoutMs = 5000
	DefaultMinBackoffMs  = 1000
	DefaultMaxBackoffMs  = 30000
)

type Config struct {
	Listen  ListenConfig   `yaml:"listen" toml:"listen" json:"listen"`
	CORS    CORSConfig     `yaml:"cors" toml:"cors" json:"cors"`
	Servers []ServerConfig `yaml:"servers" toml:"servers" json:"servers"`
	Logging LoggingConfig  `yaml:"logging" toml:"logging" json:"logging"`
}

type ListenConfig struct {
	Host string `yaml:"host" toml:"host" json:"host"`
	Port int    `yaml:"port" toml:"port" json:"port"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins" json:"allowed_origins"`
}

type ServerConfig struct {
	ID            string          `yaml:"id" toml:"id" json:"id"`
	Host          string          `yaml:"host" toml:"host" json:"host"`
	Port          int             `yaml:"port" toml:"port" json:"port"`
	Framing       string          `yaml:"framing" toml:"framing" json:"framing"`
	DialTimeoutMs int             `yaml:"dial_timeout_ms" toml:"dial_timeout_ms" json:"dial_timeout_ms"`
	Reconnect     ReconnectConfig `yaml:"reconnect" toml:"reconnect" json:"reconnect"`
	HistorySize   int             `yaml:"history_size" toml:"history_size" json:"history_size"`
	Build         BuildConfig     `yaml:"build" toml:"build" json:"build"`
}

type ReconnectConfig struct {
	Enabled      *bool `yaml:"enabled" toml:"enabled" json:"enabled"`
	MinBackoffMs int   `yaml:"min_backoff_ms" toml:"min_backoff_ms" json:"min_backoff_ms"`
	MaxBackoffMs int   `yaml:"max_backoff_ms" toml:"max_backoff_ms" json:"max_backoff_ms"`
}

// On reports whether reconnecting is enabled; unset means enabled.
func (r ReconnectConfig) On() bool {
	return r.Enabled == nil || *r.Enabled
}

type BuildConfig struct {
	Format              string   `yaml:"format" toml:"format" json:"format"`
	StripSingleQuotes   bool     `yaml:"strip_single_quotes" toml:"strip_single_quotes" json:"strip_single_quotes"`
	NormalizeWhitespace bool     `yaml:"normalize_whitespace" toml:"normalize_whitespace" json:"normalize_whitespace"`
	FallbackKeyOrder    []string `yaml:"fallback_key_order" toml:"fallback_key_order" json:"fallback_key_order"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level" json:"level"`
	JSON  bool   `yaml:"json" toml:"json" json:"json"`
}

// Load reads path, picking the decoder from its extension, then applies
// defaults and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("empty config path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data, filepath.Ext(path))
}

// Parse decodes data in the format named by ext (".yaml", ".yml", ".toml",
// ".json" or ".jsonc").
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension: %q", ext)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Listen.Host == "" {
		c.Listen.Host = DefaultListenHost
	}
	if c.Listen.Port == 0 {
		c.Listen.Port = DefaultListenPort
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	for i := range c.Servers {
		s := &c.Servers[i]
		if s.Port == 0 {
			s.Port = DefaultSnapcastPort
		}
		if s.Framing == "" {
			s.Framing = "chunk"
		}
		if s.DialTimeoutMs == 0 {
			s.DialTimeoutMs = DefaultDialTimeoutMs
		}
		if s.HistorySize == 0 {
			s.HistorySize = DefaultHistorySize
		}
		if s.Reconnect.MinBackoffMs == 0 {
			s.Reconnect.MinBackoffMs = DefaultMinBackoffMs
		}
		if s.Reconnect.MaxBackoffMs == 0 {
			s.Reconnect.MaxBackoffMs = DefaultMaxBackoffMs
		}
	}
}

func (c *Config) Validate() error {
	if len(c.Servers) == 0 {
		return errors.New("config: no servers configured")
	}

	seen := make(map[string]bool, len(c.Servers))
	for i, s := range c.Servers {
		if s.ID == "" {
			return fmt.Errorf("config: servers[%d]: missing id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("config: servers[%d]: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true

		if s.Host == "" {
			return fmt.Errorf("config: server %q: missing host", s.ID)
		}
		if s.Port < 0 || s.Port > 65535 {
			return fmt.Errorf("config: server %q: port %d out of range", s.ID, s.Port)
		}
		if s.Framing != "chunk" && s.Framing != "stream" {
			return fmt.Errorf("config: server %q: unknown framing %q", s.ID, s.Framing)
		}
		if s.Reconnect.MinBackoffMs > s.Reconnect.MaxBackoffMs {
			return fmt.Errorf("config: server %q: min_backoff_ms exceeds max_backoff_ms", s.ID)
		}
	}
	return nil
}
