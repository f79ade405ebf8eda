package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RuntimeConfig holds derived runtime values other packages may query
// while the bot is running (populated during startup after merging
// env+file).
type RuntimeConfig struct {
	ExcludedAuthors map[string]struct{}
}

// Config is the main configuration struct.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Generator GeneratorConfig `yaml:"generator"`
	Session   SessionConfig   `yaml:"session"`
	Bot       BotConfig       `yaml:"bot"`
	Audit     AuditConfig     `yaml:"audit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the ops HTTP listener and storage path.
type ServerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	DBPath  string `yaml:"db_path"`
}

// GeneratorConfig holds chain-walk tunables.
type GeneratorConfig struct {
	// MinLength is the soft floor in characters a walk should reach
	// before it is allowed to stop at a sample boundary.
	MinLength int `yaml:"min_length"`
	// MaxLength is the character budget applied by the normalizer.
	MaxLength int `yaml:"max_length"`
	// MaxWords caps a single walk against cyclic chains.
	MaxWords int `yaml:"max_words"`
}

// SessionConfig holds regeneration-session lifetime settings.
type SessionConfig struct {
	// TTL is the sliding inactivity window after which a session expires.
	TTL Duration `yaml:"ttl"`
	// SweepCron schedules the expiry sweep (cron syntax).
	SweepCron string `yaml:"sweep_cron"`
}

// BotConfig holds event-boundary settings.
type BotConfig struct {
	// ExcludedAuthors are author ids never logged into the corpus, in
	// addition to messages flagged as bot-authored.
	ExcludedAuthors []string        `yaml:"excluded_authors"`
	DedupWindow     Duration        `yaml:"dedup_window"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig bounds per-actor generation actions.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// AuditConfig configures the optional JSON audit sink.
type AuditConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Duration is a wrapper around time.Duration that supports YAML parsing
// from strings like "15m" or plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = Duration(0)
		return nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		*d = Duration(td)
		return nil
	}
	// allow numeric seconds
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration value: %q", node.Value)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Addr returns host:port for the ops HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 9090
	}
	return fmt.Sprintf("%s:%d", addr, p)
}
