package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	runtimeMu  sync.RWMutex
	runtimeCfg *RuntimeConfig
)

// SetRuntime sets the canonical runtime config used by the running bot.
func SetRuntime(rc *RuntimeConfig) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	runtimeCfg = rc
}

// IsExcludedAuthor reports whether an author id is configured as never
// eligible for corpus logging.
func IsExcludedAuthor(authorID string) bool {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	if runtimeCfg == nil || runtimeCfg.ExcludedAuthors == nil {
		return false
	}
	_, ok := runtimeCfg.ExcludedAuthors[authorID]
	return ok
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveConfigPath returns the config path to use: an explicit flag wins,
// then MIMICBOT_CONFIG, then the provided default.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if v := os.Getenv("MIMICBOT_CONFIG"); v != "" {
		return v
	}
	return flagPath
}

// ApplyDefaults fills unset tunables with their documented defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Generator.MinLength <= 0 {
		cfg.Generator.MinLength = 10
	}
	if cfg.Generator.MaxLength <= 0 {
		cfg.Generator.MaxLength = 300
	}
	if cfg.Generator.MaxWords <= 0 {
		cfg.Generator.MaxWords = 1000
	}
	if cfg.Session.TTL.Duration() <= 0 {
		cfg.Session.TTL = Duration(15 * time.Minute)
	}
	if cfg.Session.SweepCron == "" {
		cfg.Session.SweepCron = "*/5 * * * *"
	}
	if cfg.Bot.DedupWindow.Duration() <= 0 {
		cfg.Bot.DedupWindow = Duration(2 * time.Minute)
	}
	if cfg.Bot.RateLimit.RPS <= 0 {
		cfg.Bot.RateLimit.RPS = 1
	}
	if cfg.Bot.RateLimit.Burst <= 0 {
		cfg.Bot.RateLimit.Burst = 3
	}
}
