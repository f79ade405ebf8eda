package app

import (
	"fmt"

	"mimicbot/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.EffectiveConfigResult) error {
	// DB path must be present
	if p := eff.DBPath; p == "" {
		return fmt.Errorf("corpus path is empty: set --db flag, MIMICBOT_DB_PATH env, or server.db_path in config")
	}

	gen := eff.Config.Generator
	if gen.MinLength < 0 || gen.MaxLength < 0 || gen.MaxWords < 0 {
		return fmt.Errorf("generator tunables must be non-negative")
	}
	if gen.MaxLength > 0 && gen.MinLength > gen.MaxLength {
		return fmt.Errorf("generator.min_length (%d) exceeds generator.max_length (%d)", gen.MinLength, gen.MaxLength)
	}

	if ttl := eff.Config.Session.TTL.Duration(); ttl < 0 {
		return fmt.Errorf("session.ttl must not be negative")
	}

	if rl := eff.Config.Bot.RateLimit; rl.RPS < 0 || rl.Burst < 0 {
		return fmt.Errorf("bot.rate_limit values must be non-negative")
	}

	return nil
}
