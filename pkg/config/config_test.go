package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadParsesYAML(t *testing.T) {
	p := writeConfig(t, `
server:
  address: 127.0.0.1
  port: 9191
  db_path: /tmp/corpus
generator:
  min_length: 20
  max_length: 250
session:
  ttl: 10m
  sweep_cron: "* * * * *"
bot:
  excluded_authors: [spammer, troll]
  rate_limit:
    rps: 2
    burst: 5
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.DBPath != "/tmp/corpus" {
		t.Fatalf("db_path: got %q", cfg.Server.DBPath)
	}
	if cfg.Addr() != "127.0.0.1:9191" {
		t.Fatalf("Addr: got %q", cfg.Addr())
	}
	if cfg.Generator.MinLength != 20 || cfg.Generator.MaxLength != 250 {
		t.Fatalf("generator: got %+v", cfg.Generator)
	}
	if cfg.Session.TTL.Duration() != 10*time.Minute {
		t.Fatalf("ttl: got %v", cfg.Session.TTL.Duration())
	}
	if len(cfg.Bot.ExcludedAuthors) != 2 {
		t.Fatalf("excluded_authors: got %v", cfg.Bot.ExcludedAuthors)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Generator.MinLength != 10 || cfg.Generator.MaxLength != 300 || cfg.Generator.MaxWords != 1000 {
		t.Fatalf("generator defaults: got %+v", cfg.Generator)
	}
	if cfg.Session.TTL.Duration() != 15*time.Minute {
		t.Fatalf("ttl default: got %v", cfg.Session.TTL.Duration())
	}
	if cfg.Session.SweepCron != "*/5 * * * *" {
		t.Fatalf("sweep cron default: got %q", cfg.Session.SweepCron)
	}
	if cfg.Bot.RateLimit.RPS != 1 || cfg.Bot.RateLimit.Burst != 3 {
		t.Fatalf("rate limit defaults: got %+v", cfg.Bot.RateLimit)
	}
}

func TestLoadEffectiveConfigExplicitFileWins(t *testing.T) {
	fileCfg := &Config{}
	fileCfg.Server.DBPath = "/from/file"
	flags := Flags{Config: "x.yaml", Set: map[string]bool{"config": true}}

	eff, err := LoadEffectiveConfig(flags, fileCfg, true, &Config{}, EnvResult{EnvUsed: true})
	if err != nil {
		t.Fatalf("LoadEffectiveConfig: %v", err)
	}
	if eff.Source != "config" || eff.DBPath != "/from/file" {
		t.Fatalf("got source=%q dbPath=%q", eff.Source, eff.DBPath)
	}
}

func TestLoadEffectiveConfigExplicitFileMissing(t *testing.T) {
	flags := Flags{Config: "missing.yaml", Set: map[string]bool{"config": true}}
	if _, err := LoadEffectiveConfig(flags, &Config{}, false, &Config{}, EnvResult{}); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLoadEffectiveConfigFlagsWin(t *testing.T) {
	fileCfg := &Config{}
	fileCfg.Server.DBPath = "/from/file"
	flags := Flags{Addr: ":7070", DB: "/from/flag", Set: map[string]bool{"addr": true, "db": true}}

	eff, err := LoadEffectiveConfig(flags, fileCfg, true, &Config{}, EnvResult{})
	if err != nil {
		t.Fatalf("LoadEffectiveConfig: %v", err)
	}
	if eff.Source != "flags" || eff.DBPath != "/from/flag" || eff.Addr != ":7070" {
		t.Fatalf("got %+v", eff)
	}
	// defaults still applied on the synthesized config
	if eff.Config.Generator.MaxLength != 300 {
		t.Fatalf("defaults not applied: %+v", eff.Config.Generator)
	}
}

func TestLoadEffectiveConfigEnvFallback(t *testing.T) {
	envCfg := &Config{}
	envCfg.Server.DBPath = "/from/env"

	eff, err := LoadEffectiveConfig(Flags{Set: map[string]bool{}}, &Config{}, false, envCfg, EnvResult{EnvUsed: true})
	if err != nil {
		t.Fatalf("LoadEffectiveConfig: %v", err)
	}
	if eff.Source != "env" || eff.DBPath != "/from/env" {
		t.Fatalf("got source=%q dbPath=%q", eff.Source, eff.DBPath)
	}
}

func TestParseConfigEnvs(t *testing.T) {
	t.Setenv("MIMICBOT_DB_PATH", "/env/corpus")
	t.Setenv("MIMICBOT_SESSION_TTL", "30m")
	t.Setenv("MIMICBOT_EXCLUDED_AUTHORS", "a, b ,c")

	cfg, res := ParseConfigEnvs()
	if !res.EnvUsed {
		t.Fatalf("expected EnvUsed")
	}
	if cfg.Server.DBPath != "/env/corpus" {
		t.Fatalf("db path: got %q", cfg.Server.DBPath)
	}
	if cfg.Session.TTL.Duration() != 30*time.Minute {
		t.Fatalf("ttl: got %v", cfg.Session.TTL.Duration())
	}
	if len(cfg.Bot.ExcludedAuthors) != 3 {
		t.Fatalf("excluded: got %v", cfg.Bot.ExcludedAuthors)
	}
}

func TestIsExcludedAuthor(t *testing.T) {
	SetRuntime(&RuntimeConfig{ExcludedAuthors: map[string]struct{}{"u9": {}}})
	t.Cleanup(func() { SetRuntime(nil) })

	if !IsExcludedAuthor("u9") {
		t.Fatalf("u9 should be excluded")
	}
	if IsExcludedAuthor("u1") {
		t.Fatalf("u1 should not be excluded")
	}
}
