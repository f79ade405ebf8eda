package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"

	"mimicbot/internal/sweeper"
	"mimicbot/pkg/bot"
	"mimicbot/pkg/config"
	"mimicbot/pkg/gateway"
	"mimicbot/pkg/generate"
	"mimicbot/pkg/logger"
	"mimicbot/pkg/session"
	"mimicbot/pkg/store"
)

// App encapsulates the bot components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	gw  *gateway.MemoryGateway
	bot *bot.Bot
	reg *session.Registry

	srv *http.Server
}

// corpusReader adapts the package-level store functions to the narrow
// read surface the generation service consumes.
type corpusReader struct{}

func (corpusReader) ListByAuthor(authorID string) ([]string, error) {
	return store.ListByAuthor(authorID)
}

func (corpusReader) ListAll() ([]string, error) { return store.ListAll() }

// New initializes resources that do not require a running context (DB,
// audit sink, runtime exclusions, service graph). It does not start the
// sweeper, event loop or ops server; call Run to start those and block
// until shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	// validate effective config early and fail fast
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	// runtime exclusions
	runtimeCfg := &config.RuntimeConfig{ExcludedAuthors: map[string]struct{}{}}
	for _, a := range eff.Config.Bot.ExcludedAuthors {
		runtimeCfg.ExcludedAuthors[a] = struct{}{}
	}
	config.SetRuntime(runtimeCfg)

	if dir := eff.Config.Audit.Dir; dir != "" {
		if err := logger.AttachAuditFileSink(dir); err != nil {
			return nil, fmt.Errorf("attach audit sink at %s: %w", dir, err)
		}
	}

	// open store
	if err := store.Open(eff.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", eff.DBPath, err)
	}

	a := &App{eff: eff, version: version, commit: commit, buildDate: buildDate}

	gen := generate.New(corpusReader{}, eff.Config.Generator, nil)
	a.gw = gateway.NewMemoryGateway(64)
	a.reg = session.NewRegistry(gen, a.gw, eff.Config.Session.TTL.Duration())
	a.bot = bot.New(gen, a.reg, a.gw, eff.Config.Bot, nil)
	return a, nil
}

// Gateway exposes the in-process gateway so drivers can push events and
// observe emissions.
func (a *App) Gateway() *gateway.MemoryGateway { return a.gw }

// Run starts the expiry sweeper, the event loop and the ops HTTP server,
// and blocks until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	sweepCancel, err := sweeper.Start(ctx, a.reg, a.eff.Config.Session.SweepCron)
	if err != nil {
		return err
	}
	defer sweepCancel()

	go a.bot.Run(ctx, a.gw)

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		return store.Close()
	case err := <-errCh:
		_ = store.Close()
		return err
	}
}
