// Package bot is the action-handling boundary: it consumes gateway
// events, mutates the corpus, runs generations and drives regeneration
// sessions. One failed action never affects other sessions or future
// corpus operations.
package bot

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"mimicbot/pkg/config"
	"mimicbot/pkg/gateway"
	"mimicbot/pkg/generate"
	"mimicbot/pkg/logger"
	"mimicbot/pkg/markov"
	"mimicbot/pkg/models"
	"mimicbot/pkg/session"
	"mimicbot/pkg/store"
	"mimicbot/pkg/telemetry"
)

// Bot wires the corpus store, the generation service and the session
// registry behind the gateway interfaces.
type Bot struct {
	gen  *generate.Service
	reg  *session.Registry
	sink gateway.Sink

	// seen pre-filters re-delivered create events before they hit the
	// store; the store still rejects duplicates that outlive the window.
	seen     *gocache.Cache
	limiters *limiterPool

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a Bot. A nil rng is replaced with a time-seeded one.
func New(gen *generate.Service, reg *session.Registry, sink gateway.Sink, cfg config.BotConfig, rng *rand.Rand) *Bot {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	window := cfg.DedupWindow.Duration()
	if window <= 0 {
		window = 2 * time.Minute
	}
	return &Bot{
		gen:      gen,
		reg:      reg,
		sink:     sink,
		seen:     gocache.New(window, 2*window),
		limiters: &limiterPool{cfg: cfg.RateLimit},
		rng:      rng,
	}
}

// Run consumes events until the source closes or ctx is canceled. Each
// event is handled on its own goroutine so no handler blocks the loop.
func (b *Bot) Run(ctx context.Context, src gateway.Source) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-src.Events():
			if !ok {
				return
			}
			go b.Handle(ev)
		}
	}
}

// Handle processes one gateway event.
func (b *Bot) Handle(ev gateway.Event) {
	switch {
	case ev.Created != nil:
		telemetry.EventsIngested.WithLabelValues("message_created").Inc()
		b.handleCreated(ev.Created)
	case ev.Deleted != nil:
		telemetry.EventsIngested.WithLabelValues("message_deleted").Inc()
		b.handleDeleted(ev.Deleted)
	case ev.Action != nil:
		telemetry.EventsIngested.WithLabelValues("user_action").Inc()
		b.handleAction(ev.Action)
	default:
		logger.Warn("empty_gateway_event")
	}
}

func (b *Bot) handleCreated(m *models.MessageCreated) {
	if m.Bot || config.IsExcludedAuthor(m.AuthorID) {
		logger.Debug("author_excluded", "author", m.AuthorID)
		return
	}
	if _, dup := b.seen.Get(m.EventID); dup {
		logger.Debug("event_duplicate_delivery", "event_id", m.EventID)
		return
	}
	b.seen.Set(m.EventID, struct{}{}, gocache.DefaultExpiration)

	err := store.Insert(models.CorpusRecord{
		EventID:  m.EventID,
		AuthorID: m.AuthorID,
		Content:  m.Content,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			// Delivery defect; surfaced in the log, never retried.
			logger.Warn("insert_duplicate_event", "event_id", m.EventID)
			return
		}
		logger.Error("insert_failed", "event_id", m.EventID, "error", err)
	}
}

func (b *Bot) handleDeleted(m *models.MessageDeleted) {
	if err := store.Delete(m.EventID); err != nil {
		logger.Error("delete_failed", "event_id", m.EventID, "error", err)
	}
}

func (b *Bot) handleAction(act *models.UserAction) {
	switch act.Kind {
	case models.ActionGenerate:
		b.handleGenerate(act)
	case models.ActionRegenerate:
		b.handleRegenerate(act)
	case models.ActionShare:
		b.handleShare(act)
	default:
		logger.Warn("unknown_action_kind", "kind", act.Kind, "actor", act.ActorID)
	}
}

func (b *Bot) handleGenerate(act *models.UserAction) {
	if !b.limiters.Allow(act.ActorID) {
		_ = b.sink.ReportFailure(act.ActorID, throttledLine)
		return
	}
	mode := act.Mode
	if mode == "" {
		mode = models.ModeAuthor
	}
	target := act.TargetAuthorID
	if mode == models.ModeAuthor && target == "" {
		// No explicit target means "imitate me".
		target = act.ActorID
	}
	out, err := b.gen.Run(mode, target)
	if err != nil {
		b.reportGenerationFailure(act.ActorID, err)
		return
	}
	text := session.Render(out)
	msgID, err := b.sink.EmitMessage(act.ChannelID, text, []models.ActionKind{models.ActionRegenerate, models.ActionShare})
	if err != nil {
		logger.Error("emit_failed", "actor", act.ActorID, "error", err)
		b.reportGenerationFailure(act.ActorID, err)
		return
	}
	if err := b.reg.Bind(msgID, act.ChannelID, mode, target, text); err != nil {
		logger.Error("session_bind_failed", "message_id", msgID, "error", err)
	}
	telemetry.Generations.WithLabelValues(string(mode)).Inc()
	telemetry.SessionsActive.Set(float64(b.reg.Len()))
	logger.Info("generated", "mode", mode, "target", target, "message_id", msgID)
}

func (b *Bot) handleRegenerate(act *models.UserAction) {
	if !b.limiters.Allow(act.ActorID) {
		_ = b.sink.ReportFailure(act.ActorID, throttledLine)
		return
	}
	err := b.reg.Regenerate(*act)
	switch {
	case err == nil:
		telemetry.Generations.WithLabelValues("regenerate").Inc()
	case errors.Is(err, session.ErrUnknownMessage):
		// Stale or duplicated button reference; non-fatal no-op.
		logger.Debug("regenerate_unknown_message", "message_id", act.MessageID)
	case errors.Is(err, session.ErrSessionExpired):
		telemetry.GenerationFailures.WithLabelValues("session_expired").Inc()
		_ = b.sink.ReportFailure(act.ActorID, expiredLine)
	default:
		b.reportGenerationFailure(act.ActorID, err)
	}
}

func (b *Bot) handleShare(act *models.UserAction) {
	err := b.reg.Share(*act)
	switch {
	case err == nil:
		telemetry.Shares.Inc()
	case errors.Is(err, session.ErrUnknownMessage):
		logger.Debug("share_unknown_message", "message_id", act.MessageID)
	case errors.Is(err, session.ErrSessionExpired):
		telemetry.GenerationFailures.WithLabelValues("session_expired").Inc()
		_ = b.sink.ReportFailure(act.ActorID, expiredLine)
	default:
		b.reportGenerationFailure(act.ActorID, err)
	}
}

// reportGenerationFailure logs the cause and shows the actor one of the
// fixed placeholder lines instead of internal detail.
func (b *Bot) reportGenerationFailure(actorID string, cause error) {
	switch {
	case errors.Is(cause, generate.ErrNoCorpus), errors.Is(cause, markov.ErrEmptyCorpus):
		telemetry.GenerationFailures.WithLabelValues("no_corpus").Inc()
	default:
		telemetry.GenerationFailures.WithLabelValues("internal").Inc()
	}
	logger.Warn("generation_failed", "actor", actorID, "error", cause)
	b.mu.Lock()
	line := failureLines[b.rng.Intn(len(failureLines))]
	b.mu.Unlock()
	if err := b.sink.ReportFailure(actorID, line); err != nil {
		logger.Error("report_failure_failed", "actor", actorID, "error", err)
	}
}
