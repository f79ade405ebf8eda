package bot

import (
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mimicbot/pkg/config"
	"mimicbot/pkg/gateway"
	"mimicbot/pkg/generate"
	"mimicbot/pkg/models"
	"mimicbot/pkg/session"
	"mimicbot/pkg/store"
)

type corpusReader struct{}

func (corpusReader) ListByAuthor(authorID string) ([]string, error) {
	return store.ListByAuthor(authorID)
}

func (corpusReader) ListAll() ([]string, error) { return store.ListAll() }

func newTestBot(t *testing.T, cfg config.BotConfig) (*Bot, *gateway.MemoryGateway) {
	t.Helper()
	if err := store.Open(filepath.Join(t.TempDir(), "db")); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	config.SetRuntime(&config.RuntimeConfig{ExcludedAuthors: map[string]struct{}{}})

	rng := rand.New(rand.NewSource(42))
	gen := generate.New(corpusReader{}, config.GeneratorConfig{MinLength: 1, MaxLength: 300}, rng)
	gw := gateway.NewMemoryGateway(8)
	reg := session.NewRegistry(gen, gw, time.Minute)
	return New(gen, reg, gw, cfg, rand.New(rand.NewSource(7))), gw
}

func created(eventID, authorID, content string) gateway.Event {
	return gateway.Event{Created: &models.MessageCreated{EventID: eventID, AuthorID: authorID, Content: content}}
}

func genAction(target string, mode models.Mode) gateway.Event {
	return gateway.Event{Action: &models.UserAction{
		Kind: models.ActionGenerate, ActorID: "actor", ChannelID: "ch",
		TargetAuthorID: target, Mode: mode,
	}}
}

func TestCreatedInsertsIntoCorpus(t *testing.T) {
	b, _ := newTestBot(t, config.BotConfig{})

	b.Handle(created("e1", "u1", "hello world"))
	got, err := store.ListByAuthor("u1")
	require.NoError(t, err)
	require.Equal(t, []string{"hello world"}, got)
}

func TestCreatedSkipsBotsAndExcluded(t *testing.T) {
	b, _ := newTestBot(t, config.BotConfig{})
	config.SetRuntime(&config.RuntimeConfig{ExcludedAuthors: map[string]struct{}{"spammer": {}}})

	b.Handle(gateway.Event{Created: &models.MessageCreated{EventID: "e1", AuthorID: "b1", Content: "beep", Bot: true}})
	b.Handle(created("e2", "spammer", "buy now"))

	all, err := store.ListAll()
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestCreatedDuplicateDeliveryIgnored(t *testing.T) {
	b, _ := newTestBot(t, config.BotConfig{})

	b.Handle(created("e1", "u1", "hello world"))
	b.Handle(created("e1", "u1", "hello world"))

	got, err := store.ListByAuthor("u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestDeletedRemovesRecord(t *testing.T) {
	b, _ := newTestBot(t, config.BotConfig{})

	b.Handle(created("e1", "u1", "hello world"))
	b.Handle(gateway.Event{Deleted: &models.MessageDeleted{EventID: "e1"}})

	got, err := store.ListByAuthor("u1")
	require.NoError(t, err)
	require.Empty(t, got)

	// deleting again stays silent
	b.Handle(gateway.Event{Deleted: &models.MessageDeleted{EventID: "e1"}})
}

func TestGenerateEmitsSessionMessage(t *testing.T) {
	b, gw := newTestBot(t, config.BotConfig{})

	b.Handle(created("e1", "u1", "hello world"))
	b.Handle(created("e2", "u1", "world of bots"))
	b.Handle(genAction("u1", models.ModeAuthor))

	msgs := gw.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "ch", msgs[0].ChannelID)
	require.Equal(t, []models.ActionKind{models.ActionRegenerate, models.ActionShare}, msgs[0].Buttons)
	require.True(t, strings.HasSuffix(msgs[0].Text, " -- @u1"), "missing attribution: %q", msgs[0].Text)
}

func TestGenerateDefaultsToActor(t *testing.T) {
	b, gw := newTestBot(t, config.BotConfig{})

	b.Handle(created("e1", "actor", "my own words"))
	// no mode, no target: imitate the acting user
	b.Handle(gateway.Event{Action: &models.UserAction{Kind: models.ActionGenerate, ActorID: "actor", ChannelID: "ch"}})

	msgs := gw.Messages()
	require.Len(t, msgs, 1)
	require.True(t, strings.HasSuffix(msgs[0].Text, " -- @actor"))
}

func TestGenerateNoCorpusReportsPlaceholder(t *testing.T) {
	b, gw := newTestBot(t, config.BotConfig{})

	b.Handle(genAction("ghost", models.ModeAuthor))

	require.Empty(t, gw.Messages())
	fails := gw.Failures()
	require.Len(t, fails, 1)
	require.Equal(t, "actor", fails[0].ActorID)
	require.Contains(t, failureLines, fails[0].Text)
}

func TestGenerateThrottled(t *testing.T) {
	b, gw := newTestBot(t, config.BotConfig{RateLimit: config.RateLimitConfig{RPS: 0.001, Burst: 1}})

	b.Handle(created("e1", "u1", "hello world"))
	b.Handle(genAction("u1", models.ModeAuthor))
	b.Handle(genAction("u1", models.ModeAuthor))

	require.Len(t, gw.Messages(), 1)
	fails := gw.Failures()
	require.Len(t, fails, 1)
	require.Equal(t, throttledLine, fails[0].Text)
}

func TestRegenerateUpdatesEmittedMessage(t *testing.T) {
	b, gw := newTestBot(t, config.BotConfig{})

	b.Handle(created("e1", "u1", "hello world"))
	b.Handle(created("e2", "u1", "world of bots"))
	b.Handle(genAction("u1", models.ModeAuthor))

	msgs := gw.Messages()
	require.Len(t, msgs, 1)
	id := msgs[0].MessageID

	b.Handle(gateway.Event{Action: &models.UserAction{
		Kind: models.ActionRegenerate, ActorID: "actor", ChannelID: "ch", MessageID: id,
	}})

	// still one message; its text was swapped in place
	msgs = gw.Messages()
	require.Len(t, msgs, 1)
	require.True(t, strings.HasSuffix(msgs[0].Text, " -- @u1"))

	// an unknown message id is a silent no-op
	b.Handle(gateway.Event{Action: &models.UserAction{
		Kind: models.ActionRegenerate, ActorID: "actor", ChannelID: "ch", MessageID: "bogus",
	}})
	require.Empty(t, gw.Failures())
}

func TestShareThroughBot(t *testing.T) {
	b, gw := newTestBot(t, config.BotConfig{})

	b.Handle(created("e1", "u1", "hello world"))
	b.Handle(genAction("u1", models.ModeAuthor))

	msgs := gw.Messages()
	require.Len(t, msgs, 1)
	id := msgs[0].MessageID
	shown := msgs[0].Text

	b.Handle(gateway.Event{Action: &models.UserAction{
		Kind: models.ActionShare, ActorID: "fan", ChannelID: "ch", MessageID: id,
	}})

	msgs = gw.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, shown+" -- shared by @fan", msgs[1].Text)
	require.Empty(t, msgs[1].Buttons)

	// original lost its buttons but kept its text
	orig, ok := gw.Message(id)
	require.True(t, ok)
	require.Equal(t, shown, orig.Text)
	require.Empty(t, orig.Buttons)
}
