// Package generate orchestrates corpus reads, chain construction and
// output normalization for the two selection modes.
package generate

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"mimicbot/pkg/config"
	"mimicbot/pkg/markov"
	"mimicbot/pkg/models"
)

// ErrNoCorpus is returned when the selected corpus holds no eligible
// text. Non-retryable until more messages are logged.
var ErrNoCorpus = errors.New("no corpus for target")

// Store is the corpus-access surface the service reads from. It never
// mutates the store.
type Store interface {
	ListByAuthor(authorID string) ([]string, error)
	ListAll() ([]string, error)
}

// Output is one generated, normalized text plus attribution metadata.
type Output struct {
	Text string
	Mode models.Mode
	// TargetAuthorID is set for ModeAuthor so callers can render
	// attribution; empty for ModeGlobal.
	TargetAuthorID string
}

// Service builds a fresh chain from the then-current corpus snapshot on
// every call, so repeated calls pick up records logged in between.
type Service struct {
	store  Store
	opts   markov.Options
	budget int

	// rand.Rand is not safe for concurrent use; actions run on
	// independent goroutines.
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Service using the given generator tunables. A nil rng is
// replaced with a time-seeded one; tests inject a seeded rng for
// deterministic walks.
func New(store Store, cfg config.GeneratorConfig, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		store:  store,
		opts:   markov.Options{MinLength: cfg.MinLength, MaxWords: cfg.MaxWords},
		budget: cfg.MaxLength,
		rng:    rng,
	}
}

// ForAuthor generates from a single author's records.
func (s *Service) ForAuthor(authorID string) (Output, error) {
	samples, err := s.store.ListByAuthor(authorID)
	if err != nil {
		return Output{}, fmt.Errorf("list by author: %w", err)
	}
	if len(samples) == 0 {
		return Output{}, fmt.Errorf("author %s: %w", authorID, ErrNoCorpus)
	}
	text, err := s.run(samples)
	if err != nil {
		return Output{}, err
	}
	return Output{Text: text, Mode: models.ModeAuthor, TargetAuthorID: authorID}, nil
}

// Global generates from the whole community corpus.
func (s *Service) Global() (Output, error) {
	samples, err := s.store.ListAll()
	if err != nil {
		return Output{}, fmt.Errorf("list all: %w", err)
	}
	if len(samples) == 0 {
		return Output{}, ErrNoCorpus
	}
	text, err := s.run(samples)
	if err != nil {
		return Output{}, err
	}
	return Output{Text: text, Mode: models.ModeGlobal}, nil
}

// Run executes one generation under an already-bound mode and target,
// used by regeneration so a session always samples the same corpus.
func (s *Service) Run(mode models.Mode, targetAuthorID string) (Output, error) {
	if mode == models.ModeGlobal {
		return s.Global()
	}
	return s.ForAuthor(targetAuthorID)
}

func (s *Service) run(samples []string) (string, error) {
	chain := markov.Build(samples)
	s.mu.Lock()
	text, err := chain.Generate(s.rng, s.opts)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	return markov.Normalize(text, s.budget), nil
}
