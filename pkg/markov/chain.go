// Package markov builds word-adjacency chains from text samples and
// produces bounded random walks over them.
package markov

import (
	"errors"
	"math/rand"
	"strings"
)

// ErrEmptyCorpus is returned when no sample contributed a single word,
// so no walk can be seeded.
var ErrEmptyCorpus = errors.New("empty corpus")

const (
	// DefaultMinLength is the soft floor, in characters, a walk should
	// reach before it is accepted.
	DefaultMinLength = 10
	// DefaultMaxWords caps a single walk so cyclic chains terminate.
	DefaultMaxWords = 1000

	// maxAttempts bounds the re-walk loop chasing the soft floor.
	maxAttempts = 10
)

// Chain is an ephemeral word-transition model. Successor lists preserve
// duplicates so frequent transitions are proportionally more likely to
// be picked. Chains are built fresh per request and never shared.
type Chain struct {
	successors map[string][]string
	starters   []string
	words      []string
}

// Build tokenizes each sample on whitespace and records, per sample, the
// opening word as a starter and every adjacent pair as a transition.
// Transitions never cross between two samples. Samples shorter than two
// words contribute no transitions but their lone word still counts as a
// known word.
func Build(samples []string) *Chain {
	c := &Chain{successors: make(map[string][]string)}
	seen := make(map[string]struct{})
	note := func(w string) {
		if _, ok := seen[w]; !ok {
			seen[w] = struct{}{}
			c.words = append(c.words, w)
		}
	}
	for _, sample := range samples {
		fields := strings.Fields(sample)
		if len(fields) == 0 {
			continue
		}
		c.starters = append(c.starters, fields[0])
		for i, w := range fields {
			note(w)
			if i+1 < len(fields) {
				c.successors[w] = append(c.successors[w], fields[i+1])
			}
		}
	}
	return c
}

// Empty reports whether the chain holds no words at all.
func (c *Chain) Empty() bool {
	return len(c.words) == 0
}

// Options tunes a walk.
type Options struct {
	// MinLength is a soft floor in characters: the walk is re-rolled
	// while it dead-ends below the floor, and the longest attempt is
	// returned if the floor is never reached.
	MinLength int
	// MaxWords bounds a single walk.
	MaxWords int
}

// Generate performs one random walk: a uniform pick over starters (any
// known word when no starters exist), then repeated uniform picks over
// the current word's recorded successors until a dead end or MaxWords.
// Each call is independently random; callers wanting determinism seed
// the rng. The returned string is whitespace-joined and not yet
// length-capped.
func (c *Chain) Generate(rng *rand.Rand, opts Options) (string, error) {
	if c.Empty() {
		return "", ErrEmptyCorpus
	}
	minLen := opts.MinLength
	if minLen <= 0 {
		minLen = DefaultMinLength
	}
	maxWords := opts.MaxWords
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	var best string
	for attempt := 0; attempt < maxAttempts; attempt++ {
		out := c.walk(rng, maxWords)
		if len(out) >= minLen {
			return out, nil
		}
		if len(out) > len(best) {
			best = out
		}
	}
	// The chain dead-ends below the floor everywhere it was tried;
	// return the longest fragment rather than nothing.
	return best, nil
}

func (c *Chain) walk(rng *rand.Rand, maxWords int) string {
	var w string
	if len(c.starters) > 0 {
		w = c.starters[rng.Intn(len(c.starters))]
	} else {
		w = c.words[rng.Intn(len(c.words))]
	}
	picked := []string{w}
	for len(picked) < maxWords {
		succ := c.successors[w]
		if len(succ) == 0 {
			break
		}
		w = succ[rng.Intn(len(succ))]
		picked = append(picked, w)
	}
	return strings.Join(picked, " ")
}
