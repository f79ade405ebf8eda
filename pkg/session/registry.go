// Package session tracks regeneration sessions: per-message bindings of
// a generation mode and target that accept repeated regenerate and share
// actions until they expire.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"mimicbot/pkg/generate"
	"mimicbot/pkg/logger"
	"mimicbot/pkg/models"
)

// ErrSessionExpired is returned for actions arriving after a session's
// inactivity window elapsed. Reported to the actor, never retried.
var ErrSessionExpired = errors.New("session expired")

// ErrUnknownMessage marks an action referencing a message this registry
// never controlled (a stale or duplicated button reference). Treated as
// a non-fatal no-op by callers.
var ErrUnknownMessage = errors.New("no session for message")

// ErrSuperseded rejects a bind for a message that already has a live
// session. Per-message scoping should make this unreachable.
var ErrSuperseded = errors.New("session already bound for message")

// Generator re-runs a generation under a bound mode and target.
type Generator interface {
	Run(mode models.Mode, targetAuthorID string) (generate.Output, error)
}

// Sink is the narrow emission surface sessions need. Implementations
// suppress mentions on everything they publish.
type Sink interface {
	EmitMessage(channelID, text string, buttons []models.ActionKind) (string, error)
	UpdateMessage(messageID, text string, clearButtons bool) error
}

// Session binds one emitted message to its generation context. The mode
// and target are immutable for the session's lifetime: regeneration
// always samples the corpus the original request did.
type Session struct {
	MessageID      string
	ChannelID      string
	Mode           models.Mode
	TargetAuthorID string

	// mu serializes actions on this session so the displayed-text swap
	// is atomic for any observer. Different sessions are independent.
	mu       sync.Mutex
	deadline time.Time
	lastText string
}

// Registry is the process-wide session table keyed by emitted message
// id, with a sliding inactivity TTL and a sweep-driven expiry.
type Registry struct {
	gen  Generator
	sink Sink
	ttl  time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
	// expired holds tombstones for swept sessions so a late action can
	// still be answered with ErrSessionExpired instead of being
	// mistaken for a stale button.
	expired map[string]time.Time
}

// NewRegistry returns an empty registry. ttl is the sliding inactivity
// window; non-positive falls back to 15 minutes.
func NewRegistry(gen Generator, sink Sink, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Registry{
		gen:      gen,
		sink:     sink,
		ttl:      ttl,
		sessions: make(map[string]*Session),
		expired:  make(map[string]time.Time),
	}
}

// Bind registers a new session for an emitted message. The initial
// displayed text is recorded so a share before any regenerate publishes
// the right content.
func (r *Registry) Bind(messageID, channelID string, mode models.Mode, targetAuthorID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[messageID]; ok {
		return fmt.Errorf("bind %s: %w", messageID, ErrSuperseded)
	}
	r.sessions[messageID] = &Session{
		MessageID:      messageID,
		ChannelID:      channelID,
		Mode:           mode,
		TargetAuthorID: targetAuthorID,
		deadline:       time.Now().Add(r.ttl),
		lastText:       text,
	}
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// lookup resolves a message id to its session, distinguishing swept
// sessions (expired) from messages never controlled here.
func (r *Registry) lookup(messageID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[messageID]; ok {
		return s, nil
	}
	if _, ok := r.expired[messageID]; ok {
		return nil, ErrSessionExpired
	}
	return nil, ErrUnknownMessage
}

// Regenerate re-runs generation under the session's bound mode and
// target and replaces the message's displayed text in place. The
// session stays active and its inactivity window slides.
func (r *Registry) Regenerate(act models.UserAction) error {
	s, err := r.lookup(act.MessageID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if act.ChannelID != s.ChannelID {
		// An action from another channel context must never mutate
		// this session's message.
		logger.Warn("session_channel_mismatch", "message_id", s.MessageID, "channel", act.ChannelID)
		return ErrUnknownMessage
	}
	if time.Now().After(s.deadline) {
		return ErrSessionExpired
	}
	out, err := r.gen.Run(s.Mode, s.TargetAuthorID)
	if err != nil {
		return err
	}
	text := renderOutput(out)
	if err := r.sink.UpdateMessage(s.MessageID, text, false); err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	s.lastText = text
	s.deadline = time.Now().Add(r.ttl)
	return nil
}

// Share publishes a copy of the message's current displayed text
// attributed to the acting user, then acknowledges on the original by
// clearing its buttons. The session keeps accepting regenerates.
func (r *Registry) Share(act models.UserAction) error {
	s, err := r.lookup(act.MessageID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if act.ChannelID != s.ChannelID {
		logger.Warn("session_channel_mismatch", "message_id", s.MessageID, "channel", act.ChannelID)
		return ErrUnknownMessage
	}
	if time.Now().After(s.deadline) {
		return ErrSessionExpired
	}
	shared := fmt.Sprintf("%s -- shared by @%s", s.lastText, act.ActorID)
	if _, err := r.sink.EmitMessage(s.ChannelID, shared, nil); err != nil {
		return fmt.Errorf("emit shared copy: %w", err)
	}
	if err := r.sink.UpdateMessage(s.MessageID, s.lastText, true); err != nil {
		return fmt.Errorf("ack original: %w", err)
	}
	s.deadline = time.Now().Add(r.ttl)
	logger.AuditEvent("session_shared", "message_id", s.MessageID, "actor", act.ActorID)
	return nil
}

// Sweep removes sessions whose window elapsed before now, leaving
// tombstones so racing actions observe ErrSessionExpired. Tombstones
// older than ten windows are pruned. Returns the number removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for id, s := range r.sessions {
		s.mu.Lock()
		dead := now.After(s.deadline)
		s.mu.Unlock()
		if dead {
			delete(r.sessions, id)
			r.expired[id] = now
			n++
		}
	}
	horizon := now.Add(-10 * r.ttl)
	for id, t := range r.expired {
		if t.Before(horizon) {
			delete(r.expired, id)
		}
	}
	return n
}

// renderOutput attaches the attribution suffix for single-author mode.
func renderOutput(out generate.Output) string {
	if out.Mode == models.ModeAuthor && out.TargetAuthorID != "" {
		return fmt.Sprintf("%s -- @%s", out.Text, out.TargetAuthorID)
	}
	return out.Text
}

// Render exposes the attribution formatting for the initial emission so
// the first message and every regeneration agree.
func Render(out generate.Output) string {
	return renderOutput(out)
}
