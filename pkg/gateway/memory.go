package gateway

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"mimicbot/pkg/models"
)

// Emission is one message published through the memory gateway.
type Emission struct {
	MessageID string
	ChannelID string
	Text      string
	Buttons   []models.ActionKind
}

// Failure is one failure line reported to an actor.
type Failure struct {
	ActorID string
	Text    string
}

// MemoryGateway is a channel-backed in-process Source and Sink used by
// tests and the simulator.
type MemoryGateway struct {
	events chan Event

	mu       sync.Mutex
	messages map[string]*Emission
	order    []string
	failures []Failure
}

// NewMemoryGateway returns a gateway with the given event buffer.
func NewMemoryGateway(buffer int) *MemoryGateway {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryGateway{
		events:   make(chan Event, buffer),
		messages: make(map[string]*Emission),
	}
}

// Events implements Source.
func (g *MemoryGateway) Events() <-chan Event {
	return g.events
}

// Push feeds one event into the source side.
func (g *MemoryGateway) Push(ev Event) {
	g.events <- ev
}

// CloseSource closes the event channel, ending any dispatch loop.
func (g *MemoryGateway) CloseSource() {
	close(g.events)
}

// EmitMessage implements Sink.
func (g *MemoryGateway) EmitMessage(channelID, text string, buttons []models.ActionKind) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := uuid.NewString()
	g.messages[id] = &Emission{
		MessageID: id,
		ChannelID: channelID,
		Text:      text,
		Buttons:   append([]models.ActionKind(nil), buttons...),
	}
	g.order = append(g.order, id)
	return id, nil
}

// UpdateMessage implements Sink.
func (g *MemoryGateway) UpdateMessage(messageID, text string, clearButtons bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.messages[messageID]
	if !ok {
		return fmt.Errorf("unknown message id %s", messageID)
	}
	m.Text = text
	if clearButtons {
		m.Buttons = nil
	}
	return nil
}

// ReportFailure implements Sink.
func (g *MemoryGateway) ReportFailure(actorID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = append(g.failures, Failure{ActorID: actorID, Text: text})
	return nil
}

// Message returns a copy of an emitted message by id.
func (g *MemoryGateway) Message(messageID string) (Emission, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.messages[messageID]
	if !ok {
		return Emission{}, false
	}
	return *m, true
}

// Messages returns copies of all emissions in publish order.
func (g *MemoryGateway) Messages() []Emission {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Emission, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.messages[id])
	}
	return out
}

// Failures returns the failure lines reported so far.
func (g *MemoryGateway) Failures() []Failure {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Failure(nil), g.failures...)
}
