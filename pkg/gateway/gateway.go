// Package gateway defines the two surfaces the bot core consumes: an
// event source delivering platform events and an emission sink accepting
// outgoing text. Platform adapters (the actual chat integration) live
// outside this repo and implement these interfaces.
package gateway

import "mimicbot/pkg/models"

// Event is the envelope delivered by a Source. Exactly one field is set.
type Event struct {
	Created *models.MessageCreated
	Deleted *models.MessageDeleted
	Action  *models.UserAction
}

// Source delivers platform events. The channel closes when the platform
// connection is gone.
type Source interface {
	Events() <-chan Event
}

// Sink accepts outgoing text. Implementations suppress mentions on every
// emission so generated content can never ping the people it imitates.
type Sink interface {
	// EmitMessage publishes text to a channel, optionally with
	// interactive buttons, and returns the platform message id.
	EmitMessage(channelID, text string, buttons []models.ActionKind) (string, error)
	// UpdateMessage atomically replaces an emitted message's text;
	// clearButtons removes its interactive controls.
	UpdateMessage(messageID, text string, clearButtons bool) error
	// ReportFailure surfaces a user-visible failure line to one actor.
	ReportFailure(actorID, text string) error
}
