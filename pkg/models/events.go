package models

// Mode selects which corpus a generation samples.
type Mode string

const (
	// ModeAuthor samples a single author's records.
	ModeAuthor Mode = "author"
	// ModeGlobal samples the whole community corpus.
	ModeGlobal Mode = "global"
)

// ActionKind identifies a user interaction delivered by the gateway.
type ActionKind string

const (
	ActionGenerate   ActionKind = "generate"
	ActionRegenerate ActionKind = "regenerate"
	ActionShare      ActionKind = "share"
)

// MessageCreated is delivered when a platform message is posted.
type MessageCreated struct {
	EventID  string `json:"event_id"`
	AuthorID string `json:"author_id"`
	Content  string `json:"content"`
	// Bot marks messages authored by automated accounts; those are never
	// logged into the corpus.
	Bot bool `json:"bot,omitempty"`
}

// MessageDeleted is delivered when a platform message is removed.
type MessageDeleted struct {
	EventID string `json:"event_id"`
}

// UserAction is a command invocation or a button press.
type UserAction struct {
	Kind    ActionKind `json:"kind"`
	ActorID string     `json:"actor_id"`
	// ChannelID is the channel context the action originated in.
	ChannelID string `json:"channel_id"`
	// MessageID references the emitted message for regenerate/share.
	MessageID string `json:"message_id,omitempty"`
	// TargetAuthorID selects the author for ModeAuthor generation; empty
	// falls back to the acting user.
	TargetAuthorID string `json:"target_author_id,omitempty"`
	Mode           Mode   `json:"mode,omitempty"`
}
