package bot

// Placeholder lines shown when a generation action fails. Internal
// detail never reaches the requester; the cause is only logged.
var failureLines = []string{
	"[The bot glares at you in quiet disapproval]",
	"[The bot stares at you and says nothing]",
	"[The bot looks at your hands, but decides not to comment]",
	"[The bot squints, as if wondering who you are]",
}

// expiredLine answers actions on a session that already timed out.
const expiredLine = "That one went cold. Ask for a fresh one."

// throttledLine answers actors running into the generation rate limit.
const throttledLine = "[The bot holds up a hand. Give it a moment.]"
