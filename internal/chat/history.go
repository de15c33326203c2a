package chat

import (
	"time"

	"career-advisor/internal/models"
)

// History is the ordered list of completed turns of one conversation.
type History []models.ChatTurn

// Append returns h followed by the new turn. The result never shares its
// backing array with h, so earlier snapshots stay valid.
func Append(h History, userInput, botResponse string) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, models.ChatTurn{
		UserInput:   userInput,
		BotResponse: botResponse,
		At:          time.Now().UTC(),
	})
}

// Window returns the last n turns; n <= 0 returns all of them.
func (h History) Window(n int) History {
	if n <= 0 || len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}

// Turns returns a copy safe to hand to callers.
func (h History) Turns() []models.ChatTurn {
	out := make([]models.ChatTurn, len(h))
	copy(out, h)
	return out
}
