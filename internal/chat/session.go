package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"career-advisor/internal/helper"
	"career-advisor/internal/models"
)

// Answerer produces the reply to question given the turns so far.
type Answerer interface {
	Answer(ctx context.Context, question string, history []models.ChatTurn) (string, error)
}

// Transcript is a finished conversation.
type Transcript struct {
	SessionID  string            `json:"session_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Feedback   string            `json:"feedback,omitempty"`
	Turns      []models.ChatTurn `json:"turns"`
}

// Session holds one user's conversation. Calls on a session are serialised.
type Session struct {
	ID        string
	StartedAt time.Time

	mu       sync.Mutex
	answerer Answerer
	history  History
}

// NewSession starts an empty conversation.
func NewSession(answerer Answerer) (*Session, error) {
	id, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		StartedAt: time.Now().UTC(),
		answerer:  answerer,
	}, nil
}

// Ask answers input and records the turn. On error the history is unchanged.
func (s *Session) Ask(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("%w: user input is empty", models.ErrMissingInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	answer, err := s.answerer.Answer(ctx, input, s.history.Turns())
	if err != nil {
		return "", err
	}
	s.history = Append(s.history, input, answer)
	log.Debug().Str("session", s.ID).Int("turns", len(s.history)).Msg("Recorded chat turn")
	return answer, nil
}

// History returns a copy of the turns so far.
func (s *Session) History() History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return History(s.history.Turns())
}

// Len is the number of completed turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Finish closes the conversation with optional feedback.
func (s *Session) Finish(feedback string) Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Transcript{
		SessionID:  s.ID,
		StartedAt:  s.StartedAt,
		FinishedAt: time.Now().UTC(),
		Feedback:   strings.TrimSpace(feedback),
		Turns:      s.history.Turns(),
	}
}
