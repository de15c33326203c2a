package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"career-advisor/internal/chat"
	"career-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptAnswerer struct {
	fail map[string]bool
}

func (s *scriptAnswerer) Answer(_ context.Context, q string, history []models.ChatTurn) (string, error) {
	if s.fail[q] {
		return "", fmt.Errorf("%w: rate limited", models.ErrUpstreamUnavailable)
	}
	return fmt.Sprintf("reply %d to %s", len(history)+1, q), nil
}

type savedTranscripts struct {
	saved []chat.Transcript
	err   error
}

func (s *savedTranscripts) SaveTranscript(_ context.Context, t chat.Transcript) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, t)
	return nil
}

func newLoop(t *testing.T, a chat.Answerer, saver *savedTranscripts) *chatLoop {
	t.Helper()
	sess, err := chat.NewSession(a)
	require.NoError(t, err)
	l := &chatLoop{session: sess, greeting: "How may I help you?"}
	if saver != nil {
		l.transcripts = saver
	}
	return l
}

func TestChatLoop_FinishSavesTranscript(t *testing.T) {
	saver := &savedTranscripts{}
	l := newLoop(t, &scriptAnswerer{}, saver)

	in := strings.NewReader("first question\n\nsecond\n/finish\nthanks!\n")
	var out bytes.Buffer
	require.NoError(t, l.run(context.Background(), in, &out))

	assert.Contains(t, out.String(), "Assistant: How may I help you?")
	assert.Contains(t, out.String(), "Assistant: reply 1 to first question")
	assert.Contains(t, out.String(), "reply 2 to second")
	require.Len(t, saver.saved, 1)
	assert.Equal(t, "thanks!", saver.saved[0].Feedback)
	assert.Len(t, saver.saved[0].Turns, 2)
}

func TestChatLoop_UpstreamFailureKeepsGoing(t *testing.T) {
	saver := &savedTranscripts{}
	l := newLoop(t, &scriptAnswerer{fail: map[string]bool{"flaky": true}}, saver)

	in := strings.NewReader("ok\nflaky\nafter\n/finish\n")
	var out bytes.Buffer
	require.NoError(t, l.run(context.Background(), in, &out))

	assert.Contains(t, out.String(), "The language model is unavailable, please try again.")
	assert.Contains(t, out.String(), "reply 2 to after")
	require.Len(t, saver.saved, 1)
	assert.Len(t, saver.saved[0].Turns, 2)
	assert.Empty(t, saver.saved[0].Feedback)
}

func TestChatLoop_QuitAndEOFDoNotSave(t *testing.T) {
	for _, input := range []string{"hello\n/quit\n", "hello\n"} {
		saver := &savedTranscripts{}
		l := newLoop(t, &scriptAnswerer{}, saver)
		var out bytes.Buffer
		require.NoError(t, l.run(context.Background(), strings.NewReader(input), &out))
		assert.Empty(t, saver.saved)
		assert.Equal(t, 1, l.session.Len())
	}
}

func TestChatLoop_WithoutStore(t *testing.T) {
	l := newLoop(t, &scriptAnswerer{}, nil)
	var out bytes.Buffer
	require.NoError(t, l.run(context.Background(), strings.NewReader("hi\n/finish\n\n"), &out))
	assert.Contains(t, out.String(), "Chat finished after 1 turns.")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Failed to build vector database.",
		userMessage(fmt.Errorf("%w: %w", models.ErrIndexBuild, models.ErrNoChunks)))
	assert.Contains(t, userMessage(fmt.Errorf("resume: %w", models.ErrMissingInput)), "resume")
	assert.Equal(t, "boom", userMessage(fmt.Errorf("boom")))
}

func TestChatLoop_FailedSavePrintsTranscript(t *testing.T) {
	saver := &savedTranscripts{err: errors.New("db down")}
	l := newLoop(t, &scriptAnswerer{}, saver)

	var out bytes.Buffer
	err := l.run(context.Background(), strings.NewReader("first question\n/finish\nkeep this\n"), &out)
	assert.EqualError(t, err, "db down")

	printed := out.String()
	require.Contains(t, printed, "Could not save the chat")
	var tr chat.Transcript
	require.NoError(t, json.Unmarshal([]byte(printed[strings.Index(printed, "{"):]), &tr))
	assert.Equal(t, l.session.ID, tr.SessionID)
	assert.Equal(t, "keep this", tr.Feedback)
	require.Len(t, tr.Turns, 1)
	assert.Equal(t, "first question", tr.Turns[0].UserInput)
}
