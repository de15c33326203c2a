package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/prompts"

	"career-advisor/internal/chat"
	"career-advisor/internal/llmservice"
	"career-advisor/internal/models"
)

// RAG answers career questions from retrieved context, the candidate profile and
// the conversation so far.
type RAG struct {
	retriever      Retriever
	completer      llmservice.Completer
	condense       bool
	maxPromptTurns int
	answerPrompt   prompts.PromptTemplate
	condensePrompt prompts.PromptTemplate
}

type Option func(*RAG)

// WithCondenseQuestion toggles rewriting follow-ups into standalone questions.
func WithCondenseQuestion(enabled bool) Option {
	return func(r *RAG) { r.condense = enabled }
}

// WithMaxPromptTurns bounds how many recent turns are rendered into prompts;
// n <= 0 sends all. The caller's history is never trimmed.
func WithMaxPromptTurns(n int) Option {
	return func(r *RAG) { r.maxPromptTurns = n }
}

func NewRAG(retriever Retriever, completer llmservice.Completer, profile models.Profile, opts ...Option) *RAG {
	answer := prompts.NewPromptTemplate(models.AdvisorPromptTemplate, []string{"context", "question", "chat_history"})
	answer.PartialVariables = map[string]any{
		"resume":             profile.Resume,
		"personal_writeup":   profile.PersonalWriteup,
		"job_qualifications": profile.JobQualifications,
	}

	r := &RAG{
		retriever:      retriever,
		completer:      completer,
		condense:       true,
		answerPrompt:   answer,
		condensePrompt: prompts.NewPromptTemplate(models.CondenseQuestionTemplate, []string{"chat_history", "question"}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Answer returns only the answer text of Query.
func (r *RAG) Answer(ctx context.Context, question string, history []models.ChatTurn) (string, error) {
	resp, err := r.Query(ctx, question, history)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Query runs condense → retrieve → stuff → complete. Upstream failures are
// returned to the caller unchanged; nothing is retried.
func (r *RAG) Query(ctx context.Context, question string, history []models.ChatTurn) (*models.PromptResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", models.ErrMissingInput)
	}

	chatHistory, err := FormatHistory(chat.History(history).Window(r.maxPromptTurns))
	if err != nil {
		return nil, err
	}

	standalone := question
	if r.condense && len(history) > 0 {
		standalone, err = r.condenseQuestion(ctx, question, chatHistory)
		if err != nil {
			return nil, err
		}
	}

	chunks, err := r.retriever.Retrieve(ctx, standalone)
	if err != nil {
		return nil, err
	}

	prompt, err := r.answerPrompt.Format(map[string]any{
		"context":      stuffChunks(chunks),
		"question":     standalone,
		"chat_history": chatHistory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render answer prompt: %w", err)
	}

	answer, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("chunks", len(chunks)).Int("answer_len", len(answer)).Msg("Generated answer")

	return &models.PromptResponse{
		Query:   standalone,
		Source:  strings.Join(sources(chunks), ", "),
		Content: answer,
	}, nil
}

func (r *RAG) condenseQuestion(ctx context.Context, question, chatHistory string) (string, error) {
	prompt, err := r.condensePrompt.Format(map[string]any{
		"chat_history": chatHistory,
		"question":     question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render condense prompt: %w", err)
	}
	out, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if s := strings.TrimSpace(out); s != "" {
		return s, nil
	}
	return question, nil
}

// FormatHistory renders turns as alternating Human/Assistant lines.
func FormatHistory(turns []models.ChatTurn) (string, error) {
	messages := make([]schema.ChatMessage, 0, 2*len(turns))
	for _, t := range turns {
		messages = append(messages,
			schema.HumanChatMessage{Content: t.UserInput},
			schema.AIChatMessage{Content: t.BotResponse},
		)
	}
	s, err := schema.GetBufferString(messages, models.HumanPrefix, models.AIPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to format chat history: %w", err)
	}
	return s, nil
}

func stuffChunks(chunks []models.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, models.ContextSeparator)
}

func sources(chunks []models.Chunk) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range chunks {
		if c.Source == "" || seen[c.Source] {
			continue
		}
		seen[c.Source] = true
		out = append(out, c.Source)
	}
	return out
}
