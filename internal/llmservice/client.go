package llmservice

import (
	"context"
	"fmt"
	"strings"

	"career-advisor/internal/config"
	"career-advisor/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Completer sends one fully rendered prompt and returns the completion text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMCompleter adapts a langchaingo model to Completer.
type LLMCompleter struct {
	llm     llms.Model
	model   string
	options []llms.CallOption
}

// NewLLMCompleter wraps llm; model only labels cache keys and logs.
func NewLLMCompleter(llm llms.Model, model string, options ...llms.CallOption) *LLMCompleter {
	return &LLMCompleter{llm: llm, model: model, options: options}
}

// Complete performs a single synchronous call. Errors are tagged as upstream failures.
func (c *LLMCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	log.Debug().Str("model", c.model).Int("prompt_len", len(prompt)).Msg("Generating content")
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, c.options...)
	if err != nil {
		return "", fmt.Errorf("%w: completion: %w", models.ErrUpstreamUnavailable, err)
	}
	return out, nil
}

// Model returns the model name the completer was built for.
func (c *LLMCompleter) Model() string { return c.model }

// NewModel builds the langchaingo chat model for the configured provider.
func NewModel(llmConfig *config.LLMConfig) (llms.Model, error) {
	log.Debug().Interface("llmConfig", map[string]string{
		"provider": llmConfig.Provider,
		"base_url": llmConfig.BaseURL,
		"model":    llmConfig.Model,
	}).Msg("Creating language model")

	switch llmConfig.Provider {
	case "openai":
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		}
		if llmConfig.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
		}
		return openai.New(opts...)
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(llmConfig.Model)}
		if llmConfig.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(llmConfig.BaseURL))
		}
		return ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", llmConfig.Provider)
	}
}

// NewCompleter builds the configured model and wraps it as a Completer.
func NewCompleter(llmConfig *config.LLMConfig) (*LLMCompleter, error) {
	llm, err := NewModel(llmConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm: %w", err)
	}
	return NewLLMCompleter(llm, llmConfig.Model, llms.WithTemperature(llmConfig.Temperature)), nil
}
