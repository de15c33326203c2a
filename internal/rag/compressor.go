package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"career-advisor/internal/llmservice"
	"career-advisor/internal/models"
)

// LLMExtractor keeps only the parts of each chunk the model judges relevant to
// the question. Chunks answered with NO_OUTPUT are dropped.
type LLMExtractor struct {
	completer llmservice.Completer
	prompt    prompts.PromptTemplate
}

func NewLLMExtractor(completer llmservice.Completer) *LLMExtractor {
	return &LLMExtractor{
		completer: completer,
		prompt:    prompts.NewPromptTemplate(models.ExtractPromptTemplate, []string{"question", "context"}),
	}
}

// Compress issues one completion per chunk, in order.
func (e *LLMExtractor) Compress(ctx context.Context, question string, chunks []models.Chunk) ([]models.Chunk, error) {
	var kept []models.Chunk
	for _, c := range chunks {
		prompt, err := e.prompt.Format(map[string]any{
			"question": question,
			"context":  c.Content,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render extraction prompt: %w", err)
		}

		out, err := e.completer.Complete(ctx, prompt)
		if err != nil {
			return nil, err
		}
		extracted := strings.TrimSpace(out)
		if extracted == "" || extracted == models.NoOutput {
			continue
		}
		c.Content = extracted
		kept = append(kept, c)
	}
	return kept, nil
}
