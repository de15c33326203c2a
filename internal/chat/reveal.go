package chat

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"
)

var tokenRe = regexp.MustCompile(`\S+|\n`)

// RevealTokens splits an answer into words and line breaks for progressive display.
func RevealTokens(answer string) []string {
	return tokenRe.FindAllString(answer, -1)
}

// Reveal writes answer to w one token at a time, pausing delay between tokens.
// Words are followed by a space; line breaks are written as is.
func Reveal(ctx context.Context, w io.Writer, answer string, delay time.Duration) error {
	for _, tok := range RevealTokens(answer) {
		if tok != "\n" {
			tok += " "
		}
		if _, err := io.WriteString(w, tok); err != nil {
			return fmt.Errorf("failed to write answer: %w", err)
		}
		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}
