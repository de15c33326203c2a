package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"career-advisor/internal/chat"
	"career-advisor/internal/models"
	"career-advisor/internal/server"
)

const (
	finishCommand = "/finish"
	quitCommand   = "/quit"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive mock interview session",
	Long: `Starts an interactive session with the advisor. Type /finish to end the
session, leave feedback and save the transcript, or /quit to leave without saving.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	a, err := newAdvisor(ctx, cfg)
	if err != nil {
		cmd.PrintErrln(userMessage(err))
		return err
	}
	defer a.Close()

	transcripts, closeStore := openTranscripts(ctx, cfg)
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}

	sess, err := chat.NewSession(a.rag)
	if err != nil {
		return err
	}
	loop := chatLoop{
		session:     sess,
		transcripts: transcripts,
		greeting:    cfg.Chat.Greeting,
		revealDelay: time.Duration(*cfg.Chat.RevealDelayMS) * time.Millisecond,
	}
	return loop.run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}

type chatLoop struct {
	session     *chat.Session
	transcripts server.TranscriptSaver
	greeting    string
	revealDelay time.Duration
}

// run reads one question per line until /finish, /quit or end of input.
// Upstream failures are reported and the loop continues with history intact.
func (l *chatLoop) run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintf(out, "Assistant: %s\n", l.greeting)

	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())

		switch input {
		case "":
			continue
		case quitCommand:
			return nil
		case finishCommand:
			return l.finish(ctx, scanner, out)
		}

		answer, err := l.session.Ask(ctx, input)
		switch {
		case errors.Is(err, models.ErrUpstreamUnavailable):
			log.Error().Err(err).Msg("Error answering")
			fmt.Fprintln(out, userMessage(err))
			continue
		case err != nil:
			return err
		}

		fmt.Fprint(out, "Assistant: ")
		if err := chat.Reveal(ctx, out, answer, l.revealDelay); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
}

func (l *chatLoop) finish(ctx context.Context, scanner *bufio.Scanner, out io.Writer) error {
	fmt.Fprint(out, "Feedback (optional): ")
	var feedback string
	if scanner.Scan() {
		feedback = scanner.Text()
	}

	transcript := l.session.Finish(feedback)
	if l.transcripts == nil {
		fmt.Fprintf(out, "Chat finished after %d turns.\n", len(transcript.Turns))
		return nil
	}
	if err := l.transcripts.SaveTranscript(ctx, transcript); err != nil {
		log.Error().Err(err).Str("session", transcript.SessionID).Msg("Error saving transcript")
		data, jsonErr := json.MarshalIndent(transcript, "", "  ")
		if jsonErr == nil {
			fmt.Fprintf(out, "Could not save the chat, here is the transcript:\n%s\n", data)
		}
		return err
	}
	fmt.Fprintf(out, "Chat finished after %d turns and saved as %s.\n", len(transcript.Turns), transcript.SessionID)
	return nil
}
