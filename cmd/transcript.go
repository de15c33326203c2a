package main

import (
	"errors"

	"github.com/spf13/cobra"

	"career-advisor/internal/db"
	"career-advisor/internal/helper"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript [session-id]",
	Short: "Print a saved chat transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscript,
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
}

func runTranscript(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn is not configured")
	}

	store, err := db.Open(cmd.Context(), &cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	transcript, err := store.LoadTranscript(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	helper.PrettyPrint(transcript)
	return nil
}
