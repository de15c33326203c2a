package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the advisor a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	query := strings.Join(args, " ")
	response, err := a.rag.Query(ctx, query, nil)
	if err != nil {
		cmd.PrintErrln(userMessage(err))
		return err
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", response.Query)

	log.Info().Msg("Source: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", response.Source)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", response.Content)
	return nil
}
