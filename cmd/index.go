package main

import (
	"github.com/spf13/cobra"

	"career-advisor/internal/helper"
)

var indexDryRun bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index, or load it when it is still fresh",
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexDryRun, "dry-run", false, "print the chunks without embedding them")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if indexDryRun {
		chunks, err := loadChunks(ctx, cfg)
		if err != nil {
			return err
		}
		helper.PrettyPrint(chunks)
		cmd.Printf("%d chunks from %s\n", len(chunks), cfg.RAG.ContentDir)
		return nil
	}

	index, err := buildIndex(ctx, cfg)
	if err != nil {
		cmd.PrintErrln(userMessage(err))
		return err
	}
	state := "built"
	if index.Loaded {
		state = "loaded"
	}
	cmd.Printf("Vector index %q %s with %d chunks\n", cfg.Index.Name, state, index.Count())
	return nil
}
