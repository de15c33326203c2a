package main

import (
	"github.com/spf13/cobra"
)

var exportPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the vector index to a single portable file",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "output file (default <index folder>/<index name>.chromem)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	index, err := buildIndex(cmd.Context(), cfg)
	if err != nil {
		cmd.PrintErrln(userMessage(err))
		return err
	}
	path, err := index.Export(exportPath)
	if err != nil {
		return err
	}
	cmd.Printf("Exported %d chunks to %s\n", index.Count(), path)
	return nil
}
