package main

import (
	"github.com/spf13/cobra"

	"github.com/quicktalog/quicktalog/internal/api"
	"github.com/quicktalog/quicktalog/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "quicktalog",
	Short: "Digital catalogue builder with AI-powered generation",
	Long: `Quicktalog turns a free-text business description or OCR-extracted
text into a published digital catalogue.

The generation pipeline includes:
  - Category detection over the source text
  - Concurrent per-category structuring against a strict schema
  - Best-effort category ordering
  - Optional stock-photo enrichment for items`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.quicktalog/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
