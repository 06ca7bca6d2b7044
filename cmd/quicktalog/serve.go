package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/quicktalog/quicktalog/internal/config"
	"github.com/quicktalog/quicktalog/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Quicktalog server",
	Long: `Start the Quicktalog HTTP server.

The server connects to Postgres, runs migrations, and serves the
catalogue-generation API. Configuration changes on disk are picked up
without a restart, except for the database URL.

The server provides:
  - /health          - Basic server health check
  - /ready           - Readiness check (includes database status)
  - /items/ai        - Generate a catalogue from free text
  - /items/ocr       - Generate a catalogue from OCR text
  - /catalogues      - List your catalogues
  - /catalogues/{slug} - Fetch a published catalogue

Examples:
  quicktalog serve                     # Start with ./config.yaml
  quicktalog serve --config my.yaml    # Start with a custom config`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		mgr.WatchConfig()

		srv, err := server.New(server.Config{
			ConfigManager: mgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
