package main

import (
	"github.com/spf13/cobra"

	"github.com/quicktalog/quicktalog/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Quicktalog server via HTTP.

These commands require a running server (quicktalog serve). Requests that
need authentication read a bearer token from QUICKTALOG_TOKEN.
Use --server to specify a custom server URL.

Examples:
  quicktalog api health                         # Check server health
  quicktalog api generate --prompt ... --name .. # Generate a catalogue
  quicktalog api catalogues list                # List your catalogues`,
}

var cataloguesCmd = &cobra.Command{
	Use:   "catalogues",
	Short: "Catalogue management commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))

	// Generation at top level of api
	apiCmd.AddCommand((&endpoints.GenerateAIEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.GenerateOCREndpoint{}).Command(getServerURL))

	// Catalogues as subcommand group
	cataloguesCmd.AddCommand((&endpoints.GetCatalogueEndpoint{}).Command(getServerURL))
	cataloguesCmd.AddCommand((&endpoints.ListCataloguesEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(cataloguesCmd)
	rootCmd.AddCommand(apiCmd)
}
