package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arraypress/flyouts/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the panel server",
	Long: `Start the flyoutd panel server.

The server will:
  - Load configuration from flyouts.yaml (or --config)
  - Or load configuration from FLYOUTS_* environment variables
  - Register every panel manifest against the in-memory record store
  - Serve the panel JSON API under routes.base_path

Manifest callbacks must reference the built-in store:
  callbacks:
    load: memory.load
    save: memory.save
    delete: memory.delete
  search:
    handler: memory.search

Environment variables:
  FLYOUTS_SERVER_PORT     - Server port (default: 8080)
  FLYOUTS_PANELS_DIR      - Panel manifest directory
  FLYOUTS_NONCE_KEY       - Stable nonce key
  FLYOUTS_LOG_LEVEL       - Log level: debug, info, warn, error

Examples:
  flyoutd serve
  flyoutd serve --config /etc/flyouts/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: cfgFile,
		Callbacks:  storeCallbacks(newMemStore()),
	})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
