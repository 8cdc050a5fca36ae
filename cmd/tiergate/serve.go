package main

import (
	"fmt"
	"os"

	"github.com/crowelogic/tiergate/bootstrap"
	"github.com/spf13/cobra"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tier enforcement server",
	Long: `Start the tiergate HTTP server.

The server will:
  - Load configuration from tiergate.yaml (or --config)
  - Or load configuration from TIERGATE_* environment variables
  - Open the subscription store and usage ledger
  - Seed configured subscriptions
  - Enforce tiers and meter usage on /v1/generate

Environment variables (for container deployments):
  TIERGATE_SERVER_PORT          - Server port (default: 8080)
  TIERGATE_STORAGE_SUBSCRIPTIONS - memory or sqlite (default: sqlite)
  TIERGATE_STORAGE_USAGE        - memory, sqlite or redis (default: sqlite)
  TIERGATE_STORAGE_DSN          - SQLite path (default: tiergate.db)
  TIERGATE_REDIS_URL            - Redis URL for the usage ledger
  TIERGATE_BACKEND_KIND         - mock or remote
  TIERGATE_BACKEND_URL          - Remote backend URL
  TIERGATE_ADMIN_KEY_HASH       - bcrypt hash enabling /admin
  TIERGATE_LOG_LEVEL            - Log level: debug, info, warn, error

Examples:
  tiergate serve
  tiergate serve --config /etc/tiergate/config.yaml
  tiergate serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file %s not found, running with environment variables\n", cfgFile)
	}

	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: cfgFile,
		Watch:      hotReload,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
