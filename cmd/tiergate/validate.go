package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/crowelogic/tiergate/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the tiergate configuration file.

Checks:
  - YAML syntax is valid
  - Storage, backend and logging settings are consistent
  - Every seeded subscription names one caller and a known tier
  - Stores open and answer a ping (optional)
  - Remote backend is reachable (optional)

Examples:
  tiergate validate
  tiergate validate --check-stores --config /etc/tiergate/config.yaml`,
	RunE: runValidate,
}

var (
	validateCheckBackend bool
	validateCheckStores  bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckBackend, "check-backend", false, "check if the remote backend is reachable")
	validateCmd.Flags().BoolVar(&validateCheckStores, "check-stores", false, "open the configured stores and ping them")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Fprintf(out, "  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Fprintf(out, "  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(out, "  %s Config valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Fprintf(out, "  %s Config valid\n", checkMark)

	fmt.Fprintf(out, "  %s Listen: %s\n", checkMark, cfg.Server.Addr())
	fmt.Fprintf(out, "  %s Subscriptions store: %s\n", checkMark, cfg.Storage.Subscriptions)
	fmt.Fprintf(out, "  %s Usage ledger: %s (retention %d periods)\n", checkMark, cfg.Storage.Usage, cfg.Usage.RetentionPeriods)
	fmt.Fprintf(out, "  %s Backend: %s\n", checkMark, cfg.Backend.Kind)
	fmt.Fprintf(out, "  %s Seeded subscriptions: %d\n", checkMark, len(cfg.Subscriptions))
	if cfg.Auth.AdminKeyHash == "" {
		fmt.Fprintf(out, "  - Admin API disabled (no auth.admin_key_hash)\n")
	}

	if validateCheckStores {
		schema, err := checkStores()
		if err != nil {
			fmt.Fprintf(out, "  %s Stores reachable\n", crossMark)
			fmt.Fprintf(out, "      Error: %v\n", err)
		} else {
			fmt.Fprintf(out, "  %s Stores reachable\n", checkMark)
			if len(schema) > 0 {
				fmt.Fprintf(out, "  %s Schema: %s\n", checkMark, strings.Join(schema, ", "))
			}
		}
	}

	if validateCheckBackend && cfg.Backend.Kind == config.BackendRemote {
		if err := checkBackendReachable(cfg.Backend.URL); err != nil {
			fmt.Fprintf(out, "  %s Backend reachable\n", crossMark)
			fmt.Fprintf(out, "      Error: %v\n", err)
		} else {
			fmt.Fprintf(out, "  %s Backend reachable\n", checkMark)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

// checkStores opens the configured stores and returns the applied SQLite
// schema versions, if a database is in use.
func checkStores() ([]string, error) {
	a, err := openApp()
	if err != nil {
		return nil, err
	}
	defer a.Shutdown()

	if a.DB == nil {
		return nil, nil
	}
	return a.DB.AppliedMigrations(context.Background())
}

func checkBackendReachable(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
