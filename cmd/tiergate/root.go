package main

import (
	"fmt"
	"io"
	"os"

	"github.com/crowelogic/tiergate/bootstrap"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tiergate",
	Short: "Subscription tier enforcement and usage metering",
	Long: `tiergate enforces subscription tiers for the Crowe Logic AI platform.

It checks model entitlements and monthly quotas for each caller, meters
every successful generation, and answers upgrade requests.

Quick start:
  tiergate serve      # Start the HTTP server
  tiergate tiers      # Show the tier catalog

Management:
  tiergate subscriptions   # Manage subscriptions
  tiergate usage           # Inspect usage
  tiergate validate        # Validate configuration`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "tiergate.yaml", "config file path")
}

// openApp builds the application for a management command. The caller
// must call Shutdown.
func openApp() (*bootstrap.App, error) {
	a, err := bootstrap.New(bootstrap.Options{
		ConfigPath: cfgFile,
		Version:    version,
		LogOutput:  io.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing: %w", err)
	}
	return a, nil
}
