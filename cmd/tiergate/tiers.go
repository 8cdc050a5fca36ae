package main

import (
	"fmt"
	"strings"

	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/pkg/formatter"
	"github.com/spf13/cobra"
)

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Show the tier catalog",
	Long: `Show every subscription tier with its price, monthly quota and model
entitlements, in ascending order.

Examples:
  tiergate tiers
  tiergate tiers --models
  tiergate tiers -o json`,
	RunE: runTiers,
}

var tiersShowModels bool

func init() {
	rootCmd.AddCommand(tiersCmd)

	tiersCmd.Flags().BoolVar(&tiersShowModels, "models", false, "list the models each tier grants")
}

func runTiers(cmd *cobra.Command, args []string) error {
	entries := tier.Default().Entries()

	records := make([]formatter.Record, 0, len(entries))
	for _, e := range entries {
		price := fmt.Sprintf("$%.2f", float64(e.PriceMonthly)/100)
		if e.PriceMonthly == 0 {
			price = "free"
		}
		records = append(records, formatter.Record{
			"tier":          string(e.Tier),
			"name":          e.Tier.DisplayName(),
			"price":         price,
			"price_cents":   int64(e.PriceMonthly),
			"monthly_quota": e.Entitlements.MonthlyQuota.String(),
			"models":        len(e.Entitlements.AllowedModels),
			"allowed":       e.Entitlements.AllowedModels,
			"support":       e.Entitlements.SupportLevel,
			"sla":           e.Entitlements.SLAUptime,
		})
	}

	columns := []string{"tier", "name", "price", "monthly_quota", "models", "support", "sla"}
	if err := renderList(cmd, "tiers", records, columns); err != nil {
		return err
	}

	if tiersShowModels && isTableOutput() {
		out := cmd.OutOrStdout()
		for _, e := range entries {
			fmt.Fprintf(out, "\n%s:\n  %s\n", e.Tier, strings.Join(e.Entitlements.AllowedModels, "\n  "))
		}
	}
	return nil
}
