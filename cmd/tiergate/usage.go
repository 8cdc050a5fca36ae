package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/crowelogic/tiergate/pkg/formatter"
	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Inspect usage",
	Long: `Inspect metered usage.

Examples:
  tiergate usage show --api-key=sk_live_123
  tiergate usage show --caller=<id>
  tiergate usage prune`,
}

var usageShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show usage for the current period",
	RunE:  runUsageShow,
}

var usagePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop usage periods outside the retention window",
	RunE:  runUsagePrune,
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.AddCommand(usageShowCmd)
	usageCmd.AddCommand(usagePruneCmd)

	usageShowCmd.Flags().String("api-key", "", "caller API key")
	usageShowCmd.Flags().String("caller", "", "caller id")
	usageShowCmd.MarkFlagsMutuallyExclusive("api-key", "caller")
	usageShowCmd.MarkFlagsOneRequired("api-key", "caller")
}

func runUsageShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Shutdown()

	callerID := resolveCallerID(cmd)
	s, err := a.Engine.UsageSummary(context.Background(), callerID)
	if err != nil {
		return fmt.Errorf("failed to get usage: %w", err)
	}

	remaining := fmt.Sprintf("%d", s.Remaining)
	if s.Quota.IsUnlimited() {
		remaining = "unlimited"
	}

	models := make([]string, 0, len(s.ModelsUsed))
	for m := range s.ModelsUsed {
		models = append(models, m)
	}
	sort.Strings(models)

	if !isTableOutput() {
		return renderRecord(cmd, "usage", formatter.Record{
			"caller_id":     callerID,
			"period":        s.Period.String(),
			"tier":          string(s.Tier),
			"status":        string(s.Status),
			"calls_used":    s.CallsUsed,
			"monthly_quota": s.Quota.String(),
			"remaining":     remaining,
			"percent_used":  s.PercentUsed,
			"warning_level": s.WarningLevel.String(),
			"models_used":   s.ModelsUsed,
		}, nil)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage for %s\n", shortID(callerID))
	err = renderRecord(cmd, "usage", formatter.Record{
		"period":    s.Period.String(),
		"tier":      fmt.Sprintf("%s (%s)", s.Tier, s.Status),
		"calls":     fmt.Sprintf("%d / %s", s.CallsUsed, s.Quota),
		"remaining": remaining,
		"used":      fmt.Sprintf("%.1f%% (%s)", s.PercentUsed, s.WarningLevel),
	}, []string{"period", "tier", "calls", "remaining", "used"})
	if err != nil || len(models) == 0 {
		return err
	}

	records := make([]formatter.Record, 0, len(models))
	for _, m := range models {
		records = append(records, formatter.Record{"model": m, "calls": s.ModelsUsed[m]})
	}
	fmt.Fprintln(out)
	return renderList(cmd, "models", records, []string{"model", "calls"})
}

func runUsagePrune(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Shutdown()

	n := a.PruneOnce()
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d usage records older than %d periods\n", n, a.Config().Usage.RetentionPeriods)
	return nil
}
