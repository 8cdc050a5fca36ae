package main

import (
	"context"
	"fmt"

	"github.com/crowelogic/tiergate/adapters/hasher"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/pkg/formatter"
	"github.com/spf13/cobra"
)

var subscriptionsCmd = &cobra.Command{
	Use:     "subscriptions",
	Aliases: []string{"subs"},
	Short:   "Manage caller subscriptions",
	Long: `Manage caller subscriptions in the configured subscription store.

A caller is named either by raw API key (--api-key), which is hashed into
its caller id, or directly by caller id (--caller).

Examples:
  tiergate subscriptions list
  tiergate subscriptions create --api-key=sk_live_123 --tier=essentials
  tiergate subscriptions set-tier --caller=<id> --tier=professional`,
}

var subscriptionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all subscriptions",
	RunE:  runSubscriptionsList,
}

var subscriptionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create or replace a subscription",
	RunE:  runSubscriptionsCreate,
}

var subscriptionsSetTierCmd = &cobra.Command{
	Use:   "set-tier",
	Short: "Change the tier of an existing subscription",
	Long: `Change the tier of an existing subscription.

This is how an accepted upgrade is applied once payment has cleared, and how
operators downgrade a caller.`,
	RunE: runSubscriptionsSetTier,
}

var subCustomerRef string

func init() {
	rootCmd.AddCommand(subscriptionsCmd)

	subscriptionsCmd.AddCommand(subscriptionsListCmd)
	subscriptionsCmd.AddCommand(subscriptionsCreateCmd)
	subscriptionsCmd.AddCommand(subscriptionsSetTierCmd)

	for _, c := range []*cobra.Command{subscriptionsCreateCmd, subscriptionsSetTierCmd} {
		c.Flags().String("api-key", "", "caller API key")
		c.Flags().String("caller", "", "caller id")
		c.Flags().String("tier", "", "tier name (required)")
		c.MarkFlagsMutuallyExclusive("api-key", "caller")
		c.MarkFlagsOneRequired("api-key", "caller")
		c.MarkFlagRequired("tier")
	}
	subscriptionsCreateCmd.Flags().StringVar(&subCustomerRef, "customer-ref", "", "billing customer reference")
}

// resolveCallerID turns --api-key or --caller into a caller id.
func resolveCallerID(cmd *cobra.Command) string {
	if key, _ := cmd.Flags().GetString("api-key"); key != "" {
		return hasher.CallerID(key)
	}
	id, _ := cmd.Flags().GetString("caller")
	return id
}

func runSubscriptionsList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Shutdown()

	subs, err := a.Engine.ListSubscriptions(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}

	if len(subs) == 0 && isTableOutput() {
		fmt.Fprintln(cmd.OutOrStdout(), "No subscriptions found.")
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "Create one with: tiergate subscriptions create --api-key=<key> --tier=freemium")
		return nil
	}

	records := make([]formatter.Record, 0, len(subs))
	for _, s := range subs {
		records = append(records, formatter.Record{
			"caller_id":       s.CallerID,
			"caller":          shortID(s.CallerID),
			"tier":            string(s.Tier),
			"status":          string(s.Status),
			"customer_ref":    s.CustomerRef,
			"created_at":      s.CreatedAt,
			"next_billing_at": s.NextBillingAt,
		})
	}
	return renderList(cmd, "subscriptions", records,
		[]string{"caller", "tier", "status", "customer_ref", "created_at", "next_billing_at"})
}

func runSubscriptionsCreate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("tier")
	t, err := tier.Parse(name)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Shutdown()

	sub, err := a.Engine.CreateSubscription(context.Background(), resolveCallerID(cmd), t, subCustomerRef)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Subscription created:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Caller: %s\n", sub.CallerID)
	fmt.Fprintf(cmd.OutOrStdout(), "  Tier:   %s\n", sub.Tier)
	fmt.Fprintf(cmd.OutOrStdout(), "  Next billing: %s\n", sub.NextBillingAt.Format("2006-01-02"))
	return nil
}

func runSubscriptionsSetTier(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("tier")
	t, err := tier.Parse(name)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Shutdown()

	callerID := resolveCallerID(cmd)
	if err := a.Engine.ChangeTier(context.Background(), callerID, t); err != nil {
		return fmt.Errorf("failed to change tier: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Caller %s moved to %s\n", shortID(callerID), t)
	return nil
}

// shortID abbreviates a caller id for tables.
func shortID(id string) string {
	if len(id) > 16 {
		return id[:16]
	}
	return id
}
