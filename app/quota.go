package app

import (
	"context"
	"fmt"

	"github.com/crowelogic/tiergate/domain/quota"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/domain/usage"
	"github.com/crowelogic/tiergate/ports"
)

// QuotaController decides whether a caller has calls left this period.
type QuotaController struct {
	catalog       *tier.Catalog
	subscriptions ports.SubscriptionStore
	usage         ports.UsageLedger
	clock         ports.Clock
}

// NewQuotaController creates a quota controller.
func NewQuotaController(catalog *tier.Catalog, subscriptions ports.SubscriptionStore, ledger ports.UsageLedger, clock ports.Clock) *QuotaController {
	return &QuotaController{
		catalog:       catalog,
		subscriptions: subscriptions,
		usage:         ledger,
		clock:         clock,
	}
}

// Check compares the current period's call count with the tier quota.
// Unlimited tiers are allowed without reading the ledger.
func (c *QuotaController) Check(ctx context.Context, callerID string) (QuotaDecision, error) {
	period := usage.PeriodOf(c.clock.Now())

	sub, denial, err := activeSubscription(ctx, c.subscriptions, callerID)
	if err != nil {
		return QuotaDecision{}, err
	}
	if denial != nil {
		return QuotaDecision{Decision: deny("", denial), Period: period}, nil
	}

	limit := c.catalog.Entitlements(sub.Tier).MonthlyQuota
	if limit.IsUnlimited() {
		return QuotaDecision{
			Decision: allow(sub.Tier),
			Period:   period,
			Result:   quota.Check(usage.Empty(callerID, period), limit),
		}, nil
	}

	rec, err := c.usage.Usage(ctx, callerID, period)
	if err != nil {
		return QuotaDecision{}, fmt.Errorf("read usage: %w", err)
	}

	result := quota.Check(rec, limit)
	if !result.Allowed {
		return QuotaDecision{
			Decision: deny(sub.Tier, &quota.QuotaExceededError{
				Tier:   sub.Tier,
				Period: period,
				Used:   result.Used,
				Quota:  limit,
			}),
			Period: period,
			Result: result,
		}, nil
	}
	return QuotaDecision{Decision: allow(sub.Tier), Period: period, Result: result}, nil
}
