package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/crowelogic/tiergate/domain/entitlement"
	"github.com/crowelogic/tiergate/domain/subscription"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/ports"
)

// AccessController decides whether a caller may invoke a model.
type AccessController struct {
	catalog       *tier.Catalog
	subscriptions ports.SubscriptionStore
}

// NewAccessController creates an access controller.
func NewAccessController(catalog *tier.Catalog, subscriptions ports.SubscriptionStore) *AccessController {
	return &AccessController{catalog: catalog, subscriptions: subscriptions}
}

// Check looks up the caller's subscription and tests model membership in
// the tier's allowed set. The returned error is non-nil only when the store
// fails; denials are carried by the Decision.
func (c *AccessController) Check(ctx context.Context, callerID, model string) (Decision, error) {
	sub, denial, err := activeSubscription(ctx, c.subscriptions, callerID)
	if err != nil {
		return Decision{}, err
	}
	if denial != nil {
		return deny("", denial), nil
	}

	if err := entitlement.Check(c.catalog, sub.Tier, model); err != nil {
		var notEntitled *entitlement.ModelNotEntitledError
		if errors.As(err, &notEntitled) {
			return deny(sub.Tier, notEntitled), nil
		}
		return Decision{}, err
	}
	return allow(sub.Tier), nil
}

// activeSubscription resolves a caller to a usable subscription. Absent and
// inactive subscriptions both yield a NoSubscriptionError denial.
func activeSubscription(ctx context.Context, store ports.SubscriptionStore, callerID string) (subscription.Subscription, Denial, error) {
	sub, err := store.Get(ctx, callerID)
	if errors.Is(err, ports.ErrNotFound) {
		return subscription.Subscription{}, &subscription.NoSubscriptionError{CallerID: callerID}, nil
	}
	if err != nil {
		return subscription.Subscription{}, nil, fmt.Errorf("lookup subscription: %w", err)
	}
	if !sub.IsActive() {
		return sub, &subscription.NoSubscriptionError{CallerID: callerID, Inactive: true}, nil
	}
	return sub, nil, nil
}
