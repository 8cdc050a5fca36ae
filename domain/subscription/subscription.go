// Package subscription provides the subscription value type and its pure
// lifecycle functions.
package subscription

import (
	"fmt"
	"time"

	"github.com/crowelogic/tiergate/domain/tier"
)

// BillingCycle is the interval between billing dates.
const BillingCycle = 30 * 24 * time.Hour

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Subscription is one caller's plan (value type).
type Subscription struct {
	CallerID      string
	Tier          tier.Tier
	CustomerRef   string
	Status        Status
	CreatedAt     time.Time
	NextBillingAt time.Time
	UpdatedAt     time.Time
}

// IsActive reports whether the subscription grants access.
func (s Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// New builds an active subscription created at now.
// This is a PURE function.
func New(callerID string, t tier.Tier, customerRef string, now time.Time) Subscription {
	now = now.UTC()
	return Subscription{
		CallerID:      callerID,
		Tier:          t,
		CustomerRef:   customerRef,
		Status:        StatusActive,
		CreatedAt:     now,
		NextBillingAt: now.Add(BillingCycle),
		UpdatedAt:     now,
	}
}

// CodeNoSubscription is the denial code for callers without a subscription.
const CodeNoSubscription = "no_subscription"

// NoSubscriptionError is returned when a caller has no usable subscription.
type NoSubscriptionError struct {
	CallerID string
	Inactive bool // a record exists but is not active
}

func (e *NoSubscriptionError) Error() string {
	if e.Inactive {
		return "subscription is not active"
	}
	return "no subscription found"
}

// Code returns the stable denial code.
func (e *NoSubscriptionError) Code() string { return CodeNoSubscription }

// Validate checks a subscription before it is stored.
func Validate(s Subscription) error {
	if s.CallerID == "" {
		return fmt.Errorf("caller id is required")
	}
	if !s.Tier.Valid() {
		return &tier.InvalidTierError{Value: string(s.Tier)}
	}
	switch s.Status {
	case StatusActive, StatusInactive:
	default:
		return fmt.Errorf("invalid status %q", s.Status)
	}
	return nil
}
