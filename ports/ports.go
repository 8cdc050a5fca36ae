// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/crowelogic/tiergate/domain/subscription"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/domain/usage"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher provides secret hashing for operator credentials.
type Hasher interface {
	// Hash generates a hash from a plaintext value.
	Hash(plaintext string) ([]byte, error)

	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// SubscriptionStore persists subscriptions keyed by caller identity.
// Implementations must make each call atomic per caller.
type SubscriptionStore interface {
	// Create stores s, replacing any existing record for s.CallerID.
	Create(ctx context.Context, s subscription.Subscription) error

	// Get retrieves the subscription for a caller.
	// Returns an error wrapping ErrNotFound when none exists.
	Get(ctx context.Context, callerID string) (subscription.Subscription, error)

	// SetTier changes the tier of an existing subscription in place.
	// Returns an error wrapping ErrNotFound when none exists.
	SetTier(ctx context.Context, callerID string, t tier.Tier, at time.Time) error

	// List returns all subscriptions ordered by caller id.
	List(ctx context.Context) ([]subscription.Subscription, error)
}

// UsageLedger persists per-caller, per-period consumption counters.
// Concurrent Record calls for the same key must all be reflected.
type UsageLedger interface {
	// Record adds weight calls of model to (callerID, period), creating the
	// bucket on first use.
	Record(ctx context.Context, callerID, model string, period usage.Period, weight int64, at time.Time) error

	// Usage returns the record for (callerID, period). Absent records
	// yield usage.Empty; reading never creates a record.
	Usage(ctx context.Context, callerID string, period usage.Period) (usage.Record, error)

	// Prune removes all records for periods strictly before cutoff and
	// returns how many (caller, period) buckets were removed.
	Prune(ctx context.Context, cutoff usage.Period) (int64, error)
}

// -----------------------------------------------------------------------------
// External Service Ports
// -----------------------------------------------------------------------------

// GenerateRequest is a text-generation call (value type).
type GenerateRequest struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// GenerateResult is a backend's answer (value type).
type GenerateResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Generator is an opaque text-generation backend.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// -----------------------------------------------------------------------------
// Instrumentation Ports
// -----------------------------------------------------------------------------

// Meter receives engine events for instrumentation.
type Meter interface {
	// Decision reports one access or quota check; code is "allowed" or a
	// denial code.
	Decision(check string, t tier.Tier, code string)
	UsageRecorded(model string, weight int64)
	UsageRecordFailed()
	UsagePruned(n int64)
	UpgradeRequested(code string)
	TierChanged(t tier.Tier)
	BackendCall(model string, d time.Duration, err error)
}
