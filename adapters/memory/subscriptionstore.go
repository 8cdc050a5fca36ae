// Package memory provides in-memory implementations of storage ports.
// Used for tests and single-process deployments without persistence.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/crowelogic/tiergate/domain/subscription"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/ports"
)

// SubscriptionStore is an in-memory implementation of ports.SubscriptionStore.
type SubscriptionStore struct {
	mu   sync.RWMutex
	subs map[string]subscription.Subscription // by caller id
}

// NewSubscriptionStore creates a new in-memory subscription store.
func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{
		subs: make(map[string]subscription.Subscription),
	}
}

// Create stores s, replacing any existing subscription for the caller.
func (s *SubscriptionStore) Create(ctx context.Context, sub subscription.Subscription) error {
	if err := subscription.Validate(sub); err != nil {
		return err
	}

	s.mu.Lock()
	s.subs[sub.CallerID] = sub
	s.mu.Unlock()
	return nil
}

// Get retrieves the subscription for a caller.
func (s *SubscriptionStore) Get(ctx context.Context, callerID string) (subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[callerID]
	if !ok {
		return subscription.Subscription{}, fmt.Errorf("subscription %s: %w", callerID, ports.ErrNotFound)
	}
	return sub, nil
}

// SetTier changes the tier of an existing subscription.
func (s *SubscriptionStore) SetTier(ctx context.Context, callerID string, t tier.Tier, at time.Time) error {
	if !t.Valid() {
		return &tier.InvalidTierError{Value: string(t)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[callerID]
	if !ok {
		return fmt.Errorf("subscription %s: %w", callerID, ports.ErrNotFound)
	}
	sub.Tier = t
	sub.UpdatedAt = at.UTC()
	s.subs[callerID] = sub
	return nil
}

// List returns all subscriptions ordered by caller id.
func (s *SubscriptionStore) List(ctx context.Context) ([]subscription.Subscription, error) {
	s.mu.RLock()
	out := make([]subscription.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CallerID < out[j].CallerID })
	return out, nil
}

// Len returns the number of stored subscriptions (for testing).
func (s *SubscriptionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Ensure interface compliance.
var _ ports.SubscriptionStore = (*SubscriptionStore)(nil)
