package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crowelogic/tiergate/domain/subscription"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/ports"
)

// SubscriptionStore implements ports.SubscriptionStore using SQLite.
type SubscriptionStore struct {
	db *DB
}

// NewSubscriptionStore creates a new SQLite subscription store.
func NewSubscriptionStore(db *DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Create stores sub, replacing any existing subscription for the caller.
func (s *SubscriptionStore) Create(ctx context.Context, sub subscription.Subscription) error {
	if err := subscription.Validate(sub); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (
			caller_id, tier, customer_ref, status,
			created_at, next_billing_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(caller_id) DO UPDATE SET
			tier = excluded.tier,
			customer_ref = excluded.customer_ref,
			status = excluded.status,
			created_at = excluded.created_at,
			next_billing_at = excluded.next_billing_at,
			updated_at = excluded.updated_at
	`, sub.CallerID, string(sub.Tier), sub.CustomerRef, string(sub.Status),
		sub.CreatedAt.UTC(), sub.NextBillingAt.UTC(), sub.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// Get retrieves the subscription for a caller.
func (s *SubscriptionStore) Get(ctx context.Context, callerID string) (subscription.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT caller_id, tier, customer_ref, status,
		       created_at, next_billing_at, updated_at
		FROM subscriptions
		WHERE caller_id = ?
	`, callerID)

	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return subscription.Subscription{}, fmt.Errorf("subscription %s: %w", callerID, ports.ErrNotFound)
	}
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// SetTier changes the tier of an existing subscription.
func (s *SubscriptionStore) SetTier(ctx context.Context, callerID string, t tier.Tier, at time.Time) error {
	if !t.Valid() {
		return &tier.InvalidTierError{Value: string(t)}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions SET tier = ?, updated_at = ?
		WHERE caller_id = ?
	`, string(t), at.UTC(), callerID)
	if err != nil {
		return fmt.Errorf("set tier: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set tier: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("subscription %s: %w", callerID, ports.ErrNotFound)
	}
	return nil
}

// List returns all subscriptions ordered by caller id.
func (s *SubscriptionStore) List(ctx context.Context) ([]subscription.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT caller_id, tier, customer_ref, status,
		       created_at, next_billing_at, updated_at
		FROM subscriptions
		ORDER BY caller_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []subscription.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (subscription.Subscription, error) {
	var sub subscription.Subscription
	var t, status string

	err := row.Scan(
		&sub.CallerID, &t, &sub.CustomerRef, &status,
		&sub.CreatedAt, &sub.NextBillingAt, &sub.UpdatedAt,
	)
	if err != nil {
		return subscription.Subscription{}, err
	}

	sub.Tier = tier.Tier(t)
	sub.Status = subscription.Status(status)
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.NextBillingAt = sub.NextBillingAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	return sub, nil
}

// Ensure interface compliance.
var _ ports.SubscriptionStore = (*SubscriptionStore)(nil)
