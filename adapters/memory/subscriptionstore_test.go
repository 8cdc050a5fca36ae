package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crowelogic/tiergate/adapters/memory"
	"github.com/crowelogic/tiergate/domain/subscription"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/ports"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func TestSubscriptionStore_CreateGet(t *testing.T) {
	store := memory.NewSubscriptionStore()
	ctx := context.Background()

	sub := subscription.New("caller1", tier.Essentials, "cus_1", now)
	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Get(ctx, "caller1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Tier != tier.Essentials || got.CustomerRef != "cus_1" {
		t.Errorf("Get() = %+v", got)
	}
}

func TestSubscriptionStore_CreateReplaces(t *testing.T) {
	store := memory.NewSubscriptionStore()
	ctx := context.Background()

	store.Create(ctx, subscription.New("caller1", tier.Freemium, "", now))
	store.Create(ctx, subscription.New("caller1", tier.Enterprise, "", now))

	got, _ := store.Get(ctx, "caller1")
	if got.Tier != tier.Enterprise {
		t.Errorf("Tier = %s, want enterprise", got.Tier)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestSubscriptionStore_CreateInvalid(t *testing.T) {
	store := memory.NewSubscriptionStore()
	sub := subscription.New("caller1", tier.Tier("gold"), "", now)
	if err := store.Create(context.Background(), sub); err == nil {
		t.Error("expected error for invalid tier")
	}
}

func TestSubscriptionStore_GetNotFound(t *testing.T) {
	store := memory.NewSubscriptionStore()
	_, err := store.Get(context.Background(), "nobody")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSubscriptionStore_SetTier(t *testing.T) {
	store := memory.NewSubscriptionStore()
	ctx := context.Background()
	store.Create(ctx, subscription.New("caller1", tier.Freemium, "", now))

	later := now.Add(time.Hour)
	if err := store.SetTier(ctx, "caller1", tier.Professional, later); err != nil {
		t.Fatalf("SetTier failed: %v", err)
	}

	got, _ := store.Get(ctx, "caller1")
	if got.Tier != tier.Professional {
		t.Errorf("Tier = %s, want professional", got.Tier)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, later)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt changed to %v", got.CreatedAt)
	}

	if err := store.SetTier(ctx, "nobody", tier.Professional, later); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("SetTier(missing) = %v, want ErrNotFound", err)
	}
	if err := store.SetTier(ctx, "caller1", tier.Tier("gold"), later); err == nil {
		t.Error("SetTier(invalid) expected error")
	}
}

func TestSubscriptionStore_ListSorted(t *testing.T) {
	store := memory.NewSubscriptionStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		store.Create(ctx, subscription.New(id, tier.Freemium, "", now))
	}

	subs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(subs) != 3 || subs[0].CallerID != "a" || subs[2].CallerID != "c" {
		t.Errorf("List() order = %v", subs)
	}
}
