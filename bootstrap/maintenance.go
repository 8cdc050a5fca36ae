package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crowelogic/tiergate/adapters/hasher"
	"github.com/crowelogic/tiergate/config"
	"github.com/crowelogic/tiergate/domain/subscription"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/rs/zerolog"
)

// seedSubscriptions applies configured subscriptions. A seed replaces the
// stored subscription only when its tier, customer ref or active state
// differs, so reloading an unchanged file keeps creation times intact.
func (a *App) seedSubscriptions(ctx context.Context, seeds []config.SubscriptionSeed) error {
	applied := 0
	for i, seed := range seeds {
		t, err := tier.Parse(seed.Tier)
		if err != nil {
			return fmt.Errorf("subscriptions[%d]: %w", i, err)
		}
		callerID := seed.CallerID
		if seed.APIKey != "" {
			callerID = hasher.CallerID(seed.APIKey)
		}

		current, err := a.Engine.Subscription(ctx, callerID)
		var none *subscription.NoSubscriptionError
		switch {
		case err == nil:
			if current.Tier == t && current.CustomerRef == seed.CustomerRef && current.IsActive() {
				continue
			}
		case !errors.As(err, &none):
			return fmt.Errorf("subscriptions[%d]: %w", i, err)
		}

		if _, err := a.Engine.CreateSubscription(ctx, callerID, t, seed.CustomerRef); err != nil {
			return fmt.Errorf("subscriptions[%d]: %w", i, err)
		}
		applied++
	}

	if applied > 0 {
		a.Logger.Info().Int("applied", applied).Int("configured", len(seeds)).Msg("subscriptions seeded")
	}
	return nil
}

// onConfigChange applies the reloadable fields of a new configuration.
func (a *App) onConfigChange(cfg *config.Config) {
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if err := a.seedSubscriptions(context.Background(), cfg.Subscriptions); err != nil {
		a.Logger.Error().Err(err).Msg("re-seeding subscriptions failed")
	}

	if a.Metrics != nil {
		a.Metrics.ConfigReloads.Inc()
		a.Metrics.ConfigLastReload.SetToCurrentTime()
	}
}

func (a *App) pruneLoop(interval time.Duration) {
	defer a.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.PruneOnce()
	for {
		select {
		case <-ticker.C:
			a.PruneOnce()
		case <-a.stopCh:
			return
		}
	}
}

// PruneOnce drops usage periods outside the configured retention window.
func (a *App) PruneOnce() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := a.Engine.PruneUsage(ctx, a.Config().Usage.RetentionPeriods)
	if err != nil {
		a.Logger.Error().Err(err).Msg("usage prune failed")
		return 0
	}
	return n
}
