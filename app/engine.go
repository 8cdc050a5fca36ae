package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crowelogic/tiergate/domain/quota"
	"github.com/crowelogic/tiergate/domain/subscription"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/domain/usage"
	"github.com/crowelogic/tiergate/ports"
	"github.com/rs/zerolog"
)

// UpgradeStatusPending marks an accepted upgrade awaiting payment.
// Accepting an upgrade never changes the tier by itself.
const UpgradeStatusPending = "pending_payment"

// Engine is the tier enforcement and usage metering facade.
// It is safe for concurrent use.
type Engine struct {
	catalog       *tier.Catalog
	subscriptions ports.SubscriptionStore
	usage         ports.UsageLedger
	clock         ports.Clock
	meter         ports.Meter
	logger        zerolog.Logger

	access   *AccessController
	quota    *QuotaController
	recorder *UsageRecorder
}

// EngineDeps contains dependencies for Engine.
type EngineDeps struct {
	Catalog       *tier.Catalog // nil selects tier.Default()
	Subscriptions ports.SubscriptionStore
	Usage         ports.UsageLedger
	Clock         ports.Clock
	Meter         ports.Meter // optional
	Logger        zerolog.Logger
}

// NewEngine creates an engine over explicitly constructed stores.
func NewEngine(deps EngineDeps) *Engine {
	catalog := deps.Catalog
	if catalog == nil {
		catalog = tier.Default()
	}
	meter := meterOrNop(deps.Meter)

	return &Engine{
		catalog:       catalog,
		subscriptions: deps.Subscriptions,
		usage:         deps.Usage,
		clock:         deps.Clock,
		meter:         meter,
		logger:        deps.Logger,
		access:        NewAccessController(catalog, deps.Subscriptions),
		quota:         NewQuotaController(catalog, deps.Subscriptions, deps.Usage, deps.Clock),
		recorder:      NewUsageRecorder(deps.Usage, deps.Clock, meter, deps.Logger),
	}
}

// Catalog returns the tier catalog the engine enforces.
func (e *Engine) Catalog() *tier.Catalog {
	return e.catalog
}

// Recorder returns the engine's usage recorder.
func (e *Engine) Recorder() *UsageRecorder {
	return e.recorder
}

// CheckAccess decides whether callerID may invoke model.
func (e *Engine) CheckAccess(ctx context.Context, callerID, model string) (Decision, error) {
	d, err := e.access.Check(ctx, callerID, model)
	if err != nil {
		return Decision{}, err
	}
	e.meter.Decision("access", d.Tier, d.Code())
	if !d.Allowed {
		e.logger.Info().
			Str("caller_id", callerID).
			Str("model", model).
			Str("tier", string(d.Tier)).
			Str("code", d.Code()).
			Msg("access denied")
	}
	return d, nil
}

// CheckQuota decides whether callerID has calls left in the current period.
func (e *Engine) CheckQuota(ctx context.Context, callerID string) (QuotaDecision, error) {
	d, err := e.quota.Check(ctx, callerID)
	if err != nil {
		return QuotaDecision{}, err
	}
	e.meter.Decision("quota", d.Tier, d.Code())
	if !d.Allowed {
		e.logger.Info().
			Str("caller_id", callerID).
			Str("tier", string(d.Tier)).
			Int64("used", d.Result.Used).
			Str("code", d.Code()).
			Msg("quota denied")
	}
	return d, nil
}

// RecordUsage adds weight calls (default 1) of model for callerID in the
// current period. A caller without an active subscription gets a
// *subscription.NoSubscriptionError and nothing is written.
func (e *Engine) RecordUsage(ctx context.Context, callerID, model string, weight int64) error {
	_, denial, err := activeSubscription(ctx, e.subscriptions, callerID)
	if err != nil {
		return err
	}
	if denial != nil {
		return denial
	}
	return e.recorder.Record(ctx, callerID, model, weight)
}

// Summary is a caller's current-period usage view.
type Summary struct {
	CallerID      string
	Tier          tier.Tier
	Status        subscription.Status
	Period        usage.Period
	CallsUsed     int64
	Quota         tier.Quota
	Remaining     int64 // -1 when unlimited
	PercentUsed   float64
	WarningLevel  quota.WarningLevel
	ModelsUsed    map[string]int64
	SupportLevel  string
	SLAUptime     string
	LastUpdated   time.Time
	NextBillingAt time.Time
}

// UsageSummary returns the caller's usage for the current period. A caller
// without a subscription gets a *subscription.NoSubscriptionError rather
// than a zeroed summary.
func (e *Engine) UsageSummary(ctx context.Context, callerID string) (Summary, error) {
	sub, err := e.subscriptions.Get(ctx, callerID)
	if errors.Is(err, ports.ErrNotFound) {
		return Summary{}, &subscription.NoSubscriptionError{CallerID: callerID}
	}
	if err != nil {
		return Summary{}, fmt.Errorf("lookup subscription: %w", err)
	}

	period := usage.PeriodOf(e.clock.Now())
	rec, err := e.usage.Usage(ctx, callerID, period)
	if err != nil {
		return Summary{}, fmt.Errorf("read usage: %w", err)
	}

	ent := e.catalog.Entitlements(sub.Tier)
	result := quota.Check(rec, ent.MonthlyQuota)

	return Summary{
		CallerID:      callerID,
		Tier:          sub.Tier,
		Status:        sub.Status,
		Period:        period,
		CallsUsed:     rec.TotalCalls,
		Quota:         ent.MonthlyQuota,
		Remaining:     result.Remaining,
		PercentUsed:   result.PercentUsed,
		WarningLevel:  result.WarningLevel,
		ModelsUsed:    rec.ModelsUsed,
		SupportLevel:  ent.SupportLevel,
		SLAUptime:     ent.SLAUptime,
		LastUpdated:   rec.LastUpdated,
		NextBillingAt: sub.NextBillingAt,
	}, nil
}

// CreateSubscription stores a new active subscription, replacing any prior
// record for the caller.
func (e *Engine) CreateSubscription(ctx context.Context, callerID string, t tier.Tier, customerRef string) (subscription.Subscription, error) {
	if !t.Valid() {
		return subscription.Subscription{}, &tier.InvalidTierError{Value: string(t)}
	}

	sub := subscription.New(callerID, t, customerRef, e.clock.Now())
	if err := e.subscriptions.Create(ctx, sub); err != nil {
		return subscription.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	e.logger.Info().
		Str("caller_id", callerID).
		Str("tier", string(t)).
		Msg("subscription created")
	return sub, nil
}

// ChangeTier moves an existing subscription to t. This is the operator path
// that applies an accepted upgrade, or any downgrade.
func (e *Engine) ChangeTier(ctx context.Context, callerID string, t tier.Tier) error {
	if !t.Valid() {
		return &tier.InvalidTierError{Value: string(t)}
	}

	err := e.subscriptions.SetTier(ctx, callerID, t, e.clock.Now())
	if errors.Is(err, ports.ErrNotFound) {
		return &subscription.NoSubscriptionError{CallerID: callerID}
	}
	if err != nil {
		return fmt.Errorf("change tier: %w", err)
	}

	e.meter.TierChanged(t)
	e.logger.Info().
		Str("caller_id", callerID).
		Str("tier", string(t)).
		Msg("subscription tier changed")
	return nil
}

// ListSubscriptions returns every stored subscription ordered by caller id.
func (e *Engine) ListSubscriptions(ctx context.Context) ([]subscription.Subscription, error) {
	subs, err := e.subscriptions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// Subscription returns the stored subscription for callerID, active or not.
func (e *Engine) Subscription(ctx context.Context, callerID string) (subscription.Subscription, error) {
	sub, err := e.subscriptions.Get(ctx, callerID)
	if errors.Is(err, ports.ErrNotFound) {
		return subscription.Subscription{}, &subscription.NoSubscriptionError{CallerID: callerID}
	}
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// UpgradeResult is the outcome of an upgrade request (value type).
type UpgradeResult struct {
	CurrentTier   tier.Tier
	RequestedTier tier.Tier
	Accepted      bool
	Status        string // UpgradeStatusPending when accepted
	PriceMonthly  int64  // cents, requested tier
	Denial        Denial // nil when accepted
}

// Reason returns the human-readable rejection reason, if any.
func (r UpgradeResult) Reason() string {
	if r.Denial == nil {
		return ""
	}
	return r.Denial.Error()
}

// RequestUpgrade validates a move from the caller's current tier to the
// named tier. Validation order: tier name, subscription, ordering.
func (e *Engine) RequestUpgrade(ctx context.Context, callerID, requested string) (UpgradeResult, error) {
	res, err := e.requestUpgrade(ctx, callerID, requested)
	if err != nil {
		return UpgradeResult{}, err
	}

	code := CodeAllowed
	if res.Denial != nil {
		code = res.Denial.Code()
	}
	e.meter.UpgradeRequested(code)
	e.logger.Info().
		Str("caller_id", callerID).
		Str("current_tier", string(res.CurrentTier)).
		Str("requested_tier", requested).
		Bool("accepted", res.Accepted).
		Msg("upgrade requested")
	return res, nil
}

func (e *Engine) requestUpgrade(ctx context.Context, callerID, requested string) (UpgradeResult, error) {
	target, err := tier.Parse(requested)
	if err != nil {
		var invalid *tier.InvalidTierError
		if errors.As(err, &invalid) {
			return UpgradeResult{RequestedTier: tier.Tier(requested), Denial: invalid}, nil
		}
		return UpgradeResult{}, err
	}

	sub, err := e.subscriptions.Get(ctx, callerID)
	if errors.Is(err, ports.ErrNotFound) {
		return UpgradeResult{
			RequestedTier: target,
			Denial:        &subscription.NoSubscriptionError{CallerID: callerID},
		}, nil
	}
	if err != nil {
		return UpgradeResult{}, fmt.Errorf("lookup subscription: %w", err)
	}

	res := UpgradeResult{CurrentTier: sub.Tier, RequestedTier: target}
	if err := tier.ValidateUpgrade(sub.Tier, target); err != nil {
		var notUpgrade *tier.NotAnUpgradeError
		if errors.As(err, &notUpgrade) {
			res.Denial = notUpgrade
			return res, nil
		}
		return UpgradeResult{}, err
	}

	res.Accepted = true
	res.Status = UpgradeStatusPending
	res.PriceMonthly = e.catalog.Price(target)
	return res, nil
}

// TierInfo is one row of the public price list.
type TierInfo struct {
	Tier         tier.Tier
	DisplayName  string
	PriceMonthly int64 // cents
	Currency     string
	Entitlements tier.Entitlements
}

// ListTiers returns one entry per tier in ascending order.
func (e *Engine) ListTiers() []TierInfo {
	entries := e.catalog.Entries()
	out := make([]TierInfo, 0, len(entries))
	for _, en := range entries {
		out = append(out, TierInfo{
			Tier:         en.Tier,
			DisplayName:  en.Tier.DisplayName(),
			PriceMonthly: en.PriceMonthly,
			Currency:     tier.Currency,
			Entitlements: en.Entitlements,
		})
	}
	return out
}

// ModelListing is one served model and the lowest tier that grants it.
type ModelListing struct {
	tier.ModelInfo
	TierRequired tier.Tier
}

// ListModels returns every model offered by some tier, sorted by id.
func (e *Engine) ListModels() []ModelListing {
	ids := e.catalog.Models()
	out := make([]ModelListing, 0, len(ids))
	for _, id := range ids {
		lowest, _ := e.catalog.LowestTierFor(id)
		out = append(out, ModelListing{ModelInfo: tier.DescribeModel(id), TierRequired: lowest})
	}
	return out
}

// PruneUsage drops ledger records older than the retention window.
func (e *Engine) PruneUsage(ctx context.Context, keepPeriods int) (int64, error) {
	cutoff := usage.RetentionCutoff(usage.PeriodOf(e.clock.Now()), keepPeriods)
	n, err := e.usage.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune usage: %w", err)
	}
	if n > 0 {
		e.meter.UsagePruned(n)
		e.logger.Info().
			Int64("removed", n).
			Str("cutoff", string(cutoff)).
			Msg("pruned usage records")
	}
	return n, nil
}
