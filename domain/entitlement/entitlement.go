// Package entitlement decides whether a tier grants access to a model.
// All functions are pure - no side effects.
package entitlement

import (
	"fmt"

	"github.com/crowelogic/tiergate/domain/tier"
)

// CodeModelNotEntitled is the denial code for models outside the tier's set.
const CodeModelNotEntitled = "model_not_entitled"

// ModelNotEntitledError is returned when a subscription exists but its tier
// does not include the requested model.
type ModelNotEntitledError struct {
	Model        string
	Tier         tier.Tier
	RequiredTier tier.Tier // lowest higher tier offering Model; empty if none does
}

func (e *ModelNotEntitledError) Error() string {
	if e.RequiredTier == "" {
		return fmt.Sprintf("model %s is not available on the %s tier", e.Model, e.Tier)
	}
	return fmt.Sprintf("model %s is not available on the %s tier; upgrade to %s or higher",
		e.Model, e.Tier, e.RequiredTier)
}

// Code returns the stable denial code.
func (e *ModelNotEntitledError) Code() string { return CodeModelNotEntitled }

// UpgradeResolves reports whether moving up the tier order grants the model.
func (e *ModelNotEntitledError) UpgradeResolves() bool {
	return e.RequiredTier != ""
}

// Check decides whether t may invoke model according to catalog.
// Returns nil when allowed, *ModelNotEntitledError otherwise.
// This is a PURE function.
func Check(catalog *tier.Catalog, t tier.Tier, model string) error {
	if catalog.Entitlements(t).Allows(model) {
		return nil
	}
	return &ModelNotEntitledError{
		Model:        model,
		Tier:         t,
		RequiredTier: UpgradeTarget(catalog, t, model),
	}
}

// UpgradeTarget returns the lowest tier above t that grants model, or the
// empty tier if no higher tier does.
// This is a PURE function.
func UpgradeTarget(catalog *tier.Catalog, t tier.Tier, model string) tier.Tier {
	for _, candidate := range tier.All() {
		if candidate.Ordinal() <= t.Ordinal() {
			continue
		}
		if catalog.Entitlements(candidate).Allows(model) {
			return candidate
		}
	}
	return ""
}
