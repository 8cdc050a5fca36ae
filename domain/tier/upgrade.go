package tier

import "fmt"

// Denial codes for tier change requests.
const (
	CodeInvalidTier  = "invalid_tier"
	CodeNotAnUpgrade = "not_an_upgrade"
)

// InvalidTierError is returned when a value does not name an enumerated tier.
type InvalidTierError struct {
	Value string
}

func (e *InvalidTierError) Error() string {
	return fmt.Sprintf("invalid subscription tier %q", e.Value)
}

// Code returns the stable denial code.
func (e *InvalidTierError) Code() string { return CodeInvalidTier }

// NotAnUpgradeError is returned when the requested tier is not strictly above
// the current tier.
type NotAnUpgradeError struct {
	Current   Tier
	Requested Tier
}

func (e *NotAnUpgradeError) Error() string {
	if e.Current == e.Requested {
		return fmt.Sprintf("already on tier %s", e.Current)
	}
	return fmt.Sprintf("%s is a downgrade from %s; contact support for downgrades", e.Requested, e.Current)
}

// Code returns the stable denial code.
func (e *NotAnUpgradeError) Code() string { return CodeNotAnUpgrade }

// ValidateUpgrade checks that requested is strictly above current.
// This is a PURE function.
func ValidateUpgrade(current, requested Tier) error {
	if !requested.Valid() {
		return &InvalidTierError{Value: string(requested)}
	}
	if requested.Ordinal() <= current.Ordinal() {
		return &NotAnUpgradeError{Current: current, Requested: requested}
	}
	return nil
}
