// Package quota provides pure functions for monthly call quota enforcement.
// All functions are deterministic with no side effects.
package quota

import (
	"fmt"

	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/domain/usage"
)

// WarningLevel indicates how close to quota the caller is.
type WarningLevel int

const (
	WarningNone        WarningLevel = iota // < 80%
	WarningApproaching                     // >= 80%
	WarningCritical                        // >= 95%
	WarningExceeded                        // >= 100%
)

// CheckResult represents the outcome of a quota check (value type).
type CheckResult struct {
	Allowed      bool
	Used         int64
	Limit        tier.Quota
	Remaining    int64 // -1 when unlimited
	PercentUsed  float64
	WarningLevel WarningLevel
}

// Check decides whether one more call fits in the period.
// The check happens before the call: a quota of N permits calls 1..N.
// This is a PURE function - no side effects.
func Check(rec usage.Record, limit tier.Quota) CheckResult {
	if limit.IsUnlimited() {
		return CheckResult{
			Allowed:      true,
			Used:         rec.TotalCalls,
			Limit:        tier.Unlimited,
			Remaining:    -1,
			WarningLevel: WarningNone,
		}
	}

	used := rec.TotalCalls
	remaining := int64(limit) - used
	if remaining < 0 {
		remaining = 0
	}

	pct := PercentUsed(used, limit)
	result := CheckResult{
		Allowed:     used < int64(limit),
		Used:        used,
		Limit:       limit,
		Remaining:   remaining,
		PercentUsed: pct,
	}

	switch {
	case pct >= 100:
		result.WarningLevel = WarningExceeded
	case pct >= 95:
		result.WarningLevel = WarningCritical
	case pct >= 80:
		result.WarningLevel = WarningApproaching
	default:
		result.WarningLevel = WarningNone
	}

	return result
}

// PercentUsed returns used as a percentage of limit. Unlimited quotas report
// 0; a zero quota reports 100 (exhausted).
// This is a PURE function.
func PercentUsed(used int64, limit tier.Quota) float64 {
	if limit.IsUnlimited() {
		return 0
	}
	if limit == 0 {
		return 100
	}
	return float64(used) / float64(limit) * 100
}

// String returns the string representation of a warning level.
func (w WarningLevel) String() string {
	switch w {
	case WarningNone:
		return "none"
	case WarningApproaching:
		return "approaching"
	case WarningCritical:
		return "critical"
	case WarningExceeded:
		return "exceeded"
	default:
		return "unknown"
	}
}

// CodeQuotaExceeded is the denial code for exhausted quotas.
const CodeQuotaExceeded = "quota_exceeded"

// QuotaExceededError is returned when the period's call count has reached the
// tier's quota.
type QuotaExceededError struct {
	Tier   tier.Tier
	Period usage.Period
	Used   int64
	Quota  tier.Quota
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly usage limit exceeded: %d of %s calls used in %s on the %s tier",
		e.Used, e.Quota, e.Period, e.Tier)
}

// Code returns the stable denial code.
func (e *QuotaExceededError) Code() string { return CodeQuotaExceeded }
