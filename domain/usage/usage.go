// Package usage provides billing-period and usage-record value types.
// All functions are pure - no side effects.
package usage

import (
	"fmt"
	"time"
)

// periodLayout is the "YYYY-MM" billing period format.
const periodLayout = "2006-01"

// Period identifies a calendar-month billing bucket in UTC, e.g. "2024-03".
// Periods order lexicographically.
type Period string

// PeriodOf returns the billing period containing t (evaluated in UTC).
// This is a PURE function.
func PeriodOf(t time.Time) Period {
	return Period(t.UTC().Format(periodLayout))
}

// ParsePeriod validates a "YYYY-MM" string.
func ParsePeriod(s string) (Period, error) {
	if _, err := time.Parse(periodLayout, s); err != nil {
		return "", fmt.Errorf("invalid period %q: want YYYY-MM", s)
	}
	return Period(s), nil
}

// Start returns the first instant of the period.
func (p Period) Start() time.Time {
	t, err := time.Parse(periodLayout, string(p))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// End returns the last instant of the period.
func (p Period) End() time.Time {
	start := p.Start()
	if start.IsZero() {
		return start
	}
	return start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Before reports whether p is strictly older than other.
func (p Period) Before(other Period) bool {
	return p < other
}

// Shift returns the period n months away from p (negative n goes back).
func (p Period) Shift(n int) Period {
	start := p.Start()
	if start.IsZero() {
		return p
	}
	return PeriodOf(start.AddDate(0, n, 0))
}

// String returns the period identifier.
func (p Period) String() string {
	return string(p)
}

// RetentionCutoff returns the oldest period kept when retaining keep periods
// (the current one included). Periods strictly before the cutoff may be
// pruned. keep < 1 is treated as 1.
// This is a PURE function.
func RetentionCutoff(current Period, keep int) Period {
	if keep < 1 {
		keep = 1
	}
	return current.Shift(-(keep - 1))
}

// Record is one caller's consumption within one period (value type).
type Record struct {
	CallerID    string
	Period      Period
	TotalCalls  int64
	ModelsUsed  map[string]int64
	LastUpdated time.Time
}

// Empty returns the zero record for a caller and period.
func Empty(callerID string, period Period) Record {
	return Record{
		CallerID:   callerID,
		Period:     period,
		ModelsUsed: map[string]int64{},
	}
}

// NormalizeWeight maps non-positive weights to the default of one call.
func NormalizeWeight(weight int64) int64 {
	if weight <= 0 {
		return 1
	}
	return weight
}

// Add returns r with weight calls of model added.
// The input record is not modified.
// This is a PURE function.
func Add(r Record, model string, weight int64, at time.Time) Record {
	weight = NormalizeWeight(weight)
	out := r.Clone()
	if out.ModelsUsed == nil {
		out.ModelsUsed = map[string]int64{}
	}
	out.TotalCalls += weight
	out.ModelsUsed[model] += weight
	out.LastUpdated = at
	return out
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	out.ModelsUsed = make(map[string]int64, len(r.ModelsUsed))
	for k, v := range r.ModelsUsed {
		out.ModelsUsed[k] = v
	}
	return out
}
