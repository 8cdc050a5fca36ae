// Package tier provides the subscription tier enum, the tier catalog and
// pure functions over them.
package tier

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Tier is a subscription level. Values are ordered: a higher ordinal grants
// escalating entitlements.
type Tier string

const (
	Freemium       Tier = "freemium"
	Essentials     Tier = "essentials"
	Professional   Tier = "professional"
	Enterprise     Tier = "enterprise"
	EnterprisePlus Tier = "enterprise_plus"
)

// ordered is the closed tier set in ascending order.
var ordered = []Tier{Freemium, Essentials, Professional, Enterprise, EnterprisePlus}

// All returns every tier in ascending order.
func All() []Tier {
	return append([]Tier(nil), ordered...)
}

// Ordinal returns the position of t in the tier order, or -1 if t is not a
// known tier.
func (t Tier) Ordinal() int {
	for i, o := range ordered {
		if o == t {
			return i
		}
	}
	return -1
}

// Valid reports whether t is one of the enumerated tiers.
func (t Tier) Valid() bool {
	return t.Ordinal() >= 0
}

// Less reports whether t is ordered strictly before other.
func (t Tier) Less(other Tier) bool {
	return t.Ordinal() < other.Ordinal()
}

// String returns the wire name of the tier.
func (t Tier) String() string {
	return string(t)
}

// DisplayName returns a human readable name, e.g. "Enterprise Plus".
func (t Tier) DisplayName() string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Parse converts a user supplied tier name into a Tier.
// Matching is case-insensitive and accepts '-' or ' ' in place of '_'.
func Parse(s string) (Tier, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	t := Tier(norm)
	if !t.Valid() {
		return "", &InvalidTierError{Value: s}
	}
	return t, nil
}

// Quota is a monthly call allowance. Unlimited is the sentinel for tiers
// without a cap.
type Quota int64

// Unlimited marks a tier with no monthly call cap.
const Unlimited Quota = -1

// IsUnlimited reports whether q is the unlimited sentinel.
func (q Quota) IsUnlimited() bool {
	return q < 0
}

// String renders the quota for display.
func (q Quota) String() string {
	if q.IsUnlimited() {
		return "unlimited"
	}
	return strconv.FormatInt(int64(q), 10)
}

// MarshalJSON encodes unlimited quotas as the string "unlimited" and finite
// quotas as numbers.
func (q Quota) MarshalJSON() ([]byte, error) {
	if q.IsUnlimited() {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.FormatInt(int64(q), 10)), nil
}

// UnmarshalJSON accepts either a number or the string "unlimited".
func (q *Quota) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if strings.EqualFold(s, "unlimited") {
			*q = Unlimited
			return nil
		}
		return fmt.Errorf("invalid quota %q", s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid quota: %w", err)
	}
	if n < 0 {
		*q = Unlimited
		return nil
	}
	*q = Quota(n)
	return nil
}

// Entitlements are the attributes a tier grants (immutable value type).
type Entitlements struct {
	MonthlyQuota         Quota
	AllowedModels        []string
	SupportLevel         string
	SLAUptime            string
	CustomModels         bool
	PrioritySupport      bool
	DedicatedSupport     bool
	WhiteGloveOnboarding bool
}

// Allows reports whether model is in the tier's allowed set.
// This is a PURE function.
func (e Entitlements) Allows(model string) bool {
	for _, m := range e.AllowedModels {
		if m == model {
			return true
		}
	}
	return false
}
