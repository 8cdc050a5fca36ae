package tier

import (
	"fmt"
	"sort"
)

// Model identifiers served by the platform.
const (
	ModelAnalytics    = "crowe-logic-analytics"
	ModelAssistant    = "crowe-logic-assistant"
	ModelDevelopment  = "crowe-logic-development"
	ModelCreative     = "crowe-logic-creative"
	ModelIntelligence = "crowe-logic-intelligence"
	ModelResearch     = "crowe-logic-research"
	ModelAgent        = "crowe-logic-agent"
	ModelGlobal       = "crowe-logic-global"
	ModelCustom       = "crowe-logic-custom"
)

// Currency is the unit all catalog prices are expressed in.
const Currency = "USD"

// Entry binds one tier to its entitlements and monthly price.
type Entry struct {
	Tier         Tier
	PriceMonthly int64 // cents
	Entitlements Entitlements
}

// Catalog is the static Tier -> Entitlements/price table.
// A Catalog is immutable once built and safe for concurrent use.
type Catalog struct {
	entries map[Tier]Entry
}

// NewCatalog builds a catalog from entries. Every enumerated tier must have
// exactly one entry and prices must be non-negative.
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{entries: make(map[Tier]Entry, len(entries))}
	for _, e := range entries {
		if !e.Tier.Valid() {
			return nil, fmt.Errorf("catalog: unknown tier %q", e.Tier)
		}
		if _, dup := c.entries[e.Tier]; dup {
			return nil, fmt.Errorf("catalog: duplicate entry for tier %q", e.Tier)
		}
		if e.PriceMonthly < 0 {
			return nil, fmt.Errorf("catalog: negative price for tier %q", e.Tier)
		}
		e.Entitlements.AllowedModels = append([]string(nil), e.Entitlements.AllowedModels...)
		c.entries[e.Tier] = e
	}
	for _, t := range ordered {
		if _, ok := c.entries[t]; !ok {
			return nil, fmt.Errorf("catalog: missing entry for tier %q", t)
		}
	}
	return c, nil
}

// MustCatalog is NewCatalog that panics on an incomplete table.
func MustCatalog(entries []Entry) *Catalog {
	c, err := NewCatalog(entries)
	if err != nil {
		panic(err)
	}
	return c
}

// Entitlements returns the entitlements for t.
// Panics if t is not an enumerated tier.
func (c *Catalog) Entitlements(t Tier) Entitlements {
	e := c.entry(t).Entitlements
	e.AllowedModels = append([]string(nil), e.AllowedModels...)
	return e
}

// Price returns the monthly price for t in cents.
// Panics if t is not an enumerated tier.
func (c *Catalog) Price(t Tier) int64 {
	return c.entry(t).PriceMonthly
}

// Entries returns one entry per tier in ascending tier order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(ordered))
	for _, t := range ordered {
		e := c.entries[t]
		e.Entitlements = c.Entitlements(t)
		out = append(out, e)
	}
	return out
}

// LowestTierFor returns the lowest tier whose model set includes model.
func (c *Catalog) LowestTierFor(model string) (Tier, bool) {
	for _, t := range ordered {
		if c.entries[t].Entitlements.Allows(model) {
			return t, true
		}
	}
	return "", false
}

// Models returns every model offered by at least one tier, sorted.
func (c *Catalog) Models() []string {
	seen := make(map[string]bool)
	for _, e := range c.entries {
		for _, m := range e.Entitlements.AllowedModels {
			seen[m] = true
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) entry(t Tier) Entry {
	e, ok := c.entries[t]
	if !ok {
		panic(fmt.Sprintf("tier: no catalog entry for %q", t))
	}
	return e
}

var enterpriseModels = []string{
	ModelAnalytics,
	ModelDevelopment,
	ModelCreative,
	ModelIntelligence,
	ModelAssistant,
	ModelGlobal,
	ModelResearch,
	ModelCustom,
}

// DefaultEntries is the production tier table.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Tier:         Freemium,
			PriceMonthly: 0,
			Entitlements: Entitlements{
				MonthlyQuota:  1000,
				AllowedModels: []string{ModelAssistant},
				SupportLevel:  "community",
				SLAUptime:     "99.0%",
			},
		},
		{
			Tier:         Essentials,
			PriceMonthly: 99_00,
			Entitlements: Entitlements{
				MonthlyQuota:  10000,
				AllowedModels: []string{ModelAnalytics, ModelAssistant, ModelDevelopment},
				SupportLevel:  "email",
				SLAUptime:     "99.9%",
			},
		},
		{
			Tier:         Professional,
			PriceMonthly: 499_00,
			Entitlements: Entitlements{
				MonthlyQuota: 100000,
				AllowedModels: []string{
					ModelAnalytics,
					ModelDevelopment,
					ModelCreative,
					ModelIntelligence,
					ModelAssistant,
					ModelResearch,
					ModelAgent,
				},
				SupportLevel:    "priority",
				SLAUptime:       "99.95%",
				CustomModels:    true, // limited
				PrioritySupport: true,
			},
		},
		{
			Tier:         Enterprise,
			PriceMonthly: 2499_00,
			Entitlements: Entitlements{
				MonthlyQuota:         1000000,
				AllowedModels:        enterpriseModels,
				SupportLevel:         "dedicated",
				SLAUptime:            "99.99%",
				CustomModels:         true,
				PrioritySupport:      true,
				DedicatedSupport:     true,
				WhiteGloveOnboarding: true,
			},
		},
		{
			Tier:         EnterprisePlus,
			PriceMonthly: 9999_00,
			Entitlements: Entitlements{
				MonthlyQuota:         Unlimited,
				AllowedModels:        enterpriseModels,
				SupportLevel:         "white_glove",
				SLAUptime:            "99.999%",
				CustomModels:         true,
				PrioritySupport:      true,
				DedicatedSupport:     true,
				WhiteGloveOnboarding: true,
			},
		},
	}
}

var defaultCatalog = MustCatalog(DefaultEntries())

// Default returns the process-wide production catalog.
func Default() *Catalog {
	return defaultCatalog
}
