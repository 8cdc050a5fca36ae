// Package app provides application services that orchestrate domain logic.
// Services perform I/O through ports and delegate every decision to pure
// domain functions.
package app

import (
	"time"

	"github.com/crowelogic/tiergate/domain/quota"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/domain/usage"
	"github.com/crowelogic/tiergate/ports"
)

// Denial is a typed, expected refusal. Every denial error in the domain
// packages satisfies it.
type Denial interface {
	error
	Code() string
}

// CodeAllowed labels allowed decisions in metrics and logs.
const CodeAllowed = "allowed"

// Decision is the outcome of an access or quota check (value type).
type Decision struct {
	Allowed bool
	Tier    tier.Tier // empty when the caller has no subscription
	Denial  Denial    // nil when Allowed
}

// Err returns the denial as an error, or nil when allowed.
func (d Decision) Err() error {
	if d.Allowed || d.Denial == nil {
		return nil
	}
	return d.Denial
}

// Code returns CodeAllowed or the denial code.
func (d Decision) Code() string {
	if d.Allowed || d.Denial == nil {
		return CodeAllowed
	}
	return d.Denial.Code()
}

func allow(t tier.Tier) Decision {
	return Decision{Allowed: true, Tier: t}
}

func deny(t tier.Tier, d Denial) Decision {
	return Decision{Tier: t, Denial: d}
}

// QuotaDecision is a Decision plus the quota arithmetic behind it.
type QuotaDecision struct {
	Decision
	Period usage.Period
	Result quota.CheckResult
}

// nopMeter discards all instrumentation.
type nopMeter struct{}

func (nopMeter) Decision(string, tier.Tier, string)       {}
func (nopMeter) UsageRecorded(string, int64)              {}
func (nopMeter) UsageRecordFailed()                       {}
func (nopMeter) UsagePruned(int64)                        {}
func (nopMeter) UpgradeRequested(string)                  {}
func (nopMeter) TierChanged(tier.Tier)                    {}
func (nopMeter) BackendCall(string, time.Duration, error) {}

var _ ports.Meter = nopMeter{}

func meterOrNop(m ports.Meter) ports.Meter {
	if m == nil {
		return nopMeter{}
	}
	return m
}
