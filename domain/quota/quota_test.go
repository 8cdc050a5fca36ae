package quota_test

import (
	"strings"
	"testing"

	"github.com/crowelogic/tiergate/domain/quota"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/domain/usage"
)

func record(calls int64) usage.Record {
	r := usage.Empty("caller", "2024-03")
	r.TotalCalls = calls
	return r
}

func TestCheck_Boundary(t *testing.T) {
	tests := []struct {
		name      string
		used      int64
		limit     tier.Quota
		allowed   bool
		remaining int64
	}{
		{"empty", 0, 1000, true, 1000},
		{"one below", 999, 1000, true, 1},
		{"at limit", 1000, 1000, false, 0},
		{"over limit", 1200, 1000, false, 0},
		{"zero quota", 0, 0, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quota.Check(record(tt.used), tt.limit)
			if got.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", got.Allowed, tt.allowed)
			}
			if got.Remaining != tt.remaining {
				t.Errorf("Remaining = %d, want %d", got.Remaining, tt.remaining)
			}
			if got.Used != tt.used {
				t.Errorf("Used = %d, want %d", got.Used, tt.used)
			}
		})
	}
}

func TestCheck_Unlimited(t *testing.T) {
	got := quota.Check(record(50_000_000), tier.Unlimited)
	if !got.Allowed {
		t.Error("unlimited quota should always allow")
	}
	if got.Remaining != -1 {
		t.Errorf("Remaining = %d, want -1", got.Remaining)
	}
	if got.PercentUsed != 0 {
		t.Errorf("PercentUsed = %f, want 0", got.PercentUsed)
	}
	if got.WarningLevel != quota.WarningNone {
		t.Errorf("WarningLevel = %s, want none", got.WarningLevel)
	}
}

func TestCheck_WarningLevels(t *testing.T) {
	tests := []struct {
		used int64
		want quota.WarningLevel
	}{
		{0, quota.WarningNone},
		{799, quota.WarningNone},
		{800, quota.WarningApproaching},
		{950, quota.WarningCritical},
		{1000, quota.WarningExceeded},
	}
	for _, tt := range tests {
		got := quota.Check(record(tt.used), 1000)
		if got.WarningLevel != tt.want {
			t.Errorf("used=%d WarningLevel = %s, want %s", tt.used, got.WarningLevel, tt.want)
		}
	}
}

func TestPercentUsed(t *testing.T) {
	if got := quota.PercentUsed(250, 1000); got != 25 {
		t.Errorf("PercentUsed(250, 1000) = %f, want 25", got)
	}
	if got := quota.PercentUsed(0, 0); got != 100 {
		t.Errorf("PercentUsed(0, 0) = %f, want 100", got)
	}
	if got := quota.PercentUsed(10, tier.Unlimited); got != 0 {
		t.Errorf("PercentUsed(unlimited) = %f, want 0", got)
	}
}

func TestWarningLevel_String(t *testing.T) {
	if quota.WarningLevel(99).String() != "unknown" {
		t.Error("out of range level should be unknown")
	}
}

func TestQuotaExceededError(t *testing.T) {
	err := &quota.QuotaExceededError{Tier: tier.Freemium, Period: "2024-03", Used: 1000, Quota: 1000}
	if err.Code() != quota.CodeQuotaExceeded {
		t.Errorf("Code() = %s", err.Code())
	}
	msg := err.Error()
	for _, want := range []string{"1000", "2024-03", "freemium"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
