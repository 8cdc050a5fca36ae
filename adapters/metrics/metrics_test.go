package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/crowelogic/tiergate/adapters/metrics"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m.RequestsTotal == nil || m.Decisions == nil || m.UsageCalls == nil {
		t.Fatal("collector has nil metrics")
	}

	m.Decision("quota", tier.Freemium, "quota_exceeded")
	m.UsageRecorded("crowe-logic-assistant", 3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"tiergate_decisions_total", "tiergate_usage_recorded_total"} {
		if !names[want] {
			t.Errorf("metric %s not gathered", want)
		}
	}
}

func TestCounters(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	m.UsageRecordFailed()
	m.UsageRecordFailed()
	if got := testutil.ToFloat64(m.UsageRecordFailures); got != 2 {
		t.Errorf("UsageRecordFailures = %v, want 2", got)
	}

	m.UpgradeRequested("not_an_upgrade")
	if got := testutil.ToFloat64(m.UpgradeRequests.WithLabelValues("not_an_upgrade")); got != 1 {
		t.Errorf("UpgradeRequests = %v, want 1", got)
	}
}

func TestNewWithRegistry_Isolated(t *testing.T) {
	// Two collectors on separate registries must not collide.
	metrics.NewWithRegistry(prometheus.NewRegistry())
	metrics.NewWithRegistry(prometheus.NewRegistry())
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 429: "4xx", 502: "5xx"}
	for status, want := range tests {
		if got := metrics.StatusClass(status); got != want {
			t.Errorf("StatusClass(%d) = %s, want %s", status, got, want)
		}
	}
}

func TestDecision_NoTier(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	m.Decision("access", "", "no_subscription")

	if got := testutil.ToFloat64(m.Decisions.WithLabelValues("access", "none", "no_subscription")); got != 1 {
		t.Errorf("Decisions{tier=none} = %v, want 1", got)
	}
}

func TestBackendCall(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	m.BackendCall("m1", 20*time.Millisecond, nil)
	m.BackendCall("m1", 30*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.BackendErrors.WithLabelValues("m1")); got != 1 {
		t.Errorf("BackendErrors = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.BackendDuration); got != 1 {
		t.Errorf("BackendDuration series = %d, want 1", got)
	}
}
