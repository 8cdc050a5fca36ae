package app

import (
	"context"
	"fmt"

	"github.com/crowelogic/tiergate/domain/usage"
	"github.com/crowelogic/tiergate/ports"
	"github.com/rs/zerolog"
)

// UsageRecorder writes consumption into the ledger against the period
// current at call time. Writes are synchronous so a caller's next quota
// check observes them.
type UsageRecorder struct {
	usage  ports.UsageLedger
	clock  ports.Clock
	meter  ports.Meter
	logger zerolog.Logger
}

// NewUsageRecorder creates a usage recorder. meter may be nil.
func NewUsageRecorder(ledger ports.UsageLedger, clock ports.Clock, meter ports.Meter, logger zerolog.Logger) *UsageRecorder {
	return &UsageRecorder{
		usage:  ledger,
		clock:  clock,
		meter:  meterOrNop(meter),
		logger: logger,
	}
}

// Record adds weight calls (default 1) of model for callerID.
func (r *UsageRecorder) Record(ctx context.Context, callerID, model string, weight int64) error {
	now := r.clock.Now()
	weight = usage.NormalizeWeight(weight)

	if err := r.usage.Record(ctx, callerID, model, usage.PeriodOf(now), weight, now); err != nil {
		r.meter.UsageRecordFailed()
		return fmt.Errorf("record usage: %w", err)
	}
	r.meter.UsageRecorded(model, weight)
	return nil
}

// RecordBestEffort records usage after a delivered response. Failures are
// logged and counted but never returned.
func (r *UsageRecorder) RecordBestEffort(ctx context.Context, callerID, model string, weight int64) bool {
	if err := r.Record(ctx, callerID, model, weight); err != nil {
		r.logger.Error().Err(err).
			Str("caller_id", callerID).
			Str("model", model).
			Msg("failed to record usage")
		return false
	}
	return true
}
