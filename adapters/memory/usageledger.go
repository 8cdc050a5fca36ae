package memory

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/crowelogic/tiergate/domain/usage"
	"github.com/crowelogic/tiergate/ports"
)

// ledgerShard is a single shard of the usage ledger.
type ledgerShard struct {
	mu      sync.RWMutex
	records map[ledgerKey]usage.Record
}

type ledgerKey struct {
	callerID string
	period   usage.Period
}

// UsageLedger is a sharded in-memory implementation of ports.UsageLedger.
// Sharding by caller reduces lock contention under concurrent recording.
type UsageLedger struct {
	shards    []*ledgerShard
	numShards int
}

// UsageLedgerConfig configures the usage ledger.
type UsageLedgerConfig struct {
	NumShards int // Number of shards (default: 32)
}

// NewUsageLedger creates a new sharded in-memory usage ledger.
func NewUsageLedger(cfg UsageLedgerConfig) *UsageLedger {
	if cfg.NumShards <= 0 {
		cfg.NumShards = 32
	}

	l := &UsageLedger{
		shards:    make([]*ledgerShard, cfg.NumShards),
		numShards: cfg.NumShards,
	}
	for i := range l.shards {
		l.shards[i] = &ledgerShard{records: make(map[ledgerKey]usage.Record)}
	}
	return l
}

// getShard returns the shard owning callerID. All periods of one caller live
// in the same shard.
func (l *UsageLedger) getShard(callerID string) *ledgerShard {
	h := fnv.New32a()
	h.Write([]byte(callerID))
	return l.shards[h.Sum32()%uint32(l.numShards)]
}

// Record atomically adds weight calls of model to (callerID, period).
func (l *UsageLedger) Record(ctx context.Context, callerID, model string, period usage.Period, weight int64, at time.Time) error {
	k := ledgerKey{callerID: callerID, period: period}
	shard := l.getShard(callerID)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	rec, ok := shard.records[k]
	if !ok {
		rec = usage.Empty(callerID, period)
	}
	shard.records[k] = usage.Add(rec, model, weight, at.UTC())
	return nil
}

// Usage returns a copy of the record for (callerID, period).
func (l *UsageLedger) Usage(ctx context.Context, callerID string, period usage.Period) (usage.Record, error) {
	k := ledgerKey{callerID: callerID, period: period}
	shard := l.getShard(callerID)

	shard.mu.RLock()
	rec, ok := shard.records[k]
	shard.mu.RUnlock()

	if !ok {
		return usage.Empty(callerID, period), nil
	}
	return rec.Clone(), nil
}

// Prune removes all records for periods strictly before cutoff.
func (l *UsageLedger) Prune(ctx context.Context, cutoff usage.Period) (int64, error) {
	var removed int64
	for _, shard := range l.shards {
		shard.mu.Lock()
		for k := range shard.records {
			if k.period.Before(cutoff) {
				delete(shard.records, k)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed, nil
}

// Len returns the number of (caller, period) records (for testing).
func (l *UsageLedger) Len() int {
	total := 0
	for _, shard := range l.shards {
		shard.mu.RLock()
		total += len(shard.records)
		shard.mu.RUnlock()
	}
	return total
}

// Ensure interface compliance.
var _ ports.UsageLedger = (*UsageLedger)(nil)
