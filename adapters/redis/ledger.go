// Package redis provides a Redis-backed usage ledger for deployments where
// several engine instances share one set of counters.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/crowelogic/tiergate/domain/usage"
	"github.com/crowelogic/tiergate/ports"
	"github.com/redis/go-redis/v9"
)

// Hash fields inside one (caller, period) record.
const (
	fieldTotal   = "_total"
	fieldUpdated = "_updated"
	modelPrefix  = "m:"
)

// Config configures the ledger.
type Config struct {
	// KeyPrefix namespaces every key (default "tiergate:").
	KeyPrefix string

	// TTL expires a record after its last write; zero disables expiry.
	TTL time.Duration
}

// Ledger implements ports.UsageLedger on Redis hashes.
//
// Layout:
//
//	{prefix}usage:{period}:{caller}  hash  _total, _updated, m:{model}...
//	{prefix}usage:periods            set   periods with at least one record
//	{prefix}usage:callers:{period}   set   callers recorded in the period
type Ledger struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New creates a ledger over an existing client.
func New(client redis.UniversalClient, cfg Config) *Ledger {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "tiergate:"
	}
	return &Ledger{client: client, prefix: cfg.KeyPrefix, ttl: cfg.TTL}
}

// Dial parses a redis:// URL, connects and verifies the server with PING.
func Dial(ctx context.Context, url string, cfg Config) (*Ledger, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(client, cfg), nil
}

func (l *Ledger) recordKey(callerID string, period usage.Period) string {
	return l.prefix + "usage:" + string(period) + ":" + callerID
}

func (l *Ledger) periodsKey() string {
	return l.prefix + "usage:periods"
}

func (l *Ledger) callersKey(period usage.Period) string {
	return l.prefix + "usage:callers:" + string(period)
}

// Record adds weight calls of model to (callerID, period) in one MULTI/EXEC.
func (l *Ledger) Record(ctx context.Context, callerID, model string, period usage.Period, weight int64, at time.Time) error {
	weight = usage.NormalizeWeight(weight)
	key := l.recordKey(callerID, period)

	pipe := l.client.TxPipeline()
	pipe.HIncrBy(ctx, key, fieldTotal, weight)
	pipe.HIncrBy(ctx, key, modelPrefix+model, weight)
	pipe.HSet(ctx, key, fieldUpdated, at.UTC().UnixNano())
	pipe.SAdd(ctx, l.periodsKey(), string(period))
	pipe.SAdd(ctx, l.callersKey(period), callerID)
	if l.ttl > 0 {
		pipe.Expire(ctx, key, l.ttl)
		pipe.Expire(ctx, l.callersKey(period), l.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record usage: %w", err)
	}
	return nil
}

// Usage returns the record for (callerID, period).
func (l *Ledger) Usage(ctx context.Context, callerID string, period usage.Period) (usage.Record, error) {
	fields, err := l.client.HGetAll(ctx, l.recordKey(callerID, period)).Result()
	if err != nil {
		return usage.Record{}, fmt.Errorf("redis get usage: %w", err)
	}

	rec := usage.Empty(callerID, period)
	for field, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return usage.Record{}, fmt.Errorf("redis usage field %s: %w", field, err)
		}
		switch {
		case field == fieldTotal:
			rec.TotalCalls = n
		case field == fieldUpdated:
			rec.LastUpdated = time.Unix(0, n).UTC()
		case strings.HasPrefix(field, modelPrefix):
			rec.ModelsUsed[strings.TrimPrefix(field, modelPrefix)] = n
		}
	}
	return rec, nil
}

// Prune deletes every record whose period is strictly before cutoff.
func (l *Ledger) Prune(ctx context.Context, cutoff usage.Period) (int64, error) {
	periods, err := l.client.SMembers(ctx, l.periodsKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis list periods: %w", err)
	}

	var removed int64
	for _, p := range periods {
		period := usage.Period(p)
		if !period.Before(cutoff) {
			continue
		}

		callers, err := l.client.SMembers(ctx, l.callersKey(period)).Result()
		if err != nil {
			return removed, fmt.Errorf("redis list callers: %w", err)
		}

		keys := make([]string, 0, len(callers)+1)
		for _, c := range callers {
			keys = append(keys, l.recordKey(c, period))
		}
		if len(keys) > 0 {
			n, err := l.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis delete usage: %w", err)
			}
			removed += n
		}

		pipe := l.client.TxPipeline()
		pipe.Del(ctx, l.callersKey(period))
		pipe.SRem(ctx, l.periodsKey(), p)
		if _, err := pipe.Exec(ctx); err != nil {
			return removed, fmt.Errorf("redis drop period index: %w", err)
		}
	}
	return removed, nil
}

// HealthCheck pings the Redis server.
func (l *Ledger) HealthCheck(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (l *Ledger) Close() error {
	return l.client.Close()
}

// Ensure interface compliance.
var _ ports.UsageLedger = (*Ledger)(nil)
