package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crowelogic/tiergate/domain/usage"
	"github.com/crowelogic/tiergate/ports"
)

// UsageLedger implements ports.UsageLedger using SQLite for persistence.
// Counters survive restarts; increments are single-statement upserts so
// concurrent writers never lose updates.
type UsageLedger struct {
	db *DB
}

// NewUsageLedger creates a new SQLite usage ledger.
func NewUsageLedger(db *DB) *UsageLedger {
	return &UsageLedger{db: db}
}

// Record adds weight calls of model to (callerID, period).
func (l *UsageLedger) Record(ctx context.Context, callerID, model string, period usage.Period, weight int64, at time.Time) error {
	weight = usage.NormalizeWeight(weight)

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO usage_periods (caller_id, period, total_calls, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(caller_id, period) DO UPDATE SET
			total_calls = total_calls + excluded.total_calls,
			last_updated = excluded.last_updated
	`, callerID, string(period), weight, at.UTC())
	if err != nil {
		return fmt.Errorf("increment period: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO usage_models (caller_id, period, model, calls)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(caller_id, period, model) DO UPDATE SET
			calls = calls + excluded.calls
	`, callerID, string(period), model, weight)
	if err != nil {
		return fmt.Errorf("increment model: %w", err)
	}

	return tx.Commit()
}

// Usage returns the record for (callerID, period).
func (l *UsageLedger) Usage(ctx context.Context, callerID string, period usage.Period) (usage.Record, error) {
	rec := usage.Empty(callerID, period)

	err := l.db.QueryRowContext(ctx, `
		SELECT total_calls, last_updated
		FROM usage_periods
		WHERE caller_id = ? AND period = ?
	`, callerID, string(period)).Scan(&rec.TotalCalls, &rec.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		return usage.Record{}, fmt.Errorf("get usage: %w", err)
	}
	rec.LastUpdated = rec.LastUpdated.UTC()

	rows, err := l.db.QueryContext(ctx, `
		SELECT model, calls
		FROM usage_models
		WHERE caller_id = ? AND period = ?
	`, callerID, string(period))
	if err != nil {
		return usage.Record{}, fmt.Errorf("get model usage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var model string
		var calls int64
		if err := rows.Scan(&model, &calls); err != nil {
			return usage.Record{}, fmt.Errorf("scan model usage: %w", err)
		}
		rec.ModelsUsed[model] = calls
	}
	return rec, rows.Err()
}

// Prune removes all records for periods strictly before cutoff.
func (l *UsageLedger) Prune(ctx context.Context, cutoff usage.Period) (int64, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM usage_models WHERE period < ?`, string(cutoff)); err != nil {
		return 0, fmt.Errorf("prune model usage: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM usage_periods WHERE period < ?`, string(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune usage: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return removed, nil
}

// Ensure interface compliance.
var _ ports.UsageLedger = (*UsageLedger)(nil)
