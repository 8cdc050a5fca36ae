// Package clock supplies the time source quota windows are computed from.
package clock

import (
	"sync"
	"time"

	"github.com/crowelogic/tiergate/domain/usage"
	"github.com/crowelogic/tiergate/ports"
)

// Real reads the wall clock. Periods are UTC calendar months, so the
// location is always UTC.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// Fake is a manually driven clock for tests that cross billing periods.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake starts a fake clock at t, converted to UTC.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t.UTC()}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Period is the billing period the fake time falls in.
func (f *Fake) Period() usage.Period {
	return usage.PeriodOf(f.Now())
}

func (f *Fake) Set(t time.Time) {
	f.update(func(time.Time) time.Time { return t.UTC() })
}

func (f *Fake) Advance(d time.Duration) {
	f.update(func(t time.Time) time.Time { return t.Add(d) })
}

// AdvanceMonths moves n billing periods forward (or back when n is
// negative). The day of month is clamped to the target month's length,
// so Jan 31 plus one month is Feb 28/29 rather than early March.
func (f *Fake) AdvanceMonths(n int) {
	f.update(func(t time.Time) time.Time { return shiftMonths(t, n) })
}

func (f *Fake) update(fn func(time.Time) time.Time) {
	f.mu.Lock()
	f.now = fn(f.now)
	f.mu.Unlock()
}

func shiftMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

var (
	_ ports.Clock = Real{}
	_ ports.Clock = (*Fake)(nil)
)
