package app_test

import (
	"context"
	"errors"
	"time"

	"github.com/crowelogic/tiergate/adapters/backend"
	"github.com/crowelogic/tiergate/adapters/clock"
	"github.com/crowelogic/tiergate/adapters/idgen"
	"github.com/crowelogic/tiergate/adapters/memory"
	"github.com/crowelogic/tiergate/app"
	"github.com/crowelogic/tiergate/domain/subscription"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/domain/usage"
	"github.com/rs/zerolog"
)

var baseTime = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	engine  *app.Engine
	gen     *app.GenerateService
	subs    *memory.SubscriptionStore
	ledger  *memory.UsageLedger
	clock   *clock.Fake
	backend *backend.Mock
}

func newTestEnv() *testEnv {
	env := &testEnv{
		subs:    memory.NewSubscriptionStore(),
		ledger:  memory.NewUsageLedger(memory.UsageLedgerConfig{}),
		clock:   clock.NewFake(baseTime),
		backend: backend.NewMock(),
	}
	env.engine = app.NewEngine(app.EngineDeps{
		Subscriptions: env.subs,
		Usage:         env.ledger,
		Clock:         env.clock,
		Logger:        zerolog.Nop(),
	})
	env.gen = app.NewGenerateService(app.GenerateDeps{
		Engine:  env.engine,
		Backend: env.backend,
		Clock:   env.clock,
		IDGen:   idgen.NewSequential("gen_"),
		Logger:  zerolog.Nop(),
	})
	return env
}

func (e *testEnv) subscribe(callerID string, t tier.Tier) {
	if _, err := e.engine.CreateSubscription(context.Background(), callerID, t, ""); err != nil {
		panic(err)
	}
}

// seedUsage writes n calls directly so large quotas can be reached quickly.
func (e *testEnv) seedUsage(callerID, model string, n int64) {
	period := usage.PeriodOf(e.clock.Now())
	if err := e.ledger.Record(context.Background(), callerID, model, period, n, e.clock.Now()); err != nil {
		panic(err)
	}
}

// failingLedger fails every write; reads return empty records.
type failingLedger struct {
	*memory.UsageLedger
}

var errLedgerDown = errors.New("ledger down")

func (failingLedger) Record(context.Context, string, string, usage.Period, int64, time.Time) error {
	return errLedgerDown
}

// brokenStore fails every lookup with a non-NotFound error.
type brokenStore struct {
	*memory.SubscriptionStore
}

var errStoreDown = errors.New("store down")

func (brokenStore) Get(context.Context, string) (subscription.Subscription, error) {
	return subscription.Subscription{}, errStoreDown
}
