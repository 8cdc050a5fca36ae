package app_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/crowelogic/tiergate/adapters/backend"
	"github.com/crowelogic/tiergate/adapters/clock"
	"github.com/crowelogic/tiergate/adapters/idgen"
	"github.com/crowelogic/tiergate/adapters/memory"
	"github.com/crowelogic/tiergate/adapters/sqlite"
	"github.com/crowelogic/tiergate/app"
	"github.com/crowelogic/tiergate/domain/entitlement"
	"github.com/crowelogic/tiergate/domain/quota"
	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/ports"
	"github.com/rs/zerolog"
)

func TestGenerate_Success(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.subscribe("c1", tier.Professional)

	out, err := env.gen.Generate(ctx, "c1", app.GenerateInput{
		Prompt: "plan the launch",
		Model:  tier.ModelAgent,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out.Provider != "Crowe Logic" || out.Tagline != "Logic. Applied." {
		t.Errorf("branding = %s / %s", out.Provider, out.Tagline)
	}
	if !out.UsageTracked {
		t.Error("UsageTracked = false")
	}
	if out.ID != "gen_1" || out.Tier != tier.Professional {
		t.Errorf("ID/Tier = %s/%s", out.ID, out.Tier)
	}

	req := env.backend.Requests()[0]
	if req.MaxTokens != app.DefaultMaxTokens || req.Temperature != app.DefaultTemperature {
		t.Errorf("defaults not applied: %+v", req)
	}

	s, _ := env.engine.UsageSummary(ctx, "c1")
	if s.CallsUsed != 1 || s.ModelsUsed[tier.ModelAgent] != 1 {
		t.Errorf("usage after generate = %+v", s)
	}
}

func TestGenerate_AccessBeforeQuota(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.subscribe("free", tier.Freemium)
	env.seedUsage("free", tier.ModelAssistant, 1000)

	// Both checks would deny; access is evaluated first.
	_, err := env.gen.Generate(ctx, "free", app.GenerateInput{Prompt: "x", Model: tier.ModelGlobal})
	var denied *entitlement.ModelNotEntitledError
	if !errors.As(err, &denied) {
		t.Errorf("error = %v, want ModelNotEntitledError", err)
	}

	_, err = env.gen.Generate(ctx, "free", app.GenerateInput{Prompt: "x", Model: tier.ModelAssistant})
	var exceeded *quota.QuotaExceededError
	if !errors.As(err, &exceeded) {
		t.Errorf("error = %v, want QuotaExceededError", err)
	}

	if env.backend.Count() != 0 {
		t.Error("backend called for denied requests")
	}
	s, _ := env.engine.UsageSummary(ctx, "free")
	if s.CallsUsed != 1000 {
		t.Errorf("denied requests changed usage to %d", s.CallsUsed)
	}
}

func TestGenerate_BackendFailureNotRecorded(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.subscribe("c1", tier.Essentials)
	env.backend.FailError = errors.New("model offline")

	_, err := env.gen.Generate(ctx, "c1", app.GenerateInput{Prompt: "x", Model: tier.ModelAnalytics})
	var be *app.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v, want *BackendError", err)
	}
	if be.Model != tier.ModelAnalytics {
		t.Errorf("Model = %s", be.Model)
	}

	s, _ := env.engine.UsageSummary(ctx, "c1")
	if s.CallsUsed != 0 {
		t.Errorf("failed generation was recorded: %d", s.CallsUsed)
	}
}

func TestGenerate_RecordFailureDoesNotFailResponse(t *testing.T) {
	subs := memory.NewSubscriptionStore()
	clk := clock.NewFake(baseTime)
	engine := app.NewEngine(app.EngineDeps{
		Subscriptions: subs,
		Usage:         failingLedger{memory.NewUsageLedger(memory.UsageLedgerConfig{})},
		Clock:         clk,
		Logger:        zerolog.Nop(),
	})
	gen := app.NewGenerateService(app.GenerateDeps{
		Engine:  engine,
		Backend: backend.NewMock(),
		Clock:   clk,
		IDGen:   idgen.UUID{},
		Logger:  zerolog.Nop(),
	})
	ctx := context.Background()
	engine.CreateSubscription(ctx, "c1", tier.Freemium, "")

	out, err := gen.Generate(ctx, "c1", app.GenerateInput{Prompt: "hi", Model: tier.ModelAssistant})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out.UsageTracked {
		t.Error("UsageTracked should be false when the ledger write fails")
	}
	if out.Text == "" {
		t.Error("response text should still be delivered")
	}
}

// cancellingBackend cancels the request context after producing text, as a
// client disconnect or handler timeout would.
type cancellingBackend struct {
	cancel context.CancelFunc
}

func (b cancellingBackend) Generate(ctx context.Context, req ports.GenerateRequest) (ports.GenerateResult, error) {
	b.cancel()
	return ports.GenerateResult{Text: "ok"}, nil
}

func TestGenerate_RecordsAfterRequestCancelled(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "tiergate.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	clk := clock.NewFake(baseTime)
	engine := app.NewEngine(app.EngineDeps{
		Subscriptions: sqlite.NewSubscriptionStore(db),
		Usage:         sqlite.NewUsageLedger(db),
		Clock:         clk,
		Logger:        zerolog.Nop(),
	})
	if _, err := engine.CreateSubscription(context.Background(), "c1", tier.Freemium, ""); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gen := app.NewGenerateService(app.GenerateDeps{
		Engine:  engine,
		Backend: cancellingBackend{cancel: cancel},
		Clock:   clk,
		IDGen:   idgen.NewSequential("gen_"),
		Logger:  zerolog.Nop(),
	})

	out, err := gen.Generate(ctx, "c1", app.GenerateInput{Prompt: "hi", Model: tier.ModelAssistant})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !out.UsageTracked {
		t.Error("UsageTracked = false after the request was cancelled")
	}

	s, err := engine.UsageSummary(context.Background(), "c1")
	if err != nil {
		t.Fatalf("UsageSummary: %v", err)
	}
	if s.CallsUsed != 1 {
		t.Errorf("CallsUsed = %d, want 1", s.CallsUsed)
	}
}

func TestGenerateInput_Validate(t *testing.T) {
	hot := 3.0
	tests := []struct {
		name  string
		in    app.GenerateInput
		field string
	}{
		{"missing prompt", app.GenerateInput{Model: "m"}, "prompt"},
		{"missing model", app.GenerateInput{Prompt: "p"}, "model"},
		{"negative tokens", app.GenerateInput{Prompt: "p", Model: "m", MaxTokens: -1}, "max_tokens"},
		{"temperature range", app.GenerateInput{Prompt: "p", Model: "m", Temperature: &hot}, "temperature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Validate()
			var ve *app.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("Validate() = %v, want field %s", err, tt.field)
			}
		})
	}

	zero := 0.0
	out, err := app.GenerateInput{Prompt: "p", Model: "m", MaxTokens: 50, Temperature: &zero}.Validate()
	if err != nil {
		t.Fatal(err)
	}
	if out.MaxTokens != 50 || *out.Temperature != 0 {
		t.Errorf("explicit values overwritten: %+v", out)
	}
}

func TestDecision_Code(t *testing.T) {
	if (app.Decision{Allowed: true}).Code() != app.CodeAllowed {
		t.Error("allowed decision code")
	}
	d := app.Decision{Denial: &quota.QuotaExceededError{}}
	if d.Code() != quota.CodeQuotaExceeded || d.Err() == nil {
		t.Errorf("denied decision = %s / %v", d.Code(), d.Err())
	}
}
