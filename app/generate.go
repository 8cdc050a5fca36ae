package app

import (
	"context"
	"fmt"
	"time"

	"github.com/crowelogic/tiergate/domain/tier"
	"github.com/crowelogic/tiergate/ports"
	"github.com/rs/zerolog"
)

// Branding attached to every successful generation.
const (
	ProviderName    = "Crowe Logic"
	ProviderTagline = "Logic. Applied."
)

// Generation defaults applied when the request leaves them unset.
const (
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.7
)

// GenerateService runs one metered generation:
// access check -> quota check -> backend call -> usage record.
type GenerateService struct {
	engine  *Engine
	backend ports.Generator
	clock   ports.Clock
	idGen   ports.IDGenerator
	meter   ports.Meter
	logger  zerolog.Logger
}

// GenerateDeps contains dependencies for GenerateService.
type GenerateDeps struct {
	Engine  *Engine
	Backend ports.Generator
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Meter   ports.Meter // optional
	Logger  zerolog.Logger
}

// NewGenerateService creates a generation service.
func NewGenerateService(deps GenerateDeps) *GenerateService {
	return &GenerateService{
		engine:  deps.Engine,
		backend: deps.Backend,
		clock:   deps.Clock,
		idGen:   deps.IDGen,
		meter:   meterOrNop(deps.Meter),
		logger:  deps.Logger,
	}
}

// GenerateInput is one caller request (value type).
type GenerateInput struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature *float64 // nil selects DefaultTemperature
}

// GenerateOutput is a branded, metered generation result.
type GenerateOutput struct {
	ID           string
	Model        string
	Text         string
	Tier         tier.Tier
	InputTokens  int
	OutputTokens int
	Provider     string
	Tagline      string
	UsageTracked bool
	CreatedAt    time.Time
}

// BackendError wraps a generation backend failure.
type BackendError struct {
	Model string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("generation backend failed for %s: %v", e.Model, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// ValidationError reports a malformed generation request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks and defaults a generation request.
// This is a PURE function.
func (in GenerateInput) Validate() (GenerateInput, error) {
	if in.Prompt == "" {
		return in, &ValidationError{Field: "prompt", Message: "is required"}
	}
	if in.Model == "" {
		return in, &ValidationError{Field: "model", Message: "is required"}
	}
	if in.MaxTokens < 0 {
		return in, &ValidationError{Field: "max_tokens", Message: "must not be negative"}
	}
	if in.MaxTokens == 0 {
		in.MaxTokens = DefaultMaxTokens
	}
	if in.Temperature == nil {
		t := DefaultTemperature
		in.Temperature = &t
	}
	if *in.Temperature < 0 || *in.Temperature > 2 {
		return in, &ValidationError{Field: "temperature", Message: "must be between 0 and 2"}
	}
	return in, nil
}

// Generate returns a Denial (as error) when access or quota refuse the call,
// a *BackendError when the backend fails, and a *ValidationError for bad
// input. Usage is recorded only after the backend succeeds; a failed record
// is logged and reported via UsageTracked=false.
func (s *GenerateService) Generate(ctx context.Context, callerID string, in GenerateInput) (GenerateOutput, error) {
	in, err := in.Validate()
	if err != nil {
		return GenerateOutput{}, err
	}

	access, err := s.engine.CheckAccess(ctx, callerID, in.Model)
	if err != nil {
		return GenerateOutput{}, err
	}
	if !access.Allowed {
		return GenerateOutput{}, access.Denial
	}

	q, err := s.engine.CheckQuota(ctx, callerID)
	if err != nil {
		return GenerateOutput{}, err
	}
	if !q.Allowed {
		return GenerateOutput{}, q.Denial
	}

	start := s.clock.Now()
	res, err := s.backend.Generate(ctx, ports.GenerateRequest{
		Prompt:      in.Prompt,
		Model:       in.Model,
		MaxTokens:   in.MaxTokens,
		Temperature: *in.Temperature,
	})
	s.meter.BackendCall(in.Model, s.clock.Now().Sub(start), err)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("caller_id", callerID).
			Str("model", in.Model).
			Msg("generation backend failed")
		return GenerateOutput{}, &BackendError{Model: in.Model, Err: err}
	}

	// The response is already produced; a cancelled request must not skip
	// metering.
	tracked := s.engine.Recorder().RecordBestEffort(context.WithoutCancel(ctx), callerID, in.Model, 1)

	return GenerateOutput{
		ID:           s.idGen.New(),
		Model:        in.Model,
		Text:         res.Text,
		Tier:         access.Tier,
		InputTokens:  res.InputTokens,
		OutputTokens: res.OutputTokens,
		Provider:     ProviderName,
		Tagline:      ProviderTagline,
		UsageTracked: tracked,
		CreatedAt:    s.clock.Now(),
	}, nil
}
