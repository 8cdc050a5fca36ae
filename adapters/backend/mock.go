// Package backend provides generation backends and selects one from config.
package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/crowelogic/tiergate/ports"
)

// Mock is an in-process generator that answers deterministically.
// It records every request so tests can assert on what reached the backend.
type Mock struct {
	mu       sync.Mutex
	requests []ports.GenerateRequest

	// Optional: fail if set
	FailError error

	// Latency delays each answer; a cancelled ctx cuts the wait short.
	Latency time.Duration
}

// NewMock creates a mock generator.
func NewMock() *Mock {
	return &Mock{}
}

// Generate returns a canned response derived from the request.
func (m *Mock) Generate(ctx context.Context, req ports.GenerateRequest) (ports.GenerateResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.GenerateResult{}, err
	}
	if m.Latency > 0 {
		timer := time.NewTimer(m.Latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ports.GenerateResult{}, ctx.Err()
		}
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	failErr := m.FailError
	m.mu.Unlock()

	if failErr != nil {
		return ports.GenerateResult{}, failErr
	}

	text := fmt.Sprintf("[%s] %s", req.Model, req.Prompt)
	return ports.GenerateResult{
		Text:         text,
		InputTokens:  len(strings.Fields(req.Prompt)),
		OutputTokens: len(strings.Fields(text)),
	}, nil
}

// Requests returns all requests seen so far.
func (m *Mock) Requests() []ports.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.GenerateRequest(nil), m.requests...)
}

// Count returns the number of requests seen.
func (m *Mock) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Ensure interface compliance.
var _ ports.Generator = (*Mock)(nil)
