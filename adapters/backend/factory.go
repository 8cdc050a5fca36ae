package backend

import (
	"fmt"
	"time"

	"github.com/crowelogic/tiergate/adapters/remote"
	"github.com/crowelogic/tiergate/ports"
)

// Config selects and configures a generation backend.
type Config struct {
	Kind    string // "mock" or "remote"
	URL     string
	APIKey  string
	Timeout time.Duration
	Headers map[string]string
	Latency time.Duration // mock only
}

// New creates a generator based on cfg.
func New(cfg Config) (ports.Generator, error) {
	switch cfg.Kind {
	case "remote":
		if cfg.URL == "" {
			return nil, fmt.Errorf("remote backend url is required")
		}
		client := remote.NewClient(remote.ClientConfig{
			BaseURL: cfg.URL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
			Headers: cfg.Headers,
		})
		return remote.NewGenerator(client), nil

	case "mock", "":
		m := NewMock()
		m.Latency = cfg.Latency
		return m, nil

	default:
		return nil, fmt.Errorf("unknown backend kind: %s", cfg.Kind)
	}
}
