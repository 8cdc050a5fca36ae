package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/crowelogic/tiergate/ports"
)

// Generator forwards generation calls to an external service.
//
// API Contract:
//
//	POST /generate
//	Request:  {"prompt": "...", "model": "...", "max_tokens": 1000, "temperature": 0.7}
//	Response: {"text": "...", "input_tokens": 12, "output_tokens": 240}
type Generator struct {
	client *Client
}

// NewGenerator creates a remote generation backend.
func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Text         string `json:"text"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// Generate implements ports.Generator.
func (g *Generator) Generate(ctx context.Context, req ports.GenerateRequest) (ports.GenerateResult, error) {
	var resp generateResponse
	err := g.client.Request(ctx, http.MethodPost, "/generate", generateRequest{
		Prompt:      req.Prompt,
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}, &resp)
	if err != nil {
		return ports.GenerateResult{}, fmt.Errorf("remote generate: %w", err)
	}

	return ports.GenerateResult{
		Text:         resp.Text,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

// Ensure interface compliance.
var _ ports.Generator = (*Generator)(nil)
