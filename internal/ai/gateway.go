package ai

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mathpipe/mathpipe/internal/jsonextract"
)

// Gateway binds a provider to the model settings shared by every call in
// a pipeline run.
type Gateway struct {
	provider    Provider
	model       string
	temperature float64
	maxTokens   int
}

// NewGateway creates a gateway around a provider.
func NewGateway(provider Provider, model string, temperature float64, maxTokens int) *Gateway {
	return &Gateway{
		provider:    provider,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Complete sends a single user prompt and returns the completion.
func (g *Gateway) Complete(ctx context.Context, prompt string) (CompletionResponse, error) {
	return g.complete(ctx, prompt, false)
}

// CompleteJSON sends a single user prompt requesting a JSON object and
// normalizes the reply. When the normalized text is valid JSON it is
// returned as the RawMessage; otherwise the RawMessage is nil and the
// caller gets the raw text in the response, matching the recover-not-fail
// contract for malformed replies.
func (g *Gateway) CompleteJSON(ctx context.Context, prompt string) (json.RawMessage, CompletionResponse, error) {
	resp, err := g.complete(ctx, prompt, true)
	if err != nil {
		return nil, CompletionResponse{}, err
	}

	normalized := jsonextract.Normalize(resp.Content)
	if !json.Valid([]byte(normalized)) {
		slog.Warn("model reply is not valid JSON, returning raw text",
			"model", resp.Model,
			"length", len(resp.Content),
		)
		return nil, resp, nil
	}
	return json.RawMessage(normalized), resp, nil
}

func (g *Gateway) complete(ctx context.Context, prompt string, wantJSON bool) (CompletionResponse, error) {
	return g.provider.Complete(ctx, CompletionRequest{
		Messages:     []Message{{Role: "user", Content: prompt}},
		Model:        g.model,
		Temperature:  g.temperature,
		MaxTokens:    g.maxTokens,
		JSONResponse: wantJSON,
	})
}
