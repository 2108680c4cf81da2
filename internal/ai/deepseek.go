package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultEndpoint = "https://api.deepseek.com/v1/chat/completions"

// DeepSeekProvider implements Provider against the DeepSeek chat
// completions API (OpenAI-compatible).
type DeepSeekProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// DeepSeekOption configures a DeepSeekProvider.
type DeepSeekOption func(*DeepSeekProvider)

// WithEndpoint sets the full chat-completions endpoint URL.
func WithEndpoint(url string) DeepSeekOption {
	return func(p *DeepSeekProvider) {
		p.endpoint = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) DeepSeekOption {
	return func(p *DeepSeekProvider) {
		p.client = client
	}
}

// NewDeepSeekProvider creates a provider for the DeepSeek API.
func NewDeepSeekProvider(apiKey string, opts ...DeepSeekOption) *DeepSeekProvider {
	p := &DeepSeekProvider{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// deepseekRequest is the request body for the chat completions API.
type deepseekRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	Temperature    *float64          `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

// deepseekResponse is the response from the chat completions API.
type deepseekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *DeepSeekProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = "deepseek-chat"
	}

	dsReq := deepseekRequest{
		Model:    model,
		Messages: req.Messages,
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		dsReq.Temperature = &temp
	}
	if req.MaxTokens > 0 {
		dsReq.MaxTokens = req.MaxTokens
	}
	if req.JSONResponse {
		dsReq.ResponseFormat = map[string]string{"type": "json_object"}
	}

	body, err := json.Marshal(dsReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return CompletionResponse{}, fmt.Errorf("deepseek api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var dsResp deepseekResponse
	if err := json.Unmarshal(respBody, &dsResp); err != nil {
		return CompletionResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(dsResp.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("no choices in response")
	}

	return CompletionResponse{
		Content:      dsResp.Choices[0].Message.Content,
		Model:        dsResp.Model,
		InputTokens:  dsResp.Usage.PromptTokens,
		OutputTokens: dsResp.Usage.CompletionTokens,
	}, nil
}

func (p *DeepSeekProvider) HealthCheck(ctx context.Context) error {
	// The completions endpoint is the only URL we are given, so probe
	// the API root derived from it.
	base := p.endpoint
	if i := strings.Index(base, "/chat/completions"); i > 0 {
		base = base[:i]
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
