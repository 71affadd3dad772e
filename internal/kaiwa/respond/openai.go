package respond

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bdobrica/Kaiwa/common/redact"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultModel     = "gpt-4o-mini"
	defaultTimeout   = 20 * time.Second
	defaultMaxTokens = 512
)

// OpenAIConfig configures the OpenAI-compatible completion provider.
type OpenAIConfig struct {
	// APIKey is the bearer token used to authenticate against the API.
	APIKey string

	// BaseURL overrides the API endpoint.  Useful for local models (Ollama),
	// Azure OpenAI, or any other OpenAI-compatible endpoint.
	// Defaults to https://api.openai.com/v1 when empty.
	BaseURL string

	// Model is the chat model to use. Defaults to gpt-4o-mini when empty.
	Model string

	// Timeout is the HTTP request timeout. Defaults to 20 s. Each call is
	// attempted exactly once.
	Timeout time.Duration

	// MaxTokens caps the completion length. Defaults to 512.
	MaxTokens int
}

// OpenAIResponder implements Responder using the OpenAI chat completions API.
type OpenAIResponder struct {
	cfg    OpenAIConfig
	client *http.Client
}

// NewOpenAIResponder returns a Responder backed by the OpenAI (or compatible)
// chat API. The returned responder is safe for concurrent use.
func NewOpenAIResponder(cfg OpenAIConfig) *OpenAIResponder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &OpenAIResponder{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// --- minimal OpenAI wire types ---

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiRequest struct {
	Model     string       `json:"model"`
	Messages  []oaiMessage `json:"messages"`
	MaxTokens int          `json:"max_tokens,omitempty"`
}

type oaiResponse struct {
	Choices []oaiChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type oaiChoice struct {
	Message      oaiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

// Complete sends the prompts to the LLM and returns the completion text.
func (r *OpenAIResponder) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := oaiRequest{
		Model: r.cfg.Model,
		Messages: []oaiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens: r.cfg.MaxTokens,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("respond: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.cfg.BaseURL+"/chat/completions",
		bytes.NewReader(data),
	)
	if err != nil {
		return "", fmt.Errorf("respond: create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("respond: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("respond: read response body: %w", err)
	}

	var oaiResp oaiResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return "", fmt.Errorf("respond: decode API response: %w", err)
	}

	if oaiResp.Error != nil {
		// Upstream error bodies can echo request headers; keep the bearer
		// key out of anything the caller might log.
		msg := redact.String(oaiResp.Error.Message, r.cfg.APIKey)
		return "", fmt.Errorf("respond: API error (%s): %s", oaiResp.Error.Type, msg)
	}

	if len(oaiResp.Choices) == 0 {
		return "", fmt.Errorf("respond: no choices returned (HTTP %d)", resp.StatusCode)
	}

	return oaiResp.Choices[0].Message.Content, nil
}

// Compile-time interface satisfaction check.
var _ Responder = (*OpenAIResponder)(nil)
