package ai

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const (
	defaultClaudeURL = "https://api.anthropic.com"
	claudeModel      = "claude-3-haiku-20240307"
	claudeAPIVersion = "2023-06-01"
)

// ClaudeProvider calls the Anthropic messages API.
type ClaudeProvider struct {
	http    *resty.Client
	baseURL string
}

// NewClaudeProvider builds the provider. baseURL overrides the API
// endpoint when non-empty.
func NewClaudeProvider(apiKey, baseURL string, client *resty.Client) *ClaudeProvider {
	if baseURL == "" {
		baseURL = defaultClaudeURL
	}
	http := client.Clone().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", claudeAPIVersion)
	return &ClaudeProvider{http: http, baseURL: baseURL}
}

func (p *ClaudeProvider) Name() string { return "claude" }

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (p *ClaudeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	var parsed claudeResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(claudeRequest{
			Model:     claudeModel,
			MaxTokens: 300,
			Messages:  []claudeMessage{{Role: "user", Content: prompt}},
		}).
		SetResult(&parsed).
		Post(p.baseURL + "/v1/messages")
	if err != nil {
		return "", fmt.Errorf("claude completion: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("claude completion: status %d", resp.StatusCode())
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("claude completion: empty content")
	}
	return parsed.Content[0].Text, nil
}
