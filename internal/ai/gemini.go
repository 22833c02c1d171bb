package ai

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const (
	defaultGeminiURL = "https://generativelanguage.googleapis.com"
	geminiModel      = "gemini-1.5-flash"
)

// GeminiProvider calls the generateContent API.
type GeminiProvider struct {
	http    *resty.Client
	baseURL string
	apiKey  string
}

// NewGeminiProvider builds the provider. baseURL overrides the API
// endpoint when non-empty.
func NewGeminiProvider(apiKey, baseURL string, client *resty.Client) *GeminiProvider {
	if baseURL == "" {
		baseURL = defaultGeminiURL
	}
	return &GeminiProvider{http: client, baseURL: baseURL, apiKey: apiKey}
}

func (p *GeminiProvider) Name() string { return "gemini" }

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
	CandidateCount  int     `json:"candidateCount"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	var parsed geminiResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(geminiRequest{
			Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
			GenerationConfig: geminiGenConfig{
				MaxOutputTokens: 400,
				Temperature:     0.1,
				CandidateCount:  1,
			},
		}).
		SetResult(&parsed).
		Post(fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, geminiModel))
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("gemini completion: status %d", resp.StatusCode())
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini completion: empty candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
