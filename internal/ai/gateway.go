package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/icpulse/icnews/internal/config"
	"github.com/icpulse/icnews/internal/logger"
)

// minSummarizableLength is the smallest trimmed body worth sending to a
// model, counted in runes. Shorter articles keep their scraped summary.
const minSummarizableLength = 50

// ErrContentTooShort marks articles skipped before any provider call.
var ErrContentTooShort = errors.New("content too short for summarization")

// ErrNoProviders is returned when no API key is configured.
var ErrNoProviders = errors.New("no summary providers configured")

// Result is one generated summary.
type Result struct {
	Summary     string
	Keywords    []string
	Provider    string
	GeneratedAt time.Time
}

// Gateway tries each provider in order until one returns a usable
// summary. Each provider gets exactly one attempt per article.
type Gateway struct {
	providers     []Provider
	maxContentLen int
	summaryMaxLen int
}

// NewGateway wires an ordered provider chain.
func NewGateway(providers []Provider, maxContentLen, summaryMaxLen int) *Gateway {
	return &Gateway{
		providers:     providers,
		maxContentLen: maxContentLen,
		summaryMaxLen: summaryMaxLen,
	}
}

// BuildProviders creates a provider per configured API key, with the
// preferred provider first and the rest in the default order.
func BuildProviders(cfg *config.Config, client *resty.Client) []Provider {
	var providers []Provider
	if cfg.OpenAIKey != "" {
		providers = append(providers, NewOpenAIProvider(cfg.OpenAIKey, ""))
	}
	if cfg.ClaudeKey != "" {
		providers = append(providers, NewClaudeProvider(cfg.ClaudeKey, "", client))
	}
	if cfg.GeminiKey != "" {
		providers = append(providers, NewGeminiProvider(cfg.GeminiKey, "", client))
	}

	for i, p := range providers {
		if p.Name() == cfg.PreferredAI && i > 0 {
			providers = append([]Provider{p}, append(providers[:i:i], providers[i+1:]...)...)
			break
		}
	}
	return providers
}

// Enabled reports whether any provider is configured.
func (g *Gateway) Enabled() bool { return len(g.providers) > 0 }

// Providers returns the names of the configured chain, in try order.
func (g *Gateway) Providers() []string {
	names := make([]string, len(g.providers))
	for i, p := range g.providers {
		names[i] = p.Name()
	}
	return names
}

// Summarize generates a summary for one article. Provider failures are
// logged and the next provider is tried; an error is returned only when
// the whole chain fails.
func (g *Gateway) Summarize(ctx context.Context, title, content, source string) (Result, error) {
	if !g.Enabled() {
		return Result{}, ErrNoProviders
	}

	if len([]rune(strings.TrimSpace(content))) < minSummarizableLength {
		return Result{}, ErrContentTooShort
	}

	prompt := g.buildPrompt(title, g.truncate(content), source)

	var lastErr error
	for _, p := range g.providers {
		text, err := p.Complete(ctx, prompt)
		if err != nil {
			logger.Error("summary provider failed", "provider", p.Name(), "error", err)
			lastErr = err
			continue
		}

		result := g.parseResponse(text)
		result.Provider = p.Name()
		result.GeneratedAt = time.Now().UTC()
		logger.Info("summary generated", "provider", p.Name(), "title", title)
		return result, nil
	}
	return Result{}, fmt.Errorf("all summary providers failed: %w", lastErr)
}

func (g *Gateway) truncate(content string) string {
	runes := []rune(content)
	if len(runes) > g.maxContentLen {
		return string(runes[:g.maxContentLen]) + "..."
	}
	return content
}

func (g *Gateway) buildPrompt(title, content, source string) string {
	return fmt.Sprintf(`请为以下半导体行业新闻生成一个简洁的概要，要求：

1. 概要长度控制在%d字以内
2. 突出新闻的核心内容和关键信息
3. 使用专业的半导体行业术语
4. 保持客观中性的语调
5. 同时提取3-5个关键词

新闻来源：%s

标题：%s

内容：%s

请按以下JSON格式返回结果：
{
    "summary": "新闻概要内容...",
    "keywords": ["关键词1", "关键词2", "关键词3"]
}`, g.summaryMaxLen, source, title, content)
}

// parseResponse extracts the JSON object between the first "{" and the
// last "}". Responses without a parseable summary field fall back to
// the first line of raw text, truncated to the summary limit.
func (g *Gateway) parseResponse(text string) Result {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		var parsed struct {
			Summary  string   `json:"summary"`
			Keywords []string `json:"keywords"`
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err == nil && parsed.Summary != "" {
			return Result{
				Summary:  strings.TrimSpace(parsed.Summary),
				Keywords: parsed.Keywords,
			}
		}
	}

	line := strings.TrimSpace(text)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	if runes := []rune(line); len(runes) > g.summaryMaxLen {
		line = string(runes[:g.summaryMaxLen])
	}
	return Result{Summary: line}
}
