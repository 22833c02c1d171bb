// Package scraper fetches candidate articles from the configured sources
// and recovers full article text from permalinks.
package scraper

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/icpulse/icnews/internal/config"
	"github.com/icpulse/icnews/internal/dedup"
	"github.com/icpulse/icnews/internal/model"
)

// Adapter fetches candidate articles from one configured source. The
// lookback set is consulted so that already-seen titles are rejected
// before any further processing.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, lb *dedup.Lookback) ([]model.Article, error)
}

// Options carries the shared knobs for all adapters.
type Options struct {
	TitleMinLength int
	DomainKeywords []string
}

// NewAdapter builds the right adapter variant for a source config entry.
func NewAdapter(source config.Source, client *resty.Client, extractor *Extractor, opts Options) (Adapter, error) {
	switch {
	case source.IsFeed():
		return newFeedAdapter(source, client, extractor, opts), nil
	case source.URL != "" && source.Selectors != nil:
		return newHTMLAdapter(source, client, extractor, opts), nil
	default:
		return nil, fmt.Errorf("source %q: neither feed nor html selectors configured", source.Name)
	}
}
