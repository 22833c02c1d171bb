package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"

	"github.com/icpulse/icnews/internal/config"
	"github.com/icpulse/icnews/internal/dedup"
	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/model"
	"github.com/icpulse/icnews/internal/textutil"
)

// feedAdapter ingests a structured RSS/Atom feed.
type feedAdapter struct {
	source    config.Source
	parser    *gofeed.Parser
	extractor *Extractor
	opts      Options
}

func newFeedAdapter(source config.Source, client *resty.Client, extractor *Extractor, opts Options) *feedAdapter {
	parser := gofeed.NewParser()
	parser.Client = client.GetClient()
	parser.UserAgent = client.Header.Get("User-Agent")

	return &feedAdapter{
		source:    source,
		parser:    parser,
		extractor: extractor,
		opts:      opts,
	}
}

func (a *feedAdapter) Name() string { return a.source.Name }

// Fetch parses the feed and maps every relevant, unseen entry to an
// article. Entries failing the relevance filter or already present in
// the lookback set are skipped silently.
func (a *feedAdapter) Fetch(ctx context.Context, lb *dedup.Lookback) ([]model.Article, error) {
	feed, err := a.parser.ParseURLWithContext(a.source.Feed, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", a.source.Feed, err)
	}

	var articles []model.Article
	for _, item := range feed.Items {
		title := textutil.CleanText(item.Title)
		link := textutil.NormalizeURL(item.Link, a.source.Feed)
		if title == "" || link == "" {
			continue
		}
		if !textutil.IsRelevant(title, a.opts.TitleMinLength, a.opts.DomainKeywords) {
			continue
		}
		if lb.SeenTitle(title) {
			continue
		}

		summary := textutil.CleanText(item.Description)

		contentSel := ""
		if a.source.Selectors != nil {
			contentSel = a.source.Selectors.Content
		}
		content := textutil.CleanText(item.Content)
		if content == "" {
			if body, ok := a.extractor.Extract(ctx, link, contentSel); ok {
				content = body
			} else {
				content = summary
			}
		}
		if summary == "" {
			summary = textutil.ExtractSummary(content, 500)
		}

		published := time.Now().UTC()
		switch {
		case item.PublishedParsed != nil:
			published = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			published = item.UpdatedParsed.UTC()
		default:
			var matched bool
			if published, matched = textutil.ParseDate(item.Published); !matched && item.Published != "" {
				logger.Warn("unparseable feed date", "source", a.source.Name, "raw", item.Published)
			}
		}

		var author string
		if len(item.Authors) > 0 {
			author = textutil.CleanText(item.Authors[0].Name)
		}

		articles = append(articles, model.Article{
			Title:       title,
			Summary:     summary,
			Content:     content,
			Source:      a.source.Name,
			Author:      author,
			OriginalURL: link,
			PublishedAt: published,
			Category:    textutil.Categorize(title, content),
			Tags:        []string{a.source.Name, "RSS"},
		})
	}

	logger.Info("feed parsed", "source", a.source.Name, "items", len(feed.Items), "kept", len(articles))
	return articles, nil
}
