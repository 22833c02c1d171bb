package scraper

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/icpulse/icnews/internal/config"
	"github.com/icpulse/icnews/internal/dedup"
	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/model"
	"github.com/icpulse/icnews/internal/textutil"
)

// htmlAdapter scrapes an HTML listing page with per-source selectors.
type htmlAdapter struct {
	source    config.Source
	client    *resty.Client
	extractor *Extractor
	opts      Options
}

func newHTMLAdapter(source config.Source, client *resty.Client, extractor *Extractor, opts Options) *htmlAdapter {
	return &htmlAdapter{
		source:    source,
		client:    client,
		extractor: extractor,
		opts:      opts,
	}
}

func (a *htmlAdapter) Name() string { return a.source.Name }

// Fetch loads the listing page and walks the configured list selector.
// Elements missing a title or a link are skipped without failing the
// source.
func (a *htmlAdapter) Fetch(ctx context.Context, lb *dedup.Lookback) ([]model.Article, error) {
	doc, err := fetchDocument(ctx, a.client, a.source.URL)
	if err != nil {
		return nil, err
	}

	sel := a.source.Selectors
	var articles []model.Article

	doc.Find(sel.List).Each(func(_ int, item *goquery.Selection) {
		title := textutil.CleanText(item.Find(sel.Title).First().Text())
		if title == "" {
			return
		}

		link := a.itemLink(item)
		if link == "" {
			return
		}

		if !textutil.IsRelevant(title, a.opts.TitleMinLength, a.opts.DomainKeywords) {
			return
		}
		if lb.SeenTitle(title) {
			return
		}

		summary := ""
		if sel.Summary != "" {
			summary = textutil.CleanText(item.Find(sel.Summary).First().Text())
		}

		published := time.Now().UTC()
		if sel.Date != "" {
			raw := textutil.CleanText(item.Find(sel.Date).First().Text())
			var matched bool
			if published, matched = textutil.ParseDate(raw); !matched && raw != "" {
				logger.Warn("unparseable listing date", "source", a.source.Name, "raw", raw)
			}
		}

		content := summary
		if body, ok := a.extractor.Extract(ctx, link, sel.Content); ok {
			content = body
		}
		if summary == "" {
			summary = textutil.ExtractSummary(content, 500)
		}

		articles = append(articles, model.Article{
			Title:       title,
			Summary:     summary,
			Content:     content,
			Source:      a.source.Name,
			OriginalURL: link,
			PublishedAt: published,
			Category:    textutil.Categorize(title, content),
			Tags:        []string{a.source.Name, "HTML"},
		})
	})

	logger.Info("listing scraped", "source", a.source.Name, "kept", len(articles))
	return articles, nil
}

// itemLink reads the href from the link selector, falling back to the
// title element when the selector targets the anchor itself.
func (a *htmlAdapter) itemLink(item *goquery.Selection) string {
	node := item.Find(a.source.Selectors.Link).First()
	href, ok := node.Attr("href")
	if !ok {
		href, ok = node.Find("a").First().Attr("href")
	}
	if !ok || href == "" {
		return ""
	}
	return textutil.NormalizeURL(href, a.source.URL)
}
