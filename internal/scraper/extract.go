package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/icpulse/icnews/internal/textutil"
)

// minBodyLength is the smallest extracted body we accept as a real
// article. Shorter extractions are treated as failures so callers fall
// back to the listing summary.
const minBodyLength = 200

// minParagraphLength filters boilerplate fragments in the last-resort
// paragraph sweep.
const minParagraphLength = 50

// genericContentSelectors are tried in order when a source has no
// content selector of its own, or when its selector comes up short.
var genericContentSelectors = []string{
	".article-content",
	".entry-content",
	".post-content",
	".content",
	"article",
	".article-body",
}

// noiseSelectors are removed from the document before extraction.
var noiseSelectors = []string{
	"script", "style", "nav", "header", "footer", "aside",
	".advertisement", ".ads", ".sidebar", ".comments", ".related",
}

// Extractor recovers full article text from permalink pages.
type Extractor struct {
	client *resty.Client
}

// NewExtractor wraps an HTTP client for permalink fetches.
func NewExtractor(client *resty.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract fetches the permalink and returns the cleaned article body.
// ok is false when the page yields nothing usable; the caller keeps
// whatever summary it already has.
func (e *Extractor) Extract(ctx context.Context, pageURL, contentSelector string) (body string, ok bool) {
	resp, err := e.client.R().SetContext(ctx).Get(pageURL)
	if err != nil || resp.StatusCode() != 200 {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return "", false
	}

	return ExtractFromDocument(doc, contentSelector)
}

// ExtractFromDocument runs the selector cascade over an already parsed
// page. The source's own selector is tried first, then the generic
// candidates keeping the longest match, then a paragraph sweep.
func ExtractFromDocument(doc *goquery.Document, contentSelector string) (string, bool) {
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	if contentSelector != "" {
		if text := textutil.CleanText(doc.Find(contentSelector).Text()); len([]rune(text)) > minBodyLength {
			return text, true
		}
	}

	var best string
	bestLen := 0
	for _, sel := range genericContentSelectors {
		text := textutil.CleanText(doc.Find(sel).Text())
		if n := len([]rune(text)); n > minBodyLength && n > bestLen {
			best = text
			bestLen = n
		}
	}
	if best != "" {
		return best, true
	}

	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := textutil.CleanText(p.Text()); len([]rune(text)) > minParagraphLength {
			parts = append(parts, text)
		}
	})
	joined := strings.Join(parts, " ")
	if len([]rune(joined)) > minBodyLength {
		return joined, true
	}
	return "", false
}

// fetchDocument is the shared listing-page fetch for the HTML adapters.
func fetchDocument(ctx context.Context, client *resty.Client, pageURL string) (*goquery.Document, error) {
	resp, err := client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}
