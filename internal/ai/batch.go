package ai

import (
	"context"
	"errors"
	"time"

	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/model"
)

// Store is the slice of the record store the batch processor needs.
type Store interface {
	UnprocessedArticles(ctx context.Context, limit int) ([]model.Article, error)
	SetArticleAISummary(ctx context.Context, id, summary string, keywords []string) error
}

// BatchResult counts one backfill run.
type BatchResult struct {
	Processed int
	Skipped   int
	Failed    int
}

// ProcessBatch summarizes up to batchSize unprocessed articles,
// pausing callDelay between provider calls. A failing article is
// counted and skipped, never aborting the rest of the batch. Articles
// too short to summarize keep their scraped summary and are marked
// processed so they are not retried forever; with no scraped summary
// either, they stay unprocessed rather than being marked without one.
func (g *Gateway) ProcessBatch(ctx context.Context, store Store, batchSize int, callDelay time.Duration) (BatchResult, error) {
	var res BatchResult

	if !g.Enabled() {
		return res, ErrNoProviders
	}

	articles, err := store.UnprocessedArticles(ctx, batchSize)
	if err != nil {
		return res, err
	}
	if len(articles) == 0 {
		logger.Info("no unprocessed articles")
		return res, nil
	}

	for i, article := range articles {
		if i > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(callDelay):
			}
		}

		content := article.Content
		if content == "" {
			content = article.Summary
		}

		result, err := g.Summarize(ctx, article.Title, content, article.Source)
		if errors.Is(err, ErrContentTooShort) {
			if article.Summary == "" {
				logger.Debug("article too short, left unprocessed", "id", article.ID)
				res.Skipped++
				continue
			}
			if err := store.SetArticleAISummary(ctx, article.ID, article.Summary, nil); err != nil {
				logger.Error("mark short article failed", "id", article.ID, "error", err)
				res.Failed++
				continue
			}
			res.Skipped++
			continue
		}
		if err != nil {
			logger.Error("summarize article failed", "id", article.ID, "title", article.Title, "error", err)
			res.Failed++
			continue
		}

		if err := store.SetArticleAISummary(ctx, article.ID, result.Summary, result.Keywords); err != nil {
			logger.Error("save summary failed", "id", article.ID, "error", err)
			res.Failed++
			continue
		}
		res.Processed++
	}

	logger.Info("summary batch done",
		"processed", res.Processed, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}
