package jobs

import (
	"context"
	"fmt"

	"github.com/icpulse/icnews/internal/dedup"
	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/metrics"
	"github.com/icpulse/icnews/internal/model"
	"github.com/icpulse/icnews/internal/scraper"
)

// IngestNews crawls every configured source once. A failing source is
// logged and audited but never stops the remaining sources.
func (r *Runner) IngestNews(ctx context.Context) error {
	lb, err := r.engine.BuildLookback(ctx)
	if err != nil {
		r.audit(ctx, JobIngestNews, model.StatusError, err.Error(), 0)
		return fmt.Errorf("build lookback: %w", err)
	}
	logger.Info("lookback built", "titles", lb.Size())

	opts := scraper.Options{
		TitleMinLength: r.cfg.TitleMinLength,
		DomainKeywords: r.cfg.DomainKeywords,
	}

	totalSaved := 0
	for i, source := range r.sources.Sources {
		if i > 0 {
			if err := sleepCtx(ctx, r.cfg.CrawlDelay); err != nil {
				return err
			}
		}

		adapter, err := scraper.NewAdapter(source, r.client, r.extractor, opts)
		if err != nil {
			logger.Error("bad source config", "source", source.Name, "error", err)
			r.audit(ctx, source.Name, model.StatusError, err.Error(), 0)
			continue
		}

		articles, err := adapter.Fetch(ctx, lb)
		if err != nil {
			logger.Error("source failed", "source", source.Name, "error", err)
			r.audit(ctx, source.Name, model.StatusError, err.Error(), 0)
			continue
		}

		saved := 0
		for _, article := range articles {
			inserted, err := r.saveArticle(ctx, lb, article)
			if err != nil {
				logger.Error("save article failed", "title", article.Title, "error", err)
				continue
			}
			if inserted {
				saved++
			}
		}

		totalSaved += saved
		logger.Info("source done", "source", source.Name, "saved", saved)
	}

	metrics.Global.AddArticlesSaved(totalSaved)
	metrics.Global.SetLastRun()
	r.audit(ctx, JobIngestNews, model.StatusSuccess,
		fmt.Sprintf("saved %d articles from %d sources", totalSaved, len(r.sources.Sources)), totalSaved)
	logger.Info("news ingest done", "saved", totalSaved)
	return nil
}

// saveArticle runs the dedup checks and inserts when the candidate is
// new. The lookback set is extended on success so later sources in the
// same run see the article.
func (r *Runner) saveArticle(ctx context.Context, lb *dedup.Lookback, article model.Article) (bool, error) {
	existingID, skip, err := r.engine.CheckArticle(ctx, lb, article.Title, article.OriginalURL)
	if err != nil {
		return false, err
	}
	if skip || existingID != "" {
		metrics.Global.AddDuplicatesFiltered(1)
		logger.Debug("duplicate filtered", "title", article.Title)
		return false, nil
	}

	if _, err := r.store.InsertArticle(ctx, article); err != nil {
		return false, err
	}
	lb.Add(article.Title, article.OriginalURL)
	return true, nil
}

// IngestWeChat scrapes community public accounts and inserts the ones
// not yet stored.
func (r *Runner) IngestWeChat(ctx context.Context) error {
	accounts, err := r.wechat.Fetch(ctx)
	if err != nil {
		r.audit(ctx, JobIngestWeChat, model.StatusError, err.Error(), 0)
		return err
	}

	saved := 0
	for _, account := range accounts {
		exists, err := r.store.WeChatAccountExists(ctx, account.Name, account.WeChatID)
		if err != nil {
			logger.Error("wechat existence check failed", "name", account.Name, "error", err)
			continue
		}
		if exists {
			logger.Debug("wechat account already stored", "name", account.Name)
			continue
		}

		if _, err := r.store.InsertWeChatAccount(ctx, account); err != nil {
			logger.Error("save wechat account failed", "name", account.Name, "error", err)
			continue
		}
		saved++
	}

	r.audit(ctx, JobIngestWeChat, model.StatusSuccess,
		fmt.Sprintf("saved %d of %d wechat accounts", saved, len(accounts)), saved)
	logger.Info("wechat ingest done", "saved", saved, "scraped", len(accounts))
	return nil
}
