package jobs

import (
	"context"
	"fmt"

	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/store"
)

// Status reports store connectivity, per-table record counts, the
// trailing 24h article count and the configured summary providers.
func (r *Runner) Status(ctx context.Context) error {
	categories, err := r.store.Categories(ctx)
	if err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	logger.Info("store connected", "categories", len(categories))

	tables := []string{
		store.TableNews, store.TableWebsites, store.TableCategories,
		store.TableWeChat, store.TableCrawlLogs,
	}
	for _, table := range tables {
		count, err := r.store.TableCount(ctx, table)
		if err != nil {
			logger.Warn("table count failed", "table", table, "error", err)
			continue
		}
		logger.Info("table stats", "table", table, "records", count)
	}

	recent, err := r.store.RecentArticles(ctx, 1)
	if err != nil {
		logger.Warn("recent articles query failed", "error", err)
	} else {
		logger.Info("recent articles", "last_24h", len(recent))
	}

	websites, err := r.store.ActiveWebsites(ctx)
	if err != nil {
		logger.Warn("active websites query failed", "error", err)
	} else {
		logger.Info("websites to monitor", "count", len(websites))
	}

	if r.gateway.Enabled() {
		logger.Info("summary providers", "chain", r.gateway.Providers())
	} else {
		logger.Warn("no summary providers configured")
	}

	logger.Info("configured sources", "count", len(r.sources.Sources))
	return nil
}
