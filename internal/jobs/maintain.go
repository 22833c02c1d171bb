package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/metrics"
	"github.com/icpulse/icnews/internal/model"
	"github.com/icpulse/icnews/internal/store"
	"github.com/icpulse/icnews/internal/textutil"
)

// CheckWebsites probes every active directory entry and records the
// verdicts.
func (r *Runner) CheckWebsites(ctx context.Context) error {
	sum, err := r.checker.CheckAll(ctx)
	if err != nil {
		r.audit(ctx, JobCheckWebsites, model.StatusError, err.Error(), sum.Checked)
		return err
	}

	metrics.Global.AddWebsitesChecked(sum.Checked)
	metrics.Global.AddWebsitesInactive(sum.Unavailable)
	r.audit(ctx, JobCheckWebsites, model.StatusSuccess,
		fmt.Sprintf("checked %d websites, available %d, unavailable %d",
			sum.Checked, sum.Available, sum.Unavailable), sum.Checked)
	return nil
}

// Summarize backfills AI summaries for one batch of unprocessed
// articles.
func (r *Runner) Summarize(ctx context.Context) error {
	res, err := r.gateway.ProcessBatch(ctx, r.store, r.cfg.AIBatchSize, r.cfg.AICallDelay)
	if err != nil {
		r.audit(ctx, JobSummarize, model.StatusError, err.Error(), res.Processed)
		return err
	}

	metrics.Global.AddSummariesGenerated(res.Processed)
	metrics.Global.AddSummariesFailed(res.Failed)
	r.audit(ctx, JobSummarize, model.StatusSuccess,
		fmt.Sprintf("generated %d summaries, skipped %d, failed %d",
			res.Processed, res.Skipped, res.Failed), res.Processed)
	return nil
}

// Cleanup removes duplicate articles, websites and wechat accounts,
// then drops the known-inactive websites. Stats are logged before and
// after so the shrink is visible in the run log.
func (r *Runner) Cleanup(ctx context.Context) error {
	r.logTableStats(ctx, "before cleanup")

	newsCleaned, err := r.engine.CleanupArticles(ctx)
	if err != nil {
		r.audit(ctx, JobCleanup, model.StatusError, err.Error(), 0)
		return fmt.Errorf("cleanup articles: %w", err)
	}
	websitesCleaned, err := r.engine.CleanupWebsites(ctx)
	if err != nil {
		r.audit(ctx, JobCleanup, model.StatusError, err.Error(), newsCleaned)
		return fmt.Errorf("cleanup websites: %w", err)
	}
	wechatCleaned, err := r.engine.CleanupWeChatAccounts(ctx)
	if err != nil {
		r.audit(ctx, JobCleanup, model.StatusError, err.Error(), newsCleaned+websitesCleaned)
		return fmt.Errorf("cleanup wechat accounts: %w", err)
	}

	inactiveDeleted, err := r.removeInactiveWebsites(ctx)
	if err != nil {
		logger.Error("remove inactive websites failed", "error", err)
	}

	r.logTableStats(ctx, "after cleanup")

	total := newsCleaned + websitesCleaned + wechatCleaned + inactiveDeleted
	metrics.Global.AddDuplicatesFiltered(newsCleaned)
	r.audit(ctx, JobCleanup, model.StatusSuccess,
		fmt.Sprintf("removed %d duplicate articles, %d duplicate websites, %d duplicate wechat accounts, %d inactive websites",
			newsCleaned, websitesCleaned, wechatCleaned, inactiveDeleted), total)
	logger.Info("cleanup done",
		"articles", newsCleaned, "websites", websitesCleaned,
		"wechat", wechatCleaned, "inactive", inactiveDeleted)
	return nil
}

// RemoveInactive deletes the websites listed as known-inactive in the
// source file.
func (r *Runner) RemoveInactive(ctx context.Context) error {
	r.logTableStats(ctx, "before removal")

	deleted, err := r.removeInactiveWebsites(ctx)
	if err != nil {
		r.audit(ctx, JobRemoveInactive, model.StatusError, err.Error(), deleted)
		return err
	}

	r.logTableStats(ctx, "after removal")
	r.audit(ctx, JobRemoveInactive, model.StatusSuccess,
		fmt.Sprintf("deleted %d inactive websites", deleted), deleted)
	return nil
}

// removeInactiveWebsites matches stored entries against the configured
// inactive list by normalized URL. Delete failures skip that entry.
func (r *Runner) removeInactiveWebsites(ctx context.Context) (int, error) {
	if len(r.sources.InactiveWebsites) == 0 {
		return 0, nil
	}

	inactive := make(map[string]struct{}, len(r.sources.InactiveWebsites))
	for _, u := range r.sources.InactiveWebsites {
		inactive[strings.ToLower(textutil.NormalizeURL(u, ""))] = struct{}{}
	}

	websites, err := r.store.AllWebsitesByAge(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, site := range websites {
		key := strings.ToLower(textutil.NormalizeURL(site.URL, ""))
		if _, ok := inactive[key]; !ok {
			continue
		}
		if err := r.store.DeleteWebsite(ctx, site.ID); err != nil {
			logger.Error("delete inactive website failed", "name", site.Name, "error", err)
			continue
		}
		logger.Info("deleted inactive website", "name", site.Name, "url", site.URL)
		deleted++
	}
	return deleted, nil
}

func (r *Runner) logTableStats(ctx context.Context, label string) {
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
		logger.Info("table stats", "stage", label, "table", table, "records", count)
	}
}
