// Package jobs wires the pipeline stages into named, schedulable jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/icpulse/icnews/internal/ai"
	"github.com/icpulse/icnews/internal/config"
	"github.com/icpulse/icnews/internal/dedup"
	"github.com/icpulse/icnews/internal/health"
	"github.com/icpulse/icnews/internal/httpx"
	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/model"
	"github.com/icpulse/icnews/internal/scraper"
	"github.com/icpulse/icnews/internal/store"
)

// Job names, used as audit-trail sources and CLI commands.
const (
	JobIngestNews     = "ingest-news"
	JobCheckWebsites  = "check-websites"
	JobIngestWeChat   = "ingest-wechat"
	JobSummarize      = "summarize"
	JobCleanup        = "cleanup"
	JobRemoveInactive = "remove-inactive"
	JobUpdate         = "update"
)

// Runner owns the assembled pipeline and runs its jobs.
type Runner struct {
	cfg       *config.Config
	sources   *config.SourcesFile
	store     *store.Client
	engine    *dedup.Engine
	gateway   *ai.Gateway
	checker   *health.Checker
	wechat    *scraper.WeChatScraper
	client    *resty.Client
	extractor *scraper.Extractor
}

// New assembles the full pipeline from configuration.
func New(cfg *config.Config) (*Runner, error) {
	sources, err := config.LoadSources(cfg.SourcesPath)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	client := httpx.NewClient(cfg.RequestTimeout, cfg.UserAgent)
	st := store.New(cfg.StoreURL, cfg.StoreServiceKey, cfg.RequestTimeout, cfg.UserAgent)

	return &Runner{
		cfg:       cfg,
		sources:   sources,
		store:     st,
		engine:    dedup.New(st, cfg.DuplicateWindowDays, cfg.TitleMatchMode),
		gateway:   ai.NewGateway(ai.BuildProviders(cfg, client), cfg.AIMaxContentLen, cfg.AISummaryMaxLen),
		checker:   health.New(st, cfg.ProbeTimeout, cfg.CrawlDelay, cfg.UserAgent),
		wechat:    scraper.NewWeChatScraper(client),
		client:    client,
		extractor: scraper.NewExtractor(client),
	}, nil
}

// Run dispatches a job by name.
func (r *Runner) Run(ctx context.Context, job string) error {
	switch job {
	case JobIngestNews:
		return r.IngestNews(ctx)
	case JobCheckWebsites:
		return r.CheckWebsites(ctx)
	case JobIngestWeChat:
		return r.IngestWeChat(ctx)
	case JobSummarize:
		return r.Summarize(ctx)
	case JobCleanup:
		return r.Cleanup(ctx)
	case JobRemoveInactive:
		return r.RemoveInactive(ctx)
	case JobUpdate:
		return r.Update(ctx)
	default:
		return fmt.Errorf("unknown job %q", job)
	}
}

// audit writes one crawl-log row. Audit failures are logged and
// swallowed so they never fail the job that produced them.
func (r *Runner) audit(ctx context.Context, source, status, message string, items int) {
	err := r.store.SaveCrawlLog(ctx, model.CrawlLog{
		Source:     source,
		Status:     status,
		Message:    message,
		ItemsCount: items,
		CrawledAt:  time.Now().UTC(),
	})
	if err != nil {
		logger.Error("save crawl log failed", "source", source, "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
