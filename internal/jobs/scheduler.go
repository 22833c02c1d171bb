package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/metrics"
	"github.com/icpulse/icnews/internal/model"
)

// Scheduler runs the jobs on cron schedules. One job runs at a time;
// a tick that fires while another job is running is skipped.
type Scheduler struct {
	runner *Runner
	cron   *cron.Cron
	mu     sync.Mutex
}

// NewScheduler registers the configured schedules.
func NewScheduler(runner *Runner) (*Scheduler, error) {
	s := &Scheduler{
		runner: runner,
		cron:   cron.New(),
	}

	cfg := runner.cfg
	entries := []struct {
		spec string
		job  string
	}{
		{cfg.NewsSchedule, JobIngestNews},
		{cfg.WebsiteSchedule, JobCheckWebsites},
		{cfg.WeChatSchedule, JobIngestWeChat},
		{cfg.CleanupSchedule, JobCleanup},
		{cfg.SummarySchedule, JobSummarize},
	}

	for _, e := range entries {
		job := e.job
		if _, err := s.cron.AddFunc(e.spec, func() { s.runJob(job) }); err != nil {
			return nil, fmt.Errorf("schedule %s (%q): %w", job, e.spec, err)
		}
		logger.Info("job scheduled", "job", job, "spec", e.spec)
	}
	return s, nil
}

// Start runs the scheduler until the context is canceled. Any job still
// running at shutdown finishes first.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	logger.Info("scheduler running", "jobs", len(s.cron.Entries()))

	<-ctx.Done()
	logger.Info("scheduler stopping")
	<-s.cron.Stop().Done()
	logger.Info("scheduler stopped")
}

func (s *Scheduler) runJob(job string) {
	if !s.mu.TryLock() {
		logger.Warn("job skipped, another job still running", "job", job)
		return
	}
	defer s.mu.Unlock()

	ctx := context.Background()
	logger.Info("scheduled job starting", "job", job)
	if err := s.runner.Run(ctx, job); err != nil {
		metrics.Global.SetError(err.Error())
		logger.Error("scheduled job failed", "job", job, "error", err)
		s.runner.audit(ctx, job, model.StatusError,
			fmt.Sprintf("scheduled run failed: %v", err), 0)
		return
	}
	logger.Info("scheduled job done", "job", job)
}
