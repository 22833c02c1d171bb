package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/metrics"
	"github.com/icpulse/icnews/internal/model"
)

// stagePause is the breather between update stages.
const stagePause = 2 * time.Second

// Update runs the full refresh: cleanup, news, wechat accounts, AI
// summaries, then website checks. A failing stage aborts the rest.
func (r *Runner) Update(ctx context.Context) error {
	start := time.Now()

	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{JobCleanup, r.Cleanup},
		{JobIngestNews, r.IngestNews},
		{JobIngestWeChat, r.IngestWeChat},
		{JobSummarize, r.Summarize},
		{JobCheckWebsites, r.CheckWebsites},
	}

	for i, stage := range stages {
		if i > 0 {
			if err := sleepCtx(ctx, stagePause); err != nil {
				return err
			}
		}

		logger.Info("update stage", "step", i+1, "name", stage.name)
		if err := stage.run(ctx); err != nil {
			metrics.Global.SetError(err.Error())
			r.audit(ctx, JobUpdate, model.StatusError,
				fmt.Sprintf("stage %s failed: %v", stage.name, err), 0)
			return fmt.Errorf("update stage %s: %w", stage.name, err)
		}
	}

	metrics.Global.RecordRunDuration(time.Since(start))
	metrics.Global.SetLastRun()
	r.audit(ctx, JobUpdate, model.StatusSuccess, "complete data update finished", 0)
	logger.Info("update done", "duration", time.Since(start))
	return nil
}
