package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/icpulse/icnews/internal/config"
	"github.com/icpulse/icnews/internal/jobs"
	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/metrics"
)

const usage = `Usage: icnews [flags] <command>

Commands:
  ingest-news      Crawl all news sources once
  check-websites   Probe all directory websites once
  ingest-wechat    Scrape community WeChat accounts
  summarize        Generate AI summaries for unprocessed articles
  cleanup          Remove duplicate and inactive records
  remove-inactive  Remove known-inactive websites
  update           Full refresh: cleanup + crawl + summaries + checks
  schedule         Run all jobs on their cron schedules
  status           Show store connectivity and record counts

Flags:
  --log-level      debug, info, warn or error (default info)
`

func main() {
	logLevel := flag.String("log-level", "", "log level: debug, info, warn or error")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	command := flag.Arg(0)

	// Optional; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger.Init(cfg.LogLevel)

	runner, err := jobs.New(cfg)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer(cfg.MonitoringPort)
	}

	logger.Info("icnews starting", "command", command)

	switch command {
	case "schedule":
		scheduler, err := jobs.NewScheduler(runner)
		if err != nil {
			logger.Error("scheduler setup failed", "error", err)
			os.Exit(1)
		}
		scheduler.Start(ctx)
	case "status":
		if err := runner.Status(ctx); err != nil {
			logger.Error("status check failed", "error", err)
			os.Exit(1)
		}
	default:
		if err := runner.Run(ctx, command); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("interrupted")
				return
			}
			logger.Error("job failed", "job", command, "error", err)
			os.Exit(1)
		}
	}
}

func startMonitoringServer(port string) {
	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("monitoring server listening", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
