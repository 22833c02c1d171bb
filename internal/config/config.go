// Package config loads pipeline configuration from the environment and the
// YAML source list.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Record store settings
	StoreURL        string
	StoreServiceKey string

	// Crawler settings
	UserAgent      string
	CrawlDelay     time.Duration // pause after each source / probe / AI call
	RequestTimeout time.Duration
	ProbeTimeout   time.Duration

	// Deduplication settings
	DuplicateWindowDays int
	TitleMatchMode      string // "exact" or "loose"

	// Relevance filter
	TitleMinLength   int
	ContentMinLength int
	DomainKeywords   []string

	// AI gateway settings
	OpenAIKey        string
	ClaudeKey        string
	GeminiKey        string
	PreferredAI      string
	AIMaxContentLen  int
	AISummaryMaxLen  int
	AIBatchSize      int
	AICallDelay      time.Duration

	// Schedules (cron specs)
	NewsSchedule     string
	WebsiteSchedule  string
	WeChatSchedule   string
	CleanupSchedule  string
	SummarySchedule  string

	// App settings
	SourcesPath    string
	LogLevel       string
	MonitoringPort string
}

// Load reads configuration from the environment with defaults.
// Missing store credentials are a fatal configuration error.
func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		UserAgent:           "icnews-crawler/1.0",
		CrawlDelay:          time.Second,
		RequestTimeout:      30 * time.Second,
		ProbeTimeout:        10 * time.Second,
		DuplicateWindowDays: 7,
		TitleMatchMode:      TitleMatchExact,
		TitleMinLength:      5,
		ContentMinLength:    50,
		DomainKeywords:      []string{"半导体", "IC", "芯片", "集成电路", "semiconductor"},
		PreferredAI:         "openai",
		AIMaxContentLen:     4000,
		AISummaryMaxLen:     200,
		AIBatchSize:         10,
		AICallDelay:         time.Second,
		NewsSchedule:        "0 6,12,18 * * *",
		WebsiteSchedule:     "0 8 * * *",
		WeChatSchedule:      "0 2 * * 0",
		CleanupSchedule:     "0 3 * * *",
		SummarySchedule:     "0 10 * * *",
		SourcesPath:         "configs/sources.yaml",
		LogLevel:            "info",
		MonitoringPort:      "8080",
	}

	cfg.StoreURL = os.Getenv("STORE_URL")
	cfg.StoreServiceKey = os.Getenv("STORE_SERVICE_KEY")

	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.ClaudeKey = os.Getenv("CLAUDE_API_KEY")
	cfg.GeminiKey = os.Getenv("GEMINI_API_KEY")

	if v := os.Getenv("AI_SUMMARY_SERVICE"); v != "" {
		cfg.PreferredAI = v
	}

	cfg.UserAgent = getEnvOrDefault("USER_AGENT", cfg.UserAgent)
	cfg.SourcesPath = getEnvOrDefault("SOURCES_PATH", cfg.SourcesPath)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.MonitoringPort = getEnvOrDefault("MONITORING_PORT", cfg.MonitoringPort)

	cfg.DuplicateWindowDays = getEnvIntOrDefault("DUPLICATE_WINDOW_DAYS", cfg.DuplicateWindowDays)
	cfg.TitleMinLength = getEnvIntOrDefault("TITLE_MIN_LENGTH", cfg.TitleMinLength)
	cfg.ContentMinLength = getEnvIntOrDefault("CONTENT_MIN_LENGTH", cfg.ContentMinLength)
	cfg.AIMaxContentLen = getEnvIntOrDefault("AI_MAX_CONTENT_LENGTH", cfg.AIMaxContentLen)
	cfg.AISummaryMaxLen = getEnvIntOrDefault("AI_SUMMARY_MAX_LENGTH", cfg.AISummaryMaxLen)
	cfg.AIBatchSize = getEnvIntOrDefault("AI_BATCH_SIZE", cfg.AIBatchSize)

	if v := os.Getenv("CRAWL_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.CrawlDelay = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("PROBE_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ProbeTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("AI_CALL_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.AICallDelay = time.Duration(val) * time.Second
		}
	}

	if v := os.Getenv("TITLE_MATCH_MODE"); v != "" {
		cfg.TitleMatchMode = v
	}

	if v := os.Getenv("DOMAIN_KEYWORDS"); v != "" {
		var keywords []string
		for _, kw := range strings.Split(v, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) > 0 {
			cfg.DomainKeywords = keywords
		}
	}

	cfg.NewsSchedule = getEnvOrDefault("SCHEDULE_NEWS", cfg.NewsSchedule)
	cfg.WebsiteSchedule = getEnvOrDefault("SCHEDULE_WEBSITES", cfg.WebsiteSchedule)
	cfg.WeChatSchedule = getEnvOrDefault("SCHEDULE_WECHAT", cfg.WeChatSchedule)
	cfg.CleanupSchedule = getEnvOrDefault("SCHEDULE_CLEANUP", cfg.CleanupSchedule)
	cfg.SummarySchedule = getEnvOrDefault("SCHEDULE_SUMMARIES", cfg.SummarySchedule)

	return cfg, cfg.Validate()
}

// Title match modes for the dedup engine.
const (
	TitleMatchExact = "exact"
	TitleMatchLoose = "loose"
)

func (c *Config) Validate() error {
	if c.StoreURL == "" {
		return fmt.Errorf("STORE_URL is required")
	}
	if c.StoreServiceKey == "" {
		return fmt.Errorf("STORE_SERVICE_KEY is required")
	}
	if c.TitleMatchMode != TitleMatchExact && c.TitleMatchMode != TitleMatchLoose {
		return fmt.Errorf("TITLE_MATCH_MODE must be %q or %q", TitleMatchExact, TitleMatchLoose)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
