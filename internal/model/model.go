// Package model holds the row types stored in the record store.
package model

import "time"

// Article is one ingested news item. Title and OriginalURL are treated as
// unique keys; the dedup engine checks both before every insert.
type Article struct {
	ID            string     `json:"id,omitempty"`
	Title         string     `json:"title"`
	Summary       string     `json:"summary,omitempty"`
	Content       string     `json:"content,omitempty"`
	Source        string     `json:"source"`
	Author        string     `json:"author,omitempty"`
	OriginalURL   string     `json:"original_url"`
	PublishedAt   time.Time  `json:"published_at"`
	Category      string     `json:"category,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	AISummary     string     `json:"ai_summary,omitempty"`
	AIKeywords    []string   `json:"ai_keywords,omitempty"`
	AIProcessed   bool       `json:"ai_processed"`
	AIProcessedAt *time.Time `json:"ai_processed_at,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	CrawledAt     *time.Time `json:"crawled_at,omitempty"`
}

// Website is one directory entry probed by the health checker.
type Website struct {
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	CategoryID string     `json:"category_id,omitempty"`
	IsActive   bool       `json:"is_active"`
	AdminNotes string     `json:"admin_notes,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Category is a directory category. Read-only to the pipeline.
type Category struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	SortOrder   int    `json:"sort_order,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// WeChatAccount is one scraped public account, deduplicated by name and
// by the external wechat id.
type WeChatAccount struct {
	ID                 string     `json:"id,omitempty"`
	Name               string     `json:"name"`
	WeChatID           string     `json:"wechat_id,omitempty"`
	Description        string     `json:"description,omitempty"`
	Positioning        string     `json:"positioning,omitempty"`
	TargetAudience     string     `json:"target_audience,omitempty"`
	OperatorBackground string     `json:"operator_background,omitempty"`
	Tags               []string   `json:"tags,omitempty"`
	IsVerified         bool       `json:"is_verified"`
	FollowerCount      int        `json:"follower_count"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// CrawlLog is the append-only audit trail, one row per job run or failure.
type CrawlLog struct {
	ID         string    `json:"id,omitempty"`
	Source     string    `json:"source"`
	Status     string    `json:"status"` // "success" or "error"
	Message    string    `json:"message"`
	ItemsCount int       `json:"items_count"`
	CrawledAt  time.Time `json:"crawled_at"`
}

// Audit log statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
