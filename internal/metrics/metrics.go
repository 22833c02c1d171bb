package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesSaved      int64
	DuplicatesFiltered int64
	SummariesGenerated int64
	SummariesFailed    int64
	WebsitesChecked    int64
	WebsitesInactive   int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	TotalRunDuration   time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesSaved(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesSaved += int64(n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) AddSummariesGenerated(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated += int64(n)
}

func (m *Metrics) AddSummariesFailed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesFailed += int64(n)
}

func (m *Metrics) AddWebsitesChecked(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WebsitesChecked += int64(n)
}

func (m *Metrics) AddWebsitesInactive(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WebsitesInactive += int64(n)
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_saved":          m.ArticlesSaved,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"summaries_generated":     m.SummariesGenerated,
		"summaries_failed":        m.SummariesFailed,
		"websites_checked":        m.WebsitesChecked,
		"websites_inactive":       m.WebsitesInactive,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
