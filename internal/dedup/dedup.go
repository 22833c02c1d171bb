// Package dedup decides whether candidate records are new. It keeps an
// in-memory lookback set per job run and performs the post-hoc duplicate
// cleanup over the store.
package dedup

import (
	"context"
	"strings"

	"github.com/icpulse/icnews/internal/config"
	"github.com/icpulse/icnews/internal/logger"
	"github.com/icpulse/icnews/internal/model"
	"github.com/icpulse/icnews/internal/textutil"
)

// Store is the slice of the record store the engine needs.
type Store interface {
	RecentArticles(ctx context.Context, days int) ([]model.Article, error)
	ArticleIDBy(ctx context.Context, column, value string) (string, error)
	AllArticlesByAge(ctx context.Context) ([]model.Article, error)
	DeleteArticle(ctx context.Context, id string) error
	AllWebsitesByAge(ctx context.Context) ([]model.Website, error)
	DeleteWebsite(ctx context.Context, id string) error
	AllWeChatAccountsByAge(ctx context.Context) ([]model.WeChatAccount, error)
	DeleteWeChatAccount(ctx context.Context, id string) error
}

// Lookback is the in-memory dedup set for one job run. It is built from
// the store's trailing window, passed into the adapters explicitly and
// discarded when the run ends.
type Lookback struct {
	mode   string
	titles map[string]struct{}
	list   []string // kept only in loose mode, for containment checks
	hashes map[string]struct{}
}

// NewLookback returns an empty lookback set with the given title match
// mode (config.TitleMatchExact or config.TitleMatchLoose).
func NewLookback(mode string) *Lookback {
	return &Lookback{
		mode:   mode,
		titles: make(map[string]struct{}),
		hashes: make(map[string]struct{}),
	}
}

// Add records a title/URL pair as seen.
func (l *Lookback) Add(title, url string) {
	norm := normalizeTitle(title)
	if _, ok := l.titles[norm]; !ok {
		l.titles[norm] = struct{}{}
		if l.mode == config.TitleMatchLoose {
			l.list = append(l.list, norm)
		}
	}
	l.hashes[textutil.ContentHash(title, url)] = struct{}{}
}

// SeenTitle reports whether an equivalent title was already seen. In
// loose mode, substring containment in either direction counts as a
// match.
func (l *Lookback) SeenTitle(title string) bool {
	norm := normalizeTitle(title)
	if _, ok := l.titles[norm]; ok {
		return true
	}
	if l.mode != config.TitleMatchLoose {
		return false
	}
	for _, seen := range l.list {
		if strings.Contains(seen, norm) || strings.Contains(norm, seen) {
			return true
		}
	}
	return false
}

// SeenHash reports whether the content hash of the pair was already seen.
func (l *Lookback) SeenHash(title, url string) bool {
	_, ok := l.hashes[textutil.ContentHash(title, url)]
	return ok
}

// Size returns the number of distinct titles in the set.
func (l *Lookback) Size() int { return len(l.titles) }

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(title))), " ")
}

// Engine performs pre-insert checks and post-hoc cleanup.
type Engine struct {
	store Store
	days  int
	mode  string
}

// New creates an engine with the given lookback window in days and title
// match mode.
func New(store Store, days int, mode string) *Engine {
	return &Engine{store: store, days: days, mode: mode}
}

// BuildLookback loads the trailing window of stored articles into a
// fresh lookback set.
func (e *Engine) BuildLookback(ctx context.Context) (*Lookback, error) {
	recent, err := e.store.RecentArticles(ctx, e.days)
	if err != nil {
		return nil, err
	}

	lb := NewLookback(e.mode)
	for _, a := range recent {
		lb.Add(a.Title, a.OriginalURL)
	}
	return lb, nil
}

// CheckArticle runs the pre-insert checks for one candidate. It returns
// the existing record's id when the exact title or URL is already stored
// ("already have it"), or skip=true when the candidate should be dropped
// silently (lookback title or hash collision).
func (e *Engine) CheckArticle(ctx context.Context, lb *Lookback, title, url string) (existingID string, skip bool, err error) {
	if lb.SeenTitle(title) {
		return "", true, nil
	}

	if id, err := e.store.ArticleIDBy(ctx, "title", strings.TrimSpace(title)); err != nil {
		return "", false, err
	} else if id != "" {
		return id, false, nil
	}

	if id, err := e.store.ArticleIDBy(ctx, "original_url", strings.TrimSpace(url)); err != nil {
		return "", false, err
	} else if id != "" {
		return id, false, nil
	}

	if lb.SeenHash(title, url) {
		return "", true, nil
	}
	return "", false, nil
}

// CleanupArticles scans all articles oldest-first and deletes every
// record whose content hash was already produced by an earlier one.
// Re-running with no new data deletes nothing.
func (e *Engine) CleanupArticles(ctx context.Context) (int, error) {
	articles, err := e.store.AllArticlesByAge(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{})
	deleted := 0
	for _, a := range articles {
		hash := textutil.ContentHash(a.Title, a.OriginalURL)
		if _, dup := seen[hash]; !dup {
			seen[hash] = struct{}{}
			continue
		}
		if err := e.store.DeleteArticle(ctx, a.ID); err != nil {
			logger.Error("delete duplicate article failed", "id", a.ID, "error", err)
			continue
		}
		logger.Info("removed duplicate article", "title", a.Title)
		deleted++
	}
	return deleted, nil
}

// CleanupWebsites deletes directory entries whose normalized URL repeats
// an earlier entry.
func (e *Engine) CleanupWebsites(ctx context.Context) (int, error) {
	websites, err := e.store.AllWebsitesByAge(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{})
	deleted := 0
	for _, w := range websites {
		key := strings.ToLower(strings.TrimRight(strings.TrimSpace(w.URL), "/"))
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			continue
		}
		if err := e.store.DeleteWebsite(ctx, w.ID); err != nil {
			logger.Error("delete duplicate website failed", "id", w.ID, "error", err)
			continue
		}
		logger.Info("removed duplicate website", "name", w.Name, "url", w.URL)
		deleted++
	}
	return deleted, nil
}

// CleanupWeChatAccounts deletes accounts repeating an earlier name or
// external id.
func (e *Engine) CleanupWeChatAccounts(ctx context.Context) (int, error) {
	accounts, err := e.store.AllWeChatAccountsByAge(ctx)
	if err != nil {
		return 0, err
	}

	seenNames := make(map[string]struct{})
	seenIDs := make(map[string]struct{})
	deleted := 0
	for _, acc := range accounts {
		name := strings.ToLower(strings.TrimSpace(acc.Name))
		wechatID := strings.ToLower(strings.TrimSpace(acc.WeChatID))

		_, dupName := seenNames[name]
		dupID := false
		if wechatID != "" {
			_, dupID = seenIDs[wechatID]
		}

		if !dupName && !dupID {
			seenNames[name] = struct{}{}
			if wechatID != "" {
				seenIDs[wechatID] = struct{}{}
			}
			continue
		}
		if err := e.store.DeleteWeChatAccount(ctx, acc.ID); err != nil {
			logger.Error("delete duplicate wechat account failed", "id", acc.ID, "error", err)
			continue
		}
		logger.Info("removed duplicate wechat account", "name", acc.Name)
		deleted++
	}
	return deleted, nil
}
