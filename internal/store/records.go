package store

import (
	"context"
	"fmt"
	"time"

	"github.com/icpulse/icnews/internal/model"
)

// Table names in the record store.
const (
	TableNews       = "news"
	TableWebsites   = "websites"
	TableCategories = "categories"
	TableWeChat     = "wechat_accounts"
	TableCrawlLogs  = "crawl_logs"
)

// RecentArticles returns id, title and URL of articles created within the
// last N days, used to build the dedup lookback set.
func (c *Client) RecentArticles(ctx context.Context, days int) ([]model.Article, error) {
	cutoff := time.Now().AddDate(0, 0, -days).UTC().Format(time.RFC3339)

	var articles []model.Article
	err := c.Select(ctx, TableNews, Query{
		Columns: "id,title,original_url,created_at",
		Filters: []Filter{Gte("created_at", cutoff)},
	}, &articles)
	return articles, err
}

// ArticleIDBy returns the id of the first article matching the given
// column value, or "" when none exists.
func (c *Client) ArticleIDBy(ctx context.Context, column, value string) (string, error) {
	var rows []model.Article
	err := c.Select(ctx, TableNews, Query{
		Columns: "id",
		Filters: []Filter{Eq(column, value)},
		Limit:   1,
	}, &rows)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].ID, nil
}

// InsertArticle writes a new article and returns it with the generated id.
func (c *Client) InsertArticle(ctx context.Context, article model.Article) (model.Article, error) {
	now := time.Now().UTC()
	article.CreatedAt = &now
	article.CrawledAt = &now

	var inserted []model.Article
	if err := c.Insert(ctx, TableNews, article, &inserted); err != nil {
		return model.Article{}, err
	}
	if len(inserted) == 0 {
		return model.Article{}, fmt.Errorf("store insert %s: empty representation", TableNews)
	}
	return inserted[0], nil
}

// AllArticlesByAge returns every article ordered by creation time
// ascending, for the post-hoc duplicate cleanup.
func (c *Client) AllArticlesByAge(ctx context.Context) ([]model.Article, error) {
	var articles []model.Article
	err := c.Select(ctx, TableNews, Query{
		Columns:   "id,title,original_url,created_at",
		OrderBy:   "created_at",
		Ascending: true,
	}, &articles)
	return articles, err
}

// DeleteArticle removes one article by id.
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	return c.Delete(ctx, TableNews, Eq("id", id))
}

// UnprocessedArticles returns up to limit articles that have no AI
// summary yet.
func (c *Client) UnprocessedArticles(ctx context.Context, limit int) ([]model.Article, error) {
	var articles []model.Article
	err := c.Select(ctx, TableNews, Query{
		Columns: "id,title,summary,content,source",
		Filters: []Filter{Eq("ai_processed", "false")},
		Limit:   limit,
	}, &articles)
	return articles, err
}

// SetArticleAISummary patches the AI fields of one article. The summary,
// processed flag and timestamp are always written together.
func (c *Client) SetArticleAISummary(ctx context.Context, id, summary string, keywords []string) error {
	patch := map[string]any{
		"ai_summary":      summary,
		"ai_processed":    true,
		"ai_processed_at": time.Now().UTC().Format(time.RFC3339),
	}
	if len(keywords) > 0 {
		patch["ai_keywords"] = keywords
	}
	return c.Update(ctx, TableNews, patch, Eq("id", id))
}

// ActiveWebsites returns the directory entries to health-check.
func (c *Client) ActiveWebsites(ctx context.Context) ([]model.Website, error) {
	var websites []model.Website
	err := c.Select(ctx, TableWebsites, Query{
		Columns: "id,name,url",
		Filters: []Filter{Eq("is_active", "true")},
	}, &websites)
	return websites, err
}

// AllWebsitesByAge returns every directory entry ordered by creation
// time ascending, for duplicate cleanup.
func (c *Client) AllWebsitesByAge(ctx context.Context) ([]model.Website, error) {
	var websites []model.Website
	err := c.Select(ctx, TableWebsites, Query{
		Columns:   "id,name,url,created_at",
		OrderBy:   "created_at",
		Ascending: true,
	}, &websites)
	return websites, err
}

// SetWebsiteStatus writes a probe outcome back to the directory entry.
func (c *Client) SetWebsiteStatus(ctx context.Context, id string, active bool, note string) error {
	patch := map[string]any{
		"is_active":  active,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	if note != "" {
		patch["admin_notes"] = note
	}
	return c.Update(ctx, TableWebsites, patch, Eq("id", id))
}

// DeleteWebsite removes one directory entry by id.
func (c *Client) DeleteWebsite(ctx context.Context, id string) error {
	return c.Delete(ctx, TableWebsites, Eq("id", id))
}

// Categories returns the active directory categories.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := c.Select(ctx, TableCategories, Query{
		Filters: []Filter{Eq("is_active", "true")},
	}, &categories)
	return categories, err
}

// WeChatAccountExists checks for an account with the same name or the
// same external id.
func (c *Client) WeChatAccountExists(ctx context.Context, name, wechatID string) (bool, error) {
	var rows []model.WeChatAccount
	err := c.Select(ctx, TableWeChat, Query{
		Columns: "id",
		Filters: []Filter{Eq("name", name)},
		Limit:   1,
	}, &rows)
	if err != nil {
		return false, err
	}
	if len(rows) > 0 {
		return true, nil
	}

	if wechatID == "" {
		return false, nil
	}
	rows = rows[:0]
	err = c.Select(ctx, TableWeChat, Query{
		Columns: "id",
		Filters: []Filter{Eq("wechat_id", wechatID)},
		Limit:   1,
	}, &rows)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// InsertWeChatAccount writes a new account and returns its generated id.
func (c *Client) InsertWeChatAccount(ctx context.Context, account model.WeChatAccount) (string, error) {
	now := time.Now().UTC()
	account.CreatedAt = &now
	account.UpdatedAt = &now

	var inserted []model.WeChatAccount
	if err := c.Insert(ctx, TableWeChat, account, &inserted); err != nil {
		return "", err
	}
	if len(inserted) == 0 {
		return "", fmt.Errorf("store insert %s: empty representation", TableWeChat)
	}
	return inserted[0].ID, nil
}

// AllWeChatAccountsByAge returns every account ordered by creation time
// ascending, for duplicate cleanup.
func (c *Client) AllWeChatAccountsByAge(ctx context.Context) ([]model.WeChatAccount, error) {
	var accounts []model.WeChatAccount
	err := c.Select(ctx, TableWeChat, Query{
		Columns:   "id,name,wechat_id,created_at",
		OrderBy:   "created_at",
		Ascending: true,
	}, &accounts)
	return accounts, err
}

// DeleteWeChatAccount removes one account by id.
func (c *Client) DeleteWeChatAccount(ctx context.Context, id string) error {
	return c.Delete(ctx, TableWeChat, Eq("id", id))
}

// SaveCrawlLog appends one audit-trail row. Failures are logged by the
// caller but never abort the job that produced them.
func (c *Client) SaveCrawlLog(ctx context.Context, entry model.CrawlLog) error {
	if entry.CrawledAt.IsZero() {
		entry.CrawledAt = time.Now().UTC()
	}
	return c.Insert(ctx, TableCrawlLogs, entry, nil)
}

// TableCount returns the exact row count of a table, for the status
// report.
func (c *Client) TableCount(ctx context.Context, table string) (int, error) {
	return c.Count(ctx, table)
}
