// Package textutil holds the shared text cleaning, date parsing and
// classification helpers used across the pipeline.
package textutil

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanText strips markup tags and collapses whitespace.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = tagRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ExtractSummary returns the body unchanged if it fits maxLen runes,
// otherwise accumulates whole sentences until the next one would exceed
// the limit. When not even the first sentence fits, it hard-truncates
// with an ellipsis.
func ExtractSummary(content string, maxLen int) string {
	if content == "" {
		return ""
	}

	clean := CleanText(content)
	if runeLen(clean) <= maxLen {
		return clean
	}

	sentences := strings.Split(clean, "。")
	var summary strings.Builder

	for _, sentence := range sentences {
		if sentence == "" {
			continue
		}
		if runeLen(summary.String())+runeLen(sentence)+1 > maxLen {
			break
		}
		summary.WriteString(sentence)
		summary.WriteString("。")
	}

	if summary.Len() == 0 {
		runes := []rune(clean)
		return string(runes[:maxLen-3]) + "..."
	}
	return summary.String()
}

func runeLen(s string) int { return len([]rune(s)) }

type datePattern struct {
	re     *regexp.Regexp
	layout func(groups []string) time.Time
}

var datePatterns = []datePattern{
	// 2024-01-01 12:00:05 (second optional, "T" separator accepted)
	{regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})[ T](\d{1,2}):(\d{1,2})(?::(\d{1,2}))?`), numericDate},
	// 2024-01-01
	{regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`), numericDate},
	// 2024年1月1日
	{regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`), numericDate},
	// 1月1日 (current year)
	{regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`), monthDayDate},
}

func numericDate(g []string) time.Time {
	year := atoi(g[1])
	month := atoi(g[2])
	day := atoi(g[3])
	hour, minute, sec := 0, 0, 0
	if len(g) > 4 && g[4] != "" {
		hour = atoi(g[4])
	}
	if len(g) > 5 && g[5] != "" {
		minute = atoi(g[5])
	}
	if len(g) > 6 && g[6] != "" {
		sec = atoi(g[6])
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
}

func monthDayDate(g []string) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), time.Month(atoi(g[1])), atoi(g[2]), 0, 0, 0, 0, time.UTC)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ParseDate matches a prioritized list of date patterns against the raw
// string. The second return value is false when nothing matched and the
// current time was substituted; callers log a warning but proceed.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC(), false
	}

	for _, p := range datePatterns {
		if groups := p.re.FindStringSubmatch(raw); groups != nil {
			t := p.layout(groups)
			if t.Month() >= 1 && t.Month() <= 12 && t.Day() >= 1 && t.Day() <= 31 {
				return t, true
			}
		}
	}

	if t, err := dateparse.ParseAny(raw); err == nil {
		return t.UTC(), true
	}

	return time.Now().UTC(), false
}

// categoryKeywords maps a category to its trigger keywords. Order is
// significant: the first category with a matching keyword wins.
var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{"制造工艺", []string{"制造", "工艺", "制程", "7nm", "5nm", "3nm", "晶圆", "代工"}},
	{"设计工具", []string{"eda", "设计", "cadence", "synopsys", "mentor"}},
	{"市场分析", []string{"市场", "预测", "分析", "增长", "营收", "份额", "报告"}},
	{"投资并购", []string{"投资", "并购", "收购", "融资", "上市", "募资", "估值"}},
	{"技术创新", []string{"技术", "创新", "突破", "专利", "研发", "算法", "架构"}},
	{"政策法规", []string{"政策", "法规", "标准", "规范", "监管", "审查", "制裁"}},
	{"人事变动", []string{"人事", "任命", "离职", "加入", "ceo", "cto", "高管"}},
	{"产品发布", []string{"发布", "推出", "上市", "产品", "芯片", "处理器"}},
}

// DefaultCategory is assigned when no keyword matches.
const DefaultCategory = "行业动态"

// Categorize assigns a category from the fixed taxonomy based on keyword
// membership in title and content.
func Categorize(title, content string) string {
	haystack := strings.ToLower(title + " " + content)

	for _, cat := range categoryKeywords {
		for _, kw := range cat.keywords {
			if strings.Contains(haystack, kw) {
				return cat.name
			}
		}
	}
	return DefaultCategory
}

// IsRelevant reports whether the text is long enough and mentions at
// least one of the domain keywords (case-insensitive).
func IsRelevant(text string, minLength int, keywords []string) bool {
	if text == "" || runeLen(text) < minLength {
		return false
	}

	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// NormalizeURL resolves a possibly relative URL against a base and strips
// the trailing slash.
func NormalizeURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	if base != "" && !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		baseURL, err := url.Parse(base)
		if err == nil {
			if ref, err := url.Parse(raw); err == nil {
				raw = baseURL.ResolveReference(ref).String()
			}
		}
	}

	return strings.TrimRight(raw, "/")
}

// ContentHash is the coarse duplicate fingerprint: an md5 digest over the
// lower-cased, trimmed concatenation of title and URL.
func ContentHash(title, url string) string {
	content := strings.ToLower(strings.TrimSpace(title))
	if url != "" {
		content += strings.ToLower(strings.TrimSpace(url))
	}
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
