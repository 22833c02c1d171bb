package textutil

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	require.Equal(t, "hello world", CleanText("  <p>hello\n\n  <b>world</b></p>  "))
	require.Equal(t, "", CleanText(""))
	require.Equal(t, "芯片 发布", CleanText("<div>芯片\t 发布</div>"))
}

func TestExtractSummaryShortContentUnchanged(t *testing.T) {
	require.Equal(t, "短内容。", ExtractSummary("短内容。", 200))
}

func TestExtractSummaryAccumulatesSentences(t *testing.T) {
	first := strings.Repeat("甲", 40)
	second := strings.Repeat("乙", 40)
	third := strings.Repeat("丙", 40)
	content := first + "。" + second + "。" + third + "。"

	got := ExtractSummary(content, 100)
	require.Equal(t, first+"。"+second+"。", got)
}

func TestExtractSummaryHardTruncatesWhenFirstSentenceTooLong(t *testing.T) {
	content := strings.Repeat("长", 300) + "。"
	got := ExtractSummary(content, 100)
	require.True(t, strings.HasSuffix(got, "..."))
	require.Len(t, []rune(got), 100)
}

func TestParseDatePatterns(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2024-03-05 14:30:15", time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC)},
		{"2024-03-05 14:30", time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024年3月5日", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.raw)
		require.True(t, ok, tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
	}
}

func TestParseDateMonthDayUsesCurrentYear(t *testing.T) {
	got, ok := ParseDate("发布于 3月5日")
	require.True(t, ok)
	require.Equal(t, time.Now().UTC().Year(), got.Year())
	require.Equal(t, time.March, got.Month())
	require.Equal(t, 5, got.Day())
}

func TestParseDateFallsBackToNow(t *testing.T) {
	before := time.Now().UTC()
	got, ok := ParseDate("no date here")
	require.False(t, ok)
	require.False(t, got.Before(before.Add(-time.Second)))
}

func TestCategorize(t *testing.T) {
	require.Equal(t, "制造工艺", Categorize("台积电7nm晶圆产能扩张", ""))
	require.Equal(t, "投资并购", Categorize("某公司完成新一轮融资", ""))
	require.Equal(t, DefaultCategory, Categorize("一般新闻标题", "没有关键词的内容"))
}

func TestCategorizeFirstMatchWins(t *testing.T) {
	// Both 制造工艺 (工艺) and 产品发布 (发布) match; the earlier
	// category in the taxonomy takes it.
	require.Equal(t, "制造工艺", Categorize("新工艺产品发布", ""))
}

func TestIsRelevant(t *testing.T) {
	keywords := []string{"半导体", "IC", "芯片"}
	require.True(t, IsRelevant("国产芯片取得新突破", 5, keywords))
	require.True(t, IsRelevant("new ic design flow announced", 5, []string{"IC"}))
	require.False(t, IsRelevant("芯片", 5, keywords))
	require.False(t, IsRelevant("完全无关的新闻标题", 5, keywords))
	require.False(t, IsRelevant("", 5, keywords))
}

func TestNormalizeURL(t *testing.T) {
	require.Equal(t, "https://example.com/news/1",
		NormalizeURL("/news/1", "https://example.com/list"))
	require.Equal(t, "https://example.com/news/1",
		NormalizeURL("https://example.com/news/1/", ""))
	require.Equal(t, "", NormalizeURL("", "https://example.com"))
}

func TestContentHashNormalization(t *testing.T) {
	a := ContentHash("  Chip News  ", "HTTPS://EXAMPLE.COM/1")
	b := ContentHash("chip news", "https://example.com/1")
	require.Equal(t, a, b)
	require.NotEqual(t, a, ContentHash("chip news", "https://example.com/2"))
}
