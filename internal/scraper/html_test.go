package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/icpulse/icnews/internal/config"
	"github.com/icpulse/icnews/internal/dedup"
	"github.com/icpulse/icnews/internal/httpx"
)

const listingHTML = `<html><body>
<div class="post-item">
	<h2 class="post-title"><a href="/news/1">台积电3nm芯片工艺量产进展</a></h2>
	<div class="post-excerpt">台积电宣布3nm制程进入量产阶段。</div>
	<span class="post-date">2026-08-30</span>
</div>
<div class="post-item">
	<h2 class="post-title"><a href="/news/2">与行业无关的通用新闻标题</a></h2>
	<span class="post-date">2026-08-30</span>
</div>
<div class="post-item">
	<h2 class="post-title">没有链接的半导体芯片条目</h2>
</div>
<div class="post-item">
	<h2 class="post-title"><a href="/news/3">已经见过的半导体芯片新闻</a></h2>
</div>
</body></html>`

func testHTMLSource(url string) config.Source {
	return config.Source{
		Name: "TestWiki",
		URL:  url,
		Selectors: &config.Selectors{
			List:    ".post-item",
			Title:   ".post-title",
			Link:    ".post-title a",
			Summary: ".post-excerpt",
			Date:    ".post-date",
		},
	}
}

func testOptions() Options {
	return Options{
		TitleMinLength: 5,
		DomainKeywords: []string{"半导体", "芯片", "IC"},
	}
}

func TestHTMLAdapterFetch(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingHTML))
	})
	mux.HandleFunc("/news/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><article>` + strings.Repeat("量产细节 ", 60) + `</article></body></html>`))
	})

	client := httpx.NewClient(0, "test")
	adapter := newHTMLAdapter(testHTMLSource(srv.URL), client, NewExtractor(client), testOptions())

	lb := dedup.NewLookback(config.TitleMatchExact)
	lb.Add("已经见过的半导体芯片新闻", srv.URL+"/news/3")

	articles, err := adapter.Fetch(context.Background(), lb)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	got := articles[0]
	require.Equal(t, "台积电3nm芯片工艺量产进展", got.Title)
	require.Equal(t, srv.URL+"/news/1", got.OriginalURL)
	require.Equal(t, "TestWiki", got.Source)
	require.Contains(t, got.Content, "量产细节")
	require.Equal(t, "台积电宣布3nm制程进入量产阶段。", got.Summary)
	require.Equal(t, "制造工艺", got.Category)
	require.Equal(t, []string{"TestWiki", "HTML"}, got.Tags)
	require.Equal(t, 2026, got.PublishedAt.Year())
}

func TestHTMLAdapterListingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := httpx.NewClient(0, "test")
	adapter := newHTMLAdapter(testHTMLSource(srv.URL), client, NewExtractor(client), testOptions())

	_, err := adapter.Fetch(context.Background(), dedup.NewLookback(config.TitleMatchExact))
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}

func TestNewAdapterDispatch(t *testing.T) {
	client := httpx.NewClient(0, "test")
	extractor := NewExtractor(client)

	feed, err := NewAdapter(config.Source{Name: "F", Feed: "https://example.com/rss"}, client, extractor, testOptions())
	require.NoError(t, err)
	require.IsType(t, &feedAdapter{}, feed)

	html, err := NewAdapter(testHTMLSource("https://example.com"), client, extractor, testOptions())
	require.NoError(t, err)
	require.IsType(t, &htmlAdapter{}, html)

	_, err = NewAdapter(config.Source{Name: "Broken"}, client, extractor, testOptions())
	require.Error(t, err)
}
