package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/icpulse/icnews/internal/config"
	"github.com/icpulse/icnews/internal/model"
)

// fakeStoreServer speaks just enough of the record-store REST dialect
// for the runner: empty lookbacks, article inserts, crawl-log appends
// and website listing/deletion.
type fakeStoreServer struct {
	mu        sync.Mutex
	articles  []model.Article
	crawlLogs []model.CrawlLog
	websites  []model.Website
	deleted   []string
}

func (f *fakeStoreServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case table == "news" && r.Method == http.MethodGet:
			w.Write([]byte(`[]`))
		case table == "news" && r.Method == http.MethodPost:
			var a model.Article
			json.NewDecoder(r.Body).Decode(&a)
			a.ID = fmt.Sprintf("id-%d", len(f.articles)+1)
			f.articles = append(f.articles, a)
			json.NewEncoder(w).Encode([]model.Article{a})
		case table == "crawl_logs" && r.Method == http.MethodPost:
			var entry model.CrawlLog
			json.NewDecoder(r.Body).Decode(&entry)
			f.crawlLogs = append(f.crawlLogs, entry)
			w.Write([]byte(`[]`))
		case table == "websites" && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(f.websites)
		case table == "websites" && r.Method == http.MethodDelete:
			f.deleted = append(f.deleted, r.URL.Query().Get("id"))
			w.Write([]byte(`[]`))
		default:
			w.Write([]byte(`[]`))
		}
	})
}

func (f *fakeStoreServer) errorLogsFor(source string) []model.CrawlLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	var logs []model.CrawlLog
	for _, l := range f.crawlLogs {
		if l.Source == source && l.Status == model.StatusError {
			logs = append(logs, l)
		}
	}
	return logs
}

func listingHTML(title, link string) string {
	return `<html><body>
<div class="item">
	<h2 class="title"><a href="` + link + `">` + title + `</a></h2>
	<div class="excerpt">关于` + title + `的摘要。</div>
</div>
</body></html>`
}

func writeTestSources(t *testing.T, contentURL string, inactive []string) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("sources:\n")
	for _, name := range []string{"one", "two", "three", "four", "five"} {
		sb.WriteString("  - name: source-" + name + "\n")
		sb.WriteString("    url: " + contentURL + "/" + name + "\n")
		sb.WriteString("    selectors:\n")
		sb.WriteString("      list: .item\n")
		sb.WriteString("      title: .title\n")
		sb.WriteString("      link: .title a\n")
		sb.WriteString("      summary: .excerpt\n")
	}
	if len(inactive) > 0 {
		sb.WriteString("inactive_websites:\n")
		for _, u := range inactive {
			sb.WriteString("  - " + u + "\n")
		}
	}

	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func newTestRunner(t *testing.T, storeURL, sourcesPath string) *Runner {
	t.Helper()
	t.Setenv("STORE_URL", storeURL)
	t.Setenv("STORE_SERVICE_KEY", "test-key")
	t.Setenv("SOURCES_PATH", sourcesPath)
	t.Setenv("CRAWL_DELAY_SECONDS", "0")

	cfg, err := config.Load()
	require.NoError(t, err)

	runner, err := New(cfg)
	require.NoError(t, err)
	return runner
}

func TestIngestNewsIsolatesFailingSource(t *testing.T) {
	fs := &fakeStoreServer{}
	storeSrv := httptest.NewServer(fs.handler())
	defer storeSrv.Close()

	mux := http.NewServeMux()
	contentSrv := httptest.NewServer(mux)
	defer contentSrv.Close()

	for _, name := range []string{"one", "two", "four", "five"} {
		name := name
		mux.HandleFunc("/"+name, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(listingHTML("半导体新闻来自"+name, contentSrv.URL+"/article-"+name)))
		})
	}
	// The third source is down.
	mux.HandleFunc("/three", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	runner := newTestRunner(t, storeSrv.URL, writeTestSources(t, contentSrv.URL, nil))
	require.NoError(t, runner.IngestNews(context.Background()))

	fs.mu.Lock()
	saved := len(fs.articles)
	fs.mu.Unlock()
	require.Equal(t, 4, saved)

	require.Len(t, fs.errorLogsFor("source-three"), 1)
	require.Empty(t, fs.errorLogsFor("source-one"))

	// The run itself still succeeds and is audited as such.
	var final *model.CrawlLog
	fs.mu.Lock()
	for i := range fs.crawlLogs {
		if fs.crawlLogs[i].Source == JobIngestNews {
			final = &fs.crawlLogs[i]
		}
	}
	fs.mu.Unlock()
	require.NotNil(t, final)
	require.Equal(t, model.StatusSuccess, final.Status)
	require.Equal(t, 4, final.ItemsCount)
}

func TestRemoveInactiveMatchesNormalizedURL(t *testing.T) {
	fs := &fakeStoreServer{websites: []model.Website{
		{ID: "w1", Name: "Dead Site", URL: "https://dead.example.com"},
		{ID: "w2", Name: "Live Site", URL: "https://live.example.com"},
	}}
	storeSrv := httptest.NewServer(fs.handler())
	defer storeSrv.Close()

	// Trailing slash and case differ from the stored URL.
	sources := writeTestSources(t, "https://unused.example.com", []string{"HTTPS://DEAD.EXAMPLE.COM/"})
	runner := newTestRunner(t, storeSrv.URL, sources)

	require.NoError(t, runner.RemoveInactive(context.Background()))

	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.Equal(t, []string{"eq.w1"}, fs.deleted)
}
