package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/icpulse/icnews/internal/model"
)

type fakeStore struct {
	websites []model.Website
	statuses map[string]bool
	notes    map[string]string
}

func (f *fakeStore) ActiveWebsites(ctx context.Context) ([]model.Website, error) {
	return f.websites, nil
}

func (f *fakeStore) SetWebsiteStatus(ctx context.Context, id string, active bool, note string) error {
	if f.statuses == nil {
		f.statuses = make(map[string]bool)
		f.notes = make(map[string]string)
	}
	f.statuses[id] = active
	f.notes[id] = note
	return nil
}

func newChecker(store Store) *Checker {
	return New(store, 5*time.Second, time.Millisecond, "icnews-test")
}

func TestCheckHealthyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("content ", 50)))
	}))
	defer srv.Close()

	probe := newChecker(&fakeStore{}).Check(context.Background(), srv.URL)
	require.True(t, probe.Available)
	require.Equal(t, http.StatusOK, probe.StatusCode)
	require.Empty(t, probe.ErrorMessage)
	require.Greater(t, probe.ResponseTime, time.Duration(0))
}

func TestCheckShortBodyNotAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tiny"))
	}))
	defer srv.Close()

	probe := newChecker(&fakeStore{}).Check(context.Background(), srv.URL)
	require.False(t, probe.Available)
	require.Equal(t, "页面内容过短，可能是错误页面", probe.ErrorMessage)
}

func TestCheckStatusMessages(t *testing.T) {
	cases := []struct {
		status int
		msg    string
	}{
		{http.StatusForbidden, "访问被拒绝 (403 Forbidden)"},
		{http.StatusNotFound, "页面不存在 (404 Not Found)"},
		{http.StatusInternalServerError, "服务器内部错误 (500 Internal Server Error)"},
		{http.StatusTeapot, "HTTP状态码: 418"},
	}

	for _, tc := range cases {
		status := tc.status
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		probe := newChecker(&fakeStore{}).Check(context.Background(), srv.URL)
		require.False(t, probe.Available, tc.msg)
		require.Equal(t, tc.msg, probe.ErrorMessage)
		srv.Close()
	}
}

func TestCheckConnectionError(t *testing.T) {
	probe := newChecker(&fakeStore{}).Check(context.Background(), "http://127.0.0.1:1")
	require.False(t, probe.Available)
	require.NotEmpty(t, probe.ErrorMessage)
}

func TestCheckAllWritesEveryVerdict(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("ok ", 100)))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	fs := &fakeStore{websites: []model.Website{
		{ID: "g", Name: "Good Site", URL: good.URL},
		{ID: "b", Name: "Bad Site", URL: bad.URL},
	}}

	sum, err := newChecker(fs).CheckAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, sum.Checked)
	require.Equal(t, 1, sum.Available)
	require.Equal(t, 1, sum.Unavailable)

	require.True(t, fs.statuses["g"])
	require.False(t, fs.statuses["b"])
	require.Equal(t, "页面不存在 (404 Not Found)", fs.notes["b"])
}
