package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/icpulse/icnews/internal/model"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(srv.URL, "test-key", 5*time.Second, "icnews-test"), srv
}

func TestSelectBuildsQuery(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	var gotAuth, gotAPIKey string

	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		w.Write([]byte(`[{"id":"1","title":"t"}]`))
	})
	defer srv.Close()

	var rows []model.Article
	err := client.Select(context.Background(), TableNews, Query{
		Columns:   "id,title",
		Filters:   []Filter{Eq("source", "EETimes"), Gte("created_at", "2026-01-01")},
		OrderBy:   "created_at",
		Ascending: true,
		Limit:     5,
	}, &rows)
	require.NoError(t, err)

	require.Equal(t, "/rest/v1/news", gotPath)
	require.Equal(t, "id,title", gotQuery["select"])
	require.Equal(t, "eq.EETimes", gotQuery["source"])
	require.Equal(t, "gte.2026-01-01", gotQuery["created_at"])
	require.Equal(t, "created_at.asc", gotQuery["order"])
	require.Equal(t, "5", gotQuery["limit"])
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "test-key", gotAPIKey)

	require.Len(t, rows, 1)
	require.Equal(t, "1", rows[0].ID)
}

func TestSelectErrorIncludesStatusAndBody(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"bad key"}`))
	})
	defer srv.Close()

	var rows []model.Article
	err := client.Select(context.Background(), TableNews, Query{}, &rows)
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
	require.Contains(t, err.Error(), "bad key")
}

func TestCountParsesContentRange(t *testing.T) {
	var gotPrefer string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		w.Header().Set("Content-Range", "0-0/42")
		w.Write([]byte(`[]`))
	})
	defer srv.Close()

	n, err := client.Count(context.Background(), TableWebsites)
	require.NoError(t, err)
	require.Equal(t, 42, n)
	require.Equal(t, "count=exact", gotPrefer)
}

func TestCountHandlesUnknownTotal(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "*/*")
		w.Write([]byte(`[]`))
	})
	defer srv.Close()

	n, err := client.Count(context.Background(), TableNews)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestInsertReturnsRepresentation(t *testing.T) {
	var gotPrefer, gotMethod string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		gotMethod = r.Method

		var row model.Article
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		row.ID = "generated-id"
		json.NewEncoder(w).Encode([]model.Article{row})
	})
	defer srv.Close()

	inserted, err := client.InsertArticle(context.Background(), model.Article{
		Title:       "New Article",
		Source:      "EETimes",
		OriginalURL: "https://example.com/1",
	})
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "return=representation", gotPrefer)
	require.Equal(t, "generated-id", inserted.ID)
	require.NotNil(t, inserted.CreatedAt)
	require.NotNil(t, inserted.CrawledAt)
}

func TestUpdatePatchesMatchingRows(t *testing.T) {
	var gotMethod, gotFilter string
	var gotPatch map[string]any
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotFilter = r.URL.Query().Get("id")
		json.NewDecoder(r.Body).Decode(&gotPatch)
		w.Write([]byte(`[]`))
	})
	defer srv.Close()

	err := client.SetArticleAISummary(context.Background(), "id-7", "概要", []string{"芯片"})
	require.NoError(t, err)
	require.Equal(t, http.MethodPatch, gotMethod)
	require.Equal(t, "eq.id-7", gotFilter)
	require.Equal(t, "概要", gotPatch["ai_summary"])
	require.Equal(t, true, gotPatch["ai_processed"])
	require.NotEmpty(t, gotPatch["ai_processed_at"])
}

func TestDeleteSendsFilters(t *testing.T) {
	var gotMethod, gotFilter string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotFilter = r.URL.Query().Get("id")
		w.Write([]byte(`[]`))
	})
	defer srv.Close()

	err := client.DeleteArticle(context.Background(), "id-9")
	require.NoError(t, err)
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, "eq.id-9", gotFilter)
}

func TestArticleIDByEmptyResult(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	defer srv.Close()

	id, err := client.ArticleIDBy(context.Background(), "title", "missing")
	require.NoError(t, err)
	require.Empty(t, id)
}
