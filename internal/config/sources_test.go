package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSourcesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSources(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - name: FeedSource
    feed: https://example.com/rss
  - name: HTMLSource
    url: https://example.com/
    selectors:
      list: .item
      title: .title
      link: .title a
      summary: .excerpt
inactive_websites:
  - https://dead.example.com/
`)

	sf, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sf.Sources, 2)

	require.True(t, sf.Sources[0].IsFeed())
	require.False(t, sf.Sources[1].IsFeed())
	require.Equal(t, ".item", sf.Sources[1].Selectors.List)
	require.Equal(t, []string{"https://dead.example.com/"}, sf.InactiveWebsites)
}

func TestLoadSourcesMissingName(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - feed: https://example.com/rss
`)
	_, err := LoadSources(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "without name")
}

func TestLoadSourcesHTMLNeedsSelectors(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - name: Broken
    url: https://example.com/
`)
	_, err := LoadSources(path)
	require.Error(t, err)
}

func TestLoadSourcesSelectorsNeedListTitleLink(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - name: Partial
    url: https://example.com/
    selectors:
      list: .item
`)
	_, err := LoadSources(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "list, title and link")
}

func TestLoadSourcesMissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
