package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Selectors are the per-source CSS selectors for HTML listing pages.
type Selectors struct {
	List    string `yaml:"list"`
	Title   string `yaml:"title"`
	Link    string `yaml:"link"`
	Summary string `yaml:"summary,omitempty"`
	Date    string `yaml:"date,omitempty"`
	Content string `yaml:"content,omitempty"`
}

// Source is one configured news source. A source is either a structured
// feed (Feed set) or an HTML listing page (URL plus Selectors).
type Source struct {
	Name      string     `yaml:"name"`
	Feed      string     `yaml:"feed,omitempty"`
	URL       string     `yaml:"url,omitempty"`
	Selectors *Selectors `yaml:"selectors,omitempty"`
}

// IsFeed reports whether the source is a structured feed.
func (s Source) IsFeed() bool { return s.Feed != "" }

// SourcesFile is the YAML source-list document.
type SourcesFile struct {
	Sources          []Source `yaml:"sources"`
	InactiveWebsites []string `yaml:"inactive_websites,omitempty"`
}

// LoadSources reads the source list from a YAML file.
func LoadSources(path string) (*SourcesFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sf SourcesFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	for _, s := range sf.Sources {
		if s.Name == "" {
			return nil, fmt.Errorf("source without name in %s", path)
		}
		if s.IsFeed() {
			continue
		}
		if s.URL == "" || s.Selectors == nil {
			return nil, fmt.Errorf("source %q needs either feed or url+selectors", s.Name)
		}
		if s.Selectors.List == "" || s.Selectors.Title == "" || s.Selectors.Link == "" {
			return nil, fmt.Errorf("source %q selectors need list, title and link", s.Name)
		}
	}

	return &sf, nil
}
