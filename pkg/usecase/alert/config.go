package alert

import (
	"os"

	"github.com/fa-friend/fa/pkg/adapter"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// FeedConfig lists the feeds polled by the fetch cycle
type FeedConfig struct {
	Earthquake struct {
		GlobalURL string `yaml:"global_url"`
		NearURL   string `yaml:"near_url"`
	} `yaml:"earthquake"`
	News []NewsFeedConfig `yaml:"news"`
}

type NewsFeedConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Source string `yaml:"source"`
}

// DefaultFeedConfig is used when no feed file is given
func DefaultFeedConfig() *FeedConfig {
	cfg := &FeedConfig{
		News: []NewsFeedConfig{
			{Name: "BBC Thai", URL: "https://feeds.bbci.co.uk/thai/rss.xml", Source: "bbc_thai"},
		},
	}
	cfg.Earthquake.GlobalURL = adapter.USGSGlobalURL
	cfg.Earthquake.NearURL = adapter.USGSNearThailandURL
	return cfg
}

// LoadFeedConfig reads a YAML feed list. Missing earthquake URLs fall back to the defaults.
func LoadFeedConfig(path string) (*FeedConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read feed config", goerr.V("path", path))
	}

	var cfg FeedConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse feed config", goerr.V("path", path))
	}

	if cfg.Earthquake.GlobalURL == "" {
		cfg.Earthquake.GlobalURL = adapter.USGSGlobalURL
	}
	if cfg.Earthquake.NearURL == "" {
		cfg.Earthquake.NearURL = adapter.USGSNearThailandURL
	}
	for i, feed := range cfg.News {
		if feed.URL == "" || feed.Source == "" {
			return nil, goerr.New("news feed needs url and source", goerr.V("index", i), goerr.V("name", feed.Name))
		}
	}

	return &cfg, nil
}

// Options turns the config into UseCase options
func (c *FeedConfig) Options() []Option {
	news := make([]NewsSource, len(c.News))
	for i, feed := range c.News {
		news[i] = adapter.NewNewsFeed(feed.Name, feed.Source, feed.URL)
	}

	return []Option{
		WithEarthquakeSource(adapter.NewEarthquakeFeed(
			adapter.WithEarthquakeURLs(c.Earthquake.GlobalURL, c.Earthquake.NearURL),
		)),
		WithNewsSources(news...),
	}
}
