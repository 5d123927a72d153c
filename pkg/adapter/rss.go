package adapter

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// maxNewsItems bounds how many items of a feed are looked at per fetch
const maxNewsItems = 15

// NewsItem is one RSS item. GUID falls back to the link when absent.
type NewsItem struct {
	Title       string
	Link        string
	Description string
	GUID        string
}

// NewsFeed reads a single RSS 2.0 feed
type NewsFeed struct {
	Name   string
	Source string
	URL    string

	httpClient *http.Client
}

func NewNewsFeed(name, source, url string) *NewsFeed {
	return &NewsFeed{
		Name:       name,
		Source:     source,
		URL:        url,
		httpClient: &http.Client{Timeout: feedTimeout},
	}
}

type rssDocument struct {
	Channel *struct {
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
			GUID        string `xml:"guid"`
		} `xml:"item"`
	} `xml:"channel"`
}

// Fetch returns up to the first 15 usable items of the feed
func (f *NewsFeed) Fetch(ctx context.Context) ([]*NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("feed", f.Name))
	}
	req.Header.Set("User-Agent", feedUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request", goerr.V("feed", f.Name))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, goerr.New("RSS feed returned error",
			goerr.V("feed", f.Name),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	return parseRSS(resp.Body, f.Name)
}

func parseRSS(r io.Reader, name string) ([]*NewsItem, error) {
	var doc rssDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse RSS", goerr.V("feed", name))
	}
	if doc.Channel == nil {
		return nil, nil
	}

	var items []*NewsItem
	for _, it := range doc.Channel.Items {
		item := &NewsItem{
			Title:       strings.TrimSpace(it.Title),
			Link:        strings.TrimSpace(it.Link),
			Description: strings.TrimSpace(it.Description),
			GUID:        strings.TrimSpace(it.GUID),
		}
		if item.GUID == "" {
			item.GUID = item.Link
		}
		if item.Title == "" || item.GUID == "" {
			continue
		}
		items = append(items, item)
		if len(items) == maxNewsItems {
			break
		}
	}
	return items, nil
}

// SourceID is the stable source tag used in dedup keys
func (f *NewsFeed) SourceID() string {
	return f.Source
}
