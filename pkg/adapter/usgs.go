package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fa-friend/fa/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const (
	USGSGlobalURL       = "https://earthquake.usgs.gov/fdsnws/event/1/query?format=geojson&minmagnitude=5.0&limit=10&orderby=time"
	USGSNearThailandURL = "https://earthquake.usgs.gov/fdsnws/event/1/query?format=geojson&minmagnitude=4.0&limit=10&orderby=time&latitude=13.0&longitude=101.0&maxradiuskm=2000"

	feedTimeout   = 15 * time.Second
	feedUserAgent = "FaAIFriend/1.0"
)

// Earthquake is one event from the USGS feed
type Earthquake struct {
	ID           string
	Magnitude    float64
	Place        string
	DepthKm      float64
	URL          string
	NearThailand bool
}

// EarthquakeFeed queries the USGS event API twice per fetch: once for
// strong events worldwide and once for the region around Thailand.
type EarthquakeFeed struct {
	httpClient *http.Client
	globalURL  string
	nearURL    string
}

type EarthquakeFeedOption func(*EarthquakeFeed)

// WithEarthquakeURLs overrides the global and regional query URLs
func WithEarthquakeURLs(global, near string) EarthquakeFeedOption {
	return func(f *EarthquakeFeed) {
		f.globalURL = global
		f.nearURL = near
	}
}

func WithEarthquakeHTTPClient(client *http.Client) EarthquakeFeedOption {
	return func(f *EarthquakeFeed) {
		f.httpClient = client
	}
}

func NewEarthquakeFeed(opts ...EarthquakeFeedOption) *EarthquakeFeed {
	f := &EarthquakeFeed{
		httpClient: &http.Client{Timeout: feedTimeout},
		globalURL:  USGSGlobalURL,
		nearURL:    USGSNearThailandURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the events of both queries, deduplicated by event id with
// the first occurrence kept. A failing query is logged and skipped; an error
// is returned only when every query fails.
func (f *EarthquakeFeed) Fetch(ctx context.Context) ([]*Earthquake, error) {
	queries := []struct {
		url  string
		near bool
	}{
		{url: f.globalURL, near: false},
		{url: f.nearURL, near: true},
	}

	seen := make(map[string]struct{})
	var events []*Earthquake
	var lastErr error
	failed := 0

	for _, q := range queries {
		got, err := f.query(ctx, q.url, q.near)
		if err != nil {
			logging.From(ctx).Warn("USGS query failed", logging.ErrAttr(err), "near_thailand", q.near)
			lastErr = err
			failed++
			continue
		}
		for _, ev := range got {
			if _, ok := seen[ev.ID]; ok {
				continue
			}
			seen[ev.ID] = struct{}{}
			events = append(events, ev)
		}
	}

	if failed == len(queries) {
		return nil, goerr.Wrap(lastErr, "all USGS queries failed")
	}
	return events, nil
}

type usgsResponse struct {
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			Mag   *float64 `json:"mag"`
			Place *string  `json:"place"`
			URL   *string  `json:"url"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func (f *EarthquakeFeed) query(ctx context.Context, url string, near bool) ([]*Earthquake, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", url))
	}
	req.Header.Set("User-Agent", feedUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request", goerr.V("url", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, goerr.New("USGS API returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	var data usgsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode USGS response", goerr.V("url", url))
	}

	events := make([]*Earthquake, 0, len(data.Features))
	for _, feat := range data.Features {
		if feat.ID == "" {
			continue
		}
		ev := &Earthquake{
			ID:           feat.ID,
			Place:        "Unknown",
			NearThailand: near,
		}
		if p := feat.Properties.Mag; p != nil {
			ev.Magnitude = *p
		}
		if p := feat.Properties.Place; p != nil && *p != "" {
			ev.Place = *p
		}
		if p := feat.Properties.URL; p != nil {
			ev.URL = *p
		}
		if c := feat.Geometry.Coordinates; len(c) > 2 {
			ev.DepthKm = c[2]
		}
		events = append(events, ev)
	}
	return events, nil
}
