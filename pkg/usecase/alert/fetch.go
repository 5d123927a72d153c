package alert

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/fa-friend/fa/pkg/adapter"
	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/utils/logging"
	"github.com/fa-friend/fa/pkg/workflow"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

const (
	earthquakeTTL = 24 * time.Hour
	newsTTL       = 12 * time.Hour

	maxNewsDescription = 500
)

// CycleResult counts what one fetch cycle changed
type CycleResult struct {
	Earthquakes int `json:"earthquakes"`
	News        int `json:"news"`
	Expired     int `json:"expired"`
}

// RunFetchCycle fetches earthquakes and news concurrently, stores new
// alerts and expires stale ones. A failing source is logged and does not
// affect the other; expiry runs regardless. Only an expiry failure is returned.
func (u *UseCase) RunFetchCycle(ctx context.Context) (*CycleResult, error) {
	logger := logging.From(ctx)
	logger.Info("alert fetch cycle started")

	var result CycleResult
	var eg errgroup.Group

	eg.Go(func() error {
		result.Earthquakes = u.fetchEarthquakes(ctx)
		return nil
	})
	eg.Go(func() error {
		result.News = u.fetchNews(ctx)
		return nil
	})
	_ = eg.Wait()

	expired, err := u.repo.ExpireAlerts(ctx, u.now())
	if err != nil {
		return &result, goerr.Wrap(err, "failed to expire alerts")
	}
	result.Expired = expired

	logger.Info("alert fetch cycle done",
		"earthquakes", result.Earthquakes,
		"news", result.News,
		"expired", result.Expired)

	return &result, nil
}

func (u *UseCase) fetchEarthquakes(ctx context.Context) int {
	if u.quakes == nil {
		return 0
	}
	logger := logging.From(ctx)

	events, err := u.quakes.Fetch(ctx)
	if err != nil {
		logger.Warn("earthquake fetch failed", logging.ErrAttr(err))
		return 0
	}

	now := u.now()
	seen := make(map[string]struct{}, len(events))
	created := 0
	for _, ev := range events {
		if _, ok := seen[ev.ID]; ok {
			continue
		}
		seen[ev.ID] = struct{}{}

		severity, keep := u.decide(ctx, workflow.FeedInput{
			Type:         model.AlertTypeEarthquake,
			Source:       "usgs",
			Title:        earthquakeTitle(ev),
			Magnitude:    ev.Magnitude,
			Location:     ev.Place,
			NearThailand: ev.NearThailand,
			Severity:     ClassifyEarthquake(ev.Magnitude, ev.NearThailand),
		})
		if !keep {
			continue
		}

		alert := &model.Alert{
			ID:          model.NewAlertID(),
			Type:        model.AlertTypeEarthquake,
			Severity:    severity,
			Title:       earthquakeTitle(ev),
			Description: fmt.Sprintf("แผ่นดินไหวขนาด %.1f ริกเตอร์ บริเวณ %s ความลึก %.0f กม.", ev.Magnitude, ev.Place, ev.DepthKm),
			Source:      "usgs",
			ExternalID:  ev.ID,
			Magnitude:   ev.Magnitude,
			Location:    ev.Place,
			URL:         ev.URL,
			FetchedAt:   now,
			ExpiresAt:   now.Add(earthquakeTTL),
			IsActive:    true,
		}
		if u.save(ctx, alert) {
			created++
		}
	}
	return created
}

func earthquakeTitle(ev *adapter.Earthquake) string {
	return fmt.Sprintf("แผ่นดินไหว M%.1f - %s", ev.Magnitude, ev.Place)
}

func (u *UseCase) fetchNews(ctx context.Context) int {
	created := 0
	for _, src := range u.news {
		created += u.fetchNewsSource(ctx, src)
	}
	return created
}

func (u *UseCase) fetchNewsSource(ctx context.Context, src NewsSource) int {
	logger := logging.From(ctx).With("source", src.SourceID())

	items, err := src.Fetch(ctx)
	if err != nil {
		logger.Warn("news fetch failed", logging.ErrAttr(err))
		return 0
	}

	now := u.now()
	created := 0
	for _, item := range items {
		severity, keep := u.decide(ctx, workflow.FeedInput{
			Type:        model.AlertTypeNews,
			Source:      src.SourceID(),
			Title:       item.Title,
			Description: item.Description,
			Severity:    ClassifyNews(item.Title, item.Description),
		})
		if !keep || severity == model.SeverityInfo {
			continue
		}

		alert := &model.Alert{
			ID:          model.NewAlertID(),
			Type:        model.AlertTypeNews,
			Severity:    severity,
			Title:       item.Title,
			Description: truncate(item.Description, maxNewsDescription),
			Source:      src.SourceID(),
			ExternalID:  NewsExternalID(src.SourceID(), item.GUID),
			URL:         item.Link,
			FetchedAt:   now,
			ExpiresAt:   now.Add(newsTTL),
			IsActive:    true,
		}
		if u.save(ctx, alert) {
			created++
		}
	}
	return created
}

// NewsExternalID builds the dedup key of a news item: the source tag and
// the first 16 hex digits of the MD5 of its GUID.
func NewsExternalID(source, guid string) string {
	sum := md5.Sum([]byte(guid))
	return source + "_" + hex.EncodeToString(sum[:])[:16]
}

// decide runs the feed policy. A policy failure keeps the item as classified.
func (u *UseCase) decide(ctx context.Context, input workflow.FeedInput) (model.Severity, bool) {
	if !u.policy.Enabled() {
		return input.Severity, true
	}

	d, err := u.policy.Evaluate(ctx, input)
	if err != nil {
		logging.From(ctx).Warn("feed policy failed", logging.ErrAttr(err), "title", input.Title)
		return input.Severity, true
	}
	return d.Severity, !d.Discard
}

func (u *UseCase) save(ctx context.Context, alert *model.Alert) bool {
	created, err := u.repo.SaveAlert(ctx, alert)
	if err != nil {
		logging.From(ctx).Warn("failed to save alert", logging.ErrAttr(err), "external_id", alert.ExternalID)
		return false
	}
	if created {
		logging.From(ctx).Info("new alert", "title", alert.Title, "severity", alert.Severity)
	}
	return created
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
