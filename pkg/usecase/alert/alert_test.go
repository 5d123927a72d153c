package alert_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fa-friend/fa/pkg/adapter"
	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/repository"
	"github.com/fa-friend/fa/pkg/usecase/alert"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/fa-friend/fa/pkg/workflow"
	"github.com/m-mizutani/gt"
)

func TestClassifyEarthquake(t *testing.T) {
	cases := []struct {
		mag  float64
		near bool
		want model.Severity
	}{
		{7.0, false, model.SeverityCritical},
		{7.4, true, model.SeverityCritical},
		{6.0, false, model.SeverityWarning},
		{5.0, true, model.SeverityWarning},
		{5.0, false, model.SeverityInfo},
		{4.9, true, model.SeverityInfo},
	}
	for _, c := range cases {
		gt.Equal(t, alert.ClassifyEarthquake(c.mag, c.near), c.want)
	}
}

func TestClassifyNews(t *testing.T) {
	gt.Equal(t, alert.ClassifyNews("เกิดแผ่นดินไหวที่เมียนมา", ""), model.SeverityCritical)
	gt.Equal(t, alert.ClassifyNews("Major EARTHQUAKE hits", ""), model.SeverityCritical)
	gt.Equal(t, alert.ClassifyNews("พายุเข้า", ""), model.SeverityWarning)
	// "น้ำท่วมหนัก" is critical even though it also contains the warning word "น้ำท่วม"
	gt.Equal(t, alert.ClassifyNews("", "น้ำท่วมหนักทั่วเมือง"), model.SeverityCritical)
	gt.Equal(t, alert.ClassifyNews("ราคาทองวันนี้", "ขึ้นเล็กน้อย"), model.SeverityInfo)
}

func TestNewsExternalID(t *testing.T) {
	id := alert.NewsExternalID("bbc_thai", "guid-1")
	gt.Equal(t, len(id), len("bbc_thai_")+16)
	gt.S(t, id).Contains("bbc_thai_")
	gt.Equal(t, id, alert.NewsExternalID("bbc_thai", "guid-1"))
	gt.True(t, id != alert.NewsExternalID("bbc_thai", "guid-2"))
}

type mockQuakes struct {
	events []*adapter.Earthquake
	err    error
}

func (m *mockQuakes) Fetch(ctx context.Context) ([]*adapter.Earthquake, error) {
	return m.events, m.err
}

type mockNews struct {
	source string
	items  []*adapter.NewsItem
	err    error
}

func (m *mockNews) Fetch(ctx context.Context) ([]*adapter.NewsItem, error) {
	return m.items, m.err
}

func (m *mockNews) SourceID() string { return m.source }

// alertRepo records saved alerts and embeds the interface for the rest
type alertRepo struct {
	repository.Repository

	mu         sync.Mutex
	saved      map[string]*model.Alert
	expireErr  error
	expireCall int
}

func newAlertRepo() *alertRepo {
	return &alertRepo{saved: map[string]*model.Alert{}}
}

func (r *alertRepo) SaveAlert(ctx context.Context, a *model.Alert) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.saved[a.ExternalID]; ok {
		return false, nil
	}
	r.saved[a.ExternalID] = a
	return true, nil
}

func (r *alertRepo) ExpireAlerts(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireCall++
	return 2, r.expireErr
}

var fixedNow = clock.Must("2025-03-10 09:00")

func TestRunFetchCycle(t *testing.T) {
	repo := newAlertRepo()
	quakes := &mockQuakes{events: []*adapter.Earthquake{
		{ID: "us1", Magnitude: 7.1, Place: "Sumatra", DepthKm: 10.4},
		{ID: "us1", Magnitude: 7.1, Place: "Sumatra", DepthKm: 10.4},
		{ID: "us2", Magnitude: 4.2, Place: "Laos", NearThailand: true},
	}}
	news := &mockNews{source: "bbc_thai", items: []*adapter.NewsItem{
		{Title: "น้ำท่วมเชียงใหม่", Description: "ระดับน้ำสูง", GUID: "g1", Link: "https://bbc/1"},
		{Title: "ราคาทองวันนี้", GUID: "g2"},
	}}

	uc := alert.New(repo,
		alert.WithEarthquakeSource(quakes),
		alert.WithNewsSources(news),
		alert.WithClock(clock.Fixed(fixedNow)),
	)

	result, err := uc.RunFetchCycle(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, result.Earthquakes, 2)
	gt.Equal(t, result.News, 1)
	gt.Equal(t, result.Expired, 2)

	quake := repo.saved["us1"]
	gt.V(t, quake).NotNil()
	gt.Equal(t, quake.Severity, model.SeverityCritical)
	gt.Equal(t, quake.Title, "แผ่นดินไหว M7.1 - Sumatra")
	gt.Equal(t, quake.Description, "แผ่นดินไหวขนาด 7.1 ริกเตอร์ บริเวณ Sumatra ความลึก 10 กม.")
	gt.True(t, quake.ExpiresAt.Equal(fixedNow.Add(24*time.Hour)))

	gt.Equal(t, repo.saved["us2"].Severity, model.SeverityInfo)

	item := repo.saved[alert.NewsExternalID("bbc_thai", "g1")]
	gt.V(t, item).NotNil()
	gt.Equal(t, item.Severity, model.SeverityWarning)
	gt.Equal(t, item.Source, "bbc_thai")
	gt.True(t, item.ExpiresAt.Equal(fixedNow.Add(12*time.Hour)))

	// the same items again produce nothing new
	result, err = uc.RunFetchCycle(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, result.Earthquakes, 0)
	gt.Equal(t, result.News, 0)
}

func TestRunFetchCycleSourceIsolation(t *testing.T) {
	repo := newAlertRepo()
	uc := alert.New(repo,
		alert.WithEarthquakeSource(&mockQuakes{err: errors.New("usgs down")}),
		alert.WithNewsSources(
			&mockNews{source: "broken", err: errors.New("timeout")},
			&mockNews{source: "bbc_thai", items: []*adapter.NewsItem{{Title: "สึนามิ", GUID: "g"}}},
		),
		alert.WithClock(clock.Fixed(fixedNow)),
	)

	result, err := uc.RunFetchCycle(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, result.Earthquakes, 0)
	gt.Equal(t, result.News, 1)
	gt.Equal(t, repo.expireCall, 1)
}

func TestRunFetchCycleExpireError(t *testing.T) {
	repo := newAlertRepo()
	repo.expireErr = errors.New("db locked")

	uc := alert.New(repo, alert.WithClock(clock.Fixed(fixedNow)))
	result, err := uc.RunFetchCycle(context.Background())
	gt.Error(t, err)
	gt.V(t, result).NotNil()
	gt.Equal(t, repo.expireCall, 1)
}

func TestRunFetchCycleWithPolicy(t *testing.T) {
	ctx := context.Background()
	engine, err := workflow.NewWithModules(ctx, map[string]string{
		"feed.rego": `package feed

discard if contains(input.title, "ฟุตบอล")

severity := "critical" if {
	input.type == "earthquake"
	input.near_thailand
}
`,
	})
	gt.NoError(t, err)

	repo := newAlertRepo()
	uc := alert.New(repo,
		alert.WithEarthquakeSource(&mockQuakes{events: []*adapter.Earthquake{
			{ID: "near", Magnitude: 4.5, Place: "Chiang Rai", NearThailand: true},
		}}),
		alert.WithNewsSources(&mockNews{source: "bbc_thai", items: []*adapter.NewsItem{
			{Title: "พายุถล่มสนามฟุตบอล", GUID: "a"},
			{Title: "พายุเข้ากรุงเทพ", GUID: "b"},
		}}),
		alert.WithPolicy(engine),
		alert.WithClock(clock.Fixed(fixedNow)),
	)

	result, err := uc.RunFetchCycle(ctx)
	gt.NoError(t, err)
	gt.Equal(t, result.News, 1)
	gt.Equal(t, repo.saved["near"].Severity, model.SeverityCritical)
}

func TestListAndSummary(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewSQLite(ctx, filepath.Join(t.TempDir(), "fa.db"))
	gt.NoError(t, err)
	defer repo.Close()

	now := fixedNow
	for _, a := range []*model.Alert{
		{Type: model.AlertTypeEarthquake, Severity: model.SeverityCritical, Title: "recent", ExternalID: "a", FetchedAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour)},
		{Type: model.AlertTypeNews, Severity: model.SeverityWarning, Title: "warn", ExternalID: "b", FetchedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(time.Hour)},
		{Type: model.AlertTypeEarthquake, Severity: model.SeverityCritical, Title: "old", ExternalID: "c", FetchedAt: now.Add(-10 * time.Hour), ExpiresAt: now.Add(time.Hour)},
	} {
		a.ID = model.NewAlertID()
		_, err := repo.SaveAlert(ctx, a)
		gt.NoError(t, err)
	}

	uc := alert.New(repo, alert.WithClock(clock.Fixed(now)))

	all, err := uc.ListActive(ctx, alert.ListOptions{})
	gt.NoError(t, err)
	gt.A(t, all).Length(3)
	gt.Equal(t, all[0].Title, "recent")

	warn, err := uc.ListActive(ctx, alert.ListOptions{Severity: model.SeverityWarning})
	gt.NoError(t, err)
	gt.A(t, warn).Length(1)

	critical, err := uc.ListActive(ctx, alert.ListOptions{Severity: " Critical "})
	gt.NoError(t, err)
	gt.A(t, critical).Length(2)
	gt.Equal(t, critical[0].Severity, model.SeverityCritical)

	_, err = uc.ListActive(ctx, alert.ListOptions{Severity: "urgent"})
	gt.True(t, errors.Is(err, model.ErrInvalidSeverity))

	summary, err := uc.CriticalSummary(ctx, 0)
	gt.NoError(t, err)
	gt.Equal(t, summary.Count, 1)
	gt.Equal(t, summary.Alerts[0].Title, "recent")

	summary, err = uc.CriticalSummary(ctx, 12)
	gt.NoError(t, err)
	gt.Equal(t, summary.Count, 2)
}

func TestLoadFeedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	gt.NoError(t, os.WriteFile(path, []byte(`
news:
  - name: BBC Thai
    url: https://feeds.bbci.co.uk/thai/rss.xml
    source: bbc_thai
  - name: Thai PBS
    url: https://example.com/rss
    source: thaipbs
`), 0644))

	cfg, err := alert.LoadFeedConfig(path)
	gt.NoError(t, err)
	gt.A(t, cfg.News).Length(2)
	gt.Equal(t, cfg.News[1].Source, "thaipbs")
	gt.Equal(t, cfg.Earthquake.GlobalURL, adapter.USGSGlobalURL)
	gt.A(t, cfg.Options()).Length(2)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	gt.NoError(t, os.WriteFile(bad, []byte("news:\n  - name: x\n"), 0644))
	_, err = alert.LoadFeedConfig(bad)
	gt.Error(t, err)
}
