package alert

import (
	"context"

	"github.com/fa-friend/fa/pkg/adapter"
	"github.com/fa-friend/fa/pkg/repository"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/fa-friend/fa/pkg/workflow"
)

// EarthquakeSource yields deduplicated earthquake events
type EarthquakeSource interface {
	Fetch(ctx context.Context) ([]*adapter.Earthquake, error)
}

// NewsSource yields items of one news feed
type NewsSource interface {
	Fetch(ctx context.Context) ([]*adapter.NewsItem, error)
	SourceID() string
}

// UseCase fetches, classifies and serves real-time alerts
type UseCase struct {
	repo   repository.Repository
	quakes EarthquakeSource
	news   []NewsSource
	policy *workflow.Engine
	now    clock.Clock
}

// Option is a functional option for UseCase
type Option func(*UseCase)

func WithEarthquakeSource(src EarthquakeSource) Option {
	return func(uc *UseCase) {
		uc.quakes = src
	}
}

func WithNewsSources(srcs ...NewsSource) Option {
	return func(uc *UseCase) {
		uc.news = srcs
	}
}

// WithPolicy sets the feed policy applied to every fetched item
func WithPolicy(engine *workflow.Engine) Option {
	return func(uc *UseCase) {
		uc.policy = engine
	}
}

func WithClock(c clock.Clock) Option {
	return func(uc *UseCase) {
		uc.now = c
	}
}

// New creates a new alert UseCase instance
func New(repo repository.Repository, opts ...Option) *UseCase {
	uc := &UseCase{
		repo: repo,
		now:  clock.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
