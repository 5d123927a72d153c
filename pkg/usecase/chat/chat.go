package chat

import (
	"time"

	"github.com/fa-friend/fa/pkg/adapter"
	"github.com/fa-friend/fa/pkg/brain"
	"github.com/fa-friend/fa/pkg/repository"
	"github.com/fa-friend/fa/pkg/utils/clock"
)

const (
	historyLimit     = 6
	moodWindowDays   = 7
	alertWindow      = 6 * time.Hour
	maxContextAlerts = 3
)

// UseCase runs one chat turn: local template reply first, the model otherwise
type UseCase struct {
	repo    repository.Repository
	llm     adapter.LLM
	matcher *brain.Matcher
	now     clock.Clock
}

// Option is a functional option for UseCase
type Option func(*UseCase)

func WithMatcher(m *brain.Matcher) Option {
	return func(uc *UseCase) {
		uc.matcher = m
	}
}

func WithClock(c clock.Clock) Option {
	return func(uc *UseCase) {
		uc.now = c
	}
}

// New creates a chat UseCase. llm may be nil, in which case every turn the
// templates cannot answer gets the gateway failure reply.
func New(repo repository.Repository, llm adapter.LLM, opts ...Option) *UseCase {
	uc := &UseCase{
		repo: repo,
		llm:  llm,
		now:  clock.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.matcher == nil {
		uc.matcher = brain.NewMatcher(brain.WithClock(uc.now))
	}
	return uc
}
