package user

import (
	"context"

	"github.com/fa-friend/fa/pkg/adapter"
	"github.com/fa-friend/fa/pkg/brain"
	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/repository"
	"github.com/fa-friend/fa/pkg/usecase/history"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/m-mizutani/goerr/v2"
)

// UseCase covers the user lifecycle and the tracker features around chat:
// settings, moods, routines, reminders, briefs and data export.
type UseCase struct {
	repo    repository.Repository
	storage adapter.Storage
	now     clock.Clock
	pick    brain.Picker
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithStorage enables Export
func WithStorage(s adapter.Storage) Option {
	return func(uc *UseCase) {
		uc.storage = s
	}
}

func WithClock(c clock.Clock) Option {
	return func(uc *UseCase) {
		uc.now = c
	}
}

// WithPicker fixes the random choice of brief phrases
func WithPicker(p brain.Picker) Option {
	return func(uc *UseCase) {
		uc.pick = p
	}
}

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

// mustUser loads the user or fails with model.ErrUserNotFound
func (u *UseCase) mustUser(ctx context.Context, id model.UserID) (*model.User, error) {
	user, err := u.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, goerr.Wrap(model.ErrUserNotFound, "no such user", goerr.V("user_id", id))
	}
	return user, nil
}

// RegisterInput is a new user. Empty fields take defaults.
type RegisterInput struct {
	Name      string        `json:"name"`
	Persona   model.Persona `json:"personality"`
	WakeTime  string        `json:"wake_time"`
	SleepTime string        `json:"sleep_time"`
}

type RegisterResult struct {
	UserID  model.UserID  `json:"user_id"`
	Name    string        `json:"name"`
	Persona model.Persona `json:"personality"`
	Message string        `json:"message"`
}

var (
	ErrEmptyName      = goerr.New("name is required")
	ErrEmptyTitle     = goerr.New("routine title is required")
	ErrUnknownPersona = goerr.New("unknown personality")

	ErrUnparsableReminder = goerr.New("reminder time is not recognized")
)

// Register creates a user with an empty memory and returns the persona's welcome message
func (u *UseCase) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if in.Name == "" {
		return nil, goerr.Wrap(ErrEmptyName, "cannot register")
	}

	settings := model.UserSettings{WakeTime: in.WakeTime, SleepTime: in.SleepTime}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        model.NewUserID(),
		Name:      in.Name,
		Persona:   in.Persona.OrDefault(),
		WakeTime:  in.WakeTime,
		SleepTime: in.SleepTime,
		CreatedAt: u.now(),
	}
	if user.WakeTime == "" {
		user.WakeTime = model.DefaultWakeTime
	}
	if user.SleepTime == "" {
		user.SleepTime = model.DefaultSleepTime
	}

	if err := u.repo.PutUser(ctx, user, model.NewMemory(user.Name)); err != nil {
		return nil, err
	}

	return &RegisterResult{
		UserID:  user.ID,
		Name:    user.Name,
		Persona: user.Persona,
		Message: brain.WelcomeMessage(user.Persona, user.Name),
	}, nil
}

func (u *UseCase) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	return u.mustUser(ctx, id)
}

// UpdateSettings changes the set fields. An unknown persona is rejected.
func (u *UseCase) UpdateSettings(ctx context.Context, id model.UserID, settings model.UserSettings) error {
	if _, err := u.mustUser(ctx, id); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if settings.Persona != "" && !settings.Persona.Known() {
		return goerr.Wrap(ErrUnknownPersona, "cannot update settings", goerr.V("personality", settings.Persona))
	}
	return u.repo.UpdateUserSettings(ctx, id, settings)
}

func (u *UseCase) Memory(ctx context.Context, id model.UserID) (*model.Memory, error) {
	if _, err := u.mustUser(ctx, id); err != nil {
		return nil, err
	}
	mem, err := u.repo.GetMemory(ctx, id)
	if err != nil {
		return nil, err
	}
	if mem == nil {
		return &model.Memory{}, nil
	}
	return mem, nil
}

func (u *UseCase) Stats(ctx context.Context, id model.UserID) (*model.UserStats, error) {
	if _, err := u.mustUser(ctx, id); err != nil {
		return nil, err
	}
	return u.repo.GetUserStats(ctx, id, clock.Date(u.now()))
}

// History returns the last chat turns, oldest first
func (u *UseCase) History(ctx context.Context, id model.UserID, limit int) ([]*model.Message, error) {
	return history.List(ctx, u.repo, id, limit)
}
