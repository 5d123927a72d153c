package user

import (
	"context"

	"github.com/fa-friend/fa/pkg/brain"
	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/m-mizutani/goerr/v2"
)

const DefaultMoodDays = 7

// SaveMood records today's mood, replacing an earlier entry of the same day
func (u *UseCase) SaveMood(ctx context.Context, id model.UserID, score int, note string) error {
	if _, err := u.mustUser(ctx, id); err != nil {
		return err
	}
	if err := model.ValidateMoodScore(score); err != nil {
		return err
	}
	return u.repo.SaveMood(ctx, id, &model.Mood{
		Score: score,
		Note:  note,
		Date:  clock.Date(u.now()),
	})
}

// MoodHistory returns moods of the last days, oldest first
func (u *UseCase) MoodHistory(ctx context.Context, id model.UserID, days int) ([]*model.Mood, error) {
	if _, err := u.mustUser(ctx, id); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = DefaultMoodDays
	}
	since := clock.Date(u.now().AddDate(0, 0, -days))
	return u.repo.GetMoodHistory(ctx, id, since)
}

// RoutineInput is a new daily routine
type RoutineInput struct {
	Title  string `json:"title"`
	Time   string `json:"time"`
	Points int    `json:"points"`
}

func (u *UseCase) CreateRoutine(ctx context.Context, id model.UserID, in RoutineInput) (*model.Routine, error) {
	if _, err := u.mustUser(ctx, id); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, goerr.Wrap(ErrEmptyTitle, "cannot create routine")
	}
	points := in.Points
	if points <= 0 {
		points = model.DefaultRoutinePoints
	}

	routine := &model.Routine{
		ID:        model.NewRoutineID(),
		UserID:    id,
		Title:     in.Title,
		Time:      in.Time,
		Points:    points,
		Active:    true,
		CreatedAt: u.now(),
	}
	if err := u.repo.CreateRoutine(ctx, routine); err != nil {
		return nil, err
	}
	return routine, nil
}

// Routines returns active routines with today's completion
func (u *UseCase) Routines(ctx context.Context, id model.UserID) ([]*model.RoutineStatus, error) {
	if _, err := u.mustUser(ctx, id); err != nil {
		return nil, err
	}
	status, err := u.repo.GetRoutineStatus(ctx, id, clock.Date(u.now()))
	if err != nil {
		return nil, err
	}
	if status == nil {
		status = []*model.RoutineStatus{}
	}
	return status, nil
}

// CompleteRoutine marks the routine done today and returns its points
func (u *UseCase) CompleteRoutine(ctx context.Context, id model.RoutineID) (int, error) {
	return u.repo.CompleteRoutine(ctx, id, clock.Date(u.now()))
}

func (u *UseCase) DeleteRoutine(ctx context.Context, id model.RoutineID) error {
	return u.repo.DeleteRoutine(ctx, id)
}

// Reminders returns pending reminders ordered by time
func (u *UseCase) Reminders(ctx context.Context, id model.UserID) ([]*model.Reminder, error) {
	if _, err := u.mustUser(ctx, id); err != nil {
		return nil, err
	}
	reminders, err := u.repo.ListPendingReminders(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminders == nil {
		reminders = []*model.Reminder{}
	}
	return reminders, nil
}

// AddReminder stores a reminder written as free text, e.g. "tomorrow 08:00 ส่งงาน"
func (u *UseCase) AddReminder(ctx context.Context, id model.UserID, text string) (*model.Reminder, error) {
	if _, err := u.mustUser(ctx, id); err != nil {
		return nil, err
	}
	now := u.now()
	spec, ok := brain.NormalizeReminderText(text, now)
	if !ok {
		return nil, goerr.Wrap(ErrUnparsableReminder, "cannot add reminder", goerr.V("text", text))
	}

	reminder := &model.Reminder{
		ID:        model.NewReminderID(),
		UserID:    id,
		Message:   spec.Message,
		RemindAt:  spec.RemindAt,
		CreatedAt: now,
	}
	if err := u.repo.AddReminder(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

func (u *UseCase) CompleteReminder(ctx context.Context, id model.ReminderID) error {
	return u.repo.MarkReminderDone(ctx, id)
}
