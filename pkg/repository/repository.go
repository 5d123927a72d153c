package repository

import (
	"context"
	"time"

	"github.com/fa-friend/fa/pkg/model"
)

// Repository is the persistence boundary of the companion. Lookups of a
// single record return (nil, nil) when the record does not exist.
type Repository interface {
	// PutUser creates the user together with its initial memory. An existing user is left untouched.
	PutUser(ctx context.Context, user *model.User, memory *model.Memory) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	UpdateUserSettings(ctx context.Context, id model.UserID, settings model.UserSettings) error

	GetMemory(ctx context.Context, id model.UserID) (*model.Memory, error)
	// PutMemory replaces the memory document and bumps last_active
	PutMemory(ctx context.Context, id model.UserID, memory *model.Memory, now time.Time) error

	SaveMessage(ctx context.Context, msg *model.Message) error
	// ListRecentMessages returns at most limit messages, oldest first
	ListRecentMessages(ctx context.Context, id model.UserID, limit int) ([]*model.Message, error)
	// ListUserMessages returns the whole conversation, oldest first
	ListUserMessages(ctx context.Context, id model.UserID) ([]*model.Message, error)

	AddReminder(ctx context.Context, reminder *model.Reminder) error
	// ListPendingReminders returns reminders not yet done, ordered by remind_at
	ListPendingReminders(ctx context.Context, id model.UserID) ([]*model.Reminder, error)
	MarkReminderDone(ctx context.Context, id model.ReminderID) error

	// SaveMood stores the mood of a day, overwriting an earlier one for the same day
	SaveMood(ctx context.Context, id model.UserID, mood *model.Mood) error
	// GetMoodHistory returns moods dated on or after since (YYYY-MM-DD), oldest first
	GetMoodHistory(ctx context.Context, id model.UserID, since string) ([]*model.Mood, error)

	CreateRoutine(ctx context.Context, routine *model.Routine) error
	GetRoutine(ctx context.Context, id model.RoutineID) (*model.Routine, error)
	// ListRoutines returns active routines ordered by time of day
	ListRoutines(ctx context.Context, id model.UserID) ([]*model.Routine, error)
	// DeleteRoutine deactivates the routine; its completion logs stay for stats
	DeleteRoutine(ctx context.Context, id model.RoutineID) error
	// CompleteRoutine logs completion for date and returns the routine's points.
	// Completing twice on the same date is a no-op that still reports the points.
	CompleteRoutine(ctx context.Context, id model.RoutineID, date string) (int, error)
	GetRoutineStatus(ctx context.Context, id model.UserID, date string) ([]*model.RoutineStatus, error)
	// GetUserStats computes total points and the streak of consecutive days ending at today
	GetUserStats(ctx context.Context, id model.UserID, today string) (*model.UserStats, error)

	// SaveAlert inserts the alert unless its ExternalID is already stored.
	// It reports whether a new row was written.
	SaveAlert(ctx context.Context, alert *model.Alert) (bool, error)
	// ListActiveAlerts returns alerts active at now, newest first. Empty severity means any.
	ListActiveAlerts(ctx context.Context, now time.Time, severity model.Severity, limit int) ([]*model.Alert, error)
	// ListRecentCriticalAlerts returns active critical alerts fetched after since, newest first
	ListRecentCriticalAlerts(ctx context.Context, now, since time.Time, limit int) ([]*model.Alert, error)
	// ExpireAlerts deactivates alerts whose expiry has passed and returns how many changed
	ExpireAlerts(ctx context.Context, now time.Time) (int, error)

	Close() error
}

// streakFrom counts consecutive days ending at today present in dates.
// dates holds distinct YYYY-MM-DD values.
func streakFrom(dates []string, today string) int {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}

	day, err := time.Parse(model.DateLayout, today)
	if err != nil {
		return 0
	}

	streak := 0
	for {
		if _, ok := set[day.Format(model.DateLayout)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}
