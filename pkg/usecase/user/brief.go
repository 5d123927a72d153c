package user

import (
	"context"

	"github.com/fa-friend/fa/pkg/brain"
	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/samber/lo"
)

// MorningBrief summarizes today's reminders and routines
func (u *UseCase) MorningBrief(ctx context.Context, id model.UserID) (string, error) {
	user, err := u.mustUser(ctx, id)
	if err != nil {
		return "", err
	}
	now := u.now()

	reminders, err := u.repo.ListPendingReminders(ctx, id)
	if err != nil {
		return "", err
	}
	routines, err := u.repo.GetRoutineStatus(ctx, id, clock.Date(now))
	if err != nil {
		return "", err
	}

	return brain.MorningBrief(brain.MorningInput{
		Name:      user.Name,
		Reminders: reminders,
		Routines:  routines,
		Now:       now,
	}, u.pick), nil
}

// NightWrap summarizes today's routine completion, mood and streak
func (u *UseCase) NightWrap(ctx context.Context, id model.UserID) (string, error) {
	user, err := u.mustUser(ctx, id)
	if err != nil {
		return "", err
	}
	today := clock.Date(u.now())

	routines, err := u.repo.GetRoutineStatus(ctx, id, today)
	if err != nil {
		return "", err
	}
	moods, err := u.repo.GetMoodHistory(ctx, id, today)
	if err != nil {
		return "", err
	}
	stats, err := u.repo.GetUserStats(ctx, id, today)
	if err != nil {
		return "", err
	}

	in := brain.NightInput{
		Name:          user.Name,
		TotalRoutines: len(routines),
		DoneRoutines:  lo.CountBy(routines, func(r *model.RoutineStatus) bool { return r.Done }),
		Streak:        stats.Streak,
	}
	if mood, ok := lo.Find(moods, func(m *model.Mood) bool { return m.Date == today }); ok {
		in.MoodToday = mood
	}

	return brain.NightWrap(in, u.pick), nil
}
