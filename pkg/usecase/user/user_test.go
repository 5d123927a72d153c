package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/repository"
	"github.com/fa-friend/fa/pkg/usecase/user"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/m-mizutani/gt"
)

// movableClock lets a test advance days
type movableClock struct {
	at time.Time
}

func (c *movableClock) now() time.Time { return c.at }

func setup(t *testing.T, opts ...user.Option) (*user.UseCase, *repository.SQLite, *movableClock) {
	t.Helper()
	repo, err := repository.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "fa.db"))
	gt.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	c := &movableClock{at: clock.Must("2025-03-10 08:00")}
	opts = append(opts, user.WithClock(c.now), user.WithPicker(func(int) int { return 0 }))
	return user.New(repo, opts...), repo, c
}

func register(t *testing.T, uc *user.UseCase) model.UserID {
	t.Helper()
	res, err := uc.Register(context.Background(), user.RegisterInput{Name: "มิ้น", Persona: model.PersonaCaring})
	gt.NoError(t, err)
	return res.UserID
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := setup(t)

	res, err := uc.Register(ctx, user.RegisterInput{Name: "มิ้น", Persona: "grumpy"})
	gt.NoError(t, err)
	gt.A(t, []rune(string(res.UserID))).Length(8)
	gt.Equal(t, res.Persona, model.PersonaFriendly)
	gt.S(t, res.Message).Contains("มิ้น")

	u, err := uc.Get(ctx, res.UserID)
	gt.NoError(t, err)
	gt.Equal(t, u.WakeTime, model.DefaultWakeTime)
	gt.Equal(t, u.SleepTime, model.DefaultSleepTime)

	mem, err := uc.Memory(ctx, res.UserID)
	gt.NoError(t, err)
	gt.Equal(t, mem.Name, "มิ้น")

	t.Run("empty name", func(t *testing.T) {
		_, err := uc.Register(ctx, user.RegisterInput{})
		gt.True(t, errors.Is(err, user.ErrEmptyName))
	})

	t.Run("bad wake time", func(t *testing.T) {
		_, err := uc.Register(ctx, user.RegisterInput{Name: "x", WakeTime: "7am"})
		gt.True(t, errors.Is(err, model.ErrInvalidClock))
	})
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := setup(t)
	id := register(t, uc)

	gt.NoError(t, uc.UpdateSettings(ctx, id, model.UserSettings{WakeTime: "06:30"}))
	u, err := uc.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, u.WakeTime, "06:30")
	gt.Equal(t, u.Persona, model.PersonaCaring)

	err = uc.UpdateSettings(ctx, id, model.UserSettings{Persona: "grumpy"})
	gt.True(t, errors.Is(err, user.ErrUnknownPersona))

	err = uc.UpdateSettings(ctx, "nobody", model.UserSettings{WakeTime: "06:30"})
	gt.True(t, errors.Is(err, model.ErrUserNotFound))
}

func TestMood(t *testing.T) {
	ctx := context.Background()
	uc, _, c := setup(t)
	id := register(t, uc)

	gt.True(t, errors.Is(uc.SaveMood(ctx, id, 6, ""), model.ErrInvalidMoodScore))
	gt.True(t, errors.Is(uc.SaveMood(ctx, "nobody", 3, ""), model.ErrUserNotFound))

	gt.NoError(t, uc.SaveMood(ctx, id, 2, "เหนื่อย"))
	gt.NoError(t, uc.SaveMood(ctx, id, 4, "ดีขึ้น"))
	c.at = c.at.AddDate(0, 0, 1)
	gt.NoError(t, uc.SaveMood(ctx, id, 5, ""))

	moods, err := uc.MoodHistory(ctx, id, 0)
	gt.NoError(t, err)
	gt.A(t, moods).Length(2)
	gt.Equal(t, moods[0].Score, 4)
	gt.Equal(t, moods[0].Date, "2025-03-10")
	gt.Equal(t, moods[1].Date, "2025-03-11")

	c.at = c.at.AddDate(0, 0, 10)
	moods, err = uc.MoodHistory(ctx, id, 7)
	gt.NoError(t, err)
	gt.A(t, moods).Length(0)
}

func TestRoutines(t *testing.T) {
	ctx := context.Background()
	uc, _, c := setup(t)
	id := register(t, uc)

	_, err := uc.CreateRoutine(ctx, id, user.RoutineInput{})
	gt.True(t, errors.Is(err, user.ErrEmptyTitle))

	run, err := uc.CreateRoutine(ctx, id, user.RoutineInput{Title: "วิ่ง", Time: "06:00"})
	gt.NoError(t, err)
	gt.Equal(t, run.Points, model.DefaultRoutinePoints)
	read, err := uc.CreateRoutine(ctx, id, user.RoutineInput{Title: "อ่านหนังสือ", Time: "21:00", Points: 10})
	gt.NoError(t, err)

	points, err := uc.CompleteRoutine(ctx, run.ID)
	gt.NoError(t, err)
	gt.Equal(t, points, 5)

	status, err := uc.Routines(ctx, id)
	gt.NoError(t, err)
	gt.A(t, status).Length(2)
	gt.True(t, status[0].Done)
	gt.False(t, status[1].Done)

	c.at = c.at.AddDate(0, 0, 1)
	_, err = uc.CompleteRoutine(ctx, run.ID)
	gt.NoError(t, err)
	_, err = uc.CompleteRoutine(ctx, read.ID)
	gt.NoError(t, err)

	stats, err := uc.Stats(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, stats.Streak, 2)
	gt.Equal(t, stats.TotalPoints, 20)

	gt.NoError(t, uc.DeleteRoutine(ctx, read.ID))
	status, err = uc.Routines(ctx, id)
	gt.NoError(t, err)
	gt.A(t, status).Length(1)

	_, err = uc.CompleteRoutine(ctx, "missing")
	gt.True(t, errors.Is(err, model.ErrRoutineNotFound))
}

func TestReminders(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := setup(t)
	id := register(t, uc)

	reminders, err := uc.Reminders(ctx, id)
	gt.NoError(t, err)
	gt.A(t, reminders).Length(0)

	gt.NoError(t, repo.AddReminder(ctx, &model.Reminder{ID: "r1", UserID: id, Message: "ส่งงาน", RemindAt: "2025-03-10 15:00"}))
	gt.NoError(t, uc.CompleteReminder(ctx, "r1"))

	reminders, err = uc.Reminders(ctx, id)
	gt.NoError(t, err)
	gt.A(t, reminders).Length(0)

	gt.True(t, errors.Is(uc.CompleteReminder(ctx, "r1x"), model.ErrReminderNotFound))
}

func TestBriefs(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := setup(t)
	id := register(t, uc)

	gt.NoError(t, repo.AddReminder(ctx, &model.Reminder{ID: "r1", UserID: id, Message: "ประชุมทีม", RemindAt: "2025-03-10 10:00"}))
	gt.NoError(t, repo.AddReminder(ctx, &model.Reminder{ID: "r2", UserID: id, Message: "พรุ่งนี้", RemindAt: "2025-03-11 10:00"}))
	run, err := uc.CreateRoutine(ctx, id, user.RoutineInput{Title: "วิ่ง", Time: "06:00"})
	gt.NoError(t, err)
	_, err = uc.CreateRoutine(ctx, id, user.RoutineInput{Title: "อ่านหนังสือ"})
	gt.NoError(t, err)

	morning, err := uc.MorningBrief(ctx, id)
	gt.NoError(t, err)
	gt.S(t, morning).Contains("10:00 ประชุมทีม")
	gt.S(t, morning).NotContains("พรุ่งนี้")
	gt.S(t, morning).Contains("☐ วิ่ง (06:00)")

	_, err = uc.CompleteRoutine(ctx, run.ID)
	gt.NoError(t, err)
	gt.NoError(t, uc.SaveMood(ctx, id, 5, ""))

	night, err := uc.NightWrap(ctx, id)
	gt.NoError(t, err)
	gt.S(t, night).Contains("ทำได้ 1/2 (50%)")
	gt.S(t, night).Contains("Streak: 1")
	gt.S(t, night).Contains("😊")

	_, err = uc.NightWrap(ctx, "nobody")
	gt.True(t, errors.Is(err, model.ErrUserNotFound))
}

// memStorage keeps written objects in memory
type memStorage struct {
	objects map[string]*bytes.Buffer
	putErr  error
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (m *memStorage) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	buf := &bytes.Buffer{}
	m.objects[key] = buf
	return nopCloser{buf}, nil
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("no storage", func(t *testing.T) {
		uc, _, _ := setup(t)
		id := register(t, uc)
		_, err := uc.Export(ctx, id)
		gt.True(t, errors.Is(err, user.ErrStorageNotConfigured))
	})

	t.Run("writes user data", func(t *testing.T) {
		storage := &memStorage{objects: map[string]*bytes.Buffer{}}
		uc, repo, _ := setup(t, user.WithStorage(storage))
		id := register(t, uc)
		gt.NoError(t, uc.SaveMood(ctx, id, 3, "เฉย ๆ"))
		gt.NoError(t, repo.SaveMessage(ctx, &model.Message{ID: "m1", UserID: id, Role: model.RoleUser, Content: "หวัดดี", CreatedAt: clock.Must("2025-03-10 07:59")}))

		key, err := uc.Export(ctx, id)
		gt.NoError(t, err)
		gt.Equal(t, key, "exports/"+string(id)+"/20250310T080000.json")

		var data user.ExportData
		gt.NoError(t, json.Unmarshal(storage.objects[key].Bytes(), &data))
		gt.Equal(t, data.User.Name, "มิ้น")
		gt.A(t, data.Messages).Length(1)
		gt.A(t, data.Moods).Length(1)
		gt.Equal(t, data.Memory.Name, "มิ้น")
	})

	t.Run("storage failure", func(t *testing.T) {
		storage := &memStorage{putErr: errors.New("denied")}
		uc, _, _ := setup(t, user.WithStorage(storage))
		id := register(t, uc)
		_, err := uc.Export(ctx, id)
		gt.Error(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		storage := &memStorage{objects: map[string]*bytes.Buffer{}}
		uc, _, _ := setup(t, user.WithStorage(storage))
		_, err := uc.Export(ctx, "nobody")
		gt.True(t, errors.Is(err, model.ErrUserNotFound))
	})
}

func TestAddReminder(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := setup(t)
	id := register(t, uc)

	r, err := uc.AddReminder(ctx, id, "tomorrow 08:00 ส่งงาน")
	gt.NoError(t, err)
	gt.Equal(t, r.RemindAt, "2025-03-11 08:00")
	gt.Equal(t, r.Message, "ส่งงาน")

	_, err = uc.AddReminder(ctx, id, "sometime soon")
	gt.True(t, errors.Is(err, user.ErrUnparsableReminder))

	reminders, err := uc.Reminders(ctx, id)
	gt.NoError(t, err)
	gt.A(t, reminders).Length(1)
}
