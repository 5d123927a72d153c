package user

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/m-mizutani/goerr/v2"
)

// ExportData is the full data of one user
type ExportData struct {
	ExportedAt time.Time              `json:"exported_at"`
	User       *model.User            `json:"user"`
	Memory     *model.Memory          `json:"memory"`
	Messages   []*model.Message       `json:"messages"`
	Reminders  []*model.Reminder      `json:"pending_reminders"`
	Moods      []*model.Mood          `json:"moods"`
	Routines   []*model.RoutineStatus `json:"routines"`
	Stats      *model.UserStats       `json:"stats"`
}

var ErrStorageNotConfigured = goerr.New("export storage is not configured")

// Export writes the user's data as JSON to the export storage and returns the object key
func (u *UseCase) Export(ctx context.Context, id model.UserID) (string, error) {
	if u.storage == nil {
		return "", ErrStorageNotConfigured
	}

	data, err := u.collect(ctx, id)
	if err != nil {
		return "", err
	}

	key := "exports/" + string(id) + "/" + data.ExportedAt.Format("20060102T150405") + ".json"
	w, err := u.storage.Put(ctx, key)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open export object", goerr.V("key", key))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write export", goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to commit export", goerr.V("key", key))
	}

	return key, nil
}

func (u *UseCase) collect(ctx context.Context, id model.UserID) (*ExportData, error) {
	user, err := u.mustUser(ctx, id)
	if err != nil {
		return nil, err
	}
	now := u.now()
	today := clock.Date(now)

	data := &ExportData{ExportedAt: now, User: user}

	if data.Memory, err = u.repo.GetMemory(ctx, id); err != nil {
		return nil, err
	}
	if data.Messages, err = u.repo.ListUserMessages(ctx, id); err != nil {
		return nil, err
	}
	if data.Reminders, err = u.repo.ListPendingReminders(ctx, id); err != nil {
		return nil, err
	}
	// every mood ever recorded
	if data.Moods, err = u.repo.GetMoodHistory(ctx, id, "0000-01-01"); err != nil {
		return nil, err
	}
	if data.Routines, err = u.repo.GetRoutineStatus(ctx, id, today); err != nil {
		return nil, err
	}
	if data.Stats, err = u.repo.GetUserStats(ctx, id, today); err != nil {
		return nil, err
	}

	return data, nil
}
