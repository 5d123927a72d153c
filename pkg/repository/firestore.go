package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/fa-friend/fa/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionUsers       = "users"
	collectionMessages    = "messages"
	collectionReminders   = "reminders"
	collectionMoods       = "moods"
	collectionRoutines    = "routines"
	collectionRoutineLogs = "routine_logs"
	collectionAlerts      = "alerts"
)

// Firestore keeps the same data as SQLite in top-level collections so that
// several server instances can share it.
type Firestore struct {
	client *firestore.Client
}

var _ Repository = (*Firestore)(nil)

// NewFirestore connects to the given Firestore database
func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
	}
	return &Firestore{client: client}, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

// user document. Memory is kept as a JSON string so unknown keys survive.
type firestoreUser struct {
	ID         string    `firestore:"id"`
	Name       string    `firestore:"name"`
	Persona    string    `firestore:"personality"`
	Memory     string    `firestore:"memory"`
	WakeTime   string    `firestore:"wake_time"`
	SleepTime  string    `firestore:"sleep_time"`
	CreatedAt  time.Time `firestore:"created_at"`
	LastActive time.Time `firestore:"last_active"`
}

type firestoreMood struct {
	UserID string `firestore:"user_id"`
	Score  int    `firestore:"score"`
	Note   string `firestore:"note"`
	Date   string `firestore:"date"`
}

type firestoreRoutineLog struct {
	UserID    string `firestore:"user_id"`
	RoutineID string `firestore:"routine_id"`
	Date      string `firestore:"date"`
	Points    int    `firestore:"points_earned"`
}

func isNotFound(err error) bool      { return status.Code(err) == codes.NotFound }
func isAlreadyExists(err error) bool { return status.Code(err) == codes.AlreadyExists }

// readAll drains a document iterator into typed values
func readAll[T any](iter *firestore.DocumentIterator) ([]*T, error) {
	defer iter.Stop()

	var out []*T
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents")
		}
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("path", doc.Ref.Path))
		}
		out = append(out, &v)
	}
}

func (f *Firestore) PutUser(ctx context.Context, user *model.User, memory *model.Memory) error {
	raw, err := json.Marshal(memory)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal memory", goerr.V("user_id", user.ID))
	}

	doc := firestoreUser{
		ID:         string(user.ID),
		Name:       user.Name,
		Persona:    string(user.Persona),
		Memory:     string(raw),
		WakeTime:   user.WakeTime,
		SleepTime:  user.SleepTime,
		CreatedAt:  user.CreatedAt,
		LastActive: user.CreatedAt,
	}
	if _, err := f.client.Collection(collectionUsers).Doc(doc.ID).Create(ctx, doc); err != nil && !isAlreadyExists(err) {
		return goerr.Wrap(err, "failed to create user", goerr.V("user_id", user.ID))
	}
	return nil
}

func (f *Firestore) getUserDoc(ctx context.Context, id model.UserID) (*firestoreUser, error) {
	snap, err := f.client.Collection(collectionUsers).Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("user_id", id))
	}
	var doc firestoreUser
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("user_id", id))
	}
	return &doc, nil
}

func (f *Firestore) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	doc, err := f.getUserDoc(ctx, id)
	if err != nil || doc == nil {
		return nil, err
	}
	return &model.User{
		ID:         model.UserID(doc.ID),
		Name:       doc.Name,
		Persona:    model.Persona(doc.Persona),
		WakeTime:   doc.WakeTime,
		SleepTime:  doc.SleepTime,
		CreatedAt:  doc.CreatedAt,
		LastActive: doc.LastActive,
	}, nil
}

func (f *Firestore) UpdateUserSettings(ctx context.Context, id model.UserID, settings model.UserSettings) error {
	var updates []firestore.Update
	if settings.Persona != "" {
		updates = append(updates, firestore.Update{Path: "personality", Value: string(settings.Persona)})
	}
	if settings.WakeTime != "" {
		updates = append(updates, firestore.Update{Path: "wake_time", Value: settings.WakeTime})
	}
	if settings.SleepTime != "" {
		updates = append(updates, firestore.Update{Path: "sleep_time", Value: settings.SleepTime})
	}
	if len(updates) == 0 {
		return nil
	}

	if _, err := f.client.Collection(collectionUsers).Doc(string(id)).Update(ctx, updates); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(model.ErrUserNotFound, "no such user", goerr.V("user_id", id))
		}
		return goerr.Wrap(err, "failed to update user settings", goerr.V("user_id", id))
	}
	return nil
}

func (f *Firestore) GetMemory(ctx context.Context, id model.UserID) (*model.Memory, error) {
	doc, err := f.getUserDoc(ctx, id)
	if err != nil || doc == nil {
		return nil, err
	}
	return model.ParseMemory(doc.Memory), nil
}

func (f *Firestore) PutMemory(ctx context.Context, id model.UserID, memory *model.Memory, now time.Time) error {
	raw, err := json.Marshal(memory)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal memory", goerr.V("user_id", id))
	}
	_, err = f.client.Collection(collectionUsers).Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "memory", Value: string(raw)},
		{Path: "last_active", Value: now},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to update memory", goerr.V("user_id", id))
	}
	return nil
}

func (f *Firestore) SaveMessage(ctx context.Context, msg *model.Message) error {
	if _, err := f.client.Collection(collectionMessages).Doc(string(msg.ID)).Set(ctx, msg); err != nil {
		return goerr.Wrap(err, "failed to save message", goerr.V("user_id", msg.UserID))
	}
	return nil
}

func (f *Firestore) ListRecentMessages(ctx context.Context, id model.UserID, limit int) ([]*model.Message, error) {
	iter := f.client.Collection(collectionMessages).
		Where("user_id", "==", string(id)).
		OrderBy("created_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	msgs, err := readAll[model.Message](iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list recent messages", goerr.V("user_id", id))
	}
	slices.Reverse(msgs)
	return msgs, nil
}

func (f *Firestore) ListUserMessages(ctx context.Context, id model.UserID) ([]*model.Message, error) {
	iter := f.client.Collection(collectionMessages).
		Where("user_id", "==", string(id)).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)

	msgs, err := readAll[model.Message](iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list messages", goerr.V("user_id", id))
	}
	return msgs, nil
}

func (f *Firestore) AddReminder(ctx context.Context, reminder *model.Reminder) error {
	if _, err := f.client.Collection(collectionReminders).Doc(string(reminder.ID)).Set(ctx, reminder); err != nil {
		return goerr.Wrap(err, "failed to add reminder", goerr.V("user_id", reminder.UserID))
	}
	return nil
}

func (f *Firestore) ListPendingReminders(ctx context.Context, id model.UserID) ([]*model.Reminder, error) {
	iter := f.client.Collection(collectionReminders).
		Where("user_id", "==", string(id)).
		Where("done", "==", false).
		OrderBy("remind_at", firestore.Asc).
		Documents(ctx)

	reminders, err := readAll[model.Reminder](iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list reminders", goerr.V("user_id", id))
	}
	return reminders, nil
}

func (f *Firestore) MarkReminderDone(ctx context.Context, id model.ReminderID) error {
	_, err := f.client.Collection(collectionReminders).Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "done", Value: true},
	})
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(model.ErrReminderNotFound, "no such reminder", goerr.V("reminder_id", id))
		}
		return goerr.Wrap(err, "failed to mark reminder done", goerr.V("reminder_id", id))
	}
	return nil
}

func (f *Firestore) SaveMood(ctx context.Context, id model.UserID, mood *model.Mood) error {
	doc := firestoreMood{UserID: string(id), Score: mood.Score, Note: mood.Note, Date: mood.Date}
	if _, err := f.client.Collection(collectionMoods).Doc(string(id)+"_"+mood.Date).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save mood", goerr.V("user_id", id))
	}
	return nil
}

func (f *Firestore) GetMoodHistory(ctx context.Context, id model.UserID, since string) ([]*model.Mood, error) {
	iter := f.client.Collection(collectionMoods).
		Where("user_id", "==", string(id)).
		Where("date", ">=", since).
		OrderBy("date", firestore.Asc).
		Documents(ctx)

	docs, err := readAll[firestoreMood](iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get mood history", goerr.V("user_id", id))
	}

	moods := make([]*model.Mood, len(docs))
	for i, d := range docs {
		moods[i] = &model.Mood{Score: d.Score, Note: d.Note, Date: d.Date}
	}
	return moods, nil
}

func (f *Firestore) CreateRoutine(ctx context.Context, routine *model.Routine) error {
	if _, err := f.client.Collection(collectionRoutines).Doc(string(routine.ID)).Set(ctx, routine); err != nil {
		return goerr.Wrap(err, "failed to create routine", goerr.V("user_id", routine.UserID))
	}
	return nil
}

func (f *Firestore) GetRoutine(ctx context.Context, id model.RoutineID) (*model.Routine, error) {
	snap, err := f.client.Collection(collectionRoutines).Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get routine", goerr.V("routine_id", id))
	}
	var routine model.Routine
	if err := snap.DataTo(&routine); err != nil {
		return nil, goerr.Wrap(err, "failed to decode routine", goerr.V("routine_id", id))
	}
	return &routine, nil
}

func (f *Firestore) ListRoutines(ctx context.Context, id model.UserID) ([]*model.Routine, error) {
	iter := f.client.Collection(collectionRoutines).
		Where("user_id", "==", string(id)).
		Where("active", "==", true).
		Documents(ctx)

	routines, err := readAll[model.Routine](iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list routines", goerr.V("user_id", id))
	}

	slices.SortStableFunc(routines, func(a, b *model.Routine) int {
		if c := strings.Compare(a.Time, b.Time); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return routines, nil
}

func (f *Firestore) DeleteRoutine(ctx context.Context, id model.RoutineID) error {
	_, err := f.client.Collection(collectionRoutines).Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "active", Value: false},
	})
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(model.ErrRoutineNotFound, "no such routine", goerr.V("routine_id", id))
		}
		return goerr.Wrap(err, "failed to delete routine", goerr.V("routine_id", id))
	}
	return nil
}

func routineLogID(id model.RoutineID, date string) string {
	return string(id) + "_" + date
}

func (f *Firestore) CompleteRoutine(ctx context.Context, id model.RoutineID, date string) (int, error) {
	routine, err := f.GetRoutine(ctx, id)
	if err != nil {
		return 0, err
	}
	if routine == nil {
		return 0, goerr.Wrap(model.ErrRoutineNotFound, "no such routine", goerr.V("routine_id", id))
	}

	entry := firestoreRoutineLog{
		UserID:    string(routine.UserID),
		RoutineID: string(id),
		Date:      date,
		Points:    routine.Points,
	}
	_, err = f.client.Collection(collectionRoutineLogs).Doc(routineLogID(id, date)).Create(ctx, entry)
	if err != nil && !isAlreadyExists(err) {
		return 0, goerr.Wrap(err, "failed to log routine", goerr.V("routine_id", id), goerr.V("date", date))
	}
	return routine.Points, nil
}

func (f *Firestore) GetRoutineStatus(ctx context.Context, id model.UserID, date string) ([]*model.RoutineStatus, error) {
	routines, err := f.ListRoutines(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(routines) == 0 {
		return nil, nil
	}

	refs := make([]*firestore.DocumentRef, len(routines))
	for i, r := range routines {
		refs[i] = f.client.Collection(collectionRoutineLogs).Doc(routineLogID(r.ID, date))
	}
	snaps, err := f.client.GetAll(ctx, refs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get routine logs", goerr.V("user_id", id), goerr.V("date", date))
	}

	status := make([]*model.RoutineStatus, len(routines))
	for i, r := range routines {
		status[i] = &model.RoutineStatus{
			ID:     r.ID,
			Title:  r.Title,
			Time:   r.Time,
			Points: r.Points,
			Done:   snaps[i].Exists(),
		}
	}
	return status, nil
}

func (f *Firestore) GetUserStats(ctx context.Context, id model.UserID, today string) (*model.UserStats, error) {
	iter := f.client.Collection(collectionRoutineLogs).
		Where("user_id", "==", string(id)).
		Documents(ctx)

	logs, err := readAll[firestoreRoutineLog](iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list routine logs", goerr.V("user_id", id))
	}

	var stats model.UserStats
	dates := make([]string, 0, len(logs))
	for _, l := range logs {
		stats.TotalPoints += l.Points
		if l.Date <= today {
			dates = append(dates, l.Date)
		}
	}
	stats.Streak = streakFrom(dates, today)
	return &stats, nil
}

// alertDocID keeps external ids usable as document ids
func alertDocID(externalID string) string {
	return url.PathEscape(externalID)
}

func (f *Firestore) SaveAlert(ctx context.Context, alert *model.Alert) (bool, error) {
	doc := *alert
	doc.IsActive = true

	_, err := f.client.Collection(collectionAlerts).Doc(alertDocID(alert.ExternalID)).Create(ctx, doc)
	if err != nil {
		if isAlreadyExists(err) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to save alert", goerr.V("external_id", alert.ExternalID))
	}
	return true, nil
}

func (f *Firestore) ListActiveAlerts(ctx context.Context, now time.Time, severity model.Severity, limit int) ([]*model.Alert, error) {
	q := f.client.Collection(collectionAlerts).Where("is_active", "==", true)
	if severity != "" {
		q = q.Where("severity", "==", string(severity))
	}
	iter := q.OrderBy("fetched_at", firestore.Desc).Documents(ctx)

	alerts, err := readAll[model.Alert](iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active alerts")
	}
	return activeHead(alerts, now, limit), nil
}

func (f *Firestore) ListRecentCriticalAlerts(ctx context.Context, now, since time.Time, limit int) ([]*model.Alert, error) {
	iter := f.client.Collection(collectionAlerts).
		Where("severity", "==", string(model.SeverityCritical)).
		Where("is_active", "==", true).
		Where("fetched_at", ">=", since).
		OrderBy("fetched_at", firestore.Desc).
		Documents(ctx)

	alerts, err := readAll[model.Alert](iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list critical alerts")
	}
	return activeHead(alerts, now, limit), nil
}

// activeHead drops expired alerts and truncates to limit
func activeHead(alerts []*model.Alert, now time.Time, limit int) []*model.Alert {
	out := make([]*model.Alert, 0, min(len(alerts), limit))
	for _, a := range alerts {
		if len(out) >= limit {
			break
		}
		if a.ActiveAt(now) {
			out = append(out, a)
		}
	}
	return out
}

func (f *Firestore) ExpireAlerts(ctx context.Context, now time.Time) (int, error) {
	iter := f.client.Collection(collectionAlerts).
		Where("is_active", "==", true).
		Where("expires_at", "<", now).
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return count, nil
		}
		if err != nil {
			return count, goerr.Wrap(err, "failed to iterate expired alerts")
		}

		var a model.Alert
		if err := doc.DataTo(&a); err != nil {
			return count, goerr.Wrap(err, "failed to decode alert", goerr.V("path", doc.Ref.Path))
		}
		// zero expiry is stored as the minimum timestamp and means "never"
		if a.ExpiresAt.IsZero() {
			continue
		}

		if _, err := doc.Ref.Update(ctx, []firestore.Update{{Path: "is_active", Value: false}}); err != nil {
			return count, goerr.Wrap(err, "failed to expire alert", goerr.V("path", doc.Ref.Path))
		}
		count++
	}
}
