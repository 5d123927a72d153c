package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLite stores everything in a single local database file
type SQLite struct {
	db *sqlx.DB
}

var _ Repository = (*SQLite)(nil)

// NewSQLite opens (or creates) the database at path and applies pending migrations
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
		}
	}

	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite", goerr.V("path", path))
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to connect sqlite", goerr.V("path", path))
	}

	if err := migrate(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return goerr.Wrap(err, "failed to open embedded migrations")
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return goerr.Wrap(err, "failed to create migration provider")
	}
	if _, err := provider.Up(ctx); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type userRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	Persona    string `db:"personality"`
	Memory     string `db:"memory"`
	WakeTime   string `db:"wake_time"`
	SleepTime  string `db:"sleep_time"`
	CreatedAt  int64  `db:"created_at"`
	LastActive int64  `db:"last_active"`
}

func (r *userRow) toModel() *model.User {
	return &model.User{
		ID:         model.UserID(r.ID),
		Name:       r.Name,
		Persona:    model.Persona(r.Persona),
		WakeTime:   r.WakeTime,
		SleepTime:  r.SleepTime,
		CreatedAt:  time.Unix(r.CreatedAt, 0),
		LastActive: time.Unix(r.LastActive, 0),
	}
}

func (s *SQLite) PutUser(ctx context.Context, user *model.User, memory *model.Memory) error {
	raw, err := json.Marshal(memory)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal memory", goerr.V("user_id", user.ID))
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR IGNORE INTO users
		(id, name, personality, memory, wake_time, sleep_time, created_at, last_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Persona, string(raw), user.WakeTime, user.SleepTime,
		user.CreatedAt.Unix(), user.CreatedAt.Unix())
	if err != nil {
		return goerr.Wrap(err, "failed to insert user", goerr.V("user_id", user.ID))
	}
	return nil
}

func (s *SQLite) getUserRow(ctx context.Context, id model.UserID) (*userRow, error) {
	var row userRow
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("user_id", id))
	}
	return &row, nil
}

func (s *SQLite) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	row, err := s.getUserRow(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (s *SQLite) UpdateUserSettings(ctx context.Context, id model.UserID, settings model.UserSettings) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET
		personality = COALESCE(NULLIF(?, ''), personality),
		wake_time = COALESCE(NULLIF(?, ''), wake_time),
		sleep_time = COALESCE(NULLIF(?, ''), sleep_time)
		WHERE id = ?`,
		settings.Persona, settings.WakeTime, settings.SleepTime, id)
	if err != nil {
		return goerr.Wrap(err, "failed to update user settings", goerr.V("user_id", id))
	}
	return nil
}

func (s *SQLite) GetMemory(ctx context.Context, id model.UserID) (*model.Memory, error) {
	row, err := s.getUserRow(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return model.ParseMemory(row.Memory), nil
}

func (s *SQLite) PutMemory(ctx context.Context, id model.UserID, memory *model.Memory, now time.Time) error {
	raw, err := json.Marshal(memory)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal memory", goerr.V("user_id", id))
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET memory = ?, last_active = ? WHERE id = ?`,
		string(raw), now.Unix(), id); err != nil {
		return goerr.Wrap(err, "failed to update memory", goerr.V("user_id", id))
	}
	return nil
}

type messageRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Role      string `db:"role"`
	Content   string `db:"content"`
	CreatedAt int64  `db:"created_at"`
}

func (r *messageRow) toModel() *model.Message {
	return &model.Message{
		ID:        model.MessageID(r.ID),
		UserID:    model.UserID(r.UserID),
		Role:      model.Role(r.Role),
		Content:   r.Content,
		CreatedAt: time.UnixMilli(r.CreatedAt),
	}
}

func (s *SQLite) SaveMessage(ctx context.Context, msg *model.Message) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO messages (id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.UserID, msg.Role, msg.Content, msg.CreatedAt.UnixMilli())
	if err != nil {
		return goerr.Wrap(err, "failed to save message", goerr.V("user_id", msg.UserID))
	}
	return nil
}

func (s *SQLite) ListRecentMessages(ctx context.Context, id model.UserID, limit int) ([]*model.Message, error) {
	var rows []messageRow
	err := s.db.SelectContext(ctx, &rows, `SELECT id, user_id, role, content, created_at FROM (
		SELECT * FROM messages WHERE user_id = ? ORDER BY seq DESC LIMIT ?
	) ORDER BY seq ASC`, id, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list recent messages", goerr.V("user_id", id))
	}
	return toModels(rows, (*messageRow).toModel), nil
}

func (s *SQLite) ListUserMessages(ctx context.Context, id model.UserID) ([]*model.Message, error) {
	var rows []messageRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, role, content, created_at FROM messages WHERE user_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list messages", goerr.V("user_id", id))
	}
	return toModels(rows, (*messageRow).toModel), nil
}

type reminderRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Message   string `db:"message"`
	RemindAt  string `db:"remind_at"`
	Done      bool   `db:"done"`
	CreatedAt int64  `db:"created_at"`
}

func (r *reminderRow) toModel() *model.Reminder {
	return &model.Reminder{
		ID:        model.ReminderID(r.ID),
		UserID:    model.UserID(r.UserID),
		Message:   r.Message,
		RemindAt:  r.RemindAt,
		Done:      r.Done,
		CreatedAt: time.Unix(r.CreatedAt, 0),
	}
}

func (s *SQLite) AddReminder(ctx context.Context, reminder *model.Reminder) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO reminders (id, user_id, message, remind_at, done, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		reminder.ID, reminder.UserID, reminder.Message, reminder.RemindAt, reminder.Done, reminder.CreatedAt.Unix())
	if err != nil {
		return goerr.Wrap(err, "failed to add reminder", goerr.V("user_id", reminder.UserID))
	}
	return nil
}

func (s *SQLite) ListPendingReminders(ctx context.Context, id model.UserID) ([]*model.Reminder, error) {
	var rows []reminderRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM reminders WHERE user_id = ? AND done = 0 ORDER BY remind_at, created_at`, id); err != nil {
		return nil, goerr.Wrap(err, "failed to list reminders", goerr.V("user_id", id))
	}
	return toModels(rows, (*reminderRow).toModel), nil
}

func (s *SQLite) MarkReminderDone(ctx context.Context, id model.ReminderID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE reminders SET done = 1 WHERE id = ?`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to mark reminder done", goerr.V("reminder_id", id))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goerr.Wrap(model.ErrReminderNotFound, "no such reminder", goerr.V("reminder_id", id))
	}
	return nil
}

func (s *SQLite) SaveMood(ctx context.Context, id model.UserID, mood *model.Mood) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO moods (user_id, mood_date, score, note) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, mood_date) DO UPDATE SET score = excluded.score, note = excluded.note`,
		id, mood.Date, mood.Score, mood.Note)
	if err != nil {
		return goerr.Wrap(err, "failed to save mood", goerr.V("user_id", id))
	}
	return nil
}

func (s *SQLite) GetMoodHistory(ctx context.Context, id model.UserID, since string) ([]*model.Mood, error) {
	var moods []*model.Mood
	if err := s.db.SelectContext(ctx, &moods,
		`SELECT score, note, mood_date AS date FROM moods WHERE user_id = ? AND mood_date >= ? ORDER BY mood_date`,
		id, since); err != nil {
		return nil, goerr.Wrap(err, "failed to get mood history", goerr.V("user_id", id))
	}
	return moods, nil
}

type routineRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Title     string `db:"title"`
	Time      string `db:"time"`
	Points    int    `db:"points"`
	Active    bool   `db:"active"`
	CreatedAt int64  `db:"created_at"`
}

func (r *routineRow) toModel() *model.Routine {
	return &model.Routine{
		ID:        model.RoutineID(r.ID),
		UserID:    model.UserID(r.UserID),
		Title:     r.Title,
		Time:      r.Time,
		Points:    r.Points,
		Active:    r.Active,
		CreatedAt: time.Unix(r.CreatedAt, 0),
	}
}

func (s *SQLite) CreateRoutine(ctx context.Context, routine *model.Routine) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO routines (id, user_id, title, time, points, active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		routine.ID, routine.UserID, routine.Title, routine.Time, routine.Points, routine.Active, routine.CreatedAt.Unix())
	if err != nil {
		return goerr.Wrap(err, "failed to create routine", goerr.V("user_id", routine.UserID))
	}
	return nil
}

func (s *SQLite) GetRoutine(ctx context.Context, id model.RoutineID) (*model.Routine, error) {
	var row routineRow
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM routines WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get routine", goerr.V("routine_id", id))
	}
	return row.toModel(), nil
}

func (s *SQLite) ListRoutines(ctx context.Context, id model.UserID) ([]*model.Routine, error) {
	var rows []routineRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM routines WHERE user_id = ? AND active = 1 ORDER BY time, created_at, id`, id); err != nil {
		return nil, goerr.Wrap(err, "failed to list routines", goerr.V("user_id", id))
	}
	return toModels(rows, (*routineRow).toModel), nil
}

func (s *SQLite) DeleteRoutine(ctx context.Context, id model.RoutineID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE routines SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete routine", goerr.V("routine_id", id))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goerr.Wrap(model.ErrRoutineNotFound, "no such routine", goerr.V("routine_id", id))
	}
	return nil
}

func (s *SQLite) CompleteRoutine(ctx context.Context, id model.RoutineID, date string) (int, error) {
	routine, err := s.GetRoutine(ctx, id)
	if err != nil {
		return 0, err
	}
	if routine == nil {
		return 0, goerr.Wrap(model.ErrRoutineNotFound, "no such routine", goerr.V("routine_id", id))
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO routine_logs (routine_id, completed_date, points_earned) VALUES (?, ?, ?)`,
		id, date, routine.Points); err != nil {
		return 0, goerr.Wrap(err, "failed to log routine", goerr.V("routine_id", id), goerr.V("date", date))
	}
	return routine.Points, nil
}

func (s *SQLite) GetRoutineStatus(ctx context.Context, id model.UserID, date string) ([]*model.RoutineStatus, error) {
	var status []*model.RoutineStatus
	err := s.db.SelectContext(ctx, &status, `SELECT r.id, r.title, r.time, r.points, (l.routine_id IS NOT NULL) AS done
		FROM routines r
		LEFT JOIN routine_logs l ON l.routine_id = r.id AND l.completed_date = ?
		WHERE r.user_id = ? AND r.active = 1
		ORDER BY r.time, r.created_at, r.id`, date, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get routine status", goerr.V("user_id", id))
	}
	return status, nil
}

func (s *SQLite) GetUserStats(ctx context.Context, id model.UserID, today string) (*model.UserStats, error) {
	var stats model.UserStats
	if err := s.db.GetContext(ctx, &stats.TotalPoints, `SELECT COALESCE(SUM(l.points_earned), 0)
		FROM routine_logs l JOIN routines r ON l.routine_id = r.id WHERE r.user_id = ?`, id); err != nil {
		return nil, goerr.Wrap(err, "failed to sum points", goerr.V("user_id", id))
	}

	var dates []string
	if err := s.db.SelectContext(ctx, &dates, `SELECT DISTINCT l.completed_date
		FROM routine_logs l JOIN routines r ON l.routine_id = r.id
		WHERE r.user_id = ? AND l.completed_date <= ?`, id, today); err != nil {
		return nil, goerr.Wrap(err, "failed to list completion dates", goerr.V("user_id", id))
	}
	stats.Streak = streakFrom(dates, today)

	return &stats, nil
}

type alertRow struct {
	ID          string        `db:"id"`
	Type        string        `db:"alert_type"`
	Severity    string        `db:"severity"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Source      string        `db:"source"`
	ExternalID  string        `db:"external_id"`
	Magnitude   float64       `db:"magnitude"`
	Location    string        `db:"location"`
	URL         string        `db:"url"`
	FetchedAt   int64         `db:"fetched_at"`
	ExpiresAt   sql.NullInt64 `db:"expires_at"`
	IsActive    bool          `db:"is_active"`
}

func (r *alertRow) toModel() *model.Alert {
	a := &model.Alert{
		ID:          model.AlertID(r.ID),
		Type:        model.AlertType(r.Type),
		Severity:    model.Severity(r.Severity),
		Title:       r.Title,
		Description: r.Description,
		Source:      r.Source,
		ExternalID:  r.ExternalID,
		Magnitude:   r.Magnitude,
		Location:    r.Location,
		URL:         r.URL,
		FetchedAt:   time.Unix(r.FetchedAt, 0),
		IsActive:    r.IsActive,
	}
	if r.ExpiresAt.Valid {
		a.ExpiresAt = time.Unix(r.ExpiresAt.Int64, 0)
	}
	return a
}

func (s *SQLite) SaveAlert(ctx context.Context, alert *model.Alert) (bool, error) {
	var expiresAt sql.NullInt64
	if !alert.ExpiresAt.IsZero() {
		expiresAt = sql.NullInt64{Int64: alert.ExpiresAt.Unix(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO alerts
		(id, alert_type, severity, title, description, source, external_id, magnitude, location, url, fetched_at, expires_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		alert.ID, alert.Type, alert.Severity, alert.Title, alert.Description, alert.Source, alert.ExternalID,
		alert.Magnitude, alert.Location, alert.URL, alert.FetchedAt.Unix(), expiresAt)
	if err != nil {
		return false, goerr.Wrap(err, "failed to save alert", goerr.V("external_id", alert.ExternalID))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, goerr.Wrap(err, "failed to get affected rows", goerr.V("external_id", alert.ExternalID))
	}
	return n > 0, nil
}

func (s *SQLite) ListActiveAlerts(ctx context.Context, now time.Time, severity model.Severity, limit int) ([]*model.Alert, error) {
	var rows []alertRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM alerts
		WHERE is_active = 1 AND (expires_at IS NULL OR expires_at > ?) AND (? = '' OR severity = ?)
		ORDER BY fetched_at DESC, id LIMIT ?`, now.Unix(), severity, severity, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active alerts")
	}
	return toModels(rows, (*alertRow).toModel), nil
}

func (s *SQLite) ListRecentCriticalAlerts(ctx context.Context, now, since time.Time, limit int) ([]*model.Alert, error) {
	var rows []alertRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM alerts
		WHERE severity = ? AND is_active = 1 AND fetched_at >= ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY fetched_at DESC, id LIMIT ?`, model.SeverityCritical, since.Unix(), now.Unix(), limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list critical alerts")
	}
	return toModels(rows, (*alertRow).toModel), nil
}

func (s *SQLite) ExpireAlerts(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET is_active = 0 WHERE is_active = 1 AND expires_at < ?`, now.Unix())
	if err != nil {
		return 0, goerr.Wrap(err, "failed to expire alerts")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get affected rows")
	}
	return int(n), nil
}

func toModels[R any, M any](rows []R, conv func(*R) M) []M {
	out := make([]M, len(rows))
	for i := range rows {
		out[i] = conv(&rows[i])
	}
	return out
}
