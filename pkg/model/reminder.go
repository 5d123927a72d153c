package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var ErrReminderNotFound = goerr.New("reminder not found")

// ReminderLayout is the wall-clock format of remind_at values
const ReminderLayout = "2006-01-02 15:04"

type ReminderID string

// NewReminderID generates a new unique ReminderID
func NewReminderID() ReminderID {
	return ReminderID(uuid.New().String())
}

type Reminder struct {
	ID        ReminderID `json:"id" firestore:"id"`
	UserID    UserID     `json:"user_id" firestore:"user_id"`
	Message   string     `json:"message" firestore:"message"`
	RemindAt  string     `json:"remind_at" firestore:"remind_at"`
	Done      bool       `json:"done" firestore:"done"`
	CreatedAt time.Time  `json:"created_at" firestore:"created_at"`
}

// ReminderSpec is a normalized reminder ready to be stored
type ReminderSpec struct {
	RemindAt string `json:"remind_at"`
	Message  string `json:"message"`
}
