package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var ErrRoutineNotFound = goerr.New("routine not found")

const DefaultRoutinePoints = 5

type RoutineID string

// NewRoutineID generates a new unique RoutineID
func NewRoutineID() RoutineID {
	return RoutineID(uuid.New().String())
}

type Routine struct {
	ID        RoutineID `json:"id" firestore:"id"`
	UserID    UserID    `json:"user_id" firestore:"user_id"`
	Title     string    `json:"title" firestore:"title"`
	Time      string    `json:"time" firestore:"time"`
	Points    int       `json:"points" firestore:"points"`
	Active    bool      `json:"active" firestore:"active"`
	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
}

// RoutineStatus is a routine together with its completion on a given day
type RoutineStatus struct {
	ID     RoutineID `json:"id"`
	Title  string    `json:"title"`
	Time   string    `json:"time"`
	Done   bool      `json:"done_today"`
	Points int       `json:"points"`
}
