package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrUserNotFound = goerr.New("user not found")
	ErrInvalidClock = goerr.New("invalid clock time")
)

const (
	DefaultWakeTime  = "07:00"
	DefaultSleepTime = "23:00"
)

type UserID string

// NewUserID generates a short user id from the first 8 characters of a random UUID
func NewUserID() UserID {
	return UserID(uuid.New().String()[:8])
}

type Persona string

const (
	PersonaFriendly     Persona = "friendly"
	PersonaCaring       Persona = "caring"
	PersonaCheerful     Persona = "cheerful"
	PersonaProfessional Persona = "professional"
)

// Personas lists the known personas. The first one is the fallback for
// unknown tags.
var Personas = []Persona{
	PersonaFriendly,
	PersonaCaring,
	PersonaCheerful,
	PersonaProfessional,
}

// Known reports whether the persona is one of the enumerated presets
func (p Persona) Known() bool {
	for _, known := range Personas {
		if p == known {
			return true
		}
	}
	return false
}

// OrDefault returns the persona itself when known, otherwise the first persona
func (p Persona) OrDefault() Persona {
	if p.Known() {
		return p
	}
	return Personas[0]
}

type User struct {
	ID         UserID    `json:"user_id" firestore:"id"`
	Name       string    `json:"name" firestore:"name"`
	Persona    Persona   `json:"personality" firestore:"personality"`
	WakeTime   string    `json:"wake_time" firestore:"wake_time"`
	SleepTime  string    `json:"sleep_time" firestore:"sleep_time"`
	CreatedAt  time.Time `json:"created_at" firestore:"created_at"`
	LastActive time.Time `json:"last_active" firestore:"last_active"`
}

// UserSettings is a partial update of a user. Empty fields are left unchanged.
type UserSettings struct {
	Persona   Persona `json:"personality,omitempty"`
	WakeTime  string  `json:"wake_time,omitempty"`
	SleepTime string  `json:"sleep_time,omitempty"`
}

// Validate checks the clock fields are HH:MM when set
func (s *UserSettings) Validate() error {
	for _, v := range []string{s.WakeTime, s.SleepTime} {
		if v == "" {
			continue
		}
		if _, err := time.Parse("15:04", v); err != nil {
			return goerr.Wrap(ErrInvalidClock, "settings time must be HH:MM", goerr.V("value", v))
		}
	}
	return nil
}

// UserStats is derived from routine completion logs
type UserStats struct {
	Streak      int `json:"streak"`
	TotalPoints int `json:"total_points"`
}
