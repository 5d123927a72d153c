package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidSeverity  = goerr.New("invalid severity")
	ErrInvalidAlertType = goerr.New("invalid alert type")
)

type AlertID string

// NewAlertID generates a new unique AlertID
func NewAlertID() AlertID {
	return AlertID(uuid.New().String())
}

type AlertType string

const (
	AlertTypeEarthquake AlertType = "earthquake"
	AlertTypeNews       AlertType = "news"
)

// Validate checks if the alert type is known
func (t AlertType) Validate() error {
	switch t {
	case AlertTypeEarthquake, AlertTypeNews:
		return nil
	default:
		return goerr.Wrap(ErrInvalidAlertType, "unknown alert type", goerr.V("type", t))
	}
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Validate checks if the severity is one of the three tiers
func (s Severity) Validate() error {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return nil
	default:
		return goerr.Wrap(ErrInvalidSeverity, "unknown severity", goerr.V("severity", s))
	}
}

// Label returns the upper-case tag used when alerts are injected into prompts
func (s Severity) Label() string {
	return "[" + strings.ToUpper(string(s)) + "]"
}

// Alert is a classified external event fetched from a public feed.
// ExternalID is the idempotency key: saving the same ExternalID twice is a no-op.
type Alert struct {
	ID          AlertID   `json:"id" firestore:"id"`
	Type        AlertType `json:"alert_type" firestore:"alert_type"`
	Severity    Severity  `json:"severity" firestore:"severity"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description" firestore:"description"`
	Source      string    `json:"source" firestore:"source"`
	ExternalID  string    `json:"external_id" firestore:"external_id"`
	Magnitude   float64   `json:"magnitude" firestore:"magnitude"`
	Location    string    `json:"location" firestore:"location"`
	URL         string    `json:"url" firestore:"url"`
	FetchedAt   time.Time `json:"fetched_at" firestore:"fetched_at"`
	ExpiresAt   time.Time `json:"expires_at" firestore:"expires_at"`
	IsActive    bool      `json:"is_active" firestore:"is_active"`
}

// ActiveAt reports whether the alert should still be shown at the given time
func (a *Alert) ActiveAt(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	return a.ExpiresAt.IsZero() || a.ExpiresAt.After(now)
}
