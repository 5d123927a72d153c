package alert

import (
	"context"
	"strings"
	"time"

	"github.com/fa-friend/fa/pkg/model"
)

const (
	DefaultListLimit    = 20
	DefaultSummaryHours = 6
	maxSummaryAlerts    = 50
)

// ListOptions contains options for listing alerts
type ListOptions struct {
	// Severity filters by tier when set, in any letter case
	Severity model.Severity
	Limit    int
}

// ListActive returns alerts still active now, newest first
func (u *UseCase) ListActive(ctx context.Context, opts ListOptions) ([]*model.Alert, error) {
	severity := model.Severity(strings.ToLower(strings.TrimSpace(string(opts.Severity))))
	if severity != "" {
		if err := severity.Validate(); err != nil {
			return nil, err
		}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	return u.repo.ListActiveAlerts(ctx, u.now(), severity, limit)
}

// CriticalSummary is the banner payload: active critical alerts of the last hours
type CriticalSummary struct {
	Count  int            `json:"count"`
	Alerts []*model.Alert `json:"alerts"`
}

func (u *UseCase) CriticalSummary(ctx context.Context, hours int) (*CriticalSummary, error) {
	if hours <= 0 {
		hours = DefaultSummaryHours
	}
	now := u.now()

	alerts, err := u.repo.ListRecentCriticalAlerts(ctx, now, now.Add(-time.Duration(hours)*time.Hour), maxSummaryAlerts)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []*model.Alert{}
	}
	return &CriticalSummary{Count: len(alerts), Alerts: alerts}, nil
}
