package server

import (
	"net/http"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/usecase/alert"
)

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", alert.DefaultListLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	alerts, err := s.alerts.ListActive(r.Context(), alert.ListOptions{
		Severity: model.Severity(r.URL.Query().Get("severity")),
		Limit:    limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []*model.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) criticalSummary(w http.ResponseWriter, r *http.Request) {
	hours, err := intQuery(r, "hours", alert.DefaultSummaryHours)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.alerts.CriticalSummary(r.Context(), hours)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type refreshResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ActiveCount int    `json:"active_count"`
	Earthquakes int    `json:"earthquakes"`
	News        int    `json:"news"`
	Expired     int    `json:"expired"`
}

// refreshAlerts runs one fetch cycle immediately
func (s *Server) refreshAlerts(w http.ResponseWriter, r *http.Request) {
	result, err := s.alerts.RunFetchCycle(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	active, err := s.alerts.ListActive(r.Context(), alert.ListOptions{})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		Status:      "ok",
		Message:     "Alerts refreshed",
		ActiveCount: len(active),
		Earthquakes: result.Earthquakes,
		News:        result.News,
		Expired:     result.Expired,
	})
}
