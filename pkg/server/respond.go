package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/usecase/user"
	"github.com/fa-friend/fa/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

var errBadRequest = goerr.New("bad request")

var (
	notFoundErrors = []error{
		model.ErrUserNotFound,
		model.ErrReminderNotFound,
		model.ErrRoutineNotFound,
	}
	badRequestErrors = []error{
		errBadRequest,
		model.ErrInvalidMoodScore,
		model.ErrInvalidClock,
		model.ErrInvalidSeverity,
		user.ErrEmptyName,
		user.ErrEmptyTitle,
		user.ErrUnknownPersona,
		user.ErrUnparsableReminder,
	}
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to a status code. Unknown errors are logged
// and reported without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		logging.From(r.Context()).Error("request failed", logging.ErrAttr(err))
		detail = "internal server error"
	} else {
		logging.From(r.Context()).Debug("request rejected", logging.ErrAttr(err))
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}

func statusOf(err error) int {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	if errors.Is(err, user.ErrStorageNotConfigured) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("cause", err.Error()))
	}
	return nil
}

// intQuery reads an optional integer query parameter
func intQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, goerr.Wrap(errBadRequest, "query parameter must be an integer", goerr.V("key", key), goerr.V("value", raw))
	}
	return v, nil
}

func ok(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
