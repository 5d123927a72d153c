package server

import (
	"net/http"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/usecase/user"
	"github.com/go-chi/chi"
)

func (s *Server) listReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.users.Reminders(r.Context(), userIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (s *Server) completeReminder(w http.ResponseWriter, r *http.Request) {
	id := model.ReminderID(chi.URLParam(r, "id"))
	if err := s.users.CompleteReminder(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w)
}

type moodRequest struct {
	UserID model.UserID `json:"user_id"`
	Score  int          `json:"score"`
	Note   string       `json:"note"`
}

func (s *Server) saveMood(w http.ResponseWriter, r *http.Request) {
	var req moodRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.users.SaveMood(r.Context(), req.UserID, req.Score, req.Note); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Mood saved"})
}

func (s *Server) moodHistory(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "days", user.DefaultMoodDays)
	if err != nil {
		writeError(w, r, err)
		return
	}
	moods, err := s.users.MoodHistory(r.Context(), userIDParam(r), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if moods == nil {
		moods = []*model.Mood{}
	}
	writeJSON(w, http.StatusOK, moods)
}

func (s *Server) listRoutines(w http.ResponseWriter, r *http.Request) {
	routines, err := s.users.Routines(r.Context(), userIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, routines)
}

type routineRequest struct {
	UserID model.UserID `json:"user_id"`
	user.RoutineInput
}

func (s *Server) createRoutine(w http.ResponseWriter, r *http.Request) {
	var req routineRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	routine, err := s.users.CreateRoutine(r.Context(), req.UserID, req.RoutineInput)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": routine.ID})
}

func (s *Server) completeRoutine(w http.ResponseWriter, r *http.Request) {
	points, err := s.users.CompleteRoutine(r.Context(), model.RoutineID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "points_earned": points})
}

func (s *Server) deleteRoutine(w http.ResponseWriter, r *http.Request) {
	if err := s.users.DeleteRoutine(r.Context(), model.RoutineID(chi.URLParam(r, "id"))); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w)
}
