package server

import (
	"net/http"
	"strings"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/usecase/history"
	"github.com/fa-friend/fa/pkg/usecase/user"
	"github.com/go-chi/chi"
	"github.com/m-mizutani/goerr/v2"
)

func userIDParam(r *http.Request) model.UserID {
	return model.UserID(chi.URLParam(r, "id"))
}

type chatRequest struct {
	UserID  model.UserID `json:"user_id"`
	Message string       `json:"message"`
}

func (s *Server) sendChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, r, goerr.Wrap(errBadRequest, "message is required"))
		return
	}

	result, err := s.chat.Send(r.Context(), req.UserID, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req user.RegisterInput
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.users.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", history.DefaultLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	messages, err := s.users.History(r.Context(), userIDParam(r), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) memory(w http.ResponseWriter, r *http.Request) {
	mem, err := s.users.Memory(r.Context(), userIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mem)
}

type settingsRequest struct {
	UserID model.UserID `json:"user_id"`
	model.UserSettings
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.users.UpdateSettings(r.Context(), req.UserID, req.UserSettings); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.users.Stats(r.Context(), userIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	key, err := s.users.Export(r.Context(), userIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "key": key})
}

func (s *Server) morningBrief(w http.ResponseWriter, r *http.Request) {
	msg, err := s.users.MorningBrief(r.Context(), userIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) nightWrap(w http.ResponseWriter, r *http.Request) {
	msg, err := s.users.NightWrap(r.Context(), userIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}
