package server

import (
	"net/http"
	"time"

	"github.com/fa-friend/fa/pkg/usecase/alert"
	"github.com/fa-friend/fa/pkg/usecase/chat"
	"github.com/fa-friend/fa/pkg/usecase/user"
	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/fa-friend/fa/pkg/utils/logging"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
)

// Server is the JSON HTTP API used by the mobile app
type Server struct {
	router *chi.Mux
	chat   *chat.UseCase
	users  *user.UseCase
	alerts *alert.UseCase
	mcp    http.Handler
	now    clock.Clock
}

type Option func(*Server)

// WithMCP mounts a streamable MCP endpoint at /mcp
func WithMCP(h http.Handler) Option {
	return func(s *Server) {
		s.mcp = h
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Server) {
		s.now = c
	}
}

func New(chatUC *chat.UseCase, users *user.UseCase, alerts *alert.UseCase, opts ...Option) *Server {
	s := &Server{
		chat:   chatUC,
		users:  users,
		alerts: alerts,
		now:    clock.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Accept"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}).Handler)

	r.Get("/", s.root)
	r.Get("/health", s.health)

	r.Post("/register", s.register)
	r.Post("/chat", s.sendChat)
	r.Get("/history/{id}", s.history)
	r.Get("/memory/{id}", s.memory)
	r.Put("/settings", s.updateSettings)
	r.Get("/stats/{id}", s.stats)
	r.Post("/export/{id}", s.export)

	r.Get("/reminders/{id}", s.listReminders)
	r.Post("/reminders/{id}/done", s.completeReminder)

	r.Post("/mood", s.saveMood)
	r.Get("/mood/{id}", s.moodHistory)

	r.Get("/routines/{id}", s.listRoutines)
	r.Post("/routines", s.createRoutine)
	r.Post("/routines/{id}/complete", s.completeRoutine)
	r.Delete("/routines/{id}", s.deleteRoutine)

	r.Get("/brief/morning/{id}", s.morningBrief)
	r.Get("/brief/night/{id}", s.nightWrap)

	r.Get("/alerts", s.listAlerts)
	r.Get("/alerts/critical-summary", s.criticalSummary)
	r.Post("/alerts/refresh", s.refreshAlerts)

	if s.mcp != nil {
		r.Mount("/mcp", s.mcp)
	}

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger puts a request scoped logger into the context and logs the outcome
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := logging.From(r.Context()).With("method", r.Method, "path", r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(logging.With(r.Context(), logger)))

		logger.Info("request",
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "AI Friend API is running 🤖",
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.now().Format(time.RFC3339),
	})
}
