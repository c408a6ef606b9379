// Package api exposes the budget and modification services over HTTP JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rowanvale/costbook/internal/domain"
	"github.com/rowanvale/costbook/internal/service"
)

type Server struct {
	router chi.Router
	budget service.BudgetService
	mods   service.ModificationService
	logger *zap.Logger
}

func NewServer(budget service.BudgetService, mods service.ModificationService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router: chi.NewRouter(),
		budget: budget,
		mods:   mods,
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			s.logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("dur", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Route("/api/projects/{projectID}/budget", func(r chi.Router) {
		r.Get("/", s.handleGetBudget)
		r.Post("/", s.handlePostBudget)
		r.Post("/lock", s.handleLockBudget)
		r.Post("/unlock", s.handleUnlockBudget)
		r.Route("/modifications", func(r chi.Router) {
			r.Get("/", s.handleListModifications)
			r.Post("/", s.handleCreateModification)
			r.Patch("/", s.handleTransitionModification)
			r.Delete("/", s.handleDeleteModification)
		})
	})
}

// actor returns the acting user from the attribution header; empty means the
// mutation is unattributed and will be rejected by the service layer.
func actor(r *http.Request) string {
	return r.Header.Get("X-Actor")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondError maps domain errors to status codes. Invalid transitions get a
// structured body echoing the current status and the actions it accepts.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	var transitionErr *domain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		s.logFailure(http.StatusBadRequest, err)
		actions := make([]string, 0, len(transitionErr.ValidActions))
		for _, a := range transitionErr.ValidActions {
			actions = append(actions, string(a))
		}
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":         transitionErr.Error(),
			"currentStatus": string(transitionErr.CurrentStatus),
			"validActions":  actions,
		})
		return
	}

	status := statusFromErr(err)
	s.logFailure(status, err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrBudgetLocked):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logFailure(status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Warn("request failed", zap.Int("status", status), zap.Error(err))
	}
}
