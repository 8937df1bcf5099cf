package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
	"github.com/espalier-dev/espalier/pkg/session"
)

// Server exposes the decision engine over a small JSON API. One POST per
// turn: the handler locks the session, loads the snapshot, runs the engine,
// applies the decisions, saves, and returns the turn result.
type Server struct {
	engine    *espalier.Engine
	manager   *session.Manager
	scenarios ports.ScenarioCatalog
	logger    *slog.Logger
	now       func() time.Time
}

// TurnRequest is the JSON body for POST /v1/sessions/{sessionID}/turns.
// Everything in it comes from the caller's upstream pipeline stages.
type TurnRequest struct {
	MatchedRules  []domain.MatchedRule         `json:"matched_rules,omitempty"`
	Candidates    []domain.ScenarioCandidate   `json:"candidates,omitempty"`
	Signals       map[string]domain.SignalKind `json:"signals,omitempty"`
	ProfileFields map[string]any               `json:"profile_fields,omitempty"`
}

// TurnResponse bundles the engine output with the post-apply snapshot.
type TurnResponse struct {
	Result  *espalier.TurnResult `json:"result"`
	Session *domain.Session      `json:"session"`
}

// NewHandler wires the routes and returns the ready-to-mount handler.
func NewHandler(engine *espalier.Engine, manager *session.Manager, scenarios ports.ScenarioCatalog, logger *slog.Logger) http.Handler {
	s := &Server{
		engine:    engine,
		manager:   manager,
		scenarios: scenarios,
		logger:    logger,
		now:       time.Now,
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1/sessions/{sessionID}", func(r chi.Router) {
		r.Post("/turns", s.handleTurn)
		r.Get("/", s.handleGetSession)
		r.Delete("/", s.handleDeleteSession)
	})
	return r
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var resp TurnResponse
	err := s.manager.WithLock(r.Context(), sessionID, func(ctx context.Context) error {
		snapshot, err := s.manager.Store().Load(ctx, sessionID)
		if errors.Is(err, domain.ErrSessionNotFound) {
			snapshot = domain.NewSession(sessionID)
		} else if err != nil {
			return err
		}

		result, err := s.engine.DecideTurn(ctx, espalier.TurnInput{
			Session:       snapshot,
			MatchedRules:  req.MatchedRules,
			Candidates:    req.Candidates,
			Signals:       req.Signals,
			ProfileFields: req.ProfileFields,
		})
		if err != nil {
			return err
		}

		graphs, err := s.scenarios.Scenarios(ctx)
		if err != nil {
			return err
		}
		updated := session.Apply(snapshot, graphs, result.Lifecycle, result.Transitions, s.now())
		if err := s.manager.Store().Save(ctx, updated); err != nil {
			return err
		}

		resp = TurnResponse{Result: result, Session: updated}
		return nil
	})
	if err != nil {
		s.logger.Error("turn failed", "session_id", sessionID, "err", err)
		writeError(w, http.StatusInternalServerError, "turn failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := s.manager.Load(r.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.logger.Error("session load failed", "session_id", sessionID, "err", err)
		writeError(w, http.StatusInternalServerError, "session load failed")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.manager.Delete(r.Context(), sessionID); err != nil {
		s.logger.Error("session delete failed", "session_id", sessionID, "err", err)
		writeError(w, http.StatusInternalServerError, "session delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
