// Package investor exposes the discovery side of the platform: the
// browse feed, swipes and the match list.
package investor

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
	"github.com/startupops/startupops/internal/http/middleware"
	"github.com/startupops/startupops/internal/httputil"
	"github.com/startupops/startupops/internal/matching"
	"github.com/startupops/startupops/internal/metrics"
)

// Handler handles investor discovery endpoints.
type Handler struct {
	logger *slog.Logger
	engine *matching.Engine
}

// NewHandler creates a new investor handler.
func NewHandler(logger *slog.Logger, engine *matching.Engine) *Handler {
	return &Handler{logger: logger, engine: engine}
}

// CardResponse is one workspace in the browse feed.
type CardResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Industry    string           `json:"industry,omitempty"`
	Stage       string           `json:"stage,omitempty"`
	Website     string           `json:"website,omitempty"`
	Metrics     metrics.Snapshot `json:"metrics"`
}

// Browse returns the workspaces the investor has not decided on yet.
// GET /investor/browse
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cards, err := h.engine.Browse(r.Context(), identity)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	out := make([]CardResponse, len(cards))
	for i, c := range cards {
		out[i] = CardResponse{
			ID:          c.Workspace.ID.String(),
			Name:        c.Workspace.Name,
			Description: c.Workspace.Description,
			Industry:    c.Workspace.Industry,
			Stage:       c.Workspace.Stage,
			Website:     c.Workspace.Website,
			Metrics:     c.Snapshot,
		}
	}
	httputil.JSON(w, http.StatusOK, out)
}

// SwipeRequest represents a swipe decision.
type SwipeRequest struct {
	Action string `json:"action"`
}

// Swipe records a decision on a workspace. Swiping a pair that already
// has a decision replaces it.
// POST /investor/swipe/{workspaceId}
func (h *Handler) Swipe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, err := uuid.Parse(chi.URLParam(r, "workspaceId"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	var req SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.engine.Swipe(r.Context(), identity, workspaceID, domain.SwipeDecision(req.Action))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	h.logger.Info("swipe recorded", "investor_id", identity.UserID, "workspace_id", workspaceID, "action", s.Action)
	httputil.JSON(w, http.StatusOK, map[string]any{
		"workspace_id": s.WorkspaceID.String(),
		"action":       string(s.Action),
		"decided_at":   s.DecidedAt,
	})
}

// Undo erases the decision on a workspace so it reappears in the feed.
// DELETE /investor/swipe/{workspaceId}
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, err := uuid.Parse(chi.URLParam(r, "workspaceId"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	if err := h.engine.Undo(r.Context(), identity, workspaceID); err != nil {
		httputil.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MatchResponse is one interested workspace with founder contact.
type MatchResponse struct {
	WorkspaceID  string    `json:"workspace_id"`
	Name         string    `json:"name"`
	Industry     string    `json:"industry,omitempty"`
	Stage        string    `json:"stage,omitempty"`
	FounderName  string    `json:"founder_name,omitempty"`
	FounderEmail string    `json:"founder_email,omitempty"`
	MatchedAt    time.Time `json:"matched_at"`
}

// Matches returns the workspaces the investor is interested in, most
// recent first.
// GET /investor/matches
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	matches, err := h.engine.Matches(r.Context(), identity)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	out := make([]MatchResponse, len(matches))
	for i, m := range matches {
		out[i] = MatchResponse{
			WorkspaceID:  m.Workspace.ID.String(),
			Name:         m.Workspace.Name,
			Industry:     m.Workspace.Industry,
			Stage:        m.Workspace.Stage,
			FounderName:  m.FounderName,
			FounderEmail: m.FounderEmail,
			MatchedAt:    m.MatchedAt,
		}
	}
	httputil.JSON(w, http.StatusOK, out)
}

// RemoveMatch withdraws interest in a workspace.
// DELETE /investor/matches/{workspaceId}
func (h *Handler) RemoveMatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, err := uuid.Parse(chi.URLParam(r, "workspaceId"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	if err := h.engine.RemoveMatch(r.Context(), identity, workspaceID); err != nil {
		httputil.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
