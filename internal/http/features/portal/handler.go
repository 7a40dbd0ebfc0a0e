// Package portal exposes the founder-side investor relations surface:
// the read-only investor view of a workspace and investor member
// management.
package portal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/http/middleware"
	"github.com/startupops/startupops/internal/httputil"
	"github.com/startupops/startupops/internal/metrics"
	"github.com/startupops/startupops/internal/workspace"
)

// SnapshotSource computes a workspace's metrics snapshot.
type SnapshotSource interface {
	Snapshot(ctx context.Context, workspaceID uuid.UUID) (metrics.Snapshot, error)
}

// Handler handles investor portal endpoints.
type Handler struct {
	logger    *slog.Logger
	registry  *workspace.Registry
	snapshots SnapshotSource
}

// NewHandler creates a new portal handler.
func NewHandler(logger *slog.Logger, registry *workspace.Registry, snapshots SnapshotSource) *Handler {
	return &Handler{logger: logger, registry: registry, snapshots: snapshots}
}

// ViewResponse is the read-only workspace view served to investors.
type ViewResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Industry    string           `json:"industry,omitempty"`
	Stage       string           `json:"stage,omitempty"`
	Website     string           `json:"website,omitempty"`
	Metrics     metrics.Snapshot `json:"metrics"`
}

// View returns the workspace with a fresh metrics snapshot.
// GET /startups/{id}/investor-view
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	ws, err := h.registry.InvestorView(r.Context(), identity.UserID, workspaceID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	snap, err := h.snapshots.Snapshot(r.Context(), workspaceID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ViewResponse{
		ID:          ws.ID.String(),
		Name:        ws.Name,
		Description: ws.Description,
		Industry:    ws.Industry,
		Stage:       ws.Stage,
		Website:     ws.Website,
		Metrics:     snap,
	})
}

// InvestorResponse is one investor member.
type InvestorResponse struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email,omitempty"`
	FullName string    `json:"full_name,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// List returns the workspace's investor members.
// GET /startups/{id}/investors
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	investors, err := h.registry.Investors(r.Context(), identity.UserID, workspaceID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	out := make([]InvestorResponse, len(investors))
	for i, m := range investors {
		resp := InvestorResponse{
			UserID:   m.Membership.UserID.String(),
			JoinedAt: m.Membership.JoinedAt,
		}
		if m.Profile != nil {
			resp.Email = m.Profile.Email
			resp.FullName = m.Profile.FullName
		}
		out[i] = resp
	}
	httputil.JSON(w, http.StatusOK, out)
}

// InviteRequest represents an investor invitation by email.
type InviteRequest struct {
	Email string `json:"email"`
}

// Invite attaches an existing platform user as an investor member.
// POST /startups/{id}/investors/invite
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		httputil.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	m, err := h.registry.InviteInvestor(r.Context(), identity.UserID, workspaceID, req.Email)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	h.logger.Info("investor invited", "workspace_id", workspaceID, "investor_id", m.UserID, "actor_id", identity.UserID)
	httputil.JSON(w, http.StatusCreated, InvestorResponse{
		UserID:   m.UserID.String(),
		JoinedAt: m.JoinedAt,
	})
}

// Revoke detaches an investor member from the workspace.
// DELETE /startups/{id}/investors/{userId}
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.registry.RevokeInvestor(r.Context(), identity.UserID, workspaceID, userID); err != nil {
		httputil.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
