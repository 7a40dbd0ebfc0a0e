// Package team exposes the member roster: listing, removal and role
// changes.
package team

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
	"github.com/startupops/startupops/internal/workspace"
)

// Handler handles team roster endpoints.
type Handler struct {
	logger   *slog.Logger
	registry *workspace.Registry
}

// NewHandler creates a new team handler.
func NewHandler(logger *slog.Logger, registry *workspace.Registry) *Handler {
	return &Handler{logger: logger, registry: registry}
}

// MemberResponse represents one roster entry.
type MemberResponse struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email,omitempty"`
	FullName string    `json:"full_name,omitempty"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func toResponses(members []workspace.Member) []MemberResponse {
	out := make([]MemberResponse, len(members))
	for i, m := range members {
		resp := MemberResponse{
			UserID:   m.Membership.UserID.String(),
			Role:     string(m.Membership.Role),
			JoinedAt: m.Membership.JoinedAt,
		}
		if m.Profile != nil {
			resp.Email = m.Profile.Email
			resp.FullName = m.Profile.FullName
		}
		out[i] = resp
	}
	return out
}

func pathIDs(r *http.Request) (workspaceID, userID uuid.UUID, ok bool) {
	workspaceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return workspaceID, userID, true
}

// Members returns the workspace roster.
// GET /startups/{id}/members
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
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

	members, err := h.registry.Roster(r.Context(), identity.UserID, workspaceID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toResponses(members))
}

// Remove removes a member from the workspace.
// DELETE /startups/{id}/members/{userId}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, userID, ok := pathIDs(r)
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.registry.RemoveMember(r.Context(), identity.UserID, workspaceID, userID); err != nil {
		httputil.DomainError(w, err)
		return
	}

	h.logger.Info("member removed", "workspace_id", workspaceID, "user_id", userID, "actor_id", identity.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// RoleRequest represents a role change request.
type RoleRequest struct {
	Role string `json:"role"`
}

// ChangeRole reassigns a member's role.
// PUT /startups/{id}/members/{userId}/role
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, userID, ok := pathIDs(r)
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.registry.ChangeRole(r.Context(), identity.UserID, workspaceID, userID, domain.Role(req.Role)); err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"role": req.Role})
}
