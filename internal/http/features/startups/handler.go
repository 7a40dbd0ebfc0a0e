// Package startups exposes workspace lifecycle endpoints: create, list,
// get, update, invite-code joining and subscription plans.
package startups

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

// Handler handles workspace lifecycle endpoints.
type Handler struct {
	logger   *slog.Logger
	registry *workspace.Registry
}

// NewHandler creates a new startups handler.
func NewHandler(logger *slog.Logger, registry *workspace.Registry) *Handler {
	return &Handler{logger: logger, registry: registry}
}

// WorkspaceResponse represents a workspace in responses. The invite code
// is only exposed through the dedicated invite-code endpoint.
type WorkspaceResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Industry         string    `json:"industry,omitempty"`
	Stage            string    `json:"stage,omitempty"`
	Website          string    `json:"website,omitempty"`
	FounderID        string    `json:"founder_id"`
	SubscriptionPlan string    `json:"subscription_plan"`
	Role             string    `json:"role,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toResponse(w *domain.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:               w.ID.String(),
		Name:             w.Name,
		Description:      w.Description,
		Industry:         w.Industry,
		Stage:            w.Stage,
		Website:          w.Website,
		FounderID:        w.FounderID.String(),
		SubscriptionPlan: string(w.SubscriptionPlan),
		CreatedAt:        w.CreatedAt,
	}
}

// CreateRequest represents a workspace creation request.
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Industry    string `json:"industry"`
	Stage       string `json:"stage"`
	Website     string `json:"website"`
	InitialRole string `json:"initial_role"`
}

// Create provisions a new workspace.
// POST /startups
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ws, err := h.registry.Create(r.Context(), identity.UserID, workspace.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Industry:    req.Industry,
		Stage:       req.Stage,
		Website:     req.Website,
		InitialRole: domain.Role(req.InitialRole),
	})
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	h.logger.Info("workspace created", "workspace_id", ws.ID, "founder_id", identity.UserID)
	httputil.JSON(w, http.StatusCreated, toResponse(ws))
}

// List returns the caller's workspaces with their role in each.
// GET /startups
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.registry.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	out := make([]WorkspaceResponse, len(list))
	for i, wm := range list {
		resp := toResponse(wm.Workspace)
		resp.Role = string(wm.Role)
		out[i] = resp
	}
	httputil.JSON(w, http.StatusOK, out)
}

func workspaceID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// Get returns one workspace to its members.
// GET /startups/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := workspaceID(r)
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	ws, err := h.registry.Get(r.Context(), identity.UserID, id)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toResponse(ws))
}

// UpdateRequest represents a workspace update request.
type UpdateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Industry    string `json:"industry"`
	Stage       string `json:"stage"`
	Website     string `json:"website"`
}

// Update rewrites workspace attributes.
// PUT /startups/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := workspaceID(r)
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ws, err := h.registry.Update(r.Context(), identity.UserID, id, workspace.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Industry:    req.Industry,
		Stage:       req.Stage,
		Website:     req.Website,
	})
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toResponse(ws))
}

// JoinRequest represents an invite redemption request.
type JoinRequest struct {
	InviteCode string `json:"invite_code"`
	Role       string `json:"role"`
}

// Join redeems an invite code.
// POST /startups/join
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.InviteCode == "" {
		httputil.Error(w, http.StatusBadRequest, "invite_code is required")
		return
	}

	ws, m, err := h.registry.Redeem(r.Context(), identity, req.InviteCode, domain.Role(req.Role))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	h.logger.Info("invite redeemed", "workspace_id", ws.ID, "user_id", identity.UserID, "role", m.Role)
	resp := toResponse(ws)
	resp.Role = string(m.Role)
	httputil.JSON(w, http.StatusOK, resp)
}

// InviteCode returns the current invite code.
// GET /startups/{id}/invite-code
func (h *Handler) InviteCode(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := workspaceID(r)
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	code, err := h.registry.InviteCode(r.Context(), identity.UserID, id)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"invite_code": code})
}

// RegenerateInvite replaces the invite code.
// POST /startups/{id}/regenerate-invite
func (h *Handler) RegenerateInvite(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := workspaceID(r)
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	code, err := h.registry.RegenerateInviteCode(r.Context(), identity.UserID, id)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	h.logger.Info("invite code regenerated", "workspace_id", id, "user_id", identity.UserID)
	httputil.JSON(w, http.StatusOK, map[string]string{"invite_code": code})
}

// Subscription returns the current plan.
// GET /startups/{id}/subscription
func (h *Handler) Subscription(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := workspaceID(r)
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	plan, err := h.registry.Plan(r.Context(), identity.UserID, id)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]any{
		"plan":        string(plan),
		"max_members": plan.MaxMembers(),
	})
}

// SubscriptionRequest represents a plan change request.
type SubscriptionRequest struct {
	Plan string `json:"plan"`
}

// UpdateSubscription sets the plan.
// POST /startups/{id}/subscription
func (h *Handler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := workspaceID(r)
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	var req SubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.registry.UpdatePlan(r.Context(), identity.UserID, id, domain.SubscriptionPlan(req.Plan)); err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"plan": req.Plan})
}
