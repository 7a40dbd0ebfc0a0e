// Package account exposes the profile mirror of the identity provider:
// token verification, the current profile, and display-name updates.
package account

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
	"github.com/startupops/startupops/internal/http/middleware"
	"github.com/startupops/startupops/internal/httputil"
)

// Profiles is the profile persistence the handler needs.
type Profiles interface {
	Upsert(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	UpdateName(ctx context.Context, id uuid.UUID, fullName string) error
}

// Handler handles account endpoints.
type Handler struct {
	logger   *slog.Logger
	profiles Profiles
}

// NewHandler creates a new account handler.
func NewHandler(logger *slog.Logger, profiles Profiles) *Handler {
	return &Handler{logger: logger, profiles: profiles}
}

// ProfileResponse represents the profile response.
type ProfileResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Investor bool   `json:"investor"`
}

// Verify syncs the verified token identity into the profile mirror.
// POST /auth/verify
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	now := time.Now()
	profile := &domain.Profile{
		ID:        identity.UserID,
		Email:     identity.Email,
		FullName:  identity.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.profiles.Upsert(r.Context(), profile); err != nil {
		h.logger.Error("profile upsert failed", "error", err, "user_id", identity.UserID)
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ProfileResponse{
		ID:       profile.ID.String(),
		Email:    profile.Email,
		FullName: profile.FullName,
		Investor: identity.Investor,
	})
}

// Me returns the current profile.
// GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.profiles.GetByID(r.Context(), identity.UserID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ProfileResponse{
		ID:       profile.ID.String(),
		Email:    profile.Email,
		FullName: profile.FullName,
		Investor: identity.Investor,
	})
}

// UpdateRequest represents a profile update request.
type UpdateRequest struct {
	FullName string `json:"full_name"`
}

// UpdateProfile updates the display name.
// PUT /auth/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		httputil.Error(w, http.StatusBadRequest, "full_name is required")
		return
	}

	if err := h.profiles.UpdateName(r.Context(), identity.UserID, name); err != nil {
		httputil.DomainError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"full_name": name})
}
