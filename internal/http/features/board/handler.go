// Package board exposes execution tracking: tasks, milestones and the
// analytics rollup.
package board

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
	"github.com/startupops/startupops/internal/execution"
	"github.com/startupops/startupops/internal/http/middleware"
	"github.com/startupops/startupops/internal/httputil"
)

// Handler handles task, milestone and analytics endpoints.
type Handler struct {
	logger  *slog.Logger
	tracker *execution.Tracker
}

// NewHandler creates a new board handler.
func NewHandler(logger *slog.Logger, tracker *execution.Tracker) *Handler {
	return &Handler{logger: logger, tracker: tracker}
}

// TaskRequest represents a task create/update request.
type TaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	MilestoneID *uuid.UUID `json:"milestone_id"`
	DueDate     *time.Time `json:"due_date"`
}

func (req TaskRequest) input() execution.TaskInput {
	return execution.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		AssignedTo:  req.AssignedTo,
		MilestoneID: req.MilestoneID,
		DueDate:     req.DueDate,
	}
}

// TaskResponse represents a task in responses.
type TaskResponse struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspace_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	MilestoneID *uuid.UUID `json:"milestone_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID.String(),
		WorkspaceID: t.WorkspaceID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		AssignedTo:  t.AssignedTo,
		MilestoneID: t.MilestoneID,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
	}
}

func param(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

// CreateTask adds a task to the board.
// POST /startups/{id}/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, ok := param(r, "id")
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.tracker.CreateTask(r.Context(), identity.UserID, workspaceID, req.input())
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, toTaskResponse(task))
}

// ListTasks returns the workspace board.
// GET /startups/{id}/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, ok := param(r, "id")
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	tasks, err := h.tracker.ListTasks(r.Context(), identity.UserID, workspaceID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskResponse(t)
	}
	httputil.JSON(w, http.StatusOK, out)
}

// UpdateTask rewrites a task.
// PUT /tasks/{taskId}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	taskID, ok := param(r, "taskId")
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.tracker.UpdateTask(r.Context(), identity.UserID, taskID, req.input())
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toTaskResponse(task))
}

// StatusRequest represents a task status change request.
type StatusRequest struct {
	Status string `json:"status"`
}

// UpdateTaskStatus moves a task to another column.
// PATCH /tasks/{taskId}/status
func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	taskID, ok := param(r, "taskId")
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.tracker.UpdateTaskStatus(r.Context(), identity.UserID, taskID, domain.TaskStatus(req.Status))
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toTaskResponse(task))
}

// DeleteTask removes a task.
// DELETE /tasks/{taskId}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	taskID, ok := param(r, "taskId")
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.tracker.DeleteTask(r.Context(), identity.UserID, taskID); err != nil {
		httputil.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MilestoneRequest represents a milestone create/update request.
type MilestoneRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TargetDate  *time.Time `json:"target_date"`
	Status      string     `json:"status"`
}

// MilestoneResponse represents a milestone with its progress rollup.
type MilestoneResponse struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspace_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	Status      string     `json:"status"`
	TasksTotal  int        `json:"tasks_total"`
	TasksDone   int        `json:"tasks_done"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toMilestoneResponse(m *domain.Milestone, total, done int) MilestoneResponse {
	return MilestoneResponse{
		ID:          m.ID.String(),
		WorkspaceID: m.WorkspaceID.String(),
		Title:       m.Title,
		Description: m.Description,
		TargetDate:  m.TargetDate,
		Status:      string(m.Status),
		TasksTotal:  total,
		TasksDone:   done,
		CreatedAt:   m.CreatedAt,
	}
}

// CreateMilestone adds a milestone.
// POST /startups/{id}/milestones
func (h *Handler) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, ok := param(r, "id")
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	var req MilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.tracker.CreateMilestone(r.Context(), identity.UserID, workspaceID, execution.MilestoneInput{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
		Status:      domain.MilestoneStatus(req.Status),
	})
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, toMilestoneResponse(m, 0, 0))
}

// ListMilestones returns milestones with task progress.
// GET /startups/{id}/milestones
func (h *Handler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, ok := param(r, "id")
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	list, err := h.tracker.ListMilestones(r.Context(), identity.UserID, workspaceID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}

	out := make([]MilestoneResponse, len(list))
	for i, mp := range list {
		out[i] = toMilestoneResponse(mp.Milestone, mp.TasksTotal, mp.TasksDone)
	}
	httputil.JSON(w, http.StatusOK, out)
}

// UpdateMilestone rewrites a milestone.
// PUT /milestones/{milestoneId}
func (h *Handler) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	milestoneID, ok := param(r, "milestoneId")
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid milestone id")
		return
	}

	var req MilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.tracker.UpdateMilestone(r.Context(), identity.UserID, milestoneID, execution.MilestoneInput{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
		Status:      domain.MilestoneStatus(req.Status),
	})
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toMilestoneResponse(m, 0, 0))
}

// DeleteMilestone removes a milestone, detaching its tasks.
// DELETE /milestones/{milestoneId}
func (h *Handler) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	milestoneID, ok := param(r, "milestoneId")
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid milestone id")
		return
	}

	if err := h.tracker.DeleteMilestone(r.Context(), identity.UserID, milestoneID); err != nil {
		httputil.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Analytics returns the execution rollup.
// GET /startups/{id}/analytics
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workspaceID, ok := param(r, "id")
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	a, err := h.tracker.Analytics(r.Context(), identity.UserID, workspaceID)
	if err != nil {
		httputil.DomainError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, a)
}
