// Package execution tracks a workspace's operational work: Kanban tasks,
// milestones with task progress, and the analytics rollup over both.
package execution

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/authz"
	"github.com/startupops/startupops/internal/domain"
)

// TaskStore is the task persistence the tracker needs.
type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Task, error)
	CountByMilestone(ctx context.Context, milestoneID uuid.UUID) (total, done int, err error)
	Update(ctx context.Context, t *domain.Task) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	DetachMilestone(ctx context.Context, milestoneID uuid.UUID) error
}

// MilestoneStore is the milestone persistence the tracker needs.
type MilestoneStore interface {
	Create(ctx context.Context, m *domain.Milestone) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Milestone, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Milestone, error)
	Update(ctx context.Context, m *domain.Milestone) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TeamCounter counts a workspace's non-investor members.
type TeamCounter interface {
	CountTeam(ctx context.Context, workspaceID uuid.UUID) (int, error)
}

// Tracker is the execution tracking service.
type Tracker struct {
	tasks      TaskStore
	milestones MilestoneStore
	team       TeamCounter
	authorizer *authz.Authorizer

	now func() time.Time
}

// NewTracker creates the execution tracker.
func NewTracker(tasks TaskStore, milestones MilestoneStore, team TeamCounter, authorizer *authz.Authorizer) *Tracker {
	return &Tracker{
		tasks:      tasks,
		milestones: milestones,
		team:       team,
		authorizer: authorizer,
		now:        time.Now,
	}
}

// TaskInput carries task attributes for create and update.
type TaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	AssignedTo  *uuid.UUID
	MilestoneID *uuid.UUID
	DueDate     *time.Time
}

func (in *TaskInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.ErrNameRequired
	}
	if in.Status == "" {
		in.Status = domain.TaskTodo
	}
	if !in.Status.Valid() {
		return domain.ErrInvalidTaskStatus
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !in.Priority.Valid() {
		return domain.ErrInvalidTaskPriority
	}
	return nil
}

// checkMilestone verifies a referenced milestone belongs to the workspace.
func (t *Tracker) checkMilestone(ctx context.Context, workspaceID uuid.UUID, milestoneID *uuid.UUID) error {
	if milestoneID == nil {
		return nil
	}
	m, err := t.milestones.GetByID(ctx, *milestoneID)
	if err != nil {
		return err
	}
	if m.WorkspaceID != workspaceID {
		return domain.ErrMilestoneNotFound
	}
	return nil
}

// CreateTask adds a task to the workspace board.
func (t *Tracker) CreateTask(ctx context.Context, actorID, workspaceID uuid.UUID, in TaskInput) (*domain.Task, error) {
	if _, err := t.authorizer.Require(ctx, actorID, workspaceID, authz.CapManageTasks); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := t.checkMilestone(ctx, workspaceID, in.MilestoneID); err != nil {
		return nil, err
	}

	now := t.now()
	task := &domain.Task{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssignedTo:  in.AssignedTo,
		MilestoneID: in.MilestoneID,
		DueDate:     in.DueDate,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns the workspace board to any member.
func (t *Tracker) ListTasks(ctx context.Context, actorID, workspaceID uuid.UUID) ([]*domain.Task, error) {
	if _, err := t.authorizer.RequireMember(ctx, actorID, workspaceID); err != nil {
		return nil, err
	}
	return t.tasks.ListByWorkspace(ctx, workspaceID)
}

// UpdateTask rewrites a task.
func (t *Tracker) UpdateTask(ctx context.Context, actorID, taskID uuid.UUID, in TaskInput) (*domain.Task, error) {
	task, err := t.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := t.authorizer.Require(ctx, actorID, task.WorkspaceID, authz.CapManageTasks); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := t.checkMilestone(ctx, task.WorkspaceID, in.MilestoneID); err != nil {
		return nil, err
	}

	task.Title = strings.TrimSpace(in.Title)
	task.Description = in.Description
	task.Status = in.Status
	task.Priority = in.Priority
	task.AssignedTo = in.AssignedTo
	task.MilestoneID = in.MilestoneID
	task.DueDate = in.DueDate
	task.UpdatedAt = t.now()

	if err := t.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTaskStatus moves a task to another column. Task managers can move
// any task; other members only tasks assigned to them.
func (t *Tracker) UpdateTaskStatus(ctx context.Context, actorID, taskID uuid.UUID, status domain.TaskStatus) (*domain.Task, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidTaskStatus
	}

	task, err := t.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	m, err := t.authorizer.RequireMember(ctx, actorID, task.WorkspaceID)
	if err != nil {
		return nil, err
	}

	caps := authz.Permissions(m.Role)
	assignee := task.AssignedTo != nil && *task.AssignedTo == actorID
	if !caps.Has(authz.CapManageTasks) && !(assignee && caps.Has(authz.CapUpdateOwnTaskStatus)) {
		return nil, domain.ErrForbidden
	}

	if err := t.tasks.UpdateStatus(ctx, taskID, status); err != nil {
		return nil, err
	}
	task.Status = status
	return task, nil
}

// DeleteTask removes a task.
func (t *Tracker) DeleteTask(ctx context.Context, actorID, taskID uuid.UUID) error {
	task, err := t.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := t.authorizer.Require(ctx, actorID, task.WorkspaceID, authz.CapManageTasks); err != nil {
		return err
	}
	return t.tasks.Delete(ctx, taskID)
}

// MilestoneInput carries milestone attributes for create and update.
type MilestoneInput struct {
	Title       string
	Description string
	TargetDate  *time.Time
	Status      domain.MilestoneStatus
}

func (in *MilestoneInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.ErrNameRequired
	}
	if in.Status == "" {
		in.Status = domain.MilestonePending
	}
	switch in.Status {
	case domain.MilestonePending, domain.MilestoneInProgress, domain.MilestoneCompleted:
		return nil
	}
	return domain.ErrInvalidMilestoneStatus
}

// CreateMilestone adds a milestone to the workspace.
func (t *Tracker) CreateMilestone(ctx context.Context, actorID, workspaceID uuid.UUID, in MilestoneInput) (*domain.Milestone, error) {
	if _, err := t.authorizer.Require(ctx, actorID, workspaceID, authz.CapManageTasks); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := t.now()
	m := &domain.Milestone{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		TargetDate:  in.TargetDate,
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.milestones.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// MilestoneProgress is a milestone with its task completion rollup.
type MilestoneProgress struct {
	Milestone  *domain.Milestone
	TasksTotal int
	TasksDone  int
}

// ListMilestones returns the workspace's milestones with task progress.
func (t *Tracker) ListMilestones(ctx context.Context, actorID, workspaceID uuid.UUID) ([]MilestoneProgress, error) {
	if _, err := t.authorizer.RequireMember(ctx, actorID, workspaceID); err != nil {
		return nil, err
	}

	milestones, err := t.milestones.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	out := make([]MilestoneProgress, len(milestones))
	for i, m := range milestones {
		total, done, err := t.tasks.CountByMilestone(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		out[i] = MilestoneProgress{Milestone: m, TasksTotal: total, TasksDone: done}
	}
	return out, nil
}

// UpdateMilestone rewrites a milestone.
func (t *Tracker) UpdateMilestone(ctx context.Context, actorID, milestoneID uuid.UUID, in MilestoneInput) (*domain.Milestone, error) {
	m, err := t.milestones.GetByID(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if _, err := t.authorizer.Require(ctx, actorID, m.WorkspaceID, authz.CapManageTasks); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	m.Title = strings.TrimSpace(in.Title)
	m.Description = in.Description
	m.TargetDate = in.TargetDate
	m.Status = in.Status
	m.UpdatedAt = t.now()

	if err := t.milestones.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMilestone removes a milestone, detaching its tasks first so they
// stay on the board.
func (t *Tracker) DeleteMilestone(ctx context.Context, actorID, milestoneID uuid.UUID) error {
	m, err := t.milestones.GetByID(ctx, milestoneID)
	if err != nil {
		return err
	}
	if _, err := t.authorizer.Require(ctx, actorID, m.WorkspaceID, authz.CapManageTasks); err != nil {
		return err
	}
	if err := t.tasks.DetachMilestone(ctx, milestoneID); err != nil {
		return err
	}
	return t.milestones.Delete(ctx, milestoneID)
}

// Analytics is the workspace execution rollup.
type Analytics struct {
	TasksByStatus       map[domain.TaskStatus]int   `json:"tasks_by_status"`
	TasksByPriority     map[domain.TaskPriority]int `json:"tasks_by_priority"`
	TasksTotal          int                         `json:"tasks_total"`
	TaskCompletionRate  float64                     `json:"task_completion_rate"`
	MilestonesTotal     int                         `json:"milestones_total"`
	MilestonesCompleted int                         `json:"milestones_completed"`
	TeamSize            int                         `json:"team_size"`
}

// Analytics computes the execution rollup for analytics viewers.
func (t *Tracker) Analytics(ctx context.Context, actorID, workspaceID uuid.UUID) (*Analytics, error) {
	if _, err := t.authorizer.Require(ctx, actorID, workspaceID, authz.CapViewAnalytics); err != nil {
		return nil, err
	}

	tasks, err := t.tasks.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	milestones, err := t.milestones.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	teamSize, err := t.team.CountTeam(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	a := &Analytics{
		TasksByStatus:   map[domain.TaskStatus]int{},
		TasksByPriority: map[domain.TaskPriority]int{},
		TasksTotal:      len(tasks),
		MilestonesTotal: len(milestones),
		TeamSize:        teamSize,
	}
	done := 0
	for _, task := range tasks {
		a.TasksByStatus[task.Status]++
		a.TasksByPriority[task.Priority]++
		if task.Status == domain.TaskDone {
			done++
		}
	}
	if len(tasks) > 0 {
		a.TaskCompletionRate = float64(done) / float64(len(tasks))
	}
	for _, m := range milestones {
		if m.Status == domain.MilestoneCompleted {
			a.MilestonesCompleted++
		}
	}
	return a, nil
}
