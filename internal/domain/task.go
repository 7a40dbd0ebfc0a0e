package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is a task's Kanban column.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone:
		return true
	}
	return false
}

// TaskPriority levels, low to urgent.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task is one Kanban card in a workspace.
type Task struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	AssignedTo  *uuid.UUID
	MilestoneID *uuid.UUID
	DueDate     *time.Time
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
