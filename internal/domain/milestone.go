package domain

import (
	"time"

	"github.com/google/uuid"
)

// MilestoneStatus tracks milestone progress.
type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
)

// Milestone groups tasks toward a dated goal.
type Milestone struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Title       string
	Description string
	TargetDate  *time.Time
	Status      MilestoneStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
