package domain

import (
	"time"

	"github.com/google/uuid"
)

// SwipeDecision is an investor's binary decision about a workspace.
type SwipeDecision string

const (
	SwipeInterested SwipeDecision = "interested"
	SwipePassed     SwipeDecision = "passed"
)

// Valid reports whether d is a known decision.
func (d SwipeDecision) Valid() bool {
	return d == SwipeInterested || d == SwipePassed
}

// Swipe records an investor's current decision about a workspace.
// One row per (investor, workspace); a repeated swipe overwrites the
// decision rather than creating a second row.
type Swipe struct {
	InvestorID  uuid.UUID
	WorkspaceID uuid.UUID
	Action      SwipeDecision
	DecidedAt   time.Time
}
