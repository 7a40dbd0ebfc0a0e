package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionPlan gates team size on join.
type SubscriptionPlan string

const (
	PlanFree        SubscriptionPlan = "free"
	PlanPro         SubscriptionPlan = "pro"
	PlanInvestorPro SubscriptionPlan = "investor_pro"
)

// MaxMembers returns the member cap for the plan.
func (p SubscriptionPlan) MaxMembers() int {
	if p == PlanFree {
		return 5
	}
	return 999
}

// Workspace is a single startup's isolated tenancy. It owns its memberships,
// invite code, swipes against it, and ledger entries (cascade delete).
type Workspace struct {
	ID               uuid.UUID
	Name             string
	Description      string
	Industry         string
	Stage            string
	Website          string
	FounderID        uuid.UUID
	InviteCode       string
	SubscriptionPlan SubscriptionPlan
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
