package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's role within one workspace.
type Role string

const (
	RoleFounder  Role = "founder"
	RoleManager  Role = "manager"
	RoleMember   Role = "member"
	RoleInvestor Role = "investor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFounder, RoleManager, RoleMember, RoleInvestor:
		return true
	}
	return false
}

// Membership binds a user to a workspace with a role.
// At most one row exists per (workspace, user) pair.
type Membership struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        Role
	JoinedAt    time.Time
}
