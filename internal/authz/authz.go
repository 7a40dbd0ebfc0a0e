// Package authz derives capability sets from workspace roles. The table is
// static and immutable; every mutating operation elsewhere consults it before
// touching state.
package authz

import (
	"context"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
)

// Capability is one permission a role grants inside a workspace.
type Capability string

const (
	// CapManageWorkspace covers workspace settings and billing.
	CapManageWorkspace Capability = "manage_workspace"
	// CapManageTasks covers creating, editing and deleting tasks and milestones.
	CapManageTasks Capability = "manage_tasks"
	// CapUpdateOwnTaskStatus lets a member move tasks assigned to them.
	CapUpdateOwnTaskStatus Capability = "update_own_task_status"
	// CapViewAnalytics covers analytics and AI insight views.
	CapViewAnalytics Capability = "view_analytics"
	// CapGeneratePitch covers pitch generation.
	CapGeneratePitch Capability = "generate_pitch"
	// CapViewTeam covers the team roster.
	CapViewTeam Capability = "view_team"
	// CapManageInviteCode covers viewing and regenerating the invite code.
	CapManageInviteCode Capability = "manage_invite_code"
	// CapManageMembers covers removing members and changing roles.
	CapManageMembers Capability = "manage_members"
	// CapBrowseStartups covers the investor browse/swipe flow.
	CapBrowseStartups Capability = "browse_startups"
	// CapManageOwnInvestments covers an investor's own investment records.
	CapManageOwnInvestments Capability = "manage_own_investments"
	// CapInvestorPortal covers the founder-facing investor portal.
	CapInvestorPortal Capability = "investor_portal"
)

// Capabilities is an immutable capability set.
type Capabilities map[Capability]bool

// Has reports whether the set contains c.
func (s Capabilities) Has(c Capability) bool { return s[c] }

var permissions = map[domain.Role]Capabilities{
	domain.RoleFounder: {
		CapManageWorkspace:     true,
		CapManageTasks:         true,
		CapUpdateOwnTaskStatus: true,
		CapViewAnalytics:       true,
		CapGeneratePitch:       true,
		CapViewTeam:            true,
		CapManageInviteCode:    true,
		CapManageMembers:       true,
		CapInvestorPortal:      true,
	},
	domain.RoleManager: {
		CapManageTasks:         true,
		CapUpdateOwnTaskStatus: true,
		CapViewAnalytics:       true,
		CapViewTeam:            true,
	},
	domain.RoleMember: {
		CapUpdateOwnTaskStatus: true,
		CapViewTeam:            true,
	},
	domain.RoleInvestor: {
		CapBrowseStartups:       true,
		CapManageOwnInvestments: true,
	},
}

// Permissions returns the capability set for role. Unknown roles get an
// empty set. The returned map is shared; callers must not mutate it.
func Permissions(role domain.Role) Capabilities {
	return permissions[role]
}

// MembershipSource resolves a user's membership in a workspace.
type MembershipSource interface {
	GetByUserAndWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Membership, error)
}

// Authorizer guards operations by resolving the actor's role in the target
// workspace and checking the derived capability set.
type Authorizer struct {
	memberships MembershipSource
}

// NewAuthorizer creates an authorizer backed by the given membership source.
func NewAuthorizer(memberships MembershipSource) *Authorizer {
	return &Authorizer{memberships: memberships}
}

// Require returns the actor's membership when it grants c in the workspace.
// A missing membership or capability yields domain.ErrNotMember /
// domain.ErrForbidden; the caller must not expose which capability was missing.
func (a *Authorizer) Require(ctx context.Context, userID, workspaceID uuid.UUID, c Capability) (*domain.Membership, error) {
	m, err := a.memberships.GetByUserAndWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, domain.ErrNotMember
	}
	if !Permissions(m.Role).Has(c) {
		return nil, domain.ErrForbidden
	}
	return m, nil
}

// RequireMember returns the actor's membership in the workspace regardless of
// role, for operations open to any member.
func (a *Authorizer) RequireMember(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Membership, error) {
	m, err := a.memberships.GetByUserAndWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, domain.ErrNotMember
	}
	return m, nil
}
