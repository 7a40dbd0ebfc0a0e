// Package workspace manages startup workspaces: creation, invite-code
// joining, the member roster and subscription plans.
package workspace

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/authz"
	"github.com/startupops/startupops/internal/domain"
	"github.com/startupops/startupops/internal/repository"
)

// WorkspaceStore is the workspace persistence the registry needs.
type WorkspaceStore interface {
	CreateTx(ctx context.Context, q repository.Querier, w *domain.Workspace) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
	GetByInviteCode(ctx context.Context, code string) (*domain.Workspace, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Workspace, error)
	Update(ctx context.Context, w *domain.Workspace) error
	UpdateInviteCode(ctx context.Context, id uuid.UUID, code string) error
	UpdateSubscriptionPlan(ctx context.Context, id uuid.UUID, plan domain.SubscriptionPlan) error
}

// MembershipStore is the membership persistence the registry needs.
type MembershipStore interface {
	Create(ctx context.Context, m *domain.Membership) error
	CreateTx(ctx context.Context, q repository.Querier, m *domain.Membership) error
	GetByUserAndWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Membership, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error)
	GetByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Membership, error)
	GetByWorkspaceAndRole(ctx context.Context, workspaceID uuid.UUID, role domain.Role) ([]*domain.Membership, error)
	CountTeam(ctx context.Context, workspaceID uuid.UUID) (int, error)
	UpdateRole(ctx context.Context, workspaceID, userID uuid.UUID, role domain.Role) error
	Delete(ctx context.Context, workspaceID, userID uuid.UUID) (int64, error)
	DeleteByRole(ctx context.Context, workspaceID, userID uuid.UUID, role domain.Role) (int64, error)
}

// ProfileStore resolves user profiles for roster enrichment.
type ProfileStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Profile, error)
}

// Registry is the workspace service.
type Registry struct {
	workspaces  WorkspaceStore
	memberships MembershipStore
	profiles    ProfileStore
	authorizer  *authz.Authorizer

	// runTx is swappable so logic around the create transaction can be
	// exercised without a database.
	runTx func(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// NewRegistry creates the workspace registry.
func NewRegistry(db *sql.DB, workspaces WorkspaceStore, memberships MembershipStore, profiles ProfileStore, authorizer *authz.Authorizer) *Registry {
	return &Registry{
		workspaces:  workspaces,
		memberships: memberships,
		profiles:    profiles,
		authorizer:  authorizer,
		runTx: func(ctx context.Context, fn func(tx *sql.Tx) error) error {
			return repository.Tx(ctx, db, fn)
		},
	}
}

// CreateInput carries the attributes for a new workspace.
type CreateInput struct {
	Name        string
	Description string
	Industry    string
	Stage       string
	Website     string
	// InitialRole is the creator's role: founder by default, or investor
	// for a portfolio workspace.
	InitialRole domain.Role
}

// createAttempts bounds retries on invite-code collisions.
const createAttempts = 5

// Create provisions a workspace, its creator's membership and a unique
// invite code in one transaction. An invite-code collision retries the
// whole transaction with a fresh code.
func (r *Registry) Create(ctx context.Context, creatorID uuid.UUID, in CreateInput) (*domain.Workspace, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	role := in.InitialRole
	if role == "" {
		role = domain.RoleFounder
	}
	if role != domain.RoleFounder && role != domain.RoleInvestor {
		return nil, domain.ErrInvalidRole
	}

	plan := domain.PlanFree
	if role == domain.RoleInvestor {
		plan = domain.PlanInvestorPro
	}

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		now := time.Now()
		w := &domain.Workspace{
			ID:               uuid.New(),
			Name:             name,
			Description:      in.Description,
			Industry:         in.Industry,
			Stage:            in.Stage,
			Website:          in.Website,
			FounderID:        creatorID,
			InviteCode:       NewInviteCode(),
			SubscriptionPlan: plan,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		m := &domain.Membership{
			ID:          uuid.New(),
			WorkspaceID: w.ID,
			UserID:      creatorID,
			Role:        role,
			JoinedAt:    now,
		}

		err := r.runTx(ctx, func(tx *sql.Tx) error {
			if err := r.workspaces.CreateTx(ctx, tx, w); err != nil {
				return err
			}
			return r.memberships.CreateTx(ctx, tx, m)
		})
		if err == nil {
			return w, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Get returns a workspace to one of its members.
func (r *Registry) Get(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Workspace, error) {
	if _, err := r.authorizer.RequireMember(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	return r.workspaces.GetByID(ctx, workspaceID)
}

// UpdateInput carries the mutable workspace attributes.
type UpdateInput struct {
	Name        string
	Description string
	Industry    string
	Stage       string
	Website     string
}

// Update rewrites workspace attributes.
func (r *Registry) Update(ctx context.Context, userID, workspaceID uuid.UUID, in UpdateInput) (*domain.Workspace, error) {
	if _, err := r.authorizer.Require(ctx, userID, workspaceID, authz.CapManageWorkspace); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	w, err := r.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	w.Name = name
	w.Description = in.Description
	w.Industry = in.Industry
	w.Stage = in.Stage
	w.Website = in.Website

	if err := r.workspaces.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Redeem joins the caller to the workspace behind an invite code. The
// requested role defaults to member; joining as investor requires the
// platform-level investor designation. A second redemption by the same
// user loses on the (workspace, user) uniqueness constraint.
func (r *Registry) Redeem(ctx context.Context, identity domain.Identity, code string, role domain.Role) (*domain.Workspace, *domain.Membership, error) {
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() || role == domain.RoleFounder {
		return nil, nil, domain.ErrInvalidRole
	}
	if role == domain.RoleInvestor && !identity.Investor {
		return nil, nil, domain.ErrInvestorRequired
	}

	w, err := r.workspaces.GetByInviteCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, nil, err
	}

	// Investors do not count against the team cap.
	if role != domain.RoleInvestor {
		teamSize, err := r.memberships.CountTeam(ctx, w.ID)
		if err != nil {
			return nil, nil, err
		}
		if teamSize >= w.SubscriptionPlan.MaxMembers() {
			return nil, nil, domain.ErrTeamLimitReached
		}
	}

	m := &domain.Membership{
		ID:          uuid.New(),
		WorkspaceID: w.ID,
		UserID:      identity.UserID,
		Role:        role,
		JoinedAt:    time.Now(),
	}
	if err := r.memberships.Create(ctx, m); err != nil {
		return nil, nil, err
	}
	return w, m, nil
}

// InviteCode returns the current invite code to a holder of the
// invite-code capability.
func (r *Registry) InviteCode(ctx context.Context, userID, workspaceID uuid.UUID) (string, error) {
	if _, err := r.authorizer.Require(ctx, userID, workspaceID, authz.CapManageInviteCode); err != nil {
		return "", err
	}
	w, err := r.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	return w.InviteCode, nil
}

// RegenerateInviteCode replaces the invite code. The old code stops
// resolving immediately; pending invitations carrying it become dead.
func (r *Registry) RegenerateInviteCode(ctx context.Context, userID, workspaceID uuid.UUID) (string, error) {
	if _, err := r.authorizer.Require(ctx, userID, workspaceID, authz.CapManageInviteCode); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		code := NewInviteCode()
		err := r.workspaces.UpdateInviteCode(ctx, workspaceID, code)
		if err == nil {
			return code, nil
		}
		if !repository.IsUniqueViolation(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// WorkspaceMembership pairs a workspace with the user's role in it.
type WorkspaceMembership struct {
	Workspace *domain.Workspace
	Role      domain.Role
	JoinedAt  time.Time
}

// ListForUser returns the caller's workspaces with their role in each,
// oldest membership first.
func (r *Registry) ListForUser(ctx context.Context, userID uuid.UUID) ([]WorkspaceMembership, error) {
	memberships, err := r.memberships.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(memberships))
	for i, m := range memberships {
		ids[i] = m.WorkspaceID
	}
	workspaces, err := r.workspaces.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]WorkspaceMembership, 0, len(memberships))
	for _, m := range memberships {
		w, ok := workspaces[m.WorkspaceID]
		if !ok {
			continue
		}
		out = append(out, WorkspaceMembership{Workspace: w, Role: m.Role, JoinedAt: m.JoinedAt})
	}
	return out, nil
}

// Member pairs a membership with the member's profile.
type Member struct {
	Membership *domain.Membership
	Profile    *domain.Profile
}

// Roster returns the workspace's members with profile details, in join
// order.
func (r *Registry) Roster(ctx context.Context, userID, workspaceID uuid.UUID) ([]Member, error) {
	if _, err := r.authorizer.Require(ctx, userID, workspaceID, authz.CapViewTeam); err != nil {
		return nil, err
	}
	memberships, err := r.memberships.GetByWorkspaceID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return r.enrich(ctx, memberships)
}

func (r *Registry) enrich(ctx context.Context, memberships []*domain.Membership) ([]Member, error) {
	ids := make([]uuid.UUID, len(memberships))
	for i, m := range memberships {
		ids[i] = m.UserID
	}
	profiles, err := r.profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	members := make([]Member, len(memberships))
	for i, m := range memberships {
		members[i] = Member{Membership: m, Profile: profiles[m.UserID]}
	}
	return members, nil
}

// RemoveMember removes a member from the workspace. The founder cannot
// be removed. Removing someone who is not a member is a no-op.
func (r *Registry) RemoveMember(ctx context.Context, actorID, workspaceID, targetID uuid.UUID) error {
	if _, err := r.authorizer.Require(ctx, actorID, workspaceID, authz.CapManageMembers); err != nil {
		return err
	}

	target, err := r.memberships.GetByUserAndWorkspace(ctx, targetID, workspaceID)
	if errors.Is(err, domain.ErrMemberNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if target.Role == domain.RoleFounder {
		return domain.ErrFounderSelfRemoval
	}

	_, err = r.memberships.Delete(ctx, workspaceID, targetID)
	return err
}

// ChangeRole reassigns a member's role. The founder's role is fixed, and
// nobody can be promoted to founder.
func (r *Registry) ChangeRole(ctx context.Context, actorID, workspaceID, targetID uuid.UUID, role domain.Role) error {
	if _, err := r.authorizer.Require(ctx, actorID, workspaceID, authz.CapManageMembers); err != nil {
		return err
	}
	if !role.Valid() || role == domain.RoleFounder {
		return domain.ErrInvalidRole
	}

	target, err := r.memberships.GetByUserAndWorkspace(ctx, targetID, workspaceID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleFounder {
		return domain.ErrFounderRoleChange
	}

	return r.memberships.UpdateRole(ctx, workspaceID, targetID, role)
}

// Plan returns the workspace's subscription plan to any member.
func (r *Registry) Plan(ctx context.Context, userID, workspaceID uuid.UUID) (domain.SubscriptionPlan, error) {
	if _, err := r.authorizer.RequireMember(ctx, userID, workspaceID); err != nil {
		return "", err
	}
	w, err := r.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	return w.SubscriptionPlan, nil
}

// UpdatePlan sets the subscription plan.
func (r *Registry) UpdatePlan(ctx context.Context, userID, workspaceID uuid.UUID, plan domain.SubscriptionPlan) error {
	if _, err := r.authorizer.Require(ctx, userID, workspaceID, authz.CapManageWorkspace); err != nil {
		return err
	}
	switch plan {
	case domain.PlanFree, domain.PlanPro, domain.PlanInvestorPro:
	default:
		return domain.ErrInvalidPlan
	}
	return r.workspaces.UpdateSubscriptionPlan(ctx, workspaceID, plan)
}

// InvestorView returns the workspace for the founder-side preview of
// what investors see. Requires the analytics capability.
func (r *Registry) InvestorView(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Workspace, error) {
	if _, err := r.authorizer.Require(ctx, userID, workspaceID, authz.CapViewAnalytics); err != nil {
		return nil, err
	}
	return r.workspaces.GetByID(ctx, workspaceID)
}

// Investors lists the workspace's investor members with profiles.
func (r *Registry) Investors(ctx context.Context, actorID, workspaceID uuid.UUID) ([]Member, error) {
	if _, err := r.authorizer.Require(ctx, actorID, workspaceID, authz.CapInvestorPortal); err != nil {
		return nil, err
	}
	memberships, err := r.memberships.GetByWorkspaceAndRole(ctx, workspaceID, domain.RoleInvestor)
	if err != nil {
		return nil, err
	}
	return r.enrich(ctx, memberships)
}

// InviteInvestor attaches an existing platform user as an investor member
// by email.
func (r *Registry) InviteInvestor(ctx context.Context, actorID, workspaceID uuid.UUID, email string) (*domain.Membership, error) {
	if _, err := r.authorizer.Require(ctx, actorID, workspaceID, authz.CapInvestorPortal); err != nil {
		return nil, err
	}

	profile, err := r.profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}

	m := &domain.Membership{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      profile.ID,
		Role:        domain.RoleInvestor,
		JoinedAt:    time.Now(),
	}
	if err := r.memberships.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RevokeInvestor detaches an investor member. Revoking a user who is not
// an investor member is a no-op.
func (r *Registry) RevokeInvestor(ctx context.Context, actorID, workspaceID, userID uuid.UUID) error {
	if _, err := r.authorizer.Require(ctx, actorID, workspaceID, authz.CapInvestorPortal); err != nil {
		return err
	}
	_, err := r.memberships.DeleteByRole(ctx, workspaceID, userID, domain.RoleInvestor)
	return err
}
