package workspace

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/startupops/startupops/internal/authz"
	"github.com/startupops/startupops/internal/domain"
	"github.com/startupops/startupops/internal/repository"
)

type fakeWorkspaceStore struct {
	byID map[uuid.UUID]*domain.Workspace
	// failCreates makes the first n CreateTx calls fail with a unique
	// violation, simulating invite-code collisions.
	failCreates int
	createCalls int
}

func newFakeWorkspaceStore() *fakeWorkspaceStore {
	return &fakeWorkspaceStore{byID: map[uuid.UUID]*domain.Workspace{}}
}

func uniqueViolation() error {
	return &pq.Error{Code: "23505"}
}

func (f *fakeWorkspaceStore) CreateTx(_ context.Context, _ repository.Querier, w *domain.Workspace) error {
	f.createCalls++
	if f.createCalls <= f.failCreates {
		return uniqueViolation()
	}
	cp := *w
	f.byID[w.ID] = &cp
	return nil
}

func (f *fakeWorkspaceStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Workspace, error) {
	w, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWorkspaceStore) GetByInviteCode(_ context.Context, code string) (*domain.Workspace, error) {
	for _, w := range f.byID {
		if w.InviteCode == code {
			cp := *w
			return &cp, nil
		}
	}
	return nil, domain.ErrInviteCodeNotFound
}

func (f *fakeWorkspaceStore) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Workspace, error) {
	out := map[uuid.UUID]*domain.Workspace{}
	for _, id := range ids {
		if w, ok := f.byID[id]; ok {
			cp := *w
			out[id] = &cp
		}
	}
	return out, nil
}

func (f *fakeWorkspaceStore) Update(_ context.Context, w *domain.Workspace) error {
	if _, ok := f.byID[w.ID]; !ok {
		return domain.ErrWorkspaceNotFound
	}
	cp := *w
	f.byID[w.ID] = &cp
	return nil
}

func (f *fakeWorkspaceStore) UpdateInviteCode(_ context.Context, id uuid.UUID, code string) error {
	w, ok := f.byID[id]
	if !ok {
		return domain.ErrWorkspaceNotFound
	}
	w.InviteCode = code
	return nil
}

func (f *fakeWorkspaceStore) UpdateSubscriptionPlan(_ context.Context, id uuid.UUID, plan domain.SubscriptionPlan) error {
	w, ok := f.byID[id]
	if !ok {
		return domain.ErrWorkspaceNotFound
	}
	w.SubscriptionPlan = plan
	return nil
}

type pairKey struct {
	workspaceID uuid.UUID
	userID      uuid.UUID
}

type fakeMembershipStore struct {
	byPair map[pairKey]*domain.Membership
	order  []pairKey
}

func newFakeMembershipStore() *fakeMembershipStore {
	return &fakeMembershipStore{byPair: map[pairKey]*domain.Membership{}}
}

func (f *fakeMembershipStore) Create(_ context.Context, m *domain.Membership) error {
	key := pairKey{m.WorkspaceID, m.UserID}
	if _, ok := f.byPair[key]; ok {
		return domain.ErrAlreadyMember
	}
	cp := *m
	f.byPair[key] = &cp
	f.order = append(f.order, key)
	return nil
}

func (f *fakeMembershipStore) CreateTx(ctx context.Context, _ repository.Querier, m *domain.Membership) error {
	return f.Create(ctx, m)
}

func (f *fakeMembershipStore) GetByUserAndWorkspace(_ context.Context, userID, workspaceID uuid.UUID) (*domain.Membership, error) {
	m, ok := f.byPair[pairKey{workspaceID, userID}]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMembershipStore) GetByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Membership, error) {
	var out []*domain.Membership
	for _, key := range f.order {
		if key.userID != userID {
			continue
		}
		if m, ok := f.byPair[key]; ok {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMembershipStore) GetByWorkspaceID(_ context.Context, workspaceID uuid.UUID) ([]*domain.Membership, error) {
	var out []*domain.Membership
	for _, key := range f.order {
		if key.workspaceID != workspaceID {
			continue
		}
		if m, ok := f.byPair[key]; ok {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMembershipStore) GetByWorkspaceAndRole(ctx context.Context, workspaceID uuid.UUID, role domain.Role) ([]*domain.Membership, error) {
	all, _ := f.GetByWorkspaceID(ctx, workspaceID)
	var out []*domain.Membership
	for _, m := range all {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMembershipStore) CountTeam(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	all, _ := f.GetByWorkspaceID(ctx, workspaceID)
	n := 0
	for _, m := range all {
		if m.Role != domain.RoleInvestor {
			n++
		}
	}
	return n, nil
}

func (f *fakeMembershipStore) UpdateRole(_ context.Context, workspaceID, userID uuid.UUID, role domain.Role) error {
	m, ok := f.byPair[pairKey{workspaceID, userID}]
	if !ok {
		return domain.ErrMemberNotFound
	}
	m.Role = role
	return nil
}

func (f *fakeMembershipStore) Delete(_ context.Context, workspaceID, userID uuid.UUID) (int64, error) {
	key := pairKey{workspaceID, userID}
	if _, ok := f.byPair[key]; !ok {
		return 0, nil
	}
	delete(f.byPair, key)
	return 1, nil
}

func (f *fakeMembershipStore) DeleteByRole(_ context.Context, workspaceID, userID uuid.UUID, role domain.Role) (int64, error) {
	key := pairKey{workspaceID, userID}
	m, ok := f.byPair[key]
	if !ok || m.Role != role {
		return 0, nil
	}
	delete(f.byPair, key)
	return 1, nil
}

type fakeProfileStore struct {
	byID map[uuid.UUID]*domain.Profile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{byID: map[uuid.UUID]*domain.Profile{}}
}

func (f *fakeProfileStore) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	for _, p := range f.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (f *fakeProfileStore) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	out := map[uuid.UUID]*domain.Profile{}
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

type env struct {
	registry    *Registry
	workspaces  *fakeWorkspaceStore
	memberships *fakeMembershipStore
	profiles    *fakeProfileStore
}

func newEnv() *env {
	workspaces := newFakeWorkspaceStore()
	memberships := newFakeMembershipStore()
	profiles := newFakeProfileStore()

	registry := NewRegistry(nil, workspaces, memberships, profiles, authz.NewAuthorizer(memberships))
	registry.runTx = func(_ context.Context, fn func(tx *sql.Tx) error) error {
		return fn(nil)
	}

	return &env{registry: registry, workspaces: workspaces, memberships: memberships, profiles: profiles}
}

func (e *env) mustCreate(t *testing.T, founderID uuid.UUID, name string) *domain.Workspace {
	t.Helper()
	w, err := e.registry.Create(context.Background(), founderID, CreateInput{Name: name})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	return w
}

func TestCreateRequiresName(t *testing.T) {
	e := newEnv()
	_, err := e.registry.Create(context.Background(), uuid.New(), CreateInput{Name: "   "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateProvisionsFounderAndInviteCode(t *testing.T) {
	e := newEnv()
	founderID := uuid.New()

	w := e.mustCreate(t, founderID, "Acme")

	if len(w.InviteCode) != 8 {
		t.Errorf("invite code %q, want 8 characters", w.InviteCode)
	}
	if w.SubscriptionPlan != domain.PlanFree {
		t.Errorf("plan = %q, want free", w.SubscriptionPlan)
	}
	m, err := e.memberships.GetByUserAndWorkspace(context.Background(), founderID, w.ID)
	if err != nil {
		t.Fatalf("founder membership: %v", err)
	}
	if m.Role != domain.RoleFounder {
		t.Errorf("founder role = %q", m.Role)
	}
}

func TestCreateRetriesOnInviteCodeCollision(t *testing.T) {
	e := newEnv()
	e.workspaces.failCreates = 2

	w := e.mustCreate(t, uuid.New(), "Acme")

	if e.workspaces.createCalls != 3 {
		t.Errorf("create attempts = %d, want 3", e.workspaces.createCalls)
	}
	if _, ok := e.workspaces.byID[w.ID]; !ok {
		t.Error("workspace not stored after retry")
	}
}

func TestCreateInvestorPortfolio(t *testing.T) {
	e := newEnv()
	investorID := uuid.New()

	w, err := e.registry.Create(context.Background(), investorID, CreateInput{
		Name:        "Fund I",
		InitialRole: domain.RoleInvestor,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.SubscriptionPlan != domain.PlanInvestorPro {
		t.Errorf("plan = %q, want investor_pro", w.SubscriptionPlan)
	}
	m, _ := e.memberships.GetByUserAndWorkspace(context.Background(), investorID, w.ID)
	if m == nil || m.Role != domain.RoleInvestor {
		t.Errorf("creator membership = %+v, want investor role", m)
	}
}

func TestRedeemUnknownCode(t *testing.T) {
	e := newEnv()
	_, _, err := e.registry.Redeem(context.Background(), domain.Identity{UserID: uuid.New()}, "NOPE1234", "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestRedeemDefaultsToMember(t *testing.T) {
	e := newEnv()
	w := e.mustCreate(t, uuid.New(), "Acme")
	userID := uuid.New()

	got, m, err := e.registry.Redeem(context.Background(), domain.Identity{UserID: userID}, w.InviteCode, "")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if got.ID != w.ID {
		t.Errorf("workspace = %s, want %s", got.ID, w.ID)
	}
	if m.Role != domain.RoleMember {
		t.Errorf("role = %q, want member", m.Role)
	}
}

func TestRedeemTwiceConflicts(t *testing.T) {
	e := newEnv()
	w := e.mustCreate(t, uuid.New(), "Acme")
	identity := domain.Identity{UserID: uuid.New()}

	if _, _, err := e.registry.Redeem(context.Background(), identity, w.InviteCode, ""); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	_, _, err := e.registry.Redeem(context.Background(), identity, w.InviteCode, "")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second redeem err = %v, want conflict", err)
	}

	got, _ := e.memberships.GetByWorkspaceID(context.Background(), w.ID)
	if len(got) != 2 { // founder + one member
		t.Errorf("memberships = %d, want 2", len(got))
	}
}

func TestRedeemInvestorRequiresDesignation(t *testing.T) {
	e := newEnv()
	w := e.mustCreate(t, uuid.New(), "Acme")

	_, _, err := e.registry.Redeem(context.Background(), domain.Identity{UserID: uuid.New()}, w.InviteCode, domain.RoleInvestor)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}

	_, _, err = e.registry.Redeem(context.Background(), domain.Identity{UserID: uuid.New(), Investor: true}, w.InviteCode, domain.RoleInvestor)
	if err != nil {
		t.Fatalf("investor redeem: %v", err)
	}
}

func TestRedeemRejectsFounderRole(t *testing.T) {
	e := newEnv()
	w := e.mustCreate(t, uuid.New(), "Acme")

	_, _, err := e.registry.Redeem(context.Background(), domain.Identity{UserID: uuid.New()}, w.InviteCode, domain.RoleFounder)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestRedeemEnforcesTeamLimit(t *testing.T) {
	e := newEnv()
	w := e.mustCreate(t, uuid.New(), "Acme") // free plan caps at 5

	for i := 0; i < 4; i++ {
		if _, _, err := e.registry.Redeem(context.Background(), domain.Identity{UserID: uuid.New()}, w.InviteCode, ""); err != nil {
			t.Fatalf("redeem %d: %v", i, err)
		}
	}

	_, _, err := e.registry.Redeem(context.Background(), domain.Identity{UserID: uuid.New()}, w.InviteCode, "")
	if !errors.Is(err, domain.ErrTeamLimitReached) {
		t.Fatalf("sixth member err = %v, want team limit", err)
	}

	// Investors are exempt from the cap.
	_, _, err = e.registry.Redeem(context.Background(), domain.Identity{UserID: uuid.New(), Investor: true}, w.InviteCode, domain.RoleInvestor)
	if err != nil {
		t.Fatalf("investor past cap: %v", err)
	}
}

func TestRegenerateInvalidatesOldCode(t *testing.T) {
	e := newEnv()
	founderID := uuid.New()
	w := e.mustCreate(t, founderID, "Acme")
	oldCode := w.InviteCode

	newCode, err := e.registry.RegenerateInviteCode(context.Background(), founderID, w.ID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if newCode == oldCode {
		t.Error("code did not change")
	}

	_, _, err = e.registry.Redeem(context.Background(), domain.Identity{UserID: uuid.New()}, oldCode, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("old code err = %v, want not found", err)
	}
	if _, _, err := e.registry.Redeem(context.Background(), domain.Identity{UserID: uuid.New()}, newCode, ""); err != nil {
		t.Fatalf("new code: %v", err)
	}
}

func TestRegenerateRequiresCapability(t *testing.T) {
	e := newEnv()
	w := e.mustCreate(t, uuid.New(), "Acme")
	memberID := uuid.New()
	if _, _, err := e.registry.Redeem(context.Background(), domain.Identity{UserID: memberID}, w.InviteCode, ""); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	_, err := e.registry.RegenerateInviteCode(context.Background(), memberID, w.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	_, err = e.registry.RegenerateInviteCode(context.Background(), uuid.New(), w.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("outsider err = %v, want forbidden", err)
	}
}

func TestListForUserPreservesJoinOrder(t *testing.T) {
	e := newEnv()
	userID := uuid.New()

	first := e.mustCreate(t, userID, "First")
	second := e.mustCreate(t, uuid.New(), "Second")
	if _, _, err := e.registry.Redeem(context.Background(), domain.Identity{UserID: userID}, second.InviteCode, ""); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	list, err := e.registry.ListForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Workspace.ID != first.ID || list[0].Role != domain.RoleFounder {
		t.Errorf("first = %s/%s", list[0].Workspace.Name, list[0].Role)
	}
	if list[1].Workspace.ID != second.ID || list[1].Role != domain.RoleMember {
		t.Errorf("second = %s/%s", list[1].Workspace.Name, list[1].Role)
	}
}

func TestRemoveMember(t *testing.T) {
	e := newEnv()
	founderID := uuid.New()
	w := e.mustCreate(t, founderID, "Acme")
	memberID := uuid.New()
	if _, _, err := e.registry.Redeem(context.Background(), domain.Identity{UserID: memberID}, w.InviteCode, ""); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	// Removing the founder is refused.
	err := e.registry.RemoveMember(context.Background(), founderID, w.ID, founderID)
	if !errors.Is(err, domain.ErrFounderSelfRemoval) {
		t.Fatalf("remove founder err = %v", err)
	}

	// Removing a non-member is a no-op.
	if err := e.registry.RemoveMember(context.Background(), founderID, w.ID, uuid.New()); err != nil {
		t.Fatalf("remove absent: %v", err)
	}

	if err := e.registry.RemoveMember(context.Background(), founderID, w.ID, memberID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if _, err := e.memberships.GetByUserAndWorkspace(context.Background(), memberID, w.ID); !errors.Is(err, domain.ErrMemberNotFound) {
		t.Error("membership still present after removal")
	}

	// Members lack the capability.
	err = e.registry.RemoveMember(context.Background(), memberID, w.ID, founderID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("member removing err = %v, want forbidden", err)
	}
}

func TestChangeRole(t *testing.T) {
	e := newEnv()
	founderID := uuid.New()
	w := e.mustCreate(t, founderID, "Acme")
	memberID := uuid.New()
	if _, _, err := e.registry.Redeem(context.Background(), domain.Identity{UserID: memberID}, w.InviteCode, ""); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	if err := e.registry.ChangeRole(context.Background(), founderID, w.ID, memberID, domain.RoleManager); err != nil {
		t.Fatalf("promote: %v", err)
	}
	m, _ := e.memberships.GetByUserAndWorkspace(context.Background(), memberID, w.ID)
	if m.Role != domain.RoleManager {
		t.Errorf("role = %q, want manager", m.Role)
	}

	err := e.registry.ChangeRole(context.Background(), founderID, w.ID, founderID, domain.RoleMember)
	if !errors.Is(err, domain.ErrFounderRoleChange) {
		t.Fatalf("demote founder err = %v", err)
	}

	err = e.registry.ChangeRole(context.Background(), founderID, w.ID, memberID, domain.RoleFounder)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("promote to founder err = %v, want validation error", err)
	}
}

func TestInvestorPortal(t *testing.T) {
	e := newEnv()
	founderID := uuid.New()
	w := e.mustCreate(t, founderID, "Acme")

	investorID := uuid.New()
	e.profiles.byID[investorID] = &domain.Profile{ID: investorID, Email: "angel@fund.vc", FullName: "Angel"}

	m, err := e.registry.InviteInvestor(context.Background(), founderID, w.ID, "Angel@fund.vc ")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if m.Role != domain.RoleInvestor {
		t.Errorf("role = %q, want investor", m.Role)
	}

	investors, err := e.registry.Investors(context.Background(), founderID, w.ID)
	if err != nil {
		t.Fatalf("list investors: %v", err)
	}
	if len(investors) != 1 || investors[0].Profile.Email != "angel@fund.vc" {
		t.Errorf("investors = %+v", investors)
	}

	if err := e.registry.RevokeInvestor(context.Background(), founderID, w.ID, investorID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	investors, _ = e.registry.Investors(context.Background(), founderID, w.ID)
	if len(investors) != 0 {
		t.Errorf("investors after revoke = %d, want 0", len(investors))
	}

	// Revoking again is a no-op.
	if err := e.registry.RevokeInvestor(context.Background(), founderID, w.ID, investorID); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}

func TestUpdatePlan(t *testing.T) {
	e := newEnv()
	founderID := uuid.New()
	w := e.mustCreate(t, founderID, "Acme")

	if err := e.registry.UpdatePlan(context.Background(), founderID, w.ID, domain.PlanPro); err != nil {
		t.Fatalf("update plan: %v", err)
	}
	plan, err := e.registry.Plan(context.Background(), founderID, w.ID)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan != domain.PlanPro {
		t.Errorf("plan = %q, want pro", plan)
	}

	err = e.registry.UpdatePlan(context.Background(), founderID, w.ID, "platinum")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("bogus plan err = %v, want validation error", err)
	}
}
