package matching

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
	"github.com/startupops/startupops/internal/metrics"
)

type pairKey struct {
	investorID  uuid.UUID
	workspaceID uuid.UUID
}

type fakeSwipeStore struct {
	rows map[pairKey]*domain.Swipe
}

func newFakeSwipeStore() *fakeSwipeStore {
	return &fakeSwipeStore{rows: map[pairKey]*domain.Swipe{}}
}

func (f *fakeSwipeStore) Upsert(_ context.Context, s *domain.Swipe) error {
	cp := *s
	f.rows[pairKey{s.InvestorID, s.WorkspaceID}] = &cp
	return nil
}

func (f *fakeSwipeStore) Delete(_ context.Context, investorID, workspaceID uuid.UUID) error {
	delete(f.rows, pairKey{investorID, workspaceID})
	return nil
}

func (f *fakeSwipeStore) ListInterested(_ context.Context, investorID uuid.UUID) ([]*domain.Swipe, error) {
	var out []*domain.Swipe
	for _, s := range f.rows {
		if s.InvestorID == investorID && s.Action == domain.SwipeInterested {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DecidedAt.After(out[j].DecidedAt) })
	return out, nil
}

type fakeWorkspaceSource struct {
	workspaces []*domain.Workspace
	members    map[pairKey]bool
	swipes     *fakeSwipeStore
}

func (f *fakeWorkspaceSource) GetByID(_ context.Context, id uuid.UUID) (*domain.Workspace, error) {
	for _, w := range f.workspaces {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, domain.ErrWorkspaceNotFound
}

func (f *fakeWorkspaceSource) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Workspace, error) {
	out := map[uuid.UUID]*domain.Workspace{}
	for _, w := range f.workspaces {
		for _, id := range ids {
			if w.ID == id {
				out[id] = w
			}
		}
	}
	return out, nil
}

func (f *fakeWorkspaceSource) ListBrowsableFor(_ context.Context, investorID uuid.UUID) ([]*domain.Workspace, error) {
	var out []*domain.Workspace
	for _, w := range f.workspaces {
		if _, swiped := f.swipes.rows[pairKey{investorID, w.ID}]; swiped {
			continue
		}
		if f.members[pairKey{investorID, w.ID}] {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

type fakeProfileSource struct {
	profiles map[uuid.UUID]*domain.Profile
}

func (f *fakeProfileSource) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	out := map[uuid.UUID]*domain.Profile{}
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeSnapshotSource struct{}

func (fakeSnapshotSource) Snapshot(_ context.Context, _ uuid.UUID) (metrics.Snapshot, error) {
	return metrics.Snapshot{Balance: 600, TeamSize: 3}, nil
}

type env struct {
	engine     *Engine
	swipes     *fakeSwipeStore
	workspaces *fakeWorkspaceSource
	profiles   *fakeProfileSource
	clock      time.Time
}

func newEnv() *env {
	swipes := newFakeSwipeStore()
	workspaces := &fakeWorkspaceSource{members: map[pairKey]bool{}, swipes: swipes}
	profiles := &fakeProfileSource{profiles: map[uuid.UUID]*domain.Profile{}}

	e := &env{
		swipes:     swipes,
		workspaces: workspaces,
		profiles:   profiles,
		clock:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	e.engine = NewEngine(swipes, workspaces, profiles, fakeSnapshotSource{})
	e.engine.now = func() time.Time {
		e.clock = e.clock.Add(time.Second)
		return e.clock
	}
	return e
}

func (e *env) addWorkspace(name string) *domain.Workspace {
	founderID := uuid.New()
	w := &domain.Workspace{ID: uuid.New(), Name: name, FounderID: founderID}
	e.workspaces.workspaces = append(e.workspaces.workspaces, w)
	e.profiles.profiles[founderID] = &domain.Profile{
		ID:       founderID,
		Email:    name + "@founders.test",
		FullName: name + " Founder",
	}
	return w
}

func investor() domain.Identity {
	return domain.Identity{UserID: uuid.New(), Investor: true}
}

func TestSwipeRequiresInvestor(t *testing.T) {
	e := newEnv()
	w := e.addWorkspace("Acme")

	_, err := e.engine.Swipe(context.Background(), domain.Identity{UserID: uuid.New()}, w.ID, domain.SwipeInterested)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestSwipeValidatesAction(t *testing.T) {
	e := newEnv()
	w := e.addWorkspace("Acme")

	_, err := e.engine.Swipe(context.Background(), investor(), w.ID, "maybe")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSwipeUnknownWorkspace(t *testing.T) {
	e := newEnv()
	_, err := e.engine.Swipe(context.Background(), investor(), uuid.New(), domain.SwipeInterested)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestSwipeLastWriteWins(t *testing.T) {
	e := newEnv()
	w := e.addWorkspace("Acme")
	inv := investor()

	if _, err := e.engine.Swipe(context.Background(), inv, w.ID, domain.SwipeInterested); err != nil {
		t.Fatalf("first swipe: %v", err)
	}
	if _, err := e.engine.Swipe(context.Background(), inv, w.ID, domain.SwipePassed); err != nil {
		t.Fatalf("second swipe: %v", err)
	}

	if len(e.swipes.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(e.swipes.rows))
	}
	s := e.swipes.rows[pairKey{inv.UserID, w.ID}]
	if s.Action != domain.SwipePassed {
		t.Errorf("action = %q, want passed", s.Action)
	}

	matches, err := e.engine.Matches(context.Background(), inv)
	if err != nil {
		t.Fatalf("matches: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %d, want 0 after pass", len(matches))
	}
}

func TestMatchesAreInterestedSet(t *testing.T) {
	e := newEnv()
	liked := e.addWorkspace("Liked")
	passed := e.addWorkspace("Passed")
	inv := investor()

	if _, err := e.engine.Swipe(context.Background(), inv, liked.ID, domain.SwipeInterested); err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if _, err := e.engine.Swipe(context.Background(), inv, passed.ID, domain.SwipePassed); err != nil {
		t.Fatalf("swipe: %v", err)
	}

	matches, err := e.engine.Matches(context.Background(), inv)
	if err != nil {
		t.Fatalf("matches: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	m := matches[0]
	if m.Workspace.ID != liked.ID {
		t.Errorf("matched %s, want Liked", m.Workspace.Name)
	}
	if m.FounderName != "Liked Founder" || m.FounderEmail != "Liked@founders.test" {
		t.Errorf("founder contact = %q/%q", m.FounderName, m.FounderEmail)
	}
}

func TestBrowseExcludesSwipedAndOwn(t *testing.T) {
	e := newEnv()
	unseen := e.addWorkspace("Unseen")
	swiped := e.addWorkspace("Swiped")
	own := e.addWorkspace("Own")
	inv := investor()
	e.workspaces.members[pairKey{inv.UserID, own.ID}] = true

	if _, err := e.engine.Swipe(context.Background(), inv, swiped.ID, domain.SwipePassed); err != nil {
		t.Fatalf("swipe: %v", err)
	}

	cards, err := e.engine.Browse(context.Background(), inv)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(cards) != 1 || cards[0].Workspace.ID != unseen.ID {
		t.Fatalf("browse = %+v, want only Unseen", cards)
	}
	if cards[0].Snapshot.Balance != 600 {
		t.Errorf("snapshot not attached: %+v", cards[0].Snapshot)
	}
}

func TestUndoReturnsWorkspaceToFeed(t *testing.T) {
	e := newEnv()
	w := e.addWorkspace("Acme")
	inv := investor()

	if _, err := e.engine.Swipe(context.Background(), inv, w.ID, domain.SwipePassed); err != nil {
		t.Fatalf("swipe: %v", err)
	}
	cards, _ := e.engine.Browse(context.Background(), inv)
	if len(cards) != 0 {
		t.Fatalf("browse after swipe = %d, want 0", len(cards))
	}

	if err := e.engine.Undo(context.Background(), inv, w.ID); err != nil {
		t.Fatalf("undo: %v", err)
	}
	cards, _ = e.engine.Browse(context.Background(), inv)
	if len(cards) != 1 {
		t.Fatalf("browse after undo = %d, want 1", len(cards))
	}

	// A second undo has nothing to remove and succeeds.
	if err := e.engine.Undo(context.Background(), inv, w.ID); err != nil {
		t.Fatalf("second undo: %v", err)
	}
}

func TestRemoveMatchRestoresBrowsability(t *testing.T) {
	e := newEnv()
	w := e.addWorkspace("Acme")
	inv := investor()

	if _, err := e.engine.Swipe(context.Background(), inv, w.ID, domain.SwipeInterested); err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if err := e.engine.RemoveMatch(context.Background(), inv, w.ID); err != nil {
		t.Fatalf("remove match: %v", err)
	}

	matches, _ := e.engine.Matches(context.Background(), inv)
	if len(matches) != 0 {
		t.Errorf("matches = %d, want 0", len(matches))
	}
	cards, _ := e.engine.Browse(context.Background(), inv)
	if len(cards) != 1 {
		t.Errorf("browse = %d, want 1", len(cards))
	}
}

func TestMatchesOrderedByDecision(t *testing.T) {
	e := newEnv()
	first := e.addWorkspace("First")
	second := e.addWorkspace("Second")
	inv := investor()

	if _, err := e.engine.Swipe(context.Background(), inv, first.ID, domain.SwipeInterested); err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if _, err := e.engine.Swipe(context.Background(), inv, second.ID, domain.SwipeInterested); err != nil {
		t.Fatalf("swipe: %v", err)
	}

	matches, err := e.engine.Matches(context.Background(), inv)
	if err != nil {
		t.Fatalf("matches: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].Workspace.ID != second.ID {
		t.Errorf("most recent decision should come first, got %s", matches[0].Workspace.Name)
	}
}
