// Package matching implements the investor/startup discovery flow:
// browsing unseen workspaces, swiping, and the resulting match list.
package matching

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
	"github.com/startupops/startupops/internal/metrics"
)

// SwipeStore is the swipe persistence the engine needs.
type SwipeStore interface {
	Upsert(ctx context.Context, s *domain.Swipe) error
	Delete(ctx context.Context, investorID, workspaceID uuid.UUID) error
	ListInterested(ctx context.Context, investorID uuid.UUID) ([]*domain.Swipe, error)
}

// WorkspaceSource resolves workspaces for browsing and match listing.
type WorkspaceSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Workspace, error)
	ListBrowsableFor(ctx context.Context, investorID uuid.UUID) ([]*domain.Workspace, error)
}

// ProfileSource resolves founder profiles for match contact details.
type ProfileSource interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Profile, error)
}

// SnapshotSource computes a workspace's metrics snapshot.
type SnapshotSource interface {
	Snapshot(ctx context.Context, workspaceID uuid.UUID) (metrics.Snapshot, error)
}

// Engine is the matching service. Every operation requires the caller's
// platform-level investor designation; workspace membership is not
// involved.
type Engine struct {
	swipes     SwipeStore
	workspaces WorkspaceSource
	profiles   ProfileSource
	snapshots  SnapshotSource

	now func() time.Time
}

// NewEngine creates the matching engine.
func NewEngine(swipes SwipeStore, workspaces WorkspaceSource, profiles ProfileSource, snapshots SnapshotSource) *Engine {
	return &Engine{
		swipes:     swipes,
		workspaces: workspaces,
		profiles:   profiles,
		snapshots:  snapshots,
		now:        time.Now,
	}
}

// BrowseCard is one workspace in the browse feed, enriched with a fresh
// metrics snapshot.
type BrowseCard struct {
	Workspace *domain.Workspace
	Snapshot  metrics.Snapshot
}

// Browse returns the workspaces the investor has not decided on yet, in
// creation order. Workspaces the investor belongs to are excluded.
func (e *Engine) Browse(ctx context.Context, identity domain.Identity) ([]BrowseCard, error) {
	if !identity.Investor {
		return nil, domain.ErrInvestorRequired
	}

	workspaces, err := e.workspaces.ListBrowsableFor(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	cards := make([]BrowseCard, 0, len(workspaces))
	for _, w := range workspaces {
		snap, err := e.snapshots.Snapshot(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		cards = append(cards, BrowseCard{Workspace: w, Snapshot: snap})
	}
	return cards, nil
}

// Swipe records the investor's decision on a workspace. Repeating a
// swipe on the same workspace replaces the previous decision; the
// latest write wins and at most one row exists per pair.
func (e *Engine) Swipe(ctx context.Context, identity domain.Identity, workspaceID uuid.UUID, action domain.SwipeDecision) (*domain.Swipe, error) {
	if !identity.Investor {
		return nil, domain.ErrInvestorRequired
	}
	if !action.Valid() {
		return nil, domain.ErrInvalidSwipeAction
	}
	if _, err := e.workspaces.GetByID(ctx, workspaceID); err != nil {
		return nil, err
	}

	s := &domain.Swipe{
		InvestorID:  identity.UserID,
		WorkspaceID: workspaceID,
		Action:      action,
		DecidedAt:   e.now(),
	}
	if err := e.swipes.Upsert(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Undo erases the investor's decision on a workspace, returning it to
// the browse feed. Undoing a decision that does not exist is a no-op.
func (e *Engine) Undo(ctx context.Context, identity domain.Identity, workspaceID uuid.UUID) error {
	if !identity.Investor {
		return domain.ErrInvestorRequired
	}
	return e.swipes.Delete(ctx, identity.UserID, workspaceID)
}

// Match is a workspace the investor is currently interested in, with
// the founder's contact details.
type Match struct {
	Workspace    *domain.Workspace
	FounderName  string
	FounderEmail string
	MatchedAt    time.Time
}

// Matches returns the workspaces whose current decision is interested,
// most recent first. This is the only place founder contact details
// cross to the investor side.
func (e *Engine) Matches(ctx context.Context, identity domain.Identity) ([]Match, error) {
	if !identity.Investor {
		return nil, domain.ErrInvestorRequired
	}

	swipes, err := e.swipes.ListInterested(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	workspaceIDs := make([]uuid.UUID, len(swipes))
	for i, s := range swipes {
		workspaceIDs[i] = s.WorkspaceID
	}
	workspaces, err := e.workspaces.GetByIDs(ctx, workspaceIDs)
	if err != nil {
		return nil, err
	}

	founderIDs := make([]uuid.UUID, 0, len(workspaces))
	for _, w := range workspaces {
		founderIDs = append(founderIDs, w.FounderID)
	}
	founders, err := e.profiles.GetByIDs(ctx, founderIDs)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(swipes))
	for _, s := range swipes {
		w, ok := workspaces[s.WorkspaceID]
		if !ok {
			continue
		}
		m := Match{Workspace: w, MatchedAt: s.DecidedAt}
		if f, ok := founders[w.FounderID]; ok {
			m.FounderName = f.FullName
			m.FounderEmail = f.Email
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// RemoveMatch withdraws interest in a workspace. The pair returns to
// unseen, so the workspace shows up in the browse feed again. Removing
// an absent match is a no-op.
func (e *Engine) RemoveMatch(ctx context.Context, identity domain.Identity, workspaceID uuid.UUID) error {
	if !identity.Investor {
		return domain.ErrInvestorRequired
	}
	return e.swipes.Delete(ctx, identity.UserID, workspaceID)
}
