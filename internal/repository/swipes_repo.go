package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
)

// SwipesRepository handles investor swipe persistence.
type SwipesRepository struct {
	db *sql.DB
}

// NewSwipesRepository creates a new swipes repository.
func NewSwipesRepository(db *sql.DB) *SwipesRepository {
	return &SwipesRepository{db: db}
}

// Upsert records a decision for (investor, workspace). The conditional
// upsert is atomic: two near-simultaneous calls for the same pair never
// produce two rows, and the later write wins.
func (r *SwipesRepository) Upsert(ctx context.Context, s *domain.Swipe) error {
	query := `
		INSERT INTO investor_swipes (investor_id, workspace_id, action, decided_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (investor_id, workspace_id) DO UPDATE
		SET action = EXCLUDED.action, decided_at = EXCLUDED.decided_at
	`
	_, err := r.db.ExecContext(ctx, query, s.InvestorID, s.WorkspaceID, s.Action, s.DecidedAt)
	return err
}

// Delete removes the swipe row, returning the pair to unseen. Deleting an
// absent row is a no-op.
func (r *SwipesRepository) Delete(ctx context.Context, investorID, workspaceID uuid.UUID) error {
	query := `DELETE FROM investor_swipes WHERE investor_id = $1 AND workspace_id = $2`
	_, err := r.db.ExecContext(ctx, query, investorID, workspaceID)
	return err
}

// ListInterested returns the investor's swipes whose current action is
// interested, most recent decision first.
func (r *SwipesRepository) ListInterested(ctx context.Context, investorID uuid.UUID) ([]*domain.Swipe, error) {
	query := `
		SELECT investor_id, workspace_id, action, decided_at
		FROM investor_swipes
		WHERE investor_id = $1 AND action = 'interested'
		ORDER BY decided_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, investorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var swipes []*domain.Swipe
	for rows.Next() {
		var s domain.Swipe
		if err := rows.Scan(&s.InvestorID, &s.WorkspaceID, &s.Action, &s.DecidedAt); err != nil {
			return nil, err
		}
		swipes = append(swipes, &s)
	}
	return swipes, rows.Err()
}
