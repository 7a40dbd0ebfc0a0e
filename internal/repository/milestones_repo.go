package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
)

// MilestonesRepository handles milestone persistence.
type MilestonesRepository struct {
	db *sql.DB
}

// NewMilestonesRepository creates a new milestones repository.
func NewMilestonesRepository(db *sql.DB) *MilestonesRepository {
	return &MilestonesRepository{db: db}
}

// Create inserts a milestone.
func (r *MilestonesRepository) Create(ctx context.Context, m *domain.Milestone) error {
	query := `
		INSERT INTO milestones (id, workspace_id, title, description, target_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.WorkspaceID, m.Title, m.Description, m.TargetDate, m.Status, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

// GetByID retrieves a milestone.
func (r *MilestonesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Milestone, error) {
	query := `
		SELECT id, workspace_id, title, description, target_date, status, created_at, updated_at
		FROM milestones
		WHERE id = $1
	`
	var m domain.Milestone
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.WorkspaceID, &m.Title, &m.Description, &m.TargetDate, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMilestoneNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByWorkspace returns a workspace's milestones in creation order.
func (r *MilestonesRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Milestone, error) {
	query := `
		SELECT id, workspace_id, title, description, target_date, status, created_at, updated_at
		FROM milestones
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []*domain.Milestone
	for rows.Next() {
		var m domain.Milestone
		err := rows.Scan(&m.ID, &m.WorkspaceID, &m.Title, &m.Description, &m.TargetDate, &m.Status, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, &m)
	}
	return milestones, rows.Err()
}

// CountByWorkspace returns total and completed milestone counts.
func (r *MilestonesRepository) CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (total, completed int, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed')
		FROM milestones
		WHERE workspace_id = $1
	`
	err = r.db.QueryRowContext(ctx, query, workspaceID).Scan(&total, &completed)
	return total, completed, err
}

// Update rewrites a milestone's mutable fields.
func (r *MilestonesRepository) Update(ctx context.Context, m *domain.Milestone) error {
	query := `
		UPDATE milestones
		SET title = $2, description = $3, target_date = $4, status = $5, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, m.ID, m.Title, m.Description, m.TargetDate, m.Status)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMilestoneNotFound
	}
	return nil
}

// Delete removes a milestone.
func (r *MilestonesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM milestones WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMilestoneNotFound
	}
	return nil
}
