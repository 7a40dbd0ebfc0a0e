package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
)

// WorkspacesRepository handles workspace persistence.
type WorkspacesRepository struct {
	db *sql.DB
}

// NewWorkspacesRepository creates a new workspaces repository.
func NewWorkspacesRepository(db *sql.DB) *WorkspacesRepository {
	return &WorkspacesRepository{db: db}
}

const workspaceColumns = `id, name, description, industry, stage, website, founder_id, invite_code, subscription_plan, created_at, updated_at`

func scanWorkspace(row interface{ Scan(...any) error }) (*domain.Workspace, error) {
	var w domain.Workspace
	err := row.Scan(
		&w.ID, &w.Name, &w.Description, &w.Industry, &w.Stage, &w.Website,
		&w.FounderID, &w.InviteCode, &w.SubscriptionPlan, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateTx inserts a workspace within a transaction. A duplicate invite code
// surfaces as a unique violation for the caller to retry with a fresh code.
func (r *WorkspacesRepository) CreateTx(ctx context.Context, q Querier, w *domain.Workspace) error {
	query := `
		INSERT INTO workspaces (id, name, description, industry, stage, website, founder_id, invite_code, subscription_plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := q.ExecContext(ctx, query,
		w.ID, w.Name, w.Description, w.Industry, w.Stage, w.Website,
		w.FounderID, w.InviteCode, w.SubscriptionPlan, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

// GetByID retrieves a workspace by ID.
func (r *WorkspacesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = $1`
	w, err := scanWorkspace(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrWorkspaceNotFound
	}
	return w, err
}

// GetByInviteCode retrieves a workspace by its current invite code.
func (r *WorkspacesRepository) GetByInviteCode(ctx context.Context, code string) (*domain.Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE invite_code = $1`
	w, err := scanWorkspace(r.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInviteCodeNotFound
	}
	return w, err
}

// GetByIDs retrieves workspaces for the given IDs, keyed by ID.
func (r *WorkspacesRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Workspace, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*domain.Workspace{}, nil
	}

	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, idArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workspaces := make(map[uuid.UUID]*domain.Workspace, len(ids))
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		workspaces[w.ID] = w
	}
	return workspaces, rows.Err()
}

// ListBrowsableFor returns workspaces with no swipe row for the investor and
// no membership of the investor, in creation order. Computed fresh per call.
func (r *WorkspacesRepository) ListBrowsableFor(ctx context.Context, investorID uuid.UUID) ([]*domain.Workspace, error) {
	query := `
		SELECT ` + workspaceColumns + `
		FROM workspaces w
		WHERE NOT EXISTS (
			SELECT 1 FROM investor_swipes s
			WHERE s.workspace_id = w.id AND s.investor_id = $1
		)
		AND NOT EXISTS (
			SELECT 1 FROM memberships m
			WHERE m.workspace_id = w.id AND m.user_id = $1
		)
		ORDER BY w.created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, investorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []*domain.Workspace
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, w)
	}
	return workspaces, rows.Err()
}

// Update updates workspace attributes.
func (r *WorkspacesRepository) Update(ctx context.Context, w *domain.Workspace) error {
	query := `
		UPDATE workspaces
		SET name = $2, description = $3, industry = $4, stage = $5, website = $6, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, w.ID, w.Name, w.Description, w.Industry, w.Stage, w.Website)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrWorkspaceNotFound
	}
	return nil
}

// UpdateInviteCode replaces the invite code. The old code stops resolving
// the moment this commits.
func (r *WorkspacesRepository) UpdateInviteCode(ctx context.Context, id uuid.UUID, code string) error {
	query := `
		UPDATE workspaces
		SET invite_code = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, code)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrWorkspaceNotFound
	}
	return nil
}

// UpdateSubscriptionPlan sets the billing plan.
func (r *WorkspacesRepository) UpdateSubscriptionPlan(ctx context.Context, id uuid.UUID, plan domain.SubscriptionPlan) error {
	query := `
		UPDATE workspaces
		SET subscription_plan = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, plan)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrWorkspaceNotFound
	}
	return nil
}
