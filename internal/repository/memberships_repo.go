package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
)

// MembershipsRepository handles membership persistence.
type MembershipsRepository struct {
	db *sql.DB
}

// NewMembershipsRepository creates a new memberships repository.
func NewMembershipsRepository(db *sql.DB) *MembershipsRepository {
	return &MembershipsRepository{db: db}
}

// Create inserts a membership. The UNIQUE(workspace_id, user_id) constraint
// is the safety net for concurrent redemption by the same user; the loser
// gets domain.ErrAlreadyMember.
func (r *MembershipsRepository) Create(ctx context.Context, m *domain.Membership) error {
	return r.CreateTx(ctx, r.db, m)
}

// CreateTx inserts a membership within a transaction.
func (r *MembershipsRepository) CreateTx(ctx context.Context, q Querier, m *domain.Membership) error {
	query := `
		INSERT INTO memberships (id, workspace_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.ExecContext(ctx, query, m.ID, m.WorkspaceID, m.UserID, m.Role, m.JoinedAt)
	if IsUniqueViolation(err) {
		return domain.ErrAlreadyMember
	}
	return err
}

// GetByUserAndWorkspace retrieves a user's membership in a workspace.
func (r *MembershipsRepository) GetByUserAndWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Membership, error) {
	query := `
		SELECT id, workspace_id, user_id, role, joined_at
		FROM memberships
		WHERE user_id = $1 AND workspace_id = $2
	`
	var m domain.Membership
	err := r.db.QueryRowContext(ctx, query, userID, workspaceID).Scan(
		&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.JoinedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByUserID retrieves all memberships for a user in insertion order.
func (r *MembershipsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error) {
	query := `
		SELECT id, workspace_id, user_id, role, joined_at
		FROM memberships
		WHERE user_id = $1
		ORDER BY joined_at ASC
	`
	return r.list(ctx, query, userID)
}

// GetByWorkspaceID retrieves all members of a workspace in join order.
func (r *MembershipsRepository) GetByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Membership, error) {
	query := `
		SELECT id, workspace_id, user_id, role, joined_at
		FROM memberships
		WHERE workspace_id = $1
		ORDER BY joined_at ASC
	`
	return r.list(ctx, query, workspaceID)
}

// GetByWorkspaceAndRole retrieves members of a workspace holding role.
func (r *MembershipsRepository) GetByWorkspaceAndRole(ctx context.Context, workspaceID uuid.UUID, role domain.Role) ([]*domain.Membership, error) {
	query := `
		SELECT id, workspace_id, user_id, role, joined_at
		FROM memberships
		WHERE workspace_id = $1 AND role = $2
		ORDER BY joined_at ASC
	`
	return r.list(ctx, query, workspaceID, role)
}

func (r *MembershipsRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, &m)
	}
	return memberships, rows.Err()
}

// CountByWorkspace counts all members of a workspace.
func (r *MembershipsRepository) CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM memberships WHERE workspace_id = $1`
	var n int
	err := r.db.QueryRowContext(ctx, query, workspaceID).Scan(&n)
	return n, err
}

// CountTeam counts members of a workspace excluding investors.
func (r *MembershipsRepository) CountTeam(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM memberships WHERE workspace_id = $1 AND role <> 'investor'`
	var n int
	err := r.db.QueryRowContext(ctx, query, workspaceID).Scan(&n)
	return n, err
}

// UpdateRole changes a member's role.
func (r *MembershipsRepository) UpdateRole(ctx context.Context, workspaceID, userID uuid.UUID, role domain.Role) error {
	query := `
		UPDATE memberships
		SET role = $3
		WHERE workspace_id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, workspaceID, userID, role)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

// Delete removes a membership. Returns the number of rows removed so the
// caller can treat a missing target as a no-op.
func (r *MembershipsRepository) Delete(ctx context.Context, workspaceID, userID uuid.UUID) (int64, error) {
	query := `DELETE FROM memberships WHERE workspace_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, workspaceID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteByRole removes a membership only if it holds the given role.
func (r *MembershipsRepository) DeleteByRole(ctx context.Context, workspaceID, userID uuid.UUID, role domain.Role) (int64, error) {
	query := `DELETE FROM memberships WHERE workspace_id = $1 AND user_id = $2 AND role = $3`
	result, err := r.db.ExecContext(ctx, query, workspaceID, userID, role)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
