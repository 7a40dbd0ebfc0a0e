package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
)

// TasksRepository handles task persistence.
type TasksRepository struct {
	db *sql.DB
}

// NewTasksRepository creates a new tasks repository.
func NewTasksRepository(db *sql.DB) *TasksRepository {
	return &TasksRepository{db: db}
}

const taskColumns = `id, workspace_id, title, description, status, priority, assigned_to, milestone_id, due_date, created_by, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.WorkspaceID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssignedTo, &t.MilestoneID, &t.DueDate, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a task.
func (r *TasksRepository) Create(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (id, workspace_id, title, description, status, priority, assigned_to, milestone_id, due_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.WorkspaceID, t.Title, t.Description, t.Status, t.Priority,
		t.AssignedTo, t.MilestoneID, t.DueDate, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// GetByID retrieves a task.
func (r *TasksRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	return t, err
}

// ListByWorkspace returns a workspace's tasks in creation order.
func (r *TasksRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE workspace_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CountByMilestone returns total and done task counts for a milestone.
func (r *TasksRepository) CountByMilestone(ctx context.Context, milestoneID uuid.UUID) (total, done int, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'done')
		FROM tasks
		WHERE milestone_id = $1
	`
	err = r.db.QueryRowContext(ctx, query, milestoneID).Scan(&total, &done)
	return total, done, err
}

// Update rewrites a task's mutable fields.
func (r *TasksRepository) Update(ctx context.Context, t *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5,
		    assigned_to = $6, milestone_id = $7, due_date = $8, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.AssignedTo, t.MilestoneID, t.DueDate,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// UpdateStatus moves a task to another column.
func (r *TasksRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	query := `UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Delete removes a task.
func (r *TasksRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// DetachMilestone clears milestone references from tasks when the
// milestone is deleted.
func (r *TasksRepository) DetachMilestone(ctx context.Context, milestoneID uuid.UUID) error {
	query := `UPDATE tasks SET milestone_id = NULL, updated_at = NOW() WHERE milestone_id = $1`
	_, err := r.db.ExecContext(ctx, query, milestoneID)
	return err
}
