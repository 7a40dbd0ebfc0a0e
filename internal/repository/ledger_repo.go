package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
)

// LedgerRepository handles income, expense and investment entries.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Create appends a ledger entry.
func (r *LedgerRepository) Create(ctx context.Context, e *domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, workspace_id, kind, title, amount, category, equity_percentage, investor_name, investment_type, entry_date, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.WorkspaceID, e.Kind, e.Title, e.Amount, e.Category,
		e.EquityPct, e.InvestorName, e.InvestmentType, e.EntryDate, e.Notes,
		e.CreatedBy, e.CreatedAt,
	)
	return err
}

// ListByKind returns a workspace's entries of one kind, newest entry date first.
func (r *LedgerRepository) ListByKind(ctx context.Context, workspaceID uuid.UUID, kind domain.LedgerKind) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT id, workspace_id, kind, title, amount, category, equity_percentage, investor_name, investment_type, entry_date, notes, created_by, created_at
		FROM ledger_entries
		WHERE workspace_id = $1 AND kind = $2
		ORDER BY entry_date DESC
		LIMIT 500
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		err := rows.Scan(
			&e.ID, &e.WorkspaceID, &e.Kind, &e.Title, &e.Amount, &e.Category,
			&e.EquityPct, &e.InvestorName, &e.InvestmentType, &e.EntryDate, &e.Notes,
			&e.CreatedBy, &e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// GetByID retrieves one entry.
func (r *LedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	query := `
		SELECT id, workspace_id, kind, title, amount, category, equity_percentage, investor_name, investment_type, entry_date, notes, created_by, created_at
		FROM ledger_entries
		WHERE id = $1
	`
	var e domain.LedgerEntry
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.WorkspaceID, &e.Kind, &e.Title, &e.Amount, &e.Category,
		&e.EquityPct, &e.InvestorName, &e.InvestmentType, &e.EntryDate, &e.Notes,
		&e.CreatedBy, &e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes an entry scoped to its workspace and kind.
func (r *LedgerRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID, kind domain.LedgerKind) error {
	query := `DELETE FROM ledger_entries WHERE id = $1 AND workspace_id = $2 AND kind = $3`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID, kind)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// SumByKind returns the total amount per kind for a workspace. Each sum is a
// single consistent aggregate read of the table.
func (r *LedgerRepository) SumByKind(ctx context.Context, workspaceID uuid.UUID) (map[domain.LedgerKind]float64, error) {
	query := `
		SELECT kind, COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE workspace_id = $1
		GROUP BY kind
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := map[domain.LedgerKind]float64{}
	for rows.Next() {
		var kind domain.LedgerKind
		var total float64
		if err := rows.Scan(&kind, &total); err != nil {
			return nil, err
		}
		sums[kind] = total
	}
	return sums, rows.Err()
}

// SumByCategory returns per-category totals for one kind.
func (r *LedgerRepository) SumByCategory(ctx context.Context, workspaceID uuid.UUID, kind domain.LedgerKind) (map[string]float64, error) {
	query := `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE workspace_id = $1 AND kind = $2
		GROUP BY category
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := map[string]float64{}
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, err
		}
		sums[category] = total
	}
	return sums, rows.Err()
}

// MonthlyExpenseSums returns the expense total per calendar month, for the
// months actually present in the data, oldest first.
func (r *LedgerRepository) MonthlyExpenseSums(ctx context.Context, workspaceID uuid.UUID) ([]float64, error) {
	query := `
		SELECT DATE_TRUNC('month', entry_date) AS month, SUM(amount)
		FROM ledger_entries
		WHERE workspace_id = $1 AND kind = 'expense'
		GROUP BY month
		ORDER BY month ASC
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []float64
	for rows.Next() {
		var month time.Time
		var total float64
		if err := rows.Scan(&month, &total); err != nil {
			return nil, err
		}
		sums = append(sums, total)
	}
	return sums, rows.Err()
}

// SumEquity returns the total equity percentage given across investments.
func (r *LedgerRepository) SumEquity(ctx context.Context, workspaceID uuid.UUID) (float64, error) {
	query := `
		SELECT COALESCE(SUM(equity_percentage), 0)
		FROM ledger_entries
		WHERE workspace_id = $1 AND kind = 'investment'
	`
	var total float64
	err := r.db.QueryRowContext(ctx, query, workspaceID).Scan(&total)
	return total, err
}
