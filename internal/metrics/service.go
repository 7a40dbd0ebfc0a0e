package metrics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
)

// LedgerSource provides ledger aggregates.
type LedgerSource interface {
	SumByKind(ctx context.Context, workspaceID uuid.UUID) (map[domain.LedgerKind]float64, error)
	MonthlyExpenseSums(ctx context.Context, workspaceID uuid.UUID) ([]float64, error)
}

// TeamSource counts non-investor members.
type TeamSource interface {
	CountTeam(ctx context.Context, workspaceID uuid.UUID) (int, error)
}

// MilestoneSource counts milestones and how many are completed.
type MilestoneSource interface {
	CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (total, completed int, err error)
}

// Service computes snapshots from live data.
type Service struct {
	ledger     LedgerSource
	team       TeamSource
	milestones MilestoneSource
}

// NewService creates a metrics service.
func NewService(ledger LedgerSource, team TeamSource, milestones MilestoneSource) *Service {
	return &Service{ledger: ledger, team: team, milestones: milestones}
}

// Snapshot gathers the aggregates for a workspace and derives its
// snapshot. The reads are not wrapped in one transaction; a write
// landing between them can skew a single response, which the next
// request corrects.
func (s *Service) Snapshot(ctx context.Context, workspaceID uuid.UUID) (Snapshot, error) {
	sums, err := s.ledger.SumByKind(ctx, workspaceID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("sum ledger: %w", err)
	}
	monthly, err := s.ledger.MonthlyExpenseSums(ctx, workspaceID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("monthly expenses: %w", err)
	}
	teamSize, err := s.team.CountTeam(ctx, workspaceID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("count team: %w", err)
	}
	total, done, err := s.milestones.CountByWorkspace(ctx, workspaceID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("count milestones: %w", err)
	}

	return Compute(Inputs{
		IncomeTotal:     sums[domain.LedgerIncome],
		ExpenseTotal:    sums[domain.LedgerExpense],
		InvestmentTotal: sums[domain.LedgerInvestment],
		MonthlyExpenses: monthly,
		TeamSize:        teamSize,
		MilestonesTotal: total,
		MilestonesDone:  done,
	}), nil
}
