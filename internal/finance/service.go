// Package finance manages the workspace ledger: income, expenses and
// investment rounds, plus the financial summary derived from them.
package finance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/authz"
	"github.com/startupops/startupops/internal/domain"
	"github.com/startupops/startupops/internal/metrics"
)

// LedgerStore is the ledger persistence the service needs.
type LedgerStore interface {
	Create(ctx context.Context, e *domain.LedgerEntry) error
	ListByKind(ctx context.Context, workspaceID uuid.UUID, kind domain.LedgerKind) ([]*domain.LedgerEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)
	Delete(ctx context.Context, workspaceID, id uuid.UUID, kind domain.LedgerKind) error
	SumByCategory(ctx context.Context, workspaceID uuid.UUID, kind domain.LedgerKind) (map[string]float64, error)
	SumEquity(ctx context.Context, workspaceID uuid.UUID) (float64, error)
}

// SnapshotSource computes the workspace metrics snapshot.
type SnapshotSource interface {
	Snapshot(ctx context.Context, workspaceID uuid.UUID) (metrics.Snapshot, error)
}

// Service is the finance service.
type Service struct {
	ledger     LedgerStore
	snapshots  SnapshotSource
	authorizer *authz.Authorizer

	now func() time.Time
}

// NewService creates the finance service.
func NewService(ledger LedgerStore, snapshots SnapshotSource, authorizer *authz.Authorizer) *Service {
	return &Service{
		ledger:     ledger,
		snapshots:  snapshots,
		authorizer: authorizer,
		now:        time.Now,
	}
}

// EntryInput carries the attributes of a new ledger entry. The
// investment-only fields are ignored for income and expenses.
type EntryInput struct {
	Title          string
	Amount         float64
	Category       string
	EntryDate      time.Time
	Notes          string
	EquityPct      *float64
	InvestorName   *string
	InvestmentType *string
}

func (in *EntryInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.ErrNameRequired
	}
	if in.Amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return nil
}

// AddEntry records a ledger entry of the given kind. Income and expense
// entries require the analytics capability; investment entries may also
// be recorded by investors on their own behalf.
func (s *Service) AddEntry(ctx context.Context, actorID, workspaceID uuid.UUID, kind domain.LedgerKind, in EntryInput) (*domain.LedgerEntry, error) {
	if err := s.requireWrite(ctx, actorID, workspaceID, kind); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	entryDate := in.EntryDate
	if entryDate.IsZero() {
		entryDate = s.now()
	}

	e := &domain.LedgerEntry{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Kind:        kind,
		Title:       strings.TrimSpace(in.Title),
		Amount:      in.Amount,
		Category:    in.Category,
		EntryDate:   entryDate,
		Notes:       in.Notes,
		CreatedBy:   actorID,
		CreatedAt:   s.now(),
	}
	if kind == domain.LedgerInvestment {
		e.EquityPct = in.EquityPct
		e.InvestorName = in.InvestorName
		e.InvestmentType = in.InvestmentType
	}

	if err := s.ledger.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListEntries returns the workspace's entries of one kind to any member.
func (s *Service) ListEntries(ctx context.Context, actorID, workspaceID uuid.UUID, kind domain.LedgerKind) ([]*domain.LedgerEntry, error) {
	if _, err := s.authorizer.RequireMember(ctx, actorID, workspaceID); err != nil {
		return nil, err
	}
	return s.ledger.ListByKind(ctx, workspaceID, kind)
}

// DeleteEntry removes a ledger entry. Investors holding only the
// own-investments capability can delete just the entries they recorded.
func (s *Service) DeleteEntry(ctx context.Context, actorID, workspaceID, entryID uuid.UUID, kind domain.LedgerKind) error {
	m, err := s.requireWriter(ctx, actorID, workspaceID, kind)
	if err != nil {
		return err
	}

	if kind == domain.LedgerInvestment && !authz.Permissions(m.Role).Has(authz.CapManageWorkspace) {
		e, err := s.ledger.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if e.CreatedBy != actorID {
			return domain.ErrForbidden
		}
	}

	return s.ledger.Delete(ctx, workspaceID, entryID, kind)
}

func (s *Service) requireWrite(ctx context.Context, actorID, workspaceID uuid.UUID, kind domain.LedgerKind) error {
	_, err := s.requireWriter(ctx, actorID, workspaceID, kind)
	return err
}

// requireWriter resolves the actor's membership when it may write entries
// of the given kind.
func (s *Service) requireWriter(ctx context.Context, actorID, workspaceID uuid.UUID, kind domain.LedgerKind) (*domain.Membership, error) {
	if kind != domain.LedgerInvestment {
		return s.authorizer.Require(ctx, actorID, workspaceID, authz.CapViewAnalytics)
	}

	m, err := s.authorizer.RequireMember(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	caps := authz.Permissions(m.Role)
	if !caps.Has(authz.CapManageWorkspace) && !caps.Has(authz.CapManageOwnInvestments) {
		return nil, domain.ErrForbidden
	}
	return m, nil
}

// Summary is the workspace's financial rollup.
type Summary struct {
	metrics.Snapshot
	EquityGiven        float64            `json:"equity_given"`
	IncomeByCategory   map[string]float64 `json:"income_by_category"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
}

// Summary computes the financial rollup for any member.
func (s *Service) Summary(ctx context.Context, actorID, workspaceID uuid.UUID) (*Summary, error) {
	if _, err := s.authorizer.RequireMember(ctx, actorID, workspaceID); err != nil {
		return nil, err
	}

	snap, err := s.snapshots.Snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	equity, err := s.ledger.SumEquity(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	income, err := s.ledger.SumByCategory(ctx, workspaceID, domain.LedgerIncome)
	if err != nil {
		return nil, err
	}
	expenses, err := s.ledger.SumByCategory(ctx, workspaceID, domain.LedgerExpense)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Snapshot:           snap,
		EquityGiven:        equity,
		IncomeByCategory:   income,
		ExpensesByCategory: expenses,
	}, nil
}
