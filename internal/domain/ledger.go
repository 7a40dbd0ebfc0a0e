package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerKind distinguishes the three ledger entry variants.
type LedgerKind string

const (
	LedgerIncome     LedgerKind = "income"
	LedgerExpense    LedgerKind = "expense"
	LedgerInvestment LedgerKind = "investment"
)

// LedgerEntry is one row of a workspace's financial ledger. Investment
// entries additionally carry investor name, equity and round type.
type LedgerEntry struct {
	ID             uuid.UUID
	WorkspaceID    uuid.UUID
	Kind           LedgerKind
	Title          string
	Amount         float64
	Category       string
	EquityPct      *float64
	InvestorName   *string
	InvestmentType *string
	EntryDate      time.Time
	Notes          string
	CreatedBy      uuid.UUID
	CreatedAt      time.Time
}
