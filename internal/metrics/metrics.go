// Package metrics derives financial and progress figures for a workspace
// from its ledger and roster. Nothing here is stored: every snapshot is
// recomputed from the current data.
package metrics

// Inputs are the aggregates a snapshot is derived from.
type Inputs struct {
	IncomeTotal     float64
	ExpenseTotal    float64
	InvestmentTotal float64
	// MonthlyExpenses holds the expense sum per calendar month, for the
	// months that actually have entries.
	MonthlyExpenses []float64
	TeamSize        int
	MilestonesTotal int
	MilestonesDone  int
}

// Snapshot is the derived view of a workspace's finances and progress.
type Snapshot struct {
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	TotalRaised   float64 `json:"total_raised"`
	Balance       float64 `json:"balance"`
	MonthlyBurn   float64 `json:"monthly_burn"`
	// RunwayMonths is nil when the burn rate is zero: with no spending
	// there is no finite runway, and the JSON field renders as null.
	RunwayMonths        *float64 `json:"runway_months"`
	TeamSize            int      `json:"team_size"`
	MilestonesTotal     int      `json:"milestones_total"`
	MilestonesCompleted int      `json:"milestones_completed"`
	MilestoneCompletion float64  `json:"milestone_completion"`
}

// Compute derives a snapshot from aggregates. It is pure: no I/O, no
// clock, same inputs always give the same snapshot.
func Compute(in Inputs) Snapshot {
	s := Snapshot{
		TotalIncome:         in.IncomeTotal,
		TotalExpenses:       in.ExpenseTotal,
		TotalRaised:         in.InvestmentTotal,
		Balance:             in.IncomeTotal + in.InvestmentTotal - in.ExpenseTotal,
		TeamSize:            in.TeamSize,
		MilestonesTotal:     in.MilestonesTotal,
		MilestonesCompleted: in.MilestonesDone,
	}

	if len(in.MonthlyExpenses) > 0 {
		var total float64
		for _, m := range in.MonthlyExpenses {
			total += m
		}
		s.MonthlyBurn = total / float64(len(in.MonthlyExpenses))
	}

	if s.MonthlyBurn > 0 {
		runway := s.Balance / s.MonthlyBurn
		s.RunwayMonths = &runway
	}

	if in.MilestonesTotal > 0 {
		s.MilestoneCompletion = float64(in.MilestonesDone) / float64(in.MilestonesTotal)
	}

	return s
}
