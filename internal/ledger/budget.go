package ledger

import (
	"math"
	"time"
)

// BudgetStatus classifies category spending against its configured limit.
type BudgetStatus string

const (
	BudgetSafe     BudgetStatus = "safe"
	BudgetWarning  BudgetStatus = "warning"
	BudgetDanger   BudgetStatus = "danger"
	BudgetExceeded BudgetStatus = "exceeded"
)

// CategoryBudget is the read-only budget configuration for one category.
type CategoryBudget struct {
	CategoryID string
	Limit      int64 // > 0, minor units
	WarningAt  int   // percent, 50-95
	Enabled    bool
	ResetDay   int // 1-31, clamped to month length
}

// Classification is the result of checking spend against a budget.
// Remaining may be negative once the limit is exceeded; for an absent or
// disabled budget Unlimited is set and Remaining is the maximum.
type Classification struct {
	Percentage float64      `json:"percentage"`
	Status     BudgetStatus `json:"status"`
	Remaining  int64        `json:"remaining"`
	Unlimited  bool         `json:"unlimited,omitempty"`
}

// Classify returns the budget status for an amount spent in the current
// reset window. Thresholds apply first-match: >= 100% exceeded, >= 90%
// danger, >= WarningAt warning. The 90 and 100 boundaries are fixed and take
// precedence over a WarningAt configured above them.
func Classify(spent int64, budget *CategoryBudget) Classification {
	if budget == nil || !budget.Enabled || budget.Limit <= 0 {
		return Classification{Status: BudgetSafe, Remaining: math.MaxInt64, Unlimited: true}
	}

	percentage := 100 * float64(spent) / float64(budget.Limit)

	var status BudgetStatus
	switch {
	case percentage >= 100:
		status = BudgetExceeded
	case percentage >= 90:
		status = BudgetDanger
	case percentage >= float64(budget.WarningAt):
		status = BudgetWarning
	default:
		status = BudgetSafe
	}

	return Classification{
		Percentage: percentage,
		Status:     status,
		Remaining:  budget.Limit - spent,
	}
}

// PeriodStart returns midnight on the most recent reset boundary at or
// before asOf. A reset day beyond the month's length clamps to its last day
// (resetDay 31 in February resets on the 28th or 29th).
func PeriodStart(asOf time.Time, resetDay int) time.Time {
	if resetDay < 1 {
		resetDay = 1
	}
	year, month, day := asOf.Date()
	boundary := clampedDate(year, month, resetDay, asOf.Location())
	if day < boundary.Day() {
		prev := asOf.AddDate(0, -1, -day+1) // any day in the previous month
		boundary = clampedDate(prev.Year(), prev.Month(), resetDay, asOf.Location())
	}
	return boundary
}

func clampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
