package ledger

import (
	"math"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	budget := &CategoryBudget{CategoryID: "c1", Limit: 100000, WarningAt: 70, Enabled: true, ResetDay: 1}

	cases := []struct {
		name       string
		spent      int64
		wantStatus BudgetStatus
	}{
		{"zero_spend", 0, BudgetSafe},
		{"below_warning", 69999, BudgetSafe},
		{"at_warning_threshold", 70000, BudgetWarning},
		{"between_warning_and_danger", 85000, BudgetWarning},
		{"at_danger_threshold", 90000, BudgetDanger},
		{"just_below_limit", 99999, BudgetDanger},
		{"at_limit", 100000, BudgetExceeded},
		{"over_limit", 150000, BudgetExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.spent, budget)
			if got.Status != tc.wantStatus {
				t.Errorf("status = %s, want %s", got.Status, tc.wantStatus)
			}
			if got.Remaining != budget.Limit-tc.spent {
				t.Errorf("remaining = %d, want %d", got.Remaining, budget.Limit-tc.spent)
			}
		})
	}
}

func TestClassifyFixedBoundariesDominate(t *testing.T) {
	// WarningAt configured above 90 cannot displace the fixed 90% danger
	// boundary.
	budget := &CategoryBudget{CategoryID: "c1", Limit: 1000, WarningAt: 95, Enabled: true, ResetDay: 1}

	if got := Classify(900, budget); got.Status != BudgetDanger {
		t.Errorf("90%% with warningAt=95: status = %s, want danger", got.Status)
	}
	if got := Classify(950, budget); got.Status != BudgetDanger {
		t.Errorf("95%% with warningAt=95: status = %s, want danger", got.Status)
	}
	if got := Classify(1000, budget); got.Status != BudgetExceeded {
		t.Errorf("100%%: status = %s, want exceeded", got.Status)
	}
}

func TestClassifyAbsentOrDisabled(t *testing.T) {
	for _, tc := range []struct {
		name   string
		budget *CategoryBudget
	}{
		{"absent", nil},
		{"disabled", &CategoryBudget{CategoryID: "c1", Limit: 1000, WarningAt: 70, Enabled: false}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(500, tc.budget)
			if got.Status != BudgetSafe {
				t.Errorf("status = %s, want safe", got.Status)
			}
			if got.Percentage != 0 {
				t.Errorf("percentage = %f, want 0", got.Percentage)
			}
			if !got.Unlimited || got.Remaining != math.MaxInt64 {
				t.Errorf("expected unlimited remaining, got %+v", got)
			}
		})
	}
}

func TestClassifyNegativeRemaining(t *testing.T) {
	budget := &CategoryBudget{CategoryID: "c1", Limit: 1000, WarningAt: 70, Enabled: true}
	got := Classify(1500, budget)
	if got.Remaining != -500 {
		t.Errorf("remaining = %d, want -500", got.Remaining)
	}
	if got.Percentage != 150 {
		t.Errorf("percentage = %f, want 150", got.Percentage)
	}
}

func TestPeriodStart(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		name     string
		asOf     time.Time
		resetDay int
		want     time.Time
	}{
		{
			"after_reset_day",
			time.Date(2026, time.March, 20, 10, 0, 0, 0, loc), 15,
			time.Date(2026, time.March, 15, 0, 0, 0, 0, loc),
		},
		{
			"before_reset_day",
			time.Date(2026, time.March, 5, 0, 0, 0, 0, loc), 15,
			time.Date(2026, time.February, 15, 0, 0, 0, 0, loc),
		},
		{
			"on_reset_day",
			time.Date(2026, time.March, 15, 0, 0, 0, 0, loc), 15,
			time.Date(2026, time.March, 15, 0, 0, 0, 0, loc),
		},
		{
			"clamped_to_february",
			time.Date(2026, time.February, 28, 0, 0, 0, 0, loc), 31,
			time.Date(2026, time.February, 28, 0, 0, 0, 0, loc),
		},
		{
			"clamped_previous_month",
			time.Date(2026, time.February, 10, 0, 0, 0, 0, loc), 31,
			time.Date(2026, time.January, 31, 0, 0, 0, 0, loc),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PeriodStart(tc.asOf, tc.resetDay)
			if !got.Equal(tc.want) {
				t.Errorf("PeriodStart = %v, want %v", got, tc.want)
			}
		})
	}
}
