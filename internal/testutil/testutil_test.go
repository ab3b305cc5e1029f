package testutil_test

import (
	"testing"

	"saku/internal/errors"
	"saku/internal/models"
	"saku/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "pockets", "categories", "records", "category_budgets", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	pocket := testutil.CreateTestPocketWithAmount(t, db, user.ID, 5000)
	if pocket.OriginalAmount != 5000 {
		t.Errorf("expected original amount 5000, got %d", pocket.OriginalAmount)
	}

	primary := testutil.CreateTestPrimaryPocket(t, db, user.ID, "daily")
	if !primary.IsPrimary() {
		t.Errorf("expected primary pocket, got %s", primary.Kind)
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryKindExpense)
	if category.Kind != models.CategoryKindExpense {
		t.Errorf("expected expense category, got %s", category.Kind)
	}

	record := testutil.CreateTestRecord(t, db, user.ID, pocket.ID, models.RecordKindIncome, 1000)
	if record.Amount != 1000 {
		t.Errorf("expected amount 1000, got %d", record.Amount)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, category.ID, 10000)
	if budget.LimitAmount != 10000 {
		t.Errorf("expected budget limit 10000, got %d", budget.LimitAmount)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrPocketNotFound, "custom message")
	testutil.AssertAppError(t, err, "POCKET_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
