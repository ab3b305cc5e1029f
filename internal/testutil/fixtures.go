package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"saku/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPocket creates a custom pocket with a zero opening amount.
func CreateTestPocket(t *testing.T, db *gorm.DB, userID string) *models.Pocket {
	t.Helper()
	return CreateTestPocketWithAmount(t, db, userID, 0)
}

// CreateTestPocketWithAmount creates a custom pocket with the given opening
// amount in minor units.
func CreateTestPocketWithAmount(t *testing.T, db *gorm.DB, userID string, originalAmount int64) *models.Pocket {
	t.Helper()

	pocket := &models.Pocket{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Pocket %d", nextID()),
		Kind:           models.PocketKindCustom,
		OriginalAmount: originalAmount,
		Currency:       "IDR",
	}
	if err := db.Create(pocket).Error; err != nil {
		t.Fatalf("failed to create test pocket: %v", err)
	}
	return pocket
}

// CreateTestPrimaryPocket creates one of the built-in pockets.
func CreateTestPrimaryPocket(t *testing.T, db *gorm.DB, userID, name string) *models.Pocket {
	t.Helper()

	pocket := &models.Pocket{
		UserID:   userID,
		Name:     name,
		Kind:     models.PocketKindPrimary,
		Currency: "IDR",
	}
	if err := db.Create(pocket).Error; err != nil {
		t.Fatalf("failed to create test primary pocket: %v", err)
	}
	return pocket
}

// CreateTestCategory creates a category of the given kind.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, kind models.CategoryKind) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Kind:   kind,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestRecord creates a record of the given kind and amount dated now.
func CreateTestRecord(t *testing.T, db *gorm.DB, userID, pocketID string, kind models.RecordKind, amount int64) *models.Record {
	t.Helper()
	return CreateTestRecordOn(t, db, userID, pocketID, kind, amount, time.Now())
}

// CreateTestRecordOn creates a record of the given kind and amount on a
// specific date.
func CreateTestRecordOn(t *testing.T, db *gorm.DB, userID, pocketID string, kind models.RecordKind, amount int64, date time.Time) *models.Record {
	t.Helper()

	record := &models.Record{
		UserID:   userID,
		PocketID: pocketID,
		Kind:     kind,
		Amount:   amount,
		Date:     date,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create test record: %v", err)
	}
	return record
}

// CreateTestTransfer creates a transfer record between two pockets.
func CreateTestTransfer(t *testing.T, db *gorm.DB, userID, fromPocketID, toPocketID string, amount int64, date time.Time) *models.Record {
	t.Helper()

	record := &models.Record{
		UserID:     userID,
		PocketID:   fromPocketID,
		ToPocketID: &toPocketID,
		Kind:       models.RecordKindTransfer,
		Amount:     amount,
		Date:       date,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create test transfer: %v", err)
	}
	return record
}

// CreateTestBudget creates an enabled budget for the given category.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string, limitAmount int64) *models.CategoryBudget {
	t.Helper()

	budget := &models.CategoryBudget{
		UserID:      userID,
		CategoryID:  categoryID,
		LimitAmount: limitAmount,
		WarningAt:   80,
		Enabled:     true,
		ResetDay:    1,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
