package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "saku/internal/errors"
	"saku/internal/ledger"
	"saku/internal/models"
)

// budgetService handles category budget business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// SetBudget creates or replaces the budget for a category. A category holds
// at most one budget.
func (s *budgetService) SetBudget(userID, categoryID string, limitAmount int64, warningAt, resetDay int, enabled bool) (*models.CategoryBudget, error) {
	if limitAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit amount cannot be negative")
	}
	if warningAt < 50 || warningAt > 95 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "warning threshold must be between 50 and 95")
	}
	if resetDay < 1 || resetDay > 31 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "reset day must be between 1 and 31")
	}

	// Verify category exists and belongs to user
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budget models.CategoryBudget
	err := s.db.Where("user_id = ? AND category_id = ?", userID, categoryID).First(&budget).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"limit_amount": limitAmount,
			"warning_at":   warningAt,
			"reset_day":    resetDay,
			"enabled":      enabled,
		}
		if err := s.db.Model(&budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		budget = models.CategoryBudget{
			UserID:      userID,
			CategoryID:  categoryID,
			LimitAmount: limitAmount,
			WarningAt:   warningAt,
			ResetDay:    resetDay,
			Enabled:     enabled,
		}
		if err := s.db.Create(&budget).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	default:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &budget, nil
}

// GetBudget returns the budget attached to a category, if any.
func (s *budgetService) GetBudget(userID, categoryID string) (*models.CategoryBudget, error) {
	var budget models.CategoryBudget
	if err := s.db.Preload("Category").
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// DeleteBudget soft-deletes a category's budget.
func (s *budgetService) DeleteBudget(userID, categoryID string) error {
	budget, err := s.GetBudget(userID, categoryID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetCategoryStatus reports budget consumption for one category over its
// current reset period. A category without an enabled budget is reported as
// unlimited, never as an error.
func (s *budgetService) GetCategoryStatus(userID, categoryID string, asOf time.Time) (*CategoryStatus, error) {
	// Verify category exists and belongs to user
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budget *models.CategoryBudget
	var stored models.CategoryBudget
	err := s.db.Where("user_id = ? AND category_id = ?", userID, categoryID).First(&stored).Error
	switch {
	case err == nil:
		budget = &stored
	case errors.Is(err, gorm.ErrRecordNotFound):
		budget = nil
	default:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.statusFor(userID, categoryID, budget, asOf)
}

// GetAllStatuses reports consumption for every budgeted category the user
// has.
func (s *budgetService) GetAllStatuses(userID string, asOf time.Time) ([]CategoryStatus, error) {
	var budgets []models.CategoryBudget
	if err := s.db.Where("user_id = ?", userID).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	statuses := make([]CategoryStatus, 0, len(budgets))
	for i := range budgets {
		st, err := s.statusFor(userID, budgets[i].CategoryID, &budgets[i], asOf)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *st)
	}
	return statuses, nil
}

// statusFor sums period spending and classifies it against the budget.
func (s *budgetService) statusFor(userID, categoryID string, budget *models.CategoryBudget, asOf time.Time) (*CategoryStatus, error) {
	resetDay := 1
	if budget != nil {
		resetDay = budget.ResetDay
	}
	periodStart := ledger.PeriodStart(asOf, resetDay)

	var spent int64
	err := s.db.Model(&models.Record{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND kind = ? AND date >= ? AND date <= ?",
			userID, categoryID, models.RecordKindExpense, periodStart, asOf).
		Scan(&spent).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cb *ledger.CategoryBudget
	if budget != nil {
		cb = &ledger.CategoryBudget{
			CategoryID: budget.CategoryID,
			Limit:      budget.LimitAmount,
			WarningAt:  budget.WarningAt,
			Enabled:    budget.Enabled,
			ResetDay:   budget.ResetDay,
		}
	}
	cls := ledger.Classify(spent, cb)

	status := &CategoryStatus{
		CategoryID:  categoryID,
		Spent:       spent,
		Remaining:   cls.Remaining,
		Percentage:  cls.Percentage,
		Status:      cls.Status,
		Unlimited:   cls.Unlimited,
		PeriodStart: periodStart,
	}
	if budget != nil {
		status.Limit = budget.LimitAmount
	}
	return status, nil
}
