package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "saku/internal/errors"
	"saku/internal/services"
)

// BudgetHandler handles category budget requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// SetBudgetRequest represents the request payload for setting a category budget.
type SetBudgetRequest struct {
	LimitAmount int64 `json:"limit_amount" binding:"required,gt=0"`
	WarningAt   *int  `json:"warning_at" binding:"omitempty,gte=50,lte=95"`
	ResetDay    *int  `json:"reset_day" binding:"omitempty,gte=1,lte=31"`
	Enabled     *bool `json:"enabled"`
}

// SetBudget creates or replaces the budget for a category.
// @Summary     Set a category budget
// @Description Set the monthly spending limit for a category; replaces any existing budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Category ID"
// @Param       request body SetBudgetRequest true "Budget details"
// @Success     200 {object} models.CategoryBudget "Budget set"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id}/budget [put]
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	warningAt := 80
	if req.WarningAt != nil {
		warningAt = *req.WarningAt
	}
	resetDay := 1
	if req.ResetDay != nil {
		resetDay = *req.ResetDay
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	categoryID := c.Param("id")
	budget, err := h.budgetService.SetBudget(userID, categoryID, req.LimitAmount, warningAt, resetDay, enabled)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SET_BUDGET", "category_budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"category_id": categoryID, "limit_amount": budget.LimitAmount})

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetBudget retrieves the budget for a category.
// @Summary     Get a category budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} models.CategoryBudget "Budget details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /categories/{id}/budget [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudget(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget removes the budget from a category.
// @Summary     Delete a category budget
// @Description Remove the spending limit; the category becomes unlimited
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     204 "Budget deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /categories/{id}/budget [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID := c.Param("id")
	if err := h.budgetService.DeleteBudget(userID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "category_budget", categoryID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// GetCategoryStatus returns the budget status of a single category.
// @Summary     Get budget status for a category
// @Description Current-period spend, remaining amount, and threshold status
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string true  "Category ID"
// @Param       as_of query string false "Status as of this date (RFC3339 or YYYY-MM-DD, default now)"
// @Success     200 {object} services.CategoryStatus "Budget status"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id}/budget/status [get]
func (h *BudgetHandler) GetCategoryStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	asOf, err := parseAsOfParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.budgetService.GetCategoryStatus(userID, c.Param("id"), asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GetAllStatuses returns the budget status of every budgeted category.
// @Summary     Get all budget statuses
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       as_of query string false "Status as of this date (RFC3339 or YYYY-MM-DD, default now)"
// @Success     200 {array} services.CategoryStatus "Budget statuses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets/status [get]
func (h *BudgetHandler) GetAllStatuses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	asOf, err := parseAsOfParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	statuses, err := h.budgetService.GetAllStatuses(userID, asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

// parseAsOfParam reads the optional as_of query param, defaulting to now.
func parseAsOfParam(c *gin.Context) (time.Time, error) {
	v := c.Query("as_of")
	if v == "" {
		return time.Now(), nil
	}
	t, err := parseFlexibleTime(v)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid as_of format, use RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}
