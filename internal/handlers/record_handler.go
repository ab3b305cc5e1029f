package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "saku/internal/errors"
	"saku/internal/evaluator"
	"saku/internal/models"
	"saku/internal/money"
	"saku/internal/pagination"
	"saku/internal/services"
)

// RecordHandler handles record-related requests.
type RecordHandler struct {
	recordService services.RecordServicer
	auditService  services.AuditServicer
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(recordService services.RecordServicer, auditService services.AuditServicer) *RecordHandler {
	return &RecordHandler{recordService: recordService, auditService: auditService}
}

// EvaluateAmountRequest represents the request payload for evaluating an
// amount expression
type EvaluateAmountRequest struct {
	Expression string `json:"expression" binding:"required,max=200"`
	Currency   string `json:"currency" binding:"required,iso4217"`
}

// EvaluateAmountResponse carries the evaluated amount in both display and
// minor-unit form
type EvaluateAmountResponse struct {
	Value      string `json:"value"`
	MinorUnits int64  `json:"minor_units"`
}

// EvaluateAmount evaluates an arithmetic amount expression
// @Summary     Evaluate an amount expression
// @Description Evaluate arithmetic with chain-style percent shorthand (e.g. 50000+4000-20%)
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body EvaluateAmountRequest true "Expression and currency"
// @Success     200 {object} EvaluateAmountResponse "Evaluated amount"
// @Failure     400 {object} ErrorResponse "Invalid expression"
// @Router      /amounts/evaluate [post]
func (h *RecordHandler) EvaluateAmount(c *gin.Context) {
	var req EvaluateAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	currency := money.Currency(req.Currency)
	value, ok := evaluator.Evaluate(req.Expression, currency)
	if !ok {
		respondWithError(c, apperrors.ErrInvalidExpression)
		return
	}

	c.JSON(http.StatusOK, EvaluateAmountResponse{
		Value:      value.String(),
		MinorUnits: money.ToMinorUnits(value, currency),
	})
}

// CreateIncomeRequest represents the request payload for creating an income record
type CreateIncomeRequest struct {
	PocketID       string  `json:"pocket_id" binding:"required,uuid"`
	CategoryID     *string `json:"category_id" binding:"omitempty,uuid"`
	Amount         int64   `json:"amount" binding:"required,gt=0"`
	Deduction      int64   `json:"deduction" binding:"omitempty,gte=0"`
	Note           string  `json:"note" binding:"max=500"`
	Date           *string `json:"date"`
	SourceCurrency string  `json:"source_currency" binding:"omitempty,iso4217"`
	ExchangeRate   float64 `json:"exchange_rate" binding:"omitempty,gt=0"`
}

// CreateIncome handles the creation of an income record
// @Summary     Create an income record
// @Description Record income with an optional deduction and currency conversion
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateIncomeRequest true "Income details"
// @Success     201 {object} models.Record "Record created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Router      /records/income [post]
func (h *RecordHandler) CreateIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	record, err := h.recordService.CreateIncome(c.Request.Context(), userID, services.IncomeInput{
		PocketID:       req.PocketID,
		CategoryID:     req.CategoryID,
		Amount:         req.Amount,
		Deduction:      req.Deduction,
		Note:           req.Note,
		Date:           date,
		SourceCurrency: req.SourceCurrency,
		ExchangeRate:   req.ExchangeRate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INCOME", "record", record.ID, c.ClientIP(),
		map[string]interface{}{"amount": record.Amount, "deduction": record.Deduction, "pocket_id": record.PocketID})

	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// CreateExpenseRequest represents the request payload for creating an expense record
type CreateExpenseRequest struct {
	PocketID   string  `json:"pocket_id" binding:"required,uuid"`
	CategoryID *string `json:"category_id" binding:"omitempty,uuid"`
	Amount     int64   `json:"amount" binding:"required,gt=0"`
	Note       string  `json:"note" binding:"max=500"`
	Date       *string `json:"date"`
}

// CreateExpense handles the creation of an expense record
// @Summary     Create an expense record
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense details"
// @Success     201 {object} models.Record "Record created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Router      /records/expense [post]
func (h *RecordHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	record, err := h.recordService.CreateExpense(c.Request.Context(), userID, services.ExpenseInput{
		PocketID:   req.PocketID,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Note:       req.Note,
		Date:       date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_EXPENSE", "record", record.ID, c.ClientIP(),
		map[string]interface{}{"amount": record.Amount, "pocket_id": record.PocketID})

	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// TransferRequest represents the request payload for transfer operations
type TransferRequest struct {
	FromPocketID string  `json:"from_pocket_id" binding:"required,uuid"`
	ToPocketID   string  `json:"to_pocket_id" binding:"required,uuid"`
	Amount       int64   `json:"amount" binding:"required,gt=0"`
	Note         string  `json:"note" binding:"max=500"`
	Date         *string `json:"date"`
}

// CheckTransfer runs the pre-submit funds check for a transfer
// @Summary     Check a transfer before submitting
// @Description Advisory funds check; the commit repeats it on fresh data
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransferRequest true "Transfer details"
// @Success     200 {object} services.TransferPreview "Check result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Router      /records/transfer/check [post]
func (h *RecordHandler) CheckTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	in, err := bindTransfer(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	preview, err := h.recordService.PreviewTransfer(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// CreateTransfer handles the creation of a transfer between pockets
// @Summary     Create a transfer
// @Description Move money between two pockets; rejected when the source lacks funds
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransferRequest true "Transfer details"
// @Success     201 {object} models.Record "Transfer created"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Router      /records/transfer [post]
func (h *RecordHandler) CreateTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	in, err := bindTransfer(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	record, err := h.recordService.CreateTransfer(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSFER", "record", record.ID, c.ClientIP(),
		map[string]interface{}{"amount": record.Amount, "from": in.FromPocketID, "to": in.ToPocketID})

	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// bindTransfer parses and validates the shared transfer payload.
func bindTransfer(c *gin.Context) (services.TransferInput, error) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return services.TransferInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return services.TransferInput{}, err
	}

	return services.TransferInput{
		FromPocketID: req.FromPocketID,
		ToPocketID:   req.ToPocketID,
		Amount:       req.Amount,
		Note:         req.Note,
		Date:         date,
	}, nil
}

// GetPocketRecords handles the retrieval of records for a pocket
// @Summary     List pocket records
// @Description Get a paginated, filtered list of records touching a pocket
// @Tags        records
// @Produce     json
// @Security    BearerAuth
// @Param       id          path  string true  "Pocket ID"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       from_date   query string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date     query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Param       kind        query string false "Filter by record kind (income, expense, transfer)"
// @Param       category_id query string false "Filter by category ID"
// @Param       min_amount  query int    false "Filter by minimum amount (minor units)"
// @Param       max_amount  query int    false "Filter by maximum amount (minor units)"
// @Success     200 {object} pagination.PageResponse[models.Record] "Paginated records"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Router      /pockets/{id}/records [get]
func (h *RecordHandler) GetPocketRecords(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseRecordFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.recordService.GetPocketRecords(userID, c.Param("id"), page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseRecordFilter(c *gin.Context) (services.RecordFilter, error) {
	var filter services.RecordFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("kind"); v != "" {
		kind := models.RecordKind(v)
		switch kind {
		case models.RecordKindIncome, models.RecordKindExpense, models.RecordKindTransfer:
			filter.Kind = &kind
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid kind, must be income, expense, or transfer")
		}
	}

	if v := c.Query("category_id"); v != "" {
		catID := v
		filter.CategoryID = &catID
	}

	if v := c.Query("min_amount"); v != "" {
		amt, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid min_amount")
		}
		filter.MinAmount = &amt
	}

	if v := c.Query("max_amount"); v != "" {
		amt, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid max_amount")
		}
		filter.MaxAmount = &amt
	}

	return filter, nil
}

// GetRecordByID handles the retrieval of a single record
// @Summary     Get record by ID
// @Tags        records
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Record ID"
// @Success     200 {object} models.Record "Record details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Router      /records/{id} [get]
func (h *RecordHandler) GetRecordByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	record, err := h.recordService.GetRecordByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": record})
}

// DeleteRecord handles the deletion of a record
// @Summary     Delete a record
// @Description Delete a record; the affected timelines are rebuilt on next read
// @Tags        records
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Record ID"
// @Success     204 "Record deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Router      /records/{id} [delete]
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordID := c.Param("id")
	if err := h.recordService.DeleteRecord(userID, recordID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_RECORD", "record", recordID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// parseOptionalDate parses an optional request date, defaulting to now.
func parseOptionalDate(v *string) (time.Time, error) {
	if v == nil || *v == "" {
		return time.Now(), nil
	}
	t, err := parseFlexibleTime(*v)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}
