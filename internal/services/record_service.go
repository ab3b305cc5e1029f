package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "saku/internal/errors"
	"saku/internal/ledger"
	"saku/internal/models"
	"saku/internal/money"
	"saku/internal/pagination"
)

// recordService handles record-related business logic.
type recordService struct {
	db       *gorm.DB
	pockets  PocketServicer
	timeline TimelineServicer
}

// NewRecordService creates a new RecordServicer.
func NewRecordService(db *gorm.DB, pockets PocketServicer, timeline TimelineServicer) RecordServicer {
	return &recordService{
		db:       db,
		pockets:  pockets,
		timeline: timeline,
	}
}

// CreateIncome creates an income record. A deduction is an immediate expense
// against the target pocket at the moment the income lands, so it is funds
// checked against the pocket's balance plus the incoming gross. Storage keeps
// the gross and the deduction separately so reports can show both.
func (s *recordService) CreateIncome(ctx context.Context, userID string, in IncomeInput) (*models.Record, error) {
	if in.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.Deduction < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "deduction cannot be negative")
	}

	pocket, err := s.pockets.GetPocketByID(userID, in.PocketID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(userID, in.CategoryID); err != nil {
		return nil, err
	}

	amount := in.Amount
	rate := decimal.NewFromInt(1)
	if in.SourceCurrency != "" && in.SourceCurrency != pocket.Currency {
		if in.ExchangeRate <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "exchange rate must be greater than zero")
		}
		rate = decimal.NewFromFloat(in.ExchangeRate)
		amount = money.Convert(in.Amount, money.Currency(in.SourceCurrency), rate, money.Currency(pocket.Currency))
	}

	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	record := &models.Record{
		UserID:         userID,
		PocketID:       pocket.ID,
		CategoryID:     in.CategoryID,
		Kind:           models.RecordKindIncome,
		Amount:         amount,
		Deduction:      in.Deduction,
		Note:           in.Note,
		Date:           in.Date,
		SourceCurrency: in.SourceCurrency,
		ExchangeRate:   rate,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Deduction > 0 {
			available, err := s.timeline.FreshAvailable(tx, pocket.ID, time.Now())
			if err != nil {
				return err
			}
			// The gross lands in the same instant the deduction leaves.
			if ins := ledger.CheckFunds(pocket.Name, available+amount, in.Deduction); ins != nil {
				return apperrors.WithDetails(apperrors.ErrInsufficientBalance, ins)
			}
		}

		if err := tx.Create(record).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.timeline.Invalidate(pocket.ID)
	return record, nil
}

// CreateExpense creates an expense record
func (s *recordService) CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Record, error) {
	if in.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	pocket, err := s.pockets.GetPocketByID(userID, in.PocketID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(userID, in.CategoryID); err != nil {
		return nil, err
	}

	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	record := &models.Record{
		UserID:     userID,
		PocketID:   pocket.ID,
		CategoryID: in.CategoryID,
		Kind:       models.RecordKindExpense,
		Amount:     in.Amount,
		Note:       in.Note,
		Date:       in.Date,
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.timeline.Invalidate(pocket.ID)
	return record, nil
}

// CreateTransfer moves money between two of the user's pockets. The source
// balance is re-read inside the database transaction, so the funds check
// holds at commit time even if the cached timeline was stale.
func (s *recordService) CreateTransfer(ctx context.Context, userID string, in TransferInput) (*models.Record, error) {
	req := ledger.TransferRequest{
		FromPocketID: in.FromPocketID,
		ToPocketID:   in.ToPocketID,
		Amount:       in.Amount,
		Date:         in.Date,
		Note:         in.Note,
	}
	if err := req.Validate(); err != nil {
		if errors.Is(err, ledger.ErrSamePocket) {
			return nil, apperrors.ErrSamePocketTransfer
		}
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	from, err := s.pockets.GetPocketByID(userID, in.FromPocketID)
	if err != nil {
		return nil, err
	}
	if _, err := s.pockets.GetPocketByID(userID, in.ToPocketID); err != nil {
		return nil, err
	}

	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	record := &models.Record{
		UserID:     userID,
		PocketID:   from.ID,
		Kind:       models.RecordKindTransfer,
		Amount:     in.Amount,
		Note:       in.Note,
		Date:       in.Date,
		ToPocketID: &in.ToPocketID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		available, err := s.timeline.FreshAvailable(tx, from.ID, time.Now())
		if err != nil {
			return err
		}
		if ins := ledger.CheckFunds(from.Name, available, in.Amount); ins != nil {
			return apperrors.WithDetails(apperrors.ErrInsufficientBalance, ins)
		}

		if err := tx.Create(record).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.timeline.Invalidate(in.FromPocketID)
	s.timeline.Invalidate(in.ToPocketID)
	return record, nil
}

// PreviewTransfer runs the pre-submit funds check without committing
// anything. The answer is advisory; CreateTransfer repeats the check on
// fresh data.
func (s *recordService) PreviewTransfer(ctx context.Context, userID string, in TransferInput) (*TransferPreview, error) {
	req := ledger.TransferRequest{
		FromPocketID: in.FromPocketID,
		ToPocketID:   in.ToPocketID,
		Amount:       in.Amount,
		Date:         in.Date,
		Note:         in.Note,
	}
	if err := req.Validate(); err != nil {
		if errors.Is(err, ledger.ErrSamePocket) {
			return nil, apperrors.ErrSamePocketTransfer
		}
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	from, err := s.pockets.GetPocketByID(userID, in.FromPocketID)
	if err != nil {
		return nil, err
	}

	available, err := s.timeline.AvailableBalance(ctx, userID, from.ID)
	if err != nil {
		return nil, err
	}

	ins := ledger.CheckFunds(from.Name, available, in.Amount)
	return &TransferPreview{
		Allowed:       ins == nil,
		Available:     available,
		Insufficiency: ins,
	}, nil
}

// GetPocketRecords retrieves a paginated, filtered list of records touching
// a specific pocket, incoming transfers included.
func (s *recordService) GetPocketRecords(userID, pocketID string, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.Record], error) {
	// First verify the pocket belongs to the user
	if _, err := s.pockets.GetPocketByID(userID, pocketID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Record{}).
		Where("user_id = ? AND (pocket_id = ? OR to_pocket_id = ?)", userID, pocketID, pocketID)
	base = applyRecordFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var records []models.Record
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(records, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyRecordFilters(q *gorm.DB, f RecordFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Kind != nil {
		q = q.Where("kind = ?", *f.Kind)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetRecordByID retrieves a record by ID for a specific user
func (s *recordService) GetRecordByID(userID, recordID string) (*models.Record, error) {
	var record models.Record
	if err := s.db.Where("id = ? AND user_id = ?", recordID, userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &record, nil
}

// DeleteRecord soft-deletes a record and drops the cached timelines of
// every pocket it touched.
func (s *recordService) DeleteRecord(userID, recordID string) error {
	record, err := s.GetRecordByID(userID, recordID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(record).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.timeline.Invalidate(record.PocketID)
	if record.ToPocketID != nil {
		s.timeline.Invalidate(*record.ToPocketID)
	}
	return nil
}

// checkCategory verifies an optional category reference belongs to the user.
func (s *recordService) checkCategory(userID string, categoryID *string) error {
	if categoryID == nil || *categoryID == "" {
		return nil
	}
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", *categoryID, userID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}
