package services

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"saku/internal/cache"
	apperrors "saku/internal/errors"
	"saku/internal/ledger"
	"saku/internal/models"
	"saku/internal/money"
)

// timelineService builds monthly pocket timelines and the balances derived
// from them. Fetches go through an LRU cache and a singleflight group so a
// burst of requests for the same pocket-month hits storage once.
type timelineService struct {
	db           *gorm.DB
	pockets      PocketServicer
	store        *cache.TimelineStore
	group        singleflight.Group
	fetchTimeout time.Duration
}

// NewTimelineService creates a new TimelineServicer.
func NewTimelineService(db *gorm.DB, pockets PocketServicer, store *cache.TimelineStore, fetchTimeout time.Duration) TimelineServicer {
	return &timelineService{
		db:           db,
		pockets:      pockets,
		store:        store,
		fetchTimeout: fetchTimeout,
	}
}

// GetTimeline returns the materialized timeline for one pocket and month.
// A storage failure surfaces as ErrTimelineUnavailable, never as an empty
// timeline that a caller could mistake for an authoritative zero balance.
func (s *timelineService) GetTimeline(ctx context.Context, userID, pocketID string, month ledger.MonthKey) (*ledger.Timeline, error) {
	pocket, err := s.pockets.GetPocketByID(userID, pocketID)
	if err != nil {
		return nil, err
	}

	key := cache.Key{PocketID: pocketID, Month: month}
	if t, ok := s.store.Get(key); ok {
		return &t, nil
	}

	v, err, _ := s.group.Do(key.String(), func() (interface{}, error) {
		// Re-check under the flight: a concurrent caller may have
		// populated the cache while we queued.
		if t, ok := s.store.Get(key); ok {
			return t, nil
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()

		t, err := s.fetchTimeline(fetchCtx, pocket, month)
		if err != nil {
			return nil, err
		}

		s.store.Put(key, *t)
		return *t, nil
	})
	if err != nil {
		return nil, err
	}

	t := v.(ledger.Timeline)
	return &t, nil
}

// fetchTimeline loads the carry-over and the month's events from storage and
// folds them into a timeline.
func (s *timelineService) fetchTimeline(ctx context.Context, pocket *models.Pocket, month ledger.MonthKey) (*ledger.Timeline, error) {
	db := s.db.WithContext(ctx)

	// Carry-over is derived, not stored: the pocket's opening amount plus
	// the net of every record dated before the month starts. This keeps
	// the opening entry consistent with the prior month's projected
	// balance by construction.
	net, err := netOfRecords(db, pocket.ID, month.Start())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTimelineUnavailable, err)
	}
	carry := ledger.NewCarryOver(month.Prev(), pocket.ID, pocket.OriginalAmount+net)

	var records []models.Record
	if err := db.
		Where("(pocket_id = ? OR to_pocket_id = ?) AND date >= ? AND date < ?",
			pocket.ID, pocket.ID, month.Start(), month.Next().Start()).
		Order("date ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTimelineUnavailable, err)
	}

	var pocketIDs []string
	if err := db.Model(&models.Pocket{}).
		Where("user_id = ?", pocket.UserID).
		Pluck("id", &pocketIDs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTimelineUnavailable, err)
	}
	known := make(map[string]bool, len(pocketIDs))
	for _, id := range pocketIDs {
		known[id] = true
	}

	events := make([]ledger.Event, 0, len(records))
	for i := range records {
		events = append(events, recordToEvent(&records[i]))
	}

	t := ledger.BuildTimeline(pocket.ID, month, carry, events, known)
	return &t, nil
}

// recordToEvent maps a stored record onto the raw event the timeline
// builder consumes.
func recordToEvent(r *models.Record) ledger.Event {
	ev := ledger.Event{
		ID:       r.ID,
		PocketID: r.PocketID,
		Amount:   r.Amount,
		Note:     r.Note,
		Date:     r.Date,
	}
	if r.CategoryID != nil {
		ev.CategoryID = *r.CategoryID
	}

	switch r.Kind {
	case models.RecordKindIncome:
		ev.Kind = ledger.EventIncome
		ev.Deduction = r.Deduction
		ev.SourceCurrency = money.Currency(r.SourceCurrency)
		ev.ExchangeRate = r.ExchangeRate
	case models.RecordKindExpense:
		ev.Kind = ledger.EventExpense
	case models.RecordKindTransfer:
		ev.Kind = ledger.EventTransfer
		if r.ToPocketID != nil {
			ev.ToPocketID = *r.ToPocketID
		}
	}
	return ev
}

// netOfRecords sums the signed balance effect of every record touching the
// pocket dated strictly before the cutoff.
func netOfRecords(db *gorm.DB, pocketID string, before time.Time) (int64, error) {
	// Own-side rows: incomes add net of deduction; expenses and outgoing
	// transfers subtract the full amount.
	var own int64
	if err := db.Model(&models.Record{}).
		Select("COALESCE(SUM(CASE WHEN kind = ? THEN amount - deduction ELSE -amount END), 0)", models.RecordKindIncome).
		Where("pocket_id = ? AND date < ?", pocketID, before).
		Scan(&own).Error; err != nil {
		return 0, err
	}

	var inbound int64
	if err := db.Model(&models.Record{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("to_pocket_id = ? AND kind = ? AND date < ?", pocketID, models.RecordKindTransfer, before).
		Scan(&inbound).Error; err != nil {
		return 0, err
	}

	return own + inbound, nil
}

// GetBalances returns the projected and realtime balance for every pocket
// the user owns, in display order.
func (s *timelineService) GetBalances(ctx context.Context, userID string, month ledger.MonthKey) ([]BalanceView, error) {
	var pockets []models.Pocket
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sort_order ASC").
		Find(&pockets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTimelineUnavailable, err)
	}

	now := time.Now()
	views := make([]BalanceView, 0, len(pockets))
	for i := range pockets {
		t, err := s.GetTimeline(ctx, userID, pockets[i].ID, month)
		if err != nil {
			return nil, err
		}
		views = append(views, BalanceView{
			PocketID:  pockets[i].ID,
			Name:      pockets[i].Name,
			Currency:  pockets[i].Currency,
			Projected: t.Projected(),
			Realtime:  t.Realtime(now),
		})
	}
	return views, nil
}

// AvailableBalance returns the pocket's spendable balance right now: the
// realtime balance of the current month's timeline.
func (s *timelineService) AvailableBalance(ctx context.Context, userID, pocketID string) (int64, error) {
	now := time.Now()
	t, err := s.GetTimeline(ctx, userID, pocketID, ledger.MonthOf(now))
	if err != nil {
		return 0, err
	}
	return t.Realtime(now), nil
}

// FreshAvailable recomputes the spendable balance from storage inside the
// caller's database transaction. Commit paths use it so the final funds
// check never trusts a possibly stale cached timeline.
func (s *timelineService) FreshAvailable(tx *gorm.DB, pocketID string, asOf time.Time) (int64, error) {
	var pocket models.Pocket
	if err := tx.Where("id = ?", pocketID).First(&pocket).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Realtime is day-granular: everything dated on or before asOf counts.
	cutoff := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	net, err := netOfRecords(tx, pocketID, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return pocket.OriginalAmount + net, nil
}

// Invalidate drops every cached timeline for the pocket. Called whenever a
// record touching the pocket is created or deleted.
func (s *timelineService) Invalidate(pocketID string) {
	s.store.InvalidatePocket(pocketID)
}
