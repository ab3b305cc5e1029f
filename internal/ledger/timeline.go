package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"saku/internal/money"
)

// EventKind is the kind of a raw stored record, before fan-out into entries.
type EventKind string

const (
	EventIncome   EventKind = "income"
	EventExpense  EventKind = "expense"
	EventTransfer EventKind = "transfer"
)

// Event is one raw income, expense, or transfer record as fetched from
// storage. Amount is always positive; sign is derived from the kind and,
// for transfers, from which side of the transfer the pocket is on.
type Event struct {
	ID         string
	Kind       EventKind
	PocketID   string
	ToPocketID string // transfers only
	Amount     int64  // gross, > 0
	Deduction  int64  // incomes only, >= 0
	CategoryID string
	Note       string
	Date       time.Time

	// Provenance of a converted income; Amount is already in the pocket's
	// currency.
	SourceCurrency money.Currency
	ExchangeRate   decimal.Decimal
}

// Timeline is the materialized month view for one pocket. Entries are
// ordered newest-first for presentation; the newest entry's BalanceAfter is
// the pocket's month-end (projected) balance. A timeline is regenerated, not
// mutated, whenever any underlying record changes.
type Timeline struct {
	PocketID string   `json:"pocket_id"`
	Month    MonthKey `json:"month"`
	Opening  int64    `json:"opening"`
	Entries  []Entry  `json:"entries"`
}

// BuildTimeline turns the month's raw events for one pocket into the ordered
// entry sequence with running balances. knownPockets is the set of currently
// existing pocket IDs; an event referencing any other pocket is still
// materialized, flagged IsUnknownPocket, so a dangling reference never fails
// the whole timeline.
//
// Balance propagation runs oldest-first seeded by the carry-over, then the
// sequence is reversed for presentation.
func BuildTimeline(pocketID string, month MonthKey, carry CarryOver, events []Event, knownPockets map[string]bool) Timeline {
	entries := make([]Entry, 0, len(events)+1)

	entries = append(entries, Entry{
		PocketID: pocketID,
		Kind:     KindInitialBalance,
		Date:     month.Start(),
		Amount:   carry.Total(),
		Opening: &OpeningDetail{
			FromMonth: carry.FromMonth,
			Asset:     carry.Asset,
			Liability: carry.Liability,
		},
	})

	for _, ev := range events {
		if !month.Contains(ev.Date) {
			continue
		}
		if e, ok := expandEvent(pocketID, ev, knownPockets); ok {
			entries = append(entries, e)
		}
	}

	// Oldest first; the opening entry's empty SortKey puts it ahead of any
	// same-day record.
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].Date, entries[j].Date
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return entries[i].SortKey < entries[j].SortKey
	})

	var balance int64
	for i := range entries {
		balance += entries[i].Amount
		entries[i].BalanceAfter = balance
	}

	// Reverse into presentation order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return Timeline{
		PocketID: pocketID,
		Month:    month,
		Opening:  carry.Total(),
		Entries:  entries,
	}
}

// expandEvent produces the pocket's side of a raw event. A transfer fans out
// into a transfer_out on the source and a transfer_in on the destination with
// equal and opposite amounts, so summing a transfer's entries across all
// pockets is always zero.
func expandEvent(pocketID string, ev Event, knownPockets map[string]bool) (Entry, bool) {
	e := Entry{
		ID:       ev.ID,
		PocketID: pocketID,
		Date:     ev.Date,
		SortKey:  ev.ID,
	}

	switch ev.Kind {
	case EventIncome:
		if ev.PocketID != pocketID {
			return Entry{}, false
		}
		e.Kind = KindIncome
		e.Amount = ev.Amount - ev.Deduction
		e.Income = &IncomeDetail{
			CategoryID:     ev.CategoryID,
			Note:           ev.Note,
			Gross:          ev.Amount,
			Deduction:      ev.Deduction,
			SourceCurrency: ev.SourceCurrency,
			ExchangeRate:   ev.ExchangeRate,
		}

	case EventExpense:
		if ev.PocketID != pocketID {
			return Entry{}, false
		}
		e.Kind = KindExpense
		e.Amount = -ev.Amount
		e.Expense = &ExpenseDetail{CategoryID: ev.CategoryID, Note: ev.Note}

	case EventTransfer:
		switch pocketID {
		case ev.PocketID:
			e.Kind = KindTransferOut
			e.Amount = -ev.Amount
			e.Transfer = &TransferDetail{CounterpartyPocketID: ev.ToPocketID, Note: ev.Note}
			e.IsUnknownPocket = !knownPockets[ev.ToPocketID]
		case ev.ToPocketID:
			e.Kind = KindTransferIn
			e.Amount = ev.Amount
			e.Transfer = &TransferDetail{CounterpartyPocketID: ev.PocketID, Note: ev.Note}
			e.IsUnknownPocket = !knownPockets[ev.PocketID]
		default:
			return Entry{}, false
		}

	default:
		return Entry{}, false
	}

	return e, true
}
