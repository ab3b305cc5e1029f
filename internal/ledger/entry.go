package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"saku/internal/money"
)

// EntryKind discriminates the balance-affecting event an Entry represents.
type EntryKind string

const (
	KindIncome         EntryKind = "income"
	KindExpense        EntryKind = "expense"
	KindTransferIn     EntryKind = "transfer_in"
	KindTransferOut    EntryKind = "transfer_out"
	KindInitialBalance EntryKind = "initial_balance"
)

// Entry is one immutable ledger row for one pocket. Amount is the signed net
// effect on the pocket's balance in minor units, so the running invariant is
// simply BalanceAfter[i] = BalanceAfter[i-1] + Amount[i]. Exactly one of the
// detail pointers is set, matching Kind; each kind carries only the fields it
// needs.
type Entry struct {
	ID           string    `json:"id"`
	PocketID     string    `json:"pocket_id"`
	Kind         EntryKind `json:"kind"`
	Date         time.Time `json:"date"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`

	// Set when the entry references a pocket that no longer exists. The
	// entry still renders; it is never dropped.
	IsUnknownPocket bool `json:"is_unknown_pocket,omitempty"`

	// SortKey is the stable secondary ordering key within a day (the
	// originating record's time-ordered ID). Empty only for the opening
	// entry, which always sorts first.
	SortKey string `json:"-"`

	Income   *IncomeDetail   `json:"income,omitempty"`
	Expense  *ExpenseDetail  `json:"expense,omitempty"`
	Transfer *TransferDetail `json:"transfer,omitempty"`
	Opening  *OpeningDetail  `json:"opening,omitempty"`
}

// IncomeDetail keeps both the gross amount and the deduction so gross and net
// breakdowns are reproducible from one entry. Entry.Amount is the net
// (Gross - Deduction).
type IncomeDetail struct {
	CategoryID     string          `json:"category_id,omitempty"`
	Note           string          `json:"note,omitempty"`
	Gross          int64           `json:"gross"`
	Deduction      int64           `json:"deduction,omitempty"`
	SourceCurrency money.Currency  `json:"source_currency,omitempty"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate,omitempty"`
}

type ExpenseDetail struct {
	CategoryID string `json:"category_id,omitempty"`
	Note       string `json:"note,omitempty"`
}

type TransferDetail struct {
	CounterpartyPocketID string `json:"counterparty_pocket_id"`
	Note                 string `json:"note,omitempty"`
}

// OpeningDetail is the carry-over breakdown on an initial_balance entry. A
// positive ending balance from the prior month carries as an asset, a
// negative one as a liability; the two are surfaced separately, never netted
// silently.
type OpeningDetail struct {
	FromMonth MonthKey `json:"from_month"`
	Asset     int64    `json:"asset"`
	Liability int64    `json:"liability"`
}

// CarryOver is a pocket's ending balance from one month, split by sign for
// the next month's opening entry.
type CarryOver struct {
	FromMonth MonthKey
	PocketID  string
	Asset     int64 // >= 0
	Liability int64 // <= 0
}

// NewCarryOver splits an ending balance into its asset and liability
// portions.
func NewCarryOver(from MonthKey, pocketID string, ending int64) CarryOver {
	c := CarryOver{FromMonth: from, PocketID: pocketID}
	if ending >= 0 {
		c.Asset = ending
	} else {
		c.Liability = ending
	}
	return c
}

// Total returns the opening balance the carry-over contributes.
func (c CarryOver) Total() int64 {
	return c.Asset + c.Liability
}
