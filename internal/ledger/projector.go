package ledger

import "time"

// Projected returns the balance after every entry of the month regardless of
// date: the newest entry's BalanceAfter, or the opening carry-over for an
// empty timeline.
func (t Timeline) Projected() int64 {
	if len(t.Entries) == 0 {
		return t.Opening
	}
	return t.Entries[0].BalanceAfter
}

// Realtime returns the balance after the latest entry dated on or before
// asOf, at day granularity. Entries dated in the future contribute nothing.
// If no entry qualifies, the month's opening carry-over is returned.
func (t Timeline) Realtime(asOf time.Time) int64 {
	// Entries are newest-first; the first qualifying entry is the latest.
	for _, e := range t.Entries {
		if onOrBefore(e.Date, asOf) {
			return e.BalanceAfter
		}
	}
	return t.Opening
}

// Breakdown is the per-kind decomposition of a month. All totals are
// magnitudes except Original and the carry-over portions, which keep their
// sign. The identity
//
//	Original + Income - Expenses - TransferOut + TransferIn == Projected
//
// holds for every timeline.
type Breakdown struct {
	Original       int64 `json:"original"`
	CarryAsset     int64 `json:"carry_asset"`
	CarryLiability int64 `json:"carry_liability"`
	Income         int64 `json:"income"`
	Expenses       int64 `json:"expenses"`
	TransferIn     int64 `json:"transfer_in"`
	TransferOut    int64 `json:"transfer_out"`
}

// Breakdown re-sums the timeline by entry kind.
func (t Timeline) Breakdown() Breakdown {
	var b Breakdown
	for _, e := range t.Entries {
		switch e.Kind {
		case KindInitialBalance:
			b.Original += e.Amount
			if e.Opening != nil {
				b.CarryAsset += e.Opening.Asset
				b.CarryLiability += e.Opening.Liability
			}
		case KindIncome:
			b.Income += e.Amount
		case KindExpense:
			b.Expenses += -e.Amount
		case KindTransferIn:
			b.TransferIn += e.Amount
		case KindTransferOut:
			b.TransferOut += -e.Amount
		}
	}
	return b
}
