package ledger

import (
	"math/rand"
	"testing"
	"time"
)

func TestProjectedEmptyTimeline(t *testing.T) {
	tl := Timeline{Opening: 42000}
	if got := tl.Projected(); got != 42000 {
		t.Errorf("projected = %d, want the carry-over 42000", got)
	}
	if got := tl.Realtime(day(15)); got != 42000 {
		t.Errorf("realtime = %d, want the carry-over 42000", got)
	}
}

func TestRealtimeIgnoresFutureEntries(t *testing.T) {
	carry := NewCarryOver(august.Prev(), "p1", 100000)
	events := []Event{
		{ID: "r1", Kind: EventExpense, PocketID: "p1", Amount: 30000, Date: day(5)},
		{ID: "r2", Kind: EventIncome, PocketID: "p1", Amount: 50000, Date: day(10)},
		{ID: "r3", Kind: EventTransfer, PocketID: "p1", ToPocketID: "p2", Amount: 20000, Date: day(20)},
	}
	tl := BuildTimeline("p1", august, carry, events, known("p1", "p2"))

	if got := tl.Realtime(day(12)); got != 120000 {
		t.Errorf("realtime(day 12) = %d, want 120000", got)
	}
	if got := tl.Realtime(day(4)); got != 100000 {
		t.Errorf("realtime(day 4) = %d, want the opening 100000", got)
	}
	// Before the month entirely: nothing qualifies, fall back to opening.
	if got := tl.Realtime(time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC)); got != 100000 {
		t.Errorf("realtime before month = %d, want 100000", got)
	}
	// Day granularity: any time of day on the entry's date counts.
	if got := tl.Realtime(time.Date(2026, time.August, 20, 0, 0, 1, 0, time.UTC)); got != 100000 {
		t.Errorf("realtime(day 20 00:00:01) = %d, want 100000", got)
	}
}

// Whenever every entry is dated on or before asOf, the two balance views
// must agree exactly.
func TestRealtimeEqualsProjectedWithoutFutureEntries(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		carry := NewCarryOver(august.Prev(), "p1", rng.Int63n(200000)-100000)
		n := rng.Intn(12)
		events := make([]Event, 0, n)
		maxDay := 1
		for i := 0; i < n; i++ {
			d := 1 + rng.Intn(28)
			if d > maxDay {
				maxDay = d
			}
			kind := []EventKind{EventIncome, EventExpense}[rng.Intn(2)]
			events = append(events, Event{
				ID:       string(rune('a' + i)),
				Kind:     kind,
				PocketID: "p1",
				Amount:   1 + rng.Int63n(10000),
				Date:     day(d),
			})
		}
		tl := BuildTimeline("p1", august, carry, events, known("p1"))
		if got, want := tl.Realtime(day(maxDay)), tl.Projected(); got != want {
			t.Fatalf("trial %d: realtime %d != projected %d", trial, got, want)
		}
	}
}

func TestBreakdownIdentity(t *testing.T) {
	carry := NewCarryOver(august.Prev(), "p1", 100000)
	events := []Event{
		{ID: "r1", Kind: EventIncome, PocketID: "p1", Amount: 50000, Deduction: 5000, Date: day(3)},
		{ID: "r2", Kind: EventExpense, PocketID: "p1", Amount: 20000, Date: day(6)},
		{ID: "r3", Kind: EventTransfer, PocketID: "p1", ToPocketID: "p2", Amount: 10000, Date: day(9)},
		{ID: "r4", Kind: EventTransfer, PocketID: "p3", ToPocketID: "p1", Amount: 4000, Date: day(11)},
	}
	tl := BuildTimeline("p1", august, carry, events, known("p1", "p2", "p3"))

	b := tl.Breakdown()
	if b.Original != 100000 {
		t.Errorf("original = %d, want 100000", b.Original)
	}
	if b.Income != 45000 {
		t.Errorf("income = %d, want net 45000", b.Income)
	}
	if b.Expenses != 20000 {
		t.Errorf("expenses = %d, want 20000", b.Expenses)
	}
	if b.TransferOut != 10000 || b.TransferIn != 4000 {
		t.Errorf("transfers = out %d in %d, want 10000/4000", b.TransferOut, b.TransferIn)
	}

	got := b.Original + b.Income - b.Expenses - b.TransferOut + b.TransferIn
	if got != tl.Projected() {
		t.Errorf("breakdown identity: %d != projected %d", got, tl.Projected())
	}
}

func TestBreakdownCarrySplit(t *testing.T) {
	tl := BuildTimeline("p1", august, NewCarryOver(august.Prev(), "p1", -3000), nil, known("p1"))
	b := tl.Breakdown()
	if b.CarryAsset != 0 || b.CarryLiability != -3000 {
		t.Errorf("carry asset/liability = %d/%d, want 0/-3000", b.CarryAsset, b.CarryLiability)
	}
}
