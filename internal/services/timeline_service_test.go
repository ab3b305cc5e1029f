package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"saku/internal/cache"
	"saku/internal/ledger"
	"saku/internal/models"
	"saku/internal/testutil"
)

func newTimelineStack(db *gorm.DB) (PocketServicer, TimelineServicer) {
	pockets := NewPocketService(db)
	store := cache.NewTimelineStore(16, time.Minute)
	return pockets, NewTimelineService(db, pockets, store, 5*time.Second)
}

func utcDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestGetTimeline(t *testing.T) {
	august := ledger.MonthKey{Year: 2025, Month: time.August}

	t.Run("month_view_worked_example", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, timelines := newTimelineStack(db)
		user := testutil.CreateTestUser(t, db)
		pocket := testutil.CreateTestPocketWithAmount(t, db, user.ID, 100000)
		other := testutil.CreateTestPocket(t, db, user.ID)

		testutil.CreateTestRecordOn(t, db, user.ID, pocket.ID, models.RecordKindExpense, 30000, utcDay(2025, time.August, 5))
		testutil.CreateTestRecordOn(t, db, user.ID, pocket.ID, models.RecordKindIncome, 50000, utcDay(2025, time.August, 10))
		testutil.CreateTestTransfer(t, db, user.ID, pocket.ID, other.ID, 20000, utcDay(2025, time.August, 20))

		timeline, err := timelines.GetTimeline(context.Background(), user.ID, pocket.ID, august)
		testutil.AssertNoError(t, err)

		if timeline.Opening != 100000 {
			t.Errorf("expected opening 100000, got %d", timeline.Opening)
		}
		if got := timeline.Projected(); got != 100000 {
			t.Errorf("expected projected 100000, got %d", got)
		}
		if got := timeline.Realtime(utcDay(2025, time.August, 12)); got != 120000 {
			t.Errorf("expected realtime on the 12th to be 120000, got %d", got)
		}

		// 3 records plus the opening entry, newest first.
		if len(timeline.Entries) != 4 {
			t.Fatalf("expected 4 entries, got %d", len(timeline.Entries))
		}
		if timeline.Entries[0].Kind != ledger.KindTransferOut {
			t.Errorf("expected newest entry to be the transfer, got %s", timeline.Entries[0].Kind)
		}
		if timeline.Entries[len(timeline.Entries)-1].Kind != ledger.KindInitialBalance {
			t.Errorf("expected oldest entry to be the opening, got %s", timeline.Entries[len(timeline.Entries)-1].Kind)
		}
	})

	t.Run("empty_month_has_only_opening", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, timelines := newTimelineStack(db)
		user := testutil.CreateTestUser(t, db)
		pocket := testutil.CreateTestPocketWithAmount(t, db, user.ID, 7500)

		timeline, err := timelines.GetTimeline(context.Background(), user.ID, pocket.ID, august)
		testutil.AssertNoError(t, err)

		if len(timeline.Entries) != 1 {
			t.Fatalf("expected only the opening entry, got %d entries", len(timeline.Entries))
		}
		if got := timeline.Projected(); got != 7500 {
			t.Errorf("expected projected to equal the opening 7500, got %d", got)
		}
	})

	t.Run("carry_over_matches_prior_month_projection", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, timelines := newTimelineStack(db)
		user := testutil.CreateTestUser(t, db)
		pocket := testutil.CreateTestPocketWithAmount(t, db, user.ID, 40000)

		testutil.CreateTestRecordOn(t, db, user.ID, pocket.ID, models.RecordKindIncome, 25000, utcDay(2025, time.July, 8))
		testutil.CreateTestRecordOn(t, db, user.ID, pocket.ID, models.RecordKindExpense, 10000, utcDay(2025, time.July, 20))

		july, err := timelines.GetTimeline(context.Background(), user.ID, pocket.ID, ledger.MonthKey{Year: 2025, Month: time.July})
		testutil.AssertNoError(t, err)
		augustView, err := timelines.GetTimeline(context.Background(), user.ID, pocket.ID, august)
		testutil.AssertNoError(t, err)

		if july.Projected() != augustView.Opening {
			t.Errorf("august opening %d should equal july projection %d", augustView.Opening, july.Projected())
		}

		opening := augustView.Entries[len(augustView.Entries)-1]
		if opening.Opening == nil {
			t.Fatal("expected opening detail on the initial balance entry")
		}
		if opening.Opening.Asset != 55000 || opening.Opening.Liability != 0 {
			t.Errorf("expected asset 55000 liability 0, got %d and %d", opening.Opening.Asset, opening.Opening.Liability)
		}
	})

	t.Run("negative_carry_over_surfaces_as_liability", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, timelines := newTimelineStack(db)
		user := testutil.CreateTestUser(t, db)
		pocket := testutil.CreateTestPocket(t, db, user.ID)

		testutil.CreateTestRecordOn(t, db, user.ID, pocket.ID, models.RecordKindExpense, 15000, utcDay(2025, time.July, 3))

		timeline, err := timelines.GetTimeline(context.Background(), user.ID, pocket.ID, august)
		testutil.AssertNoError(t, err)

		opening := timeline.Entries[len(timeline.Entries)-1]
		if opening.Opening.Liability != -15000 {
			t.Errorf("expected liability -15000, got %d", opening.Opening.Liability)
		}
		if opening.Opening.Asset != 0 {
			t.Errorf("expected asset 0, got %d", opening.Opening.Asset)
		}
	})

	t.Run("transfer_to_deleted_pocket_is_flagged_not_dropped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pockets, timelines := newTimelineStack(db)
		user := testutil.CreateTestUser(t, db)
		pocket := testutil.CreateTestPocketWithAmount(t, db, user.ID, 50000)
		gone := testutil.CreateTestPocket(t, db, user.ID)

		testutil.CreateTestTransfer(t, db, user.ID, pocket.ID, gone.ID, 5000, utcDay(2025, time.August, 4))
		testutil.AssertNoError(t, pockets.DeletePocket(user.ID, gone.ID))

		timeline, err := timelines.GetTimeline(context.Background(), user.ID, pocket.ID, august)
		testutil.AssertNoError(t, err)

		var found bool
		for _, e := range timeline.Entries {
			if e.Kind == ledger.KindTransferOut {
				found = true
				if !e.IsUnknownPocket {
					t.Error("expected transfer to deleted pocket to be flagged")
				}
			}
		}
		if !found {
			t.Fatal("transfer entry should still appear in the timeline")
		}
		if got := timeline.Projected(); got != 45000 {
			t.Errorf("expected projected 45000, got %d", got)
		}
	})

	t.Run("transfer_fan_out_conserves_across_pockets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, timelines := newTimelineStack(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestPocketWithAmount(t, db, user.ID, 30000)
		to := testutil.CreateTestPocket(t, db, user.ID)

		testutil.CreateTestTransfer(t, db, user.ID, from.ID, to.ID, 12000, utcDay(2025, time.August, 9))

		fromView, err := timelines.GetTimeline(context.Background(), user.ID, from.ID, august)
		testutil.AssertNoError(t, err)
		toView, err := timelines.GetTimeline(context.Background(), user.ID, to.ID, august)
		testutil.AssertNoError(t, err)

		if got := fromView.Projected(); got != 18000 {
			t.Errorf("expected source projected 18000, got %d", got)
		}
		if got := toView.Projected(); got != 12000 {
			t.Errorf("expected destination projected 12000, got %d", got)
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, timelines := newTimelineStack(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		pocket := testutil.CreateTestPocket(t, db, user2.ID)

		_, err := timelines.GetTimeline(context.Background(), user1.ID, pocket.ID, august)
		testutil.AssertAppError(t, err, "POCKET_NOT_FOUND")
	})
}

func TestTimelineCache(t *testing.T) {
	august := ledger.MonthKey{Year: 2025, Month: time.August}

	t.Run("serves_cached_view_until_invalidated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, timelines := newTimelineStack(db)
		user := testutil.CreateTestUser(t, db)
		pocket := testutil.CreateTestPocketWithAmount(t, db, user.ID, 10000)

		first, err := timelines.GetTimeline(context.Background(), user.ID, pocket.ID, august)
		testutil.AssertNoError(t, err)
		if len(first.Entries) != 1 {
			t.Fatalf("expected only the opening entry, got %d", len(first.Entries))
		}

		// Write behind the cache's back: the stale view keeps serving.
		testutil.CreateTestRecordOn(t, db, user.ID, pocket.ID, models.RecordKindExpense, 4000, utcDay(2025, time.August, 2))

		stale, err := timelines.GetTimeline(context.Background(), user.ID, pocket.ID, august)
		testutil.AssertNoError(t, err)
		if len(stale.Entries) != 1 {
			t.Fatalf("expected cached view to be served, got %d entries", len(stale.Entries))
		}

		timelines.Invalidate(pocket.ID)

		fresh, err := timelines.GetTimeline(context.Background(), user.ID, pocket.ID, august)
		testutil.AssertNoError(t, err)
		if len(fresh.Entries) != 2 {
			t.Fatalf("expected rebuilt view with 2 entries, got %d", len(fresh.Entries))
		}
		if got := fresh.Projected(); got != 6000 {
			t.Errorf("expected projected 6000 after rebuild, got %d", got)
		}
	})
}

func TestGetBalances(t *testing.T) {
	august := ledger.MonthKey{Year: 2025, Month: time.August}

	t.Run("covers_all_pockets_in_display_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pockets, timelines := newTimelineStack(db)
		user := testutil.CreateTestUser(t, db)
		testutil.AssertNoError(t, pockets.CreateDefaultPockets(user.ID, "IDR"))

		views, err := timelines.GetBalances(context.Background(), user.ID, august)
		testutil.AssertNoError(t, err)

		if len(views) != 2 {
			t.Fatalf("expected 2 balance views, got %d", len(views))
		}
		if views[0].Name != "daily" {
			t.Errorf("expected daily first, got %s", views[0].Name)
		}
	})

	t.Run("future_dated_entries_split_projected_from_realtime", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, timelines := newTimelineStack(db)
		user := testutil.CreateTestUser(t, db)
		pocket := testutil.CreateTestPocketWithAmount(t, db, user.ID, 20000)

		// An income dated at the end of the current month, well past today.
		now := time.Now().UTC()
		month := ledger.MonthOf(now)
		endOfMonth := month.Next().Start().AddDate(0, 0, -1)
		if now.Day() >= endOfMonth.Day() {
			t.Skip("no future day left in the current month")
		}
		testutil.CreateTestRecordOn(t, db, user.ID, pocket.ID, models.RecordKindIncome, 9000, endOfMonth)

		views, err := timelines.GetBalances(context.Background(), user.ID, month)
		testutil.AssertNoError(t, err)

		if len(views) != 1 {
			t.Fatalf("expected 1 view, got %d", len(views))
		}
		if views[0].Projected != 29000 {
			t.Errorf("expected projected 29000, got %d", views[0].Projected)
		}
		if views[0].Realtime != 20000 {
			t.Errorf("expected realtime 20000, got %d", views[0].Realtime)
		}
	})
}

func TestFreshAvailable(t *testing.T) {
	t.Run("matches_realtime_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, timelines := newTimelineStack(db)
		user := testutil.CreateTestUser(t, db)
		pocket := testutil.CreateTestPocketWithAmount(t, db, user.ID, 80000)

		testutil.CreateTestRecordOn(t, db, user.ID, pocket.ID, models.RecordKindExpense, 30000, time.Now().AddDate(0, 0, -1))

		available, err := timelines.FreshAvailable(db, pocket.ID, time.Now())
		testutil.AssertNoError(t, err)
		if available != 50000 {
			t.Errorf("expected available 50000, got %d", available)
		}

		realtime, err := timelines.AvailableBalance(context.Background(), user.ID, pocket.ID)
		testutil.AssertNoError(t, err)
		if realtime != available {
			t.Errorf("fresh available %d should match cached realtime %d", available, realtime)
		}
	})

	t.Run("ignores_future_dated_records", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, timelines := newTimelineStack(db)
		user := testutil.CreateTestUser(t, db)
		pocket := testutil.CreateTestPocketWithAmount(t, db, user.ID, 10000)

		testutil.CreateTestRecordOn(t, db, user.ID, pocket.ID, models.RecordKindIncome, 99999, time.Now().AddDate(0, 0, 2))

		available, err := timelines.FreshAvailable(db, pocket.ID, time.Now())
		testutil.AssertNoError(t, err)
		if available != 10000 {
			t.Errorf("expected available 10000, got %d", available)
		}
	})
}
