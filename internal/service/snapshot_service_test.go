package service_test

import (
	"testing"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/testutil"
)

func TestEnsureDailySnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestSnapshotService(t, db)
	now := time.Now().UTC()

	asset := testutil.NewAsset(userID).Build(t, db)
	testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -3), 1000, 0)

	if err := svc.EnsureDailySnapshot(t.Context(), userID); err != nil {
		t.Fatalf("EnsureDailySnapshot failed: %v", err)
	}
	if err := svc.EnsureDailySnapshot(t.Context(), userID); err != nil {
		t.Fatalf("second EnsureDailySnapshot failed: %v", err)
	}

	history, err := svc.History(userID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly 1 snapshot after repeated calls, got %d", len(history))
	}
	if history[0].GrossTotal != 1000 {
		t.Errorf("gross total = %v, want 1000", history[0].GrossTotal)
	}
	if history[0].InvestedTotal != 1000 {
		t.Errorf("invested total = %v, want 1000", history[0].InvestedTotal)
	}
}

func TestSnapshotDayFlows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestSnapshotService(t, db)
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	asset := testutil.NewAsset(userID).Build(t, db)
	// One contribution days ago and one today: only today's counts as a flow.
	testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -5), 1000, 0)
	testutil.InsertContribution(t, db, asset.ID, today.Add(9*time.Hour), 250, 0)

	if err := svc.SnapshotDay(t.Context(), userID, today); err != nil {
		t.Fatalf("SnapshotDay failed: %v", err)
	}

	history, err := svc.History(userID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(history))
	}

	snap := history[0]
	if snap.GrossTotal != 1250 {
		t.Errorf("gross total = %v, want 1250", snap.GrossTotal)
	}
	if snap.DailyContributions != 250 {
		t.Errorf("daily contributions = %v, want only today's 250", snap.DailyContributions)
	}
	if snap.DailyWithdrawals != 0 {
		t.Errorf("daily withdrawals = %v, want 0", snap.DailyWithdrawals)
	}
}

func TestRebuildHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestSnapshotService(t, db)
	now := time.Now().UTC()

	asset := testutil.NewAsset(userID).Build(t, db)
	testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -4), 1000, 0)
	testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -1), 500, 0)

	if err := svc.RebuildHistory(t.Context(), userID); err != nil {
		t.Fatalf("RebuildHistory failed: %v", err)
	}

	history, err := svc.History(userID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	// One snapshot per day from the earliest entry through today.
	if len(history) != 5 {
		t.Fatalf("expected 5 snapshots, got %d", len(history))
	}

	if history[0].GrossTotal != 1000 {
		t.Errorf("first day gross = %v, want 1000", history[0].GrossTotal)
	}
	last := history[len(history)-1]
	if last.GrossTotal != 1500 {
		t.Errorf("latest gross = %v, want 1500", last.GrossTotal)
	}
	for i := 1; i < len(history); i++ {
		if history[i].SnapshotDate.Before(history[i-1].SnapshotDate) {
			t.Fatalf("history not in chronological order at index %d", i)
		}
	}
}

func TestRebuildHistoryEmptyLedger(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestSnapshotService(t, db)

	// Seed a stale snapshot; a rebuild over an empty ledger must clear it.
	asset := testutil.NewAsset(userID).Build(t, db)
	tx := testutil.InsertContribution(t, db, asset.ID, time.Now().UTC().AddDate(0, 0, -1), 100, 0)
	if err := svc.RebuildHistory(t.Context(), userID); err != nil {
		t.Fatalf("seed RebuildHistory failed: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM asset_transaction WHERE id = ?`, tx.ID); err != nil {
		t.Fatalf("failed to delete transaction: %v", err)
	}

	if err := svc.RebuildHistory(t.Context(), userID); err != nil {
		t.Fatalf("RebuildHistory failed: %v", err)
	}
	history, err := svc.History(userID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d snapshots", len(history))
	}
}
