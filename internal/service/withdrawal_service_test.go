package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/service"
	"github.com/OnlyTachi/personal-finance-manager/internal/testutil"
)

func TestSimulateWithdrawal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestWithdrawalService(t, db)
	ledger := testutil.NewTestLedgerService(t, db)
	now := time.Now().UTC()

	t.Run("manual asset withdrawal carries no gain and no tax", func(t *testing.T) {
		asset := testutil.NewAsset(userID).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -40), 1000, 0)

		preview, err := svc.Simulate(t.Context(), asset, 400, 0, now)
		if err != nil {
			t.Fatalf("Simulate failed: %v", err)
		}

		if preview.GrossAmount != 400 {
			t.Errorf("gross = %v, want 400", preview.GrossAmount)
		}
		if preview.RealizedGain != 0 || preview.TotalIncomeTax != 0 || preview.TotalIOF != 0 {
			t.Errorf("manual asset preview has gain %v, taxes %v/%v, want all zero",
				preview.RealizedGain, preview.TotalIncomeTax, preview.TotalIOF)
		}
		if preview.NetAmount != 400 {
			t.Errorf("net = %v, want 400", preview.NetAmount)
		}
		if len(preview.PerLotBreakdown) != 1 {
			t.Errorf("expected 1 lot in breakdown, got %d", len(preview.PerLotBreakdown))
		}
	})

	t.Run("fixed-rate asset taxes the accrued gain", func(t *testing.T) {
		asset := testutil.NewAsset(userID).RateIndexed(model.IndexFixed, 12).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -500), 1000, 0)

		preview, err := svc.Simulate(t.Context(), asset, 600, 0, now)
		if err != nil {
			t.Fatalf("Simulate failed: %v", err)
		}

		if preview.RealizedGain <= 0 {
			t.Fatalf("realized gain = %v, want positive after 500 days at 12%%", preview.RealizedGain)
		}
		// 500 days puts the lot in the 17.5% income tax bracket, past the
		// transaction tax window.
		if preview.TotalIOF != 0 {
			t.Errorf("transaction tax = %v, want 0 past 30 days", preview.TotalIOF)
		}
		wantTax := service.RoundCents(preview.RealizedGain * 0.175)
		if diff := preview.TotalIncomeTax - wantTax; diff > 0.02 || diff < -0.02 {
			t.Errorf("income tax = %v, want about %v", preview.TotalIncomeTax, wantTax)
		}
		if diff := preview.NetAmount - (preview.GrossAmount - preview.TotalIncomeTax - preview.TotalIOF); diff > 0.011 || diff < -0.011 {
			t.Errorf("net = %v, want gross minus taxes", preview.NetAmount)
		}
	})

	t.Run("simulation is repeatable", func(t *testing.T) {
		asset := testutil.NewAsset(userID).RateIndexed(model.IndexFixed, 12).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -100), 2000, 0)

		first, err := svc.Simulate(t.Context(), asset, 800, 0, now)
		if err != nil {
			t.Fatalf("first Simulate failed: %v", err)
		}
		second, err := svc.Simulate(t.Context(), asset, 800, 0, now)
		if err != nil {
			t.Fatalf("second Simulate failed: %v", err)
		}

		if first.GrossAmount != second.GrossAmount ||
			first.TotalIncomeTax != second.TotalIncomeTax ||
			first.TotalIOF != second.TotalIOF ||
			first.NetAmount != second.NetAmount ||
			first.RealizedGain != second.RealizedGain {
			t.Errorf("two simulations of the same state differ: %+v vs %+v", first, second)
		}

		txs, err := ledger.Transactions(asset.ID)
		if err != nil {
			t.Fatalf("Transactions failed: %v", err)
		}
		if len(txs) != 1 {
			t.Errorf("simulation wrote to the ledger: %d transactions, want 1", len(txs))
		}
	})

	t.Run("insufficient balance leaves ledger untouched", func(t *testing.T) {
		asset := testutil.NewAsset(userID).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -40), 100, 0)

		_, err := svc.Simulate(t.Context(), asset, 5000, 0, now)
		if !errors.Is(err, apperrors.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}

		invested, err := ledger.InvestedPrincipal(asset, now)
		if err != nil {
			t.Fatalf("InvestedPrincipal failed: %v", err)
		}
		if invested != 100 {
			t.Errorf("invested principal = %v, want untouched 100", invested)
		}
	})

	t.Run("market-priced asset prices quantity from latest quote", func(t *testing.T) {
		asset := testutil.NewAsset(userID).MarketPriced("VWCE", model.MarketEquity).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -40), 1000, 10)
		testutil.InsertQuote(t, db, "VWCE", 130, now.Add(-time.Hour))

		preview, err := svc.Simulate(t.Context(), asset, 0, 4, now)
		if err != nil {
			t.Fatalf("Simulate failed: %v", err)
		}
		if preview.GrossAmount != 520 {
			t.Errorf("gross = %v, want 4 units at 130 = 520", preview.GrossAmount)
		}
		if preview.RealizedGain <= 0 {
			t.Errorf("realized gain = %v, want positive with quote above cost", preview.RealizedGain)
		}
	})

	t.Run("missing quote fails the simulation", func(t *testing.T) {
		asset := testutil.NewAsset(userID).MarketPriced("NOQUOTE", model.MarketEquity).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -40), 1000, 10)

		_, err := svc.Simulate(t.Context(), asset, 0, 2, now)
		if !errors.Is(err, apperrors.ErrProviderUnavailable) {
			t.Errorf("expected ErrProviderUnavailable, got %v", err)
		}
	})
}

// TestWithdrawalAfterOneYear walks a full year of a fixed-rate holding:
// 10,000 at 10% for 365 days is worth about 11,000, so withdrawing 5,000
// releases about 4,545.45 of principal and 454.55 of gain, taxed at the
// 17.5% bracket with no transaction tax.
func TestWithdrawalAfterOneYear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestWithdrawalService(t, db)
	now := time.Now().UTC()

	asset := testutil.NewAsset(userID).RateIndexed(model.IndexFixed, 10).Build(t, db)
	testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -365), 10000, 0)

	preview, err := svc.Simulate(t.Context(), asset, 5000, 0, now)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	// Business-day compounding lands near, not exactly on, the calendar-year
	// figure: a year holds about 261 business days against the 252 in the
	// accrual base. Compare within five percent.
	approx := func(got, want float64) bool {
		return got > want*0.95 && got < want*1.05
	}

	if len(preview.PerLotBreakdown) != 1 {
		t.Fatalf("expected 1 consumed lot, got %d", len(preview.PerLotBreakdown))
	}
	lot := preview.PerLotBreakdown[0]
	if !approx(lot.PrincipalConsumed, 4545.45) {
		t.Errorf("principal consumed = %v, want about 4545.45", lot.PrincipalConsumed)
	}
	if !approx(preview.RealizedGain, 454.55) {
		t.Errorf("realized gain = %v, want about 454.55", preview.RealizedGain)
	}
	if lot.HoldingDays != 365 {
		t.Errorf("holding days = %d, want 365", lot.HoldingDays)
	}
	if preview.TotalIOF != 0 {
		t.Errorf("transaction tax = %v, want 0 after a year", preview.TotalIOF)
	}
	if !approx(preview.TotalIncomeTax, 454.55*0.175) {
		t.Errorf("income tax = %v, want about 17.5%% of the gain", preview.TotalIncomeTax)
	}
	if diff := preview.NetAmount - (preview.GrossAmount - preview.TotalIncomeTax); diff > 0.011 || diff < -0.011 {
		t.Errorf("net = %v, want gross minus income tax", preview.NetAmount)
	}
}

func TestCommitWithdrawal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestWithdrawalService(t, db)
	ledger := testutil.NewTestLedgerService(t, db)
	now := time.Now().UTC()

	t.Run("commit records exactly the previewed figures", func(t *testing.T) {
		asset := testutil.NewAsset(userID).RateIndexed(model.IndexFixed, 12).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -500), 1000, 0)

		preview, err := svc.Simulate(t.Context(), asset, 600, 0, now)
		if err != nil {
			t.Fatalf("Simulate failed: %v", err)
		}

		tx, err := svc.Commit(t.Context(), asset, 600, 0, now, &preview)
		if err != nil {
			t.Fatalf("Commit failed: %v", err)
		}

		if tx.Kind != model.KindWithdrawal {
			t.Errorf("kind = %s, want withdrawal", tx.Kind)
		}
		if tx.GrossAmount != preview.GrossAmount ||
			tx.IncomeTax != preview.TotalIncomeTax ||
			tx.TransactionTax != preview.TotalIOF ||
			tx.NetAmount != preview.NetAmount ||
			tx.RealizedGain != preview.RealizedGain {
			t.Errorf("committed figures %+v do not match preview %+v", tx, preview)
		}

		stored, err := ledger.GetEntry(tx.ID)
		if err != nil {
			t.Fatalf("GetEntry failed: %v", err)
		}
		if stored.NetAmount != preview.NetAmount {
			t.Errorf("stored net = %v, want %v", stored.NetAmount, preview.NetAmount)
		}
		if stored.CreatedAt.IsZero() {
			t.Error("expected a creation stamp")
		}
	})

	t.Run("stale preview is rejected after the ledger changed", func(t *testing.T) {
		asset := testutil.NewAsset(userID).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -60), 500, 0)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -30), 1000, 0)

		// This preview spans both lots.
		preview, err := svc.Simulate(t.Context(), asset, 800, 0, now)
		if err != nil {
			t.Fatalf("Simulate failed: %v", err)
		}
		if len(preview.PerLotBreakdown) != 2 {
			t.Fatalf("expected preview to span 2 lots, got %d", len(preview.PerLotBreakdown))
		}

		// Another withdrawal drains the first lot between preview and commit,
		// so re-simulation lands entirely on the second lot.
		if _, err := svc.Commit(t.Context(), asset, 500, 0, now.Add(-time.Minute), nil); err != nil {
			t.Fatalf("intervening Commit failed: %v", err)
		}

		_, err = svc.Commit(t.Context(), asset, 800, 0, now, &preview)
		if !errors.Is(err, apperrors.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("commit without a preview skips the conflict check", func(t *testing.T) {
		asset := testutil.NewAsset(userID).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -60), 1000, 0)

		tx, err := svc.Commit(t.Context(), asset, 250, 0, now, nil)
		if err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
		if tx.NetAmount != 250 {
			t.Errorf("net = %v, want 250", tx.NetAmount)
		}

		invested, err := ledger.InvestedPrincipal(asset, now)
		if err != nil {
			t.Fatalf("InvestedPrincipal failed: %v", err)
		}
		if invested != 750 {
			t.Errorf("invested principal = %v, want 750", invested)
		}
	})

	t.Run("failed commit writes nothing", func(t *testing.T) {
		asset := testutil.NewAsset(userID).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -60), 100, 0)

		_, err := svc.Commit(t.Context(), asset, 9999, 0, now, nil)
		if !errors.Is(err, apperrors.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}

		txs, err := ledger.Transactions(asset.ID)
		if err != nil {
			t.Fatalf("Transactions failed: %v", err)
		}
		if len(txs) != 1 {
			t.Errorf("ledger has %d transactions after failed commit, want 1", len(txs))
		}
	})
}
