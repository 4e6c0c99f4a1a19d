package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
	"github.com/OnlyTachi/personal-finance-manager/internal/testutil"
)

func TestCreateAsset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestAssetService(t, db)

	t.Run("creates an active asset", func(t *testing.T) {
		a, err := svc.CreateAsset(t.Context(), model.Asset{
			UserID:   userID,
			Name:     "Savings",
			Category: model.CategoryFixedIncome,
			Indexer:  model.Indexer{Kind: model.IndexerRateIndexed, Reference: model.IndexFixed, RatePercent: 10},
		}, 0, 0, time.Time{})
		if err != nil {
			t.Fatalf("CreateAsset failed: %v", err)
		}
		if a.ID == "" {
			t.Error("expected a generated ID")
		}
		if a.Status != model.AssetActive {
			t.Errorf("status = %s, want active", a.Status)
		}
	})

	t.Run("initial amount seeds the ledger", func(t *testing.T) {
		a, err := svc.CreateAsset(t.Context(), model.Asset{
			UserID:   userID,
			Name:     "Cash box",
			Category: model.CategoryCashBox,
			Indexer:  model.Indexer{Kind: model.IndexerManual},
		}, 500, 0, time.Time{})
		if err != nil {
			t.Fatalf("CreateAsset failed: %v", err)
		}

		ledger := testutil.NewTestLedgerService(t, db)
		invested, err := ledger.InvestedPrincipal(a, time.Now().UTC())
		if err != nil {
			t.Fatalf("InvestedPrincipal failed: %v", err)
		}
		if invested != 500 {
			t.Errorf("invested principal = %v, want seeded 500", invested)
		}
	})

	t.Run("backdated start dates the opening contribution", func(t *testing.T) {
		start := time.Now().UTC().AddDate(0, 0, -90).Truncate(time.Second)
		a, err := svc.CreateAsset(t.Context(), model.Asset{
			UserID:   userID,
			Name:     "Old CDB",
			Category: model.CategoryFixedIncome,
			Indexer:  model.Indexer{Kind: model.IndexerRateIndexed, Reference: model.IndexFixed, RatePercent: 12},
		}, 2000, 0, start)
		if err != nil {
			t.Fatalf("CreateAsset failed: %v", err)
		}

		entries, err := repository.NewTransactionRepository(db).GetTransactions(a.ID)
		if err != nil {
			t.Fatalf("GetTransactions failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 opening contribution, got %d", len(entries))
		}
		if !entries[0].Timestamp.Equal(start) {
			t.Errorf("timestamp = %v, want %v", entries[0].Timestamp, start)
		}
	})

	t.Run("market-priced asset requires a ticker", func(t *testing.T) {
		_, err := svc.CreateAsset(t.Context(), model.Asset{
			UserID:  userID,
			Name:    "ETF",
			Indexer: model.Indexer{Kind: model.IndexerMarketPriced, Market: model.MarketEquity},
		}, 0, 0, time.Time{})
		if !errors.Is(err, apperrors.ErrTickerRequired) {
			t.Errorf("expected ErrTickerRequired, got %v", err)
		}
	})

	t.Run("manual asset rejects a ticker", func(t *testing.T) {
		_, err := svc.CreateAsset(t.Context(), model.Asset{
			UserID:  userID,
			Name:    "Mattress",
			Indexer: model.Indexer{Kind: model.IndexerManual, Ticker: "VWCE"},
		}, 0, 0, time.Time{})
		if !errors.Is(err, apperrors.ErrTickerForbidden) {
			t.Errorf("expected ErrTickerForbidden, got %v", err)
		}
	})
}

func TestGetAssetScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	mallory := testutil.CreateUser(t, db, "mallory")
	svc := testutil.NewTestAssetService(t, db)

	asset := testutil.NewAsset(alice).Build(t, db)

	if _, err := svc.GetAsset(alice, asset.ID); err != nil {
		t.Fatalf("owner GetAsset failed: %v", err)
	}

	// Another user's asset reads the same as a missing one.
	if _, err := svc.GetAsset(mallory, asset.ID); !errors.Is(err, apperrors.ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound for foreign asset, got %v", err)
	}
	if _, err := svc.CloseAsset(t.Context(), mallory, asset.ID); !errors.Is(err, apperrors.ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound on foreign close, got %v", err)
	}
	if err := svc.DeleteAsset(t.Context(), mallory, asset.ID); !errors.Is(err, apperrors.ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound on foreign delete, got %v", err)
	}
}

func TestCloseAsset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestAssetService(t, db)
	ledger := testutil.NewTestLedgerService(t, db)
	now := time.Now().UTC()

	asset := testutil.NewAsset(userID).Build(t, db)
	testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -10), 1000, 0)

	closed, err := svc.CloseAsset(t.Context(), userID, asset.ID)
	if err != nil {
		t.Fatalf("CloseAsset failed: %v", err)
	}
	if closed.Status != model.AssetClosed {
		t.Errorf("status = %s, want closed", closed.Status)
	}

	// History stays readable, mutations are refused.
	if _, err := ledger.Transactions(asset.ID); err != nil {
		t.Errorf("reading a closed asset's ledger failed: %v", err)
	}
	if _, err := ledger.AddContribution(t.Context(), closed, now, 100, 0); !errors.Is(err, apperrors.ErrAssetClosed) {
		t.Errorf("expected ErrAssetClosed, got %v", err)
	}
}

func TestAssetSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestAssetService(t, db)
	now := time.Now().UTC()

	t.Run("manual asset sums principal with no tax", func(t *testing.T) {
		asset := testutil.NewAsset(userID).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -30), 1000, 0)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -10), 500, 0)

		summary, err := svc.Summary(asset)
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}
		if summary.GrossBalance != 1500 {
			t.Errorf("gross = %v, want 1500", summary.GrossBalance)
		}
		if summary.EstimatedTax != 0 {
			t.Errorf("estimated tax = %v, want 0 without gains", summary.EstimatedTax)
		}
		if summary.EstimatedNetBalance != 1500 {
			t.Errorf("net = %v, want 1500", summary.EstimatedNetBalance)
		}
	})

	t.Run("accrued gains produce an estimated tax", func(t *testing.T) {
		asset := testutil.NewAsset(userID).RateIndexed(model.IndexFixed, 12).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -500), 1000, 0)

		summary, err := svc.Summary(asset)
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}
		if summary.GrossBalance <= 1000 {
			t.Errorf("gross = %v, want above principal after 500 days at 12%%", summary.GrossBalance)
		}
		if summary.EstimatedTax <= 0 {
			t.Errorf("estimated tax = %v, want positive on accrued gain", summary.EstimatedTax)
		}
		if diff := summary.EstimatedNetBalance - (summary.GrossBalance - summary.EstimatedTax); diff > 0.011 || diff < -0.011 {
			t.Errorf("net = %v, want gross minus tax", summary.EstimatedNetBalance)
		}
	})

	t.Run("missing quote degrades with a warning", func(t *testing.T) {
		asset := testutil.NewAsset(userID).MarketPriced("NOQUOTE", model.MarketEquity).Build(t, db)
		testutil.InsertContribution(t, db, asset.ID, now.AddDate(0, 0, -10), 1000, 10)

		summary, err := svc.Summary(asset)
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}
		if summary.GrossBalance != 0 {
			t.Errorf("gross = %v, want 0 without a quote", summary.GrossBalance)
		}
		if len(summary.Warnings) != 1 {
			t.Errorf("expected 1 warning, got %v", summary.Warnings)
		}
	})
}
