package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
)

// MakeID returns a fresh UUID string.
func MakeID() string {
	return uuid.New().String()
}

// CreateUser inserts a user row and returns the username.
func CreateUser(t *testing.T, db *sql.DB, username string) string {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO user (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, "irrelevant", repository.FormatTime(time.Now()),
	)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return username
}

// AssetBuilder provides a fluent interface for creating test assets.
//
// Example usage:
//
//	asset := testutil.NewAsset("alice").RateIndexed("fixed", 10).Build(t, db)
type AssetBuilder struct {
	asset model.Asset
}

// NewAsset creates an AssetBuilder with sensible defaults: a manual asset
// owned by the given user.
func NewAsset(userID string) *AssetBuilder {
	return &AssetBuilder{asset: model.Asset{
		ID:       MakeID(),
		UserID:   userID,
		Name:     "Test Asset",
		Category: model.CategoryOther,
		Indexer:  model.Indexer{Kind: model.IndexerManual},
		Status:   model.AssetActive,
	}}
}

// WithName sets a custom name.
func (b *AssetBuilder) WithName(name string) *AssetBuilder {
	b.asset.Name = name
	return b
}

// RateIndexed makes the asset accrue against a reference index at the given
// percentage of it (or the fixed annual rate itself).
func (b *AssetBuilder) RateIndexed(reference model.ReferenceIndex, ratePercent float64) *AssetBuilder {
	b.asset.Indexer = model.Indexer{
		Kind:        model.IndexerRateIndexed,
		Reference:   reference,
		RatePercent: ratePercent,
	}
	return b
}

// MarketPriced makes the asset quote-valued for the given ticker.
func (b *AssetBuilder) MarketPriced(ticker string, market model.Market) *AssetBuilder {
	b.asset.Indexer = model.Indexer{
		Kind:   model.IndexerMarketPriced,
		Ticker: ticker,
		Market: market,
	}
	return b
}

// TaxExempt marks the asset exempt from income tax.
func (b *AssetBuilder) TaxExempt() *AssetBuilder {
	b.asset.TaxExempt = true
	return b
}

// Closed marks the asset closed.
func (b *AssetBuilder) Closed() *AssetBuilder {
	b.asset.Status = model.AssetClosed
	return b
}

// Build creates the asset in the database and returns it.
func (b *AssetBuilder) Build(t *testing.T, db *sql.DB) model.Asset {
	t.Helper()

	repo := repository.NewAssetRepository(db)
	if err := repo.InsertAsset(t.Context(), &b.asset); err != nil {
		t.Fatalf("Failed to create test asset: %v", err)
	}
	return b.asset
}

// InsertContribution appends a contribution row to an asset's ledger at the
// given timestamp and returns it.
func InsertContribution(t *testing.T, db *sql.DB, assetID string, timestamp time.Time, amount, quantity float64) model.Transaction {
	t.Helper()

	repo := repository.NewTransactionRepository(db)
	tx := model.Transaction{
		ID:          MakeID(),
		AssetID:     assetID,
		Kind:        model.KindContribution,
		Timestamp:   timestamp,
		GrossAmount: amount,
		Quantity:    quantity,
		NetAmount:   amount,
	}
	if err := repo.InsertTransaction(t.Context(), &tx); err != nil {
		t.Fatalf("Failed to create test contribution: %v", err)
	}
	return tx
}

// InsertQuote stores a quote row.
func InsertQuote(t *testing.T, db *sql.DB, ticker string, price float64, asOf time.Time) {
	t.Helper()

	repo := repository.NewMarketDataRepository(db)
	if err := repo.UpsertQuote(t.Context(), model.Quote{Ticker: ticker, Price: price, AsOf: asOf}); err != nil {
		t.Fatalf("Failed to create test quote: %v", err)
	}
}

// InsertIndexRates stores one series entry per business day between from and
// to at the given annual rate.
func InsertIndexRates(t *testing.T, db *sql.DB, reference model.ReferenceIndex, from, to time.Time, annualRate float64) {
	t.Helper()

	rates := []model.IndexRate{}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		rates = append(rates, model.IndexRate{Reference: reference, Date: day, AnnualRate: annualRate})
	}

	repo := repository.NewMarketDataRepository(db)
	if err := repo.UpsertIndexRates(t.Context(), rates); err != nil {
		t.Fatalf("Failed to create test index rates: %v", err)
	}
}
