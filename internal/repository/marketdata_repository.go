package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
)

// MarketDataRepository provides data access methods for the quote and
// index_rate tables. These tables hold the last values fetched from external
// providers and are the source of the degraded "last known value" mode.
type MarketDataRepository struct {
	db *sql.DB
}

// NewMarketDataRepository creates a new MarketDataRepository with the provided database connection.
func NewMarketDataRepository(db *sql.DB) *MarketDataRepository {
	return &MarketDataRepository{db: db}
}

// GetQuote retrieves the last known quote for a ticker.
// Returns apperrors.ErrQuoteNotFound when no quote has ever been stored.
func (s *MarketDataRepository) GetQuote(ticker string) (model.Quote, error) {
	var q model.Quote
	var asOfStr string

	err := s.db.QueryRow(
		`SELECT ticker, price, as_of FROM quote WHERE ticker = ?`, ticker,
	).Scan(&q.Ticker, &q.Price, &asOfStr)
	if err == sql.ErrNoRows {
		return model.Quote{}, apperrors.ErrQuoteNotFound
	}
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to scan quote table results: %w", err)
	}

	q.AsOf, err = ParseTime(asOfStr)
	if err != nil {
		return model.Quote{}, err
	}
	return q, nil
}

// UpsertQuote stores the latest quote for a ticker, replacing any previous value.
func (s *MarketDataRepository) UpsertQuote(ctx context.Context, q model.Quote) error {
	query := `
		INSERT INTO quote (ticker, price, as_of)
		VALUES (?, ?, ?)
		ON CONFLICT (ticker) DO UPDATE SET
			price = excluded.price,
			as_of = excluded.as_of
	`
	if _, err := s.db.ExecContext(ctx, query, q.Ticker, q.Price, FormatTime(q.AsOf)); err != nil {
		return fmt.Errorf("failed to upsert quote: %w", err)
	}
	return nil
}

// GetIndexRates retrieves the stored series for a reference index between two
// dates inclusive, ordered ascending.
func (s *MarketDataRepository) GetIndexRates(reference model.ReferenceIndex, from, to time.Time) ([]model.IndexRate, error) {
	query := `
		SELECT reference, date, annual_rate
		FROM index_rate
		WHERE reference = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.db.Query(query, reference, FormatDate(from), FormatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query index_rate table: %w", err)
	}
	defer rows.Close()

	rates := []model.IndexRate{}
	for rows.Next() {
		var r model.IndexRate
		var dateStr string

		if err := rows.Scan(&r.Reference, &dateStr, &r.AnnualRate); err != nil {
			return nil, fmt.Errorf("failed to scan index_rate results: %w", err)
		}
		r.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, err
		}
		rates = append(rates, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating index_rate table: %w", err)
	}

	return rates, nil
}

// GetLatestIndexRate retrieves the most recent stored entry on or before the
// given date. This is the carry-forward lookup for gaps in the series.
// Returns apperrors.ErrIndexRateNotFound when nothing is stored yet.
func (s *MarketDataRepository) GetLatestIndexRate(reference model.ReferenceIndex, onOrBefore time.Time) (model.IndexRate, error) {
	var r model.IndexRate
	var dateStr string

	err := s.db.QueryRow(`
		SELECT reference, date, annual_rate
		FROM index_rate
		WHERE reference = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1
	`, reference, FormatDate(onOrBefore)).Scan(&r.Reference, &dateStr, &r.AnnualRate)
	if err == sql.ErrNoRows {
		return model.IndexRate{}, apperrors.ErrIndexRateNotFound
	}
	if err != nil {
		return model.IndexRate{}, fmt.Errorf("failed to scan index_rate results: %w", err)
	}

	r.Date, err = ParseTime(dateStr)
	if err != nil {
		return model.IndexRate{}, err
	}
	return r, nil
}

// UpsertIndexRates stores a batch of series entries, replacing duplicates.
func (s *MarketDataRepository) UpsertIndexRates(ctx context.Context, rates []model.IndexRate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_rate (reference, date, annual_rate)
		VALUES (?, ?, ?)
		ON CONFLICT (reference, date) DO UPDATE SET annual_rate = excluded.annual_rate
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare index_rate upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rates {
		if _, err := stmt.ExecContext(ctx, r.Reference, FormatDate(r.Date), r.AnnualRate); err != nil {
			return fmt.Errorf("failed to upsert index rate: %w", err)
		}
	}

	return tx.Commit()
}
