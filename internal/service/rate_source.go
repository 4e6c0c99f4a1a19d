package service

import (
	"errors"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
)

// StoredRateSource serves index rates from the local index_rate table with
// carry-forward: a day with no stored entry uses the most recent entry on or
// before it. Only when the series is completely empty does a day report no
// rate.
type StoredRateSource struct {
	repo *repository.MarketDataRepository
}

// NewStoredRateSource creates a new StoredRateSource backed by the given repository.
func NewStoredRateSource(repo *repository.MarketDataRepository) *StoredRateSource {
	return &StoredRateSource{repo: repo}
}

// DailyRate implements RateSource.
func (s *StoredRateSource) DailyRate(reference model.ReferenceIndex, date time.Time) (float64, bool, error) {
	rate, err := s.repo.GetLatestIndexRate(reference, date)
	if errors.Is(err, apperrors.ErrIndexRateNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rate.AnnualRate, true, nil
}

// StoredQuoteSource serves quotes from the local quote table. Freshness is
// the valuation layer's concern; this adapter only retrieves.
type StoredQuoteSource struct {
	repo *repository.MarketDataRepository
}

// NewStoredQuoteSource creates a new StoredQuoteSource backed by the given repository.
func NewStoredQuoteSource(repo *repository.MarketDataRepository) *StoredQuoteSource {
	return &StoredQuoteSource{repo: repo}
}

// LatestQuote implements QuoteSource.
func (s *StoredQuoteSource) LatestQuote(ticker string) (model.Quote, error) {
	return s.repo.GetQuote(ticker)
}
