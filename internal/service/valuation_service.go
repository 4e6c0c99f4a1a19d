package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
)

// businessDaysPerYear is the Brazilian trading-day convention used for daily
// compounding of rate-indexed assets.
const businessDaysPerYear = 252

// RateSource supplies the business-day reference-index series.
// Implementations return the annual rate in percent for a given day, or
// ok=false when the series has no entry for that day and nothing earlier to
// carry forward.
type RateSource interface {
	DailyRate(reference model.ReferenceIndex, date time.Time) (annualRate float64, ok bool, err error)
}

// QuoteSource supplies the latest known market quote for a ticker.
type QuoteSource interface {
	LatestQuote(ticker string) (model.Quote, error)
}

// Valuation is the result of valuing a set of lots. Warnings carry degraded
// mode conditions (stale quote, missing series) alongside a usable value.
type Valuation struct {
	Value        float64
	QuantityHeld float64
	Warnings     []error
}

// ValuationService computes the current value of an asset's open lots.
// Two mutually exclusive strategies, selected by the asset's indexer:
// rate-indexed accrual and mark-to-market. Manual assets stay at principal.
type ValuationService struct {
	rates          RateSource
	quotes         QuoteSource
	quoteStaleness time.Duration
}

// NewValuationService creates a new ValuationService with the provided sources.
func NewValuationService(rates RateSource, quotes QuoteSource, quoteStaleness time.Duration) *ValuationService {
	return &ValuationService{
		rates:          rates,
		quotes:         quotes,
		quoteStaleness: quoteStaleness,
	}
}

// GrowthFactor returns the accrual multiplier for a rate-indexed or manual
// asset between two instants. Compounds daily over business days at
// (1+effective/100)^(1/252)-1, where effective is the reference index rate
// scaled by the asset's rate percentage (100 = 100% of the index), or the
// fixed rate itself.
//
// Missing series days carry forward the last known rate; if no rate was ever
// stored the day contributes no growth. Market-priced assets have no accrual
// and always return 1.
func (s *ValuationService) GrowthFactor(asset model.Asset, from, to time.Time) (float64, error) {
	if !to.After(from) {
		return 1, nil
	}

	switch asset.Indexer.Kind {
	case model.IndexerManual, model.IndexerMarketPriced:
		return 1, nil
	case model.IndexerRateIndexed:
	default:
		return 1, fmt.Errorf("unknown indexer kind %q", asset.Indexer.Kind)
	}

	if asset.Indexer.Reference == model.IndexFixed {
		days := businessDaysBetween(from, to)
		return math.Pow(1+asset.Indexer.RatePercent/100, float64(days)/businessDaysPerYear), nil
	}

	factor := 1.0
	for day := from.AddDate(0, 0, 1); !day.After(to); day = day.AddDate(0, 0, 1) {
		if !isBusinessDay(day) {
			continue
		}
		indexRate, ok, err := s.rates.DailyRate(asset.Indexer.Reference, day)
		if err != nil {
			return 1, err
		}
		if !ok {
			continue
		}
		effective := indexRate * (asset.Indexer.RatePercent / 100)
		factor *= math.Pow(1+effective/100, 1.0/businessDaysPerYear)
	}

	return factor, nil
}

// LotValues returns the current value of each lot as of the given time, in
// the same order as lots. For rate-indexed assets the value is accrued
// principal; for market-priced assets it is remaining quantity times the
// latest quote; manual assets stay at principal.
//
// The returned warnings flag degraded conditions (stale or missing quote);
// they accompany a still-usable result and must be surfaced by the caller.
func (s *ValuationService) LotValues(asset model.Asset, lots []model.Lot, asOf time.Time) ([]float64, []error, error) {
	values := make([]float64, len(lots))
	var warnings []error

	switch asset.Indexer.Kind {
	case model.IndexerMarketPriced:
		quote, warn, err := s.latestQuoteChecked(asset.Indexer.Ticker, asOf)
		if err != nil {
			return nil, nil, err
		}
		if warn != nil {
			warnings = append(warnings, warn)
		}
		for i, lot := range lots {
			values[i] = lot.RemainingQuantity * quote.Price
		}

	case model.IndexerRateIndexed:
		for i, lot := range lots {
			factor, err := s.GrowthFactor(asset, lot.OpenedAt, asOf)
			if err != nil {
				return nil, nil, err
			}
			values[i] = lot.RemainingPrincipal * factor
		}

	default:
		for i, lot := range lots {
			values[i] = lot.RemainingPrincipal
		}
	}

	return values, warnings, nil
}

// Value computes the total current value of the given open lots.
func (s *ValuationService) Value(asset model.Asset, lots []model.Lot, asOf time.Time) (Valuation, error) {
	values, warnings, err := s.LotValues(asset, lots, asOf)
	if err != nil {
		return Valuation{}, err
	}

	var v Valuation
	v.Warnings = warnings
	for i, lot := range lots {
		v.Value += values[i]
		v.QuantityHeld += lot.RemainingQuantity
	}
	return v, nil
}

// latestQuoteChecked fetches the stored quote for a ticker and flags it when
// older than the staleness window relative to asOf. A missing quote is a
// degraded condition, not a failure: the value degrades to zero with a warning.
func (s *ValuationService) latestQuoteChecked(ticker string, asOf time.Time) (model.Quote, error, error) {
	quote, err := s.quotes.LatestQuote(ticker)
	if errors.Is(err, apperrors.ErrQuoteNotFound) {
		return model.Quote{}, fmt.Errorf("%w: no quote stored for %s", apperrors.ErrProviderUnavailable, ticker), nil
	}
	if err != nil {
		return model.Quote{}, nil, err
	}

	if s.quoteStaleness > 0 && asOf.Sub(quote.AsOf) > s.quoteStaleness {
		return quote, fmt.Errorf("%w: %s quoted at %s", apperrors.ErrStaleQuote, ticker, quote.AsOf.Format(time.RFC3339)), nil
	}
	return quote, nil, nil
}

// isBusinessDay reports whether a date falls Monday through Friday.
// Exchange holidays are not modelled; the series itself skips them, and
// carry-forward handles the gaps.
func isBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// businessDaysBetween counts business days strictly after from, up to and
// including to.
func businessDaysBetween(from, to time.Time) int {
	count := 0
	for day := from.AddDate(0, 0, 1); !day.After(to); day = day.AddDate(0, 0, 1) {
		if isBusinessDay(day) {
			count++
		}
	}
	return count
}
