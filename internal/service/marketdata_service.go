package service

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
)

// QuoteFetcher fetches a live quote from an external provider.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, ticker string, market model.Market) (model.Quote, error)
}

// IndexFetcher fetches a reference-index series window from an external provider.
type IndexFetcher interface {
	FetchIndexRates(ctx context.Context, reference model.ReferenceIndex, from, to time.Time) ([]model.IndexRate, error)
}

// refreshBackfillDays bounds how far back an empty series is fetched on the
// first refresh.
const refreshBackfillDays = 3650

// MarketDataService keeps the local quote and index_rate tables current.
// Provider failures never propagate: the stored value simply stays as the
// last known one and valuations degrade with a warning.
type MarketDataService struct {
	repo    *repository.MarketDataRepository
	assets  *repository.AssetRepository
	quotes  QuoteFetcher
	indexes IndexFetcher
	now     func() time.Time
}

// NewMarketDataService creates a new MarketDataService with the provided dependencies.
func NewMarketDataService(
	repo *repository.MarketDataRepository,
	assets *repository.AssetRepository,
	quotes QuoteFetcher,
	indexes IndexFetcher,
) *MarketDataService {
	return &MarketDataService{
		repo:    repo,
		assets:  assets,
		quotes:  quotes,
		indexes: indexes,
		now:     time.Now,
	}
}

// RefreshQuotes fetches and stores the latest quote for every ticker held by
// an active market-priced asset. Tickers refresh concurrently; a failed
// ticker keeps its previous stored quote.
func (s *MarketDataService) RefreshQuotes(ctx context.Context) error {
	markets, err := s.assets.GetActiveTickers()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for ticker, market := range markets {
		g.Go(func() error {
			quote, err := s.quotes.FetchQuote(ctx, ticker, market)
			if errors.Is(err, apperrors.ErrProviderUnavailable) {
				log.Printf("quote refresh for %s skipped: %v", ticker, err)
				return nil
			}
			if err != nil {
				return err
			}
			return s.repo.UpsertQuote(ctx, quote)
		})
	}
	return g.Wait()
}

// RefreshIndexRates fetches new entries of the CDI and IPCA series since the
// last stored date. An unreachable provider leaves the stored series alone.
func (s *MarketDataService) RefreshIndexRates(ctx context.Context) error {
	to := s.now()
	for _, reference := range []model.ReferenceIndex{model.IndexCDI, model.IndexIPCA} {
		from := to.AddDate(0, 0, -refreshBackfillDays)
		if latest, err := s.repo.GetLatestIndexRate(reference, to); err == nil {
			from = latest.Date.AddDate(0, 0, 1)
		} else if !errors.Is(err, apperrors.ErrIndexRateNotFound) {
			return err
		}
		if from.After(to) {
			continue
		}

		rates, err := s.indexes.FetchIndexRates(ctx, reference, from, to)
		if errors.Is(err, apperrors.ErrProviderUnavailable) {
			log.Printf("index refresh for %s skipped: %v", reference, err)
			continue
		}
		if err != nil {
			return err
		}
		if len(rates) == 0 {
			continue
		}
		if err := s.repo.UpsertIndexRates(ctx, rates); err != nil {
			return err
		}
	}
	return nil
}
