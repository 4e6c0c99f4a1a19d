package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
)

// WithdrawalService simulates and commits withdrawals. Simulation is pure:
// it reads the ledger, matches lots FIFO and computes taxes without writing
// anything, so it can be called any number of times. Commit re-simulates
// under the asset lock and refuses to proceed if the result drifted from the
// preview the caller approved.
type WithdrawalService struct {
	ledger       *LedgerService
	valuation    *ValuationService
	transactions *repository.TransactionRepository
}

// NewWithdrawalService creates a new WithdrawalService with the provided dependencies.
func NewWithdrawalService(ledger *LedgerService, valuation *ValuationService, transactions *repository.TransactionRepository) *WithdrawalService {
	return &WithdrawalService{
		ledger:       ledger,
		valuation:    valuation,
		transactions: transactions,
	}
}

// Simulate computes the preview of withdrawing amount from an asset as of
// asOf. For market-priced assets quantity takes precedence: when given, the
// currency amount is derived from the latest quote.
//
// Returns apperrors.ErrInsufficientBalance when open lots cannot cover the
// request; the ledger is untouched either way.
func (s *WithdrawalService) Simulate(ctx context.Context, asset model.Asset, amount, quantity float64, asOf time.Time) (model.Preview, error) {
	preview, _, err := s.simulate(asset, amount, quantity, asOf)
	return preview, err
}

func (s *WithdrawalService) simulate(asset model.Asset, amount, quantity float64, asOf time.Time) (model.Preview, float64, error) {
	lots, err := s.ledger.OpenLots(asset, asOf)
	if err != nil {
		return model.Preview{}, 0, err
	}

	values, warnings, err := s.valuation.LotValues(asset, lots, asOf)
	if err != nil {
		return model.Preview{}, 0, err
	}
	for _, w := range warnings {
		// A stale quote still prices the withdrawal; an unavailable quote
		// cannot, so simulation fails rather than guessing.
		if !isStaleOnly(w) {
			return model.Preview{}, 0, w
		}
	}

	if asset.Indexer.Kind == model.IndexerMarketPriced && quantity > quantityTolerance {
		quote, _, err := s.valuation.latestQuoteChecked(asset.Indexer.Ticker, asOf)
		if err != nil {
			return model.Preview{}, 0, err
		}
		amount = quantity * quote.Price
	}

	if err := s.ledger.ValidateEntry(asset, asOf, amount, orOne(quantity)); err != nil {
		return model.Preview{}, 0, err
	}

	consumptions, err := MatchFIFO(lots, values, amount, asOf)
	if err != nil {
		return model.Preview{}, 0, err
	}

	preview := model.Preview{
		AssetID:     asset.ID,
		AsOf:        asOf,
		GrossAmount: RoundCents(amount),
	}
	var quantityConsumed float64
	for _, c := range consumptions {
		taxed := TaxLotConsumption(c, asset.TaxExempt)
		preview.TotalIncomeTax += taxed.IncomeTax
		preview.TotalIOF += taxed.IOF
		preview.RealizedGain += c.GrossGainConsumed
		quantityConsumed += c.QuantityConsumed
		preview.PerLotBreakdown = append(preview.PerLotBreakdown, taxed)
	}
	preview.TotalIncomeTax = RoundCents(preview.TotalIncomeTax)
	preview.TotalIOF = RoundCents(preview.TotalIOF)
	preview.RealizedGain = RoundCents(preview.RealizedGain)
	preview.NetAmount = RoundCents(preview.GrossAmount - preview.TotalIncomeTax - preview.TotalIOF)

	return preview, quantityConsumed, nil
}

// Commit records a withdrawal. It re-simulates under the asset lock; when
// expected is non-nil and the fresh result no longer matches it, the commit
// is rejected with apperrors.ErrConflict so the caller can preview again.
// The persisted figures are exactly those of the simulation performed here.
func (s *WithdrawalService) Commit(ctx context.Context, asset model.Asset, amount, quantity float64, asOf time.Time, expected *model.Preview) (model.Transaction, error) {
	unlock := s.ledger.locks.Lock(asset.ID)
	defer unlock()

	preview, quantityConsumed, err := s.simulate(asset, amount, quantity, asOf)
	if err != nil {
		return model.Transaction{}, err
	}

	if expected != nil && !previewsMatch(preview, *expected) {
		return model.Transaction{}, apperrors.ErrConflict
	}

	t := model.Transaction{
		ID:             uuid.New().String(),
		AssetID:        asset.ID,
		Kind:           model.KindWithdrawal,
		Timestamp:      asOf,
		GrossAmount:    preview.GrossAmount,
		Quantity:       quantityConsumed,
		NetAmount:      preview.NetAmount,
		IncomeTax:      preview.TotalIncomeTax,
		TransactionTax: preview.TotalIOF,
		RealizedGain:   preview.RealizedGain,
		CreatedAt:      s.ledger.now().UTC(),
	}
	if err := s.transactions.InsertTransaction(ctx, &t); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// previewsMatch compares the consumption fingerprint of two previews: same
// gross, same taxes and the same lots consumed by the same amounts.
func previewsMatch(a, b model.Preview) bool {
	if !centsEqual(a.GrossAmount, b.GrossAmount) ||
		!centsEqual(a.TotalIncomeTax, b.TotalIncomeTax) ||
		!centsEqual(a.TotalIOF, b.TotalIOF) ||
		!centsEqual(a.NetAmount, b.NetAmount) ||
		!centsEqual(a.RealizedGain, b.RealizedGain) {
		return false
	}
	if len(a.PerLotBreakdown) != len(b.PerLotBreakdown) {
		return false
	}
	for i := range a.PerLotBreakdown {
		la, lb := a.PerLotBreakdown[i], b.PerLotBreakdown[i]
		if la.LotID != lb.LotID ||
			!centsEqual(la.PrincipalConsumed, lb.PrincipalConsumed) ||
			math.Abs(la.QuantityConsumed-lb.QuantityConsumed) > quantityTolerance {
			return false
		}
	}
	return true
}

func isStaleOnly(err error) bool {
	return errors.Is(err, apperrors.ErrStaleQuote)
}

// orOne substitutes a placeholder quantity when validating currency-only
// withdrawals on market-priced assets; the real consumed quantity is derived
// from the FIFO match.
func orOne(quantity float64) float64 {
	if quantity > quantityTolerance {
		return quantity
	}
	return 1
}
