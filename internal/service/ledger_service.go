package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
)

// Accruer supplies the growth multiplier of a rate-indexed asset between two
// instants. The ledger needs it to value lots at historical withdrawal times
// during replay.
type Accruer interface {
	GrowthFactor(asset model.Asset, from, to time.Time) (float64, error)
}

// LedgerService owns the append-only transaction history of assets and the
// replay that derives open lots from it. Balance is never stored: every
// derived figure is recomputed from the full ledger on demand, so editing or
// removing an old entry is always consistent with having entered the
// corrected history from the start.
type LedgerService struct {
	assets       *repository.AssetRepository
	transactions *repository.TransactionRepository
	accruer      Accruer
	locks        *assetLocks
	clockSkew    time.Duration
	now          func() time.Time
}

// NewLedgerService creates a new LedgerService with the provided dependencies.
func NewLedgerService(
	assets *repository.AssetRepository,
	transactions *repository.TransactionRepository,
	accruer Accruer,
	clockSkew time.Duration,
) *LedgerService {
	return &LedgerService{
		assets:       assets,
		transactions: transactions,
		accruer:      accruer,
		locks:        newAssetLocks(),
		clockSkew:    clockSkew,
		now:          time.Now,
	}
}

// ValidateEntry checks a prospective ledger entry against the asset it
// targets. Closed assets reject all mutations; timestamps beyond the clock
// skew tolerance are rejected; market-priced assets require a quantity.
func (s *LedgerService) ValidateEntry(asset model.Asset, timestamp time.Time, amount, quantity float64) error {
	if asset.Status == model.AssetClosed {
		return apperrors.ErrAssetClosed
	}
	if timestamp.After(s.now().Add(s.clockSkew)) {
		return apperrors.ErrFutureTimestamp
	}
	if amount <= 0 {
		return apperrors.ErrNegativeAmount
	}
	if asset.Indexer.Kind == model.IndexerMarketPriced && quantity <= 0 {
		return apperrors.ErrQuantityRequired
	}
	return nil
}

// AddContribution appends a contribution to an asset's ledger. The entry
// opens a new lot on the next replay; nothing else is derived at write time.
func (s *LedgerService) AddContribution(ctx context.Context, asset model.Asset, timestamp time.Time, amount, quantity float64) (model.Transaction, error) {
	if err := s.ValidateEntry(asset, timestamp, amount, quantity); err != nil {
		return model.Transaction{}, err
	}

	unlock := s.locks.Lock(asset.ID)
	defer unlock()

	t := model.Transaction{
		ID:          uuid.New().String(),
		AssetID:     asset.ID,
		Kind:        model.KindContribution,
		Timestamp:   timestamp,
		GrossAmount: RoundCents(amount),
		Quantity:    quantity,
		NetAmount:   RoundCents(amount),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.transactions.InsertTransaction(ctx, &t); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// UpdateEntry edits an existing transaction's timestamp, amount or quantity
// and replays the ledger, rewriting the derived fields of every withdrawal
// the edit affects.
func (s *LedgerService) UpdateEntry(ctx context.Context, asset model.Asset, t model.Transaction) (model.Transaction, error) {
	if err := s.ValidateEntry(asset, t.Timestamp, t.GrossAmount, t.Quantity); err != nil {
		return model.Transaction{}, err
	}

	unlock := s.locks.Lock(asset.ID)
	defer unlock()

	existing, err := s.transactions.GetTransaction(t.ID)
	if err != nil {
		return model.Transaction{}, err
	}
	if existing.AssetID != asset.ID {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}

	t.AssetID = asset.ID
	t.Kind = existing.Kind
	t.Seq = existing.Seq
	t.GrossAmount = RoundCents(t.GrossAmount)
	if t.Kind == model.KindContribution {
		t.NetAmount = t.GrossAmount
		t.IncomeTax = 0
		t.TransactionTax = 0
		t.RealizedGain = 0
	}
	txs, err := s.transactions.GetTransactions(asset.ID)
	if err != nil {
		return model.Transaction{}, err
	}
	for i := range txs {
		if txs[i].ID == t.ID {
			txs[i] = t
		}
	}
	sortLedger(txs)

	rewrites, err := s.pendingRewrites(asset, txs)
	if err != nil {
		return model.Transaction{}, err
	}
	if err := s.transactions.UpdateTransactionWithRewrites(ctx, &t, rewrites); err != nil {
		return model.Transaction{}, err
	}
	return s.transactions.GetTransaction(t.ID)
}

// RemoveEntry deletes a transaction and replays the ledger. Removing a
// contribution whose lot was already partially consumed shifts that
// consumption onto later lots, exactly as if the entry had never existed.
func (s *LedgerService) RemoveEntry(ctx context.Context, asset model.Asset, transactionID string) error {
	unlock := s.locks.Lock(asset.ID)
	defer unlock()

	existing, err := s.transactions.GetTransaction(transactionID)
	if err != nil {
		return err
	}
	if existing.AssetID != asset.ID {
		return apperrors.ErrTransactionNotFound
	}

	txs, err := s.transactions.GetTransactions(asset.ID)
	if err != nil {
		return err
	}
	remaining := make([]model.Transaction, 0, len(txs)-1)
	for _, tx := range txs {
		if tx.ID != transactionID {
			remaining = append(remaining, tx)
		}
	}

	rewrites, err := s.pendingRewrites(asset, remaining)
	if err != nil {
		return err
	}
	return s.transactions.DeleteTransactionWithRewrites(ctx, transactionID, rewrites)
}

// Transactions returns the asset's ledger in replay order.
func (s *LedgerService) Transactions(assetID string) ([]model.Transaction, error) {
	return s.transactions.GetTransactions(assetID)
}

// GetEntry returns a single ledger entry by ID.
func (s *LedgerService) GetEntry(transactionID string) (model.Transaction, error) {
	return s.transactions.GetTransaction(transactionID)
}

// OpenLots replays the asset's full ledger and returns the lots still open
// as of the given time. Lots come back in opening order.
func (s *LedgerService) OpenLots(asset model.Asset, asOf time.Time) ([]model.Lot, error) {
	txs, err := s.transactions.GetTransactions(asset.ID)
	if err != nil {
		return nil, err
	}
	result, err := s.replay(asset, txs, asOf)
	if err != nil {
		return nil, err
	}

	open := []model.Lot{}
	for _, lot := range result.lots {
		if lot.RemainingPrincipal > centTolerance || lot.RemainingQuantity > quantityTolerance {
			open = append(open, lot)
		}
	}
	return open, nil
}

// InvestedPrincipal returns the sum of remaining principal across open lots,
// the cost-basis figure used by net worth snapshots.
func (s *LedgerService) InvestedPrincipal(asset model.Asset, asOf time.Time) (float64, error) {
	lots, err := s.OpenLots(asset, asOf)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, lot := range lots {
		total += lot.RemainingPrincipal
	}
	return total, nil
}

type replayResult struct {
	lots []model.Lot
	// consumptions per withdrawal transaction ID, in ledger order.
	consumptions map[string][]model.LotConsumption
}

// replay rebuilds lot state from scratch by walking the ledger in
// (timestamp, seq) order up to asOf. Contributions open lots; withdrawals
// consume lots opened strictly before their own timestamp, oldest first.
// Rate-indexed and manual assets consume in current-value terms, which needs
// each lot's accrued value at the withdrawal instant; market-priced assets
// consume by quantity, since their historical consumption was denominated in
// units.
func (s *LedgerService) replay(asset model.Asset, txs []model.Transaction, asOf time.Time) (replayResult, error) {
	result := replayResult{
		lots:         []model.Lot{},
		consumptions: make(map[string][]model.LotConsumption),
	}

	for _, t := range txs {
		if t.Timestamp.After(asOf) {
			break
		}

		switch t.Kind {
		case model.KindContribution:
			result.lots = append(result.lots, model.Lot{
				OriginTransactionID: t.ID,
				OpenedAt:            t.Timestamp,
				RemainingPrincipal:  t.GrossAmount,
				RemainingQuantity:   t.Quantity,
			})

		case model.KindWithdrawal:
			eligible := s.eligibleLots(result.lots, t.Timestamp)
			consumed, err := s.consume(asset, eligible, t)
			if err != nil {
				return replayResult{}, err
			}
			result.consumptions[t.ID] = consumed
		}
	}

	return result, nil
}

// eligibleLots returns the prefix of lots opened strictly before the given
// instant. Lots open in timestamp order, so eligibility is always a prefix;
// the slice shares backing storage so consumption mutates the replay state.
func (s *LedgerService) eligibleLots(lots []model.Lot, before time.Time) []model.Lot {
	n := 0
	for n < len(lots) && lots[n].OpenedAt.Before(before) {
		n++
	}
	return lots[:n]
}

func (s *LedgerService) consume(asset model.Asset, eligible []model.Lot, t model.Transaction) ([]model.LotConsumption, error) {
	if asset.Indexer.Kind == model.IndexerMarketPriced {
		consumed := consumeQuantityFIFO(eligible, t.Quantity, t.Timestamp)
		allocateProceeds(consumed, t.GrossAmount, t.Quantity)
		return consumed, nil
	}

	values := make([]float64, len(eligible))
	for i, lot := range eligible {
		factor, err := s.accruer.GrowthFactor(asset, lot.OpenedAt, t.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to value lot %s: %w", lot.OriginTransactionID, err)
		}
		values[i] = lot.RemainingPrincipal * factor
	}
	return consumeValueFIFO(eligible, values, t.GrossAmount, t.Timestamp), nil
}

// allocateProceeds distributes a market-priced withdrawal's recorded gross
// proceeds across the consumed lots proportionally to quantity, deriving each
// lot's gain as its share of proceeds over the principal it released.
func allocateProceeds(consumed []model.LotConsumption, grossAmount, quantity float64) {
	if quantity <= quantityTolerance {
		return
	}
	for i := range consumed {
		share := grossAmount * (consumed[i].QuantityConsumed / quantity)
		gain := share - consumed[i].PrincipalConsumed
		if gain < 0 {
			gain = 0
		}
		consumed[i].GrossGainConsumed = gain
	}
}

// pendingRewrites replays a prospective ledger and returns the withdrawals
// whose derived tax fields no longer match their replayed consumption. It
// writes nothing: the caller persists the rewrites together with the
// mutation that caused them, so a failed replay leaves the ledger untouched.
// Caller holds the asset lock.
func (s *LedgerService) pendingRewrites(asset model.Asset, txs []model.Transaction) ([]model.Transaction, error) {
	result, err := s.replay(asset, txs, s.now().Add(s.clockSkew))
	if err != nil {
		return nil, err
	}

	var rewrites []model.Transaction
	for _, t := range txs {
		if t.Kind != model.KindWithdrawal {
			continue
		}

		var incomeTax, iof, gain float64
		for _, c := range result.consumptions[t.ID] {
			taxed := TaxLotConsumption(c, asset.TaxExempt)
			incomeTax += taxed.IncomeTax
			iof += taxed.IOF
			gain += c.GrossGainConsumed
		}
		incomeTax = RoundCents(incomeTax)
		iof = RoundCents(iof)
		gain = RoundCents(gain)
		net := RoundCents(t.GrossAmount - incomeTax - iof)

		if centsEqual(incomeTax, t.IncomeTax) &&
			centsEqual(iof, t.TransactionTax) &&
			centsEqual(gain, t.RealizedGain) &&
			centsEqual(net, t.NetAmount) {
			continue
		}

		t.IncomeTax = incomeTax
		t.TransactionTax = iof
		t.RealizedGain = gain
		t.NetAmount = net
		rewrites = append(rewrites, t)
	}
	return rewrites, nil
}

// sortLedger restores replay order after an in-memory edit moved an entry's
// timestamp.
func sortLedger(txs []model.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].Seq < txs[j].Seq
		}
		return txs[i].Timestamp.Before(txs[j].Timestamp)
	})
}

func centsEqual(a, b float64) bool {
	return math.Abs(a-b) < centTolerance
}
