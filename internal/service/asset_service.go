package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
)

// AssetService manages assets and their valuation summaries.
type AssetService struct {
	assets    *repository.AssetRepository
	ledger    *LedgerService
	valuation *ValuationService
	now       func() time.Time
}

// NewAssetService creates a new AssetService with the provided dependencies.
func NewAssetService(assets *repository.AssetRepository, ledger *LedgerService, valuation *ValuationService) *AssetService {
	return &AssetService{
		assets:    assets,
		ledger:    ledger,
		valuation: valuation,
		now:       time.Now,
	}
}

// validateIndexer enforces the tagged-variant shape: exactly the fields the
// kind needs, nothing else.
func validateIndexer(idx model.Indexer) error {
	switch idx.Kind {
	case model.IndexerMarketPriced:
		if idx.Ticker == "" {
			return apperrors.ErrTickerRequired
		}
	case model.IndexerRateIndexed, model.IndexerManual:
		if idx.Ticker != "" {
			return apperrors.ErrTickerForbidden
		}
	}
	return nil
}

// CreateAsset creates an asset, optionally seeding its ledger with an initial
// contribution. A zero startAt dates the contribution at creation time;
// backdated starts let an existing holding accrue from its real opening date.
func (s *AssetService) CreateAsset(ctx context.Context, a model.Asset, initialAmount, initialQuantity float64, startAt time.Time) (model.Asset, error) {
	if err := validateIndexer(a.Indexer); err != nil {
		return model.Asset{}, err
	}

	a.ID = uuid.New().String()
	a.Status = model.AssetActive
	if err := s.assets.InsertAsset(ctx, &a); err != nil {
		return model.Asset{}, err
	}

	if initialAmount > 0 {
		if startAt.IsZero() {
			startAt = s.now()
		}
		if _, err := s.ledger.AddContribution(ctx, a, startAt, initialAmount, initialQuantity); err != nil {
			return model.Asset{}, err
		}
	}
	return a, nil
}

// GetAssets returns all assets of a user.
func (s *AssetService) GetAssets(userID string) ([]model.Asset, error) {
	return s.assets.GetAssets(userID)
}

// GetAsset returns a single asset, scoped to its owner.
func (s *AssetService) GetAsset(userID, assetID string) (model.Asset, error) {
	a, err := s.assets.GetAsset(assetID)
	if err != nil {
		return model.Asset{}, err
	}
	if a.UserID != userID {
		return model.Asset{}, apperrors.ErrAssetNotFound
	}
	return a, nil
}

// CloseAsset marks an asset closed. Closed assets keep their history and stay
// readable; only ledger mutations are refused.
func (s *AssetService) CloseAsset(ctx context.Context, userID, assetID string) (model.Asset, error) {
	a, err := s.GetAsset(userID, assetID)
	if err != nil {
		return model.Asset{}, err
	}
	if err := s.assets.UpdateAssetStatus(ctx, assetID, model.AssetClosed); err != nil {
		return model.Asset{}, err
	}
	a.Status = model.AssetClosed
	return a, nil
}

// DeleteAsset removes an asset and, through the schema's cascade, its entire
// ledger.
func (s *AssetService) DeleteAsset(ctx context.Context, userID, assetID string) error {
	if _, err := s.GetAsset(userID, assetID); err != nil {
		return err
	}
	return s.assets.DeleteAsset(ctx, assetID)
}

// Summary values an asset's open lots as of now and estimates the tax due if
// everything were withdrawn today. Degraded valuation conditions come back as
// warnings on the summary, never as a failed read.
func (s *AssetService) Summary(asset model.Asset) (model.AssetSummary, error) {
	asOf := s.now()
	lots, err := s.ledger.OpenLots(asset, asOf)
	if err != nil {
		return model.AssetSummary{}, err
	}

	values, warnings, err := s.valuation.LotValues(asset, lots, asOf)
	if err != nil {
		return model.AssetSummary{}, err
	}

	summary := model.AssetSummary{AssetID: asset.ID}
	for _, w := range warnings {
		summary.Warnings = append(summary.Warnings, w.Error())
	}

	var estimatedTax float64
	for i, lot := range lots {
		value := values[i]
		gain := value - lot.RemainingPrincipal
		if gain < 0 {
			gain = 0
		}
		taxed := TaxLotConsumption(model.LotConsumption{
			LotID:             lot.OriginTransactionID,
			PrincipalConsumed: lot.RemainingPrincipal,
			QuantityConsumed:  lot.RemainingQuantity,
			HoldingDays:       holdingDays(lot.OpenedAt, asOf),
			GrossGainConsumed: gain,
		}, asset.TaxExempt)

		summary.GrossBalance += value
		summary.QuantityHeld += lot.RemainingQuantity
		estimatedTax += taxed.IncomeTax + taxed.IOF
	}

	summary.GrossBalance = RoundCents(summary.GrossBalance)
	summary.EstimatedTax = RoundCents(estimatedTax)
	summary.EstimatedNetBalance = RoundCents(summary.GrossBalance - summary.EstimatedTax)
	return summary, nil
}
