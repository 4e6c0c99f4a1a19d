package model

import "time"

// AssetCategory classifies an asset for display and aggregation purposes.
// Categories never drive tax logic; the TaxExempt flag is the single policy switch.
type AssetCategory string

const (
	CategoryFixedIncome AssetCategory = "fixed_income"
	CategoryEquity      AssetCategory = "equity"
	CategoryREIT        AssetCategory = "reit"
	CategoryCrypto      AssetCategory = "crypto"
	CategoryCashBox     AssetCategory = "cash"
	CategoryOther       AssetCategory = "other"
)

// IndexerKind selects the valuation strategy for an asset.
type IndexerKind string

const (
	// IndexerRateIndexed accrues value by compounding a rate against a
	// business-day reference-index series.
	IndexerRateIndexed IndexerKind = "rate_indexed"

	// IndexerMarketPriced values the asset as held quantity times the latest
	// market quote for its ticker.
	IndexerMarketPriced IndexerKind = "market_priced"

	// IndexerManual keeps the asset at its contributed principal.
	IndexerManual IndexerKind = "manual"
)

// ReferenceIndex identifies the rate family a rate-indexed asset follows.
type ReferenceIndex string

const (
	IndexCDI   ReferenceIndex = "cdi"
	IndexIPCA  ReferenceIndex = "ipca"
	IndexFixed ReferenceIndex = "fixed"
)

// Market identifies the quote source family for a market-priced asset.
type Market string

const (
	MarketEquity Market = "equity"
	MarketCrypto Market = "crypto"
)

// AssetStatus marks whether an asset still accepts ledger mutations.
type AssetStatus string

const (
	AssetActive AssetStatus = "active"
	AssetClosed AssetStatus = "closed"
)

// Indexer is the tagged variant selecting how an asset is valued.
// Exactly one shape is valid per kind:
//   - rate_indexed: ReferenceIndex + RatePercent set, Ticker empty
//   - market_priced: Ticker + Market set, rate fields empty
//   - manual: everything empty
type Indexer struct {
	Kind        IndexerKind    `json:"kind"`
	Reference   ReferenceIndex `json:"reference,omitempty"`
	RatePercent float64        `json:"ratePercent,omitempty"`
	Ticker      string         `json:"ticker,omitempty"`
	Market      Market         `json:"market,omitempty"`
}

// Asset represents a single investment position owned by a user.
// Balance and lots are always derived from the transaction ledger, never stored.
type Asset struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Name      string        `json:"name"`
	Category  AssetCategory `json:"category"`
	Indexer   Indexer       `json:"indexer"`
	TaxExempt bool          `json:"taxExempt"`
	Status    AssetStatus   `json:"status"`
	CreatedAt time.Time     `json:"createdAt,omitempty"`
}

// AssetSummary is the valuation view of an asset exposed to callers.
// EstimatedTax is the tax that would be due if all open lots were withdrawn
// as of the summary date.
type AssetSummary struct {
	AssetID             string   `json:"assetId"`
	GrossBalance        float64  `json:"grossBalance"`
	EstimatedTax        float64  `json:"estimatedTax"`
	EstimatedNetBalance float64  `json:"estimatedNetBalance"`
	QuantityHeld        float64  `json:"quantityHeld,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
}
