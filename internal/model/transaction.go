package model

import "time"

// TransactionKind distinguishes money entering or leaving an asset.
type TransactionKind string

const (
	KindContribution TransactionKind = "contribution"
	KindWithdrawal   TransactionKind = "withdrawal"
)

// Transaction is one ledger entry of an asset. The ledger is append-only with
// corrections: updates and removals force a full recompute of the owning
// asset's derived state. No running balance is ever stored.
//
// Seq is a per-database monotonic counter used to break timestamp ties in
// replay order.
type Transaction struct {
	ID             string          `json:"id"`
	AssetID        string          `json:"assetId"`
	Kind           TransactionKind `json:"kind"`
	Timestamp      time.Time       `json:"timestamp"`
	GrossAmount    float64         `json:"grossAmount"`
	Quantity       float64         `json:"quantity,omitempty"`
	NetAmount      float64         `json:"netAmount"`
	IncomeTax      float64         `json:"incomeTax"`
	TransactionTax float64         `json:"transactionTax"`
	RealizedGain   float64         `json:"realizedGain"`
	Seq            int64           `json:"-"`
	CreatedAt      time.Time       `json:"createdAt,omitempty"`
}

// Lot is a derived, non-persisted contribution tranche. Lots are rebuilt from
// scratch on every replay; a fully consumed lot never reopens.
type Lot struct {
	OriginTransactionID string
	OpenedAt            time.Time
	RemainingPrincipal  float64
	RemainingQuantity   float64
}

// LotConsumption records how much of one lot a withdrawal consumed and the
// unrealized gain realized by that consumption.
type LotConsumption struct {
	LotID             string  `json:"lotId"`
	PrincipalConsumed float64 `json:"principalConsumed"`
	QuantityConsumed  float64 `json:"quantityConsumed,omitempty"`
	HoldingDays       int     `json:"holdingDays"`
	GrossGainConsumed float64 `json:"grossGainConsumed"`
}

// LotTax is one consumed lot with its computed taxes, as exposed in a Preview.
type LotTax struct {
	LotConsumption
	IncomeTax   float64 `json:"incomeTax"`
	IOF         float64 `json:"iof"`
	NetProceeds float64 `json:"netProceeds"`
}

// Preview is the read-only result of simulating a withdrawal. Two previews
// produced from identical inputs with no intervening ledger mutation are
// identical.
type Preview struct {
	AssetID         string    `json:"assetId"`
	AsOf            time.Time `json:"asOf"`
	GrossAmount     float64   `json:"grossAmount"`
	TotalIncomeTax  float64   `json:"totalIncomeTax"`
	TotalIOF        float64   `json:"totalIof"`
	NetAmount       float64   `json:"netAmount"`
	RealizedGain    float64   `json:"realizedGain"`
	PerLotBreakdown []LotTax  `json:"perLotBreakdown"`
}
