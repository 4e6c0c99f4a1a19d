package request

type CreateAssetRequest struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	IndexerKind     string  `json:"indexerKind"`
	Reference       string  `json:"reference,omitempty"`
	RatePercent     float64 `json:"ratePercent,omitempty"`
	Ticker          string  `json:"ticker,omitempty"`
	Market          string  `json:"market,omitempty"`
	TaxExempt       bool    `json:"taxExempt"`
	InitialAmount   float64 `json:"initialAmount,omitempty"`
	InitialQuantity float64 `json:"initialQuantity,omitempty"`
	StartDate       string  `json:"startDate,omitempty"`
}
