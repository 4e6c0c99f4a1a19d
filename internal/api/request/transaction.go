package request

type CreateContributionRequest struct {
	AssetID   string  `json:"assetId"`
	Timestamp string  `json:"timestamp"`
	Amount    float64 `json:"amount"`
	Quantity  float64 `json:"quantity,omitempty"`
}

type UpdateTransactionRequest struct {
	Timestamp *string  `json:"timestamp,omitempty"`
	Amount    *float64 `json:"amount,omitempty"`
	Quantity  *float64 `json:"quantity,omitempty"`
}
