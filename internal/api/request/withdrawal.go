package request

import "github.com/OnlyTachi/personal-finance-manager/internal/model"

// WithdrawalRequest drives both simulation and commit. For market-priced
// assets Quantity may replace Amount; the currency amount is then derived
// from the latest quote.
type WithdrawalRequest struct {
	AssetID  string  `json:"assetId"`
	Amount   float64 `json:"amount,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`
}

// CommitWithdrawalRequest carries the approved preview back so the commit can
// detect drift between what the user saw and what would execute now.
type CommitWithdrawalRequest struct {
	WithdrawalRequest
	Preview *model.Preview `json:"preview,omitempty"`
}
