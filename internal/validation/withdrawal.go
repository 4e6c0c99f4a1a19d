package validation

import (
	"github.com/OnlyTachi/personal-finance-manager/internal/api/request"
)

// ValidateWithdrawal validates a withdrawal simulation or commit request.
// Either a positive amount or a positive quantity must be present; quantity
// alone only makes sense for market-priced assets, which the service checks.
func ValidateWithdrawal(req request.WithdrawalRequest) error {
	if err := ValidateUUID(req.AssetID); err != nil {
		return err
	}

	errors := make(map[string]string)

	if req.Amount < 0 {
		errors["amount"] = "amount must not be negative"
	}
	if req.Quantity < 0 {
		errors["quantity"] = "quantity must not be negative"
	}
	if req.Amount == 0 && req.Quantity == 0 {
		errors["amount"] = "amount or quantity is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
