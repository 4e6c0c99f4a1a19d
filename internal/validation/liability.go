package validation

import (
	"strings"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/request"
)

// ValidateCreateLiability validates a liability creation request.
//
// Required fields:
//   - name: Must be non-empty
//   - originalAmount: Must be positive
//   - termMonths: Must be positive
//   - installmentAmount: Must be positive
//   - startDate: Must be in YYYY-MM-DD format
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateLiability(req request.CreateLiabilityRequest) (time.Time, error) {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}
	if req.OriginalAmount <= 0 {
		errors["originalAmount"] = "originalAmount must be positive"
	}
	if req.TermMonths <= 0 {
		errors["termMonths"] = "termMonths must be positive"
	}
	if req.InstallmentAmount <= 0 {
		errors["installmentAmount"] = "installmentAmount must be positive"
	}
	if req.AnnualRate < 0 {
		errors["annualRate"] = "annualRate must not be negative"
	}

	var startDate time.Time
	if strings.TrimSpace(req.StartDate) == "" {
		errors["startDate"] = "startDate is required"
	} else {
		var err error
		startDate, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			errors["startDate"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return time.Time{}, &Error{Fields: errors}
	}

	return startDate, nil
}

// ValidateBalanceUpdate validates an outstanding balance edit.
func ValidateBalanceUpdate(req request.UpdateLiabilityBalanceRequest) error {
	if req.OutstandingBalance < 0 {
		return &Error{Fields: map[string]string{
			"outstandingBalance": "outstandingBalance must not be negative",
		}}
	}
	return nil
}
