package validation

import (
	"fmt"
	"strings"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/request"
)

// ValidCategory contains the allowed asset category values.
var ValidCategory = map[string]bool{
	"fixed_income": true, "equity": true, "reit": true,
	"crypto": true, "cash": true, "other": true,
}

// ValidIndexerKind contains the allowed valuation strategy values.
var ValidIndexerKind = map[string]bool{
	"rate_indexed": true, "market_priced": true, "manual": true,
}

// ValidReference contains the allowed reference index values.
var ValidReference = map[string]bool{
	"cdi": true, "ipca": true, "fixed": true,
}

// ValidMarket contains the allowed quote market values.
var ValidMarket = map[string]bool{
	"equity": true, "crypto": true,
}

// ValidateCreateAsset validates an asset creation request.
// The indexer is a tagged variant: each kind requires its own fields and
// forbids the others'.
//
// Required fields:
//   - name: Must be non-empty
//   - category: Must be one of: fixed_income, equity, reit, crypto, cash, other
//   - indexerKind: Must be one of: rate_indexed, market_priced, manual
//   - reference + ratePercent: Required for rate_indexed
//   - ticker + market: Required for market_priced, forbidden otherwise
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateAsset(req request.CreateAssetRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	if strings.TrimSpace(req.Category) == "" {
		errors["category"] = "category is required"
	} else if !ValidCategory[req.Category] {
		errors["category"] = fmt.Sprintf("invalid category: %s", req.Category)
	}

	switch req.IndexerKind {
	case "rate_indexed":
		if !ValidReference[req.Reference] {
			errors["reference"] = fmt.Sprintf("invalid reference: %s", req.Reference)
		}
		if req.RatePercent <= 0 {
			errors["ratePercent"] = "ratePercent must be positive"
		}
		if req.Ticker != "" {
			errors["ticker"] = "ticker is not allowed for rate_indexed assets"
		}
	case "market_priced":
		if strings.TrimSpace(req.Ticker) == "" {
			errors["ticker"] = "ticker is required"
		}
		if !ValidMarket[req.Market] {
			errors["market"] = fmt.Sprintf("invalid market: %s", req.Market)
		}
		if req.Reference != "" || req.RatePercent != 0 {
			errors["reference"] = "rate fields are not allowed for market_priced assets"
		}
	case "manual":
		if req.Ticker != "" {
			errors["ticker"] = "ticker is not allowed for manual assets"
		}
		if req.Reference != "" || req.RatePercent != 0 {
			errors["reference"] = "rate fields are not allowed for manual assets"
		}
	default:
		errors["indexerKind"] = fmt.Sprintf("invalid indexerKind: %s", req.IndexerKind)
	}

	if req.InitialAmount < 0 {
		errors["initialAmount"] = "initialAmount must not be negative"
	}
	if req.IndexerKind == "market_priced" && req.InitialAmount > 0 && req.InitialQuantity <= 0 {
		errors["initialQuantity"] = "initialQuantity is required for market_priced assets"
	}
	if req.StartDate != "" {
		if _, ok := parseTimestamp(req.StartDate); !ok {
			errors["startDate"] = "startDate must be RFC3339 or YYYY-MM-DD"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
