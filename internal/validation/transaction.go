package validation

import (
	"strings"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/request"
)

// timestampLayouts are the accepted wire formats for transaction instants.
var timestampLayouts = []string{time.RFC3339, "2006-01-02"}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimestamp parses a wire-format instant. It accepts the same layouts
// the validators do.
func ParseTimestamp(value string) (time.Time, bool) {
	return parseTimestamp(value)
}

// ValidateCreateContribution validates a contribution creation request.
//
// Required fields:
//   - assetId: Must be a valid UUID
//   - timestamp: Must be RFC3339 or YYYY-MM-DD
//   - amount: Must be positive
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateContribution(req request.CreateContributionRequest) (time.Time, error) {
	if err := ValidateUUID(req.AssetID); err != nil {
		return time.Time{}, err
	}

	errors := make(map[string]string)

	var timestamp time.Time
	if strings.TrimSpace(req.Timestamp) == "" {
		errors["timestamp"] = "timestamp is required"
	} else {
		var ok bool
		timestamp, ok = parseTimestamp(req.Timestamp)
		if !ok {
			errors["timestamp"] = "timestamp must be RFC3339 or YYYY-MM-DD"
		}
	}

	if req.Amount <= 0 {
		errors["amount"] = "amount must be positive"
	}
	if req.Quantity < 0 {
		errors["quantity"] = "quantity must not be negative"
	}

	if len(errors) > 0 {
		return time.Time{}, &Error{Fields: errors}
	}

	return timestamp, nil
}

// ValidateUpdateTransaction validates a transaction update request.
// All fields are optional, but if provided, they must meet the same constraints as create.
func ValidateUpdateTransaction(req request.UpdateTransactionRequest) (*time.Time, error) {
	errors := make(map[string]string)

	var timestamp *time.Time
	if req.Timestamp != nil {
		t, ok := parseTimestamp(*req.Timestamp)
		if !ok {
			errors["timestamp"] = "timestamp must be RFC3339 or YYYY-MM-DD"
		} else {
			timestamp = &t
		}
	}
	if req.Amount != nil && *req.Amount <= 0 {
		errors["amount"] = "amount must be positive"
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		errors["quantity"] = "quantity must not be negative"
	}

	if len(errors) > 0 {
		return nil, &Error{Fields: errors}
	}

	return timestamp, nil
}
