package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/request"
	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
)

const testAssetID = "4b8c7f1e-96e2-4f4c-9a34-5f09d2e6c310"

func TestValidateCreateContribution(t *testing.T) {
	t.Run("accepts RFC3339 timestamps", func(t *testing.T) {
		ts, err := ValidateCreateContribution(request.CreateContributionRequest{
			AssetID:   testAssetID,
			Timestamp: "2025-03-10T14:30:00Z",
			Amount:    100,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
		if !ts.Equal(want) {
			t.Errorf("timestamp = %v, want %v", ts, want)
		}
	})

	t.Run("accepts bare dates", func(t *testing.T) {
		ts, err := ValidateCreateContribution(request.CreateContributionRequest{
			AssetID:   testAssetID,
			Timestamp: "2025-03-10",
			Amount:    100,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !ts.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("timestamp = %v, want midnight UTC", ts)
		}
	})

	t.Run("rejects a malformed asset ID before anything else", func(t *testing.T) {
		_, err := ValidateCreateContribution(request.CreateContributionRequest{
			AssetID:   "not-a-uuid",
			Timestamp: "2025-03-10",
			Amount:    100,
		})
		if !errors.Is(err, apperrors.ErrInvalidUUID) {
			t.Errorf("expected ErrInvalidUUID, got %v", err)
		}
	})

	tests := []struct {
		name      string
		req       request.CreateContributionRequest
		wantField string
	}{
		{
			name:      "missing timestamp",
			req:       request.CreateContributionRequest{AssetID: testAssetID, Amount: 100},
			wantField: "timestamp",
		},
		{
			name:      "malformed timestamp",
			req:       request.CreateContributionRequest{AssetID: testAssetID, Timestamp: "10/03/2025", Amount: 100},
			wantField: "timestamp",
		},
		{
			name:      "non-positive amount",
			req:       request.CreateContributionRequest{AssetID: testAssetID, Timestamp: "2025-03-10", Amount: 0},
			wantField: "amount",
		},
		{
			name:      "negative quantity",
			req:       request.CreateContributionRequest{AssetID: testAssetID, Timestamp: "2025-03-10", Amount: 100, Quantity: -1},
			wantField: "quantity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateCreateContribution(tt.req)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			verr, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if _, found := verr.Fields[tt.wantField]; !found {
				t.Errorf("expected error on field %q, got %v", tt.wantField, verr.Fields)
			}
		})
	}
}

func TestValidateUpdateTransaction(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(f float64) *float64 { return &f }

	t.Run("empty update passes", func(t *testing.T) {
		ts, err := ValidateUpdateTransaction(request.UpdateTransactionRequest{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ts != nil {
			t.Errorf("timestamp = %v, want nil when omitted", ts)
		}
	})

	t.Run("provided fields are checked", func(t *testing.T) {
		if _, err := ValidateUpdateTransaction(request.UpdateTransactionRequest{Amount: num(-5)}); err == nil {
			t.Error("expected error for negative amount")
		}
		if _, err := ValidateUpdateTransaction(request.UpdateTransactionRequest{Timestamp: str("soon")}); err == nil {
			t.Error("expected error for malformed timestamp")
		}
	})

	t.Run("parsed timestamp is returned", func(t *testing.T) {
		ts, err := ValidateUpdateTransaction(request.UpdateTransactionRequest{Timestamp: str("2025-03-10")})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ts == nil || !ts.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("timestamp = %v, want parsed date", ts)
		}
	})
}
