package service_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/service"
	"github.com/OnlyTachi/personal-finance-manager/internal/testutil"
)

func TestCompoundProjection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestProjectionService(t, db)

	t.Run("zero rate accumulates contributions only", func(t *testing.T) {
		result, err := svc.Compound(service.ProjectionInput{
			InitialAmount:       1000,
			MonthlyContribution: 100,
			Months:              12,
		})
		if err != nil {
			t.Fatalf("Compound failed: %v", err)
		}
		if result.FinalAmount != 2200 {
			t.Errorf("final = %v, want 2200", result.FinalAmount)
		}
		if result.TotalInterest != 0 {
			t.Errorf("interest = %v, want 0", result.TotalInterest)
		}
	})

	t.Run("single deposit compounds for a full year", func(t *testing.T) {
		result, err := svc.Compound(service.ProjectionInput{
			InitialAmount: 1000,
			AnnualRate:    12,
			Months:        12,
		})
		if err != nil {
			t.Fatalf("Compound failed: %v", err)
		}
		// Twelve months at the compound-equivalent monthly rate lands back
		// on the annual rate exactly.
		if math.Abs(result.FinalAmount-1120) > 0.01 {
			t.Errorf("final = %v, want 1120", result.FinalAmount)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		for name, in := range map[string]service.ProjectionInput{
			"negative initial": {InitialAmount: -1, Months: 12},
			"negative monthly": {MonthlyContribution: -1, Months: 12},
			"negative rate":    {AnnualRate: -1, Months: 12},
			"zero months":      {InitialAmount: 100, Months: 0},
		} {
			t.Run(name, func(t *testing.T) {
				if _, err := svc.Compound(in); !errors.Is(err, apperrors.ErrNegativeAmount) {
					t.Errorf("expected ErrNegativeAmount, got %v", err)
				}
			})
		}
	})
}

func TestSimpleProjection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestProjectionService(t, db)

	result, err := svc.Simple(service.ProjectionInput{
		InitialAmount: 1000,
		AnnualRate:    12,
		Months:        12,
	})
	if err != nil {
		t.Fatalf("Simple failed: %v", err)
	}
	// 1% of 1000 per month, never compounding.
	if result.TotalInterest != 120 {
		t.Errorf("interest = %v, want 120", result.TotalInterest)
	}
	if result.FinalAmount != 1120 {
		t.Errorf("final = %v, want 1120", result.FinalAmount)
	}
}

func TestCompoundBeatsSimple(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestProjectionService(t, db)

	in := service.ProjectionInput{
		InitialAmount:       5000,
		MonthlyContribution: 500,
		AnnualRate:          10,
		Months:              120,
	}
	compound, err := svc.Compound(in)
	if err != nil {
		t.Fatalf("Compound failed: %v", err)
	}
	simple, err := svc.Simple(in)
	if err != nil {
		t.Fatalf("Simple failed: %v", err)
	}
	if compound.FinalAmount <= simple.FinalAmount {
		t.Errorf("compound %v should exceed simple %v over ten years", compound.FinalAmount, simple.FinalAmount)
	}
}

func TestFirstMillion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestProjectionService(t, db)

	t.Run("already there takes zero months", func(t *testing.T) {
		result, err := svc.FirstMillion(service.ProjectionInput{InitialAmount: 1_000_000, MonthlyContribution: 1})
		if err != nil {
			t.Fatalf("FirstMillion failed: %v", err)
		}
		if result.Months != 0 {
			t.Errorf("months = %d, want 0", result.Months)
		}
	})

	t.Run("reaches the target", func(t *testing.T) {
		result, err := svc.FirstMillion(service.ProjectionInput{
			InitialAmount:       100_000,
			MonthlyContribution: 5000,
			AnnualRate:          10,
		})
		if err != nil {
			t.Fatalf("FirstMillion failed: %v", err)
		}
		if result.FinalAmount < 1_000_000 {
			t.Errorf("final = %v, want at least the million", result.FinalAmount)
		}
		if result.Months <= 0 || result.Months >= 1200 {
			t.Errorf("months = %d, want a reachable horizon", result.Months)
		}
	})

	t.Run("unreachable target stops at the cap", func(t *testing.T) {
		result, err := svc.FirstMillion(service.ProjectionInput{MonthlyContribution: 1})
		if err != nil {
			t.Fatalf("FirstMillion failed: %v", err)
		}
		if result.Months != 1200 {
			t.Errorf("months = %d, want capped at 1200", result.Months)
		}
	})
}

func TestReserve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestProjectionService(t, db)

	target, result, err := svc.Reserve(3000, 6, service.ProjectionInput{MonthlyContribution: 2000})
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if target != 18000 {
		t.Errorf("target = %v, want 6 months of 3000", target)
	}
	// Without interest, 2000 a month reaches 18000 in exactly 9 months.
	if result.Months != 9 {
		t.Errorf("months = %d, want 9", result.Months)
	}

	if _, _, err := svc.Reserve(0, 6, service.ProjectionInput{MonthlyContribution: 1}); !errors.Is(err, apperrors.ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount for zero expenses, got %v", err)
	}
}

func TestCompareScenarios(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestProjectionService(t, db)

	comparisons, err := svc.Compare(service.ProjectionInput{
		InitialAmount: 1000,
		Months:        12,
	}, map[string]float64{"savings": 6, "cdi": 12})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(comparisons) != 2 {
		t.Fatalf("expected 2 comparisons, got %d", len(comparisons))
	}

	// Scenarios come back sorted by label, so repeated requests agree.
	if comparisons[0].Label != "cdi" || comparisons[1].Label != "savings" {
		t.Errorf("labels = %s, %s, want cdi then savings", comparisons[0].Label, comparisons[1].Label)
	}
	if comparisons[0].Result.FinalAmount <= comparisons[1].Result.FinalAmount {
		t.Errorf("higher rate should yield more: %v vs %v",
			comparisons[0].Result.FinalAmount, comparisons[1].Result.FinalAmount)
	}
}

func TestCDIProjection(t *testing.T) {
	t.Run("uses the stored series rate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestProjectionService(t, db)
		now := time.Now().UTC()
		testutil.InsertIndexRates(t, db, model.IndexCDI, now.AddDate(0, 0, -7), now, 12)

		result, err := svc.CDI(service.ProjectionInput{InitialAmount: 1000, Months: 12}, 100)
		if err != nil {
			t.Fatalf("CDI failed: %v", err)
		}
		if math.Abs(result.FinalAmount-1120) > 0.01 {
			t.Errorf("final = %v, want 1120 at 100%% of a 12%% CDI", result.FinalAmount)
		}
	})

	t.Run("fails without a stored series", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestProjectionService(t, db)

		_, err := svc.CDI(service.ProjectionInput{InitialAmount: 1000, Months: 12}, 100)
		if !errors.Is(err, apperrors.ErrIndexRateNotFound) {
			t.Errorf("expected ErrIndexRateNotFound, got %v", err)
		}
	})
}
