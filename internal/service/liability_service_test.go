package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/testutil"
)

func newLiability(userID string) model.Liability {
	return model.Liability{
		UserID:            userID,
		Name:              "Car loan",
		Type:              "loan",
		OriginalAmount:    24000,
		AnnualRate:        14.5,
		TermMonths:        24,
		InstallmentAmount: 1150,
		StartDate:         time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateLiability(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestLiabilityService(t, db)

	t.Run("generates one installment per month of the term", func(t *testing.T) {
		l, installments, err := svc.CreateLiability(t.Context(), newLiability(userID))
		if err != nil {
			t.Fatalf("CreateLiability failed: %v", err)
		}

		if l.Status != model.LiabilityActive {
			t.Errorf("status = %s, want active", l.Status)
		}
		if l.OutstandingBalance != l.OriginalAmount {
			t.Errorf("outstanding balance = %v, want original amount %v", l.OutstandingBalance, l.OriginalAmount)
		}
		if len(installments) != 24 {
			t.Fatalf("expected 24 installments, got %d", len(installments))
		}

		for i, inst := range installments {
			k := i + 1
			if inst.SequenceNumber != k {
				t.Errorf("installment %d sequence = %d, want %d", i, inst.SequenceNumber, k)
			}
			wantDue := l.StartDate.AddDate(0, k, 0)
			if !inst.DueDate.Equal(wantDue) {
				t.Errorf("installment %d due = %v, want %v", k, inst.DueDate, wantDue)
			}
			if inst.Amount != 1150 {
				t.Errorf("installment %d amount = %v, want flat 1150", k, inst.Amount)
			}
			if inst.Status != model.InstallmentPending {
				t.Errorf("installment %d status = %s, want pending", k, inst.Status)
			}
		}
	})

	t.Run("rejects non-positive figures", func(t *testing.T) {
		for name, mutate := range map[string]func(*model.Liability){
			"zero original amount":    func(l *model.Liability) { l.OriginalAmount = 0 },
			"zero installment amount": func(l *model.Liability) { l.InstallmentAmount = 0 },
			"zero term":               func(l *model.Liability) { l.TermMonths = 0 },
		} {
			t.Run(name, func(t *testing.T) {
				l := newLiability(userID)
				mutate(&l)
				_, _, err := svc.CreateLiability(t.Context(), l)
				if !errors.Is(err, apperrors.ErrNegativeAmount) {
					t.Errorf("expected ErrNegativeAmount, got %v", err)
				}
			})
		}
	})
}

func TestToggleInstallment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestLiabilityService(t, db)

	l, installments, err := svc.CreateLiability(t.Context(), newLiability(userID))
	if err != nil {
		t.Fatalf("CreateLiability failed: %v", err)
	}
	first := installments[0]

	t.Run("marking paid stamps the payment time", func(t *testing.T) {
		inst, err := svc.ToggleInstallment(t.Context(), userID, first.ID, true)
		if err != nil {
			t.Fatalf("ToggleInstallment failed: %v", err)
		}
		if inst.Status != model.InstallmentPaid {
			t.Errorf("status = %s, want paid", inst.Status)
		}
		if inst.PaidAt == nil {
			t.Error("PaidAt not set on paid installment")
		}
	})

	t.Run("repeating the same state is a no-op", func(t *testing.T) {
		again, err := svc.ToggleInstallment(t.Context(), userID, first.ID, true)
		if err != nil {
			t.Fatalf("ToggleInstallment failed: %v", err)
		}
		if again.Status != model.InstallmentPaid {
			t.Errorf("status = %s, want still paid", again.Status)
		}
	})

	t.Run("re-pending clears the payment time", func(t *testing.T) {
		inst, err := svc.ToggleInstallment(t.Context(), userID, first.ID, false)
		if err != nil {
			t.Fatalf("ToggleInstallment failed: %v", err)
		}
		if inst.Status != model.InstallmentPending {
			t.Errorf("status = %s, want pending", inst.Status)
		}
		if inst.PaidAt != nil {
			t.Errorf("PaidAt = %v, want cleared", inst.PaidAt)
		}
	})

	t.Run("toggling never touches the outstanding balance", func(t *testing.T) {
		if _, err := svc.ToggleInstallment(t.Context(), userID, installments[1].ID, true); err != nil {
			t.Fatalf("ToggleInstallment failed: %v", err)
		}

		stored, _, err := svc.GetLiability(userID, l.ID)
		if err != nil {
			t.Fatalf("GetLiability failed: %v", err)
		}
		if stored.OutstandingBalance != l.OriginalAmount {
			t.Errorf("outstanding balance = %v, want untouched %v", stored.OutstandingBalance, l.OriginalAmount)
		}
	})

	t.Run("another user's installment is invisible", func(t *testing.T) {
		other := testutil.CreateUser(t, db, "mallory")
		_, err := svc.ToggleInstallment(t.Context(), other, first.ID, true)
		if !errors.Is(err, apperrors.ErrInstallmentNotFound) {
			t.Errorf("expected ErrInstallmentNotFound, got %v", err)
		}
	})
}

func TestUpdateOutstandingBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	userID := testutil.CreateUser(t, db, "alice")
	svc := testutil.NewTestLiabilityService(t, db)

	l, _, err := svc.CreateLiability(t.Context(), newLiability(userID))
	if err != nil {
		t.Fatalf("CreateLiability failed: %v", err)
	}

	updated, err := svc.UpdateOutstandingBalance(t.Context(), userID, l.ID, 18000)
	if err != nil {
		t.Fatalf("UpdateOutstandingBalance failed: %v", err)
	}
	if updated.OutstandingBalance != 18000 {
		t.Errorf("balance = %v, want 18000", updated.OutstandingBalance)
	}

	if _, err := svc.UpdateOutstandingBalance(t.Context(), userID, l.ID, -1); !errors.Is(err, apperrors.ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount for negative balance, got %v", err)
	}

	other := testutil.CreateUser(t, db, "mallory")
	if _, err := svc.UpdateOutstandingBalance(t.Context(), other, l.ID, 0); !errors.Is(err, apperrors.ErrLiabilityNotFound) {
		t.Errorf("expected ErrLiabilityNotFound for foreign liability, got %v", err)
	}
}
