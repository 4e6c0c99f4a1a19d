package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
	"github.com/OnlyTachi/personal-finance-manager/internal/repository"
)

// LiabilityService manages debts and their installment schedules. The
// schedule is generated once at creation: termMonths flat installments, one
// month apart, starting one month after the start date. Paying installments
// never touches the outstanding balance; that figure is user-maintained.
type LiabilityService struct {
	liabilities *repository.LiabilityRepository
	now         func() time.Time
}

// NewLiabilityService creates a new LiabilityService with the provided repository.
func NewLiabilityService(liabilities *repository.LiabilityRepository) *LiabilityService {
	return &LiabilityService{
		liabilities: liabilities,
		now:         time.Now,
	}
}

// CreateLiability stores a liability together with its generated installment
// schedule in one transaction.
func (s *LiabilityService) CreateLiability(ctx context.Context, l model.Liability) (model.Liability, []model.Installment, error) {
	if l.OriginalAmount <= 0 || l.InstallmentAmount <= 0 || l.TermMonths <= 0 {
		return model.Liability{}, nil, apperrors.ErrNegativeAmount
	}

	l.ID = uuid.New().String()
	l.Status = model.LiabilityActive
	l.OutstandingBalance = l.OriginalAmount

	installments := generateSchedule(l)
	if err := s.liabilities.InsertLiability(ctx, &l, installments); err != nil {
		return model.Liability{}, nil, err
	}
	return l, installments, nil
}

// generateSchedule produces the flat installment plan: sequence k of
// termMonths is due k months after the start date.
func generateSchedule(l model.Liability) []model.Installment {
	installments := make([]model.Installment, 0, l.TermMonths)
	for k := 1; k <= l.TermMonths; k++ {
		installments = append(installments, model.Installment{
			ID:             uuid.New().String(),
			LiabilityID:    l.ID,
			SequenceNumber: k,
			DueDate:        l.StartDate.AddDate(0, k, 0),
			Amount:         l.InstallmentAmount,
			Status:         model.InstallmentPending,
		})
	}
	return installments
}

// GetLiabilities returns all liabilities of a user.
func (s *LiabilityService) GetLiabilities(userID string) ([]model.Liability, error) {
	return s.liabilities.GetLiabilities(userID)
}

// GetLiability returns a liability and its schedule, scoped to its owner.
func (s *LiabilityService) GetLiability(userID, liabilityID string) (model.Liability, []model.Installment, error) {
	l, err := s.liabilities.GetLiability(liabilityID)
	if err != nil {
		return model.Liability{}, nil, err
	}
	if l.UserID != userID {
		return model.Liability{}, nil, apperrors.ErrLiabilityNotFound
	}
	installments, err := s.liabilities.GetInstallments(liabilityID)
	if err != nil {
		return model.Liability{}, nil, err
	}
	return l, installments, nil
}

// UpdateOutstandingBalance sets the user-maintained balance figure.
func (s *LiabilityService) UpdateOutstandingBalance(ctx context.Context, userID, liabilityID string, balance float64) (model.Liability, error) {
	l, err := s.liabilities.GetLiability(liabilityID)
	if err != nil {
		return model.Liability{}, err
	}
	if l.UserID != userID {
		return model.Liability{}, apperrors.ErrLiabilityNotFound
	}
	if balance < 0 {
		return model.Liability{}, apperrors.ErrNegativeAmount
	}

	if err := s.liabilities.UpdateOutstandingBalance(ctx, liabilityID, balance); err != nil {
		return model.Liability{}, err
	}
	l.OutstandingBalance = balance
	return l, nil
}

// DeleteLiability removes a liability and its schedule.
func (s *LiabilityService) DeleteLiability(ctx context.Context, userID, liabilityID string) error {
	l, err := s.liabilities.GetLiability(liabilityID)
	if err != nil {
		return err
	}
	if l.UserID != userID {
		return apperrors.ErrLiabilityNotFound
	}
	return s.liabilities.DeleteLiability(ctx, liabilityID)
}

// ToggleInstallment flips an installment between pending and paid. Marking an
// already paid installment paid again is a no-op, as is re-pending a pending
// one: the operation is idempotent per target state.
func (s *LiabilityService) ToggleInstallment(ctx context.Context, userID, installmentID string, paid bool) (model.Installment, error) {
	inst, err := s.liabilities.GetInstallment(installmentID)
	if err != nil {
		return model.Installment{}, err
	}
	l, err := s.liabilities.GetLiability(inst.LiabilityID)
	if err != nil {
		return model.Installment{}, err
	}
	if l.UserID != userID {
		return model.Installment{}, apperrors.ErrInstallmentNotFound
	}

	target := model.InstallmentPending
	if paid {
		target = model.InstallmentPaid
	}
	if inst.Status == target {
		return inst, nil
	}

	inst.Status = target
	if paid {
		paidAt := s.now()
		inst.PaidAt = &paidAt
	} else {
		inst.PaidAt = nil
	}

	if err := s.liabilities.UpdateInstallmentStatus(ctx, &inst); err != nil {
		return model.Installment{}, err
	}
	return inst, nil
}
