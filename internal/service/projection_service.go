package service

import (
	"math"
	"sort"
	"time"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
)

// firstMillionTarget is the goal amount of the "first million" projection.
const firstMillionTarget = 1_000_000

// maxProjectionMonths caps goal searches so an unreachable target terminates.
const maxProjectionMonths = 1200

// ProjectionInput is the common request for savings projections. AnnualRate
// is a percentage; months counts future monthly contributions, with the
// initial amount applied at month zero.
type ProjectionInput struct {
	InitialAmount       float64 `json:"initialAmount"`
	MonthlyContribution float64 `json:"monthlyContribution"`
	AnnualRate          float64 `json:"annualRate"`
	Months              int     `json:"months"`
}

// ProjectionResult is the outcome of a savings projection.
type ProjectionResult struct {
	FinalAmount   float64 `json:"finalAmount"`
	TotalInvested float64 `json:"totalInvested"`
	TotalInterest float64 `json:"totalInterest"`
	Months        int     `json:"months"`
}

// RateComparison is one labelled scenario of a comparison projection.
type RateComparison struct {
	Label      string           `json:"label"`
	AnnualRate float64          `json:"annualRate"`
	Result     ProjectionResult `json:"result"`
}

// ProjectionService computes forward-looking savings estimates. These are
// standalone calculators: they read the stored CDI series for the CDI-linked
// variants but never touch the ledger.
type ProjectionService struct {
	rates RateSource
	now   func() time.Time
}

// NewProjectionService creates a new ProjectionService with the provided rate source.
func NewProjectionService(rates RateSource) *ProjectionService {
	return &ProjectionService{rates: rates, now: time.Now}
}

// monthlyRate converts an annual percentage to its compound monthly factor.
func monthlyRate(annualRate float64) float64 {
	return math.Pow(1+annualRate/100, 1.0/12) - 1
}

// Compound projects a balance with monthly compounding: each month accrues
// interest and then receives the contribution.
func (s *ProjectionService) Compound(in ProjectionInput) (ProjectionResult, error) {
	if err := validateProjection(in); err != nil {
		return ProjectionResult{}, err
	}

	rate := monthlyRate(in.AnnualRate)
	balance := in.InitialAmount
	for range in.Months {
		balance = balance*(1+rate) + in.MonthlyContribution
	}

	invested := in.InitialAmount + in.MonthlyContribution*float64(in.Months)
	return ProjectionResult{
		FinalAmount:   RoundCents(balance),
		TotalInvested: RoundCents(invested),
		TotalInterest: RoundCents(balance - invested),
		Months:        in.Months,
	}, nil
}

// Simple projects a balance under simple interest: only the running invested
// principal earns, nothing compounds.
func (s *ProjectionService) Simple(in ProjectionInput) (ProjectionResult, error) {
	if err := validateProjection(in); err != nil {
		return ProjectionResult{}, err
	}

	rate := in.AnnualRate / 100 / 12
	invested := in.InitialAmount
	interest := 0.0
	for range in.Months {
		interest += invested * rate
		invested += in.MonthlyContribution
	}

	return ProjectionResult{
		FinalAmount:   RoundCents(invested + interest),
		TotalInvested: RoundCents(invested),
		TotalInterest: RoundCents(interest),
		Months:        in.Months,
	}, nil
}

// FirstMillion reports how many months of compound contributions reach one
// million, and the state at that point. Months in the input is ignored.
func (s *ProjectionService) FirstMillion(in ProjectionInput) (ProjectionResult, error) {
	in.Months = 1
	if err := validateProjection(in); err != nil {
		return ProjectionResult{}, err
	}

	rate := monthlyRate(in.AnnualRate)
	balance := in.InitialAmount
	invested := in.InitialAmount

	months := 0
	for balance < firstMillionTarget && months < maxProjectionMonths {
		balance = balance*(1+rate) + in.MonthlyContribution
		invested += in.MonthlyContribution
		months++
	}

	return ProjectionResult{
		FinalAmount:   RoundCents(balance),
		TotalInvested: RoundCents(invested),
		TotalInterest: RoundCents(balance - invested),
		Months:        months,
	}, nil
}

// Reserve computes an emergency reserve target of monthlyExpenses times
// coverageMonths and how many months of contributions reach it, with the
// reserve earning compound interest along the way.
func (s *ProjectionService) Reserve(monthlyExpenses float64, coverageMonths int, in ProjectionInput) (target float64, result ProjectionResult, err error) {
	if monthlyExpenses <= 0 || coverageMonths <= 0 {
		return 0, ProjectionResult{}, apperrors.ErrNegativeAmount
	}
	in.Months = 1
	if err := validateProjection(in); err != nil {
		return 0, ProjectionResult{}, err
	}

	target = RoundCents(monthlyExpenses * float64(coverageMonths))
	rate := monthlyRate(in.AnnualRate)
	balance := in.InitialAmount
	invested := in.InitialAmount

	months := 0
	for balance < target && months < maxProjectionMonths {
		balance = balance*(1+rate) + in.MonthlyContribution
		invested += in.MonthlyContribution
		months++
	}

	result = ProjectionResult{
		FinalAmount:   RoundCents(balance),
		TotalInvested: RoundCents(invested),
		TotalInterest: RoundCents(balance - invested),
		Months:        months,
	}
	return target, result, nil
}

// Compare runs the same compound projection under several labelled rates.
// Scenarios come back in label order so identical requests produce identical
// responses.
func (s *ProjectionService) Compare(in ProjectionInput, scenarios map[string]float64) ([]RateComparison, error) {
	labels := make([]string, 0, len(scenarios))
	for label := range scenarios {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	comparisons := make([]RateComparison, 0, len(labels))
	for _, label := range labels {
		scenario := in
		scenario.AnnualRate = scenarios[label]
		result, err := s.Compound(scenario)
		if err != nil {
			return nil, err
		}
		comparisons = append(comparisons, RateComparison{
			Label:      label,
			AnnualRate: scenarios[label],
			Result:     result,
		})
	}
	return comparisons, nil
}

// CDI projects a compound balance earning a percentage of the current CDI
// rate, read from the stored series. cdiPercent of 100 means 100% of CDI.
func (s *ProjectionService) CDI(in ProjectionInput, cdiPercent float64) (ProjectionResult, error) {
	if cdiPercent <= 0 {
		return ProjectionResult{}, apperrors.ErrNegativeAmount
	}

	annual, ok, err := s.rates.DailyRate(model.IndexCDI, s.now())
	if err != nil {
		return ProjectionResult{}, err
	}
	if !ok {
		return ProjectionResult{}, apperrors.ErrIndexRateNotFound
	}

	in.AnnualRate = annual * cdiPercent / 100
	return s.Compound(in)
}

func validateProjection(in ProjectionInput) error {
	if in.InitialAmount < 0 || in.MonthlyContribution < 0 || in.AnnualRate < 0 {
		return apperrors.ErrNegativeAmount
	}
	if in.Months <= 0 {
		return apperrors.ErrNegativeAmount
	}
	return nil
}
