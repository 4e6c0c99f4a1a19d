package request

type ProjectionRequest struct {
	InitialAmount       float64 `json:"initialAmount"`
	MonthlyContribution float64 `json:"monthlyContribution"`
	AnnualRate          float64 `json:"annualRate,omitempty"`
	Months              int     `json:"months,omitempty"`
}

type ReserveProjectionRequest struct {
	ProjectionRequest
	MonthlyExpenses float64 `json:"monthlyExpenses"`
	CoverageMonths  int     `json:"coverageMonths"`
}

type CompareProjectionRequest struct {
	ProjectionRequest
	Scenarios map[string]float64 `json:"scenarios"`
}

type CDIProjectionRequest struct {
	ProjectionRequest
	CDIPercent float64 `json:"cdiPercent"`
}
