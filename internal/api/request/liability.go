package request

type CreateLiabilityRequest struct {
	Name              string  `json:"name"`
	Type              string  `json:"type,omitempty"`
	OriginalAmount    float64 `json:"originalAmount"`
	AnnualRate        float64 `json:"annualRate,omitempty"`
	TermMonths        int     `json:"termMonths"`
	InstallmentAmount float64 `json:"installmentAmount"`
	StartDate         string  `json:"startDate"`
}

type UpdateLiabilityBalanceRequest struct {
	OutstandingBalance float64 `json:"outstandingBalance"`
}

type ToggleInstallmentRequest struct {
	Paid bool `json:"paid"`
}
