package model

import "time"

// LiabilityStatus marks whether a liability is still being paid down.
type LiabilityStatus string

const (
	LiabilityActive LiabilityStatus = "active"
	LiabilityClosed LiabilityStatus = "closed"
)

// Liability is a debt tracked by the user. OutstandingBalance is maintained
// by the user only; toggling installments never derives it. AnnualRate is
// informational, there is no automatic amortization.
type Liability struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId"`
	Name               string          `json:"name"`
	Type               string          `json:"type"`
	OriginalAmount     float64         `json:"originalAmount"`
	OutstandingBalance float64         `json:"outstandingBalance"`
	AnnualRate         float64         `json:"annualRate"`
	TermMonths         int             `json:"termMonths"`
	InstallmentAmount  float64         `json:"installmentAmount"`
	StartDate          time.Time       `json:"startDate"`
	Status             LiabilityStatus `json:"status"`
	CreatedAt          time.Time       `json:"createdAt,omitempty"`
}

// InstallmentStatus is the paid/pending state of one installment.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
)

// Installment is one flat payment of a liability's schedule. Installments are
// generated once at liability creation; toggling status is the only mutation.
type Installment struct {
	ID             string            `json:"id"`
	LiabilityID    string            `json:"liabilityId"`
	SequenceNumber int               `json:"sequenceNumber"`
	DueDate        time.Time         `json:"dueDate"`
	Amount         float64           `json:"amount"`
	Status         InstallmentStatus `json:"status"`
	PaidAt         *time.Time        `json:"paidAt,omitempty"`
}
