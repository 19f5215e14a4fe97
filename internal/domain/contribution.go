package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contribution statuses
const (
	ContributionStatusPending = "PENDING"
	ContributionStatusOnTime  = "ON_TIME"
	ContributionStatusLate    = "LATE"
)

// Owed projection statuses
const (
	OwedStatusPaid    = "PAID"
	OwedStatusPending = "PENDING"
	OwedStatusOverdue = "OVERDUE"
)

// Contribution records one member payment for one cycle. Immutable once
// created; (member_id, chama_id, cycle) is unique.
type Contribution struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	MemberID      int64           `json:"member_id" db:"member_id"`
	ChamaID       int64           `json:"chama_id" db:"chama_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	DatePaid      time.Time       `json:"date_paid" db:"date_paid"`
	Cycle         string          `json:"cycle" db:"cycle"`
	Status        string          `json:"status" db:"status"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount" db:"penalty_amount"`
	Notes         string          `json:"notes" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

type AddContributionRequest struct {
	MemberID int64           `json:"member_id" validate:"required,gt=0"`
	ChamaID  int64           `json:"chama_id" validate:"required,gt=0"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	DatePaid string          `json:"date_paid" validate:"required,datetime=2006-01-02"`
	Cycle    string          `json:"cycle" validate:"required"`
	Notes    string          `json:"notes,omitempty"`
}

// OwedResult is a read-only projection of what a member currently owes.
type OwedResult struct {
	MemberID        int64           `json:"member_id"`
	ChamaID         int64           `json:"chama_id"`
	CurrentCycle    string          `json:"current_cycle"`
	ExpectedAmount  decimal.Decimal `json:"expected_amount"`
	AmountOwed      decimal.Decimal `json:"amount_owed"`
	Status          string          `json:"status"`
	PenaltyAmount   decimal.Decimal `json:"penalty_amount"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	LastPaymentDate *time.Time      `json:"last_payment_date,omitempty"`
}
