package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan statuses
const (
	LoanStatusPending  = "PENDING"
	LoanStatusApproved = "APPROVED"
	LoanStatusRejected = "REJECTED"
)

// Loan types. Rate tiers branch on these, so unrecognized input is folded
// into LoanTypeOther rather than carried as an open string.
const (
	LoanTypePersonal = "personal"
	LoanTypeBusiness = "business"
	LoanTypeMortgage = "mortgage"
	LoanTypeAuto     = "auto"
	LoanTypeOther    = "other"
)

// NormalizeLoanType maps free-form input to one of the known loan types.
func NormalizeLoanType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case LoanTypePersonal:
		return LoanTypePersonal
	case LoanTypeBusiness:
		return LoanTypeBusiness
	case LoanTypeMortgage:
		return LoanTypeMortgage
	case LoanTypeAuto:
		return LoanTypeAuto
	default:
		return LoanTypeOther
	}
}

// LoanApplication represents one loan request. InterestRate and
// TotalRepayment are derived once at application time and never recomputed.
type LoanApplication struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	MemberID        int64           `json:"member_id" db:"member_id"`
	ChamaID         int64           `json:"chama_id" db:"chama_id"`
	FullName        string          `json:"full_name" db:"full_name"`
	Email           string          `json:"email" db:"email"`
	Phone           string          `json:"phone" db:"phone"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	DurationMonths  int             `json:"duration_months" db:"duration_months"`
	Purpose         string          `json:"purpose" db:"purpose"`
	LoanType        string          `json:"loan_type" db:"loan_type"`
	InterestRate    decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TotalRepayment  decimal.Decimal `json:"total_repayment" db:"total_repayment"`
	Status          string          `json:"status" db:"status"`
	ApplicationDate time.Time       `json:"application_date" db:"application_date"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// LoanPayment is one recorded repayment event against an approved loan.
type LoanPayment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	LoanID      uuid.UUID       `json:"loan_id" db:"loan_id"`
	PayerID     int64           `json:"payer_id" db:"payer_id"`
	AmountPaid  decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	PaymentDate time.Time       `json:"payment_date" db:"payment_date"`
	PaidByAdmin bool            `json:"paid_by_admin" db:"paid_by_admin"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type ApplyLoanRequest struct {
	MemberID       int64           `json:"member_id" validate:"required,gt=0"`
	ChamaID        int64           `json:"chama_id" validate:"required,gt=0"`
	FullName       string          `json:"full_name" validate:"required"`
	Email          string          `json:"email" validate:"omitempty,email"`
	Phone          string          `json:"phone,omitempty"`
	Amount         decimal.Decimal `json:"amount" validate:"required"`
	DurationMonths int             `json:"duration_months" validate:"required,gt=0"`
	Purpose        string          `json:"purpose,omitempty"`
	LoanType       string          `json:"loan_type" validate:"required"`
}

type UpdateLoanStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED PENDING"`
}

type RecordPaymentRequest struct {
	PayerID     int64           `json:"payer_id" validate:"required,gt=0"`
	AmountPaid  decimal.Decimal `json:"amount_paid" validate:"required"`
	PaymentDate string          `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	PaidByAdmin bool            `json:"paid_by_admin"`
}

// LoanStatusResult reports repayment progress for a loan.
type LoanStatusResult struct {
	Loan        *LoanApplication `json:"loan"`
	TotalPaid   decimal.Decimal  `json:"total_paid"`
	Outstanding decimal.Decimal  `json:"outstanding_balance"`
}
