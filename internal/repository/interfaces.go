package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chamahub/chama-engine/internal/domain"
)

// RulesRepository defines the interface for chama rules data operations
type RulesRepository interface {
	// Upsert creates or replaces the rules for a chama (at most one row per chama)
	Upsert(ctx context.Context, rules *domain.ChamaRules) error

	// GetByChamaID retrieves the rules for a chama
	GetByChamaID(ctx context.Context, chamaID int64) (*domain.ChamaRules, error)

	// GetAll retrieves rules for every chama
	GetAll(ctx context.Context) ([]*domain.ChamaRules, error)

	// DeleteByChamaID removes the rules for a chama
	DeleteByChamaID(ctx context.Context, chamaID int64) error

	// ExistsByChamaID reports whether rules are configured for a chama
	ExistsByChamaID(ctx context.Context, chamaID int64) (bool, error)

	// UpdatePayoutOrder replaces the payout rotation order
	UpdatePayoutOrder(ctx context.Context, chamaID int64, order []int64) error

	// UpdateCurrentPayoutMember sets the current payout pointer
	UpdateCurrentPayoutMember(ctx context.Context, chamaID int64, memberID *int64) error
}

// MemberRepository defines the interface for member snapshots
type MemberRepository interface {
	// GetByID retrieves a member
	GetByID(ctx context.Context, memberID int64) (*domain.Member, error)

	// GetByChamaID retrieves a chama's members in insertion order
	GetByChamaID(ctx context.Context, chamaID int64) ([]*domain.Member, error)

	// ExistsInChama reports whether a member belongs to a chama
	ExistsInChama(ctx context.Context, memberID, chamaID int64) (bool, error)
}

// ContributionRepository defines the interface for contribution records
type ContributionRepository interface {
	// Create appends a contribution record; the (member, chama, cycle)
	// uniqueness constraint is enforced by the database
	Create(ctx context.Context, c *domain.Contribution) error

	// GetByMemberChamaCycle retrieves the contribution for one cycle, if any
	GetByMemberChamaCycle(ctx context.Context, memberID, chamaID int64, cycle string) (*domain.Contribution, error)

	// ListByChama retrieves contributions for a chama, optionally one cycle
	ListByChama(ctx context.Context, chamaID int64, cycle string) ([]*domain.Contribution, error)

	// ListByMember retrieves all contributions made by a member
	ListByMember(ctx context.Context, memberID int64) ([]*domain.Contribution, error)

	// Total sums contribution amounts for a chama, optionally one cycle
	Total(ctx context.Context, chamaID int64, cycle string) (decimal.Decimal, error)

	// DistinctCycles lists the cycles a chama has contributions for
	DistinctCycles(ctx context.Context, chamaID int64) ([]string, error)
}

// LoanRepository defines the interface for loan application data operations
type LoanRepository interface {
	// Create creates a new loan application
	Create(ctx context.Context, loan *domain.LoanApplication) error

	// GetByID retrieves a loan application
	GetByID(ctx context.Context, loanID uuid.UUID) (*domain.LoanApplication, error)

	// ListByMember retrieves a member's loan applications
	ListByMember(ctx context.Context, memberID int64) ([]*domain.LoanApplication, error)

	// ListByChama retrieves all loan applications inside a chama
	ListByChama(ctx context.Context, chamaID int64) ([]*domain.LoanApplication, error)

	// UpdateStatus transitions a loan's status and returns the updated row
	// in the same round trip; sql.ErrNoRows when the loan does not exist
	UpdateStatus(ctx context.Context, loanID uuid.UUID, status string) (*domain.LoanApplication, error)
}

// LoanPaymentRepository defines the interface for the loan payment ledger
type LoanPaymentRepository interface {
	// CreateChecked appends a payment inside a transaction that locks the
	// loan row, re-verifying status and the repayment cap against the
	// committed ledger so concurrent payments cannot jointly exceed it
	CreateChecked(ctx context.Context, payment *domain.LoanPayment) error

	// ListByLoan retrieves all payments for a loan
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error)

	// ListByChama retrieves all payments recorded inside a chama
	ListByChama(ctx context.Context, chamaID int64) ([]*domain.LoanPayment, error)

	// ListByPayer retrieves all payments recorded by one payer
	ListByPayer(ctx context.Context, payerID int64) ([]*domain.LoanPayment, error)

	// TotalPaid sums the recorded payments for a loan
	TotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error)
}
