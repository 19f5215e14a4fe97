package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chamahub/chama-engine/internal/domain"
	"github.com/chamahub/chama-engine/internal/repository"
	customError "github.com/chamahub/chama-engine/pkg/errors"
)

// LoanService handles loan origination terms and the repayment ledger.
type LoanService struct {
	loanRepo    repository.LoanRepository
	paymentRepo repository.LoanPaymentRepository
	memberRepo  repository.MemberRepository
	now         func() time.Time
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	paymentRepo repository.LoanPaymentRepository,
	memberRepo repository.MemberRepository,
) *LoanService {
	return &LoanService{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		memberRepo:  memberRepo,
		now:         time.Now,
	}
}

// Apply originates a loan application. The interest rate and total
// repayment are derived here, once, and never recomputed.
func (s *LoanService) Apply(ctx context.Context, req *domain.ApplyLoanRequest) (*domain.LoanApplication, error) {
	log.Printf("Member %d applying for a %s loan in chama %d", req.MemberID, req.LoanType, req.ChamaID)

	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidAmount("amount", req.Amount.String())
	}

	member, err := s.memberRepo.GetByID(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(req.MemberID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if member.ChamaID != req.ChamaID {
		return nil, customError.WrapMemberNotInChama(req.MemberID, req.ChamaID)
	}

	loanType := domain.NormalizeLoanType(req.LoanType)
	rate := interestRate(loanType, req.DurationMonths)
	total := totalRepayment(req.Amount, rate, req.DurationMonths)

	now := s.now()
	loan := &domain.LoanApplication{
		ID:              uuid.New(),
		MemberID:        req.MemberID,
		ChamaID:         req.ChamaID,
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		Amount:          req.Amount,
		DurationMonths:  req.DurationMonths,
		Purpose:         req.Purpose,
		LoanType:        loanType,
		InterestRate:    rate,
		TotalRepayment:  total,
		Status:          domain.LoanStatusPending,
		ApplicationDate: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	log.Printf("Loan application %s saved at %s%% for total repayment %s", loan.ID, rate, total)
	return loan, nil
}

// ListByMember returns a member's loan applications.
func (s *LoanService) ListByMember(ctx context.Context, memberID int64) ([]*domain.LoanApplication, error) {
	loans, err := s.loanRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// ListByChama returns all loan applications inside a chama.
func (s *LoanService) ListByChama(ctx context.Context, chamaID int64) ([]*domain.LoanApplication, error) {
	loans, err := s.loanRepo.ListByChama(ctx, chamaID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// UpdateStatus transitions a loan between PENDING, APPROVED and REJECTED.
// Whether the caller may approve is the collaborator layer's concern.
func (s *LoanService) UpdateStatus(ctx context.Context, loanID uuid.UUID, status string) (*domain.LoanApplication, error) {
	loan, err := s.loanRepo.UpdateStatus(ctx, loanID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	log.Printf("Loan %s status updated to %s", loanID, status)
	return loan, nil
}

// Status reports repayment progress for a loan. Outstanding balance never
// goes below zero.
func (s *LoanService) Status(ctx context.Context, loanID uuid.UUID) (*domain.LoanStatusResult, error) {
	loan, err := s.get(ctx, loanID)
	if err != nil {
		return nil, err
	}

	totalPaid, err := s.paymentRepo.TotalPaid(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	outstanding := loan.TotalRepayment.Sub(totalPaid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	return &domain.LoanStatusResult{
		Loan:        loan,
		TotalPaid:   totalPaid,
		Outstanding: outstanding,
	}, nil
}

// RecordPayment appends a repayment to the loan's ledger. The loan must be
// APPROVED and the running payment sum may never exceed the total
// repayment; the repository enforces both again under a per-loan row lock.
func (s *LoanService) RecordPayment(ctx context.Context, loanID uuid.UUID, req *domain.RecordPaymentRequest) (*domain.LoanPayment, error) {
	if !req.AmountPaid.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(req.AmountPaid.String())
	}

	loan, err := s.get(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusApproved {
		return nil, customError.WrapLoanNotApproved(loanID.String(), loan.Status)
	}

	totalPaid, err := s.paymentRepo.TotalPaid(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	outstanding := loan.TotalRepayment.Sub(totalPaid)
	if totalPaid.Add(req.AmountPaid).GreaterThan(loan.TotalRepayment) {
		return nil, customError.WrapPaymentExceedsRepayment(outstanding.String(), req.AmountPaid.String())
	}

	paymentDate := s.now()
	if req.PaymentDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			return nil, customError.WrapInvalidDate("payment_date", req.PaymentDate)
		}
		paymentDate = parsed
	}

	payment := &domain.LoanPayment{
		ID:          uuid.New(),
		LoanID:      loanID,
		PayerID:     req.PayerID,
		AmountPaid:  req.AmountPaid,
		PaymentDate: paymentDate,
		PaidByAdmin: req.PaidByAdmin,
		CreatedAt:   s.now(),
	}

	if err := s.paymentRepo.CreateChecked(ctx, payment); err != nil {
		switch {
		case errors.Is(err, customError.ErrLoanNotApproved):
			return nil, customError.WrapLoanNotApproved(loanID.String(), loan.Status)
		case errors.Is(err, customError.ErrPaymentExceedsRepayment):
			return nil, customError.WrapPaymentExceedsRepayment(outstanding.String(), req.AmountPaid.String())
		default:
			return nil, customError.WrapDatabaseError(err)
		}
	}

	log.Printf("Payment %s of %s recorded for loan %s", payment.ID, payment.AmountPaid, loanID)
	return payment, nil
}

// ListPaymentsByLoan returns the ledger for one loan.
func (s *LoanService) ListPaymentsByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	if _, err := s.get(ctx, loanID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

// ListPaymentsByChama returns every payment recorded inside a chama.
func (s *LoanService) ListPaymentsByChama(ctx context.Context, chamaID int64) ([]*domain.LoanPayment, error) {
	payments, err := s.paymentRepo.ListByChama(ctx, chamaID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

// ListPaymentsByPayer returns every payment a payer has recorded.
func (s *LoanService) ListPaymentsByPayer(ctx context.Context, payerID int64) ([]*domain.LoanPayment, error) {
	payments, err := s.paymentRepo.ListByPayer(ctx, payerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

func (s *LoanService) get(ctx context.Context, loanID uuid.UUID) (*domain.LoanApplication, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

// interestRate picks the annual percentage rate by loan type and duration
// tier. Unrecognized types take the default 10%.
func interestRate(loanType string, durationMonths int) decimal.Decimal {
	switch loanType {
	case domain.LoanTypePersonal:
		if durationMonths > 12 {
			return decimal.NewFromInt(12)
		}
		return decimal.NewFromInt(10)
	case domain.LoanTypeBusiness:
		if durationMonths > 24 {
			return decimal.NewFromInt(15)
		}
		return decimal.NewFromInt(13)
	case domain.LoanTypeMortgage:
		return decimal.NewFromInt(6)
	case domain.LoanTypeAuto:
		if durationMonths > 24 {
			return decimal.NewFromInt(9)
		}
		return decimal.NewFromInt(7)
	default:
		return decimal.NewFromInt(10)
	}
}

// totalRepayment computes amount + amount * (rate/100) * (duration/12).
// duration/12 floors to whole years, so loans under a year accrue no
// interest surcharge. That truncation matches the deployed behavior and
// is kept until product signs off on a change.
func totalRepayment(amount, rate decimal.Decimal, durationMonths int) decimal.Decimal {
	years := decimal.NewFromInt(int64(durationMonths / 12))
	interest := amount.Mul(rate.Div(decimal.NewFromInt(100))).Mul(years)
	return amount.Add(interest).Round(2)
}
