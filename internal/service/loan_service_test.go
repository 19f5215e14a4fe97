package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/chamahub/chama-engine/internal/domain"
	customError "github.com/chamahub/chama-engine/pkg/errors"
	"github.com/chamahub/chama-engine/tests/mocks"
)

func newLoanFixture() (*LoanService, *mocks.MockLoanRepository, *mocks.MockLoanPaymentRepository, *mocks.MockMemberRepository) {
	loanRepo := new(mocks.MockLoanRepository)
	paymentRepo := new(mocks.MockLoanPaymentRepository)
	memberRepo := new(mocks.MockMemberRepository)

	svc := NewLoanService(loanRepo, paymentRepo, memberRepo)
	svc.now = fixedClock(time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC))
	return svc, loanRepo, paymentRepo, memberRepo
}

func TestInterestRate(t *testing.T) {
	tests := []struct {
		name           string
		loanType       string
		durationMonths int
		want           int64
	}{
		{"personal over a year", domain.LoanTypePersonal, 18, 12},
		{"personal within a year", domain.LoanTypePersonal, 12, 10},
		{"business over two years", domain.LoanTypeBusiness, 30, 15},
		{"business within two years", domain.LoanTypeBusiness, 24, 13},
		{"mortgage flat", domain.LoanTypeMortgage, 120, 6},
		{"auto over two years", domain.LoanTypeAuto, 36, 9},
		{"auto within two years", domain.LoanTypeAuto, 12, 7},
		{"unknown type defaults", domain.LoanTypeOther, 12, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := interestRate(tt.loanType, tt.durationMonths)
			assert.True(t, decimal.NewFromInt(tt.want).Equal(got),
				"rate = %s, want %d", got, tt.want)
		})
	}
}

func TestTotalRepayment(t *testing.T) {
	tests := []struct {
		name           string
		amount         int64
		rate           int64
		durationMonths int
		want           string
	}{
		// 1200 at 15% over 30 months: 30/12 floors to 2 years, so
		// interest is 1200 * 0.15 * 2 = 360.
		{"business thirty months", 1200, 15, 30, "1560"},
		// Under a year floors to zero years of interest.
		{"six months accrues nothing", 1000, 10, 6, "1000"},
		{"exactly one year", 1000, 10, 12, "1100"},
		{"twenty three months counts one year", 1000, 13, 23, "1130"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := totalRepayment(decimal.NewFromInt(tt.amount), decimal.NewFromInt(tt.rate), tt.durationMonths)
			want, _ := decimal.NewFromString(tt.want)
			assert.True(t, want.Equal(got), "total = %s, want %s", got, want)
		})
	}
}

func TestApply_DerivesTerms(t *testing.T) {
	svc, loanRepo, _, memberRepo := newLoanFixture()

	memberRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Member{ID: 7, ChamaID: 1}, nil)
	loanRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.LoanApplication")).Return(nil)

	got, err := svc.Apply(context.Background(), &domain.ApplyLoanRequest{
		MemberID:       7,
		ChamaID:        1,
		FullName:       "Wanjiku Kamau",
		Amount:         decimal.NewFromInt(1200),
		DurationMonths: 30,
		LoanType:       "Business",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.LoanTypeBusiness, got.LoanType)
	assert.Equal(t, domain.LoanStatusPending, got.Status)
	assert.True(t, decimal.NewFromInt(15).Equal(got.InterestRate))
	assert.True(t, decimal.NewFromInt(1560).Equal(got.TotalRepayment),
		"total = %s, want 1560", got.TotalRepayment)
	loanRepo.AssertExpectations(t)
}

func TestApply_UnknownTypeFoldsToOther(t *testing.T) {
	svc, loanRepo, _, memberRepo := newLoanFixture()

	memberRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Member{ID: 7, ChamaID: 1}, nil)
	loanRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.LoanApplication")).Return(nil)

	got, err := svc.Apply(context.Background(), &domain.ApplyLoanRequest{
		MemberID:       7,
		ChamaID:        1,
		Amount:         decimal.NewFromInt(500),
		DurationMonths: 24,
		LoanType:       "boat",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.LoanTypeOther, got.LoanType)
	assert.True(t, decimal.NewFromInt(10).Equal(got.InterestRate))
}

func TestApply_NonPositiveAmount(t *testing.T) {
	svc, loanRepo, _, memberRepo := newLoanFixture()

	_, err := svc.Apply(context.Background(), &domain.ApplyLoanRequest{
		MemberID:       7,
		ChamaID:        1,
		Amount:         decimal.NewFromInt(-500),
		DurationMonths: 12,
		LoanType:       domain.LoanTypePersonal,
	})

	assert.Error(t, err)
	var be *customError.BusinessError
	assert.ErrorAs(t, err, &be)
	assert.Equal(t, customError.ErrCodeInvalidAmount, be.Code)
	memberRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	loanRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestApply_MemberNotInChama(t *testing.T) {
	svc, loanRepo, _, memberRepo := newLoanFixture()

	memberRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Member{ID: 7, ChamaID: 99}, nil)

	_, err := svc.Apply(context.Background(), &domain.ApplyLoanRequest{
		MemberID:       7,
		ChamaID:        1,
		Amount:         decimal.NewFromInt(500),
		DurationMonths: 12,
		LoanType:       domain.LoanTypePersonal,
	})

	assert.Error(t, err)
	assert.Equal(t, customError.KindInvalidState, customError.KindOf(err))
	loanRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func approvedLoan(id uuid.UUID) *domain.LoanApplication {
	return &domain.LoanApplication{
		ID:             id,
		MemberID:       7,
		ChamaID:        1,
		Amount:         decimal.NewFromInt(1200),
		DurationMonths: 30,
		LoanType:       domain.LoanTypeBusiness,
		InterestRate:   decimal.NewFromInt(15),
		TotalRepayment: decimal.NewFromInt(1560),
		Status:         domain.LoanStatusApproved,
	}
}

func TestUpdateStatus_SingleRoundTrip(t *testing.T) {
	svc, loanRepo, _, _ := newLoanFixture()
	loanID := uuid.New()

	updated := approvedLoan(loanID)
	loanRepo.On("UpdateStatus", mock.Anything, loanID, domain.LoanStatusApproved).Return(updated, nil)

	got, err := svc.UpdateStatus(context.Background(), loanID, domain.LoanStatusApproved)

	assert.NoError(t, err)
	assert.Equal(t, domain.LoanStatusApproved, got.Status)
	// The update returns the row itself; no separate fetches.
	loanRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, loanRepo, _, _ := newLoanFixture()
	loanID := uuid.New()

	loanRepo.On("UpdateStatus", mock.Anything, loanID, domain.LoanStatusRejected).Return(nil, sql.ErrNoRows)

	_, err := svc.UpdateStatus(context.Background(), loanID, domain.LoanStatusRejected)

	assert.Error(t, err)
	assert.Equal(t, customError.KindNotFound, customError.KindOf(err))
}

func TestRecordPayment_Success(t *testing.T) {
	svc, loanRepo, paymentRepo, _ := newLoanFixture()
	loanID := uuid.New()

	loanRepo.On("GetByID", mock.Anything, loanID).Return(approvedLoan(loanID), nil)
	paymentRepo.On("TotalPaid", mock.Anything, loanID).Return(decimal.NewFromInt(500), nil)
	paymentRepo.On("CreateChecked", mock.Anything, mock.AnythingOfType("*domain.LoanPayment")).Return(nil)

	got, err := svc.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
		PayerID:     7,
		AmountPaid:  decimal.NewFromInt(500),
		PaymentDate: "2025-06-10",
	})

	assert.NoError(t, err)
	assert.Equal(t, loanID, got.LoanID)
	assert.True(t, decimal.NewFromInt(500).Equal(got.AmountPaid))
	assert.Equal(t, time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC), got.PaymentDate)
	paymentRepo.AssertExpectations(t)
}

func TestRecordPayment_LoanNotApproved(t *testing.T) {
	svc, loanRepo, paymentRepo, _ := newLoanFixture()
	loanID := uuid.New()

	loan := approvedLoan(loanID)
	loan.Status = domain.LoanStatusPending
	loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)

	_, err := svc.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
		PayerID:    7,
		AmountPaid: decimal.NewFromInt(100),
	})

	assert.Error(t, err)
	var be *customError.BusinessError
	assert.ErrorAs(t, err, &be)
	assert.Equal(t, customError.ErrCodeLoanNotApproved, be.Code)
	paymentRepo.AssertNotCalled(t, "CreateChecked", mock.Anything, mock.Anything)
}

func TestRecordPayment_ExceedsRepayment(t *testing.T) {
	svc, loanRepo, paymentRepo, _ := newLoanFixture()
	loanID := uuid.New()

	loanRepo.On("GetByID", mock.Anything, loanID).Return(approvedLoan(loanID), nil)
	paymentRepo.On("TotalPaid", mock.Anything, loanID).Return(decimal.NewFromInt(1500), nil)

	_, err := svc.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
		PayerID:    7,
		AmountPaid: decimal.NewFromInt(100),
	})

	assert.Error(t, err)
	assert.Equal(t, customError.KindConflict, customError.KindOf(err))
	paymentRepo.AssertNotCalled(t, "CreateChecked", mock.Anything, mock.Anything)
}

func TestRecordPayment_RaceCaughtByRepository(t *testing.T) {
	// The snapshot check passes but a concurrent payment lands first; the
	// row-locked re-check in the repository reports the overshoot.
	svc, loanRepo, paymentRepo, _ := newLoanFixture()
	loanID := uuid.New()

	loanRepo.On("GetByID", mock.Anything, loanID).Return(approvedLoan(loanID), nil)
	paymentRepo.On("TotalPaid", mock.Anything, loanID).Return(decimal.NewFromInt(1000), nil)
	paymentRepo.On("CreateChecked", mock.Anything, mock.AnythingOfType("*domain.LoanPayment")).
		Return(customError.ErrPaymentExceedsRepayment)

	_, err := svc.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
		PayerID:    7,
		AmountPaid: decimal.NewFromInt(500),
	})

	assert.Error(t, err)
	assert.Equal(t, customError.KindConflict, customError.KindOf(err))
}

func TestRecordPayment_NonPositiveAmount(t *testing.T) {
	svc, loanRepo, _, _ := newLoanFixture()

	_, err := svc.RecordPayment(context.Background(), uuid.New(), &domain.RecordPaymentRequest{
		PayerID:    7,
		AmountPaid: decimal.Zero,
	})

	assert.Error(t, err)
	var be *customError.BusinessError
	assert.ErrorAs(t, err, &be)
	assert.Equal(t, customError.ErrCodeInvalidPaymentAmount, be.Code)
	loanRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestStatus_OutstandingNeverNegative(t *testing.T) {
	svc, loanRepo, paymentRepo, _ := newLoanFixture()
	loanID := uuid.New()

	loanRepo.On("GetByID", mock.Anything, loanID).Return(approvedLoan(loanID), nil)
	paymentRepo.On("TotalPaid", mock.Anything, loanID).Return(decimal.NewFromInt(1600), nil)

	got, err := svc.Status(context.Background(), loanID)

	assert.NoError(t, err)
	assert.True(t, got.Outstanding.IsZero())
	assert.True(t, decimal.NewFromInt(1600).Equal(got.TotalPaid))
}

func TestStatus_ReportsProgress(t *testing.T) {
	svc, loanRepo, paymentRepo, _ := newLoanFixture()
	loanID := uuid.New()

	loanRepo.On("GetByID", mock.Anything, loanID).Return(approvedLoan(loanID), nil)
	paymentRepo.On("TotalPaid", mock.Anything, loanID).Return(decimal.NewFromInt(560), nil)

	got, err := svc.Status(context.Background(), loanID)

	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(got.Outstanding),
		"outstanding = %s, want 1000", got.Outstanding)
}

func TestStatus_LoanNotFound(t *testing.T) {
	svc, loanRepo, _, _ := newLoanFixture()
	loanID := uuid.New()

	loanRepo.On("GetByID", mock.Anything, loanID).Return(nil, sql.ErrNoRows)

	_, err := svc.Status(context.Background(), loanID)

	assert.Error(t, err)
	assert.Equal(t, customError.KindNotFound, customError.KindOf(err))
}
