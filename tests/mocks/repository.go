package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/chamahub/chama-engine/internal/domain"
)

// MockRulesRepository is a mock implementation of repository.RulesRepository
type MockRulesRepository struct {
	mock.Mock
}

func (m *MockRulesRepository) Upsert(ctx context.Context, rules *domain.ChamaRules) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

func (m *MockRulesRepository) GetByChamaID(ctx context.Context, chamaID int64) (*domain.ChamaRules, error) {
	args := m.Called(ctx, chamaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChamaRules), args.Error(1)
}

func (m *MockRulesRepository) GetAll(ctx context.Context) ([]*domain.ChamaRules, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChamaRules), args.Error(1)
}

func (m *MockRulesRepository) DeleteByChamaID(ctx context.Context, chamaID int64) error {
	args := m.Called(ctx, chamaID)
	return args.Error(0)
}

func (m *MockRulesRepository) ExistsByChamaID(ctx context.Context, chamaID int64) (bool, error) {
	args := m.Called(ctx, chamaID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRulesRepository) UpdatePayoutOrder(ctx context.Context, chamaID int64, order []int64) error {
	args := m.Called(ctx, chamaID, order)
	return args.Error(0)
}

func (m *MockRulesRepository) UpdateCurrentPayoutMember(ctx context.Context, chamaID int64, memberID *int64) error {
	args := m.Called(ctx, chamaID, memberID)
	return args.Error(0)
}

// MockMemberRepository is a mock implementation of repository.MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) GetByID(ctx context.Context, memberID int64) (*domain.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) GetByChamaID(ctx context.Context, chamaID int64) ([]*domain.Member, error) {
	args := m.Called(ctx, chamaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) ExistsInChama(ctx context.Context, memberID, chamaID int64) (bool, error) {
	args := m.Called(ctx, memberID, chamaID)
	return args.Bool(0), args.Error(1)
}

// MockContributionRepository is a mock implementation of repository.ContributionRepository
type MockContributionRepository struct {
	mock.Mock
}

func (m *MockContributionRepository) Create(ctx context.Context, c *domain.Contribution) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContributionRepository) GetByMemberChamaCycle(ctx context.Context, memberID, chamaID int64, cycle string) (*domain.Contribution, error) {
	args := m.Called(ctx, memberID, chamaID, cycle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contribution), args.Error(1)
}

func (m *MockContributionRepository) ListByChama(ctx context.Context, chamaID int64, cycle string) ([]*domain.Contribution, error) {
	args := m.Called(ctx, chamaID, cycle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contribution), args.Error(1)
}

func (m *MockContributionRepository) ListByMember(ctx context.Context, memberID int64) ([]*domain.Contribution, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contribution), args.Error(1)
}

func (m *MockContributionRepository) Total(ctx context.Context, chamaID int64, cycle string) (decimal.Decimal, error) {
	args := m.Called(ctx, chamaID, cycle)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockContributionRepository) DistinctCycles(ctx context.Context, chamaID int64) ([]string, error) {
	args := m.Called(ctx, chamaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockLoanRepository is a mock implementation of repository.LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.LoanApplication) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, loanID uuid.UUID) (*domain.LoanApplication, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockLoanRepository) ListByMember(ctx context.Context, memberID int64) ([]*domain.LoanApplication, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanApplication), args.Error(1)
}

func (m *MockLoanRepository) ListByChama(ctx context.Context, chamaID int64) ([]*domain.LoanApplication, error) {
	args := m.Called(ctx, chamaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanApplication), args.Error(1)
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, loanID uuid.UUID, status string) (*domain.LoanApplication, error) {
	args := m.Called(ctx, loanID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

// MockLoanPaymentRepository is a mock implementation of repository.LoanPaymentRepository
type MockLoanPaymentRepository struct {
	mock.Mock
}

func (m *MockLoanPaymentRepository) CreateChecked(ctx context.Context, payment *domain.LoanPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockLoanPaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanPayment), args.Error(1)
}

func (m *MockLoanPaymentRepository) ListByChama(ctx context.Context, chamaID int64) ([]*domain.LoanPayment, error) {
	args := m.Called(ctx, chamaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanPayment), args.Error(1)
}

func (m *MockLoanPaymentRepository) ListByPayer(ctx context.Context, payerID int64) ([]*domain.LoanPayment, error) {
	args := m.Called(ctx, payerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanPayment), args.Error(1)
}

func (m *MockLoanPaymentRepository) TotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
