package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/chamahub/chama-engine/internal/domain"
	customError "github.com/chamahub/chama-engine/pkg/errors"
	"github.com/chamahub/chama-engine/tests/mocks"
)

func newRulesFixture() (*RulesService, *mocks.MockRulesRepository, *mocks.MockMemberRepository) {
	rulesRepo := new(mocks.MockRulesRepository)
	memberRepo := new(mocks.MockMemberRepository)
	return NewRulesService(rulesRepo, memberRepo, nil), rulesRepo, memberRepo
}

func upsertRequest(chamaID int64) *domain.UpsertRulesRequest {
	return &domain.UpsertRulesRequest{
		ChamaID:                   chamaID,
		MonthlyContributionAmount: decimal.NewFromInt(1000),
		PenaltyForLate:            decimal.NewFromInt(50),
		CycleType:                 domain.CycleTypeMonthly,
		DayOfCycle:                5,
		GracePeriodDays:           3,
	}
}

func TestCreateOrUpdate_Success(t *testing.T) {
	svc, rulesRepo, memberRepo := newRulesFixture()

	req := upsertRequest(1)
	req.PayoutOrder = []int64{2, 3, 1}

	memberRepo.On("ExistsInChama", mock.Anything, mock.AnythingOfType("int64"), int64(1)).Return(true, nil)
	rulesRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.ChamaRules")).Return(nil)
	rulesRepo.On("GetByChamaID", mock.Anything, int64(1)).Return(&domain.ChamaRules{ChamaID: 1}, nil)

	got, err := svc.CreateOrUpdate(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), got.ChamaID)
	rulesRepo.AssertExpectations(t)
}

func TestCreateOrUpdate_RejectsNonPositiveContribution(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"negative amount", decimal.NewFromInt(-500)},
		{"zero amount", decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, rulesRepo, _ := newRulesFixture()

			req := upsertRequest(1)
			req.MonthlyContributionAmount = tt.amount

			_, err := svc.CreateOrUpdate(context.Background(), req)

			assert.Error(t, err)
			var be *customError.BusinessError
			assert.ErrorAs(t, err, &be)
			assert.Equal(t, customError.ErrCodeInvalidAmount, be.Code)
			rulesRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateOrUpdate_RejectsNegativePenalty(t *testing.T) {
	svc, rulesRepo, _ := newRulesFixture()

	req := upsertRequest(1)
	req.PenaltyForLate = decimal.NewFromInt(-50)

	_, err := svc.CreateOrUpdate(context.Background(), req)

	assert.Error(t, err)
	var be *customError.BusinessError
	assert.ErrorAs(t, err, &be)
	assert.Equal(t, customError.ErrCodeInvalidAmount, be.Code)
	rulesRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCreateOrUpdate_DuplicateInPayoutOrder(t *testing.T) {
	svc, rulesRepo, memberRepo := newRulesFixture()

	req := upsertRequest(1)
	req.PayoutOrder = []int64{2, 3, 2}

	memberRepo.On("ExistsInChama", mock.Anything, mock.AnythingOfType("int64"), int64(1)).Return(true, nil)

	_, err := svc.CreateOrUpdate(context.Background(), req)

	assert.Error(t, err)
	var be *customError.BusinessError
	assert.ErrorAs(t, err, &be)
	assert.Equal(t, customError.ErrCodeInvalidPayoutOrder, be.Code)
	rulesRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCreateOrUpdate_OrderEntryNotAMember(t *testing.T) {
	svc, rulesRepo, memberRepo := newRulesFixture()

	req := upsertRequest(1)
	req.PayoutOrder = []int64{2, 42}

	memberRepo.On("ExistsInChama", mock.Anything, int64(2), int64(1)).Return(true, nil)
	memberRepo.On("ExistsInChama", mock.Anything, int64(42), int64(1)).Return(false, nil)

	_, err := svc.CreateOrUpdate(context.Background(), req)

	assert.Error(t, err)
	assert.Equal(t, customError.KindInvalidState, customError.KindOf(err))
	rulesRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCreateOrUpdate_PointerMustBeMember(t *testing.T) {
	svc, rulesRepo, memberRepo := newRulesFixture()

	req := upsertRequest(1)
	req.CurrentPayoutMemberID = int64Ptr(42)

	memberRepo.On("ExistsInChama", mock.Anything, int64(42), int64(1)).Return(false, nil)

	_, err := svc.CreateOrUpdate(context.Background(), req)

	assert.Error(t, err)
	assert.Equal(t, customError.KindInvalidState, customError.KindOf(err))
	rulesRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestUpdatePayoutOrder_Success(t *testing.T) {
	svc, rulesRepo, memberRepo := newRulesFixture()

	rulesRepo.On("GetByChamaID", mock.Anything, int64(1)).Return(&domain.ChamaRules{ChamaID: 1}, nil)
	memberRepo.On("ExistsInChama", mock.Anything, mock.AnythingOfType("int64"), int64(1)).Return(true, nil)
	rulesRepo.On("UpdatePayoutOrder", mock.Anything, int64(1), []int64{3, 1, 2}).Return(nil)

	_, err := svc.UpdatePayoutOrder(context.Background(), 1, []int64{3, 1, 2})

	assert.NoError(t, err)
	rulesRepo.AssertExpectations(t)
}

func TestSetCurrentPayoutMember_NotAMember(t *testing.T) {
	svc, rulesRepo, memberRepo := newRulesFixture()

	rulesRepo.On("GetByChamaID", mock.Anything, int64(1)).Return(&domain.ChamaRules{ChamaID: 1}, nil)
	memberRepo.On("ExistsInChama", mock.Anything, int64(42), int64(1)).Return(false, nil)

	_, err := svc.SetCurrentPayoutMember(context.Background(), 1, int64Ptr(42))

	assert.Error(t, err)
	assert.Equal(t, customError.KindInvalidState, customError.KindOf(err))
	rulesRepo.AssertNotCalled(t, "UpdateCurrentPayoutMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetCurrentPayoutMember_ClearSkipsMembershipCheck(t *testing.T) {
	svc, rulesRepo, memberRepo := newRulesFixture()

	rulesRepo.On("GetByChamaID", mock.Anything, int64(1)).Return(&domain.ChamaRules{ChamaID: 1}, nil)
	rulesRepo.On("UpdateCurrentPayoutMember", mock.Anything, int64(1), (*int64)(nil)).Return(nil)

	_, err := svc.SetCurrentPayoutMember(context.Background(), 1, nil)

	assert.NoError(t, err)
	memberRepo.AssertNotCalled(t, "ExistsInChama", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetCurrentPayoutMember_DropsCachedPayout(t *testing.T) {
	// A cached payout must not outlive an explicit rotation move.
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	rulesRepo := new(mocks.MockRulesRepository)
	memberRepo := new(mocks.MockMemberRepository)
	svc := NewRulesService(rulesRepo, memberRepo, client)
	svc.now = fixedClock(time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC))

	assert.NoError(t, mr.Set("payout:1:June 2025", `{"chama_id":1,"next_payout_member_id":2}`))
	assert.NoError(t, mr.Set("chama-rules:1", `{"chama_id":1}`))

	rules := monthlyRules(1)
	rulesRepo.On("GetByChamaID", mock.Anything, int64(1)).Return(rules, nil)
	memberRepo.On("ExistsInChama", mock.Anything, int64(5), int64(1)).Return(true, nil)
	rulesRepo.On("UpdateCurrentPayoutMember", mock.Anything, int64(1), mock.AnythingOfType("*int64")).Return(nil)

	_, err := svc.SetCurrentPayoutMember(context.Background(), 1, int64Ptr(5))

	assert.NoError(t, err)
	assert.False(t, mr.Exists("payout:1:June 2025"))
	assert.False(t, mr.Exists("chama-rules:1"))
}

func TestUpdatePayoutOrder_DropsCachedPayout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	rulesRepo := new(mocks.MockRulesRepository)
	memberRepo := new(mocks.MockMemberRepository)
	svc := NewRulesService(rulesRepo, memberRepo, client)
	svc.now = fixedClock(time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC))

	assert.NoError(t, mr.Set("payout:1:June 2025", `{"chama_id":1,"next_payout_member_id":2}`))

	rulesRepo.On("GetByChamaID", mock.Anything, int64(1)).Return(monthlyRules(1), nil)
	memberRepo.On("ExistsInChama", mock.Anything, mock.AnythingOfType("int64"), int64(1)).Return(true, nil)
	rulesRepo.On("UpdatePayoutOrder", mock.Anything, int64(1), []int64{3, 1, 2}).Return(nil)

	_, err := svc.UpdatePayoutOrder(context.Background(), 1, []int64{3, 1, 2})

	assert.NoError(t, err)
	assert.False(t, mr.Exists("payout:1:June 2025"))
}

func TestDelete_NotFound(t *testing.T) {
	svc, rulesRepo, _ := newRulesFixture()

	rulesRepo.On("GetByChamaID", mock.Anything, int64(1)).Return(nil, sql.ErrNoRows)

	err := svc.Delete(context.Background(), 1)

	assert.Error(t, err)
	assert.Equal(t, customError.KindNotFound, customError.KindOf(err))
	rulesRepo.AssertNotCalled(t, "DeleteByChamaID", mock.Anything, mock.Anything)
}

func TestDelete_Success(t *testing.T) {
	svc, rulesRepo, _ := newRulesFixture()

	rulesRepo.On("GetByChamaID", mock.Anything, int64(1)).Return(monthlyRules(1), nil)
	rulesRepo.On("DeleteByChamaID", mock.Anything, int64(1)).Return(nil)

	err := svc.Delete(context.Background(), 1)

	assert.NoError(t, err)
	rulesRepo.AssertExpectations(t)
}
