package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/chamahub/chama-engine/internal/domain"
	"github.com/chamahub/chama-engine/internal/repository"
	"github.com/chamahub/chama-engine/pkg/cycle"
	customError "github.com/chamahub/chama-engine/pkg/errors"
)

// RulesService manages the per-chama contribution rules, including the
// payout rotation order and the current payout pointer.
type RulesService struct {
	rulesRepo  repository.RulesRepository
	memberRepo repository.MemberRepository
	redis      *redis.Client
	now        func() time.Time
}

func NewRulesService(rulesRepo repository.RulesRepository, memberRepo repository.MemberRepository, redisClient *redis.Client) *RulesService {
	return &RulesService{
		rulesRepo:  rulesRepo,
		memberRepo: memberRepo,
		redis:      redisClient,
		now:        time.Now,
	}
}

// CreateOrUpdate upserts the rules for a chama. A chama has at most one
// rules row; repeated calls replace the previous values.
func (s *RulesService) CreateOrUpdate(ctx context.Context, req *domain.UpsertRulesRequest) (*domain.ChamaRules, error) {
	log.Printf("Upserting rules for chama %d", req.ChamaID)

	if !req.MonthlyContributionAmount.IsPositive() {
		return nil, customError.WrapInvalidAmount("monthly_contribution_amount", req.MonthlyContributionAmount.String())
	}
	if req.PenaltyForLate.IsNegative() {
		return nil, customError.WrapInvalidAmount("penalty_for_late", req.PenaltyForLate.String())
	}

	if req.PayoutOrder != nil {
		if err := s.validatePayoutOrder(ctx, req.ChamaID, req.PayoutOrder); err != nil {
			return nil, err
		}
	}

	if req.CurrentPayoutMemberID != nil {
		if err := s.requireMembership(ctx, *req.CurrentPayoutMemberID, req.ChamaID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	rules := &domain.ChamaRules{
		ID:                        uuid.New(),
		ChamaID:                   req.ChamaID,
		MonthlyContributionAmount: req.MonthlyContributionAmount,
		PenaltyForLate:            req.PenaltyForLate,
		CycleType:                 req.CycleType,
		DayOfCycle:                req.DayOfCycle,
		GracePeriodDays:           req.GracePeriodDays,
		PayoutOrder:               pq.Int64Array(req.PayoutOrder),
		CurrentPayoutMemberID:     req.CurrentPayoutMemberID,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	if err := s.rulesRepo.Upsert(ctx, rules); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	updated, err := s.Get(ctx, req.ChamaID)
	if err != nil {
		return nil, err
	}
	s.invalidateCaches(ctx, updated)

	return updated, nil
}

// Get fetches the rules for a chama.
func (s *RulesService) Get(ctx context.Context, chamaID int64) (*domain.ChamaRules, error) {
	rules, err := s.rulesRepo.GetByChamaID(ctx, chamaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapChamaRulesNotFound(chamaID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return rules, nil
}

// GetAll fetches rules for every configured chama.
func (s *RulesService) GetAll(ctx context.Context) ([]*domain.ChamaRules, error) {
	rules, err := s.rulesRepo.GetAll(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return rules, nil
}

// Delete removes the rules for a chama.
func (s *RulesService) Delete(ctx context.Context, chamaID int64) error {
	rules, err := s.Get(ctx, chamaID)
	if err != nil {
		return err
	}

	if err := s.rulesRepo.DeleteByChamaID(ctx, chamaID); err != nil {
		return customError.WrapDatabaseError(err)
	}
	s.invalidateCaches(ctx, rules)

	log.Printf("Rules deleted for chama %d", chamaID)
	return nil
}

// Exists reports whether rules are configured for a chama.
func (s *RulesService) Exists(ctx context.Context, chamaID int64) (bool, error) {
	exists, err := s.rulesRepo.ExistsByChamaID(ctx, chamaID)
	if err != nil {
		return false, customError.WrapDatabaseError(err)
	}

	return exists, nil
}

// UpdatePayoutOrder replaces the rotation order. Every entry must be a
// member of the chama and duplicates are rejected.
func (s *RulesService) UpdatePayoutOrder(ctx context.Context, chamaID int64, order []int64) (*domain.ChamaRules, error) {
	if _, err := s.Get(ctx, chamaID); err != nil {
		return nil, err
	}

	if err := s.validatePayoutOrder(ctx, chamaID, order); err != nil {
		return nil, err
	}

	if err := s.rulesRepo.UpdatePayoutOrder(ctx, chamaID, order); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	updated, err := s.Get(ctx, chamaID)
	if err != nil {
		return nil, err
	}
	s.invalidateCaches(ctx, updated)

	return updated, nil
}

// SetCurrentPayoutMember moves the rotation pointer. Rotation advancement
// is deliberately a manual operation; nothing advances the pointer after a
// payout. Passing nil clears the pointer so the rotation reseeds from the
// payout order.
func (s *RulesService) SetCurrentPayoutMember(ctx context.Context, chamaID int64, memberID *int64) (*domain.ChamaRules, error) {
	if _, err := s.Get(ctx, chamaID); err != nil {
		return nil, err
	}

	if memberID != nil {
		if err := s.requireMembership(ctx, *memberID, chamaID); err != nil {
			return nil, err
		}
	}

	if err := s.rulesRepo.UpdateCurrentPayoutMember(ctx, chamaID, memberID); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	updated, err := s.Get(ctx, chamaID)
	if err != nil {
		return nil, err
	}
	s.invalidateCaches(ctx, updated)

	return updated, nil
}

func (s *RulesService) validatePayoutOrder(ctx context.Context, chamaID int64, order []int64) error {
	seen := make(map[int64]bool, len(order))
	for _, memberID := range order {
		if seen[memberID] {
			return customError.WrapInvalidPayoutOrder(
				fmt.Sprintf("Member %d appears more than once in the payout order", memberID))
		}
		seen[memberID] = true

		if err := s.requireMembership(ctx, memberID, chamaID); err != nil {
			return err
		}
	}

	return nil
}

// invalidateCaches drops the cached rules and the cached payout for the
// running cycle. Rotation changes must be visible on the next NextPayout
// read, not after the cache TTL lapses.
func (s *RulesService) invalidateCaches(ctx context.Context, rules *domain.ChamaRules) {
	if s.redis == nil {
		return
	}

	keys := []string{
		rulesCacheKey(rules.ChamaID),
		payoutCacheKey(rules.ChamaID, cycle.Label(rules.CycleType, s.now())),
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Cache invalidation failed for chama %d: %v", rules.ChamaID, err)
	}
}

func (s *RulesService) requireMembership(ctx context.Context, memberID, chamaID int64) error {
	ok, err := s.memberRepo.ExistsInChama(ctx, memberID, chamaID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if !ok {
		return customError.WrapMemberNotInChama(memberID, chamaID)
	}

	return nil
}
