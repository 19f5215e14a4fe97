package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/chamahub/chama-engine/internal/config"
	"github.com/chamahub/chama-engine/internal/domain"
	"github.com/chamahub/chama-engine/internal/repository"
	"github.com/chamahub/chama-engine/pkg/cycle"
	customError "github.com/chamahub/chama-engine/pkg/errors"
)

// ContributionService records member contributions, projects owed amounts
// and drives the payout rotation.
type ContributionService struct {
	rulesRepo   repository.RulesRepository
	memberRepo  repository.MemberRepository
	contribRepo repository.ContributionRepository
	redis       *redis.Client
	config      *config.Config
	now         func() time.Time
}

func NewContributionService(
	rulesRepo repository.RulesRepository,
	memberRepo repository.MemberRepository,
	contribRepo repository.ContributionRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *ContributionService {
	return &ContributionService{
		rulesRepo:   rulesRepo,
		memberRepo:  memberRepo,
		contribRepo: contribRepo,
		redis:       redisClient,
		config:      cfg,
		now:         time.Now,
	}
}

// AddContribution records a payment for one cycle. The contribution is
// classified on time or late against the cycle's due date plus grace, and
// the late penalty from the rules is attached. One contribution per
// (member, chama, cycle); duplicates are a conflict.
func (s *ContributionService) AddContribution(ctx context.Context, req *domain.AddContributionRequest) (*domain.Contribution, error) {
	log.Printf("Adding contribution for member %d in chama %d, cycle %q", req.MemberID, req.ChamaID, req.Cycle)

	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidAmount("amount", req.Amount.String())
	}

	datePaid, err := time.Parse("2006-01-02", req.DatePaid)
	if err != nil {
		return nil, customError.WrapInvalidDate("date_paid", req.DatePaid)
	}

	if err := s.requireMembership(ctx, req.MemberID, req.ChamaID); err != nil {
		return nil, err
	}

	rules, err := s.getRules(ctx, req.ChamaID)
	if err != nil {
		return nil, err
	}

	// Pre-check for a duplicate; the unique index is the real guarantee
	// under concurrency, this just gives the common case a clean error.
	_, err = s.contribRepo.GetByMemberChamaCycle(ctx, req.MemberID, req.ChamaID, req.Cycle)
	if err == nil {
		return nil, customError.WrapDuplicateContribution(req.MemberID, req.ChamaID, req.Cycle)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	status, penalty := s.classify(datePaid, req.Cycle, rules)

	contribution := &domain.Contribution{
		ID:            uuid.New(),
		MemberID:      req.MemberID,
		ChamaID:       req.ChamaID,
		Amount:        req.Amount,
		DatePaid:      datePaid,
		Cycle:         req.Cycle,
		Status:        status,
		PenaltyAmount: penalty,
		Notes:         req.Notes,
		CreatedAt:     s.now(),
	}

	if err := s.contribRepo.Create(ctx, contribution); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, customError.WrapDuplicateContribution(req.MemberID, req.ChamaID, req.Cycle)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidatePayoutCache(ctx, req.ChamaID, req.Cycle)

	log.Printf("Contribution %s recorded with status %s", contribution.ID, status)
	return contribution, nil
}

// ListByChama returns a chama's contributions, optionally for one cycle.
func (s *ContributionService) ListByChama(ctx context.Context, chamaID int64, cycleLabel string) ([]*domain.Contribution, error) {
	contributions, err := s.contribRepo.ListByChama(ctx, chamaID, cycleLabel)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return contributions, nil
}

// ListByMember returns every contribution a member has made.
func (s *ContributionService) ListByMember(ctx context.Context, memberID int64) ([]*domain.Contribution, error) {
	contributions, err := s.contribRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return contributions, nil
}

// Total sums a chama's contributions, optionally for one cycle.
func (s *ContributionService) Total(ctx context.Context, chamaID int64, cycleLabel string) (decimal.Decimal, error) {
	total, err := s.contribRepo.Total(ctx, chamaID, cycleLabel)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}
	return total, nil
}

// AvailableCycles lists the cycles a chama has recorded contributions for.
func (s *ContributionService) AvailableCycles(ctx context.Context, chamaID int64) ([]string, error) {
	cycles, err := s.contribRepo.DistinctCycles(ctx, chamaID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return cycles, nil
}

// Owed projects what a member currently owes for the running cycle. It is
// a read-only view: repeated calls with no new contribution return the
// same result and nothing stored is mutated.
func (s *ContributionService) Owed(ctx context.Context, memberID, chamaID int64) (*domain.OwedResult, error) {
	if err := s.requireMembership(ctx, memberID, chamaID); err != nil {
		return nil, err
	}

	rules, err := s.getRules(ctx, chamaID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	currentCycle := cycle.Label(rules.CycleType, now)

	result := &domain.OwedResult{
		MemberID:       memberID,
		ChamaID:        chamaID,
		CurrentCycle:   currentCycle,
		ExpectedAmount: rules.MonthlyContributionAmount,
		PenaltyAmount:  decimal.Zero,
	}

	existing, err := s.contribRepo.GetByMemberChamaCycle(ctx, memberID, chamaID, currentCycle)
	if err == nil {
		result.Status = domain.OwedStatusPaid
		result.AmountOwed = decimal.Zero
		paid := existing.DatePaid
		result.LastPaymentDate = &paid
		return result, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	result.Status = domain.OwedStatusPending
	result.AmountOwed = rules.MonthlyContributionAmount

	due := cycle.DueDate(currentCycle, rules.CycleType, rules.DayOfCycle, now)
	if now.After(cycle.GraceEnd(due, rules.GracePeriodDays)) {
		result.Status = domain.OwedStatusOverdue
		result.AmountOwed = result.AmountOwed.Add(rules.PenaltyForLate)
		result.PenaltyAmount = rules.PenaltyForLate
	}
	result.DueDate = &due

	return result, nil
}

// NextPayout reports the rotation's current payee and the pooled amount
// for the running cycle. The payout pointer is used as stored; when unset
// the rotation seeds from the payout order, falling back to the chama's
// first member. Nothing here advances the pointer; advancement is an
// explicit admin operation on the rules.
func (s *ContributionService) NextPayout(ctx context.Context, chamaID int64) (*domain.PayoutResult, error) {
	rules, err := s.getRules(ctx, chamaID)
	if err != nil {
		return nil, err
	}

	currentCycle := cycle.Label(rules.CycleType, s.now())

	if cached := s.cachedPayout(ctx, chamaID, currentCycle); cached != nil {
		return cached, nil
	}

	totalCollected, err := s.contribRepo.Total(ctx, chamaID, currentCycle)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	next := rules.CurrentPayoutMemberID
	if next == nil {
		if len(rules.PayoutOrder) > 0 {
			first := rules.PayoutOrder[0]
			next = &first
		} else {
			members, err := s.memberRepo.GetByChamaID(ctx, chamaID)
			if err != nil {
				return nil, customError.WrapDatabaseError(err)
			}
			if len(members) > 0 {
				next = &members[0].ID
			}
		}
	}

	result := &domain.PayoutResult{
		ChamaID:            chamaID,
		Cycle:              currentCycle,
		NextPayoutMemberID: next,
		PayoutAmount:       totalCollected,
	}

	s.cachePayout(ctx, result)
	return result, nil
}

// DistributeDividends is a recognized capability that is not built yet.
// It reports unavailable deterministically and touches no state.
func (s *ContributionService) DistributeDividends(ctx context.Context, chamaID int64) error {
	log.Printf("Dividend distribution requested for chama %d - not yet available", chamaID)
	return customError.WrapFeatureUnavailable("Dividend distribution")
}

// OverdueSweep computes, for every configured chama, how many members are
// overdue for the running cycle. Used by the scheduler's daily job.
func (s *ContributionService) OverdueSweep(ctx context.Context) (map[int64]int, error) {
	allRules, err := s.rulesRepo.GetAll(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	overdue := make(map[int64]int, len(allRules))
	for _, rules := range allRules {
		members, err := s.memberRepo.GetByChamaID(ctx, rules.ChamaID)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}

		count := 0
		for _, member := range members {
			result, err := s.Owed(ctx, member.ID, rules.ChamaID)
			if err != nil {
				return nil, err
			}
			if result.Status == domain.OwedStatusOverdue {
				count++
			}
		}
		overdue[rules.ChamaID] = count
	}

	return overdue, nil
}

// classify decides on-time versus late for a payment date within a cycle.
// Pure given its inputs; the fallback due date anchors on the service
// clock's current month.
func (s *ContributionService) classify(datePaid time.Time, cycleLabel string, rules *domain.ChamaRules) (string, decimal.Decimal) {
	due := cycle.DueDate(cycleLabel, rules.CycleType, rules.DayOfCycle, s.now())
	if cycle.IsLate(datePaid, due, rules.GracePeriodDays) {
		return domain.ContributionStatusLate, rules.PenaltyForLate
	}
	return domain.ContributionStatusOnTime, decimal.Zero
}

// getRules reads through the rules cache. Every rules mutation drops the
// key, so a hit is never stale.
func (s *ContributionService) getRules(ctx context.Context, chamaID int64) (*domain.ChamaRules, error) {
	if cached := s.cachedRules(ctx, chamaID); cached != nil {
		return cached, nil
	}

	rules, err := s.rulesRepo.GetByChamaID(ctx, chamaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapChamaRulesNotFound(chamaID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.cacheRules(ctx, rules)
	return rules, nil
}

func (s *ContributionService) requireMembership(ctx context.Context, memberID, chamaID int64) error {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapMemberNotFound(memberID)
		}
		return customError.WrapDatabaseError(err)
	}
	if member.ChamaID != chamaID {
		return customError.WrapMemberNotInChama(memberID, chamaID)
	}
	return nil
}

func payoutCacheKey(chamaID int64, cycleLabel string) string {
	return fmt.Sprintf("payout:%d:%s", chamaID, cycleLabel)
}

func rulesCacheKey(chamaID int64) string {
	return fmt.Sprintf("chama-rules:%d", chamaID)
}

func (s *ContributionService) cachedRules(ctx context.Context, chamaID int64) *domain.ChamaRules {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, rulesCacheKey(chamaID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Rules cache read failed: %v", err)
		}
		return nil
	}

	var rules domain.ChamaRules
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil
	}
	return &rules
}

func (s *ContributionService) cacheRules(ctx context.Context, rules *domain.ChamaRules) {
	if s.redis == nil || s.config == nil {
		return
	}

	raw, err := json.Marshal(rules)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, rulesCacheKey(rules.ChamaID), raw, s.config.GetRulesCacheTTL()).Err(); err != nil {
		log.Printf("Rules cache write failed: %v", err)
	}
}

func (s *ContributionService) cachedPayout(ctx context.Context, chamaID int64, cycleLabel string) *domain.PayoutResult {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, payoutCacheKey(chamaID, cycleLabel)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Payout cache read failed: %v", err)
		}
		return nil
	}

	var result domain.PayoutResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil
	}
	return &result
}

func (s *ContributionService) cachePayout(ctx context.Context, result *domain.PayoutResult) {
	if s.redis == nil || s.config == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, payoutCacheKey(result.ChamaID, result.Cycle), raw, s.config.GetPayoutCacheTTL()).Err(); err != nil {
		log.Printf("Payout cache write failed: %v", err)
	}
}

func (s *ContributionService) invalidatePayoutCache(ctx context.Context, chamaID int64, cycleLabel string) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Del(ctx, payoutCacheKey(chamaID, cycleLabel)).Err(); err != nil {
		log.Printf("Payout cache invalidation failed: %v", err)
	}
}
