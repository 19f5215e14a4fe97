package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Cycle types supported by the contribution engine
const (
	CycleTypeMonthly = "MONTHLY"
	CycleTypeWeekly  = "WEEKLY"
)

// ChamaRules holds the contribution rules for a chama. At most one row per chama.
type ChamaRules struct {
	ID                        uuid.UUID       `json:"id" db:"id"`
	ChamaID                   int64           `json:"chama_id" db:"chama_id"`
	MonthlyContributionAmount decimal.Decimal `json:"monthly_contribution_amount" db:"monthly_contribution_amount"`
	PenaltyForLate            decimal.Decimal `json:"penalty_for_late" db:"penalty_for_late"`
	CycleType                 string          `json:"cycle_type" db:"cycle_type"`
	DayOfCycle                int             `json:"day_of_cycle" db:"day_of_cycle"`
	GracePeriodDays           int             `json:"grace_period_days" db:"grace_period_days"`
	PayoutOrder               pq.Int64Array   `json:"payout_order" db:"payout_order"`
	CurrentPayoutMemberID     *int64          `json:"current_payout_member_id" db:"current_payout_member_id"`
	CreatedAt                 time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt                 time.Time       `json:"updated_at" db:"updated_at"`
}

// Member is a read snapshot of a chama member, enough for membership checks
// and rotation seeding. Member records are owned by the membership service.
type Member struct {
	ID       int64     `json:"id" db:"id"`
	ChamaID  int64     `json:"chama_id" db:"chama_id"`
	Name     string    `json:"name" db:"name"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// DTOs for requests and responses

type UpsertRulesRequest struct {
	ChamaID                   int64           `json:"chama_id" validate:"required,gt=0"`
	MonthlyContributionAmount decimal.Decimal `json:"monthly_contribution_amount" validate:"required"`
	PenaltyForLate            decimal.Decimal `json:"penalty_for_late"`
	CycleType                 string          `json:"cycle_type" validate:"required,oneof=MONTHLY WEEKLY"`
	DayOfCycle                int             `json:"day_of_cycle" validate:"required,gte=1,lte=28"`
	GracePeriodDays           int             `json:"grace_period_days" validate:"gte=0"`
	PayoutOrder               []int64         `json:"payout_order,omitempty"`
	CurrentPayoutMemberID     *int64          `json:"current_payout_member_id,omitempty"`
}

type PayoutOrderRequest struct {
	PayoutOrder []int64 `json:"payout_order" validate:"required,min=1"`
}

// SetPayoutMemberRequest moves the rotation pointer; a null member_id
// clears it so the rotation reseeds from the payout order.
type SetPayoutMemberRequest struct {
	MemberID *int64 `json:"member_id" validate:"omitempty,gt=0"`
}

type PayoutResult struct {
	ChamaID            int64           `json:"chama_id"`
	Cycle              string          `json:"cycle"`
	NextPayoutMemberID *int64          `json:"next_payout_member_id"`
	PayoutAmount       decimal.Decimal `json:"payout_amount"`
}
