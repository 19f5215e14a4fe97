package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/chamahub/chama-engine/internal/domain"
)

type rulesRepository struct {
	db *sqlx.DB
}

func NewRulesRepository(db *sqlx.DB) RulesRepository {
	return &rulesRepository{db: db}
}

func (r *rulesRepository) Upsert(ctx context.Context, rules *domain.ChamaRules) error {
	query := `
		INSERT INTO chama_rules (id, chama_id, monthly_contribution_amount, penalty_for_late, cycle_type, day_of_cycle, grace_period_days, payout_order, current_payout_member_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (chama_id) DO UPDATE SET
			monthly_contribution_amount = EXCLUDED.monthly_contribution_amount,
			penalty_for_late = EXCLUDED.penalty_for_late,
			cycle_type = EXCLUDED.cycle_type,
			day_of_cycle = EXCLUDED.day_of_cycle,
			grace_period_days = EXCLUDED.grace_period_days,
			payout_order = EXCLUDED.payout_order,
			current_payout_member_id = EXCLUDED.current_payout_member_id,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		rules.ID,
		rules.ChamaID,
		rules.MonthlyContributionAmount,
		rules.PenaltyForLate,
		rules.CycleType,
		rules.DayOfCycle,
		rules.GracePeriodDays,
		rules.PayoutOrder,
		rules.CurrentPayoutMemberID,
		rules.CreatedAt,
		rules.UpdatedAt,
	)

	return err
}

func (r *rulesRepository) GetByChamaID(ctx context.Context, chamaID int64) (*domain.ChamaRules, error) {
	query := `
		SELECT id, chama_id, monthly_contribution_amount, penalty_for_late, cycle_type, day_of_cycle, grace_period_days, payout_order, current_payout_member_id, created_at, updated_at
		FROM chama_rules
		WHERE chama_id = $1
	`

	var rules domain.ChamaRules
	if err := r.db.GetContext(ctx, &rules, query, chamaID); err != nil {
		return nil, err
	}

	return &rules, nil
}

func (r *rulesRepository) GetAll(ctx context.Context) ([]*domain.ChamaRules, error) {
	query := `
		SELECT id, chama_id, monthly_contribution_amount, penalty_for_late, cycle_type, day_of_cycle, grace_period_days, payout_order, current_payout_member_id, created_at, updated_at
		FROM chama_rules
		ORDER BY chama_id
	`

	var rules []*domain.ChamaRules
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, err
	}

	return rules, nil
}

func (r *rulesRepository) DeleteByChamaID(ctx context.Context, chamaID int64) error {
	query := `DELETE FROM chama_rules WHERE chama_id = $1`

	_, err := r.db.ExecContext(ctx, query, chamaID)
	return err
}

func (r *rulesRepository) ExistsByChamaID(ctx context.Context, chamaID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM chama_rules WHERE chama_id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, chamaID); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *rulesRepository) UpdatePayoutOrder(ctx context.Context, chamaID int64, order []int64) error {
	query := `
		UPDATE chama_rules
		SET payout_order = $2, updated_at = $3
		WHERE chama_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, chamaID, pq.Int64Array(order), time.Now())
	return err
}

func (r *rulesRepository) UpdateCurrentPayoutMember(ctx context.Context, chamaID int64, memberID *int64) error {
	query := `
		UPDATE chama_rules
		SET current_payout_member_id = $2, updated_at = $3
		WHERE chama_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, chamaID, memberID, time.Now())
	return err
}
