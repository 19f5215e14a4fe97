package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/chamahub/chama-engine/internal/domain"
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, used to surface duplicate contributions as a conflict.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

type contributionRepository struct {
	db *sqlx.DB
}

func NewContributionRepository(db *sqlx.DB) ContributionRepository {
	return &contributionRepository{db: db}
}

func (r *contributionRepository) Create(ctx context.Context, c *domain.Contribution) error {
	query := `
		INSERT INTO contributions (id, member_id, chama_id, amount, date_paid, cycle, status, penalty_amount, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.MemberID,
		c.ChamaID,
		c.Amount,
		c.DatePaid,
		c.Cycle,
		c.Status,
		c.PenaltyAmount,
		c.Notes,
		c.CreatedAt,
	)

	return err
}

func (r *contributionRepository) GetByMemberChamaCycle(ctx context.Context, memberID, chamaID int64, cycle string) (*domain.Contribution, error) {
	query := `
		SELECT id, member_id, chama_id, amount, date_paid, cycle, status, penalty_amount, notes, created_at
		FROM contributions
		WHERE member_id = $1 AND chama_id = $2 AND cycle = $3
	`

	var c domain.Contribution
	if err := r.db.GetContext(ctx, &c, query, memberID, chamaID, cycle); err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *contributionRepository) ListByChama(ctx context.Context, chamaID int64, cycle string) ([]*domain.Contribution, error) {
	var contributions []*domain.Contribution

	if cycle != "" {
		query := `
			SELECT id, member_id, chama_id, amount, date_paid, cycle, status, penalty_amount, notes, created_at
			FROM contributions
			WHERE chama_id = $1 AND cycle = $2
			ORDER BY date_paid
		`
		if err := r.db.SelectContext(ctx, &contributions, query, chamaID, cycle); err != nil {
			return nil, err
		}
		return contributions, nil
	}

	query := `
		SELECT id, member_id, chama_id, amount, date_paid, cycle, status, penalty_amount, notes, created_at
		FROM contributions
		WHERE chama_id = $1
		ORDER BY date_paid
	`
	if err := r.db.SelectContext(ctx, &contributions, query, chamaID); err != nil {
		return nil, err
	}

	return contributions, nil
}

func (r *contributionRepository) ListByMember(ctx context.Context, memberID int64) ([]*domain.Contribution, error) {
	query := `
		SELECT id, member_id, chama_id, amount, date_paid, cycle, status, penalty_amount, notes, created_at
		FROM contributions
		WHERE member_id = $1
		ORDER BY date_paid
	`

	var contributions []*domain.Contribution
	if err := r.db.SelectContext(ctx, &contributions, query, memberID); err != nil {
		return nil, err
	}

	return contributions, nil
}

func (r *contributionRepository) Total(ctx context.Context, chamaID int64, cycle string) (decimal.Decimal, error) {
	var total decimal.Decimal

	if cycle != "" {
		query := `SELECT COALESCE(SUM(amount), 0) FROM contributions WHERE chama_id = $1 AND cycle = $2`
		if err := r.db.GetContext(ctx, &total, query, chamaID, cycle); err != nil {
			return decimal.Zero, err
		}
		return total, nil
	}

	query := `SELECT COALESCE(SUM(amount), 0) FROM contributions WHERE chama_id = $1`
	if err := r.db.GetContext(ctx, &total, query, chamaID); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *contributionRepository) DistinctCycles(ctx context.Context, chamaID int64) ([]string, error) {
	query := `
		SELECT DISTINCT cycle
		FROM contributions
		WHERE chama_id = $1
		ORDER BY cycle
	`

	var cycles []string
	if err := r.db.SelectContext(ctx, &cycles, query, chamaID); err != nil {
		return nil, err
	}

	return cycles, nil
}
