package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chamahub/chama-engine/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.LoanApplication) error {
	query := `
		INSERT INTO loan_applications (id, member_id, chama_id, full_name, email, phone, amount, duration_months, purpose, loan_type, interest_rate, total_repayment, status, application_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.MemberID,
		loan.ChamaID,
		loan.FullName,
		loan.Email,
		loan.Phone,
		loan.Amount,
		loan.DurationMonths,
		loan.Purpose,
		loan.LoanType,
		loan.InterestRate,
		loan.TotalRepayment,
		loan.Status,
		loan.ApplicationDate,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, loanID uuid.UUID) (*domain.LoanApplication, error) {
	query := `
		SELECT id, member_id, chama_id, full_name, email, phone, amount, duration_months, purpose, loan_type, interest_rate, total_repayment, status, application_date, created_at, updated_at
		FROM loan_applications
		WHERE id = $1
	`

	var loan domain.LoanApplication
	if err := r.db.GetContext(ctx, &loan, query, loanID); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListByMember(ctx context.Context, memberID int64) ([]*domain.LoanApplication, error) {
	query := `
		SELECT id, member_id, chama_id, full_name, email, phone, amount, duration_months, purpose, loan_type, interest_rate, total_repayment, status, application_date, created_at, updated_at
		FROM loan_applications
		WHERE member_id = $1
		ORDER BY application_date DESC
	`

	var loans []*domain.LoanApplication
	if err := r.db.SelectContext(ctx, &loans, query, memberID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListByChama(ctx context.Context, chamaID int64) ([]*domain.LoanApplication, error) {
	query := `
		SELECT id, member_id, chama_id, full_name, email, phone, amount, duration_months, purpose, loan_type, interest_rate, total_repayment, status, application_date, created_at, updated_at
		FROM loan_applications
		WHERE chama_id = $1
		ORDER BY application_date DESC
	`

	var loans []*domain.LoanApplication
	if err := r.db.SelectContext(ctx, &loans, query, chamaID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, loanID uuid.UUID, status string) (*domain.LoanApplication, error) {
	query := `
		UPDATE loan_applications
		SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, member_id, chama_id, full_name, email, phone, amount, duration_months, purpose, loan_type, interest_rate, total_repayment, status, application_date, created_at, updated_at
	`

	var loan domain.LoanApplication
	if err := r.db.GetContext(ctx, &loan, query, loanID, status, time.Now()); err != nil {
		return nil, err
	}

	return &loan, nil
}
