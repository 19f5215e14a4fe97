package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/chamahub/chama-engine/internal/domain"
	customError "github.com/chamahub/chama-engine/pkg/errors"
)

type loanPaymentRepository struct {
	db *sqlx.DB
}

func NewLoanPaymentRepository(db *sqlx.DB) LoanPaymentRepository {
	return &loanPaymentRepository{db: db}
}

// CreateChecked is the serialization point for the payment-sum invariant.
// The loan row lock makes concurrent appends for the same loan queue up, so
// the re-read sum always reflects every committed payment.
func (r *loanPaymentRepository) CreateChecked(ctx context.Context, payment *domain.LoanPayment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var loan struct {
		Status         string          `db:"status"`
		TotalRepayment decimal.Decimal `db:"total_repayment"`
	}
	lockQuery := `SELECT status, total_repayment FROM loan_applications WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &loan, lockQuery, payment.LoanID); err != nil {
		return err
	}

	if loan.Status != domain.LoanStatusApproved {
		return customError.ErrLoanNotApproved
	}

	var totalPaid decimal.Decimal
	sumQuery := `SELECT COALESCE(SUM(amount_paid), 0) FROM loan_payments WHERE loan_id = $1`
	if err := tx.GetContext(ctx, &totalPaid, sumQuery, payment.LoanID); err != nil {
		return err
	}

	if totalPaid.Add(payment.AmountPaid).GreaterThan(loan.TotalRepayment) {
		return customError.ErrPaymentExceedsRepayment
	}

	insertQuery := `
		INSERT INTO loan_payments (id, loan_id, payer_id, amount_paid, payment_date, paid_by_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, insertQuery,
		payment.ID,
		payment.LoanID,
		payment.PayerID,
		payment.AmountPaid,
		payment.PaymentDate,
		payment.PaidByAdmin,
		payment.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *loanPaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	query := `
		SELECT id, loan_id, payer_id, amount_paid, payment_date, paid_by_admin, created_at
		FROM loan_payments
		WHERE loan_id = $1
		ORDER BY payment_date, created_at
	`

	var payments []*domain.LoanPayment
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *loanPaymentRepository) ListByChama(ctx context.Context, chamaID int64) ([]*domain.LoanPayment, error) {
	query := `
		SELECT p.id, p.loan_id, p.payer_id, p.amount_paid, p.payment_date, p.paid_by_admin, p.created_at
		FROM loan_payments p
		JOIN loan_applications l ON l.id = p.loan_id
		WHERE l.chama_id = $1
		ORDER BY p.payment_date, p.created_at
	`

	var payments []*domain.LoanPayment
	if err := r.db.SelectContext(ctx, &payments, query, chamaID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *loanPaymentRepository) ListByPayer(ctx context.Context, payerID int64) ([]*domain.LoanPayment, error) {
	query := `
		SELECT id, loan_id, payer_id, amount_paid, payment_date, paid_by_admin, created_at
		FROM loan_payments
		WHERE payer_id = $1
		ORDER BY payment_date, created_at
	`

	var payments []*domain.LoanPayment
	if err := r.db.SelectContext(ctx, &payments, query, payerID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *loanPaymentRepository) TotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount_paid), 0) FROM loan_payments WHERE loan_id = $1`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, loanID); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
