package postgres

import (
	"context"
	"database/sql"
	"time"

	"economy-core/internal/domain"
	"economy-core/internal/repository"
)

type loanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) repository.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, guild_id, borrower_id, loan_amount, interest_rate, term_months, monthly_payment, total_to_pay, amount_paid, payments_made, COALESCE(purpose, ''), status, next_payment_due, version, created_on, completed_on`

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `INSERT INTO loans
	          (guild_id, borrower_id, loan_amount, interest_rate, term_months, monthly_payment, total_to_pay, purpose, status, next_payment_due)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id, version, created_on`
	return r.db.QueryRowContext(ctx, query,
		loan.GuildID, loan.BorrowerID, loan.LoanAmount, loan.InterestRate, loan.TermMonths,
		loan.MonthlyPayment, loan.TotalToPay, loan.Purpose, loan.Status, loan.NextPaymentDue,
	).Scan(&loan.ID, &loan.Version, &loan.CreatedOn)
}

func scanLoan(row interface{ Scan(...any) error }, loan *domain.Loan) error {
	return row.Scan(
		&loan.ID, &loan.GuildID, &loan.BorrowerID, &loan.LoanAmount, &loan.InterestRate,
		&loan.TermMonths, &loan.MonthlyPayment, &loan.TotalToPay, &loan.AmountPaid,
		&loan.PaymentsMade, &loan.Purpose, &loan.Status, &loan.NextPaymentDue,
		&loan.Version, &loan.CreatedOn, &loan.CompletedOn,
	)
}

func (r *loanRepository) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	var loan domain.Loan
	err := scanLoan(r.db.QueryRowContext(ctx, query, id), &loan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) GetForBorrower(ctx context.Context, id int64, guildID, borrowerID string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 AND guild_id = $2 AND borrower_id = $3`
	var loan domain.Loan
	err := scanLoan(r.db.QueryRowContext(ctx, query, id, guildID, borrowerID), &loan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) ListByBorrower(ctx context.Context, guildID, borrowerID string, status domain.LoanStatus) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE guild_id = $1 AND borrower_id = $2`
	args := []any{guildID, borrowerID}
	if status != "" {
		query += ` AND status = $3`
		args = append(args, status)
	}
	query += ` ORDER BY created_on DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		var loan domain.Loan
		if err := scanLoan(rows, &loan); err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func (r *loanRepository) CountByStatus(ctx context.Context, guildID, borrowerID string, status domain.LoanStatus) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM loans WHERE guild_id = $1 AND borrower_id = $2 AND status = $3`
	err := r.db.QueryRowContext(ctx, query, guildID, borrowerID, status).Scan(&count)
	return count, err
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan, expectedVersion int64) error {
	query := `UPDATE loans
	          SET amount_paid = $1, payments_made = $2, status = $3, next_payment_due = $4, completed_on = $5, version = version + 1
	          WHERE id = $6 AND version = $7`
	res, err := r.db.ExecContext(ctx, query,
		loan.AmountPaid, loan.PaymentsMade, loan.Status, loan.NextPaymentDue, loan.CompletedOn,
		loan.ID, expectedVersion,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrVersionConflict
	}
	loan.Version = expectedVersion + 1
	return nil
}

func (r *loanRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = $1 AND next_payment_due IS NOT NULL AND next_payment_due < $2 ORDER BY next_payment_due ASC`
	rows, err := r.db.QueryContext(ctx, query, domain.LoanStatusActive, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		var loan domain.Loan
		if err := scanLoan(rows, &loan); err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func (r *loanRepository) CreatePayment(ctx context.Context, payment *domain.LoanPayment) error {
	query := `INSERT INTO loan_payments (loan_id, payment_amount, payment_type, paid_by)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query,
		payment.LoanID, payment.PaymentAmount, payment.PaymentType, payment.PaidBy,
	).Scan(&payment.ID, &payment.CreatedOn)
}

func (r *loanRepository) ListPayments(ctx context.Context, loanID int64) ([]domain.LoanPayment, error) {
	query := `SELECT id, loan_id, payment_amount, payment_type, paid_by, created_on
	          FROM loan_payments WHERE loan_id = $1 ORDER BY created_on ASC`
	rows, err := r.db.QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.LoanPayment
	for rows.Next() {
		var p domain.LoanPayment
		if err := rows.Scan(&p.ID, &p.LoanID, &p.PaymentAmount, &p.PaymentType, &p.PaidBy, &p.CreatedOn); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
