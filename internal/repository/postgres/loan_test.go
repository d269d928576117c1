package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"economy-core/internal/domain"
	"economy-core/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestLoanRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		due := time.Now().UTC().Add(30 * 24 * time.Hour)
		loan := &domain.Loan{
			GuildID:        "g1",
			BorrowerID:     "u1",
			LoanAmount:     120000,
			InterestRate:   "5",
			TermMonths:     12,
			MonthlyPayment: 10273,
			TotalToPay:     123276,
			Purpose:        "business",
			Status:         domain.LoanStatusPending,
			NextPaymentDue: &due,
		}

		mock.ExpectQuery("INSERT INTO loans").
			WithArgs(loan.GuildID, loan.BorrowerID, loan.LoanAmount, loan.InterestRate, loan.TermMonths,
				loan.MonthlyPayment, loan.TotalToPay, loan.Purpose, loan.Status, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "version", "created_on"}).
				AddRow(7, 0, time.Now().UTC()))

		err := repo.Create(ctx, loan)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), loan.ID)
		assert.Equal(t, int64(0), loan.Version)
	})
}

func TestLoanRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT .+ FROM loans WHERE id").
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrLoanNotFound)
	})
}

func TestLoanRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	loan := &domain.Loan{
		ID:           7,
		AmountPaid:   10273,
		PaymentsMade: 1,
		Status:       domain.LoanStatusActive,
		Version:      2,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE loans").
			WithArgs(loan.AmountPaid, loan.PaymentsMade, loan.Status, nil, nil, loan.ID, int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, loan, 2)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), loan.Version)
	})

	t.Run("VersionConflict", func(t *testing.T) {
		mock.ExpectExec("UPDATE loans").
			WithArgs(loan.AmountPaid, loan.PaymentsMade, loan.Status, nil, nil, loan.ID, int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, loan, 2)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
	})
}

func TestLoanRepository_CountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT count").
		WithArgs("g1", "u1", domain.LoanStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountByStatus(ctx, "g1", "u1", domain.LoanStatusActive)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), count)
}

func TestLoanRepository_CreatePayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLoanRepository(db)
	ctx := context.Background()

	payment := &domain.LoanPayment{
		LoanID:        7,
		PaymentAmount: 10273,
		PaymentType:   domain.PaymentTypeRegular,
		PaidBy:        "u1",
	}
	mock.ExpectQuery("INSERT INTO loan_payments").
		WithArgs(payment.LoanID, payment.PaymentAmount, payment.PaymentType, payment.PaidBy).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on"}).AddRow(1, time.Now().UTC()))

	err = repo.CreatePayment(ctx, payment)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), payment.ID)
}
