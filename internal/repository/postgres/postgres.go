package postgres

import (
	"database/sql"

	"economy-core/internal/repository"

	_ "github.com/lib/pq"
)

// Store bundles the individual repositories behind one constructor. The
// repositories share method names (Create, Update, GetByID), so they are
// exposed as named fields rather than embedded interfaces.
type Store struct {
	db *sql.DB

	TransactionRepository repository.TransactionRepository
	LoanRepository        repository.LoanRepository
	PayrollRepository     repository.PayrollRepository
	ApprovalRepository    repository.ApprovalRepository
	StreakRepository      repository.StreakRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		TransactionRepository: NewTransactionRepository(db),
		LoanRepository:        NewLoanRepository(db),
		PayrollRepository:     NewPayrollRepository(db),
		ApprovalRepository:    NewApprovalRepository(db),
		StreakRepository:      NewStreakRepository(db),
	}
}
