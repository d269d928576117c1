package repository

import (
	"context"
	"time"

	"economy-core/internal/domain"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.TransactionRecord) error
	GetByID(ctx context.Context, id int64) (*domain.TransactionRecord, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]domain.TransactionRecord, error)
	// SumAmounts returns the signed sum of all record amounts matching the
	// filter, used to reconcile against ledger balances.
	SumAmounts(ctx context.Context, filter domain.TransactionFilter) (int64, error)
	MarkRolledBack(ctx context.Context, id int64) error
	ListUnconfirmed(ctx context.Context, olderThan time.Time) ([]domain.TransactionRecord, error)
	MarkConfirmed(ctx context.Context, id int64) error
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id int64) (*domain.Loan, error)
	GetForBorrower(ctx context.Context, id int64, guildID, borrowerID string) (*domain.Loan, error)
	ListByBorrower(ctx context.Context, guildID, borrowerID string, status domain.LoanStatus) ([]domain.Loan, error)
	CountByStatus(ctx context.Context, guildID, borrowerID string, status domain.LoanStatus) (int32, error)
	// Update applies payment/status changes only when the stored version
	// matches expectedVersion; a mismatch returns domain.ErrVersionConflict.
	Update(ctx context.Context, loan *domain.Loan, expectedVersion int64) error
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Loan, error)
	CreatePayment(ctx context.Context, payment *domain.LoanPayment) error
	ListPayments(ctx context.Context, loanID int64) ([]domain.LoanPayment, error)
}

type PayrollRepository interface {
	CreateGroup(ctx context.Context, group *domain.PayrollGroup) error
	GetGroup(ctx context.Context, id int64) (*domain.PayrollGroup, error)
	ListGroupsByOwner(ctx context.Context, guildID, ownerID string) ([]domain.PayrollGroup, error)
	DeleteGroup(ctx context.Context, id int64) error
	AddMember(ctx context.Context, member *domain.PayrollMember) error
	RemoveMember(ctx context.Context, groupID int64, memberID string) error
	ListMembers(ctx context.Context, groupID int64) ([]domain.PayrollMember, error)
}

type ApprovalRepository interface {
	Create(ctx context.Context, req *domain.ApprovalRequest) error
	GetByID(ctx context.Context, id string) (*domain.ApprovalRequest, error)
	FindPending(ctx context.Context, executorID, targetID string, action domain.ApprovalActionType) (*domain.ApprovalRequest, error)
	// Resolve flips a request out of PENDING and reports how many rows
	// changed; zero means another reviewer won the race.
	Resolve(ctx context.Context, id string, status domain.ApprovalStatus, resolvedBy string, resolvedOn time.Time) (int64, error)
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

type StreakRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.StreakRecord, error)
	// Update persists claim results only when the stored version matches
	// expectedVersion; a mismatch returns domain.ErrVersionConflict.
	Update(ctx context.Context, rec *domain.StreakRecord, expectedVersion int64) error
	CreateClaim(ctx context.Context, claim *domain.StreakClaim) error
}
