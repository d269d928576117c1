package service

import (
	"context"
	"time"

	"economy-core/internal/domain"
	"economy-core/internal/ledger"

	"github.com/stretchr/testify/mock"
)

// MockLedgerClient
type MockLedgerClient struct {
	mock.Mock
}

func (m *MockLedgerClient) GetBalance(ctx context.Context, guildID, userID string) (*ledger.Balance, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Balance), args.Error(1)
}
func (m *MockLedgerClient) AddMoney(ctx context.Context, guildID, userID string, amount int64, reason string, bucket domain.CurrencyBucket) (*ledger.Balance, error) {
	args := m.Called(ctx, guildID, userID, amount, reason, bucket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Balance), args.Error(1)
}
func (m *MockLedgerClient) RemoveMoney(ctx context.Context, guildID, userID string, amount int64, reason string, bucket domain.CurrencyBucket) (*ledger.Balance, error) {
	args := m.Called(ctx, guildID, userID, amount, reason, bucket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Balance), args.Error(1)
}

// MockTransactionRepo
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, tx *domain.TransactionRecord) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}
func (m *MockTransactionRepo) GetByID(ctx context.Context, id int64) (*domain.TransactionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionRecord), args.Error(1)
}
func (m *MockTransactionRepo) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.TransactionRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionRecord), args.Error(1)
}
func (m *MockTransactionRepo) SumAmounts(ctx context.Context, filter domain.TransactionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockTransactionRepo) MarkRolledBack(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockTransactionRepo) ListUnconfirmed(ctx context.Context, olderThan time.Time) ([]domain.TransactionRecord, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionRecord), args.Error(1)
}
func (m *MockTransactionRepo) MarkConfirmed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLoanRepo
type MockLoanRepo struct {
	mock.Mock
}

func (m *MockLoanRepo) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}
func (m *MockLoanRepo) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) GetForBorrower(ctx context.Context, id int64, guildID, borrowerID string) (*domain.Loan, error) {
	args := m.Called(ctx, id, guildID, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) ListByBorrower(ctx context.Context, guildID, borrowerID string, status domain.LoanStatus) ([]domain.Loan, error) {
	args := m.Called(ctx, guildID, borrowerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) CountByStatus(ctx context.Context, guildID, borrowerID string, status domain.LoanStatus) (int32, error) {
	args := m.Called(ctx, guildID, borrowerID, status)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockLoanRepo) Update(ctx context.Context, loan *domain.Loan, expectedVersion int64) error {
	args := m.Called(ctx, loan, expectedVersion)
	return args.Error(0)
}
func (m *MockLoanRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Loan, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) CreatePayment(ctx context.Context, payment *domain.LoanPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockLoanRepo) ListPayments(ctx context.Context, loanID int64) ([]domain.LoanPayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LoanPayment), args.Error(1)
}

// MockPayrollRepo
type MockPayrollRepo struct {
	mock.Mock
}

func (m *MockPayrollRepo) CreateGroup(ctx context.Context, group *domain.PayrollGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}
func (m *MockPayrollRepo) GetGroup(ctx context.Context, id int64) (*domain.PayrollGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayrollGroup), args.Error(1)
}
func (m *MockPayrollRepo) ListGroupsByOwner(ctx context.Context, guildID, ownerID string) ([]domain.PayrollGroup, error) {
	args := m.Called(ctx, guildID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PayrollGroup), args.Error(1)
}
func (m *MockPayrollRepo) DeleteGroup(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockPayrollRepo) AddMember(ctx context.Context, member *domain.PayrollMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}
func (m *MockPayrollRepo) RemoveMember(ctx context.Context, groupID int64, memberID string) error {
	args := m.Called(ctx, groupID, memberID)
	return args.Error(0)
}
func (m *MockPayrollRepo) ListMembers(ctx context.Context, groupID int64) ([]domain.PayrollMember, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PayrollMember), args.Error(1)
}

// MockApprovalRepo
type MockApprovalRepo struct {
	mock.Mock
}

func (m *MockApprovalRepo) Create(ctx context.Context, req *domain.ApprovalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockApprovalRepo) GetByID(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRequest), args.Error(1)
}
func (m *MockApprovalRepo) FindPending(ctx context.Context, executorID, targetID string, action domain.ApprovalActionType) (*domain.ApprovalRequest, error) {
	args := m.Called(ctx, executorID, targetID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRequest), args.Error(1)
}
func (m *MockApprovalRepo) Resolve(ctx context.Context, id string, status domain.ApprovalStatus, resolvedBy string, resolvedOn time.Time) (int64, error) {
	args := m.Called(ctx, id, status, resolvedBy, resolvedOn)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockApprovalRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockStreakRepo
type MockStreakRepo struct {
	mock.Mock
}

func (m *MockStreakRepo) GetOrCreate(ctx context.Context, userID string) (*domain.StreakRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreakRecord), args.Error(1)
}
func (m *MockStreakRepo) Update(ctx context.Context, rec *domain.StreakRecord, expectedVersion int64) error {
	args := m.Called(ctx, rec, expectedVersion)
	return args.Error(0)
}
func (m *MockStreakRepo) CreateClaim(ctx context.Context, claim *domain.StreakClaim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

// MockSink
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Notify(ctx context.Context, record *domain.TransactionRecord, note string) error {
	args := m.Called(ctx, record, note)
	return args.Error(0)
}

// MockOrchestrator
type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) Debit(ctx context.Context, op MoneyOp) (*TransactionResult, error) {
	args := m.Called(ctx, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TransactionResult), args.Error(1)
}
func (m *MockOrchestrator) Credit(ctx context.Context, op MoneyOp) (*TransactionResult, error) {
	args := m.Called(ctx, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TransactionResult), args.Error(1)
}
func (m *MockOrchestrator) PayrollRun(ctx context.Context, run PayrollRunRequest) (*PayrollRunResult, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PayrollRunResult), args.Error(1)
}
func (m *MockOrchestrator) Compensate(ctx context.Context, runID, actorID string) (*CompensationResult, error) {
	args := m.Called(ctx, runID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CompensationResult), args.Error(1)
}
