package service

import (
	"context"
	"fmt"
	"time"

	"economy-core/internal/domain"
	"economy-core/internal/ledger"
)

// MoneyOp describes a single-account money movement for the orchestrator.
// Amount is always positive; Type and the Debit/Credit entry point decide
// the sign of the recorded movement.
type MoneyOp struct {
	GuildID     string
	UserID      string
	Amount      int64
	Bucket      domain.CurrencyBucket
	Type        domain.TransactionType
	Reason      string
	ActorID     string
	CanRollback bool
	RunID       *string
}

type TransactionResult struct {
	Record  *domain.TransactionRecord
	Balance *ledger.Balance
}

type PayrollRunRequest struct {
	GuildID   string
	CompanyID string // account the salaries are charged to
	ActorID   string
	Bucket    domain.CurrencyBucket
	Reason    string
	Items     []domain.PayrollMember
}

type PayrollStepResult struct {
	MemberID  string
	Salary    int64
	Committed bool
	Error     string
}

type PayrollRunResult struct {
	RunID          string
	Total          int64
	Steps          []PayrollStepResult
	CompanyBalance *ledger.Balance
}

// Committed reports how many employee credits landed.
func (r *PayrollRunResult) Committed() int {
	n := 0
	for _, s := range r.Steps {
		if s.Committed {
			n++
		}
	}
	return n
}

// PartialFailureError is returned when a multi-step run committed some but
// not all steps. Already-applied steps are not reversed automatically; the
// caller decides whether to Compensate.
type PartialFailureError struct {
	RunID  string
	Result *PayrollRunResult
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("payroll run %s partially applied: %d of %d steps committed",
		e.RunID, e.Result.Committed(), len(e.Result.Steps))
}

type CompensationResult struct {
	RunID    string
	Reversed []int64 // transaction record ids that were reversed
	Failed   []int64 // record ids whose inverse operation failed
}

type Orchestrator interface {
	Debit(ctx context.Context, op MoneyOp) (*TransactionResult, error)
	Credit(ctx context.Context, op MoneyOp) (*TransactionResult, error)
	PayrollRun(ctx context.Context, run PayrollRunRequest) (*PayrollRunResult, error)
	Compensate(ctx context.Context, runID, actorID string) (*CompensationResult, error)
}

// AuditSink mirrors records to an operator-visible channel. Notification
// failure never fails the underlying transaction.
type AuditSink interface {
	Notify(ctx context.Context, record *domain.TransactionRecord, note string) error
}

type AuditService interface {
	// Record appends a transaction record. It never returns an error to the
	// caller; write failures are logged and surfaced to the sink.
	Record(ctx context.Context, record *domain.TransactionRecord)
	FindRollbackable(ctx context.Context, filter domain.TransactionFilter) ([]domain.TransactionRecord, error)
	Rollback(ctx context.Context, id int64, adminID, reason string) (*domain.TransactionRecord, error)
	// Confirm resolves an unconfirmed record after an operator verified the
	// movement against the ledger.
	Confirm(ctx context.Context, id int64) error
}

// PendingApprovalError tells the original caller their action was suspended
// for superior approval rather than executed.
type PendingApprovalError struct {
	Request *domain.ApprovalRequest
}

func (e *PendingApprovalError) Error() string {
	return fmt.Sprintf("action suspended pending superior approval (request %s, expires %s)",
		e.Request.ID, e.Request.ExpiresOn.Format(time.RFC3339))
}

// ReplayFunc re-executes a suspended action from its stored metadata.
type ReplayFunc func(ctx context.Context, req *domain.ApprovalRequest) error

type ApprovalParams struct {
	GuildID    string
	ActionType domain.ApprovalActionType
	ExecutorID string
	TargetID   string
	Details    string
	Metadata   map[string]string
}

type ApprovalService interface {
	// Intercept reports whether the action may proceed immediately: the
	// actor and target differ, or the actor holds an exempt privilege.
	Intercept(executorID, targetID string, exempt bool) bool
	RequestApproval(ctx context.Context, p ApprovalParams) (*domain.ApprovalRequest, error)
	Approve(ctx context.Context, id, reviewerID string) error
	Reject(ctx context.Context, id, reviewerID string) error
	RegisterExecutor(action domain.ApprovalActionType, fn ReplayFunc)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type LoanQuote struct {
	LoanAmount     int64
	TermMonths     int32
	AnnualRate     string
	MonthlyPayment int64
	TotalToPay     int64
	TotalInterest  int64
}

type LoanPaymentResult struct {
	Loan      *domain.Loan
	Payment   *domain.LoanPayment
	PaidOff   bool
	Remaining int64
}

type LoanService interface {
	Quote(amount int64, termMonths int32) *LoanQuote
	RequestLoan(ctx context.Context, guildID, borrowerID string, amount int64, termMonths int32, purpose string) (*domain.Loan, error)
	// Disburse approves a pending loan, credits the borrower and activates
	// the loan. A banker disbursing their own loan goes through the
	// self-action approval workflow.
	Disburse(ctx context.Context, loanID int64, bankerID string) (*domain.Loan, error)
	Pay(ctx context.Context, guildID, borrowerID string, loanID int64, amount *int64) (*LoanPaymentResult, error)
	GetLoan(ctx context.Context, loanID int64) (*domain.Loan, error)
	ListLoans(ctx context.Context, guildID, borrowerID string, status domain.LoanStatus) ([]domain.Loan, error)
}

type NextMilestone struct {
	Days     int32
	Reward   int64
	DaysLeft int32
}

type ClaimResult struct {
	ConsecutiveDays int32
	BaseReward      int64
	LuckyBonus      int64
	TotalReward     int64
	IsLucky         bool
	IsMilestone     bool
	NextMilestone   *NextMilestone
	BestStreak      int32
	Balance         *ledger.Balance
}

// AlreadyClaimedError carries the next eligible claim time.
type AlreadyClaimedError struct {
	NextClaimAt time.Time
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("daily reward already claimed today, next claim at %s", e.NextClaimAt.Format(time.RFC3339))
}

type StreakService interface {
	Claim(ctx context.Context, guildID, userID string, now time.Time) (*ClaimResult, error)
}

type PayrollService interface {
	CreateGroup(ctx context.Context, guildID, companyID, ownerID, name string) (*domain.PayrollGroup, error)
	AddMember(ctx context.Context, groupID int64, ownerID, memberID string, salary int64) error
	RemoveMember(ctx context.Context, groupID int64, ownerID, memberID string) error
	ListGroups(ctx context.Context, guildID, ownerID string) ([]domain.PayrollGroup, error)
	ListMembers(ctx context.Context, groupID int64) ([]domain.PayrollMember, error)
	Run(ctx context.Context, groupID int64, actorID string, bucket domain.CurrencyBucket) (*PayrollRunResult, error)
}

type AdjustDirection string

const (
	AdjustAdd    AdjustDirection = "add"
	AdjustRemove AdjustDirection = "remove"
)

type AdjustParams struct {
	GuildID   string
	ActorID   string
	TargetID  string
	Amount    int64
	Bucket    domain.CurrencyBucket
	Reason    string
	Direction AdjustDirection
	// ActorExempt is decided by the presentation layer from platform roles.
	ActorExempt bool
}

// AdjustResult is either an executed transaction or a pending approval when
// the adjustment targeted the actor themselves.
type AdjustResult struct {
	Transaction     *TransactionResult
	PendingApproval *domain.ApprovalRequest
}

type AdminService interface {
	AdjustBalance(ctx context.Context, p AdjustParams) (*AdjustResult, error)
}
