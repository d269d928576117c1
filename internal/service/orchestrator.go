package service

import (
	"context"
	"errors"
	"fmt"

	"economy-core/internal/domain"
	"economy-core/internal/ledger"
	"economy-core/internal/logger"
	"economy-core/internal/metrics"
	"economy-core/internal/repository"

	"github.com/google/uuid"
)

type orchestrator struct {
	ledger ledger.Client
	txRepo repository.TransactionRepository
	audit  AuditService
	locks  *accountLocks
}

func NewOrchestrator(ledgerClient ledger.Client, txRepo repository.TransactionRepository, audit AuditService) Orchestrator {
	return &orchestrator{
		ledger: ledgerClient,
		txRepo: txRepo,
		audit:  audit,
		locks:  newAccountLocks(),
	}
}

// Debit removes op.Amount from the target account. Sequence: read balance,
// validate sufficiency, mutate ledger, record. Validation failures happen
// before any ledger mutation.
func (o *orchestrator) Debit(ctx context.Context, op MoneyOp) (*TransactionResult, error) {
	unlock := o.locks.lock(op.GuildID, op.UserID)
	defer unlock()
	return o.debitLocked(ctx, op)
}

func (o *orchestrator) debitLocked(ctx context.Context, op MoneyOp) (*TransactionResult, error) {
	before, err := o.ledger.GetBalance(ctx, op.GuildID, op.UserID)
	if err != nil {
		return nil, fmt.Errorf("reading balance for debit: %w", err)
	}

	available := bucketOf(before, op.Bucket)
	if available < op.Amount {
		return nil, &domain.InsufficientFundsError{
			Bucket:    op.Bucket,
			Required:  op.Amount,
			Available: available,
		}
	}

	after, err := o.ledger.RemoveMoney(ctx, op.GuildID, op.UserID, op.Amount, op.Reason, op.Bucket)
	if errors.Is(err, domain.ErrLedgerTimeout) {
		// Money may have moved. Record the attempt as unconfirmed and
		// surface the indeterminate outcome to the caller.
		metrics.LedgerTimeouts.Inc()
		o.audit.Record(ctx, o.newRecord(op, -op.Amount, available, available, domain.TransactionStatusUnconfirmed))
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("ledger debit failed: %w", err)
	}

	rec := o.newRecord(op, -op.Amount, available, bucketOf(after, op.Bucket), domain.TransactionStatusConfirmed)
	o.audit.Record(ctx, rec)
	return &TransactionResult{Record: rec, Balance: after}, nil
}

// Credit adds op.Amount to the target account.
func (o *orchestrator) Credit(ctx context.Context, op MoneyOp) (*TransactionResult, error) {
	unlock := o.locks.lock(op.GuildID, op.UserID)
	defer unlock()
	return o.creditLocked(ctx, op)
}

func (o *orchestrator) creditLocked(ctx context.Context, op MoneyOp) (*TransactionResult, error) {
	before, err := o.ledger.GetBalance(ctx, op.GuildID, op.UserID)
	if err != nil {
		return nil, fmt.Errorf("reading balance for credit: %w", err)
	}
	prev := bucketOf(before, op.Bucket)

	after, err := o.ledger.AddMoney(ctx, op.GuildID, op.UserID, op.Amount, op.Reason, op.Bucket)
	if errors.Is(err, domain.ErrLedgerTimeout) {
		metrics.LedgerTimeouts.Inc()
		o.audit.Record(ctx, o.newRecord(op, op.Amount, prev, prev, domain.TransactionStatusUnconfirmed))
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("ledger credit failed: %w", err)
	}

	rec := o.newRecord(op, op.Amount, prev, bucketOf(after, op.Bucket), domain.TransactionStatusConfirmed)
	o.audit.Record(ctx, rec)
	return &TransactionResult{Record: rec, Balance: after}, nil
}

// PayrollRun charges the company once for the salary sum, then credits each
// employee. A company balance short by even one unit rejects the whole run
// before any movement. A failed employee credit does not reverse the
// already-applied steps; the run is reported as a PartialFailureError and
// the caller may Compensate.
func (o *orchestrator) PayrollRun(ctx context.Context, run PayrollRunRequest) (*PayrollRunResult, error) {
	if len(run.Items) == 0 {
		return nil, domain.ErrEmptyPayrollGroup
	}

	var total int64
	for _, item := range run.Items {
		total += item.Salary
	}

	runID := uuid.NewString()
	result := &PayrollRunResult{RunID: runID, Total: total}

	charge, err := o.Debit(ctx, MoneyOp{
		GuildID:     run.GuildID,
		UserID:      run.CompanyID,
		Amount:      total,
		Bucket:      run.Bucket,
		Type:        domain.TransactionTypePayrollCharge,
		Reason:      run.Reason,
		ActorID:     run.ActorID,
		CanRollback: true,
		RunID:       &runID,
	})
	if err != nil {
		metrics.PayrollRuns.WithLabelValues("rejected").Inc()
		return nil, err
	}
	result.CompanyBalance = charge.Balance

	failed := false
	for _, item := range run.Items {
		if item.Salary <= 0 {
			continue
		}
		step := PayrollStepResult{MemberID: item.MemberID, Salary: item.Salary}
		_, err := o.Credit(ctx, MoneyOp{
			GuildID: run.GuildID,
			UserID:  item.MemberID,
			Amount:  item.Salary,
			// Employees always receive salary in cash.
			Bucket:      domain.BucketCash,
			Type:        domain.TransactionTypePayrollSalary,
			Reason:      run.Reason,
			ActorID:     run.ActorID,
			CanRollback: true,
			RunID:       &runID,
		})
		if err != nil {
			failed = true
			step.Error = err.Error()
			logger.Error("payroll credit failed", "run_id", runID, "member_id", item.MemberID, "error", err)
		} else {
			step.Committed = true
		}
		result.Steps = append(result.Steps, step)
	}

	if failed {
		metrics.PayrollRuns.WithLabelValues("partial").Inc()
		return result, &PartialFailureError{RunID: runID, Result: result}
	}
	metrics.PayrollRuns.WithLabelValues("completed").Inc()
	return result, nil
}

// Compensate issues inverse credits for every committed, not-yet-reversed
// step of a run. It is never triggered automatically.
func (o *orchestrator) Compensate(ctx context.Context, runID, actorID string) (*CompensationResult, error) {
	canRollback := true
	records, err := o.txRepo.List(ctx, domain.TransactionFilter{RunID: runID, CanRollback: &canRollback})
	if err != nil {
		return nil, fmt.Errorf("listing run steps: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no reversible steps for run %s", runID)
	}

	result := &CompensationResult{RunID: runID}
	for _, rec := range records {
		if rec.Status != domain.TransactionStatusConfirmed {
			continue
		}
		inverse := MoneyOp{
			GuildID:     rec.GuildID,
			UserID:      rec.UserID,
			Amount:      abs(rec.Amount),
			Bucket:      rec.Bucket,
			Type:        domain.TransactionTypeCompensation,
			Reason:      fmt.Sprintf("compensation for run %s", runID),
			ActorID:     actorID,
			CanRollback: false,
			RunID:       &runID,
		}
		if rec.Amount > 0 {
			_, err = o.Debit(ctx, inverse)
		} else {
			_, err = o.Credit(ctx, inverse)
		}
		if err != nil {
			logger.Error("compensation step failed", "run_id", runID, "record_id", rec.ID, "error", err)
			result.Failed = append(result.Failed, rec.ID)
			continue
		}
		if err := o.txRepo.MarkRolledBack(ctx, rec.ID); err != nil {
			logger.Error("failed to mark compensated record", "record_id", rec.ID, "error", err)
		}
		result.Reversed = append(result.Reversed, rec.ID)
	}
	return result, nil
}

func (o *orchestrator) newRecord(op MoneyOp, signedAmount, prev, next int64, status domain.TransactionStatus) *domain.TransactionRecord {
	return &domain.TransactionRecord{
		GuildID:         op.GuildID,
		UserID:          op.UserID,
		Type:            op.Type,
		Amount:          signedAmount,
		Bucket:          op.Bucket,
		Reason:          op.Reason,
		PreviousBalance: prev,
		NewBalance:      next,
		Status:          status,
		RunID:           op.RunID,
		CreatedBy:       op.ActorID,
		CanRollback:     op.CanRollback,
	}
}

func bucketOf(bal *ledger.Balance, bucket domain.CurrencyBucket) int64 {
	if bucket == domain.BucketBank {
		return bal.Bank
	}
	return bal.Cash
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
