package jobs

import (
	"context"
	"time"

	"economy-core/internal/config"
	"economy-core/internal/logger"
	"economy-core/internal/repository"
	"economy-core/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	txRepo    repository.TransactionRepository
	loanRepo  repository.LoanRepository
	approvals service.ApprovalService
	sink      service.AuditSink
	config    *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(txRepo repository.TransactionRepository, loanRepo repository.LoanRepository, approvals service.ApprovalService, sink service.AuditSink, cfg *config.Config) *JobRunner {
	return &JobRunner{
		txRepo:    txRepo,
		loanRepo:  loanRepo,
		approvals: approvals,
		sink:      sink,
		config:    cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// ExpireApprovals moves pending approval requests past their window to
// EXPIRED so a late reviewer can no longer execute them.
func (jr *JobRunner) ExpireApprovals() {
	jr.runWithRecovery("expire-approvals", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := jr.approvals.ExpireStale(ctx, time.Now().UTC()); err != nil {
			logger.Error("Failed to expire approval requests", "error", err)
		}
	})
}

// MarkOverdueLoans reports active loans whose next payment date has passed.
func (jr *JobRunner) MarkOverdueLoans() {
	jr.runWithRecovery("mark-overdue-loans", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		loans, err := jr.loanRepo.ListOverdue(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to list overdue loans", "error", err)
			return
		}
		for _, loan := range loans {
			logger.Warn("loan payment overdue",
				"loan_id", loan.ID,
				"borrower_id", loan.BorrowerID,
				"remaining", loan.Remaining(),
				"due", loan.NextPaymentDue)
		}
	})
}

// ReportUnconfirmed surfaces transactions whose ledger call timed out so an
// operator can reconcile them against the ledger.
func (jr *JobRunner) ReportUnconfirmed() {
	jr.runWithRecovery("report-unconfirmed", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		cutoff := time.Now().UTC().Add(-5 * time.Minute)
		records, err := jr.txRepo.ListUnconfirmed(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list unconfirmed transactions", "error", err)
			return
		}
		for i := range records {
			rec := &records[i]
			if err := jr.sink.Notify(ctx, rec, "still unconfirmed, reconcile against ledger"); err != nil {
				logger.Warn("Failed to notify unconfirmed transaction", "record_id", rec.ID, "error", err)
			}
		}
	})
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ExpireApprovals()
	jr.MarkOverdueLoans()
	jr.ReportUnconfirmed()
}
