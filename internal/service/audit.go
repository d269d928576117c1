package service

import (
	"context"
	"fmt"

	"economy-core/internal/domain"
	"economy-core/internal/ledger"
	"economy-core/internal/logger"
	"economy-core/internal/metrics"
	"economy-core/internal/repository"
)

type auditService struct {
	txRepo              repository.TransactionRepository
	ledger              ledger.Client
	sink                AuditSink
	suspiciousThreshold int64
}

func NewAuditService(txRepo repository.TransactionRepository, ledgerClient ledger.Client, sink AuditSink, suspiciousThreshold int64) AuditService {
	return &auditService{
		txRepo:              txRepo,
		ledger:              ledgerClient,
		sink:                sink,
		suspiciousThreshold: suspiciousThreshold,
	}
}

// Record appends the record and mirrors it to the sink. The money already
// moved in the system of record, so neither a log write failure nor a sink
// failure rolls anything back; both are logged operationally.
func (s *auditService) Record(ctx context.Context, record *domain.TransactionRecord) {
	if err := s.txRepo.Create(ctx, record); err != nil {
		logger.Error("audit log write failed", "type", record.Type, "user_id", record.UserID, "amount", record.Amount, "error", err)
		s.notify(ctx, record, "AUDIT WRITE FAILED: "+err.Error())
		return
	}
	metrics.TransactionsRecorded.WithLabelValues(string(record.Type)).Inc()

	note := ""
	if abs(record.Amount) > s.suspiciousThreshold {
		note = fmt.Sprintf("amount above suspicious threshold %d", s.suspiciousThreshold)
	}
	if record.Status == domain.TransactionStatusUnconfirmed {
		note = "UNCONFIRMED: ledger call timed out, reconcile manually"
	}
	s.notify(ctx, record, note)
}

func (s *auditService) notify(ctx context.Context, record *domain.TransactionRecord, note string) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Notify(ctx, record, note); err != nil {
		logger.Warn("audit sink notification failed", "record_id", record.ID, "error", err)
	}
}

// Confirm flips an unconfirmed record to confirmed once the operator has
// reconciled the timed-out movement against the ledger.
func (s *auditService) Confirm(ctx context.Context, id int64) error {
	record, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.Status != domain.TransactionStatusUnconfirmed {
		return fmt.Errorf("transaction %d is %s: %w", id, record.Status, domain.ErrNotUnconfirmed)
	}
	if err := s.txRepo.MarkConfirmed(ctx, id); err != nil {
		return err
	}
	logger.Info("unconfirmed transaction resolved", "record_id", id)
	return nil
}

func (s *auditService) FindRollbackable(ctx context.Context, filter domain.TransactionFilter) ([]domain.TransactionRecord, error) {
	canRollback := true
	filter.CanRollback = &canRollback
	return s.txRepo.List(ctx, filter)
}

// Rollback issues the inverse ledger operation for a reversible record and
// marks it rolled back. Not automatic; an operator or compensating routine
// calls this.
func (s *auditService) Rollback(ctx context.Context, id int64, adminID, reason string) (*domain.TransactionRecord, error) {
	original, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !original.CanRollback || original.RolledBack {
		return nil, domain.ErrRollbackNotAllowed
	}
	if original.Status != domain.TransactionStatusConfirmed {
		return nil, fmt.Errorf("transaction %d is unconfirmed: %w", id, domain.ErrRollbackNotAllowed)
	}

	amount := abs(original.Amount)
	var balance *ledger.Balance
	if original.Amount > 0 {
		balance, err = s.ledger.RemoveMoney(ctx, original.GuildID, original.UserID, amount, reason, original.Bucket)
	} else {
		balance, err = s.ledger.AddMoney(ctx, original.GuildID, original.UserID, amount, reason, original.Bucket)
	}
	if err != nil {
		return nil, fmt.Errorf("inverse ledger operation failed: %w", err)
	}

	if err := s.txRepo.MarkRolledBack(ctx, id); err != nil {
		return nil, err
	}
	metrics.RollbacksIssued.Inc()

	inverse := &domain.TransactionRecord{
		GuildID:         original.GuildID,
		UserID:          original.UserID,
		Type:            domain.TransactionTypeRollback,
		Amount:          -original.Amount,
		Bucket:          original.Bucket,
		Reason:          reason,
		PreviousBalance: original.NewBalance,
		NewBalance:      bucketOf(balance, original.Bucket),
		Status:          domain.TransactionStatusConfirmed,
		CreatedBy:       adminID,
		CanRollback:     false,
	}
	s.Record(ctx, inverse)
	return inverse, nil
}
