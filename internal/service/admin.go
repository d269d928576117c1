package service

import (
	"context"
	"fmt"
	"strconv"

	"economy-core/internal/domain"
)

type adminService struct {
	orch      Orchestrator
	approvals ApprovalService
}

// NewAdminService wires the admin balance adjustments and registers replay
// executors so approved self-adjustments re-enter through the orchestrator.
func NewAdminService(orch Orchestrator, approvals ApprovalService) AdminService {
	s := &adminService{orch: orch, approvals: approvals}
	approvals.RegisterExecutor(domain.ActionMoneyAdd, s.replay)
	approvals.RegisterExecutor(domain.ActionMoneyRemove, s.replay)
	return s
}

// AdjustBalance performs an admin add/remove. An admin targeting their own
// account without an exempt privilege is suspended for superior approval.
func (s *adminService) AdjustBalance(ctx context.Context, p AdjustParams) (*AdjustResult, error) {
	if p.Amount <= 0 {
		return nil, fmt.Errorf("adjustment amount must be positive")
	}

	if !s.approvals.Intercept(p.ActorID, p.TargetID, p.ActorExempt) {
		action := domain.ActionMoneyAdd
		if p.Direction == AdjustRemove {
			action = domain.ActionMoneyRemove
		}
		req, err := s.approvals.RequestApproval(ctx, ApprovalParams{
			GuildID:    p.GuildID,
			ActionType: action,
			ExecutorID: p.ActorID,
			TargetID:   p.TargetID,
			Details:    fmt.Sprintf("self %s of %d (%s): %s", p.Direction, p.Amount, p.Bucket, p.Reason),
			Metadata: map[string]string{
				"guild_id": p.GuildID,
				"amount":   strconv.FormatInt(p.Amount, 10),
				"bucket":   string(p.Bucket),
				"reason":   p.Reason,
			},
		})
		if err != nil {
			return nil, err
		}
		return &AdjustResult{PendingApproval: req}, nil
	}

	tx, err := s.execute(ctx, p)
	if err != nil {
		return nil, err
	}
	return &AdjustResult{Transaction: tx}, nil
}

func (s *adminService) execute(ctx context.Context, p AdjustParams) (*TransactionResult, error) {
	op := MoneyOp{
		GuildID:     p.GuildID,
		UserID:      p.TargetID,
		Amount:      p.Amount,
		Bucket:      p.Bucket,
		Reason:      p.Reason,
		ActorID:     p.ActorID,
		CanRollback: true,
	}
	if p.Direction == AdjustRemove {
		op.Type = domain.TransactionTypeAdminRemove
		return s.orch.Debit(ctx, op)
	}
	op.Type = domain.TransactionTypeAdminAdd
	return s.orch.Credit(ctx, op)
}

// replay re-executes an approved self-adjustment from its stored metadata.
func (s *adminService) replay(ctx context.Context, req *domain.ApprovalRequest) error {
	amount, err := strconv.ParseInt(req.Metadata["amount"], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount in approval metadata: %w", err)
	}
	direction := AdjustAdd
	if req.ActionType == domain.ActionMoneyRemove {
		direction = AdjustRemove
	}
	_, err = s.execute(ctx, AdjustParams{
		GuildID:   req.Metadata["guild_id"],
		ActorID:   req.ExecutorID,
		TargetID:  req.TargetID,
		Amount:    amount,
		Bucket:    domain.CurrencyBucket(req.Metadata["bucket"]),
		Reason:    req.Metadata["reason"],
		Direction: direction,
	})
	return err
}
