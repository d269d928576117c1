package service

import (
	"context"
	"testing"
	"time"

	"economy-core/internal/domain"
	"economy-core/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAdminService(t *testing.T) (*MockOrchestrator, *MockApprovalRepo, ApprovalService, AdminService) {
	t.Helper()
	orch := new(MockOrchestrator)
	approvalRepo := new(MockApprovalRepo)
	approvals := NewApprovalService(approvalRepo, 15*time.Minute)
	return orch, approvalRepo, approvals, NewAdminService(orch, approvals)
}

func TestAdminService_AdjustBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("AddToOtherUserExecutes", func(t *testing.T) {
		orch, _, _, svc := newTestAdminService(t)

		orch.On("Credit", ctx, mock.MatchedBy(func(op MoneyOp) bool {
			return op.UserID == "u1" && op.Amount == 500 &&
				op.Type == domain.TransactionTypeAdminAdd && op.CanRollback
		})).Return(&TransactionResult{Balance: &ledger.Balance{Cash: 500}}, nil).Once()

		result, err := svc.AdjustBalance(ctx, AdjustParams{
			GuildID: "g1", ActorID: "admin1", TargetID: "u1",
			Amount: 500, Bucket: domain.BucketCash, Reason: "event prize",
			Direction: AdjustAdd,
		})

		require.NoError(t, err)
		assert.Nil(t, result.PendingApproval)
		assert.NotNil(t, result.Transaction)
	})

	t.Run("RemoveUsesDebit", func(t *testing.T) {
		orch, _, _, svc := newTestAdminService(t)

		orch.On("Debit", ctx, mock.MatchedBy(func(op MoneyOp) bool {
			return op.Type == domain.TransactionTypeAdminRemove && op.Amount == 300
		})).Return(&TransactionResult{}, nil).Once()

		_, err := svc.AdjustBalance(ctx, AdjustParams{
			GuildID: "g1", ActorID: "admin1", TargetID: "u1",
			Amount: 300, Bucket: domain.BucketBank, Reason: "fine",
			Direction: AdjustRemove,
		})

		assert.NoError(t, err)
		orch.AssertExpectations(t)
	})

	t.Run("SelfAdjustmentSuspended", func(t *testing.T) {
		orch, approvalRepo, _, svc := newTestAdminService(t)

		approvalRepo.On("FindPending", ctx, "admin1", "admin1", domain.ActionMoneyAdd).Return(nil, nil).Once()
		approvalRepo.On("Create", ctx, mock.AnythingOfType("*domain.ApprovalRequest")).Return(nil).Once()

		result, err := svc.AdjustBalance(ctx, AdjustParams{
			GuildID: "g1", ActorID: "admin1", TargetID: "admin1",
			Amount: 500, Bucket: domain.BucketCash, Reason: "bonus",
			Direction: AdjustAdd,
		})

		require.NoError(t, err)
		assert.Nil(t, result.Transaction)
		require.NotNil(t, result.PendingApproval)
		assert.Equal(t, "500", result.PendingApproval.Metadata["amount"])
		assert.Equal(t, "cash", result.PendingApproval.Metadata["bucket"])
		orch.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything)
	})

	t.Run("ExemptActorSkipsApproval", func(t *testing.T) {
		orch, _, _, svc := newTestAdminService(t)

		orch.On("Credit", ctx, mock.Anything).Return(&TransactionResult{}, nil).Once()

		result, err := svc.AdjustBalance(ctx, AdjustParams{
			GuildID: "g1", ActorID: "owner1", TargetID: "owner1",
			Amount: 500, Bucket: domain.BucketCash, Reason: "owner grant",
			Direction: AdjustAdd, ActorExempt: true,
		})

		require.NoError(t, err)
		assert.NotNil(t, result.Transaction)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		_, _, _, svc := newTestAdminService(t)
		_, err := svc.AdjustBalance(ctx, AdjustParams{Amount: 0, Direction: AdjustAdd})
		assert.Error(t, err)
	})
}

// A suspended self-adjustment approved by a superior replays the original
// operation from metadata, attributed to the original executor.
func TestAdminService_ApprovedReplay(t *testing.T) {
	ctx := context.Background()
	orch, approvalRepo, approvals, _ := newTestAdminService(t)

	req := &domain.ApprovalRequest{
		ID:         "req-1",
		GuildID:    "g1",
		ActionType: domain.ActionMoneyRemove,
		ExecutorID: "admin1",
		TargetID:   "admin1",
		Status:     domain.ApprovalStatusPending,
		ExpiresOn:  time.Now().UTC().Add(10 * time.Minute),
		Metadata: map[string]string{
			"guild_id": "g1",
			"amount":   "750",
			"bucket":   "bank",
			"reason":   "correction",
		},
	}
	approvalRepo.On("GetByID", ctx, "req-1").Return(req, nil).Once()
	approvalRepo.On("Resolve", ctx, "req-1", domain.ApprovalStatusApproved, "superior1", mock.AnythingOfType("time.Time")).
		Return(int64(1), nil).Once()
	orch.On("Debit", ctx, mock.MatchedBy(func(op MoneyOp) bool {
		return op.GuildID == "g1" && op.UserID == "admin1" && op.Amount == 750 &&
			op.Bucket == domain.BucketBank && op.ActorID == "admin1" &&
			op.Type == domain.TransactionTypeAdminRemove
	})).Return(&TransactionResult{}, nil).Once()

	err := approvals.Approve(ctx, "req-1", "superior1")

	assert.NoError(t, err)
	orch.AssertExpectations(t)
}
