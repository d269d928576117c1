package service

import (
	"context"
	"testing"
	"time"

	"economy-core/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestApprovalService_Intercept(t *testing.T) {
	svc := NewApprovalService(new(MockApprovalRepo), 15*time.Minute)

	assert.True(t, svc.Intercept("admin1", "u1", false), "distinct target proceeds")
	assert.False(t, svc.Intercept("admin1", "admin1", false), "self-action is intercepted")
	assert.True(t, svc.Intercept("admin1", "admin1", true), "exempt privilege bypasses interception")
}

func TestApprovalService_RequestApproval(t *testing.T) {
	ctx := context.Background()

	params := ApprovalParams{
		GuildID:    "g1",
		ActionType: domain.ActionMoneyAdd,
		ExecutorID: "admin1",
		TargetID:   "admin1",
		Details:    "self add of 500",
		Metadata:   map[string]string{"amount": "500"},
	}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockApprovalRepo)
		svc := NewApprovalService(repo, 15*time.Minute)

		repo.On("FindPending", ctx, "admin1", "admin1", domain.ActionMoneyAdd).Return(nil, nil).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*domain.ApprovalRequest")).Return(nil).Once()

		req, err := svc.RequestApproval(ctx, params)

		require.NoError(t, err)
		assert.NotEmpty(t, req.ID)
		assert.Equal(t, domain.ApprovalStatusPending, req.Status)
		assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), req.ExpiresOn, time.Minute)
	})

	t.Run("DuplicatePendingRequest", func(t *testing.T) {
		repo := new(MockApprovalRepo)
		svc := NewApprovalService(repo, 15*time.Minute)

		existing := &domain.ApprovalRequest{ID: "req-1", Status: domain.ApprovalStatusPending}
		repo.On("FindPending", ctx, "admin1", "admin1", domain.ActionMoneyAdd).Return(existing, nil).Once()

		_, err := svc.RequestApproval(ctx, params)

		assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestApprovalService_Approve(t *testing.T) {
	ctx := context.Background()

	pendingReq := func() *domain.ApprovalRequest {
		return &domain.ApprovalRequest{
			ID:         "req-1",
			GuildID:    "g1",
			ActionType: domain.ActionMoneyAdd,
			ExecutorID: "admin1",
			TargetID:   "admin1",
			Status:     domain.ApprovalStatusPending,
			ExpiresOn:  time.Now().UTC().Add(10 * time.Minute),
		}
	}

	t.Run("ApproveReplaysAction", func(t *testing.T) {
		repo := new(MockApprovalRepo)
		svc := NewApprovalService(repo, 15*time.Minute)

		var replayed *domain.ApprovalRequest
		svc.RegisterExecutor(domain.ActionMoneyAdd, func(ctx context.Context, req *domain.ApprovalRequest) error {
			replayed = req
			return nil
		})

		repo.On("GetByID", ctx, "req-1").Return(pendingReq(), nil).Once()
		repo.On("Resolve", ctx, "req-1", domain.ApprovalStatusApproved, "superior1", mock.AnythingOfType("time.Time")).
			Return(int64(1), nil).Once()

		err := svc.Approve(ctx, "req-1", "superior1")

		assert.NoError(t, err)
		require.NotNil(t, replayed)
		assert.Equal(t, "req-1", replayed.ID)
	})

	t.Run("LateApprovalNeverExecutes", func(t *testing.T) {
		repo := new(MockApprovalRepo)
		svc := NewApprovalService(repo, 15*time.Minute)

		executed := false
		svc.RegisterExecutor(domain.ActionMoneyAdd, func(ctx context.Context, req *domain.ApprovalRequest) error {
			executed = true
			return nil
		})

		req := pendingReq()
		req.ExpiresOn = time.Now().UTC().Add(-time.Minute)
		repo.On("GetByID", ctx, "req-1").Return(req, nil).Once()
		repo.On("Resolve", ctx, "req-1", domain.ApprovalStatusExpired, "", mock.AnythingOfType("time.Time")).
			Return(int64(1), nil).Once()

		err := svc.Approve(ctx, "req-1", "superior1")

		assert.ErrorIs(t, err, domain.ErrApprovalExpired)
		assert.False(t, executed)
	})

	t.Run("FirstApprovalWins", func(t *testing.T) {
		repo := new(MockApprovalRepo)
		svc := NewApprovalService(repo, 15*time.Minute)

		executed := false
		svc.RegisterExecutor(domain.ActionMoneyAdd, func(ctx context.Context, req *domain.ApprovalRequest) error {
			executed = true
			return nil
		})

		// The second reviewer read the request while still pending but the
		// conditional update reports zero rows.
		repo.On("GetByID", ctx, "req-1").Return(pendingReq(), nil).Once()
		repo.On("Resolve", ctx, "req-1", domain.ApprovalStatusApproved, "superior2", mock.AnythingOfType("time.Time")).
			Return(int64(0), nil).Once()

		err := svc.Approve(ctx, "req-1", "superior2")

		assert.ErrorIs(t, err, domain.ErrApprovalAlreadyResolved)
		assert.False(t, executed)
	})

	t.Run("AlreadyResolved", func(t *testing.T) {
		repo := new(MockApprovalRepo)
		svc := NewApprovalService(repo, 15*time.Minute)

		req := pendingReq()
		req.Status = domain.ApprovalStatusRejected
		repo.On("GetByID", ctx, "req-1").Return(req, nil).Once()

		err := svc.Approve(ctx, "req-1", "superior1")

		assert.ErrorIs(t, err, domain.ErrApprovalAlreadyResolved)
		repo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockApprovalRepo)
		svc := NewApprovalService(repo, 15*time.Minute)
		repo.On("GetByID", ctx, "missing").Return(nil, nil).Once()

		err := svc.Approve(ctx, "missing", "superior1")
		assert.Error(t, err)
	})
}

func TestApprovalService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockApprovalRepo)
		svc := NewApprovalService(repo, 15*time.Minute)

		req := &domain.ApprovalRequest{
			ID:         "req-1",
			ActionType: domain.ActionMoneyRemove,
			Status:     domain.ApprovalStatusPending,
			ExpiresOn:  time.Now().UTC().Add(10 * time.Minute),
		}
		repo.On("GetByID", ctx, "req-1").Return(req, nil).Once()
		repo.On("Resolve", ctx, "req-1", domain.ApprovalStatusRejected, "superior1", mock.AnythingOfType("time.Time")).
			Return(int64(1), nil).Once()

		assert.NoError(t, svc.Reject(ctx, "req-1", "superior1"))
	})

	t.Run("RaceLoser", func(t *testing.T) {
		repo := new(MockApprovalRepo)
		svc := NewApprovalService(repo, 15*time.Minute)

		req := &domain.ApprovalRequest{
			ID:        "req-1",
			Status:    domain.ApprovalStatusPending,
			ExpiresOn: time.Now().UTC().Add(10 * time.Minute),
		}
		repo.On("GetByID", ctx, "req-1").Return(req, nil).Once()
		repo.On("Resolve", ctx, "req-1", domain.ApprovalStatusRejected, "superior1", mock.AnythingOfType("time.Time")).
			Return(int64(0), nil).Once()

		assert.ErrorIs(t, svc.Reject(ctx, "req-1", "superior1"), domain.ErrApprovalAlreadyResolved)
	})
}

func TestApprovalService_ExpireStale(t *testing.T) {
	ctx := context.Background()
	repo := new(MockApprovalRepo)
	svc := NewApprovalService(repo, 15*time.Minute)

	now := time.Now().UTC()
	repo.On("ExpirePending", ctx, now).Return(int64(3), nil).Once()

	n, err := svc.ExpireStale(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
