package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"economy-core/internal/domain"
	"economy-core/internal/logger"
	"economy-core/internal/metrics"
	"economy-core/internal/repository"

	"github.com/google/uuid"
)

type approvalService struct {
	repo   repository.ApprovalRepository
	window time.Duration

	mu        sync.RWMutex
	executors map[domain.ApprovalActionType]ReplayFunc
}

func NewApprovalService(repo repository.ApprovalRepository, window time.Duration) ApprovalService {
	return &approvalService{
		repo:      repo,
		window:    window,
		executors: make(map[domain.ApprovalActionType]ReplayFunc),
	}
}

func (s *approvalService) Intercept(executorID, targetID string, exempt bool) bool {
	return executorID != targetID || exempt
}

// RegisterExecutor binds the function that replays a suspended action once a
// superior approves it.
func (s *approvalService) RegisterExecutor(action domain.ApprovalActionType, fn ReplayFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executors[action] = fn
}

func (s *approvalService) RequestApproval(ctx context.Context, p ApprovalParams) (*domain.ApprovalRequest, error) {
	existing, err := s.repo.FindPending(ctx, p.ExecutorID, p.TargetID, p.ActionType)
	if err != nil {
		return nil, fmt.Errorf("checking outstanding requests: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateRequest
	}

	now := time.Now().UTC()
	req := &domain.ApprovalRequest{
		ID:         uuid.NewString(),
		GuildID:    p.GuildID,
		ActionType: p.ActionType,
		ExecutorID: p.ExecutorID,
		TargetID:   p.TargetID,
		Details:    p.Details,
		Metadata:   p.Metadata,
		Status:     domain.ApprovalStatusPending,
		ExpiresOn:  now.Add(s.window),
	}
	// Create may still race with a concurrent duplicate; the partial unique
	// index turns that into ErrDuplicateRequest.
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	metrics.ApprovalRequests.WithLabelValues(string(domain.ApprovalStatusPending)).Inc()
	logger.Info("self-action suspended pending approval",
		"request_id", req.ID, "action", req.ActionType, "executor_id", req.ExecutorID)
	return req, nil
}

// Approve resolves a pending request and replays the original action. Two
// reviewers racing on the same request: the conditional update decides, the
// loser gets ErrApprovalAlreadyResolved.
func (s *approvalService) Approve(ctx context.Context, id, reviewerID string) error {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req == nil {
		return fmt.Errorf("approval request %s not found", id)
	}

	now := time.Now().UTC()
	if req.Status != domain.ApprovalStatusPending {
		return domain.ErrApprovalAlreadyResolved
	}
	if req.Expired(now) {
		// A late approval never executes the action, even if the expiry
		// sweep has not run yet.
		if _, err := s.repo.Resolve(ctx, id, domain.ApprovalStatusExpired, "", now); err != nil {
			return err
		}
		metrics.ApprovalRequests.WithLabelValues(string(domain.ApprovalStatusExpired)).Inc()
		return domain.ErrApprovalExpired
	}

	affected, err := s.repo.Resolve(ctx, id, domain.ApprovalStatusApproved, reviewerID, now)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrApprovalAlreadyResolved
	}
	metrics.ApprovalRequests.WithLabelValues(string(domain.ApprovalStatusApproved)).Inc()

	s.mu.RLock()
	fn, ok := s.executors[req.ActionType]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no executor registered for action %s", req.ActionType)
	}
	logger.Info("replaying approved self-action", "request_id", id, "action", req.ActionType, "reviewer_id", reviewerID)
	return fn(ctx, req)
}

func (s *approvalService) Reject(ctx context.Context, id, reviewerID string) error {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req == nil {
		return fmt.Errorf("approval request %s not found", id)
	}
	if req.Status != domain.ApprovalStatusPending {
		return domain.ErrApprovalAlreadyResolved
	}

	affected, err := s.repo.Resolve(ctx, id, domain.ApprovalStatusRejected, reviewerID, time.Now().UTC())
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrApprovalAlreadyResolved
	}
	metrics.ApprovalRequests.WithLabelValues(string(domain.ApprovalStatusRejected)).Inc()
	logger.Info("self-action rejected", "request_id", id, "reviewer_id", reviewerID)
	return nil
}

// ExpireStale marks every pending request past its window. Run from the
// scheduler.
func (s *approvalService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.ExpirePending(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.ApprovalRequests.WithLabelValues(string(domain.ApprovalStatusExpired)).Add(float64(n))
		logger.Info("expired stale approval requests", "count", n)
	}
	return n, nil
}
