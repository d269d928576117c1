package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"economy-core/internal/domain"
	"economy-core/internal/repository"

	"github.com/lib/pq"
)

type approvalRepository struct {
	db *sql.DB
}

func NewApprovalRepository(db *sql.DB) repository.ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, req *domain.ApprovalRequest) error {
	meta, err := json.Marshal(req.Metadata)
	if err != nil {
		return err
	}
	query := `INSERT INTO approval_requests
	          (id, guild_id, action_type, executor_id, target_id, details, metadata, status, expires_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING created_on`
	err = r.db.QueryRowContext(ctx, query,
		req.ID, req.GuildID, req.ActionType, req.ExecutorID, req.TargetID,
		req.Details, meta, req.Status, req.ExpiresOn,
	).Scan(&req.CreatedOn)
	// The partial unique index on (executor_id, target_id, action_type) for
	// pending rows enforces the one-outstanding-request rule at the storage
	// layer, not by convention.
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return domain.ErrDuplicateRequest
	}
	return err
}

func (r *approvalRepository) GetByID(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	query := `SELECT id, guild_id, action_type, executor_id, target_id, COALESCE(details, ''), metadata, status, resolved_by, created_on, expires_on, resolved_on
	          FROM approval_requests WHERE id = $1`
	var req domain.ApprovalRequest
	var meta []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.GuildID, &req.ActionType, &req.ExecutorID, &req.TargetID,
		&req.Details, &meta, &req.Status, &req.ResolvedBy, &req.CreatedOn,
		&req.ExpiresOn, &req.ResolvedOn,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &req.Metadata); err != nil {
			return nil, err
		}
	}
	return &req, nil
}

func (r *approvalRepository) FindPending(ctx context.Context, executorID, targetID string, action domain.ApprovalActionType) (*domain.ApprovalRequest, error) {
	query := `SELECT id FROM approval_requests
	          WHERE executor_id = $1 AND target_id = $2 AND action_type = $3 AND status = $4`
	var id string
	err := r.db.QueryRowContext(ctx, query, executorID, targetID, action, domain.ApprovalStatusPending).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *approvalRepository) Resolve(ctx context.Context, id string, status domain.ApprovalStatus, resolvedBy string, resolvedOn time.Time) (int64, error) {
	query := `UPDATE approval_requests SET status = $1, resolved_by = $2, resolved_on = $3
	          WHERE id = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, status, resolvedBy, resolvedOn, id, domain.ApprovalStatusPending)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *approvalRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE approval_requests SET status = $1, resolved_on = $2
	          WHERE status = $3 AND expires_on <= $2`
	res, err := r.db.ExecContext(ctx, query, domain.ApprovalStatusExpired, now, domain.ApprovalStatusPending)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
