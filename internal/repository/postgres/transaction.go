package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"economy-core/internal/domain"
	"economy-core/internal/repository"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.TransactionRecord) error {
	query := `INSERT INTO transaction_records
	          (guild_id, user_id, type, amount, bucket, reason, previous_balance, new_balance, status, run_id, created_by, can_rollback)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query,
		tx.GuildID, tx.UserID, tx.Type, tx.Amount, tx.Bucket, tx.Reason,
		tx.PreviousBalance, tx.NewBalance, tx.Status, tx.RunID, tx.CreatedBy, tx.CanRollback,
	).Scan(&tx.ID, &tx.CreatedOn)
}

func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*domain.TransactionRecord, error) {
	query := `SELECT id, guild_id, user_id, type, amount, bucket, COALESCE(reason, ''), previous_balance, new_balance, status, run_id, created_by, created_on, can_rollback, rolled_back
	          FROM transaction_records WHERE id = $1`
	var tx domain.TransactionRecord
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tx.ID, &tx.GuildID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Bucket, &tx.Reason,
		&tx.PreviousBalance, &tx.NewBalance, &tx.Status, &tx.RunID, &tx.CreatedBy,
		&tx.CreatedOn, &tx.CanRollback, &tx.RolledBack,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %d: %w", id, sql.ErrNoRows)
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.TransactionRecord, error) {
	query := `SELECT id, guild_id, user_id, type, amount, bucket, COALESCE(reason, ''), previous_balance, new_balance, status, run_id, created_by, created_on, can_rollback, rolled_back
	          FROM transaction_records WHERE 1=1`
	args := []any{}
	query, args = applyFilter(query, args, filter)
	query += " ORDER BY created_on DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.TransactionRecord
	for rows.Next() {
		var tx domain.TransactionRecord
		if err := rows.Scan(
			&tx.ID, &tx.GuildID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Bucket, &tx.Reason,
			&tx.PreviousBalance, &tx.NewBalance, &tx.Status, &tx.RunID, &tx.CreatedBy,
			&tx.CreatedOn, &tx.CanRollback, &tx.RolledBack,
		); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *transactionRepository) SumAmounts(ctx context.Context, filter domain.TransactionFilter) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transaction_records WHERE 1=1`
	args := []any{}
	query, args = applyFilter(query, args, filter)

	var sum int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&sum)
	return sum, err
}

func applyFilter(query string, args []any, filter domain.TransactionFilter) (string, []any) {
	if filter.GuildID != "" {
		args = append(args, filter.GuildID)
		query += fmt.Sprintf(" AND guild_id = $%d", len(args))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.RunID != "" {
		args = append(args, filter.RunID)
		query += fmt.Sprintf(" AND run_id = $%d", len(args))
	}
	if filter.CanRollback != nil {
		args = append(args, *filter.CanRollback)
		query += fmt.Sprintf(" AND can_rollback = $%d AND rolled_back = false", len(args))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		query += fmt.Sprintf(" AND created_on >= $%d", len(args))
	}
	return query, args
}

func (r *transactionRepository) MarkRolledBack(ctx context.Context, id int64) error {
	query := `UPDATE transaction_records SET rolled_back = true WHERE id = $1 AND rolled_back = false`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrRollbackNotAllowed
	}
	return nil
}

func (r *transactionRepository) ListUnconfirmed(ctx context.Context, olderThan time.Time) ([]domain.TransactionRecord, error) {
	query := `SELECT id, guild_id, user_id, type, amount, bucket, COALESCE(reason, ''), previous_balance, new_balance, status, run_id, created_by, created_on, can_rollback, rolled_back
	          FROM transaction_records WHERE status = $1 AND created_on < $2 ORDER BY created_on ASC`
	rows, err := r.db.QueryContext(ctx, query, domain.TransactionStatusUnconfirmed, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.TransactionRecord
	for rows.Next() {
		var tx domain.TransactionRecord
		if err := rows.Scan(
			&tx.ID, &tx.GuildID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Bucket, &tx.Reason,
			&tx.PreviousBalance, &tx.NewBalance, &tx.Status, &tx.RunID, &tx.CreatedBy,
			&tx.CreatedOn, &tx.CanRollback, &tx.RolledBack,
		); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *transactionRepository) MarkConfirmed(ctx context.Context, id int64) error {
	query := `UPDATE transaction_records SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, domain.TransactionStatusConfirmed, id)
	return err
}
