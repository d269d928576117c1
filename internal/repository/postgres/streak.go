package postgres

import (
	"context"
	"database/sql"

	"economy-core/internal/domain"
	"economy-core/internal/repository"
)

type streakRepository struct {
	db *sql.DB
}

func NewStreakRepository(db *sql.DB) repository.StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) GetOrCreate(ctx context.Context, userID string) (*domain.StreakRecord, error) {
	query := `SELECT id, user_id, consecutive_days, total_claims, total_earned, best_streak, last_claim_date, last_bonus_amount, version
	          FROM daily_rewards WHERE user_id = $1`
	var rec domain.StreakRecord
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&rec.ID, &rec.UserID, &rec.ConsecutiveDays, &rec.TotalClaims, &rec.TotalEarned,
		&rec.BestStreak, &rec.LastClaimDate, &rec.LastBonusAmount, &rec.Version,
	)
	if err == sql.ErrNoRows {
		insert := `INSERT INTO daily_rewards (user_id) VALUES ($1) RETURNING id, version`
		rec = domain.StreakRecord{UserID: userID}
		if err := r.db.QueryRowContext(ctx, insert, userID).Scan(&rec.ID, &rec.Version); err != nil {
			return nil, err
		}
		return &rec, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *streakRepository) Update(ctx context.Context, rec *domain.StreakRecord, expectedVersion int64) error {
	query := `UPDATE daily_rewards
	          SET consecutive_days = $1, total_claims = $2, total_earned = $3, best_streak = $4, last_claim_date = $5, last_bonus_amount = $6, version = version + 1
	          WHERE user_id = $7 AND version = $8`
	res, err := r.db.ExecContext(ctx, query,
		rec.ConsecutiveDays, rec.TotalClaims, rec.TotalEarned, rec.BestStreak,
		rec.LastClaimDate, rec.LastBonusAmount, rec.UserID, expectedVersion,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrVersionConflict
	}
	rec.Version = expectedVersion + 1
	return nil
}

func (r *streakRepository) CreateClaim(ctx context.Context, claim *domain.StreakClaim) error {
	query := `INSERT INTO daily_reward_claims (user_id, consecutive_day, base_reward, bonus_reward, total_reward, was_lucky_bonus)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query,
		claim.UserID, claim.ConsecutiveDay, claim.BaseReward, claim.BonusReward,
		claim.TotalReward, claim.WasLuckyBonus,
	).Scan(&claim.ID, &claim.CreatedOn)
}
