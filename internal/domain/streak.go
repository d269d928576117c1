package domain

import "time"

// StreakRecord tracks a user's consecutive daily claims. BestStreak is a
// monotonic high-water mark; ConsecutiveDays resets to 1 whenever the gap
// since the last claim is not exactly one calendar day.
type StreakRecord struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"user_id"`
	ConsecutiveDays int32      `json:"consecutive_days"`
	TotalClaims     int32      `json:"total_claims"`
	TotalEarned     int64      `json:"total_earned"`
	BestStreak      int32      `json:"best_streak"`
	LastClaimDate   *time.Time `json:"last_claim_date,omitempty"`
	LastBonusAmount int64      `json:"last_bonus_amount"`
	Version         int64      `json:"version"`
}

// StreakClaim is the per-claim history row, kept for auditability of the
// lucky-bonus draw.
type StreakClaim struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"user_id"`
	ConsecutiveDay int32     `json:"consecutive_day"`
	BaseReward     int64     `json:"base_reward"`
	BonusReward    int64     `json:"bonus_reward"`
	TotalReward    int64     `json:"total_reward"`
	WasLuckyBonus  bool      `json:"was_lucky_bonus"`
	CreatedOn      time.Time `json:"created_on"`
}
