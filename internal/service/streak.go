package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"economy-core/internal/domain"
	"economy-core/internal/logger"
	"economy-core/internal/metrics"
	"economy-core/internal/repository"
)

// Progressive reward table keyed by exact consecutive-day count. Milestone
// days pay a fixed bonus; days in between use the band formulas below.
var baseRewards = map[int32]int64{
	1:  5000,
	2:  7500,
	3:  10000,
	4:  12500,
	5:  15000,
	6:  17500,
	7:  50000,
	14: 100000,
	21: 175000,
	30: 500000,
	60: 1000000,
	90: 2500000,
}

var milestones = []int32{7, 14, 21, 30, 60, 90}

type streakService struct {
	streakRepo  repository.StreakRepository
	orch        Orchestrator
	loc         *time.Location
	bonusChance float64
	randFloat   func() float64 // injectable for tests
}

func NewStreakService(streakRepo repository.StreakRepository, orch Orchestrator, timezone string, bonusChance float64) (StreakService, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid streak timezone %q: %w", timezone, err)
	}
	return &streakService{
		streakRepo:  streakRepo,
		orch:        orch,
		loc:         loc,
		bonusChance: bonusChance,
		randFloat:   rand.Float64,
	}, nil
}

func calculateReward(consecutiveDays int32) int64 {
	if reward, ok := baseRewards[consecutiveDays]; ok {
		return reward
	}
	d := int64(consecutiveDays)
	switch {
	case consecutiveDays > 90:
		return 100000 + d*2000
	case consecutiveDays > 30:
		return 50000 + d*1500
	case consecutiveDays > 14:
		return 25000 + d*1000
	case consecutiveDays > 7:
		return 20000
	default:
		return 5000 + d*2500
	}
}

func isMilestone(day int32) bool {
	for _, m := range milestones {
		if m == day {
			return true
		}
	}
	return false
}

func nextMilestone(currentDay int32) *NextMilestone {
	for _, m := range milestones {
		if currentDay < m {
			return &NextMilestone{Days: m, Reward: calculateReward(m), DaysLeft: m - currentDay}
		}
	}
	return nil
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Claim grants the daily reward. The credit goes through the orchestrator
// first; the streak record is only advanced after the money landed. A claim
// that loses the version race has its credit reversed, so the losing attempt
// leaves the balance untouched.
func (s *streakService) Claim(ctx context.Context, guildID, userID string, now time.Time) (*ClaimResult, error) {
	result, err := s.claim(ctx, guildID, userID, now)
	if errors.Is(err, domain.ErrVersionConflict) {
		// A concurrent claim advanced the record. Re-read: the second
		// attempt will normally be rejected as already claimed today.
		logger.Warn("streak version conflict, retrying", "user_id", userID)
		return s.claim(ctx, guildID, userID, now)
	}
	return result, err
}

func (s *streakService) claim(ctx context.Context, guildID, userID string, now time.Time) (*ClaimResult, error) {
	rec, err := s.streakRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading streak record: %w", err)
	}

	if rec.LastClaimDate != nil && sameDay(now, *rec.LastClaimDate, s.loc) {
		// Next eligible claim is the start of tomorrow in the reference zone.
		y, m, d := rec.LastClaimDate.In(s.loc).Date()
		next := time.Date(y, m, d, 0, 0, 0, 0, s.loc).AddDate(0, 0, 1)
		return nil, &AlreadyClaimedError{NextClaimAt: next}
	}

	consecutive := int32(1)
	if rec.LastClaimDate != nil && sameDay(*rec.LastClaimDate, now.AddDate(0, 0, -1), s.loc) {
		consecutive = rec.ConsecutiveDays + 1
	}

	baseReward := calculateReward(consecutive)
	isLucky := s.randFloat() < s.bonusChance
	var luckyBonus int64
	if isLucky {
		// Lucky bonus is 50-200% of the base reward.
		multiplier := 0.5 + s.randFloat()*1.5
		luckyBonus = int64(float64(baseReward) * multiplier)
	}
	totalReward := baseReward + luckyBonus

	credit, err := s.orch.Credit(ctx, MoneyOp{
		GuildID:     guildID,
		UserID:      userID,
		Amount:      totalReward,
		Bucket:      domain.BucketCash,
		Type:        domain.TransactionTypeDailyReward,
		Reason:      fmt.Sprintf("daily reward, day %d", consecutive),
		ActorID:     userID,
		CanRollback: false,
	})
	if err != nil {
		return nil, fmt.Errorf("crediting daily reward: %w", err)
	}

	expectedVersion := rec.Version
	claimTime := now
	rec.ConsecutiveDays = consecutive
	rec.TotalClaims++
	rec.TotalEarned += totalReward
	if consecutive > rec.BestStreak {
		rec.BestStreak = consecutive
	}
	rec.LastClaimDate = &claimTime
	rec.LastBonusAmount = totalReward
	if err := s.streakRepo.Update(ctx, rec, expectedVersion); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			// A concurrent claim won the race; take the credit back so this
			// attempt leaves the balance untouched.
			if _, derr := s.orch.Debit(ctx, MoneyOp{
				GuildID:     guildID,
				UserID:      userID,
				Amount:      totalReward,
				Bucket:      domain.BucketCash,
				Type:        domain.TransactionTypeCompensation,
				Reason:      fmt.Sprintf("daily reward reversal, day %d", consecutive),
				ActorID:     userID,
				CanRollback: false,
			}); derr != nil {
				logger.Error("daily reward reversal failed", "user_id", userID, "amount", totalReward, "error", derr)
			}
		}
		return nil, err
	}

	claim := &domain.StreakClaim{
		UserID:         userID,
		ConsecutiveDay: consecutive,
		BaseReward:     baseReward,
		BonusReward:    luckyBonus,
		TotalReward:    totalReward,
		WasLuckyBonus:  isLucky,
	}
	if err := s.streakRepo.CreateClaim(ctx, claim); err != nil {
		logger.Error("failed to record streak claim row", "user_id", userID, "error", err)
	}

	metrics.DailyClaims.Inc()
	if isLucky {
		metrics.LuckyBonuses.Inc()
	}
	logger.Info("daily reward claimed", "user_id", userID, "day", consecutive, "reward", totalReward, "lucky", isLucky)

	return &ClaimResult{
		ConsecutiveDays: consecutive,
		BaseReward:      baseReward,
		LuckyBonus:      luckyBonus,
		TotalReward:     totalReward,
		IsLucky:         isLucky,
		IsMilestone:     isMilestone(consecutive),
		NextMilestone:   nextMilestone(consecutive),
		BestStreak:      rec.BestStreak,
		Balance:         credit.Balance,
	}, nil
}
