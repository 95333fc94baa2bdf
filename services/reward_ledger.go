package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
)

// RewardUpdate is the ledger outcome for one stored entry.
type RewardUpdate struct {
	PointsEarned int
	TotalPoints  int
	Streak       int
}

// RewardLedger maintains a user's cumulative points, current streak and last
// entry date. Only child accounts are rewarded; every other role is a no-op.
type RewardLedger struct {
	clock  Clock
	points int
}

// NewRewardLedger creates a ledger awarding pointsPerEntry per stored entry.
func NewRewardLedger(clock Clock, pointsPerEntry int) *RewardLedger {
	if clock == nil {
		clock = SystemClock()
	}
	return &RewardLedger{clock: clock, points: pointsPerEntry}
}

// Apply updates the reward state of the entry owner inside the caller's
// transaction and returns the new totals, or nil for non-rewarded roles.
//
// The "already logged today" branch compares the last entry date against the
// server's today, while the increment/reset decision compares it against the
// entry's own date. Backdated entries therefore reach the ledger with the
// entry date, not the submission date.
func (l *RewardLedger) Apply(tx *gorm.DB, userID uint, entryDate time.Time) (*RewardUpdate, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return nil, err
	}
	if !user.IsRewarded() {
		return nil, nil
	}

	today := l.clock.Now()
	last := user.LastEntryDate

	// points increase by a fixed amount for every stored entry; the atomic
	// increment keeps concurrent same-user requests from losing one
	updates := map[string]interface{}{
		"points": gorm.Expr("points + ?", l.points),
	}

	newStreak := 1
	switch {
	case last != nil && sameDay(*last, today):
		newStreak = user.StreakCurrent
	case last != nil && sameDay(*last, entryDate.AddDate(0, 0, -1)):
		newStreak = user.StreakCurrent + 1
		updates["streak_current"] = newStreak
		updates["last_entry_date"] = DateOnly(entryDate)
	default:
		updates["streak_current"] = newStreak
		updates["last_entry_date"] = DateOnly(entryDate)
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return nil, err
	}

	var total int
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Select("points").Scan(&total).Error; err != nil {
		return nil, err
	}

	return &RewardUpdate{PointsEarned: l.points, TotalPoints: total, Streak: newStreak}, nil
}
