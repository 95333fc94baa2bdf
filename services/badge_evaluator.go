package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
)

// NextBadge describes the closest streak badge the user has not reached yet.
type NextBadge struct {
	Name           string `json:"name"`
	RequiredStreak int    `json:"required_streak"`
	DaysLeft       int    `json:"days_left"`
}

// BadgeEvaluator awards catalog badges a user newly qualifies for.
type BadgeEvaluator struct {
	clock Clock
}

// NewBadgeEvaluator creates an evaluator stamping awards with the given clock.
func NewBadgeEvaluator(clock Clock) *BadgeEvaluator {
	if clock == nil {
		clock = SystemClock()
	}
	return &BadgeEvaluator{clock: clock}
}

// Evaluate awards every unearned streak badge with required_streak <= newStreak
// plus the context badges matching the entry's date and slot, each inserted at
// most once. It also reports the closest streak badge the user does not hold
// yet; badges already earned never come back as the next target, even after a
// streak reset drops the user below their threshold.
// Idempotency comes from the held-badge check, not from the unique index, so a
// call qualifying for streak and context badges at once never double-inserts.
func (e *BadgeEvaluator) Evaluate(tx *gorm.DB, userID uint, newStreak int, entryDate time.Time, slot string) ([]models.Badge, *NextBadge, error) {
	var earnedIDs []uint
	if err := tx.Model(&models.UserBadge{}).Where("user_id = ?", userID).
		Pluck("badge_id", &earnedIDs).Error; err != nil {
		return nil, nil, err
	}
	held := make(map[uint]bool, len(earnedIDs))
	for _, id := range earnedIDs {
		held[id] = true
	}

	var catalog []models.Badge
	if err := tx.Order("id ASC").Find(&catalog).Error; err != nil {
		return nil, nil, err
	}

	now := e.clock.Now()
	var newBadges []models.Badge
	for _, b := range catalog {
		if held[b.ID] || !qualifies(b, newStreak, entryDate, slot) {
			continue
		}
		award := models.UserBadge{UserID: userID, BadgeID: b.ID, EarnedAt: now}
		if err := tx.Create(&award).Error; err != nil {
			return nil, nil, err
		}
		held[b.ID] = true
		newBadges = append(newBadges, b)
	}

	var next *NextBadge
	for _, b := range catalog {
		if held[b.ID] || b.RequiredStreak == nil || *b.RequiredStreak <= newStreak {
			continue
		}
		if next == nil || *b.RequiredStreak < next.RequiredStreak {
			next = &NextBadge{
				Name:           b.Name,
				RequiredStreak: *b.RequiredStreak,
				DaysLeft:       *b.RequiredStreak - newStreak,
			}
		}
	}

	return newBadges, next, nil
}

func qualifies(b models.Badge, newStreak int, entryDate time.Time, slot string) bool {
	if b.RequiredStreak != nil {
		return *b.RequiredStreak <= newStreak
	}
	switch b.Name {
	case models.BadgeWeekend:
		wd := entryDate.Weekday()
		return wd == time.Saturday || wd == time.Sunday
	case models.BadgeMorning:
		return slot == models.SlotMorning
	case models.BadgeEvening:
		return slot == models.SlotEvening
	}
	return false
}
