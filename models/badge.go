package models

import "time"

// Fixed names of the context badges. These catalog rows have a NULL
// RequiredStreak and are matched by name, not threshold.
const (
	BadgeWeekend = "Weekend Warrior"
	BadgeMorning = "Early Bird"
	BadgeEvening = "Night Owl"
)

// Badge is an immutable catalog row. RequiredStreak is set for streak-threshold
// badges and NULL for context badges (weekend / time-of-day).
type Badge struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description    string    `gorm:"size:255" json:"description"`
	Icon           string    `gorm:"size:64" json:"icon"`
	RequiredStreak *int      `json:"required_streak"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserBadge marks a badge as earned, exactly once per (user, badge).
type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;index;uniqueIndex:uidx_user_badges_user_badge" json:"user_id"`
	BadgeID  uint      `gorm:"not null;index;uniqueIndex:uidx_user_badges_user_badge" json:"badge_id"`
	EarnedAt time.Time `gorm:"not null" json:"earned_at"`
	Badge    Badge     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"badge"`
}
