package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles a family member account can hold. Only child accounts take part in the
// reward system.
const (
	RoleParent  = "parent"
	RoleAdult   = "adult"
	RoleChild   = "child"
	RoleTeacher = "teacher"
)

// User represents a family member account. Passwords are stored as bcrypt hashes only.
// Points, StreakCurrent and LastEntryDate are written exclusively by the reward ledger.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	FamilyID      uint           `gorm:"index;not null" json:"family_id"`
	Username      string         `gorm:"size:64;not null" json:"username"`
	DisplayName   string         `gorm:"size:64" json:"display_name"`
	Email         string         `gorm:"size:255" json:"email"`
	PasswordHash  string         `gorm:"size:255" json:"-"`
	Role          string         `gorm:"size:16;not null;default:'parent'" json:"role"`
	Points        int            `gorm:"default:0" json:"points"`
	StreakCurrent int            `gorm:"default:0" json:"streak_current"`
	LastEntryDate *time.Time     `gorm:"type:date" json:"last_entry_date"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Entries       []Entry        `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// IsRewarded reports whether entries by this user feed the points/streak/badge system.
func (u *User) IsRewarded() bool {
	return u.Role == RoleChild
}

// Family groups accounts that may see and record for each other. The invite code
// is handed out by the owning parent when provisioning additional devices.
type Family struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	InviteCode string    `gorm:"size:12;uniqueIndex;not null" json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Members    []User    `json:"-"`
}
