package models

import "time"

// GlossaryTerm explains diary and medication vocabulary to families. Read-only
// for clients; maintained by seed data and admin tooling.
type GlossaryTerm struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Term       string    `gorm:"size:128;uniqueIndex;not null" json:"term"`
	Definition string    `gorm:"type:text;not null" json:"definition"`
	Category   string    `gorm:"size:32" json:"category"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
