package models

import "time"

// Medication is a family-scoped catalog item entries may reference.
type Medication struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FamilyID  uint      `gorm:"index;not null" json:"family_id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Strength  string    `gorm:"size:64" json:"strength"`
	Unit      string    `gorm:"size:32" json:"unit"`
	Notes     string    `gorm:"type:text" json:"notes"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
