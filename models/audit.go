package models

import "time"

// AuditEvent records one mutating API request for traceability. Rows are
// append-only and pruned by the retention cleaner.
type AuditEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TraceID   string    `gorm:"size:36;index;not null" json:"trace_id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Method    string    `gorm:"size:8;not null" json:"method"`
	Path      string    `gorm:"size:255;not null" json:"path"`
	Status    int       `gorm:"not null" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
