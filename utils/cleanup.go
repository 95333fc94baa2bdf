package utils

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/famlog/meddiary/config"
	"github.com/famlog/meddiary/models"
)

// PruneAuditEvents deletes audit events older than the retention window and
// reports how many rows were removed. A non-positive window disables pruning.
func PruneAuditEvents(db *gorm.DB, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	res := db.Where("created_at < ?", cutoff).Delete(&models.AuditEvent{})
	return res.RowsAffected, res.Error
}

// StartAuditCleaner launches a background goroutine that periodically prunes
// the audit trail on the given handle. It is best-effort and logs failures.
func StartAuditCleaner(db *gorm.DB, interval time.Duration) {
	if db == nil {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			pruned, err := PruneAuditEvents(db, config.Get().AuditRetentionDays)
			if err != nil {
				log.Printf("audit cleaner delete failed: %v", err)
				continue
			}
			if pruned > 0 && Sugar != nil {
				Sugar.Infof("audit cleaner pruned %d expired events", pruned)
			}
		}
	}()
}
