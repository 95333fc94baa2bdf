package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/famlog/meddiary/models"
)

func auditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.AuditEvent{}))
	return db
}

func TestPruneAuditEvents(t *testing.T) {
	db := auditTestDB(t)

	old := models.AuditEvent{TraceID: "old", Method: "POST", Path: "/api/v1/entries", Status: 200,
		CreatedAt: time.Now().AddDate(0, 0, -100)}
	fresh := models.AuditEvent{TraceID: "fresh", Method: "POST", Path: "/api/v1/entries", Status: 200,
		CreatedAt: time.Now()}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&fresh).Error)

	pruned, err := PruneAuditEvents(db, 90)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)

	var remaining []models.AuditEvent
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].TraceID)
}

func TestPruneAuditEventsDisabledRetention(t *testing.T) {
	db := auditTestDB(t)

	require.NoError(t, db.Create(&models.AuditEvent{TraceID: "keep", Method: "DELETE",
		Path: "/api/v1/medications/1", Status: 200, CreatedAt: time.Now().AddDate(-1, 0, 0)}).Error)

	pruned, err := PruneAuditEvents(db, 0)
	require.NoError(t, err)
	assert.Zero(t, pruned)

	var count int64
	require.NoError(t, db.Model(&models.AuditEvent{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
