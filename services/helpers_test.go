package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/famlog/meddiary/models"
)

// fixedClock pins "now" so future-date checks and streak math are deterministic.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Family{}, &models.User{},
		&models.Medication{}, &models.Tag{},
		&models.Entry{}, &models.EntryTag{},
		&models.Badge{}, &models.UserBadge{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	family := models.Family{Name: "testers", InviteCode: "TEST" + role[:2]}
	require.NoError(t, db.Create(&family).Error)

	user := models.User{
		FamilyID:     family.ID,
		Username:     role + "-user",
		DisplayName:  role,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedBadges(t *testing.T, db *gorm.DB) {
	t.Helper()

	streaks := []struct {
		name     string
		required int
	}{
		{"First Steps", 3},
		{"One Full Week", 7},
		{"Two Week Champion", 14},
	}
	for _, s := range streaks {
		required := s.required
		require.NoError(t, db.Create(&models.Badge{Name: s.name, RequiredStreak: &required}).Error)
	}
	for _, name := range []string{models.BadgeWeekend, models.BadgeMorning, models.BadgeEvening} {
		require.NoError(t, db.Create(&models.Badge{Name: name}).Error)
	}
}
