package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
)

func newTestLedger() *RewardLedger {
	return NewRewardLedger(fixedClock{now: day(2024, time.March, 5)}, 10)
}

func setRewardState(t *testing.T, db *gorm.DB, userID uint, points, streak int, last *time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"points":          points,
		"streak_current":  streak,
		"last_entry_date": last,
	}).Error)
}

func TestLedgerFirstEntry(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	ledger := newTestLedger()

	update, err := ledger.Apply(db, user.ID, day(2024, time.March, 5))
	require.NoError(t, err)
	require.NotNil(t, update)
	assert.Equal(t, 10, update.PointsEarned)
	assert.Equal(t, 10, update.TotalPoints)
	assert.Equal(t, 1, update.Streak)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 10, reloaded.Points)
	assert.Equal(t, 1, reloaded.StreakCurrent)
	require.NotNil(t, reloaded.LastEntryDate)
	assert.True(t, sameDay(*reloaded.LastEntryDate, day(2024, time.March, 5)))
}

func TestLedgerSameDayKeepsStreak(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	last := day(2024, time.March, 5)
	setRewardState(t, db, user.ID, 30, 3, &last)

	update, err := newTestLedger().Apply(db, user.ID, day(2024, time.March, 5))
	require.NoError(t, err)
	require.NotNil(t, update)
	assert.Equal(t, 3, update.Streak, "another entry on the same day never grows the streak")
	assert.Equal(t, 40, update.TotalPoints, "but it still earns points")
}

func TestLedgerConsecutiveDayIncrements(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	last := day(2024, time.March, 4)
	setRewardState(t, db, user.ID, 30, 3, &last)

	update, err := newTestLedger().Apply(db, user.ID, day(2024, time.March, 5))
	require.NoError(t, err)
	require.NotNil(t, update)
	assert.Equal(t, 4, update.Streak)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.NotNil(t, reloaded.LastEntryDate)
	assert.True(t, sameDay(*reloaded.LastEntryDate, day(2024, time.March, 5)))
}

func TestLedgerGapResets(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	last := day(2024, time.March, 1)
	setRewardState(t, db, user.ID, 70, 7, &last)

	update, err := newTestLedger().Apply(db, user.ID, day(2024, time.March, 5))
	require.NoError(t, err)
	require.NotNil(t, update)
	assert.Equal(t, 1, update.Streak)
	assert.Equal(t, 80, update.TotalPoints, "points survive the streak reset")
}

func TestLedgerSkipsNonChildRoles(t *testing.T) {
	db := testDB(t)
	for _, role := range []string{models.RoleParent, models.RoleAdult, models.RoleTeacher} {
		t.Run(role, func(t *testing.T) {
			user := seedUser(t, db, role)
			update, err := newTestLedger().Apply(db, user.ID, day(2024, time.March, 5))
			require.NoError(t, err)
			assert.Nil(t, update)

			var reloaded models.User
			require.NoError(t, db.First(&reloaded, user.ID).Error)
			assert.Zero(t, reloaded.Points)
			assert.Zero(t, reloaded.StreakCurrent)
			assert.Nil(t, reloaded.LastEntryDate)
		})
	}
}
