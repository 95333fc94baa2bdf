package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
)

func newTestRecorder(db *gorm.DB) *EntryRecorder {
	return NewEntryRecorder(db, fixedClock{now: day(2024, time.March, 5)}, 10)
}

func TestRecordChildEndToEnd(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	seedBadges(t, db)
	recorder := newTestRecorder(db)

	result, err := recorder.Record(user.ID, EntryInput{
		Date:     "2024-03-05",
		TimeSlot: "morning",
		Sleep:    "4",
		Mood:     "3",
	})
	require.NoError(t, err)
	require.NotZero(t, result.EntryID)

	require.NotNil(t, result.Reward)
	assert.Equal(t, 10, result.Reward.PointsEarned)
	assert.Equal(t, 10, result.Reward.TotalPoints)
	assert.Equal(t, 1, result.Reward.Streak)
	assert.Equal(t, []string{models.BadgeMorning}, badgeNames(result.Reward.NewBadges))
	require.NotNil(t, result.Reward.NextBadge)
	assert.Equal(t, "First Steps", result.Reward.NextBadge.Name)
	assert.Equal(t, 2, result.Reward.NextBadge.DaysLeft)
}

func TestRecordAdultStoresEntryWithoutReward(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleAdult)
	seedBadges(t, db)
	recorder := newTestRecorder(db)

	result, err := recorder.Record(user.ID, EntryInput{
		Date:     "2024-03-05",
		TimeSlot: "evening",
		Mood:     "4",
	})
	require.NoError(t, err)
	require.NotZero(t, result.EntryID)
	assert.Nil(t, result.Reward)

	var count int64
	require.NoError(t, db.Model(&models.Entry{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordFutureDateLeavesNoTrace(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	seedBadges(t, db)
	recorder := newTestRecorder(db)

	_, err := recorder.Record(user.ID, EntryInput{Date: "2024-03-06", TimeSlot: "morning"})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeFutureDate, verr.Code)

	var entries int64
	require.NoError(t, db.Model(&models.Entry{}).Count(&entries).Error)
	assert.Zero(t, entries)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Zero(t, reloaded.Points)
}

func TestRecordThreeSlotsOneDay(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	seedBadges(t, db)
	recorder := newTestRecorder(db)

	var lastStreak int
	for _, slot := range []string{"morning", "noon", "evening"} {
		result, err := recorder.Record(user.ID, EntryInput{Date: "2024-03-05", TimeSlot: slot})
		require.NoError(t, err)
		require.NotNil(t, result.Reward)
		lastStreak = result.Reward.Streak
	}

	assert.Equal(t, 1, lastStreak, "three entries in one day are still one streak day")

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 30, reloaded.Points, "every slot earns its own points")
	assert.Equal(t, 1, reloaded.StreakCurrent)

	var count int64
	require.NoError(t, db.Model(&models.Entry{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestRecordOverwriteEarnsAgain(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	seedBadges(t, db)
	recorder := newTestRecorder(db)

	first, err := recorder.Record(user.ID, EntryInput{Date: "2024-03-05", TimeSlot: "noon", Mood: "2"})
	require.NoError(t, err)
	second, err := recorder.Record(user.ID, EntryInput{Date: "2024-03-05", TimeSlot: "noon", Mood: "4"})
	require.NoError(t, err)

	assert.Equal(t, first.EntryID, second.EntryID)
	require.NotNil(t, second.Reward)
	assert.Equal(t, 20, second.Reward.TotalPoints, "overwrites still earn points")
	assert.Equal(t, 1, second.Reward.Streak)
}

func TestRecordConsecutiveDaysGrowStreak(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	seedBadges(t, db)

	dates := []string{"2024-03-03", "2024-03-04", "2024-03-05"}
	var result *RecordResult
	for _, date := range dates {
		var err error
		result, err = newTestRecorder(db).Record(user.ID, EntryInput{Date: date, TimeSlot: "noon"})
		require.NoError(t, err)
		require.NotNil(t, result.Reward)
	}

	assert.Equal(t, 3, result.Reward.Streak)
	assert.Equal(t, []string{"First Steps"}, badgeNames(result.Reward.NewBadges))
}
