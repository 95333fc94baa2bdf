package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famlog/meddiary/models"
)

func badgeNames(badges []models.Badge) []string {
	names := make([]string, 0, len(badges))
	for _, b := range badges {
		names = append(names, b.Name)
	}
	return names
}

// weekday helper dates: 2024-03-05 is a Tuesday, 2024-03-02 a Saturday.

func newTestEvaluator() *BadgeEvaluator {
	return NewBadgeEvaluator(fixedClock{now: day(2024, time.March, 5)})
}

func TestEvaluateAwardsReachedThresholds(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	seedBadges(t, db)

	newBadges, next, err := newTestEvaluator().Evaluate(db, user.ID, 7, day(2024, time.March, 5), models.SlotNoon)
	require.NoError(t, err)

	names := badgeNames(newBadges)
	assert.Contains(t, names, "First Steps", "catching up awards every missed threshold")
	assert.Contains(t, names, "One Full Week")
	assert.NotContains(t, names, "Two Week Champion")

	require.NotNil(t, next)
	assert.Equal(t, "Two Week Champion", next.Name)
	assert.Equal(t, 14, next.RequiredStreak)
	assert.Equal(t, 7, next.DaysLeft)
}

func TestEvaluateNeverAwardsTwice(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	seedBadges(t, db)
	evaluator := newTestEvaluator()

	first, _, err := evaluator.Evaluate(db, user.ID, 3, day(2024, time.March, 5), models.SlotNoon)
	require.NoError(t, err)
	assert.Contains(t, badgeNames(first), "First Steps")

	second, _, err := evaluator.Evaluate(db, user.ID, 3, day(2024, time.March, 5), models.SlotNoon)
	require.NoError(t, err)
	assert.Empty(t, second)

	var count int64
	require.NoError(t, db.Model(&models.UserBadge{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEvaluateNextSkipsEarnedBadges(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	seedBadges(t, db)
	evaluator := newTestEvaluator()

	first, _, err := evaluator.Evaluate(db, user.ID, 3, day(2024, time.March, 5), models.SlotNoon)
	require.NoError(t, err)
	require.Contains(t, badgeNames(first), "First Steps")

	// after a streak reset the held badge must not come back as the target
	_, next, err := evaluator.Evaluate(db, user.ID, 1, day(2024, time.March, 6), models.SlotNoon)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "One Full Week", next.Name)
	assert.Equal(t, 7, next.RequiredStreak)
	assert.Equal(t, 6, next.DaysLeft)
}

func TestEvaluateStampsAwardsWithClock(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	seedBadges(t, db)

	_, _, err := newTestEvaluator().Evaluate(db, user.ID, 3, day(2024, time.March, 5), models.SlotNoon)
	require.NoError(t, err)

	var awards []models.UserBadge
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&awards).Error)
	require.NotEmpty(t, awards)
	for _, award := range awards {
		assert.True(t, sameDay(award.EarnedAt, day(2024, time.March, 5)))
	}
}

func TestEvaluateContextBadges(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	seedBadges(t, db)

	saturday := day(2024, time.March, 2)
	newBadges, _, err := newTestEvaluator().Evaluate(db, user.ID, 0, saturday, models.SlotEvening)
	require.NoError(t, err)

	names := badgeNames(newBadges)
	assert.Contains(t, names, models.BadgeWeekend)
	assert.Contains(t, names, models.BadgeEvening)
	assert.NotContains(t, names, models.BadgeMorning)
}

func TestEvaluateMorningWeekday(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	seedBadges(t, db)

	tuesday := day(2024, time.March, 5)
	newBadges, _, err := newTestEvaluator().Evaluate(db, user.ID, 0, tuesday, models.SlotMorning)
	require.NoError(t, err)

	names := badgeNames(newBadges)
	assert.Equal(t, []string{models.BadgeMorning}, names)
}

func TestEvaluateNoNextBeyondCatalog(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	seedBadges(t, db)

	_, next, err := newTestEvaluator().Evaluate(db, user.ID, 20, day(2024, time.March, 5), models.SlotNoon)
	require.NoError(t, err)
	assert.Nil(t, next, "no next badge once the highest threshold is passed")
}
