package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famlog/meddiary/models"
)

func TestStatusNextBadgeSkipsEarned(t *testing.T) {
	db := testDB(t)
	user := seedFamilyUser(t, db, models.RoleChild)

	three, seven := 3, 7
	firstSteps := models.Badge{Name: "First Steps", RequiredStreak: &three}
	fullWeek := models.Badge{Name: "One Full Week", RequiredStreak: &seven}
	require.NoError(t, db.Create(&firstSteps).Error)
	require.NoError(t, db.Create(&fullWeek).Error)

	// streak reset back to 1 after "First Steps" was earned
	require.NoError(t, db.Create(&models.UserBadge{
		UserID: user.ID, BadgeID: firstSteps.ID, EarnedAt: time.Now(),
	}).Error)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("streak_current", 1).Error)

	ctx, rec := authedContext(t, user, http.MethodGet, "/api/v1/rewards/status")
	NewRewardController(db).Status(ctx)
	requireStatus(t, rec, http.StatusOK)

	var envelope struct {
		Code int `json:"code"`
		Data struct {
			Streak    int `json:"streak"`
			NextBadge struct {
				Name           string `json:"name"`
				RequiredStreak int    `json:"required_streak"`
				DaysLeft       int    `json:"days_left"`
			} `json:"next_badge"`
			Badges []struct {
				Name string `json:"name"`
			} `json:"badges"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	assert.Zero(t, envelope.Code)
	assert.Equal(t, 1, envelope.Data.Streak)
	require.Len(t, envelope.Data.Badges, 1)
	assert.Equal(t, "First Steps", envelope.Data.Badges[0].Name)

	assert.Equal(t, "One Full Week", envelope.Data.NextBadge.Name, "held badges are not a target")
	assert.Equal(t, 7, envelope.Data.NextBadge.RequiredStreak)
	assert.Equal(t, 6, envelope.Data.NextBadge.DaysLeft)
}
