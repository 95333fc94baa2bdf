package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
	"github.com/famlog/meddiary/utils"
)

// StatsController provides family-level diary statistics.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// FamilyOverview returns per-member entry counts over the trailing week plus
// reward totals. Results are cached briefly per family.
func (s *StatsController) FamilyOverview(ctx *gin.Context) {
	act, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cacheKey := fmt.Sprintf("cache:stats:family:%d", act.FamilyID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var members []models.User
	if err := s.db.Where("family_id = ?", act.FamilyID).Order("id ASC").Find(&members).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load family members")
		return
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	totalPoints := 0
	items := make([]gin.H, 0, len(members))
	for _, m := range members {
		var entryCount int64
		if err := s.db.Model(&models.Entry{}).
			Where("user_id = ? AND date >= ?", m.ID, weekAgo).
			Count(&entryCount).Error; err != nil {
			entryCount = 0
		}
		totalPoints += m.Points
		items = append(items, gin.H{
			"user_id":        m.ID,
			"display_name":   m.DisplayName,
			"role":           m.Role,
			"points":         m.Points,
			"streak":         m.StreakCurrent,
			"entries_7_days": entryCount,
		})
	}

	payload := gin.H{
		"members":             items,
		"family_total_points": totalPoints,
	}
	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	utils.Success(ctx, payload)
}
