package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
	"github.com/famlog/meddiary/utils"
)

// RewardController exposes reward state and the badge catalog.
type RewardController struct {
	db *gorm.DB
}

// NewRewardController creates a new controller instance.
func NewRewardController(db *gorm.DB) *RewardController {
	return &RewardController{db: db}
}

// Status returns points, streak, earned badges and the next badge target for
// the actor or — for authorized callers — another family member.
func (r *RewardController) Status(ctx *gin.Context) {
	act, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	targetID := act.UserID
	if v := strings.TrimSpace(ctx.Query("user_id")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			targetID = uint(n)
		}
	}

	var user models.User
	if err := r.db.First(&user, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load user")
		return
	}
	if !act.mayTarget(&user) {
		utils.Error(ctx, http.StatusForbidden, 40304, "not allowed to view this user")
		return
	}

	var earned []models.UserBadge
	if err := r.db.Preload("Badge").Where("user_id = ?", user.ID).
		Order("earned_at ASC").Find(&earned).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load badges")
		return
	}

	badges := make([]gin.H, 0, len(earned))
	earnedIDs := make([]uint, 0, len(earned))
	for _, ub := range earned {
		earnedIDs = append(earnedIDs, ub.BadgeID)
		badges = append(badges, gin.H{
			"name":        ub.Badge.Name,
			"description": ub.Badge.Description,
			"icon":        ub.Badge.Icon,
			"earned_at":   ub.EarnedAt,
		})
	}

	// held badges never come back as the next target, even after a streak reset
	var next gin.H
	var candidate models.Badge
	nextQuery := r.db.Where("required_streak IS NOT NULL AND required_streak > ?", user.StreakCurrent)
	if len(earnedIDs) > 0 {
		nextQuery = nextQuery.Where("id NOT IN ?", earnedIDs)
	}
	err := nextQuery.Order("required_streak ASC").First(&candidate).Error
	if err == nil {
		next = gin.H{
			"name":            candidate.Name,
			"required_streak": *candidate.RequiredStreak,
			"days_left":       *candidate.RequiredStreak - user.StreakCurrent,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load badge catalog")
		return
	}

	utils.Success(ctx, gin.H{
		"points":          user.Points,
		"streak":          user.StreakCurrent,
		"last_entry_date": user.LastEntryDate,
		"badges":          badges,
		"next_badge":      next,
	})
}

// Badges returns the full badge catalog. The catalog is immutable at runtime,
// so responses are cached for an hour.
func (r *RewardController) Badges(ctx *gin.Context) {
	const cacheKey = "cache:badges:catalog"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var catalog []models.Badge
	if err := r.db.Order("required_streak IS NULL, required_streak ASC").Find(&catalog).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to load badge catalog")
		return
	}

	payload := gin.H{"items": catalog}
	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}
