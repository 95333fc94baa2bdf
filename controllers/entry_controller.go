package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famlog/meddiary/config"
	"github.com/famlog/meddiary/models"
	"github.com/famlog/meddiary/services"
	"github.com/famlog/meddiary/utils"
)

// EntryController handles diary entry recording and retrieval.
type EntryController struct {
	db       *gorm.DB
	recorder *services.EntryRecorder
}

// NewEntryController creates a new controller instance.
func NewEntryController(db *gorm.DB) *EntryController {
	cfg := config.Get()
	return &EntryController{
		db:       db,
		recorder: services.NewEntryRecorder(db, services.SystemClock(), cfg.EntryRewardPoints),
	}
}

// flexValue accepts a JSON string, number or null and keeps the raw text so
// the normalizer sees numeric and quoted inputs identically. Clients send
// ratings both ways ({"sleep": 4} and {"sleep": "4"}).
type flexValue string

func (f *flexValue) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*f = ""
		return nil
	}
	if s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(b, &unquoted); err != nil {
			return err
		}
		*f = flexValue(unquoted)
		return nil
	}
	*f = flexValue(s)
	return nil
}

type recordEntryRequest struct {
	TargetUserID       uint      `json:"target_user_id"`
	Date               string    `json:"date" binding:"required"`
	Time               string    `json:"time" binding:"required"`
	MedicationID       flexValue `json:"medication_id"`
	Dose               flexValue `json:"dose"`
	Sleep              flexValue `json:"sleep"`
	Hyperactivity      flexValue `json:"hyperactivity"`
	Mood               flexValue `json:"mood"`
	Irritability       flexValue `json:"irritability"`
	Appetite           flexValue `json:"appetite"`
	Focus              flexValue `json:"focus"`
	Weight             flexValue `json:"weight"`
	OtherEffects       string    `json:"other_effects"`
	SideEffects        string    `json:"side_effects"`
	SpecialEvents      string    `json:"special_events"`
	MenstruationPhase  string    `json:"menstruation_phase"`
	TeacherFeedback    string    `json:"teacher_feedback"`
	EmotionalReactions string    `json:"emotional_reactions"`
	Tags               []int64   `json:"tags"`
}

// RecordEntry validates and stores one entry for a day and time slot, then
// returns the gamification outcome when the target user is a child.
func (e *EntryController) RecordEntry(ctx *gin.Context) {
	act, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req recordEntryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	target, ok := e.resolveTarget(ctx, act, req.TargetUserID)
	if !ok {
		return
	}

	result, err := e.recorder.Record(target.ID, services.EntryInput{
		Date:               req.Date,
		TimeSlot:           req.Time,
		MedicationID:       string(req.MedicationID),
		Dose:               string(req.Dose),
		Sleep:              string(req.Sleep),
		Hyperactivity:      string(req.Hyperactivity),
		Mood:               string(req.Mood),
		Irritability:       string(req.Irritability),
		Appetite:           string(req.Appetite),
		Focus:              string(req.Focus),
		Weight:             string(req.Weight),
		OtherEffects:       utils.SanitizeText(req.OtherEffects),
		SideEffects:        utils.SanitizeText(req.SideEffects),
		SpecialEvents:      utils.SanitizeText(req.SpecialEvents),
		MenstruationPhase:  utils.SanitizeText(req.MenstruationPhase),
		TeacherFeedback:    utils.SanitizeText(req.TeacherFeedback),
		EmotionalReactions: utils.SanitizeText(req.EmotionalReactions),
		TagIDs:             req.Tags,
	})
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			utils.Error(ctx, http.StatusBadRequest, 40002, validationMessage(verr))
		case errors.Is(err, services.ErrDuplicateEntry):
			utils.Error(ctx, http.StatusConflict, 40901, "an entry for this day and time slot was just saved")
		default:
			utils.Sugar.Errorf("record entry failed for user %d: %v", target.ID, err)
			utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to save entry")
		}
		return
	}

	payload := gin.H{"entry_id": result.EntryID}
	if result.Reward != nil {
		newBadges := make([]gin.H, 0, len(result.Reward.NewBadges))
		for _, b := range result.Reward.NewBadges {
			newBadges = append(newBadges, gin.H{
				"name":        b.Name,
				"description": b.Description,
				"icon":        b.Icon,
			})
		}
		payload["gamification"] = gin.H{
			"points_earned": result.Reward.PointsEarned,
			"total_points":  result.Reward.TotalPoints,
			"streak":        result.Reward.Streak,
			"new_badges":    newBadges,
			"next_badge":    result.Reward.NextBadge,
		}
	}
	utils.Success(ctx, payload)
}

// ListEntries returns entries of the target user, newest first, with optional
// date range and slot filters.
func (e *EntryController) ListEntries(ctx *gin.Context) {
	act, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	targetID := uint(0)
	if v := strings.TrimSpace(ctx.Query("user_id")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			targetID = uint(n)
		}
	}
	target, ok := e.resolveTarget(ctx, act, targetID)
	if !ok {
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := e.db.Model(&models.Entry{}).Where("user_id = ?", target.ID)
	if from := strings.TrimSpace(ctx.Query("from")); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := strings.TrimSpace(ctx.Query("to")); to != "" {
		query = query.Where("date <= ?", to)
	}
	if slot := strings.TrimSpace(ctx.Query("slot")); slot != "" {
		query = query.Where("time_slot = ?", slot)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to count entries")
		return
	}

	var entries []models.Entry
	if err := query.Preload("Tags").Preload("Medication").
		Order("date DESC, time_slot ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to list entries")
		return
	}

	utils.Success(ctx, gin.H{
		"items": entries,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// GetEntry returns a single entry when the actor may see its owner's diary.
func (e *EntryController) GetEntry(ctx *gin.Context) {
	act, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var entry models.Entry
	if err := e.db.Preload("Tags").Preload("Medication").First(&entry, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "entry not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to load entry")
		return
	}

	var owner models.User
	if err := e.db.First(&owner, entry.UserID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to load entry")
		return
	}
	if !act.mayTarget(&owner) {
		utils.Error(ctx, http.StatusForbidden, 40302, "entry belongs to another family")
		return
	}

	utils.Success(ctx, gin.H{"entry": entry})
}

// resolveTarget loads the on-behalf-of user and checks the actor may act on
// them. A zero target means the actor themselves.
func (e *EntryController) resolveTarget(ctx *gin.Context, act actor, targetID uint) (*models.User, bool) {
	if targetID == 0 {
		targetID = act.UserID
	}
	var target models.User
	if err := e.db.First(&target, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "target user not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to resolve target user")
		return nil, false
	}
	if !act.mayTarget(&target) {
		utils.Error(ctx, http.StatusForbidden, 40303, "not allowed to record for this user")
		return nil, false
	}
	return &target, true
}

func validationMessage(verr *services.ValidationError) string {
	switch verr.Code {
	case services.CodeInvalidDate:
		return "date is not a valid calendar date"
	case services.CodeFutureDate:
		return "date must not be in the future"
	case services.CodeInvalidTimeSlot:
		return "time must be one of morning, noon or evening"
	}
	return "invalid field " + verr.Field
}
