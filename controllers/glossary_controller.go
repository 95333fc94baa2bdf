package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
	"github.com/famlog/meddiary/utils"
)

// GlossaryController serves the read-only glossary of diary and medication terms.
type GlossaryController struct {
	db *gorm.DB
}

// NewGlossaryController creates a new controller instance.
func NewGlossaryController(db *gorm.DB) *GlossaryController {
	return &GlossaryController{db: db}
}

// List returns glossary terms, optionally filtered by category. Unfiltered
// responses are cached.
func (g *GlossaryController) List(ctx *gin.Context) {
	category := strings.TrimSpace(ctx.Query("category"))

	const cacheKey = "cache:glossary:all"
	if category == "" {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	query := g.db.Order("term ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var terms []models.GlossaryTerm
	if err := query.Find(&terms).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list glossary terms")
		return
	}

	payload := gin.H{"items": terms}
	if category == "" {
		wrapper := struct {
			Code    int         `json:"code"`
			Message string      `json:"message"`
			Data    interface{} `json:"data"`
		}{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	}
	utils.Success(ctx, payload)
}
