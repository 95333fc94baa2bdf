package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
	"github.com/famlog/meddiary/utils"
)

// TagController manages the shared tag catalog.
type TagController struct {
	db *gorm.DB
}

// NewTagController creates a new controller instance.
func NewTagController(db *gorm.DB) *TagController {
	return &TagController{db: db}
}

// List returns the full tag catalog.
func (t *TagController) List(ctx *gin.Context) {
	var tags []models.Tag
	if err := t.db.Order("name ASC").Find(&tags).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to list tags")
		return
	}
	utils.Success(ctx, gin.H{"items": tags})
}

// Create adds a tag. Creating an existing name returns the existing tag so
// clients can treat the call as get-or-create.
func (t *TagController) Create(ctx *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required,min=1"`
		Category string `json:"category"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	name := utils.SanitizeText(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "name cannot be empty")
		return
	}

	var tag models.Tag
	err := t.db.Where("name = ?", name).First(&tag).Error
	if err == nil {
		utils.Success(ctx, gin.H{"tag": tag})
		return
	}
	if err != gorm.ErrRecordNotFound {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to look up tag")
		return
	}

	tag = models.Tag{Name: name, Category: utils.SanitizeText(req.Category)}
	if err := t.db.Create(&tag).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to create tag")
		return
	}
	utils.Success(ctx, gin.H{"tag": tag})
}
