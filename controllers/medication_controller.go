package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
	"github.com/famlog/meddiary/utils"
)

// MedicationController manages the family's medication catalog.
type MedicationController struct {
	db *gorm.DB
}

// NewMedicationController creates a new controller instance.
func NewMedicationController(db *gorm.DB) *MedicationController {
	return &MedicationController{db: db}
}

type medicationRequest struct {
	Name     string `json:"name" binding:"required,min=1"`
	Strength string `json:"strength"`
	Unit     string `json:"unit"`
	Notes    string `json:"notes"`
	Active   *bool  `json:"active"`
}

// List returns all medications of the actor's family, active first.
func (m *MedicationController) List(ctx *gin.Context) {
	act, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var meds []models.Medication
	if err := m.db.Where("family_id = ?", act.FamilyID).
		Order("active DESC, name ASC").Find(&meds).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list medications")
		return
	}
	utils.Success(ctx, gin.H{"items": meds})
}

// Create adds a medication to the family catalog.
func (m *MedicationController) Create(ctx *gin.Context) {
	act, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req medicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	name := utils.SanitizeText(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "name cannot be empty")
		return
	}

	med := models.Medication{
		FamilyID: act.FamilyID,
		Name:     name,
		Strength: utils.SanitizeText(req.Strength),
		Unit:     utils.SanitizeText(req.Unit),
		Notes:    utils.SanitizeText(req.Notes),
		Active:   true,
	}
	if req.Active != nil {
		med.Active = *req.Active
	}

	if err := m.db.Create(&med).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to create medication")
		return
	}
	utils.Success(ctx, gin.H{"medication": med})
}

// Update overwrites an existing medication of the actor's family.
func (m *MedicationController) Update(ctx *gin.Context) {
	act, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	med, ok := m.loadFamilyMedication(ctx, act)
	if !ok {
		return
	}

	var req medicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	med.Name = utils.SanitizeText(strings.TrimSpace(req.Name))
	med.Strength = utils.SanitizeText(req.Strength)
	med.Unit = utils.SanitizeText(req.Unit)
	med.Notes = utils.SanitizeText(req.Notes)
	if req.Active != nil {
		med.Active = *req.Active
	}

	if err := m.db.Save(med).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to update medication")
		return
	}
	utils.Success(ctx, gin.H{"medication": med})
}

// Delete removes a medication. Entries referencing it keep their rows; the
// foreign key is set to NULL by the schema constraint.
func (m *MedicationController) Delete(ctx *gin.Context) {
	act, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	med, ok := m.loadFamilyMedication(ctx, act)
	if !ok {
		return
	}

	if err := m.db.Delete(med).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to delete medication")
		return
	}
	utils.Success(ctx, gin.H{"deleted": med.ID})
}

func (m *MedicationController) loadFamilyMedication(ctx *gin.Context, act actor) (*models.Medication, bool) {
	var med models.Medication
	if err := m.db.First(&med, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "medication not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load medication")
		return nil, false
	}
	if med.FamilyID != act.FamilyID {
		utils.Error(ctx, http.StatusForbidden, 40305, "medication belongs to another family")
		return nil, false
	}
	return &med, true
}
