package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
	"github.com/famlog/meddiary/utils"
)

const tokenDuration = 72 * time.Hour

// AuthController handles account and family membership endpoints.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new controller instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a parent account. Without an invite code a new family is
// created; with one the account joins the existing family as an adult.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username   string `json:"username" binding:"required,min=2,max=64"`
		Email      string `json:"email"`
		Password   string `json:"password" binding:"required,min=6"`
		Confirm    string `json:"confirm"`
		FamilyName string `json:"family_name"`
		InviteCode string `json:"invite_code"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !validUsername(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username may only contain letters, digits and '-'")
		return
	}
	if req.Password != req.Confirm {
		utils.Error(ctx, http.StatusBadRequest, 40003, "passwords do not match")
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 72 || !validPassword(req.Password) {
		utils.Error(ctx, http.StatusBadRequest, 40004, "password must be 6-72 characters of letters, digits and -_.")
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40902, "username already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to hash password")
		return
	}

	var user models.User
	err = a.db.Transaction(func(tx *gorm.DB) error {
		role := models.RoleParent
		var familyID uint

		if code := strings.TrimSpace(req.InviteCode); code != "" {
			var family models.Family
			if err := tx.Where("invite_code = ?", code).First(&family).Error; err != nil {
				return errInviteCode
			}
			familyID = family.ID
			role = models.RoleAdult
		} else {
			name := utils.SanitizeText(strings.TrimSpace(req.FamilyName))
			if name == "" {
				name = req.Username + "'s family"
			}
			family := models.Family{Name: name, InviteCode: newInviteCode()}
			if err := tx.Create(&family).Error; err != nil {
				return err
			}
			familyID = family.ID
		}

		user = models.User{
			FamilyID:     familyID,
			Username:     req.Username,
			DisplayName:  req.Username,
			Email:        strings.TrimSpace(req.Email),
			PasswordHash: hash,
			Role:         role,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if errors.Is(err, errInviteCode) {
			utils.Error(ctx, http.StatusBadRequest, 40005, "invalid invite code")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to create account")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, user.FamilyID, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  publicUser(user),
	})
}

var errInviteCode = errors.New("invalid invite code")

// Login authenticates a family member and issues a token.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, user.FamilyID, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  publicUser(user),
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenDuration)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile and family.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	var family models.Family
	if err := a.db.First(&family, user.FamilyID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to load family")
		return
	}

	payload := gin.H{"user": publicUser(user)}
	if user.Role == models.RoleParent {
		// only parents see the invite code
		payload["family"] = gin.H{"id": family.ID, "name": family.Name, "invite_code": family.InviteCode}
	} else {
		payload["family"] = gin.H{"id": family.ID, "name": family.Name}
	}
	utils.Success(ctx, payload)
}

// UpdateProfile changes display name, email or password of the caller.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		DisplayName *string `json:"display_name"`
		Email       *string `json:"email"`
		Password    *string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	if req.DisplayName != nil {
		user.DisplayName = utils.SanitizeText(strings.TrimSpace(*req.DisplayName))
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Password != nil {
		if len(*req.Password) < 6 || len(*req.Password) > 72 || !validPassword(*req.Password) {
			utils.Error(ctx, http.StatusBadRequest, 40004, "password must be 6-72 characters of letters, digits and -_.")
			return
		}
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to hash password")
			return
		}
		user.PasswordHash = hash
	}

	if err := a.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to update profile")
		return
	}
	utils.Success(ctx, gin.H{"user": publicUser(user)})
}

// CreateFamilyMember lets a parent provision an adult, child or teacher account.
func (a *AuthController) CreateFamilyMember(ctx *gin.Context) {
	act, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Username    string `json:"username" binding:"required,min=2,max=64"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password" binding:"required,min=6"`
		Role        string `json:"role" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40008, "invalid request payload")
		return
	}

	switch req.Role {
	case models.RoleAdult, models.RoleChild, models.RoleTeacher:
	default:
		utils.Error(ctx, http.StatusBadRequest, 40009, "role must be adult, child or teacher")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !validUsername(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username may only contain letters, digits and '-'")
		return
	}
	if len(req.Password) > 72 || !validPassword(req.Password) {
		utils.Error(ctx, http.StatusBadRequest, 40004, "password must be 6-72 characters of letters, digits and -_.")
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40902, "username already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to hash password")
		return
	}

	display := utils.SanitizeText(strings.TrimSpace(req.DisplayName))
	if display == "" {
		display = req.Username
	}

	user := models.User{
		FamilyID:     act.FamilyID,
		Username:     req.Username,
		DisplayName:  display,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to create family member")
		return
	}

	utils.Success(ctx, gin.H{"user": publicUser(user)})
}

// ListFamilyMembers returns all accounts of the caller's family.
func (a *AuthController) ListFamilyMembers(ctx *gin.Context) {
	act, ok := getActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var members []models.User
	if err := a.db.Where("family_id = ?", act.FamilyID).Order("id ASC").Find(&members).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50067, "failed to list family members")
		return
	}

	items := make([]gin.H, 0, len(members))
	for _, m := range members {
		items = append(items, publicUser(m))
	}
	utils.Success(ctx, gin.H{"items": items})
}

func publicUser(user models.User) gin.H {
	return gin.H{
		"id":              user.ID,
		"family_id":       user.FamilyID,
		"username":        user.Username,
		"display_name":    user.DisplayName,
		"email":           user.Email,
		"role":            user.Role,
		"points":          user.Points,
		"streak_current":  user.StreakCurrent,
		"last_entry_date": user.LastEntryDate,
		"created_at":      user.CreatedAt,
	}
}

func newInviteCode() string {
	// first uuid block: short enough to share out loud, unique enough per family
	return strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}

func validUsername(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

func validPassword(s string) bool {
	for _, r := range s {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.'
		if !ok {
			return false
		}
	}
	return true
}
