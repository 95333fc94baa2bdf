package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/famlog/meddiary/middleware"
	"github.com/famlog/meddiary/models"
)

// actor is the authenticated identity resolved from the request context.
type actor struct {
	UserID   uint
	Username string
	Role     string
	FamilyID uint
}

func getActor(ctx *gin.Context) (actor, bool) {
	id, ok := getUserID(ctx)
	if !ok {
		return actor{}, false
	}
	return actor{
		UserID:   id,
		Username: ctx.GetString(middleware.ContextUsernameKey),
		Role:     ctx.GetString(middleware.ContextRoleKey),
		FamilyID: getFamilyID(ctx),
	}, true
}

// mayTarget reports whether the actor is allowed to act on the target user's
// diary. Parents and adults cover the whole family, teachers only the family's
// children, children only themselves.
func (a actor) mayTarget(target *models.User) bool {
	if target.ID == a.UserID {
		return true
	}
	if target.FamilyID != a.FamilyID {
		return false
	}
	switch a.Role {
	case models.RoleParent, models.RoleAdult:
		return true
	case models.RoleTeacher:
		return target.Role == models.RoleChild
	}
	return false
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func getFamilyID(ctx *gin.Context) uint {
	value, exists := ctx.Get(middleware.ContextFamilyIDKey)
	if !exists {
		return 0
	}
	if id, ok := value.(uint); ok {
		return id
	}
	return 0
}
