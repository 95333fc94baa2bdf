package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/famlog/meddiary/middleware"
	"github.com/famlog/meddiary/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Family{}, &models.User{},
		&models.Medication{}, &models.Tag{},
		&models.Entry{}, &models.EntryTag{},
		&models.Badge{}, &models.UserBadge{},
	))
	return db
}

// authedContext builds a gin test context carrying the identity the auth
// middleware would have resolved.
func authedContext(t *testing.T, user *models.User, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(method, target, nil)

	ctx.Set(middleware.ContextUserIDKey, user.ID)
	ctx.Set(middleware.ContextUsernameKey, user.Username)
	ctx.Set(middleware.ContextRoleKey, user.Role)
	ctx.Set(middleware.ContextFamilyIDKey, user.FamilyID)
	return ctx, rec
}

func seedFamilyUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	family := models.Family{Name: "testers", InviteCode: "TST" + role[:2]}
	require.NoError(t, db.Create(&family).Error)

	user := models.User{
		FamilyID:     family.ID,
		Username:     role + "-member",
		DisplayName:  role,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}
