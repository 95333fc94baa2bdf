package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famlog/meddiary/config"
	"github.com/famlog/meddiary/controllers"
	"github.com/famlog/meddiary/middleware"
	"github.com/famlog/meddiary/models"
	"github.com/famlog/meddiary/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))
	// Record mutating requests to the audit trail after each request
	r.Use(middleware.AuditRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	entryController := controllers.NewEntryController(db)
	rewardController := controllers.NewRewardController(db)
	medicationController := controllers.NewMedicationController(db)
	tagController := controllers.NewTagController(db)
	glossaryController := controllers.NewGlossaryController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public glossary, no account needed
	api.GET("/glossary", glossaryController.List)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/family/members", authController.ListFamilyMembers)
	protected.POST("/family/members", middleware.RequireRoles(models.RoleParent), authController.CreateFamilyMember)

	protected.POST("/entries", entryController.RecordEntry)
	protected.GET("/entries", entryController.ListEntries)
	protected.GET("/entries/:id", entryController.GetEntry)

	protected.GET("/rewards/status", rewardController.Status)
	protected.GET("/rewards/badges", rewardController.Badges)

	protected.GET("/medications", medicationController.List)
	manageMeds := middleware.RequireRoles(models.RoleParent, models.RoleAdult)
	protected.POST("/medications", manageMeds, medicationController.Create)
	protected.PUT("/medications/:id", manageMeds, medicationController.Update)
	protected.DELETE("/medications/:id", manageMeds, medicationController.Delete)

	protected.GET("/tags", tagController.List)
	protected.POST("/tags", tagController.Create)

	protected.GET("/stats/family", statsController.FamilyOverview)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
