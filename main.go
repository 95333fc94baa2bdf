package main

import (
	"time"

	"github.com/famlog/meddiary/config"
	"github.com/famlog/meddiary/models"
	"github.com/famlog/meddiary/routes"
	"github.com/famlog/meddiary/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.Family{}, &models.User{},
		&models.Medication{}, &models.Tag{},
		&models.Entry{}, &models.EntryTag{},
		&models.Badge{}, &models.UserBadge{},
		&models.GlossaryTerm{}, &models.AuditEvent{},
	)

	r := routes.SetupRouter(db)

	// Prune old audit events in the background (best-effort)
	utils.StartAuditCleaner(db, time.Hour)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
