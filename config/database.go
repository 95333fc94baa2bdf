package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/famlog/meddiary/models"
)

var db *gorm.DB

// InitDatabase establishes a connection to MySQL using configuration values,
// performs automatic migrations for missing tables and seeds fixed catalogs.
func InitDatabase(modelDefs ...interface{}) *gorm.DB {
	if db != nil {
		return db
	}

	cfg := Get()
	var dsn string
	if cfg.DatabaseURI != "" {
		dsn = cfg.DatabaseURI
	} else {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
	}

	// Configure GORM logger: derive level from app LogLevel and raise slow-sql threshold to reduce noise
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gormCfg := &gorm.Config{
		Logger:                                   gLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	}

	var err error
	db, err = gorm.Open(mysql.Open(dsn), gormCfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	// moderate pool with aggressive idle recycling so the server's wait_timeout
	// never hands us dead connections
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	// ping at boot so network/auth problems surface before the first query
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("database ping failed: %v", err)
	}

	// Only migrate missing tables to avoid intrusive changes on an existing schema
	for _, model := range modelDefs {
		if !db.Migrator().HasTable(model) {
			if err := db.AutoMigrate(model); err != nil {
				log.Printf("auto migration failed for %T: %v", model, err)
			}
		}
	}

	SeedCatalogs(db)

	return db
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "info", "", "warn":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

// DB provides access to initialized gorm DB instance.
func DB() *gorm.DB {
	if db == nil {
		log.Fatal("database not initialized, call InitDatabase first")
	}
	return db
}

// SeedCatalogs inserts the fixed badge catalog and starter glossary when their
// tables are empty. Badge names and thresholds are load-bearing: the evaluator
// matches context badges by name.
func SeedCatalogs(db *gorm.DB) {
	var badgeCount int64
	if err := db.Model(&models.Badge{}).Count(&badgeCount).Error; err == nil && badgeCount == 0 {
		intp := func(v int) *int { return &v }
		badges := []models.Badge{
			{Name: "First Steps", Description: "Logged entries on 3 days in a row", Icon: "seedling", RequiredStreak: intp(3)},
			{Name: "One Full Week", Description: "Logged entries on 7 days in a row", Icon: "calendar-week", RequiredStreak: intp(7)},
			{Name: "Two Week Champion", Description: "Logged entries on 14 days in a row", Icon: "medal", RequiredStreak: intp(14)},
			{Name: "Monthly Master", Description: "Logged entries on 30 days in a row", Icon: "trophy", RequiredStreak: intp(30)},
			{Name: "Diary Veteran", Description: "Logged entries on 60 days in a row", Icon: "shield", RequiredStreak: intp(60)},
			{Name: "Centurion", Description: "Logged entries on 100 days in a row", Icon: "crown", RequiredStreak: intp(100)},
			{Name: models.BadgeWeekend, Description: "Logged an entry on a weekend", Icon: "sun"},
			{Name: models.BadgeMorning, Description: "Logged a morning entry", Icon: "sunrise"},
			{Name: models.BadgeEvening, Description: "Logged an evening entry", Icon: "moon"},
		}
		if err := db.Create(&badges).Error; err != nil {
			log.Printf("badge catalog seed failed: %v", err)
		}
	}

	var termCount int64
	if err := db.Model(&models.GlossaryTerm{}).Count(&termCount).Error; err == nil && termCount == 0 {
		terms := []models.GlossaryTerm{
			{Term: "Time slot", Definition: "One of morning, noon or evening. A diary keeps at most one entry per slot and day.", Category: "diary"},
			{Term: "Streak", Definition: "Number of consecutive calendar days with at least one entry.", Category: "rewards"},
			{Term: "Dose", Definition: "The amount of medication taken, as noted on the entry.", Category: "medication"},
			{Term: "Side effects", Definition: "Unwanted reactions observed after taking a medication.", Category: "medication"},
		}
		if err := db.Create(&terms).Error; err != nil {
			log.Printf("glossary seed failed: %v", err)
		}
	}
}
