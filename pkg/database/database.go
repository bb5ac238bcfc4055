package database

import (
	"fmt"
	"log"
	"mindagrow_backend/internal/config"
	"mindagrow_backend/internal/model"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.Port,
			cfg.SSLMode,
			cfg.TimeZone,
		)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Println("Database connection established")
	return db, nil
}

// Migrate creates or updates every table and inserts the default seed rows.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return err
	}
	log.Println("Database migration completed")
	return Seed(db)
}

// Seed inserts default daily missions and course categories when empty.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.DailyMission{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		defaultMissions := []model.DailyMission{
			{Code: "daily_login", Title: "Masuk hari ini", Description: "Login ke MindaGrow", MissionType: model.MissionLogin, TargetCount: 1, XPReward: 5, IsActive: true},
			{Code: "submit_one_assignment", Title: "Kumpulkan 1 tugas", Description: "Kumpulkan satu tugas hari ini", MissionType: model.MissionSubmitAssignment, TargetCount: 1, XPReward: 15, IsActive: true},
			{Code: "complete_two_lessons", Title: "Selesaikan 2 pelajaran", Description: "Selesaikan dua pelajaran kursus", MissionType: model.MissionCompleteLesson, TargetCount: 2, XPReward: 20, IsActive: true},
			{Code: "play_three_games", Title: "Main 3 permainan", Description: "Mainkan tiga permainan edukatif, selesai atau belum", MissionType: model.MissionPlayGame, TargetCount: 3, XPReward: 15, IsActive: true},
		}
		for i := range defaultMissions {
			if err := db.Create(&defaultMissions[i]).Error; err != nil {
				return err
			}
		}
	}

	var catCount int64
	if err := db.Model(&model.Category{}).Count(&catCount).Error; err != nil {
		return err
	}
	if catCount == 0 {
		defaultCategories := []model.Category{
			{Name: "Matematika", Slug: "matematika", Icon: "calculator"},
			{Name: "Bahasa Indonesia", Slug: "bahasa-indonesia", Icon: "book"},
			{Name: "Bahasa Inggris", Slug: "bahasa-inggris", Icon: "globe"},
			{Name: "IPA", Slug: "ipa", Icon: "flask"},
			{Name: "IPS", Slug: "ips", Icon: "map"},
		}
		for i := range defaultCategories {
			if err := db.Create(&defaultCategories[i]).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
