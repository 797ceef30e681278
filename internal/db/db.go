package db

import (
	"fmt"
	"time"

	"zvaintel/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// Migrate creates or updates the tables the application owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.RegistryRecord{}, &models.VendorIntelligence{}, &models.Vendor{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
