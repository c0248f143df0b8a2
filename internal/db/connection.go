package db

import (
	"fmt"

	"github.com/loganomaly/rcaservice/internal/logger"
	"github.com/loganomaly/rcaservice/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect initializes the database connection from a postgres URI.
func Connect(databaseURI string) error {
	var err error
	DB, err = gorm.Open(postgres.Open(databaseURI), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error), // Reduce logging to avoid issues
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database connected successfully", nil)
	return nil
}

// AutoMigrate runs database migrations
func AutoMigrate() error {
	if err := DB.AutoMigrate(&models.RcaResult{}); err != nil {
		return fmt.Errorf("rca_results migration failed: %w", err)
	}
	logger.Info("Database migrations completed", nil)
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
