package gorm

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"umbrella-reminder/internal/domain/entity"
)

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	Schema   string
	SSLMode  string
}

func (config DatabaseConfig) DSN() string {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	schema := config.Schema
	if schema == "" {
		schema = "public"
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s search_path=%s",
		config.Host, config.Username, config.Password, config.Database, config.Port, sslMode, schema)
}

// Open connects to Postgres and makes sure the reminders table exists
func Open(config DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err = db.AutoMigrate(&entity.Reminder{}); err != nil {
		return nil, fmt.Errorf("failed to migrate reminders table: %w", err)
	}

	return db, nil
}
