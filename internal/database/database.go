package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/inflowhq/inflow-backend/internal/config"
	"github.com/inflowhq/inflow-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres connection pool. The returned *gorm.DB is
// constructed once at process start and passed to handlers explicitly.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return db, nil
}

// Migrate runs AutoMigrate for the full schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Influencer{},
		&models.Brand{},
		&models.SocialAccount{},
		&models.Niche{},
		&models.ContentType{},
		&models.Deal{},
		&models.Collaboration{},
		&models.Deliverable{},
		&models.Milestone{},
		&models.Review{},
		&models.Conversation{},
		&models.Message{},
		&models.Contact{},
		&models.Notification{},
		&models.SystemLog{},
	)
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
