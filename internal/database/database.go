package database

import (
	"fmt"

	"group-dating-app/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Needed so unique-constraint violations surface as
		// gorm.ErrDuplicatedKey across drivers.
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(databaseURL), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logrus.Info("Database connected and migrated successfully")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupPhoto{},
		&models.Like{},
		&models.LikeApproval{},
		&models.Match{},
	); err != nil {
		return err
	}

	// AutoMigrate covers the unique indexes; the canonical-ordering check
	// on matches needs raw DDL. Best effort on engines without CHECK.
	if err := db.Exec(
		"ALTER TABLE matches ADD CONSTRAINT check_match_order CHECK (group1_id < group2_id)",
	).Error; err != nil {
		logrus.WithError(err).Debug("check_match_order constraint not added (may already exist)")
	}
	return nil
}
