package db

import (
	"fmt"
	"time"

	"storefront-builder/internal/config"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds the postgres connection string from cfg.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v sslmode=%v",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
	)
}

// GormLogger routes gorm's SQL log through log.
func GormLogger(environment string, log logrus.FieldLogger) logger.Interface {
	level := logger.Info
	if environment == "production" {
		level = logger.Error
	}
	return logger.New(
		log, // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  level,       // Log level
			IgnoreRecordNotFoundError: true,
			Colorful:                  environment != "production",
		},
	)
}

func ConnectDb(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:         GormLogger(cfg.Environment, log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	log.Info("Success connecting to db")
	return db, nil
}

func CloseDb(db *gorm.DB, log logrus.FieldLogger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Error("failed to get db handle")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Error("failed to close db")
		return
	}
	log.Info("Closing DB")
}
