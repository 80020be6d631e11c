package utils

import (
	"fmt"

	"learnhub/backend/config"
	"learnhub/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the postgres connection and migrates the schema.
// TranslateError is required so unique-index violations surface as
// gorm.ErrDuplicatedKey (idempotent lecture completion relies on it).
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := MigrateModels(db); err != nil {
		return nil, err
	}

	return db, nil
}

// MigrateModels automigrates every model. Shared with the test setup, which
// runs against sqlite instead of postgres.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserAggregate{},
		&models.Course{},
		&models.Chapter{},
		&models.Lecture{},
		&models.Enrollment{},
		&models.CourseProgress{},
		&models.LectureCompletion{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
	)
}
