// Package database opens the gorm connection and runs migrations.
package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Conceptual-Machines/harmonia-api/internal/models"
)

const sqlitePrefix = "sqlite://"

// Connect opens postgres for a regular DSN, or a local sqlite file for
// "sqlite://path" ("sqlite://:memory:" for an in-memory database)
func Connect(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	path, isSQLite := strings.CutPrefix(databaseURL, sqlitePrefix)

	var dialector gorm.Dialector
	if isSQLite {
		dialector = sqlite.Open(path)
	} else {
		dialector = postgres.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if isSQLite {
		// sqlite allows one writer; an in-memory database also lives on a single connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.ExerciseProgress{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
