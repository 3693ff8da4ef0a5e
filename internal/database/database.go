package database

import (
	"fmt"
	"strings"

	"task-tracker-api/internal/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the SQLite database file (created if it doesn't exist) and
// runs migrations. Uses glebarez/sqlite, a pure Go driver (no CGO).
func Open(path, logLevel string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newZapLogger(log, gormLogLevel(logLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("Database connected and migrated", zap.String("path", path))
	return db, nil
}

// Migrate creates or updates every table, including the join tables
// team_members, project_teams and task_assignees.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
