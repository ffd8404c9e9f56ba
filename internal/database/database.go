package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"immopro/server/internal/models"
)

var ErrScenarioNotFound = errors.New("scenario not found")

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type Database struct {
	db *gorm.DB
}

// Open connects to the scenario store. driver is "sqlite" (source is a file
// path) or "mysql" (source is a DSN).
func Open(driver, source string) (*Database, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		if !isMemory(source) {
			if err := os.MkdirAll(filepath.Dir(source), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(source)
	case "mysql":
		dialector = mysql.Open(source)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if driver == "sqlite" {
		// every connection to an in-memory database is a separate database
		if isMemory(source) {
			sqlDB.SetMaxOpenConns(1)
		}
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{db: db}, nil
}

// NewDatabaseFromDB wraps an existing gorm connection
func NewDatabaseFromDB(db *gorm.DB) *Database {
	return &Database{db: db}
}

// DB returns the underlying gorm.DB instance
func (d *Database) DB() *gorm.DB {
	return d.db
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isMemory(source string) bool {
	return source == ":memory:" || strings.Contains(source, "mode=memory") || strings.HasPrefix(source, "file::memory:")
}

// SaveScenarios inserts a batch of scenarios in a single transaction
func (d *Database) SaveScenarios(scenarios []*models.Scenario) error {
	if len(scenarios) == 0 {
		return nil
	}
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(scenarios).Error; err != nil {
			return fmt.Errorf("failed to insert scenarios: %w", err)
		}
		return nil
	})
}

func (d *Database) GetScenario(id string) (*models.Scenario, error) {
	var scenario models.Scenario
	err := d.db.Where("id = ?", id).First(&scenario).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	return &scenario, nil
}

// ListScenarios returns the newest scenarios first. An empty recommendation
// matches every tier.
func (d *Database) ListScenarios(limit int, recommendation models.Recommendation) ([]models.Scenario, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := d.db.Order("created_at DESC").Limit(limit)
	if recommendation != "" {
		query = query.Where("recommendation = ?", recommendation)
	}

	scenarios := []models.Scenario{}
	if err := query.Find(&scenarios).Error; err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return scenarios, nil
}

func (d *Database) DeleteScenario(id string) error {
	result := d.db.Where("id = ?", id).Delete(&models.Scenario{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete scenario: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
	}
	return nil
}

func (d *Database) CountScenarios() (int64, error) {
	var count int64
	if err := d.db.Model(&models.Scenario{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count scenarios: %w", err)
	}
	return count, nil
}

// MarkNotified stamps the given scenarios as alerted
func (d *Database) MarkNotified(ids []string) error {
	return MarkScenariosNotified(d.db, ids, time.Now())
}

// MarkScenariosNotified runs on any handle so callers can use it inside
// their own transaction.
func MarkScenariosNotified(tx *gorm.DB, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := tx.Model(&models.Scenario{}).
		Where("id IN ?", ids).
		Update("notified_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark scenarios notified: %w", err)
	}
	return nil
}

// PruneScenariosBefore deletes scenarios created before cutoff and returns how
// many were removed
func (d *Database) PruneScenariosBefore(cutoff time.Time) (int64, error) {
	result := d.db.Where("created_at < ?", cutoff).Delete(&models.Scenario{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune scenarios: %w", result.Error)
	}
	return result.RowsAffected, nil
}
