package database

import (
	"fmt"

	"immopro/server/internal/models"
)

// RunMigrations creates or updates the schema
func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&models.Scenario{}); err != nil {
		return fmt.Errorf("failed to migrate scenarios: %w", err)
	}
	return nil
}
