package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/solutionsheet-api/internal/models"
)

// Migrate creates or updates the tables used by the service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Assignment{},
		&models.PluginConfig{},
		&models.SolutionFile{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
