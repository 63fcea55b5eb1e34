package catalog

import (
	"fmt"

	"github.com/ammar0144/catalog4go/pkg/models"

	"gorm.io/gorm"
)

// Migrate creates or updates the titles, actors and title_actors tables
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("db cannot be nil")
	}
	if err := db.AutoMigrate(&models.Title{}, &models.Actor{}, &models.TitleActor{}); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	return nil
}
