package db

import (
	"fmt"

	"github.com/drukmotors/dealership-backend/internal/registry"
	"github.com/drukmotors/dealership-backend/pkg/logger"
)

// Migrate runs auto-migration for every registered resource model.
func Migrate(reg *registry.Registry) error {
	logger.Info("Running database migrations", map[string]interface{}{
		"resources": reg.Names(),
	})

	if err := DB.AutoMigrate(reg.Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database migrations completed successfully", nil)
	return nil
}
