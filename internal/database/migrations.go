package database

import (
	"fmt"

	"github.com/ashishacharya123/pkms-todos/internal/models"
	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// CompactLanes rewrites order_index in every status lane to 0..n-1, keeping
// the current relative order. It repairs lanes left sparse by imports or
// interrupted renumbering.
func CompactLanes(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, status := range models.ValidTodoStatuses() {
			var todos []models.Todo
			if err := tx.Scopes(TopLevel, Lane(status)).
				Order("order_index ASC, created_at ASC").
				Find(&todos).Error; err != nil {
				return fmt.Errorf("failed to load %s lane: %w", status, err)
			}

			fixed := 0
			for i, todo := range todos {
				if todo.OrderIndex == i {
					continue
				}
				if err := tx.Model(&models.Todo{}).
					Where("uuid = ?", todo.UUID).
					UpdateColumn("order_index", i).Error; err != nil {
					return fmt.Errorf("failed to renumber %s: %w", todo.UUID, err)
				}
				fixed++
			}
			if fixed > 0 {
				log.Info("Compacted lane", "status", status, "renumbered", fixed)
			}
		}
		return nil
	})
}

// MigrateDatabase runs schema migrations followed by lane compaction
func MigrateDatabase(db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		return err
	}
	if err := CompactLanes(db); err != nil {
		return fmt.Errorf("failed to compact lanes: %w", err)
	}
	return nil
}
