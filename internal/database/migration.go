package database

import (
	"fmt"

	billdomain "github.com/techverse/billdesk/internal/bill/domain"
	"github.com/techverse/billdesk/internal/events"
	"gorm.io/gorm"
)

// AutoMigrate runs schema migrations for all persisted models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&billdomain.Bill{},
		&events.BillEvent{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
