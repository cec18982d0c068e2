package source

import (
	"context"
	"fmt"
	"log/slog"

	"cafe-dashboard/internal/models"
	"cafe-dashboard/internal/parser"

	"gorm.io/gorm"
)

// Warehouse reads the four sections straight from the point-of-sale database.
// Sales are required; a failing optional table leaves its section absent.
type Warehouse struct {
	db *gorm.DB
}

func NewWarehouse(db *gorm.DB) *Warehouse {
	return &Warehouse{db: db}
}

func (w *Warehouse) Name() string { return TierWarehouse }

func (w *Warehouse) Acquire(ctx context.Context) Result {
	db := w.db.WithContext(ctx)

	var sales []models.SalesRecord
	if err := db.Order(`"date" ASC, "time" ASC`).Find(&sales).Error; err != nil {
		return Unavailable(fmt.Errorf("sales query: %w", err))
	}

	s := models.Sections{SalesLog: parser.Filter(sales, parser.ValidSale)}

	var inventory []models.InventoryItem
	if err := db.Order("item_name ASC").Find(&inventory).Error; err != nil {
		slog.Warn("warehouse inventory query failed", "error", err)
	} else {
		s.Inventory = parser.Filter(inventory, parser.ValidInventory)
	}

	var attendance []models.AttendanceRecord
	if err := db.Order(`"date" ASC, staff_name ASC`).Find(&attendance).Error; err != nil {
		slog.Warn("warehouse attendance query failed", "error", err)
	} else {
		s.Attendance = parser.Filter(attendance, parser.ValidAttendance)
	}

	var feedback []models.FeedbackRecord
	if err := db.Order(`"date" ASC`).Find(&feedback).Error; err != nil {
		slog.Warn("warehouse feedback query failed", "error", err)
	} else {
		s.Feedback = parser.Filter(feedback, parser.ValidFeedback)
	}

	return Success(s)
}
