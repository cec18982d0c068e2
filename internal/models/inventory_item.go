package models

// InventoryItem is keyed by ItemName within a snapshot. A stock at or below the
// threshold is a reorder signal, not an invalid row.
type InventoryItem struct {
	ItemName         string `json:"itemName" gorm:"size:120;not null"`
	StockLeft        int    `json:"stockLeft"`
	ReorderThreshold int    `json:"reorderThreshold"`
}

func (InventoryItem) TableName() string { return "cafe_inventory" }
