package parser

import (
	"cafe-dashboard/internal/models"
)

// Validity predicates. A row failing its predicate is dropped without error.

// ValidSale needs a date and an item name.
func ValidSale(r models.SalesRecord) bool {
	return r.Date != "" && r.ItemName != ""
}

func ValidInventory(i models.InventoryItem) bool {
	return i.ItemName != ""
}

func ValidAttendance(a models.AttendanceRecord) bool {
	return a.StaffName != "" && a.Date != ""
}

// ValidFeedback needs a date and a rating inside 1..5.
func ValidFeedback(f models.FeedbackRecord) bool {
	return f.Date != "" && f.Rating >= models.MinRating && f.Rating <= models.MaxRating
}

// parseRows builds one record per table row and keeps those passing valid.
// The result is never nil, so a header-only table yields a present but empty section.
func parseRows[T any](text string, build func(Row) T, valid func(T) bool) []T {
	t := ReadTable(text)
	out := make([]T, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		rec := build(t.Row(i))
		if valid(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// ParseSales parses the sales log tab:
// Date, Time, Item Name, Quantity, Price, Payment Type, Staff Name.
func ParseSales(text string) []models.SalesRecord {
	return parseRows(text, func(r Row) models.SalesRecord {
		return models.SalesRecord{
			Date:        r.Get(ColDate),
			Time:        r.Get(ColTime),
			ItemName:    r.Get(ColItemName),
			Quantity:    nonNegative(LenientInt(r.Get(ColQuantity))),
			Price:       nonNegativeDecimal(LenientDecimal(r.Get(ColPrice))),
			PaymentType: LenientPaymentType(r.Get(ColPaymentType)),
			StaffName:   r.Get(ColStaffName),
		}
	}, ValidSale)
}

// ParseInventory parses: Item Name, Stock Left, Reorder Threshold.
func ParseInventory(text string) []models.InventoryItem {
	return parseRows(text, func(r Row) models.InventoryItem {
		return models.InventoryItem{
			ItemName:         r.Get(ColItemName),
			StockLeft:        nonNegative(LenientInt(r.Get(ColStockLeft))),
			ReorderThreshold: nonNegative(LenientInt(r.Get(ColReorderThreshold))),
		}
	}, ValidInventory)
}

// ParseAttendance parses: Staff Name, Date, Time In, Time Out.
func ParseAttendance(text string) []models.AttendanceRecord {
	return parseRows(text, func(r Row) models.AttendanceRecord {
		return models.AttendanceRecord{
			StaffName: r.Get(ColStaffName),
			Date:      r.Get(ColDate),
			TimeIn:    r.Get(ColTimeIn),
			TimeOut:   r.Get(ColTimeOut),
		}
	}, ValidAttendance)
}

// ParseFeedback parses: Date, Rating, Feedback.
func ParseFeedback(text string) []models.FeedbackRecord {
	return parseRows(text, func(r Row) models.FeedbackRecord {
		return models.FeedbackRecord{
			Date:     r.Get(ColDate),
			Rating:   LenientInt(r.Get(ColRating)),
			Feedback: r.Get(ColFeedback),
		}
	}, ValidFeedback)
}

// Filter keeps the records passing valid. It never returns nil.
func Filter[T any](in []T, valid func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, r := range in {
		if valid(r) {
			out = append(out, r)
		}
	}
	return out
}

// HasColumns reports whether the header row of text carries every named column.
func HasColumns(text string, names ...string) bool {
	t := ReadTable(text)
	for _, n := range names {
		if !t.HasColumn(n) {
			return false
		}
	}
	return true
}
