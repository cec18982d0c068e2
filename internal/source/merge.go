package source

import "cafe-dashboard/internal/models"

// FillMissing returns partial with every absent (nil) section taken from
// fallback. Present sections, even empty ones, are kept as they are.
func FillMissing(partial, fallback models.Sections) models.Sections {
	out := partial
	if out.SalesLog == nil {
		out.SalesLog = fallback.SalesLog
	}
	if out.Inventory == nil {
		out.Inventory = fallback.Inventory
	}
	if out.Attendance == nil {
		out.Attendance = fallback.Attendance
	}
	if out.Feedback == nil {
		out.Feedback = fallback.Feedback
	}
	return out
}
