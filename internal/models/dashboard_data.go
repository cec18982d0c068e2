package models

import "time"

// Sections holds the four record sequences of a snapshot. A nil slice means the
// section was absent from the source; an empty non-nil slice means it was present
// with zero rows.
type Sections struct {
	SalesLog   []SalesRecord      `json:"salesLog"`
	Inventory  []InventoryItem    `json:"inventory"`
	Attendance []AttendanceRecord `json:"attendance"`
	Feedback   []FeedbackRecord   `json:"feedback"`
}

// Complete reports whether every section is present.
func (s Sections) Complete() bool {
	return s.SalesLog != nil && s.Inventory != nil && s.Attendance != nil && s.Feedback != nil
}

// Clone copies the slices so callers can't alias a shared dataset.
func (s Sections) Clone() Sections {
	return Sections{
		SalesLog:   cloneSlice(s.SalesLog),
		Inventory:  cloneSlice(s.Inventory),
		Attendance: cloneSlice(s.Attendance),
		Feedback:   cloneSlice(s.Feedback),
	}
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// DashboardData is one snapshot. It is replaced wholesale by the next acquisition
// cycle and never modified after publication.
type DashboardData struct {
	Sections
	Source      string    `json:"source"` // primary / sheets / warehouse / sample
	LastUpdated time.Time `json:"lastUpdated"`
}
