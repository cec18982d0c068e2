package parser

import (
	"encoding/csv"
	"regexp"
	"strings"
)

// Column headers of the café spreadsheet tabs.
const (
	ColDate             = "Date"
	ColTime             = "Time"
	ColItemName         = "Item Name"
	ColQuantity         = "Quantity"
	ColPrice            = "Price"
	ColPaymentType      = "Payment Type"
	ColStaffName        = "Staff Name"
	ColStockLeft        = "Stock Left"
	ColReorderThreshold = "Reorder Threshold"
	ColTimeIn           = "Time In"
	ColTimeOut          = "Time Out"
	ColRating           = "Rating"
	ColFeedback         = "Feedback"
)

var (
	unitSuffixRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

// Table is a header-addressed view over delimited text. Columns are looked up by
// name, never by position.
type Table struct {
	index map[string]int
	rows  [][]string
}

// Row is one data row of a Table.
type Row struct {
	table *Table
	cells []string
}

// ReadTable reads CSV text whose first record is the header. Blank lines are
// skipped. A malformed record ends the read; rows before it are kept.
func ReadTable(text string) *Table {
	t := &Table{index: map[string]int{}}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header := true
	for {
		rec, err := r.Read()
		if err != nil {
			// io.EOF or a malformed record
			break
		}
		if header {
			for i, h := range rec {
				key := normalizeHeader(h)
				if _, dup := t.index[key]; !dup && key != "" {
					t.index[key] = i
				}
			}
			header = false
			continue
		}
		if blank(rec) {
			continue
		}
		t.rows = append(t.rows, rec)
	}
	return t
}

// Len is the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether the header carried the given column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[normalizeHeader(name)]
	return ok
}

func (t *Table) Row(i int) Row {
	return Row{table: t, cells: t.rows[i]}
}

// Get returns the trimmed cell under the named column, or "" when the column
// or cell is missing.
func (r Row) Get(name string) string {
	i, ok := r.table.index[normalizeHeader(name)]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// normalizeHeader makes "  Price (₹) " and "price" the same key.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(h)
	h = unitSuffixRe.ReplaceAllString(h, "")
	h = spacesRe.ReplaceAllString(h, " ")
	return strings.ToLower(h)
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
