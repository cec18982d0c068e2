package dashboard

import (
	"fmt"
	"io"

	"cafe-dashboard/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary    = "Summary"
	SheetSales      = "Sales"
	SheetInventory  = "Inventory"
	SheetAttendance = "Attendance"
	SheetFeedback   = "Feedback"
)

// Workbook renders the snapshot as an xlsx file. The caller must Close it.
func Workbook(data models.DashboardData, today string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	s := BuildSummary(data, today)
	summary := [][]any{
		{"Metric", "Value"},
		{"Date", s.Date},
		{"Source", data.Source},
		{"Last Updated", data.LastUpdated.Format("2006-01-02 15:04:05")},
		{"Today's Revenue", s.TodayRevenue.InexactFloat64()},
		{"Items Sold", s.ItemsSold},
		{"Staff Present", s.StaffPresent},
		{"Low Stock Alerts", s.LowStockCount},
		{"Average Rating", AverageRating(data.Feedback)},
	}

	sales := [][]any{{"Date", "Time", "Item Name", "Quantity", "Price", "Payment Type", "Staff Name", "Amount"}}
	for _, r := range data.SalesLog {
		sales = append(sales, []any{r.Date, r.Time, r.ItemName, r.Quantity, r.Price.InexactFloat64(),
			string(r.PaymentType), r.StaffName, r.Amount().InexactFloat64()})
	}

	inventory := [][]any{{"Item Name", "Stock Left", "Reorder Threshold", "Status"}}
	for _, r := range BuildInventory(data.Inventory, SortByName, Ascending) {
		inventory = append(inventory, []any{r.ItemName, r.StockLeft, r.ReorderThreshold, string(r.Status)})
	}

	attendance := [][]any{{"Staff Name", "Date", "Time In", "Time Out", "Hours", "Status"}}
	for _, r := range data.Attendance {
		hours := ShiftHours(r.TimeIn, r.TimeOut)
		attendance = append(attendance, []any{r.StaffName, r.Date, r.TimeIn, r.TimeOut, hours, string(ShiftStatusOf(hours))})
	}

	feedback := [][]any{{"Date", "Rating", "Feedback", "Sentiment"}}
	for _, r := range data.Feedback {
		feedback = append(feedback, []any{r.Date, r.Rating, r.Feedback, string(SentimentOf(r.Rating))})
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetSummary, summary},
		{SheetSales, sales},
		{SheetInventory, inventory},
		{SheetAttendance, attendance},
		{SheetFeedback, feedback},
	}
	for _, sh := range sheets {
		if err := writeSheet(f, sh.name, sh.rows, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", sh.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteWorkbook renders the workbook straight to w.
func WriteWorkbook(w io.Writer, data models.DashboardData, today string) error {
	f, err := Workbook(data, today)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func writeSheet(f *excelize.File, name string, rows [][]any, headerStyle int) error {
	if name != SheetSummary {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
		return err
	}
	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	return f.SetColWidth(name, "A", lastCol, 18)
}
