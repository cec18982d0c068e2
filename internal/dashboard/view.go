package dashboard

import (
	"time"

	"cafe-dashboard/internal/models"
	"cafe-dashboard/internal/refresh"

	"github.com/shopspring/decimal"
)

type Summary struct {
	Date          string          `json:"date"`
	TodayRevenue  decimal.Decimal `json:"todayRevenue"`
	ItemsSold     int             `json:"itemsSold"`
	StaffPresent  int             `json:"staffPresent"`
	LowStockCount int             `json:"lowStockCount"`
}

type SalesTrend struct {
	Daily     []TrendDay     `json:"daily"`
	TopItems  []ItemTotal    `json:"topItems"`
	ItemTrend []ItemTrendDay `json:"itemTrend"`
}

type InventoryRow struct {
	models.InventoryItem
	Status StockStatus `json:"status"`
}

type AttendanceRow struct {
	models.AttendanceRecord
	Hours  int         `json:"hours"`
	Status ShiftStatus `json:"status"`
}

type AttendanceView struct {
	Rows             []AttendanceRow `json:"rows"`
	PresentToday     int             `json:"presentToday"`
	CurrentlyWorking int             `json:"currentlyWorking"`
	CompletedShifts  int             `json:"completedShifts"`
}

type FeedbackRow struct {
	models.FeedbackRecord
	Sentiment Sentiment `json:"sentiment"`
}

type FeedbackView struct {
	Latest        []FeedbackRow  `json:"latest"`
	Distribution  []RatingBucket `json:"distribution"`
	AverageRating string         `json:"averageRating"`
	Total         int            `json:"total"`
}

// View is everything the dashboard page renders.
type View struct {
	Source      string               `json:"source"`
	LastUpdated time.Time            `json:"lastUpdated"`
	Status      *refresh.Status      `json:"status,omitempty"`
	Summary     Summary              `json:"summary"`
	SalesTrend  SalesTrend           `json:"salesTrend"`
	LatestSales []models.SalesRecord `json:"latestSales"`
	Inventory   []InventoryRow       `json:"inventory"`
	Attendance  AttendanceView       `json:"attendance"`
	Feedback    FeedbackView         `json:"feedback"`
}

// Build derives the full view with default limits and inventory sorted by
// name.
func Build(data models.DashboardData, today string) View {
	return View{
		Source:      data.Source,
		LastUpdated: data.LastUpdated,
		Summary:     BuildSummary(data, today),
		SalesTrend:  BuildSalesTrend(data.SalesLog, today),
		LatestSales: LatestSales(data.SalesLog, LatestSalesLimit),
		Inventory:   BuildInventory(data.Inventory, SortByName, Ascending),
		Attendance:  BuildAttendance(data.Attendance, today),
		Feedback:    BuildFeedback(data.Feedback, LatestFeedbackLimit),
	}
}

func BuildSummary(data models.DashboardData, today string) Summary {
	return Summary{
		Date:          today,
		TodayRevenue:  TodayRevenue(data.SalesLog, today),
		ItemsSold:     ItemsSoldToday(data.SalesLog, today),
		StaffPresent:  StaffPresent(data.Attendance, today),
		LowStockCount: LowStockCount(data.Inventory),
	}
}

func BuildSalesTrend(sales []models.SalesRecord, today string) SalesTrend {
	top, itemTrend := TopItemTrend(sales, today)
	return SalesTrend{
		Daily:     DailyRevenueTrend(sales, today),
		TopItems:  top,
		ItemTrend: itemTrend,
	}
}

func BuildInventory(inventory []models.InventoryItem, field SortField, order SortOrder) []InventoryRow {
	sorted := SortInventory(inventory, field, order)
	rows := make([]InventoryRow, 0, len(sorted))
	for _, it := range sorted {
		rows = append(rows, InventoryRow{InventoryItem: it, Status: StockStatusOf(it)})
	}
	return rows
}

// BuildAttendance lists today's attendance with hours worked.
func BuildAttendance(attendance []models.AttendanceRecord, today string) AttendanceView {
	v := AttendanceView{Rows: []AttendanceRow{}}
	for _, a := range attendance {
		if a.Date != today {
			continue
		}
		hours := ShiftHours(a.TimeIn, a.TimeOut)
		v.Rows = append(v.Rows, AttendanceRow{AttendanceRecord: a, Hours: hours, Status: ShiftStatusOf(hours)})
		if a.Open() {
			v.CurrentlyWorking++
		}
		if hours >= 8 {
			v.CompletedShifts++
		}
	}
	v.PresentToday = len(v.Rows)
	return v
}

func BuildFeedback(feedback []models.FeedbackRecord, limit int) FeedbackView {
	latest := LatestFeedback(feedback, limit)
	rows := make([]FeedbackRow, 0, len(latest))
	for _, f := range latest {
		rows = append(rows, FeedbackRow{FeedbackRecord: f, Sentiment: SentimentOf(f.Rating)})
	}
	return FeedbackView{
		Latest:        rows,
		Distribution:  RatingDistribution(feedback),
		AverageRating: AverageRating(feedback),
		Total:         len(feedback),
	}
}
