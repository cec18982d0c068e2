// Package dashboard derives the dashboard view-model from a snapshot and
// serves it over HTTP.
package dashboard

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"cafe-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"

	TrendDays           = 7
	TopItemCount        = 3
	LatestSalesLimit    = 10
	LatestFeedbackLimit = 5
)

// Today is the calendar date of now in loc, as stored in the records.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}

func TodayRevenue(sales []models.SalesRecord, today string) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		if s.Date == today {
			total = total.Add(s.Amount())
		}
	}
	return total
}

func ItemsSoldToday(sales []models.SalesRecord, today string) int {
	n := 0
	for _, s := range sales {
		if s.Date == today {
			n += s.Quantity
		}
	}
	return n
}

// StaffPresent counts today's attendance rows with a clock-in.
func StaffPresent(attendance []models.AttendanceRecord, today string) int {
	n := 0
	for _, a := range attendance {
		if a.Date == today && a.TimeIn != "" {
			n++
		}
	}
	return n
}

func LowStockCount(inventory []models.InventoryItem) int {
	n := 0
	for _, it := range inventory {
		if it.StockLeft <= it.ReorderThreshold {
			n++
		}
	}
	return n
}

type StockStatus string

const (
	StockLow    StockStatus = "Low"
	StockMedium StockStatus = "Medium"
	StockGood   StockStatus = "Good"
)

func StockStatusOf(it models.InventoryItem) StockStatus {
	switch {
	case it.StockLeft <= it.ReorderThreshold:
		return StockLow
	case float64(it.StockLeft) <= float64(it.ReorderThreshold)*1.5:
		return StockMedium
	default:
		return StockGood
	}
}

// ShiftHours is the whole number of hours between clock-in and clock-out on
// the same day. Open shifts, unparseable times and negative spans give 0.
func ShiftHours(timeIn, timeOut string) int {
	in, ok := parseClock(timeIn)
	if !ok {
		return 0
	}
	out, ok := parseClock(timeOut)
	if !ok {
		return 0
	}
	return max(0, int(out.Sub(in)/time.Hour))
}

func parseClock(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type ShiftStatus string

const (
	ShiftActive   ShiftStatus = "Active"
	ShiftShort    ShiftStatus = "Short"
	ShiftPartial  ShiftStatus = "Partial"
	ShiftComplete ShiftStatus = "Complete"
)

func ShiftStatusOf(hours int) ShiftStatus {
	switch {
	case hours <= 0:
		return ShiftActive
	case hours < 6:
		return ShiftShort
	case hours < 8:
		return ShiftPartial
	default:
		return ShiftComplete
	}
}

// TrendDay is one day of the sales trend, oldest first.
type TrendDay struct {
	Date  string          `json:"date"`
	Day   string          `json:"day"` // Mon, Tue, ...
	Total decimal.Decimal `json:"total"`
}

// trendWindow lists the TrendDays dates ending on today.
func trendWindow(today string) []time.Time {
	end, err := time.Parse(DateLayout, today)
	if err != nil {
		return nil
	}
	days := make([]time.Time, TrendDays)
	for i := range days {
		days[i] = end.AddDate(0, 0, i-(TrendDays-1))
	}
	return days
}

// DailyRevenueTrend returns revenue per day for the seven days ending on
// today, zero-filled.
func DailyRevenueTrend(sales []models.SalesRecord, today string) []TrendDay {
	window := trendWindow(today)
	totals := make(map[string]decimal.Decimal, len(window))
	for _, s := range sales {
		totals[s.Date] = totals[s.Date].Add(s.Amount())
	}

	out := make([]TrendDay, 0, len(window))
	for _, d := range window {
		date := d.Format(DateLayout)
		out = append(out, TrendDay{
			Date:  date,
			Day:   d.Format("Mon"),
			Total: totals[date],
		})
	}
	return out
}

type ItemTotal struct {
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity"`
}

// TopItems ranks items by total quantity over all sales. Ties keep the order
// of first appearance.
func TopItems(sales []models.SalesRecord, n int) []ItemTotal {
	index := make(map[string]int)
	var items []ItemTotal
	for _, s := range sales {
		i, ok := index[s.ItemName]
		if !ok {
			i = len(items)
			index[s.ItemName] = i
			items = append(items, ItemTotal{ItemName: s.ItemName})
		}
		items[i].Quantity += s.Quantity
	}
	slices.SortStableFunc(items, func(a, b ItemTotal) int {
		return cmp.Compare(b.Quantity, a.Quantity)
	})
	if len(items) > n {
		items = items[:n]
	}
	if items == nil {
		items = []ItemTotal{}
	}
	return items
}

type ItemTrendDay struct {
	Date       string         `json:"date"`
	Day        string         `json:"day"`
	Quantities map[string]int `json:"quantities"`
}

// TopItemTrend is the per-day quantity of each top item over the trend
// window. Every top item has an entry on every day.
func TopItemTrend(sales []models.SalesRecord, today string) ([]ItemTotal, []ItemTrendDay) {
	top := TopItems(sales, TopItemCount)
	window := trendWindow(today)

	days := make([]ItemTrendDay, 0, len(window))
	for _, d := range window {
		date := d.Format(DateLayout)
		q := make(map[string]int, len(top))
		for _, it := range top {
			q[it.ItemName] = 0
		}
		for _, s := range sales {
			if s.Date != date {
				continue
			}
			if _, ok := q[s.ItemName]; ok {
				q[s.ItemName] += s.Quantity
			}
		}
		days = append(days, ItemTrendDay{Date: date, Day: d.Format("Mon"), Quantities: q})
	}
	return top, days
}

type RatingBucket struct {
	Rating     int `json:"rating"`
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// RatingDistribution always has five buckets, ratings 1 to 5.
func RatingDistribution(feedback []models.FeedbackRecord) []RatingBucket {
	counts := make([]int, models.MaxRating+1)
	for _, f := range feedback {
		if f.Rating >= models.MinRating && f.Rating <= models.MaxRating {
			counts[f.Rating]++
		}
	}

	out := make([]RatingBucket, 0, models.MaxRating)
	for r := models.MinRating; r <= models.MaxRating; r++ {
		b := RatingBucket{Rating: r, Count: counts[r]}
		if len(feedback) > 0 {
			b.Percentage = int(math.Round(float64(counts[r]) / float64(len(feedback)) * 100))
		}
		out = append(out, b)
	}
	return out
}

// AverageRating is the mean rating to one decimal place, "0.0" when there is
// no feedback.
func AverageRating(feedback []models.FeedbackRecord) string {
	if len(feedback) == 0 {
		return "0.0"
	}
	sum := 0
	for _, f := range feedback {
		sum += f.Rating
	}
	return decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(feedback)))).
		StringFixed(1)
}

type Sentiment string

const (
	SentimentPoor      Sentiment = "Poor"
	SentimentAverage   Sentiment = "Average"
	SentimentGood      Sentiment = "Good"
	SentimentExcellent Sentiment = "Excellent"
)

func SentimentOf(rating int) Sentiment {
	switch {
	case rating <= 2:
		return SentimentPoor
	case rating == 3:
		return SentimentAverage
	case rating == 4:
		return SentimentGood
	default:
		return SentimentExcellent
	}
}

// LatestSales returns up to limit sales, newest first by date and time. The
// input is not modified.
func LatestSales(sales []models.SalesRecord, limit int) []models.SalesRecord {
	out := slices.Clone(sales)
	slices.SortStableFunc(out, func(a, b models.SalesRecord) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(normalizeClock(b.Time), normalizeClock(a.Time))
	})
	return head(out, limit)
}

// normalizeClock pads "9:05" to "09:05" so clock strings compare correctly.
func normalizeClock(s string) string {
	if t, ok := parseClock(s); ok {
		return t.Format("15:04:05")
	}
	return s
}

func LatestFeedback(feedback []models.FeedbackRecord, limit int) []models.FeedbackRecord {
	out := slices.Clone(feedback)
	slices.SortStableFunc(out, func(a, b models.FeedbackRecord) int {
		return cmp.Compare(b.Date, a.Date)
	})
	return head(out, limit)
}

type SortField string

const (
	SortByName  SortField = "name"
	SortByStock SortField = "stock"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// SortInventory returns a sorted copy. Names compare case-insensitively.
func SortInventory(inventory []models.InventoryItem, field SortField, order SortOrder) []models.InventoryItem {
	out := slices.Clone(inventory)
	if out == nil {
		out = []models.InventoryItem{}
	}
	slices.SortStableFunc(out, func(a, b models.InventoryItem) int {
		var c int
		if field == SortByStock {
			c = cmp.Compare(a.StockLeft, b.StockLeft)
		} else {
			c = cmp.Compare(strings.ToLower(a.ItemName), strings.ToLower(b.ItemName))
		}
		if order == Descending {
			return -c
		}
		return c
	})
	return out
}

func head[T any](in []T, limit int) []T {
	if in == nil {
		return []T{}
	}
	if limit >= 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}
