package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cafe-dashboard/internal/models"
	"cafe-dashboard/internal/refresh"
	"cafe-dashboard/internal/sample"
	"cafe-dashboard/internal/source"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	data       models.DashboardData
	status     refresh.Status
	refreshErr error
	refreshes  int
}

func (p *fakeProvider) Snapshot() models.DashboardData { return p.data }
func (p *fakeProvider) Status() refresh.Status         { return p.status }

func (p *fakeProvider) Refresh(ctx context.Context) (source.Cycle, error) {
	p.refreshes++
	if p.refreshErr != nil {
		return source.Cycle{}, p.refreshErr
	}
	return source.Cycle{ID: "cycle-1", Data: p.data}, nil
}

func newTestApp(p Provider) *fiber.App {
	h := NewHandlers(p, time.UTC)
	h.now = func() time.Time { return time.Date(2025, 7, 31, 16, 0, 0, 0, time.UTC) }

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		},
	})
	api := app.Group("/api")
	api.Get("/health", h.HealthHandler())
	api.Get("/status", h.StatusHandler())
	api.Post("/refresh", h.RefreshHandler())
	api.Get("/snapshot", h.SnapshotHandler())
	api.Get("/dashboard", h.DashboardHandler())
	api.Get("/dashboard/summary", h.SummaryHandler())
	api.Get("/dashboard/sales-trend", h.SalesTrendHandler())
	api.Get("/dashboard/sales/latest", h.LatestSalesHandler())
	api.Get("/dashboard/inventory", h.InventoryHandler())
	api.Get("/dashboard/attendance", h.AttendanceHandler())
	api.Get("/dashboard/feedback", h.FeedbackHandler())
	api.Get("/dashboard/export.xlsx", h.ExportHandler())
	return app
}

func sampleProvider() *fakeProvider {
	return &fakeProvider{
		data:   models.DashboardData{Sections: sample.Sections(), Source: source.TierSample},
		status: refresh.Status{Source: source.TierSample, Error: "live sources unavailable", IntervalSeconds: 60},
	}
}

func doRequest(t *testing.T, app *fiber.App, method, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func TestHealthHandler(t *testing.T) {
	resp, body := doRequest(t, newTestApp(sampleProvider()), http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestSummaryHandler(t *testing.T) {
	resp, body := doRequest(t, newTestApp(sampleProvider()), http.MethodGet, "/api/dashboard/summary")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Date          string `json:"date"`
		TodayRevenue  string `json:"todayRevenue"`
		ItemsSold     int    `json:"itemsSold"`
		StaffPresent  int    `json:"staffPresent"`
		LowStockCount int    `json:"lowStockCount"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "2025-07-31", got.Date)
	assert.Equal(t, "304", got.TodayRevenue)
	assert.Equal(t, 10, got.ItemsSold)
	assert.Equal(t, 2, got.StaffPresent)
	assert.Equal(t, 2, got.LowStockCount)
}

func TestDashboardHandler_IncludesStatus(t *testing.T) {
	resp, body := doRequest(t, newTestApp(sampleProvider()), http.MethodGet, "/api/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &got))
	for _, key := range []string{"summary", "salesTrend", "latestSales", "inventory", "attendance", "feedback", "status"} {
		assert.Contains(t, got, key)
	}

	var st refresh.Status
	require.NoError(t, json.Unmarshal(got["status"], &st))
	assert.Equal(t, "live sources unavailable", st.Error)
}

func TestLatestSalesHandler_Limit(t *testing.T) {
	app := newTestApp(sampleProvider())

	resp, body := doRequest(t, app, http.MethodGet, "/api/dashboard/sales/latest?limit=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sales []models.SalesRecord
	require.NoError(t, json.Unmarshal(body, &sales))
	require.Len(t, sales, 2)
	assert.Equal(t, "15:45", sales[0].Time)

	resp, body = doRequest(t, app, http.MethodGet, "/api/dashboard/sales/latest?limit=zero")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"limit must be a positive integer"}`, string(body))
}

func TestQueryLimit_RejectsMalformedValues(t *testing.T) {
	app := newTestApp(sampleProvider())

	for _, limit := range []string{"3abc", "0", "-2", "1.5", "%203"} {
		resp, _ := doRequest(t, app, http.MethodGet, "/api/dashboard/feedback?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "limit=%s", limit)
	}
	resp, _ := doRequest(t, app, http.MethodGet, "/api/dashboard/sales/latest?limit=3abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInventoryHandler_Sort(t *testing.T) {
	app := newTestApp(sampleProvider())

	resp, body := doRequest(t, app, http.MethodGet, "/api/dashboard/inventory?sort=stock&order=desc")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Items         []InventoryRow `json:"items"`
		LowStockCount int            `json:"lowStockCount"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Items, 4)
	assert.Equal(t, "Tea Leaves", got.Items[0].ItemName)
	assert.Equal(t, StockLow, got.Items[3].Status)
	assert.Equal(t, 2, got.LowStockCount)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/dashboard/inventory?sort=price")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doRequest(t, app, http.MethodGet, "/api/dashboard/inventory?order=up")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeedbackHandler(t *testing.T) {
	resp, body := doRequest(t, newTestApp(sampleProvider()), http.MethodGet, "/api/dashboard/feedback?limit=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got FeedbackView
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Latest, 1)
	assert.Equal(t, "2025-07-31", got.Latest[0].Date)
	assert.Equal(t, "4.7", got.AverageRating)
	assert.Len(t, got.Distribution, 5)
}

func TestAttendanceHandler(t *testing.T) {
	resp, body := doRequest(t, newTestApp(sampleProvider()), http.MethodGet, "/api/dashboard/attendance")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got AttendanceView
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 2, got.PresentToday)
	assert.Equal(t, 2, got.CompletedShifts)
}

func TestRefreshHandler(t *testing.T) {
	p := sampleProvider()
	resp, body := doRequest(t, newTestApp(p), http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, p.refreshes)

	var st refresh.Status
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, source.TierSample, st.Source)
}

func TestRefreshHandler_Errors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{refresh.ErrStopped, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		p := sampleProvider()
		p.refreshErr = tt.err
		resp, _ := doRequest(t, newTestApp(p), http.MethodPost, "/api/refresh")
		assert.Equal(t, tt.code, resp.StatusCode, "%v", tt.err)
	}
}

func TestExportHandler(t *testing.T) {
	resp, body := doRequest(t, newTestApp(sampleProvider()), http.MethodGet, "/api/dashboard/export.xlsx")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "cafe-dashboard-2025-07-31.xlsx")
	assert.NotEmpty(t, body)
}

func TestSnapshotHandler(t *testing.T) {
	resp, body := doRequest(t, newTestApp(sampleProvider()), http.MethodGet, "/api/snapshot")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.DashboardData
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, source.TierSample, got.Source)
	assert.Len(t, got.SalesLog, 4)
}
