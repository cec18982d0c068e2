package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"cafe-dashboard/internal/models"
	"cafe-dashboard/internal/refresh"
	"cafe-dashboard/internal/source"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Provider is the snapshot owner. *refresh.Scheduler satisfies it.
type Provider interface {
	Snapshot() models.DashboardData
	Status() refresh.Status
	Refresh(ctx context.Context) (source.Cycle, error)
}

type Handlers struct {
	provider   Provider
	loc        *time.Location
	now        func() time.Time
	refreshMax time.Duration // how long a manual refresh request waits
}

func NewHandlers(p Provider, loc *time.Location) *Handlers {
	if loc == nil {
		loc = time.Local
	}
	return &Handlers{provider: p, loc: loc, now: time.Now, refreshMax: 30 * time.Second}
}

func (h *Handlers) today() string {
	return Today(h.now(), h.loc)
}

// GET /api/health
func (h *Handlers) HealthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// GET /api/status
func (h *Handlers) StatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(h.provider.Status())
	}
}

// POST /api/refresh
// Joins the running cycle if there is one.
func (h *Handlers) RefreshHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), h.refreshMax)
		defer cancel()

		if _, err := h.provider.Refresh(ctx); err != nil {
			switch {
			case errors.Is(err, refresh.ErrStopped):
				return fiber.NewError(fiber.StatusServiceUnavailable, "refresh scheduler is shutting down")
			case errors.Is(err, context.DeadlineExceeded):
				return fiber.NewError(fiber.StatusGatewayTimeout, "refresh is still running, check /api/status")
			default:
				slog.Error("manual refresh failed", "error", err)
				return fiber.NewError(fiber.StatusInternalServerError, "refresh failed")
			}
		}
		return c.JSON(h.provider.Status())
	}
}

// GET /api/snapshot
func (h *Handlers) SnapshotHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(h.provider.Snapshot())
	}
}

// GET /api/dashboard
func (h *Handlers) DashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		v := Build(h.provider.Snapshot(), h.today())
		st := h.provider.Status()
		v.Status = &st
		return c.JSON(v)
	}
}

// GET /api/dashboard/summary
func (h *Handlers) SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(BuildSummary(h.provider.Snapshot(), h.today()))
	}
}

// GET /api/dashboard/sales-trend
func (h *Handlers) SalesTrendHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(BuildSalesTrend(h.provider.Snapshot().SalesLog, h.today()))
	}
}

// GET /api/dashboard/sales/latest?limit=10
func (h *Handlers) LatestSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := queryLimit(c, LatestSalesLimit)
		if err != nil {
			return err
		}
		return c.JSON(LatestSales(h.provider.Snapshot().SalesLog, limit))
	}
}

// GET /api/dashboard/inventory?sort=name|stock&order=asc|desc
func (h *Handlers) InventoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		field := SortField(c.Query("sort", string(SortByName)))
		if field != SortByName && field != SortByStock {
			return fiber.NewError(fiber.StatusBadRequest, "sort must be name or stock")
		}
		order := SortOrder(c.Query("order", string(Ascending)))
		if order != Ascending && order != Descending {
			return fiber.NewError(fiber.StatusBadRequest, "order must be asc or desc")
		}

		inv := h.provider.Snapshot().Inventory
		return c.JSON(fiber.Map{
			"items":         BuildInventory(inv, field, order),
			"lowStockCount": LowStockCount(inv),
		})
	}
}

// GET /api/dashboard/attendance
func (h *Handlers) AttendanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(BuildAttendance(h.provider.Snapshot().Attendance, h.today()))
	}
}

// GET /api/dashboard/feedback?limit=5
func (h *Handlers) FeedbackHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := queryLimit(c, LatestFeedbackLimit)
		if err != nil {
			return err
		}
		return c.JSON(BuildFeedback(h.provider.Snapshot().Feedback, limit))
	}
}

// GET /api/dashboard/export.xlsx
func (h *Handlers) ExportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		today := h.today()
		var buf bytes.Buffer
		if err := WriteWorkbook(&buf, h.provider.Snapshot(), today); err != nil {
			slog.Error("workbook export failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "could not build workbook")
		}

		c.Attachment(fmt.Sprintf("cafe-dashboard-%s.xlsx", today))
		c.Set(fiber.HeaderContentType, xlsxContentType)
		return c.Send(buf.Bytes())
	}
}

func queryLimit(c *fiber.Ctx, def int) (int, error) {
	s := c.Query("limit")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
	}
	return n, nil
}
