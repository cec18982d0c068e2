package source

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"cafe-dashboard/internal/models"
	"cafe-dashboard/internal/parser"

	"golang.org/x/sync/errgroup"
)

// Tabs are the sheet-tab ids (gid) of the spreadsheet. Only Sales is required.
type Tabs struct {
	Sales      string
	Inventory  string
	Attendance string
	Feedback   string
}

// Sheets is the secondary tier: the spreadsheet's CSV export.
type Sheets struct {
	baseURL       string
	spreadsheetID string
	tabs          Tabs
	client        *http.Client
}

func NewSheets(baseURL, spreadsheetID string, tabs Tabs, client *http.Client) *Sheets {
	if client == nil {
		client = http.DefaultClient
	}
	return &Sheets{
		baseURL:       strings.TrimRight(baseURL, "/"),
		spreadsheetID: spreadsheetID,
		tabs:          tabs,
		client:        client,
	}
}

func (s *Sheets) Name() string { return TierSheets }

// ExportURL is the CSV export address of one tab.
func (s *Sheets) ExportURL(gid string) string {
	return fmt.Sprintf("%s/%s/export?format=csv&gid=%s",
		s.baseURL, url.PathEscape(s.spreadsheetID), url.QueryEscape(gid))
}

func (s *Sheets) Acquire(ctx context.Context) Result {
	salesCSV, err := s.fetchCSV(ctx, s.tabs.Sales)
	if err != nil {
		return Unavailable(fmt.Errorf("sales tab: %w", err))
	}
	if !parser.HasColumns(salesCSV, parser.ColDate, parser.ColItemName) {
		return Unavailable(fmt.Errorf("%w: sales tab has no Date/Item Name header", ErrMalformedPayload))
	}

	result := Success(models.Sections{SalesLog: parser.ParseSales(salesCSV)})

	// Optional tabs are best effort: a failure leaves the section to the sample.
	var g errgroup.Group
	if s.tabs.Inventory != "" {
		g.Go(func() error {
			if text, ok := s.optionalTab(ctx, "inventory", s.tabs.Inventory); ok {
				result.Sections.Inventory = parser.ParseInventory(text)
			}
			return nil
		})
	}
	if s.tabs.Attendance != "" {
		g.Go(func() error {
			if text, ok := s.optionalTab(ctx, "attendance", s.tabs.Attendance); ok {
				result.Sections.Attendance = parser.ParseAttendance(text)
			}
			return nil
		})
	}
	if s.tabs.Feedback != "" {
		g.Go(func() error {
			if text, ok := s.optionalTab(ctx, "feedback", s.tabs.Feedback); ok {
				result.Sections.Feedback = parser.ParseFeedback(text)
			}
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (s *Sheets) optionalTab(ctx context.Context, name, gid string) (string, bool) {
	text, err := s.fetchCSV(ctx, gid)
	if err != nil {
		slog.Warn("sheets tab unavailable, using sample section", "tab", name, "error", err)
		return "", false
	}
	return text, true
}

// fetchCSV rejects HTML answers, which is what the export returns for a
// private sheet or a login redirect.
func (s *Sheets) fetchCSV(ctx context.Context, gid string) (string, error) {
	body, header, err := fetch(ctx, s.client, s.ExportURL(gid), "text/csv")
	if err != nil {
		return "", err
	}
	if ct := header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil && mt == "text/html" {
			return "", fmt.Errorf("%w: got HTML instead of CSV", ErrMalformedPayload)
		}
	}
	return string(body), nil
}
