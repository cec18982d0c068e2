package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"cafe-dashboard/internal/models"
	"cafe-dashboard/internal/parser"
)

// webhookPayload is the primary endpoint's response. Every field is optional;
// salesLog carries raw sales CSV, the others carry arrays of records.
type webhookPayload struct {
	SalesLog   json.RawMessage `json:"salesLog"`
	Inventory  json.RawMessage `json:"inventory"`
	Attendance json.RawMessage `json:"attendance"`
	Feedback   json.RawMessage `json:"feedback"`
}

// Webhook is the primary tier: one GET that may return all four sections.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string, client *http.Client) *Webhook {
	if client == nil {
		client = http.DefaultClient
	}
	return &Webhook{url: url, client: client}
}

func (w *Webhook) Name() string { return TierPrimary }

func (w *Webhook) Acquire(ctx context.Context) Result {
	body, _, err := fetch(ctx, w.client, w.url, "application/json")
	if err != nil {
		return Unavailable(err)
	}
	sections, err := decodeWebhook(body)
	if err != nil {
		return Unavailable(err)
	}
	return Success(sections)
}

// decodeWebhook requires a JSON object and checks each field for presence.
// Absent, null or undecodable fields leave their section nil, and so does a
// salesLog without the Date and Item Name columns.
func decodeWebhook(body []byte) (models.Sections, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil || probe == nil {
		return models.Sections{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedPayload)
	}

	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return models.Sections{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var s models.Sections
	if !parser.IsNull(p.SalesLog) {
		var text string
		if err := json.Unmarshal(p.SalesLog, &text); err != nil {
			slog.Warn("webhook salesLog is not a string, using sample sales", "error", err)
		} else if strings.TrimSpace(text) != "" {
			if parser.HasColumns(text, parser.ColDate, parser.ColItemName) {
				s.SalesLog = parser.ParseSales(text)
			} else {
				slog.Warn("webhook salesLog has no Date/Item Name header, using sample sales")
			}
		}
	}
	if !parser.IsNull(p.Inventory) {
		items, err := parser.DecodeInventory(p.Inventory)
		if err != nil {
			slog.Warn("webhook inventory ignored", "error", err)
		}
		s.Inventory = items
	}
	if !parser.IsNull(p.Attendance) {
		recs, err := parser.DecodeAttendance(p.Attendance)
		if err != nil {
			slog.Warn("webhook attendance ignored", "error", err)
		}
		s.Attendance = recs
	}
	if !parser.IsNull(p.Feedback) {
		recs, err := parser.DecodeFeedback(p.Feedback)
		if err != nil {
			slog.Warn("webhook feedback ignored", "error", err)
		}
		s.Feedback = recs
	}
	return s, nil
}
