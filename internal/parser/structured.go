package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"cafe-dashboard/internal/models"
)

// flexString accepts a JSON string, number or bool and keeps its text; null is "".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*f = flexString(t)
	case float64:
		*f = flexString(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*f = flexString(strconv.FormatBool(t))
	default:
		*f = ""
	}
	return nil
}

// flexInt accepts a JSON number or a numeric string; anything else is 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*f = flexInt(math.Trunc(t))
	case string:
		*f = flexInt(LenientInt(t))
	default:
		*f = 0
	}
	return nil
}

type rawInventoryItem struct {
	ItemName         flexString `json:"itemName"`
	StockLeft        flexInt    `json:"stockLeft"`
	ReorderThreshold flexInt    `json:"reorderThreshold"`
}

type rawAttendanceRecord struct {
	StaffName flexString `json:"staffName"`
	Date      flexString `json:"date"`
	TimeIn    flexString `json:"timeIn"`
	TimeOut   flexString `json:"timeOut"`
}

type rawFeedbackRecord struct {
	Date     flexString `json:"date"`
	Rating   flexInt    `json:"rating"`
	Feedback flexString `json:"feedback"`
}

// IsNull reports whether raw is absent or the JSON literal null.
func IsNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeArray decodes a JSON array element by element. Elements that do not
// decode into T are skipped; a value that is not an array is an error.
func decodeArray[T any, R any](raw json.RawMessage, convert func(T) R, valid func(R) bool) ([]R, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("section is not an array: %w", err)
	}
	out := make([]R, 0, len(elems))
	for _, e := range elems {
		var t T
		if err := json.Unmarshal(e, &t); err != nil {
			continue
		}
		rec := convert(t)
		if valid(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// DecodeInventory decodes a pre-structured inventory array.
func DecodeInventory(raw json.RawMessage) ([]models.InventoryItem, error) {
	return decodeArray(raw, func(r rawInventoryItem) models.InventoryItem {
		return models.InventoryItem{
			ItemName:         trim(r.ItemName),
			StockLeft:        nonNegative(int(r.StockLeft)),
			ReorderThreshold: nonNegative(int(r.ReorderThreshold)),
		}
	}, ValidInventory)
}

// DecodeAttendance decodes a pre-structured attendance array.
func DecodeAttendance(raw json.RawMessage) ([]models.AttendanceRecord, error) {
	return decodeArray(raw, func(r rawAttendanceRecord) models.AttendanceRecord {
		return models.AttendanceRecord{
			StaffName: trim(r.StaffName),
			Date:      trim(r.Date),
			TimeIn:    trim(r.TimeIn),
			TimeOut:   trim(r.TimeOut),
		}
	}, ValidAttendance)
}

// DecodeFeedback decodes a pre-structured feedback array.
func DecodeFeedback(raw json.RawMessage) ([]models.FeedbackRecord, error) {
	return decodeArray(raw, func(r rawFeedbackRecord) models.FeedbackRecord {
		return models.FeedbackRecord{
			Date:     trim(r.Date),
			Rating:   int(r.Rating),
			Feedback: string(r.Feedback),
		}
	}, ValidFeedback)
}
