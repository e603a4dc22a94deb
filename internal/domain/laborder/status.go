package laborder

import "strings"

// StatusCategory classifies where a test order is in its lifecycle.
type StatusCategory string

const (
	StatusRequested StatusCategory = "Requested"
	StatusCompleted StatusCategory = "Completed"
	StatusRejected  StatusCategory = "Rejected"
)

var statusColors = map[StatusCategory]string{
	StatusRequested: "#6F6F6F",
	StatusCompleted: "green",
	StatusRejected:  "red",
}

var statusTitles = map[StatusCategory]string{
	StatusRequested: "Result Requested",
	StatusCompleted: "Result Complete",
	StatusRejected:  "Result Rejected",
}

// Color returns the display color bound to the category.
func (s StatusCategory) Color() string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return statusColors[StatusRequested]
}

// rejectedStopReasons holds the order statuses that end an order without a
// usable result. Any other stop is a normal completion.
var rejectedStopReasons = map[string]bool{
	"rejected":         true,
	"revoked":          true,
	"exception":        true,
	"declined":         true,
	"cancelled":        true,
	"entered-in-error": true,
}

// Classify derives the status category of an order from its activation and
// stop times and the reason recorded with the stop.
func Classify(activatedAt, stoppedAt Datetime, stopReason string) StatusCategory {
	if !stoppedAt.Valid {
		return StatusRequested
	}
	if rejectedStopReasons[strings.ToLower(strings.TrimSpace(stopReason))] {
		return StatusRejected
	}
	return StatusCompleted
}

// OrderStatus classifies a single test order.
func OrderStatus(o TestOrder) StatusCategory {
	return Classify(o.DateActivated, o.DateStopped, o.StopReason)
}

// LegendEntry describes one category in the table's color key.
type LegendEntry struct {
	Category StatusCategory `json:"category"`
	Color    string         `json:"color"`
	Title    string         `json:"title"`
}

// Legend returns the color key in display order.
func Legend() []LegendEntry {
	cats := []StatusCategory{StatusRequested, StatusCompleted, StatusRejected}
	out := make([]LegendEntry, 0, len(cats))
	for _, c := range cats {
		out = append(out, LegendEntry{Category: c, Color: c.Color(), Title: statusTitles[c]})
	}
	return out
}
