package laborder

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// OrderTypeTestOrder is the kind tag carried by laboratory test orders.
// Other order kinds (drug orders, referrals) share the encounter but are
// not shown as tests.
const OrderTypeTestOrder = "testorder"

// Ref is a display-oriented reference to another record (location,
// patient, concept).
type Ref struct {
	UUID    string `json:"uuid"`
	Display string `json:"display"`
}

// LabEncounter is one clinical visit that produced laboratory orders and/or
// results. It is read-only once fetched.
type LabEncounter struct {
	ID                string        `json:"uuid"`
	EncounterDatetime Datetime      `json:"encounterDatetime"`
	Patient           Ref           `json:"patient"`
	Location          Ref           `json:"location"`
	Orders            []TestOrder   `json:"orders"`
	Obs               []Observation `json:"obs"`
}

// TestOrder is a request for a single laboratory test within an encounter.
type TestOrder struct {
	ID            string   `json:"uuid"`
	Type          string   `json:"type"`
	Concept       Ref      `json:"concept"`
	DateActivated Datetime `json:"dateActivated"`
	DateStopped   Datetime `json:"dateStopped"`
	// StopReason is the upstream order status recorded when the order was
	// stopped (e.g. "completed", "revoked").
	StopReason string `json:"stopReason,omitempty"`
}

// IsTestOrder reports whether the order is a laboratory test order.
func (o TestOrder) IsTestOrder() bool {
	return o.Type == OrderTypeTestOrder
}

// Observation is a single result recorded against an encounter.
type Observation struct {
	ID             string   `json:"uuid"`
	Concept        Ref      `json:"concept"`
	Value          string   `json:"value"`
	Unit           string   `json:"unit,omitempty"`
	ReferenceRange string   `json:"referenceRange,omitempty"`
	ObsDatetime    Datetime `json:"obsDatetime"`
}

// Patient is the subset of patient demographics needed by the print
// action.
type Patient struct {
	ID        string     `json:"id"`
	MRN       string     `json:"mrn"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Gender    *string    `json:"gender,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}

// FullName returns "First Last" with empty parts omitted.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Datetime is a timestamp that may be missing or unparseable. Decoding a
// Datetime never fails; bad input yields an invalid value.
type Datetime struct {
	Time  time.Time
	Valid bool
}

// NewDatetime wraps t as a valid Datetime.
func NewDatetime(t time.Time) Datetime {
	return Datetime{Time: t, Valid: true}
}

// DatetimeFromPtr converts a nullable column value.
func DatetimeFromPtr(t *time.Time) Datetime {
	if t == nil {
		return Datetime{}
	}
	return NewDatetime(*t)
}

// datetimeLayouts lists the accepted wire formats, most specific first.
var datetimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDatetime parses s with the accepted layouts.
func ParseDatetime(s string) Datetime {
	s = strings.TrimSpace(s)
	if s == "" {
		return Datetime{}
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDatetime(t)
		}
	}
	return Datetime{}
}

// Before reports whether d sorts before other. Invalid values sort as the
// minimum representable time.
func (d Datetime) Before(other Datetime) bool {
	switch {
	case !d.Valid:
		return other.Valid
	case !other.Valid:
		return false
	default:
		return d.Time.Before(other.Time)
	}
}

// Format renders the date using layout, or fallback when invalid.
func (d Datetime) Format(layout, fallback string) string {
	if !d.Valid {
		return fallback
	}
	return d.Time.Format(layout)
}

func (d Datetime) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.RFC3339))
}

func (d *Datetime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Numbers, objects and null are not timestamps.
		*d = Datetime{}
		return nil
	}
	*d = ParseDatetime(s)
	return nil
}
