package laborder

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDecodeSnapshot_BareArray(t *testing.T) {
	snap, err := DecodeSnapshot(strings.NewReader(`[
		{"uuid": "a", "encounterDatetime": "2024-03-10T14:30:00.000+0000"},
		{"uuid": "b", "encounterDatetime": "2024-03-09"}
	]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(snap.Encounters); !equalStrings(got, []string{"a", "b"}) {
		t.Errorf("expected [a b], got %v", got)
	}
	want := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	if !snap.Encounters[0].EncounterDatetime.Valid || !snap.Encounters[0].EncounterDatetime.Time.Equal(want) {
		t.Errorf("expected %v, got %+v", want, snap.Encounters[0].EncounterDatetime)
	}
}

func TestDecodeSnapshot_ResultsEnvelope(t *testing.T) {
	snap, err := DecodeSnapshot(strings.NewReader(`{"results": [{"uuid": "a"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Encounters) != 1 || snap.Encounters[0].ID != "a" {
		t.Errorf("unexpected encounters %+v", snap.Encounters)
	}
	if snap.Loading || snap.Err != nil {
		t.Errorf("expected a settled snapshot, got %+v", snap)
	}
}

func TestDecodeSnapshot_MalformedTimestampsTolerated(t *testing.T) {
	snap, err := DecodeSnapshot(strings.NewReader(`[
		{"uuid": "a", "encounterDatetime": "31/02/2024",
		 "orders": [{"uuid": "o", "type": "testorder", "dateActivated": 12345, "dateStopped": null}]}
	]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	enc := snap.Encounters[0]
	if enc.EncounterDatetime.Valid {
		t.Error("expected malformed encounter datetime to be invalid")
	}
	if enc.Orders[0].DateActivated.Valid || enc.Orders[0].DateStopped.Valid {
		t.Error("expected non-string order dates to be invalid")
	}
	if got := OrderStatus(enc.Orders[0]); got != StatusRequested {
		t.Errorf("expected Requested, got %s", got)
	}
}

func TestDecodeSnapshot_InvalidDocument(t *testing.T) {
	for _, doc := range []string{"", "{", `"just a string"`, `{"results": "nope"}`} {
		if _, err := DecodeSnapshot(strings.NewReader(doc)); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestParseDatetime(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"2024-03-10T14:30:00.000+0000", true},
		{"2024-03-10T14:30:00.000-0500", true},
		{"2024-03-10T14:30:00Z", true},
		{"2024-03-10T14:30:00.123456789+02:00", true},
		{"2024-03-10 14:30:00", true},
		{"2024-03-10", true},
		{"", false},
		{"   ", false},
		{"10/03/2024", false},
		{"2024-13-40", false},
	}
	for _, tt := range tests {
		if got := ParseDatetime(tt.in); got.Valid != tt.valid {
			t.Errorf("ParseDatetime(%q).Valid = %v, want %v", tt.in, got.Valid, tt.valid)
		}
	}
}

func TestDatetime_JSON(t *testing.T) {
	d := NewDatetime(time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC))
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"2024-03-10T14:30:00Z"` {
		t.Errorf("unexpected encoding %s", data)
	}

	data, _ = json.Marshal(Datetime{})
	if string(data) != "null" {
		t.Errorf("expected null for invalid datetime, got %s", data)
	}
}

func TestDatetime_Before(t *testing.T) {
	early, late, none := day("2024-01-01"), day("2024-06-01"), Datetime{}
	tests := []struct {
		name string
		a, b Datetime
		want bool
	}{
		{"earlier", early, late, true},
		{"later", late, early, false},
		{"equal", early, early, false},
		{"invalid before valid", none, early, true},
		{"valid not before invalid", early, none, false},
		{"invalid not before invalid", none, none, false},
	}
	for _, tt := range tests {
		if got := tt.a.Before(tt.b); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
