package laborder

import (
	"fmt"
	"time"
)

func day(s string) Datetime {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return NewDatetime(t)
}

// encounter builds an encounter at date with one pending test order per
// name. An empty date gives a missing timestamp.
func encounter(id, date string, tests ...string) LabEncounter {
	enc := LabEncounter{
		ID:       id,
		Patient:  Ref{UUID: "patient-1"},
		Location: Ref{UUID: "loc-1", Display: "Outpatient Lab"},
	}
	if date != "" {
		enc.EncounterDatetime = day(date)
	}
	for i, name := range tests {
		enc.Orders = append(enc.Orders, TestOrder{
			ID:            fmt.Sprintf("%s-o%d", id, i),
			Type:          OrderTypeTestOrder,
			Concept:       Ref{Display: name},
			DateActivated: enc.EncounterDatetime,
		})
	}
	return enc
}

// numbered returns n encounters one day apart, newest first, with IDs
// "e01".."eNN".
func numbered(n int) []LabEncounter {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]LabEncounter, n)
	for i := 0; i < n; i++ {
		out[i] = LabEncounter{
			ID:                fmt.Sprintf("e%02d", i+1),
			EncounterDatetime: NewDatetime(start.AddDate(0, 0, n-i)),
			Orders: []TestOrder{{
				Type:    OrderTypeTestOrder,
				Concept: Ref{Display: "Glucose"},
			}},
		}
	}
	return out
}

func ids(encounters []LabEncounter) []string {
	out := make([]string, len(encounters))
	for i, e := range encounters {
		out[i] = e.ID
	}
	return out
}

func rowIDs(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
