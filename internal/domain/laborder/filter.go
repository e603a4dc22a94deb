package laborder

import (
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// normalizeQuery trims and lower-cases a search string.
func normalizeQuery(q string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(q))
}

// FilterByTestName keeps the encounters with at least one order whose
// concept display name contains query, ignoring case. An empty query keeps
// everything. The input order is preserved.
func FilterByTestName(encounters []LabEncounter, query string) []LabEncounter {
	q := normalizeQuery(query)
	if q == "" {
		return encounters
	}
	lower := cases.Lower(language.Und)
	out := make([]LabEncounter, 0, len(encounters))
	for _, enc := range encounters {
		for _, o := range enc.Orders {
			if strings.Contains(lower.String(o.Concept.Display), q) {
				out = append(out, enc)
				break
			}
		}
	}
	return out
}

// Column describes one table column.
type Column struct {
	ID     int    `json:"id"`
	Key    string `json:"key"`
	Header string `json:"header"`
}

// CellLookup resolves the value of a cell by row ID and column key.
type CellLookup interface {
	LookupCell(rowID, columnKey string) (any, bool)
}

// FilterRowIDs keeps the row IDs for which any column's value, coerced to a
// string, contains query ignoring case. Boolean cells never match. An empty
// query keeps every row.
func FilterRowIDs(rowIDs []string, columns []Column, cells CellLookup, query string) []string {
	q := normalizeQuery(query)
	if q == "" {
		return rowIDs
	}
	lower := cases.Lower(language.Und)
	out := make([]string, 0, len(rowIDs))
	for _, id := range rowIDs {
		for _, col := range columns {
			v, ok := cells.LookupCell(id, col.Key)
			if !ok {
				continue
			}
			if _, isBool := v.(bool); isBool {
				continue
			}
			s, err := cast.ToStringE(v)
			if err != nil {
				continue
			}
			if strings.Contains(lower.String(s), q) {
				out = append(out, id)
				break
			}
		}
	}
	return out
}
