package laborder

import "strings"

const (
	DefaultDateLayout = "02-Jan-2006"
	// StatusPlaceholder fills the status column. It is not derived from the
	// encounter's results.
	StatusPlaceholder = "--"
	missingDate       = "--"
)

// Column keys of the lab orders table.
const (
	ColumnOrderDate = "orderDate"
	ColumnOrders    = "orders"
	ColumnLocation  = "location"
	ColumnStatus    = "status"
	ColumnActions   = "actions"
)

// Columns returns the fixed column set in display order.
func Columns() []Column {
	return []Column{
		{ID: 0, Key: ColumnOrderDate, Header: "Test Date"},
		{ID: 1, Key: ColumnOrders, Header: "Tests"},
		{ID: 2, Key: ColumnLocation, Header: "Location"},
		{ID: 3, Key: ColumnStatus, Header: "Status"},
		{ID: 4, Key: ColumnActions, Header: "Action"},
	}
}

// Tag is one test order rendered as a colored label.
type Tag struct {
	Name     string         `json:"name"`
	Category StatusCategory `json:"category"`
	Color    string         `json:"color"`
}

// Row is the flat table projection of one encounter.
type Row struct {
	ID        string             `json:"id"`
	OrderDate string             `json:"orderDate"`
	Tests     []Tag              `json:"orders"`
	Location  string             `json:"location"`
	Status    string             `json:"status"`
	Actions   []ActionDescriptor `json:"actions"`
	Expanded  bool               `json:"expanded"`
	Results   []Observation      `json:"results,omitempty"`

	// Encounter is the source record, kept for expanded detail views and
	// row actions.
	Encounter *LabEncounter `json:"-"`
}

// ProjectOptions controls row formatting.
type ProjectOptions struct {
	DateLayout string
}

func (o ProjectOptions) dateLayout() string {
	if o.DateLayout == "" {
		return DefaultDateLayout
	}
	return o.DateLayout
}

// Project builds the table row for an encounter.
func Project(enc *LabEncounter, opts ProjectOptions) Row {
	return Row{
		ID:        enc.ID,
		OrderDate: enc.EncounterDatetime.Format(opts.dateLayout(), missingDate),
		Tests:     testTags(enc.Orders),
		Location:  enc.Location.Display,
		Status:    StatusPlaceholder,
		Actions:   []ActionDescriptor{PrintAction(enc, nil)},
		Encounter: enc,
	}
}

// testTags renders the test orders among orders as colored tags. Other
// order kinds are skipped.
func testTags(orders []TestOrder) []Tag {
	tags := make([]Tag, 0, len(orders))
	for _, o := range orders {
		if !o.IsTestOrder() {
			continue
		}
		cat := OrderStatus(o)
		tags = append(tags, Tag{Name: o.Concept.Display, Category: cat, Color: cat.Color()})
	}
	return tags
}

// RowSet indexes projected rows by ID for cell lookups.
type RowSet struct {
	rows  []Row
	index map[string]int
}

// NewRowSet indexes rows. Later rows win on duplicate IDs.
func NewRowSet(rows []Row) *RowSet {
	idx := make(map[string]int, len(rows))
	for i, r := range rows {
		idx[r.ID] = i
	}
	return &RowSet{rows: rows, index: idx}
}

// IDs returns the row IDs in order.
func (s *RowSet) IDs() []string {
	ids := make([]string, len(s.rows))
	for i, r := range s.rows {
		ids[i] = r.ID
	}
	return ids
}

// Select returns the rows with the given IDs, in the order of ids.
func (s *RowSet) Select(ids []string) []Row {
	out := make([]Row, 0, len(ids))
	for _, id := range ids {
		if i, ok := s.index[id]; ok {
			out = append(out, s.rows[i])
		}
	}
	return out
}

// LookupCell implements CellLookup. The actions column has no searchable
// text.
func (s *RowSet) LookupCell(rowID, columnKey string) (any, bool) {
	i, ok := s.index[rowID]
	if !ok {
		return nil, false
	}
	r := s.rows[i]
	switch columnKey {
	case ColumnOrderDate:
		return r.OrderDate, true
	case ColumnOrders:
		names := make([]string, len(r.Tests))
		for j, t := range r.Tests {
			names[j] = t.Name
		}
		return strings.Join(names, " "), true
	case ColumnLocation:
		return r.Location, true
	case ColumnStatus:
		return r.Status, true
	default:
		return nil, false
	}
}
