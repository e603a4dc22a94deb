package laborder

import (
	"github.com/ehr/laborders/pkg/pagination"
)

// Snapshot is the result of one fetch cycle. While Loading is set or Err is
// non-nil the encounters are ignored.
type Snapshot struct {
	Encounters []LabEncounter
	Loading    bool
	Err        error
}

// ViewStatus tells the host which of the table's states to render.
type ViewStatus string

const (
	ViewLoading ViewStatus = "loading"
	ViewError   ViewStatus = "error"
	ViewEmpty   ViewStatus = "empty"
	ViewReady   ViewStatus = "ready"
)

const (
	emptyMessage = "No test orders to display"
	emptyHelper  = "Check the filters above"
)

// TableState is everything the host's input controls can change.
type TableState struct {
	Search    string           `json:"search"`
	RowFilter string           `json:"row_filter,omitempty"`
	Page      pagination.State `json:"page"`
	Expanded  map[string]bool  `json:"expanded,omitempty"`
}

// NewTableState returns the initial state for a table of the given page
// size.
func NewTableState(pageSize int) TableState {
	return TableState{Page: pagination.NewState(pageSize)}
}

// Options configures table construction.
type Options struct {
	PageSize   int
	DateLayout string
}

// View is the table model handed to the host.
type View struct {
	Status     ViewStatus        `json:"status"`
	Error      string            `json:"error,omitempty"`
	Message    string            `json:"message,omitempty"`
	Helper     string            `json:"helper,omitempty"`
	Columns    []Column          `json:"columns"`
	Legend     []LegendEntry     `json:"legend"`
	Rows       []Row             `json:"rows"`
	TotalItems int               `json:"total_items"`
	Page       pagination.State  `json:"page"`
	PageSizes  []int             `json:"page_sizes"`
	Links      []pagination.Link `json:"links,omitempty"`
}

// Build runs the pipeline for one snapshot: newest-first sort, page slice,
// test-name search over the page, row projection, then the all-column row
// filter. The returned view's Page is state.Page reconciled with the
// snapshot's size.
func Build(snap Snapshot, state TableState, opts Options) View {
	v := View{
		Columns:   Columns(),
		Legend:    Legend(),
		Rows:      []Row{},
		Page:      state.Page,
		PageSizes: pagination.PageSizes,
	}
	if v.Page.PageSize == 0 {
		v.Page = pagination.NewState(opts.PageSize)
	}

	switch {
	case snap.Loading:
		v.Status = ViewLoading
		return v
	case snap.Err != nil:
		v.Status = ViewError
		v.Error = snap.Err.Error()
		return v
	}

	sorted := SortNewestFirst(snap.Encounters)
	v.Page.SetTotal(len(sorted))
	v.TotalItems = len(sorted)

	page := pagination.Slice(v.Page, sorted)
	matched := FilterByTestName(page, state.Search)

	rows := make([]Row, 0, len(matched))
	popts := ProjectOptions{DateLayout: opts.DateLayout}
	for i := range matched {
		row := Project(&matched[i], popts)
		if state.Expanded[row.ID] {
			row.Expanded = true
			row.Results = row.Encounter.Obs
		}
		rows = append(rows, row)
	}

	if state.RowFilter != "" {
		set := NewRowSet(rows)
		rows = set.Select(FilterRowIDs(set.IDs(), v.Columns, set, state.RowFilter))
	}

	v.Rows = rows
	if len(rows) == 0 {
		v.Status = ViewEmpty
		v.Message = emptyMessage
		v.Helper = emptyHelper
		return v
	}
	v.Status = ViewReady
	return v
}

// Table owns a TableState and the latest snapshot, and applies the host's
// input events to them. A Table is not safe for concurrent use.
type Table struct {
	opts  Options
	state TableState
	snap  Snapshot
}

// NewTable returns a table in the loading state.
func NewTable(opts Options) *Table {
	return &Table{
		opts:  opts,
		state: NewTableState(opts.PageSize),
		snap:  Snapshot{Loading: true},
	}
}

// Load replaces the current snapshot. Derived state is recomputed from it on
// the next View.
func (t *Table) Load(snap Snapshot) {
	t.snap = snap
	if !snap.Loading && snap.Err == nil {
		t.state.Page.SetTotal(len(snap.Encounters))
	}
}

// SetSearch updates the test-name search text.
func (t *Table) SetSearch(text string) {
	t.state.Search = text
}

// SetRowFilter updates the all-column filter text.
func (t *Table) SetRowFilter(text string) {
	t.state.RowFilter = text
}

// GoToPage moves to page p, clamped to the valid range.
func (t *Table) GoToPage(p int) {
	t.state.Page.GoToPage(p)
}

// SetPageSize changes the page size.
func (t *Table) SetPageSize(n int) {
	t.state.Page.SetPageSize(n)
}

// ToggleExpand flips the expanded state of the row with the given ID.
func (t *Table) ToggleExpand(rowID string) {
	if t.state.Expanded == nil {
		t.state.Expanded = make(map[string]bool)
	}
	if t.state.Expanded[rowID] {
		delete(t.state.Expanded, rowID)
		return
	}
	t.state.Expanded[rowID] = true
}

// Expand marks the row with the given ID expanded. Repeated calls keep it
// expanded.
func (t *Table) Expand(rowID string) {
	if t.state.Expanded == nil {
		t.state.Expanded = make(map[string]bool)
	}
	t.state.Expanded[rowID] = true
}

// State returns a copy of the current state.
func (t *Table) State() TableState {
	st := t.state
	if t.state.Expanded != nil {
		st.Expanded = make(map[string]bool, len(t.state.Expanded))
		for k, v := range t.state.Expanded {
			st.Expanded[k] = v
		}
	}
	return st
}

// View builds the table model for the current snapshot and state.
func (t *Table) View() View {
	v := Build(t.snap, t.state, t.opts)
	t.state.Page = v.Page
	return v
}
