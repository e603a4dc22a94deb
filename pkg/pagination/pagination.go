package pagination

import (
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageSize = 10
	FirstPage       = 1
)

// PageSizes is the fixed set of page sizes a table may be shown with.
var PageSizes = []int{10, 20, 30, 40, 50}

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page     int
	PageSize int
}

// FromContext extracts page parameters from the echo context. Missing or
// non-numeric values come back as zero and are resolved by State.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page, _ = strconv.Atoi(c.QueryParam("_page"))
	}

	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	if size <= 0 {
		size, _ = strconv.Atoi(c.QueryParam("_count"))
	}

	return Params{Page: page, PageSize: size}
}

// State tracks the page a table is on. The zero value is not usable; call
// NewState.
type State struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
}

// NewState returns a State on the first page. An unsupported page size is
// snapped the same way SetPageSize does.
func NewState(pageSize int) State {
	return State{Page: FirstPage, PageSize: snapPageSize(pageSize)}
}

// LastPage returns the highest valid page number. An empty collection still
// has one (empty) page.
func (s State) LastPage() int {
	if s.TotalItems <= 0 || s.PageSize <= 0 {
		return FirstPage
	}
	return (s.TotalItems + s.PageSize - 1) / s.PageSize
}

// SetTotal records the size of the ordered, unfiltered collection and pulls
// the current page back into range.
func (s *State) SetTotal(n int) {
	if n < 0 {
		n = 0
	}
	s.TotalItems = n
	if n == 0 {
		s.Page = FirstPage
		return
	}
	s.clamp()
}

// SetPageSize switches to one of PageSizes and re-clamps the current page.
func (s *State) SetPageSize(n int) {
	s.PageSize = snapPageSize(n)
	s.clamp()
}

// GoToPage moves to page p, clamped into [1, LastPage()].
func (s *State) GoToPage(p int) {
	s.Page = p
	s.clamp()
}

func (s *State) clamp() {
	if s.Page < FirstPage {
		s.Page = FirstPage
	}
	if last := s.LastPage(); s.Page > last {
		s.Page = last
	}
}

// Offset returns the index of the first item on the current page.
func (s State) Offset() int {
	return (s.Page - 1) * s.PageSize
}

// HasNext returns true if there are more items after the current page.
func (s State) HasNext() bool {
	return s.Page < s.LastPage()
}

// HasPrevious returns true if the current page is not the first one.
func (s State) HasPrevious() bool {
	return s.Page > FirstPage
}

// Slice returns the items on the current page of an ordered collection,
// truncated at the collection's end. The result shares storage with items.
func Slice[T any](s State, items []T) []T {
	if s.PageSize <= 0 {
		return nil
	}
	start := s.Offset()
	if start < 0 || start >= len(items) {
		return items[:0:0]
	}
	end := start + s.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end:end]
}

// snapPageSize maps n onto PageSizes: the largest allowed size not above n,
// or the smallest allowed size when n is below all of them.
func snapPageSize(n int) int {
	best := PageSizes[0]
	for _, size := range PageSizes {
		if size <= n {
			best = size
		}
	}
	return best
}

// IsAllowedPageSize reports whether n is one of PageSizes.
func IsAllowedPageSize(n int) bool {
	for _, size := range PageSizes {
		if size == n {
			return true
		}
	}
	return false
}

// Link represents a navigation link for a paged listing.
type Link struct {
	Relation string `json:"relation"`
	URL      string `json:"url"`
}

// Links generates self/next/previous links for the current page. basePath
// should be the request path (e.g., "/api/v1/patients/123/lab-orders") and
// query the request's query; its other parameters are carried on every link.
func (s State) Links(basePath string, query url.Values) []Link {
	links := []Link{{Relation: "self", URL: s.pageURL(basePath, query, s.Page)}}
	if s.HasNext() {
		links = append(links, Link{Relation: "next", URL: s.pageURL(basePath, query, s.Page+1)})
	}
	if s.HasPrevious() {
		links = append(links, Link{Relation: "previous", URL: s.pageURL(basePath, query, s.Page-1)})
	}
	return links
}

func (s State) pageURL(basePath string, query url.Values, page int) string {
	q := make(url.Values, len(query)+2)
	for k, v := range query {
		switch k {
		case "page", "_page", "page_size", "_count":
			continue
		}
		q[k] = append([]string(nil), v...)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(s.PageSize))
	return basePath + "?" + q.Encode()
}
