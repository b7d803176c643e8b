// Package paginate splits ordered collections into fixed size pages.
package paginate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// DefaultPerPage is the page size used by listings
const DefaultPerPage = 10

// Paginator partitions Count items into pages of PerPage items
type Paginator struct {
	Count   int64
	PerPage int
}

// New creates a paginator, falling back to DefaultPerPage for non-positive sizes
func New(count int64, perPage int) Paginator {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if count < 0 {
		count = 0
	}
	return Paginator{Count: count, PerPage: perPage}
}

// NumPages returns the number of pages; an empty collection still has one page
func (p Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	per := int64(p.PerPage)
	return int((p.Count + per - 1) / per)
}

// GetPage resolves a raw page parameter to a valid page number. A missing or
// non-integer value selects the first page, an out of range number selects
// the last one, including numbers too large for an int.
func (p Paginator) GetPage(raw string) int {
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) {
		return p.NumPages()
	}
	if err != nil {
		return 1
	}
	if number < 1 || number > p.NumPages() {
		return p.NumPages()
	}
	return number
}

// Offset returns the index of the first item on page number
func (p Paginator) Offset(number int) int {
	return (number - 1) * p.PerPage
}

// Page is one slice of a paginated collection
type Page[T any] struct {
	Items        []T   `json:"object_list"`
	Number       int   `json:"number"`
	NumPages     int   `json:"num_pages"`
	Count        int64 `json:"count"`
	PerPage      int   `json:"per_page"`
	HasNext      bool  `json:"has_next"`
	HasPrevious  bool  `json:"has_previous"`
	NextPage     int   `json:"next_page_number,omitempty"`
	PreviousPage int   `json:"previous_page_number,omitempty"`
	StartIndex   int   `json:"start_index"`
	EndIndex     int   `json:"end_index"`
}

// NewPage builds page metadata around items already fetched for number
func NewPage[T any](p Paginator, number int, items []T) *Page[T] {
	if items == nil {
		items = []T{}
	}
	page := &Page[T]{
		Items:       items,
		Number:      number,
		NumPages:    p.NumPages(),
		Count:       p.Count,
		PerPage:     p.PerPage,
		HasNext:     number < p.NumPages(),
		HasPrevious: number > 1,
	}
	if page.HasNext {
		page.NextPage = number + 1
	}
	if page.HasPrevious {
		page.PreviousPage = number - 1
	}
	if p.Count > 0 {
		page.StartIndex = p.Offset(number) + 1
		page.EndIndex = p.Offset(number) + len(items)
	}
	return page
}

// Paginate counts the rows matched by query and loads the requested page.
// query must already carry its ordering. preloads are applied to the page
// fetch only.
func Paginate[T any](query *gorm.DB, raw string, perPage int, preloads ...string) (*Page[T], error) {
	var total int64
	if err := query.Session(&gorm.Session{NewDB: true}).
		Table("(?) AS paged", query.Session(&gorm.Session{})).
		Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count page items: %w", err)
	}

	p := New(total, perPage)
	number := p.GetPage(raw)

	fetch := query.Session(&gorm.Session{}).Offset(p.Offset(number)).Limit(p.PerPage)
	for _, preload := range preloads {
		fetch = fetch.Preload(preload)
	}

	var items []T
	if err := fetch.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load page %d: %w", number, err)
	}

	return NewPage(p, number, items), nil
}
