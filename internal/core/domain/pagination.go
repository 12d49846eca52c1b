package domain

import (
	"fmt"
	"math"
)

// Pagination defaults.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects a 1-indexed page. Zero fields mean "use the default".
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize applies defaults and rejects out-of-range values.
// Page sizes above maxSize are rejected rather than clamped.
func (p PageRequest) Normalize(defaultSize, maxSize int) (PageRequest, error) {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	if p.Page < 0 {
		return p, NewValidationError("page", "must be >= 1")
	}
	if p.PageSize < 0 {
		return p, NewValidationError("page_size", "must be >= 1")
	}
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > maxSize {
		return p, NewValidationError("page_size", fmt.Sprintf("must be <= %d", maxSize))
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return p, NewValidationError("page", "is out of range")
	}
	return p, nil
}

// Offset returns the number of items before the page, saturating at
// math.MaxInt.
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// Page is one page of a listing plus the total match count.
type Page[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
}

// TotalPages returns the number of pages at the current page size.
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Paginate slices an already-ordered, already-filtered list.
// req must be normalised.
func Paginate[T any](items []T, req PageRequest) Page[T] {
	page := Page[T]{
		Items:    []T{},
		Total:    len(items),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	start := req.Offset()
	if start >= len(items) {
		return page
	}
	end := len(items)
	if req.PageSize > 0 && req.PageSize < end-start {
		end = start + req.PageSize
	}
	page.Items = append(page.Items, items[start:end]...)
	return page
}
