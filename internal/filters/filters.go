// Package filters owns the device list selection: filters, sort and page.
// Every change produces a whole new value, and any change other than page
// navigation sends the selection back to the first page.
package filters

import (
	"sync"

	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/iot/api"
)

const (
	DEFAULT_SORT_BY    = "created_at"
	DEFAULT_SORT_ORDER = string(enums.SortOrderDesc)
)

func Default() api.DeviceFilters {
	return api.DeviceFilters{
		Page:      1,
		Limit:     enums.DEFAULT_PAGE_SIZE,
		SortBy:    DEFAULT_SORT_BY,
		SortOrder: DEFAULT_SORT_ORDER,
	}
}

// Normalize clamps the page to 1 and replaces a page size, sort field or
// sort order outside the supported sets with the default.
func Normalize(filters api.DeviceFilters) api.DeviceFilters {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if !enums.IsPaginationSize(filters.Limit) {
		filters.Limit = enums.DEFAULT_PAGE_SIZE
	}
	if !enums.IsSortField(filters.SortBy) {
		filters.SortBy = DEFAULT_SORT_BY
	}
	if !enums.IsSortOrder(filters.SortOrder) {
		filters.SortOrder = DEFAULT_SORT_ORDER
	}
	return filters
}

// Reduce computes the selection that replaces prev when next is requested.
func Reduce(prev api.DeviceFilters, next api.DeviceFilters) api.DeviceFilters {
	prev = Normalize(prev)
	next = Normalize(next)

	if !sameSelection(prev, next) {
		next.Page = 1
	}

	return next
}

// sameSelection compares everything except the page.
func sameSelection(a api.DeviceFilters, b api.DeviceFilters) bool {
	a.Page = 0
	b.Page = 0
	return a == b
}

// HasActiveFilters reports whether anything narrows the list.
func HasActiveFilters(filters api.DeviceFilters) bool {
	return filters.Type != "" || filters.Location != "" || filters.Search != ""
}

// Owner holds the current selection for one view and reports changes.
type Owner struct {
	mu       sync.Mutex
	filters  api.DeviceFilters
	onChange func(api.DeviceFilters)
}

func NewOwner(initial api.DeviceFilters, onChange func(api.DeviceFilters)) *Owner {
	return &Owner{
		filters:  Normalize(initial),
		onChange: onChange,
	}
}

func (owner *Owner) Filters() api.DeviceFilters {
	owner.mu.Lock()
	defer owner.mu.Unlock()
	return owner.filters
}

func (owner *Owner) SetOnChange(onChange func(api.DeviceFilters)) {
	owner.mu.Lock()
	defer owner.mu.Unlock()
	owner.onChange = onChange
}

// Apply replaces the selection with next, reduced against the current one.
func (owner *Owner) Apply(next api.DeviceFilters) api.DeviceFilters {
	return owner.Update(func(filters *api.DeviceFilters) {
		*filters = next
	})
}

// Update applies modify to a copy of the current selection. The copy, the
// change and the reduction happen under one lock; onChange runs after it is
// released.
func (owner *Owner) Update(modify func(filters *api.DeviceFilters)) api.DeviceFilters {
	owner.mu.Lock()
	next := owner.filters
	modify(&next)
	reduced := Reduce(owner.filters, next)
	changed := reduced != owner.filters
	owner.filters = reduced
	onChange := owner.onChange
	owner.mu.Unlock()

	if changed && onChange != nil {
		onChange(reduced)
	}

	return reduced
}

func (owner *Owner) SetPage(page int) api.DeviceFilters {
	return owner.Update(func(filters *api.DeviceFilters) {
		filters.Page = page
	})
}

// NextPage moves past the page described by pagination if there is one.
func (owner *Owner) NextPage(pagination api.Pagination) bool {
	if !pagination.HasNextPage {
		return false
	}
	owner.SetPage(pagination.Page + 1)
	return true
}

func (owner *Owner) PrevPage(pagination api.Pagination) bool {
	if !pagination.HasPreviousPage || pagination.Page <= 1 {
		return false
	}
	owner.SetPage(pagination.Page - 1)
	return true
}

// Clear drops every filter and the sort, keeping the page size.
func (owner *Owner) Clear() api.DeviceFilters {
	return owner.Update(func(filters *api.DeviceFilters) {
		limit := filters.Limit
		*filters = Default()
		filters.Limit = limit
	})
}
