package listing

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Direction of a sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Debounce says how long an update waits before it fetches.
type Debounce int

const (
	// Immediate updates fetch right away: status, entity filter, date range,
	// page, limit and sort.
	Immediate Debounce = iota
	// Typing updates wait for the operator to stop typing: search and price
	// range.
	Typing
)

type Sort struct {
	Column    string    `json:"column,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// State is everything a list page remembers between fetches.
type State struct {
	Search   string            `json:"search,omitempty"`
	Status   string            `json:"status,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
	DateFrom string            `json:"dateFrom,omitempty"`
	DateTo   string            `json:"dateTo,omitempty"`
	PriceMin string            `json:"priceMin,omitempty"`
	PriceMax string            `json:"priceMax,omitempty"`
	Sort     Sort              `json:"sort"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// NewState starts a list on page 1 with the given page size.
func NewState(limit int) State {
	return State{Filters: map[string]string{}, Page: 1, Limit: limit}
}

// Every filter setter sends the list back to page 1.

func (s *State) SetSearch(value string) Debounce {
	s.Search = strings.TrimSpace(value)
	s.Page = 1
	return Typing
}

func (s *State) SetStatus(value string) Debounce {
	s.Status = strings.TrimSpace(value)
	s.Page = 1
	return Immediate
}

// SetFilter sets an entity filter; an empty value clears it.
func (s *State) SetFilter(key, value string) Debounce {
	if s.Filters == nil {
		s.Filters = map[string]string{}
	}
	if value = strings.TrimSpace(value); value == "" {
		delete(s.Filters, key)
	} else {
		s.Filters[key] = value
	}
	s.Page = 1
	return Immediate
}

func (s *State) SetDateRange(from, to string) Debounce {
	s.DateFrom = strings.TrimSpace(from)
	s.DateTo = strings.TrimSpace(to)
	s.Page = 1
	return Immediate
}

func (s *State) SetPriceRange(low, high string) Debounce {
	s.PriceMin = strings.TrimSpace(low)
	s.PriceMax = strings.TrimSpace(high)
	s.Page = 1
	return Typing
}

// SetPage moves within the current result set and keeps every filter.
func (s *State) SetPage(page int) Debounce {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return Immediate
}

func (s *State) SetLimit(limit int) Debounce {
	s.Limit = limit
	s.Page = 1
	return Immediate
}

// ToggleSort flips the direction when column is already the sort column and
// otherwise sorts ascending by column.
func (s *State) ToggleSort(column string) Debounce {
	if s.Sort.Column == column {
		if s.Sort.Direction == Asc {
			s.Sort.Direction = Desc
		} else {
			s.Sort.Direction = Asc
		}
		return Immediate
	}
	s.Sort = Sort{Column: column, Direction: Asc}
	return Immediate
}

// Values renders the backend query. Sort parameters are only sent when the
// backend does the sorting.
func (s State) Values(serverSort bool) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(s.Page))
	q.Set("limit", strconv.Itoa(s.Limit))
	setIf(q, "search", s.Search)
	setIf(q, "status", s.Status)
	setIf(q, "startDate", s.DateFrom)
	setIf(q, "endDate", s.DateTo)
	setIf(q, "minPrice", s.PriceMin)
	setIf(q, "maxPrice", s.PriceMax)
	if serverSort && s.Sort.Column != "" {
		q.Set("sortBy", s.Sort.Column)
		q.Set("sortOrder", string(s.Sort.Direction))
	}
	keys := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		setIf(q, k, s.Filters[k])
	}
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
