package listing

import (
	"fmt"
	"time"

	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/shopspring/decimal"
)

// Change is a partial update of a list page. Nil fields are left alone.
type Change struct {
	Search   *string           `json:"search,omitempty"`
	Status   *string           `json:"status,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
	DateFrom *string           `json:"dateFrom,omitempty"`
	DateTo   *string           `json:"dateTo,omitempty"`
	PriceMin *string           `json:"priceMin,omitempty"`
	PriceMax *string           `json:"priceMax,omitempty"`
	SortBy   *string           `json:"sortBy,omitempty"`
	Page     *int              `json:"page,omitempty"`
	Limit    *int              `json:"limit,omitempty"`
}

// Empty reports whether the change touches nothing.
func (c Change) Empty() bool {
	return c.Search == nil && c.Status == nil && len(c.Filters) == 0 &&
		c.DateFrom == nil && c.DateTo == nil && c.PriceMin == nil && c.PriceMax == nil &&
		c.SortBy == nil && c.Page == nil && c.Limit == nil
}

// Apply validates c against view and runs the setters on state. Filters are
// applied before the page so a change carrying both lands on the requested
// page. The result is the slowest debounce among the applied setters. On
// error state is not modified.
func (c Change) Apply(view View, state *State) (Debounce, error) {
	if err := c.validate(view); err != nil {
		return Immediate, err
	}
	next := state.clone()
	debounce := Immediate
	bump := func(d Debounce) {
		if d > debounce {
			debounce = d
		}
	}

	for key, value := range c.Filters {
		bump(next.SetFilter(key, value))
	}
	if c.Status != nil {
		bump(next.SetStatus(*c.Status))
	}
	if c.Search != nil {
		bump(next.SetSearch(*c.Search))
	}
	if c.DateFrom != nil || c.DateTo != nil {
		bump(next.SetDateRange(pick(c.DateFrom, next.DateFrom), pick(c.DateTo, next.DateTo)))
	}
	if c.PriceMin != nil || c.PriceMax != nil {
		bump(next.SetPriceRange(pick(c.PriceMin, next.PriceMin), pick(c.PriceMax, next.PriceMax)))
	}
	if c.Limit != nil {
		bump(next.SetLimit(*c.Limit))
	}
	if c.SortBy != nil {
		bump(next.ToggleSort(*c.SortBy))
	}
	if c.Page != nil {
		bump(next.SetPage(*c.Page))
	}
	*state = next
	return debounce, nil
}

func (c Change) validate(view View) error {
	for key := range c.Filters {
		if !view.allowsFilter(key) {
			return unknown("filter", key, view.Key)
		}
	}
	if c.Status != nil && !view.allowsStatus(*c.Status) {
		return unknown("status", *c.Status, view.Key)
	}
	if c.SortBy != nil {
		if _, ok := view.Column(*c.SortBy); !ok {
			return unknown("sort column", *c.SortBy, view.Key)
		}
	}
	for field, value := range map[string]*string{"dateFrom": c.DateFrom, "dateTo": c.DateTo} {
		if value != nil && *value != "" {
			if _, err := time.Parse("2006-01-02", *value); err != nil {
				return invalid(fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field))
			}
		}
	}
	for field, value := range map[string]*string{"priceMin": c.PriceMin, "priceMax": c.PriceMax} {
		if value != nil && *value != "" {
			d, err := decimal.NewFromString(*value)
			if err != nil || d.IsNegative() {
				return invalid(fmt.Sprintf("%s must be a non-negative number", field))
			}
		}
	}
	if c.Page != nil && *c.Page < 1 {
		return invalid("page must be at least 1")
	}
	if c.Limit != nil && *c.Limit < 1 {
		return invalid("limit must be at least 1")
	}
	return nil
}

func (s State) clone() State {
	out := s
	out.Filters = make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		out.Filters[k] = v
	}
	return out
}

func pick(value *string, current string) string {
	if value == nil {
		return current
	}
	return *value
}

func invalid(message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message)
}
