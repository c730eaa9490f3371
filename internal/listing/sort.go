package listing

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ColumnKind decides how a column compares.
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindNumber
	KindDate
)

// Column is a sortable column and how to read it from a raw item.
type Column struct {
	Name    string
	Kind    ColumnKind
	Extract func(item map[string]any) any
}

func stringColumn(name string, path ...string) Column {
	return Column{Name: name, Kind: KindString, Extract: pathValue(path...)}
}

func numberColumn(name string, path ...string) Column {
	return Column{Name: name, Kind: KindNumber, Extract: pathValue(path...)}
}

func dateColumn(name string, path ...string) Column {
	return Column{Name: name, Kind: KindDate, Extract: pathValue(path...)}
}

// nameColumn sorts by "firstName lastName" of the object at prefix.
func nameColumn(name string, prefix ...string) Column {
	first := pathValue(append(append([]string(nil), prefix...), "firstName")...)
	last := pathValue(append(append([]string(nil), prefix...), "lastName")...)
	return Column{Name: name, Kind: KindString, Extract: func(item map[string]any) any {
		return strings.TrimSpace(asString(first(item)) + " " + asString(last(item)))
	}}
}

func pathValue(path ...string) func(map[string]any) any {
	return func(item map[string]any) any {
		var cur any = item
		for _, key := range path {
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = obj[key]
		}
		return cur
	}
}

// SortItems returns items stably sorted by column. Strings compare without
// case, dates by time, numbers numerically. Equal keys keep backend order.
func SortItems(items []map[string]any, column Column, dir Direction) []map[string]any {
	out := append([]map[string]any(nil), items...)
	if column.Extract == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b map[string]any) int {
		c := compareValues(column.Kind, column.Extract(a), column.Extract(b))
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

func compareValues(kind ColumnKind, a, b any) int {
	switch kind {
	case KindNumber:
		return cmp.Compare(asNumber(a), asNumber(b))
	case KindDate:
		return asTime(a).Compare(asTime(b))
	default:
		return strings.Compare(strings.ToLower(asString(a)), strings.ToLower(asString(b)))
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func asNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return 0
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	return time.Time{}
}
