// Package forms holds the typed create/edit forms and the cleaning rules
// that turn raw operator input into CRM payloads.
package forms

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/shopspring/decimal"
)

func invalidNumber(label string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a valid number", label))
}

func required(label string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is required", label))
}

// money parses a currency amount. Blank input is nil.
func money(label, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, invalidNumber(label)
	}
	return &d, nil
}

func float(label, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, invalidNumber(label)
	}
	return &f, nil
}

// coordinate is a float within [-limit, limit].
func coordinate(label, raw string, limit float64) (*float64, error) {
	f, err := float(label, raw)
	if err != nil || f == nil {
		return f, err
	}
	if math.Abs(*f) > limit {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be between %g and %g", label, -limit, limit))
	}
	return f, nil
}

// count parses a whole number. "3.0" is accepted, "3.5" is not.
func count(label, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return nil, invalidNumber(label)
	}
	n := int(f)
	return &n, nil
}

// list trims entries and drops blanks. An all-blank list is nil.
func list(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func trim(s string) string { return strings.TrimSpace(s) }

func formatMoney(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatCount(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
