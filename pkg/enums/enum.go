package enums

import (
	"fmt"
	"slices"
)

func isValid[T ~string](valid []T, v T) bool {
	return slices.Contains(valid, v)
}

func parse[T ~string](valid []T, label, value string) (T, error) {
	for _, candidate := range valid {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", label, value)
}
