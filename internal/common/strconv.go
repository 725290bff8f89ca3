package common

import (
	"strconv"
	"strings"
)

// AtoiDefault converts the provided string to an integer falling back to the default when it is empty.
// A non-empty value that does not parse is returned as an error so callers can reject it.
func AtoiDefault(value string, def int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	return strconv.Atoi(value)
}

// FloatDefault mirrors AtoiDefault for floating point values.
func FloatDefault(value string, def float64) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	return strconv.ParseFloat(value, 64)
}
