package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrEmptyValue = errors.New("empty value")

// ParseFlexInt parses an integer cell value. Thousands separators are
// stripped ("100,000,000" -> 100000000) and decimal-formatted integers are
// truncated ("10.0" -> 10).
func ParseFlexInt(value string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0, ErrEmptyValue
	}
	if n, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Trunc(f)), nil
}

// ParseFlexFloat parses a decimal cell value, tolerating thousands separators.
func ParseFlexFloat(value string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0, ErrEmptyValue
	}
	return strconv.ParseFloat(cleaned, 64)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	// Slash dates resolve month-first: 03/04/2024 is March 4th.
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseFlexDate parses a date cell value against the common formats seen in
// departmental exports.
func ParseFlexDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, ErrEmptyValue
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format: " + trimmed)
}

// OptionalString trims the value and returns nil when nothing remains.
func OptionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
