package core

// convert.go provides conversion functions from CSV cells to API values.
//
// These functions handle the messy reality of spreadsheet exports:
//   - Many date-time formats (ISO, US, written month names, date-only)
//   - IDs that were saved as floats ("10.0")
//   - Various boolean representations (yes/no, true/false, 1/0)
//   - Excel formula prefixes (="value") and stray quotes

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// BookingStartLayout is the canonical bookingStart format the API expects.
const BookingStartLayout = "2006-01-02 15:04"

// idRegex matches non-negative integers, optionally written with a zero
// fractional part by spreadsheet tools.
var idRegex = regexp.MustCompile(`^\+?(\d+)(?:\.0*)?$`)

// Date-time layouts in the order they are tried. Layouts with a time come
// first so "2024-12-15 10:00" is never read as midnight.
var dateTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02 15:04",
	"2006/01/02 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04PM",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006 3:04 PM",
	"January 2, 2006 15:04",
	"January 2, 2006 3:04 PM",
	"2 Jan 2006 15:04",
	"02 Jan 2006 15:04",

	// Date only.
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"20060102",
}

var errEmpty = errors.New("empty value")

// ParseDateTime parses a booking_start cell. The wall-clock time is kept as
// written; any zone offset is dropped by FormatBookingStart.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmpty
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("invalid date format")
}

// FormatBookingStart renders t in BookingStartLayout.
func FormatBookingStart(t time.Time) string {
	return t.Format(BookingStartLayout)
}

// ParseID parses a non-negative integer, accepting a zero fractional part.
func ParseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmpty
	}
	m := idRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.New("invalid number")
	}
	return strconv.ParseInt(m[1], 10, 64)
}

// ParseBool accepts various representations: true/false, yes/no, t/f, y/n, 1/0.
func ParseBool(s string) (value, ok bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// The first occurrence of a duplicated column wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := toKey(CleanCell(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func toKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
