// Package geotime interprets provider timestamps consistently. The two
// forecast providers use different timestamp conventions (one always
// UTC-qualified, one bare local time), so every timestamp in the system is
// converted to a UTC epoch through Resolve before any hour alignment happens.
package geotime

import (
	"strings"
	"time"
)

// Layouts that carry an explicit offset or zone designator. These are tried
// first so that a qualified timestamp keeps its own offset regardless of the
// requested timezone.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

// Layouts without an offset. These are interpreted as wall-clock time in the
// named timezone.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Resolve converts a timestamp string plus an IANA timezone name into UTC
// epoch seconds. A bare local-time string is read as wall-clock time in the
// given zone; a string with an explicit offset keeps that offset. The second
// return value is false when the input cannot be parsed, so callers can skip
// a bad data point instead of aborting the whole request.
func Resolve(value, timezone string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Unix(), true
		}
	}

	loc := Location(timezone)
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.Unix(), true
		}
	}

	return 0, false
}

// Location loads an IANA timezone, falling back to UTC when the name is
// empty or unknown.
func Location(timezone string) *time.Location {
	if strings.TrimSpace(timezone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
