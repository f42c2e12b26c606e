// Package timefmt renders event dates the way listings and detail views
// show them.
package timefmt

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidTimeZone = errors.New("invalid time zone")
)

// Layout is the long date and time form, e.g. "June 1, 2024 at 2:00:00 PM EDT".
const Layout = "January 2, 2006 at 3:04:05 PM MST"

// upstreamLayout is the zone-less UTC form used by datetime_utc.
const upstreamLayout = "2006-01-02T15:04:05"

// Format renders t in zone, an IANA name. An empty zone uses the local
// zone.
func Format(t time.Time, zone string) (string, error) {
	if t.IsZero() {
		return "", ErrInvalidDate
	}

	loc := time.Local
	if zone != "" {
		var err error
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidTimeZone, zone)
		}
	}

	return t.In(loc).Format(Layout), nil
}

// MustFormat is like Format but panics on error.
func MustFormat(t time.Time, zone string) string {
	s, err := Format(t, zone)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseUTC parses an upstream timestamp. Zone-less values are UTC;
// RFC 3339 values keep their offset.
func ParseUTC(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(upstreamLayout, s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatString parses s with ParseUTC and formats it in zone.
func FormatString(s, zone string) (string, error) {
	t, err := ParseUTC(s)
	if err != nil {
		return "", err
	}
	return Format(t, zone)
}
