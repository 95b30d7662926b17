// Package reltime formats issue timestamps: a bucketed relative string for
// display and absolute strings for tooltips and machine-readable attributes.
package reltime

import (
	"fmt"
	"time"
)

// Bucket thresholds in whole seconds. Months and years are fixed 30 and 365
// day spans, not calendar units.
const (
	Minute = 60
	Hour   = 3600
	Day    = 86400
	Month  = 30 * Day
	Year   = 365 * Day
)

// Clock provides the current time. Use RealClock in production and
// FixedClock in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// Format returns the relative age of t as seen at now, e.g. "just now",
// "1 hour ago", "3 months ago". Future timestamps are clamped to "just now".
func Format(t, now time.Time) string {
	return FormatSeconds(int64(now.Sub(t) / time.Second))
}

// FormatWithClock is Format against clock.Now().
func FormatWithClock(t time.Time, clock Clock) string {
	return Format(t, clock.Now())
}

// FormatSeconds buckets an elapsed number of seconds.
func FormatSeconds(elapsed int64) string {
	if elapsed < 0 {
		elapsed = 0
	}
	switch {
	case elapsed < Minute:
		return "just now"
	case elapsed < Hour:
		return plural(elapsed/Minute, "minute")
	case elapsed < Day:
		return plural(elapsed/Hour, "hour")
	case elapsed < Month:
		return plural(elapsed/Day, "day")
	case elapsed < Year:
		return plural(elapsed/Month, "month")
	default:
		return plural(elapsed/Year, "year")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// AbsoluteLayout is the locale-style layout used for tooltips.
const AbsoluteLayout = "1/2/2006, 3:04:05 PM"

// Absolute formats t in local time for tooltips.
func Absolute(t time.Time) string {
	return t.Local().Format(AbsoluteLayout)
}

// Machine is the canonical machine-readable value of t.
func Machine(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
