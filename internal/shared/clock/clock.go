// Package clock pins every calendar-day decision to one reporting timezone.
//
// Calendar dates are represented as time.Time values at UTC midnight of the
// reporting-zone day, so two instants that fall on the same reporting day map
// to equal date keys regardless of the device or server location.
package clock

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"

	// DefaultOffset is the reporting offset used when none is configured.
	DefaultOffset = "+05:30"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall clock.
func System() Clock { return systemClock{} }

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):?(\d{2})$`)

// ParseOffset parses "+05:30", "-0800" or "Z" into a fixed zone.
func ParseOffset(s string) (*time.Location, error) {
	if s == "" || s == "Z" || s == "UTC" {
		return time.UTC, nil
	}
	m := offsetPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid timezone offset %q", s)
	}
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("invalid timezone offset %q", s)
	}
	seconds := hours*3600 + minutes*60
	if m[1] == "-" {
		seconds = -seconds
	}
	return time.FixedZone("UTC"+m[1]+m[2]+":"+m[3], seconds), nil
}

// Zone resolves instants to reporting-zone calendar dates.
type Zone struct {
	loc   *time.Location
	clock Clock
}

func NewZone(offset string, c Clock) (*Zone, error) {
	loc, err := ParseOffset(offset)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = System()
	}
	return &Zone{loc: loc, clock: c}, nil
}

// MustZone is NewZone for constants known to be valid.
func MustZone(offset string, c Clock) *Zone {
	z, err := NewZone(offset, c)
	if err != nil {
		panic(err)
	}
	return z
}

func (z *Zone) Location() *time.Location { return z.loc }

// Now is the current instant in UTC.
func (z *Zone) Now() time.Time { return z.clock.Now().UTC() }

// Today is the date key of the current reporting day.
func (z *Zone) Today() time.Time { return z.DateOf(z.clock.Now()) }

// DateOf returns the date key of the reporting day containing t.
func (z *Zone) DateOf(t time.Time) time.Time {
	y, m, d := t.In(z.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthOf returns the first day of the reporting month containing t.
func (z *Zone) MonthOf(t time.Time) time.Time {
	return MonthStart(z.DateOf(t))
}

// DayBounds returns the UTC instants [start, end) of a reporting day.
func (z *Zone) DayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, z.loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// FormatDate renders the reporting-zone date of t as YYYY-MM-DD.
func (z *Zone) FormatDate(t time.Time) string {
	return z.DateOf(t).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date key.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ParseMonth parses YYYY-MM into the first day of that month.
func ParseMonth(s string) (time.Time, error) {
	return time.Parse(MonthLayout, s)
}

func MonthStart(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last date key of the month containing date.
func MonthEnd(date time.Time) time.Time {
	return MonthStart(date).AddDate(0, 1, -1)
}

// DaysIn lists the date keys of a month in order.
func DaysIn(month time.Time) []time.Time {
	start := MonthStart(month)
	end := MonthEnd(month)
	days := make([]time.Time, 0, end.Day())
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
