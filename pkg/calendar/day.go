// Package calendar converts between ISO calendar dates and epoch days, the
// common time unit used by the ledger and the availability index.
//
// All arithmetic is UTC. An epoch day is the number of whole days between
// 1970-01-01 and the UTC midnight of a date.
package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	SecondsPerDay = 86400
	ISOLayout     = "2006-01-02"
)

type EpochDay int64

var isoDateRegex = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// ToEpochDay parses a YYYY-MM-DD date as UTC midnight.
//
// Only the shape and the month/day ranges (1-12, 1-31) are checked. A day that
// does not exist in its month rolls over into the next month, so "2025-02-30"
// is the same epoch day as "2025-03-02".
func ToEpochDay(iso string) (EpochDay, error) {
	m := isoDateRegex.FindStringSubmatch(iso)
	if m == nil {
		return 0, fmt.Errorf("%w: %q must be YYYY-MM-DD", ErrMalformedDate, iso)
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: month %d out of range in %q", ErrMalformedDate, month, iso)
	}
	if day < 1 || day > 31 {
		return 0, fmt.Errorf("%w: day %d out of range in %q", ErrMalformedDate, day, iso)
	}

	return FromTime(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)), nil
}

// FromTime returns the epoch day containing t (in UTC).
func FromTime(t time.Time) EpochDay {
	secs := t.UTC().Unix()
	day := secs / SecondsPerDay
	if secs%SecondsPerDay < 0 {
		day--
	}
	return EpochDay(day)
}

// Time returns UTC midnight of the day.
func (d EpochDay) Time() time.Time {
	return time.Unix(int64(d)*SecondsPerDay, 0).UTC()
}

func (d EpochDay) String() string {
	return EpochDayToISO(d)
}

func EpochDayToISO(d EpochDay) string {
	return d.Time().Format(ISOLayout)
}

// CheckInTimestamp is the Unix time (seconds) of check-in on day d.
func CheckInTimestamp(d EpochDay, hourUTC int) int64 {
	return int64(d)*SecondsPerDay + int64(hourUTC)*3600
}

func DaysInMonth(year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	// day 0 of the following month is the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day(), nil
}

// MonthWindow returns the half-open range [first, end) of epoch days covering
// the month.
func MonthWindow(year, month int) (first, end EpochDay, err error) {
	days, err := DaysInMonth(year, month)
	if err != nil {
		return 0, 0, err
	}
	first = FromTime(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	return first, first + EpochDay(days), nil
}

// FirstWeekday is the weekday of the 1st of the month, 0 = Sunday.
func FirstWeekday(year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return int(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Weekday()), nil
}
