package dateutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the wire format of a single booking date
const DateLayout = "2006-01-02"

var (
	// ErrInvalidWeekFormat is returned when a week string is not YYYY-Www
	ErrInvalidWeekFormat = errors.New("week must be in YYYY-Www format")
	// ErrWeekOutOfRange is returned for week 00 or a week the year does not have
	ErrWeekOutOfRange = errors.New("week number out of range for year")
)

var isoWeekPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

var (
	weekdayLabels      = [7]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}
	weekdayLabelsShort = [7]string{"M", "T", "W", "T", "F", "S", "S"}
)

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// MondayOfWeek returns the Monday of the ISO week containing date, at midnight.
// Sunday belongs to the week that started six days earlier.
func MondayOfWeek(date time.Time) time.Time {
	day := StartOfDay(date)
	weekday := int(day.Weekday())

	offset := 1 - weekday
	if weekday == 0 {
		offset = -6
	}
	return day.AddDate(0, 0, offset)
}

// ISOWeekNumber returns the ISO 8601 week number (1-53) for the given date.
// The calendar date is moved to UTC first so DST transitions cannot shorten a day.
func ISOWeekNumber(date time.Time) int {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	isoWeekday := int(d.Weekday())
	if isoWeekday == 0 {
		isoWeekday = 7 // Sunday = 7
	}
	thursday := d.AddDate(0, 0, 4-isoWeekday)

	yearStart := time.Date(thursday.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(thursday.Sub(yearStart) / (24 * time.Hour))

	// ceil((days + 1) / 7)
	return (days + 7) / 7
}

// ISOWeekString formats the week starting at monday as "YYYY-Www".
// The year is taken from the Thursday of that week, not from monday itself.
func ISOWeekString(monday time.Time) string {
	week := ISOWeekNumber(monday)
	thursday := monday.AddDate(0, 0, 3)
	return fmt.Sprintf("%04d-W%02d", thursday.Year(), week)
}

// ISOWeeksInYear returns 52 or 53. December 28 always lies in the last ISO week.
func ISOWeeksInYear(year int) int {
	return ISOWeekNumber(time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC))
}

// ParseISOWeek parses "YYYY-Www" and returns the Monday of that week at
// midnight in loc. January 4 always lies in week 1.
//
// Week 00 or a week past the year's last one returns ErrWeekOutOfRange
// together with the Monday the arithmetic lands on, so "2025-W53" yields
// 2025-12-29 (2026-W01). Only ErrInvalidWeekFormat returns a zero time.
func ParseISOWeek(s string, loc *time.Location) (time.Time, error) {
	match := isoWeekPattern.FindStringSubmatch(s)
	if match == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeekFormat, s)
	}

	year, _ := strconv.Atoi(match[1])
	week, _ := strconv.Atoi(match[2])

	if loc == nil {
		loc = time.Local
	}
	jan4Monday := MondayOfWeek(time.Date(year, time.January, 4, 0, 0, 0, 0, loc))
	monday := jan4Monday.AddDate(0, 0, (week-1)*7)

	if week < 1 || week > ISOWeeksInYear(year) {
		return monday, fmt.Errorf("%w: %q", ErrWeekOutOfRange, s)
	}
	return monday, nil
}

// WeekdayDates returns "YYYY-MM-DD" strings for Monday-Friday, or
// Monday-Sunday when includeWeekends is set, starting at monday.
func WeekdayDates(monday time.Time, includeWeekends bool) []string {
	count := 5
	if includeWeekends {
		count = 7
	}

	dates := make([]string, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, FormatDate(monday.AddDate(0, 0, i)))
	}
	return dates
}

// WeekdayLabel returns the two-letter (or one-letter when short) code for
// index 0=Monday..6=Sunday, and "" for anything else.
func WeekdayLabel(index int, short bool) string {
	if index < 0 || index >= len(weekdayLabels) {
		return ""
	}
	if short {
		return weekdayLabelsShort[index]
	}
	return weekdayLabels[index]
}

// FormatDate formats the local calendar date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	year, month, day := date.Date()
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format: %w", err)
	}
	return t, nil
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}
