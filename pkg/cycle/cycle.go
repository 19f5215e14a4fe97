package cycle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cycle types understood by the calculator.
const (
	TypeMonthly = "MONTHLY"
	TypeWeekly  = "WEEKLY"
)

// Monthly due dates are clamped to day 28 so every month has the day.
const maxDayOfMonth = 28

// Label returns the canonical cycle label for a point in time.
// Monthly cycles are labelled "January 2006". Weekly cycles are labelled
// "Week N 2006" where N = dayOfYear/7 + 1; this index is not aligned to
// ISO calendar weeks and drifts from them late in the year.
func Label(cycleType string, now time.Time) string {
	if cycleType == TypeMonthly {
		return now.Format("January 2006")
	}
	week := now.YearDay()/7 + 1
	return fmt.Sprintf("Week %d %d", week, now.Year())
}

// DueDate resolves a cycle label to its contribution due date.
// Monthly labels are parsed as "<Month> <Year>" and due on
// min(dayOfCycle, 28) of that month. A label that does not parse, and
// every weekly cycle, falls back to the first day of the month containing
// now plus (dayOfCycle-1) days. Weekly due dates are therefore not
// cadence-aware; kept as-is pending product clarification.
func DueDate(label, cycleType string, dayOfCycle int, now time.Time) time.Time {
	if cycleType == TypeMonthly {
		if due, ok := parseMonthlyLabel(label, dayOfCycle); ok {
			return due
		}
	}
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 0, dayOfCycle-1)
}

// GraceEnd returns the last day a payment is still on time.
func GraceEnd(due time.Time, graceDays int) time.Time {
	return due.AddDate(0, 0, graceDays)
}

// IsLate reports whether a payment made on datePaid is past the grace
// period for the given due date. Due day and grace end day themselves are
// still on time.
func IsLate(datePaid, due time.Time, graceDays int) bool {
	return datePaid.After(GraceEnd(due, graceDays))
}

func parseMonthlyLabel(label string, dayOfCycle int) (time.Time, bool) {
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	day := dayOfCycle
	if day > maxDayOfMonth {
		day = maxDayOfMonth
	}
	return time.Date(year, monthNumber(parts[0]), day, 0, 0, 0, 0, time.UTC), true
}

// monthNumber resolves an English month name, defaulting to January for
// anything unrecognized.
func monthNumber(name string) time.Month {
	switch strings.ToLower(name) {
	case "january":
		return time.January
	case "february":
		return time.February
	case "march":
		return time.March
	case "april":
		return time.April
	case "may":
		return time.May
	case "june":
		return time.June
	case "july":
		return time.July
	case "august":
		return time.August
	case "september":
		return time.September
	case "october":
		return time.October
	case "november":
		return time.November
	case "december":
		return time.December
	default:
		return time.January
	}
}
