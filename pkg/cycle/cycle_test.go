package cycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name      string
		cycleType string
		now       time.Time
		expected  string
	}{
		{
			name:      "monthly label",
			cycleType: TypeMonthly,
			now:       time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			expected:  "March 2025",
		},
		{
			name:      "monthly label at year boundary",
			cycleType: TypeMonthly,
			now:       time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			expected:  "December 2024",
		},
		{
			name:      "weekly label early in the year",
			cycleType: TypeWeekly,
			now:       time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), // day 3 -> 3/7+1 = 1
			expected:  "Week 1 2025",
		},
		{
			name:      "weekly label mid year",
			cycleType: TypeWeekly,
			now:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), // day 60 -> 60/7+1 = 9
			expected:  "Week 9 2025",
		},
		{
			name:      "weekly index drifts past ISO week count",
			cycleType: TypeWeekly,
			now:       time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), // day 365 -> 53
			expected:  "Week 53 2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Label(tt.cycleType, tt.now))
		})
	}
}

func TestDueDate(t *testing.T) {
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		label      string
		cycleType  string
		dayOfCycle int
		expected   time.Time
	}{
		{
			name:       "monthly label parses to its own month",
			label:      "June 2025",
			cycleType:  TypeMonthly,
			dayOfCycle: 5,
			expected:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "monthly label for another month",
			label:      "January 2024",
			cycleType:  TypeMonthly,
			dayOfCycle: 10,
			expected:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "day of cycle clamped to 28",
			label:      "February 2025",
			cycleType:  TypeMonthly,
			dayOfCycle: 31,
			expected:   time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "unknown month name defaults to January",
			label:      "Juneteenth 2025",
			cycleType:  TypeMonthly,
			dayOfCycle: 5,
			expected:   time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "malformed label falls back to current month",
			label:      "2025-06",
			cycleType:  TypeMonthly,
			dayOfCycle: 5,
			expected:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "non-numeric year falls back to current month",
			label:      "June twentytwentyfive",
			cycleType:  TypeMonthly,
			dayOfCycle: 3,
			expected:   time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "weekly cycles always use the monthly fallback",
			label:      "Week 25 2025",
			cycleType:  TypeWeekly,
			dayOfCycle: 7,
			expected:   time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DueDate(tt.label, tt.cycleType, tt.dayOfCycle, now)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsLate(t *testing.T) {
	due := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		datePaid  time.Time
		graceDays int
		expected  bool
	}{
		{
			name:      "paid before due date",
			datePaid:  due.AddDate(0, 0, -3),
			graceDays: 3,
			expected:  false,
		},
		{
			name:      "paid on due date",
			datePaid:  due,
			graceDays: 3,
			expected:  false,
		},
		{
			name:      "paid on last day of grace",
			datePaid:  due.AddDate(0, 0, 3),
			graceDays: 3,
			expected:  false,
		},
		{
			name:      "paid one day past grace",
			datePaid:  due.AddDate(0, 0, 4),
			graceDays: 3,
			expected:  true,
		},
		{
			name:      "no grace period, paid day after due",
			datePaid:  due.AddDate(0, 0, 1),
			graceDays: 0,
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsLate(tt.datePaid, due, tt.graceDays))
		})
	}
}
