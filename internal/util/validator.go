package util

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var maxAmount = decimal.NewFromInt(1_000_000_000_000) // 14-digit column, 2 decimals

// ValidateAmount checks that a money amount is positive and fits the column.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount too large, got %s", amount)
	}
	return nil
}

// ValidateType checks a transaction/category type string.
func ValidateType(t string) error {
	if t != "income" && t != "expense" {
		return fmt.Errorf("type must be income or expense, got %q", t)
	}
	return nil
}

// ParseDate parses a date accepting ISO-8601 timestamps or plain YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	layouts := []string{
		time.RFC3339,          // 2025-03-15T00:00:00+07:00
		"2006-01-02T15:04:05", // 2025-03-15T00:00:00
		"2006-01-02",          // 2025-03-15
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %q", s)
}

// ValidateMonthYear checks month/year query parameters.
func ValidateMonthYear(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month must be 1-12, got %d", month)
	}
	if year < 1970 || year > 9999 {
		return fmt.Errorf("year out of range, got %d", year)
	}
	return nil
}

// DateOnly truncates a time to its calendar date in the same location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddOneMonth moves a date forward one calendar month, clamping to the last
// valid day when the target month is shorter (Jan 31 -> Feb 28).
func AddOneMonth(d time.Time) time.Time {
	year, month, day := d.Year(), d.Month(), d.Day()
	month++
	if month > 12 {
		month = 1
		year++
	}
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, d.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	// day 0 of the next month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
