package pricing

import (
	"time"

	"gearrent-backend/internal/domain"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateOnly drops the time of day, keeping the calendar date of t.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a yyyy-mm-dd string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DaysBetween returns the whole calendar days from a to b, negative when b is
// before a.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// RentalDays counts billable days for a booking. A same-day rental is billed
// as one day.
func RentalDays(start, end time.Time) (int32, error) {
	days := DaysBetween(start, end)
	if days < 0 {
		return 0, domain.ErrInvalidDateRange
	}
	if days == 0 {
		days = 1
	}
	return int32(days), nil
}

// LineSubtotal is price × qty × days.
func LineSubtotal(pricePerDay int64, qty, days int32) int64 {
	return pricePerDay * int64(qty) * int64(days)
}
