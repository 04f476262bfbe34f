package pricing

import "time"

// LateFeeLine is the part of a rented line the late fee depends on.
type LateFeeLine struct {
	LateFeePerDay int64
	Quantity      int32
}

// OverdueDays returns max(0, whole days from due to today).
func OverdueDays(due, today time.Time) int {
	days := DaysBetween(due, today)
	if days < 0 {
		return 0
	}
	return days
}

// ComputeLateFee sums lateFeePerDay × qty × overdueDays over all lines.
// There is no compounding and no cap.
func ComputeLateFee(due, today time.Time, lines []LateFeeLine) int64 {
	days := OverdueDays(due, today)
	if days == 0 {
		return 0
	}
	var fee int64
	for _, l := range lines {
		fee += l.LateFeePerDay * int64(l.Quantity) * int64(days)
	}
	return fee
}
