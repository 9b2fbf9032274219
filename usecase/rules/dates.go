// Package rules holds the lifecycle rules binding properties, contracts and
// installments. Every function is pure: no I/O, no clock reads.
package rules

import (
	"time"

	"github.com/fastygo/rentals/domain"
)

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves from by n calendar months and places the result on day,
// clamped to the last day of the target month.
func AddMonths(from time.Time, n, day int) time.Time {
	y, m, _ := from.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	y, m = first.Year(), first.Month()
	if last := DaysIn(y, m); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return domain.Date(y, m, day)
}

// EndDate is start plus months calendar months.
func EndDate(start time.Time, months int) time.Time {
	if start.IsZero() {
		return time.Time{}
	}
	return AddMonths(start, months, start.Day())
}

// DueDates lists the due date of each installment of a schedule. The first
// one falls in the start month unless the clamped billing day precedes the
// start day.
func DueDates(start time.Time, billingDay, months int) []time.Time {
	if start.IsZero() || months < 1 {
		return nil
	}
	start = domain.DateOf(start)
	offset := 0
	if AddMonths(start, 0, billingDay).Before(start) {
		offset = 1
	}
	dates := make([]time.Time, months)
	for k := range dates {
		dates[k] = AddMonths(start, offset+k, billingDay)
	}
	return dates
}
