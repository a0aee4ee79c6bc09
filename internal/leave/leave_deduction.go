package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

var halfDay = decimal.NewFromFloat(0.5)

// DeductibleDays computes the day count a request consumes, fixed at
// submission time.
//
// Half-day requests always deduct 0.5 and collapse the range to the from
// date. Casual leave (not the special variant) counts only working days:
// Sundays never count, Saturdays count only for Saturday-working
// employees. Every other type counts the inclusive calendar span.
//
// The returned to date is the normalized range end to persist.
func DeductibleDays(spec TypeSpec, from, to time.Time, isHalfDay, worksSaturday bool) (decimal.Decimal, time.Time) {
	if isHalfDay {
		return halfDay, from
	}

	if spec.Category == CategoryCasual {
		days := int64(0)
		for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
			switch cur.Weekday() {
			case time.Sunday:
				continue
			case time.Saturday:
				if !worksSaturday {
					continue
				}
			}
			days++
		}
		return decimal.NewFromInt(days), to
	}

	days := int64(to.Sub(from).Hours()/24) + 1
	return decimal.NewFromInt(days), to
}

// inclusiveDays is the calendar day count from start to end, both ends
// included.
func inclusiveDays(start, end time.Time) int64 {
	if end.Before(start) {
		return 0
	}
	return int64(end.Sub(start).Hours()/24) + 1
}
