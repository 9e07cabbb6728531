package budget

import (
	"math"

	"burnplan/internal/core"
)

const (
	weightFloor   = 0.3
	weightCeil    = 3.0
	weekendFactor = 1.2
)

// localLimits is the fallback distribution: each future day gets a weight
// from the historical day-of-month multiplier, nudged up on weekends when
// weekends historically out-spend weekdays, clamped so no single day can
// dominate, then normalized so the limits sum to remaining exactly.
// Negative remaining budgets distribute the same way and keep their sign.
func localLimits(remaining int64, future []core.Date, pattern core.SpendingPattern) []int64 {
	if len(future) == 0 {
		return nil
	}

	weights := make([]float64, len(future))
	var total float64
	weekendBoost := pattern.WeekendAvg > pattern.WeekdayAvg
	for i, day := range future {
		w := pattern.DayOfMonthMultiplier[day.Day()-1]
		if weekendBoost && day.IsWeekend() {
			w *= weekendFactor
		}
		if w < weightFloor {
			w = weightFloor
		} else if w > weightCeil {
			w = weightCeil
		}
		weights[i] = w
		total += w
	}

	// Cumulative-share rounding: each limit is the difference between
	// consecutive rounded cumulative targets, so the sum is exact.
	limits := make([]int64, len(future))
	var cum float64
	var assigned int64
	for i, w := range weights {
		cum += w
		target := int64(math.Round(cum / total * float64(remaining)))
		limits[i] = target - assigned
		assigned = target
	}
	return limits
}
