// Package analyze derives descriptive statistics from classified transaction
// history: weekday/weekend spending patterns and burn-rate forecasts.
package analyze

import (
	"burnplan/internal/classify"
	"burnplan/internal/core"
)

// Pattern summarizes historical expense transactions into weekday/weekend
// daily averages and per-day-of-month multipliers. Input is full history;
// non-expense transactions (income, internal transfers) are filtered out
// here. Purely descriptive; no confidence scoring.
func Pattern(history []core.Transaction, includedIDs map[string]struct{}) core.SpendingPattern {
	pattern := core.NeutralPattern()

	byDay := classify.GroupByDate(history)

	// Total absolute expense per observed calendar date.
	dayTotals := make(map[string]int64)
	dayDates := make(map[string]core.Date)
	for key, txs := range byDay {
		for _, tx := range txs {
			if !classify.IsExpense(tx, txs, includedIDs) {
				continue
			}
			dayTotals[key] += tx.AbsAmount()
			dayDates[key] = tx.Date()
		}
	}
	if len(dayTotals) == 0 {
		return pattern
	}

	var (
		weekdaySum, weekendSum     float64
		weekdayCount, weekendCount int
		overallSum                 float64
		domSum                     [31]float64
		domCount                   [31]int
	)
	for key, total := range dayTotals {
		date := dayDates[key]
		amount := float64(total)

		if date.IsWeekend() {
			weekendSum += amount
			weekendCount++
		} else {
			weekdaySum += amount
			weekdayCount++
		}

		overallSum += amount
		dom := date.Day() - 1
		domSum[dom] += amount
		domCount[dom]++
	}

	if weekdayCount > 0 {
		pattern.WeekdayAvg = weekdaySum / float64(weekdayCount)
	}
	if weekendCount > 0 {
		pattern.WeekendAvg = weekendSum / float64(weekendCount)
	}

	overallMean := overallSum / float64(len(dayTotals))
	if overallMean > 0 {
		for d := 0; d < 31; d++ {
			if domCount[d] > 0 {
				dayMean := domSum[d] / float64(domCount[d])
				pattern.DayOfMonthMultiplier[d] = dayMean / overallMean
			}
		}
	}

	return pattern
}
