package budget

import (
	"fmt"

	"burnplan/internal/core"
)

// Recommendation thresholds. Weekend spending counts as material when it
// exceeds the weekday average by a quarter.
const (
	highSpendShare    = 0.8
	comfortableShare  = 0.7
	weekendMaterially = 1.25
)

// recommendation picks a short advisory message by fixed priority: overspend
// warning, then weekend-pattern note, then end-of-month reinforcement, then
// a plain statement of the current per-day limit.
func recommendation(month core.MonthBudget, pattern core.SpendingPattern) string {
	spentShare := 0.0
	if month.TotalBudget > 0 {
		spentShare = float64(month.TotalSpent) / float64(month.TotalBudget)
	}

	switch {
	case spentShare > highSpendShare && month.DaysRemaining > 7:
		return fmt.Sprintf("Over 80%% of the budget is already spent with %d days to go. Tighten daily spending to avoid running out.",
			month.DaysRemaining)

	case pattern.WeekdayAvg > 0 && pattern.WeekendAvg > pattern.WeekdayAvg*weekendMaterially:
		return "Weekends cost noticeably more than weekdays. Planning weekend spending ahead would smooth the month."

	case month.DaysRemaining <= 3 && spentShare < comfortableShare:
		return "The month is nearly over and spending is comfortably under budget. Keep it up."

	case month.DaysRemaining > 0:
		perDay := month.TotalRemaining / int64(month.DaysRemaining)
		return fmt.Sprintf("Current daily limit is %s for the remaining %d days.",
			core.FormatAmount(perDay), month.DaysRemaining)

	default:
		return fmt.Sprintf("The financial month has ended with %s remaining.",
			core.FormatAmount(month.TotalRemaining))
	}
}
