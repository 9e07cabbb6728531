package core

// DayStatus reflects how a day's spending compares to its limit.
type DayStatus string

const (
	StatusUnder   DayStatus = "under"
	StatusWarning DayStatus = "warning"
	StatusOver    DayStatus = "over"
)

// warningShare is the fraction of a day's limit at which status turns to warning.
const warningShare = 0.8

// StatusFor computes the day status from a limit and the amount spent.
// A day is over as soon as spending reaches the limit, so a zero or negative
// limit with any spending (including none) reads as over.
func StatusFor(limit, spent int64) DayStatus {
	switch {
	case spent >= limit:
		return StatusOver
	case float64(spent) >= warningShare*float64(limit):
		return StatusWarning
	default:
		return StatusUnder
	}
}

type (
	// DailyBudget is one day of the financial month with its allocated limit
	// and reconciled spending. Confidence and Reasoning are only populated
	// when the limit came from the external weighting service.
	DailyBudget struct {
		Date         Date
		Limit        int64
		Spent        int64
		Remaining    int64
		Status       DayStatus
		Transactions []Transaction
		Confidence   float64
		Reasoning    string
	}

	// MonthBudget is the full result of a distribution run: every day of the
	// financial month, past and future, in ascending date order.
	MonthBudget struct {
		TotalBudget    int64
		TotalSpent     int64
		TotalRemaining int64
		DaysRemaining  int
		Days           []DailyBudget
		Recommendation string
		CurrentBalance int64
	}

	// SpendingPattern summarizes historical expense behaviour. Multipliers
	// are indexed by day-of-month minus one and default to 1.0 where no
	// history was observed.
	SpendingPattern struct {
		WeekdayAvg           float64
		WeekendAvg           float64
		DayOfMonthMultiplier [31]float64
	}

	// ProjectionPoint is one month of the balance projection.
	ProjectionPoint struct {
		Month   int
		Balance int64
	}

	// InflationPrediction is a best-effort burn-rate forecast. MonthsUntilZero
	// is +Inf when the burn rate is zero or negative.
	InflationPrediction struct {
		CurrentBalance  int64
		MonthlyBurnRate float64
		MonthsUntilZero float64
		Projection      []ProjectionPoint
		Confidence      float64
	}
)

// NeutralPattern returns a pattern with no weekday/weekend signal and all
// day-of-month multipliers at 1.0.
func NeutralPattern() SpendingPattern {
	var p SpendingPattern
	for i := range p.DayOfMonthMultiplier {
		p.DayOfMonthMultiplier[i] = 1.0
	}
	return p
}
