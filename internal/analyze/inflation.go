package analyze

import (
	"fmt"
	"math"

	"burnplan/internal/classify"
	"burnplan/internal/core"
)

const (
	projectionMonths = 12
	confidenceFloor  = 0.3
	confidenceCeil   = 0.95
	secondsPerDay    = 86400
)

// Predict computes the net burn rate and a 12-point balance projection from
// the full available transaction history. Each projected point is clamped to
// zero independently; the projection does not freeze once a point on the
// path reaches zero, so a later point can only be lower or equal by formula,
// never path-dependent.
func Predict(history []core.Transaction, currentBalance int64, includedIDs map[string]struct{}) (core.InflationPrediction, error) {
	if currentBalance < 0 {
		return core.InflationPrediction{}, fmt.Errorf("validate prediction input: %w", core.ErrNegativeBalance)
	}

	byDay := classify.GroupByDate(history)

	var (
		totalExpenses  int64
		totalIncome    int64
		expenseAmounts []float64
		oldest, newest int64
	)
	for _, tx := range history {
		sameDay := byDay[tx.Date().Key()]
		switch classify.Classify(tx, sameDay, includedIDs) {
		case classify.LabelExpense:
			totalExpenses += tx.AbsAmount()
			expenseAmounts = append(expenseAmounts, float64(tx.AbsAmount()))
		case classify.LabelIncome:
			totalIncome += tx.Amount
		}

		if oldest == 0 || tx.Time < oldest {
			oldest = tx.Time
		}
		if tx.Time > newest {
			newest = tx.Time
		}
	}

	observedDays := int((newest - oldest) / secondsPerDay)
	if observedDays < 1 {
		observedDays = 1
	}

	dailyBurn := float64(totalExpenses-totalIncome) / float64(observedDays)
	monthlyBurn := dailyBurn * 30

	monthsUntilZero := math.Inf(1)
	if monthlyBurn > 0 {
		monthsUntilZero = float64(currentBalance) / monthlyBurn
	}

	projection := make([]core.ProjectionPoint, projectionMonths)
	for i := 0; i < projectionMonths; i++ {
		balance := float64(currentBalance) - monthlyBurn*float64(i)
		if balance < 0 {
			balance = 0
		}
		projection[i] = core.ProjectionPoint{Month: i, Balance: int64(math.Round(balance))}
	}

	return core.InflationPrediction{
		CurrentBalance:  currentBalance,
		MonthlyBurnRate: monthlyBurn,
		MonthsUntilZero: monthsUntilZero,
		Projection:      projection,
		Confidence:      expenseConfidence(expenseAmounts),
	}, nil
}

// expenseConfidence is an inverse coefficient-of-variation heuristic, not a
// statistical confidence interval: steady expense amounts score high, erratic
// ones score low. Clamped to [0.3, 0.95].
func expenseConfidence(amounts []float64) float64 {
	if len(amounts) == 0 {
		return confidenceFloor
	}

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(len(amounts))
	if mean <= 0 {
		return confidenceFloor
	}

	var variance float64
	for _, a := range amounts {
		variance += (a - mean) * (a - mean)
	}
	stdev := math.Sqrt(variance / float64(len(amounts)))

	confidence := 1 - stdev/mean
	if confidence < confidenceFloor {
		return confidenceFloor
	}
	if confidence > confidenceCeil {
		return confidenceCeil
	}
	return confidence
}
