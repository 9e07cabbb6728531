package analyze

import (
	"math"
	"testing"
	"time"

	"burnplan/internal/core"
)

func expenseOn(id string, date core.Date, amount int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Time:        date.Add(12 * time.Hour).Unix(),
		Amount:      -amount,
		Description: "POS purchase",
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPatternEmptyHistory(t *testing.T) {
	p := Pattern(nil, nil)
	if p.WeekdayAvg != 0 || p.WeekendAvg != 0 {
		t.Errorf("empty history averages = %v/%v, want 0/0", p.WeekdayAvg, p.WeekendAvg)
	}
	for d, m := range p.DayOfMonthMultiplier {
		if m != 1.0 {
			t.Errorf("multiplier[%d] = %v, want neutral 1.0", d, m)
		}
	}
}

func TestPatternWeekdayWeekendAverages(t *testing.T) {
	// 2024-03-04 is a Monday, 2024-03-09 a Saturday.
	history := []core.Transaction{
		expenseOn("1", core.NewDate(2024, 3, 4), 1000),
		expenseOn("2", core.NewDate(2024, 3, 5), 3000),
		expenseOn("3", core.NewDate(2024, 3, 9), 8000),
		expenseOn("4", core.NewDate(2024, 3, 10), 4000),
	}

	p := Pattern(history, nil)
	if !almostEqual(p.WeekdayAvg, 2000) {
		t.Errorf("WeekdayAvg = %v, want 2000", p.WeekdayAvg)
	}
	if !almostEqual(p.WeekendAvg, 6000) {
		t.Errorf("WeekendAvg = %v, want 6000", p.WeekendAvg)
	}
}

func TestPatternSumsSameDayExpenses(t *testing.T) {
	day := core.NewDate(2024, 3, 4)
	history := []core.Transaction{
		expenseOn("1", day, 1000),
		expenseOn("2", day, 500),
	}
	p := Pattern(history, nil)
	if !almostEqual(p.WeekdayAvg, 1500) {
		t.Errorf("WeekdayAvg = %v, want 1500 (one observed day)", p.WeekdayAvg)
	}
}

func TestPatternIgnoresNonExpenses(t *testing.T) {
	day := core.NewDate(2024, 3, 4)
	history := []core.Transaction{
		expenseOn("1", day, 1000),
		{ID: "2", Time: day.Add(13 * time.Hour).Unix(), Amount: 250000, Description: "Salary"},
		{ID: "3", Time: day.Add(14 * time.Hour).Unix(), Amount: -40000, Description: "ATM withdrawal"},
	}
	p := Pattern(history, nil)
	if !almostEqual(p.WeekdayAvg, 1000) {
		t.Errorf("WeekdayAvg = %v, want 1000 (income and cash ignored)", p.WeekdayAvg)
	}
}

func TestPatternDayOfMonthMultipliers(t *testing.T) {
	// Day 4 spends double day 5; overall mean is 1500.
	history := []core.Transaction{
		expenseOn("1", core.NewDate(2024, 3, 4), 2000),
		expenseOn("2", core.NewDate(2024, 3, 5), 1000),
	}
	p := Pattern(history, nil)

	if !almostEqual(p.DayOfMonthMultiplier[3], 2000.0/1500.0) {
		t.Errorf("multiplier[3] = %v, want %v", p.DayOfMonthMultiplier[3], 2000.0/1500.0)
	}
	if !almostEqual(p.DayOfMonthMultiplier[4], 1000.0/1500.0) {
		t.Errorf("multiplier[4] = %v, want %v", p.DayOfMonthMultiplier[4], 1000.0/1500.0)
	}
	if p.DayOfMonthMultiplier[10] != 1.0 {
		t.Errorf("unobserved day multiplier = %v, want 1.0", p.DayOfMonthMultiplier[10])
	}
}
