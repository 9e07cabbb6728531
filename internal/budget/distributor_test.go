package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"burnplan/internal/core"
)

type fakeWeighting struct {
	days    []WeightedDay
	err     error
	lastReq *WeightingRequest
}

func (f *fakeWeighting) PlanDailyLimits(_ context.Context, req WeightingRequest) ([]WeightedDay, error) {
	f.lastReq = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.days, nil
}

type failingStore struct{}

func (failingStore) Upsert(context.Context, DailyRecord) error {
	return errors.New("disk full")
}

func (failingStore) List(context.Context, string, core.Date, core.Date) ([]DailyRecord, error) {
	return nil, errors.New("disk full")
}

func spendOn(id string, date core.Date, amount int64, description string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Time:        date.Add(10 * time.Hour).Unix(),
		Amount:      amount,
		Description: description,
	}
}

// A fresh 30-day month with nothing spent splits the budget evenly.
func TestDistributeFreshMonth(t *testing.T) {
	d := NewDistributor(NewMemoryStore(), nil)

	month, err := d.Distribute(context.Background(), Request{
		TotalBudget:            10000,
		CurrentDate:            core.NewDate(2024, 4, 1),
		CurrentBalance:         10000,
		FinancialMonthStartDay: 1,
	})
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	if month.DaysRemaining != 30 {
		t.Errorf("DaysRemaining = %d, want 30", month.DaysRemaining)
	}
	if month.TotalSpent != 0 || month.TotalRemaining != 10000 {
		t.Errorf("TotalSpent/TotalRemaining = %d/%d, want 0/10000", month.TotalSpent, month.TotalRemaining)
	}
	if len(month.Days) != 30 {
		t.Fatalf("month has %d days, want 30", len(month.Days))
	}

	var sum int64
	for _, day := range month.Days {
		if day.Limit < 333 || day.Limit > 334 {
			t.Errorf("day %s limit = %d, want ~333", day.Date.Key(), day.Limit)
		}
		if day.Status != core.StatusUnder {
			t.Errorf("day %s status = %s, want under", day.Date.Key(), day.Status)
		}
		sum += day.Limit
	}
	if sum != 10000 {
		t.Errorf("sum of limits = %d, want 10000", sum)
	}
}

// Paired same-day transactions are internal transfers and spend nothing.
func TestDistributePairedTransfersSpendNothing(t *testing.T) {
	d := NewDistributor(NewMemoryStore(), nil)
	day := core.NewDate(2024, 4, 10)

	month, err := d.Distribute(context.Background(), Request{
		TotalBudget:            100000,
		CurrentDate:            core.NewDate(2024, 4, 15),
		CurrentBalance:         100000,
		FinancialMonthStartDay: 1,
		CurrentMonthTransactions: []core.Transaction{
			spendOn("a", day, -5000, "Card operation"),
			spendOn("b", day, 5000, "Card operation"),
		},
	})
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if month.TotalSpent != 0 {
		t.Errorf("TotalSpent = %d, want 0 (paired transfer)", month.TotalSpent)
	}
}

func TestDistributeExcludedAndForcedIDs(t *testing.T) {
	d := NewDistributor(NewMemoryStore(), nil)
	day := core.NewDate(2024, 4, 10)

	month, err := d.Distribute(context.Background(), Request{
		TotalBudget:            100000,
		CurrentDate:            core.NewDate(2024, 4, 15),
		CurrentBalance:         100000,
		FinancialMonthStartDay: 1,
		ExcludedIDs:            []string{"skip-me"},
		IncludedIDs:            []string{"forced"},
		CurrentMonthTransactions: []core.Transaction{
			spendOn("skip-me", day, -7000, "Restaurant dinner"),
			spendOn("kept", day, -2000, "Coffee corner"),
			// Transfer keyword, but the user forced it to count.
			spendOn("forced", day, -3000, "Transfer to landlord"),
		},
	})
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if month.TotalSpent != 5000 {
		t.Errorf("TotalSpent = %d, want 5000 (excluded skipped, forced counted)", month.TotalSpent)
	}
}

// External limits need not sum to the remaining budget; TotalRemaining is
// always computed independently.
func TestDistributeExternalSmoothing(t *testing.T) {
	today := core.NewDate(2024, 4, 29)
	// Two future days: Apr 29 and Apr 30, limits summing to 9000.
	fake := &fakeWeighting{days: []WeightedDay{
		{Date: core.NewDate(2024, 4, 29), Limit: 4000, Confidence: 0.8, Reasoning: "steady weekday"},
		{Date: core.NewDate(2024, 4, 30), Limit: 5000, Confidence: 0.6, Reasoning: "month end"},
	}}
	d := NewDistributor(NewMemoryStore(), fake)

	month, err := d.Distribute(context.Background(), Request{
		TotalBudget:            10000,
		CurrentDate:            today,
		CurrentBalance:         10000,
		FinancialMonthStartDay: 1,
		UseExternalWeighting:   true,
	})
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	if month.TotalRemaining != 10000 {
		t.Errorf("TotalRemaining = %d, want independently computed 10000", month.TotalRemaining)
	}

	last := month.Days[len(month.Days)-1]
	if last.Limit != 5000 || last.Confidence != 0.6 || last.Reasoning != "month end" {
		t.Errorf("external day = {%d %v %q}, want {5000 0.6 %q}", last.Limit, last.Confidence, last.Reasoning, "month end")
	}
	if fake.lastReq == nil {
		t.Fatal("weighting service was not called")
	}
	if fake.lastReq.RemainingBudget != 10000 || fake.lastReq.FinancialMonthStart != 1 {
		t.Errorf("weighting request = %+v, want remaining 10000 and start day 1", fake.lastReq)
	}
}

func TestDistributeExternalFailuresFallBack(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeWeighting
	}{
		{"service error", &fakeWeighting{err: errors.New("connection refused")}},
		{"missing days", &fakeWeighting{days: []WeightedDay{
			{Date: core.NewDate(2024, 4, 29), Limit: 4000, Confidence: 0.8},
		}}},
		{"negative limit", &fakeWeighting{days: []WeightedDay{
			{Date: core.NewDate(2024, 4, 29), Limit: -1, Confidence: 0.8},
			{Date: core.NewDate(2024, 4, 30), Limit: 5000, Confidence: 0.6},
		}}},
		{"confidence out of range", &fakeWeighting{days: []WeightedDay{
			{Date: core.NewDate(2024, 4, 29), Limit: 4000, Confidence: 1.5},
			{Date: core.NewDate(2024, 4, 30), Limit: 5000, Confidence: 0.6},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDistributor(NewMemoryStore(), tt.fake)
			month, err := d.Distribute(context.Background(), Request{
				TotalBudget:            10000,
				CurrentDate:            core.NewDate(2024, 4, 29),
				CurrentBalance:         10000,
				FinancialMonthStartDay: 1,
				UseExternalWeighting:   true,
			})
			if err != nil {
				t.Fatalf("Distribute() error = %v, want recovered fallback", err)
			}

			var futureSum int64
			for _, day := range month.Days {
				if day.Confidence != 0 || day.Reasoning != "" {
					t.Errorf("day %s carries external metadata on the fallback path", day.Date.Key())
				}
				if !day.Date.Time.Before(core.NewDate(2024, 4, 29).Time) {
					futureSum += day.Limit
				}
			}
			if futureSum != month.TotalRemaining {
				t.Errorf("fallback future limits sum = %d, want %d", futureSum, month.TotalRemaining)
			}
		})
	}
}

// Recomputing with identical inputs must not change persisted past-day
// limits; a historical bypass recomputes them from the baseline.
func TestDistributePersistedHistoryWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// A past day persisted with a limit no recomputation would produce.
	seeded := DailyRecord{UserID: "u1", Date: core.NewDate(2024, 4, 3), Limit: 7777, Spent: 100, Balance: 9000}
	if err := store.Upsert(ctx, seeded); err != nil {
		t.Fatal(err)
	}

	d := NewDistributor(store, nil)
	req := Request{
		TotalBudget:            30000,
		CurrentDate:            core.NewDate(2024, 4, 10),
		CurrentBalance:         25000,
		UserID:                 "u1",
		FinancialMonthStartDay: 1,
	}

	month, err := d.Distribute(ctx, req)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if month.Days[2].Limit != 7777 {
		t.Errorf("past day limit = %d, want persisted 7777", month.Days[2].Limit)
	}
	// Days without history fall back to the plain baseline for display.
	if month.Days[0].Limit != 1000 {
		t.Errorf("unpersisted past day limit = %d, want baseline 1000", month.Days[0].Limit)
	}

	// Second run with identical inputs: the persisted limit is untouched.
	if _, err := d.Distribute(ctx, req); err != nil {
		t.Fatal(err)
	}
	records, err := store.List(ctx, "u1", core.NewDate(2024, 4, 3), core.NewDate(2024, 4, 3))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Limit != 7777 {
		t.Errorf("persisted limit after recompute = %+v, want 7777", records)
	}

	// Explicit bypass recomputes the day and overwrites history.
	req.SkipHistoricalLimits = true
	month, err = d.Distribute(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if month.Days[2].Limit != 1000 {
		t.Errorf("bypassed past day limit = %d, want baseline 1000", month.Days[2].Limit)
	}
	records, _ = store.List(ctx, "u1", core.NewDate(2024, 4, 3), core.NewDate(2024, 4, 3))
	if len(records) != 1 || records[0].Limit != 1000 {
		t.Errorf("persisted limit after bypass = %+v, want 1000", records)
	}
}

func TestDistributePersistsElapsedDays(t *testing.T) {
	store := NewMemoryStore()
	d := NewDistributor(store, nil)

	_, err := d.Distribute(context.Background(), Request{
		TotalBudget:            30000,
		CurrentDate:            core.NewDate(2024, 4, 10),
		CurrentBalance:         25000,
		UserID:                 "u1",
		FinancialMonthStartDay: 1,
	})
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	records, err := store.List(context.Background(), "u1", core.NewDate(2024, 4, 1), core.NewDate(2024, 4, 30))
	if err != nil {
		t.Fatal(err)
	}
	// Days 1..10 have elapsed (today inclusive).
	if len(records) != 10 {
		t.Fatalf("persisted %d records, want 10", len(records))
	}
	for i, rec := range records {
		want := core.NewDate(2024, 4, i+1)
		if !rec.Date.Equal(want.Time) {
			t.Errorf("record %d date = %s, want %s", i, rec.Date.Key(), want.Key())
		}
		if rec.Balance != 25000 {
			t.Errorf("record %d balance = %d, want 25000", i, rec.Balance)
		}
	}
}

// Overspend must propagate as a negative remaining budget, not clamp to zero.
func TestDistributeOverspendPropagates(t *testing.T) {
	d := NewDistributor(NewMemoryStore(), nil)

	month, err := d.Distribute(context.Background(), Request{
		TotalBudget:            10000,
		CurrentDate:            core.NewDate(2024, 4, 20),
		CurrentBalance:         500,
		FinancialMonthStartDay: 1,
		CurrentMonthTransactions: []core.Transaction{
			spendOn("1", core.NewDate(2024, 4, 5), -15000, "Restaurant dinner"),
		},
	})
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if month.TotalRemaining != -5000 {
		t.Errorf("TotalRemaining = %d, want -5000", month.TotalRemaining)
	}

	var futureSum int64
	for _, day := range month.Days {
		if !day.Date.Time.Before(core.NewDate(2024, 4, 20).Time) {
			futureSum += day.Limit
		}
	}
	if futureSum != -5000 {
		t.Errorf("future limits sum = %d, want -5000", futureSum)
	}
}

// Persistence failures are logged and recovered, never surfaced.
func TestDistributeSurvivesStoreFailures(t *testing.T) {
	d := NewDistributor(failingStore{}, nil)

	month, err := d.Distribute(context.Background(), Request{
		TotalBudget:            10000,
		CurrentDate:            core.NewDate(2024, 4, 10),
		CurrentBalance:         10000,
		FinancialMonthStartDay: 1,
	})
	if err != nil {
		t.Fatalf("Distribute() error = %v, want degraded success", err)
	}
	if len(month.Days) != 30 {
		t.Errorf("month has %d days, want 30", len(month.Days))
	}
}

func TestDistributeValidation(t *testing.T) {
	d := NewDistributor(NewMemoryStore(), nil)

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{
			name: "negative budget",
			req:  Request{TotalBudget: -1, CurrentDate: core.NewDate(2024, 4, 1), FinancialMonthStartDay: 1},
			want: core.ErrNegativeBudget,
		},
		{
			name: "start day too small",
			req:  Request{TotalBudget: 100, CurrentDate: core.NewDate(2024, 4, 1), FinancialMonthStartDay: 0},
			want: core.ErrInvalidStartDay,
		},
		{
			name: "start day too large",
			req:  Request{TotalBudget: 100, CurrentDate: core.NewDate(2024, 4, 1), FinancialMonthStartDay: 32},
			want: core.ErrInvalidStartDay,
		},
		{
			name: "zero date",
			req:  Request{TotalBudget: 100, FinancialMonthStartDay: 1},
			want: core.ErrZeroDate,
		},
		{
			name: "current month transaction without id",
			req: Request{
				TotalBudget:            100,
				CurrentDate:            core.NewDate(2024, 4, 1),
				FinancialMonthStartDay: 1,
				CurrentMonthTransactions: []core.Transaction{
					{Time: core.NewDate(2024, 4, 1).Unix(), Amount: -500},
				},
			},
			want: core.ErrEmptyID,
		},
		{
			name: "past transaction without id",
			req: Request{
				TotalBudget:            100,
				CurrentDate:            core.NewDate(2024, 4, 1),
				FinancialMonthStartDay: 1,
				PastTransactions: []core.Transaction{
					{Time: core.NewDate(2024, 3, 1).Unix(), Amount: -500},
				},
			},
			want: core.ErrEmptyID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Distribute(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Distribute() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// A debit late on the month's final day still belongs to the month.
func TestDistributeCountsLastDayEveningSpend(t *testing.T) {
	d := NewDistributor(NewMemoryStore(), nil)
	lastDay := core.NewDate(2024, 4, 30)

	month, err := d.Distribute(context.Background(), Request{
		TotalBudget:            100000,
		CurrentDate:            core.NewDate(2024, 4, 30),
		FinancialMonthStartDay: 1,
		CurrentMonthTransactions: []core.Transaction{
			{ID: "late", Time: lastDay.Add(23*time.Hour + 30*time.Minute).Unix(), Amount: -4000, Description: "Late dinner"},
			{ID: "next", Time: lastDay.AddDays(1).Add(time.Hour).Unix(), Amount: -4000, Description: "May breakfast"},
		},
	})
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if month.TotalSpent != 4000 {
		t.Errorf("TotalSpent = %d, want 4000 (next month excluded)", month.TotalSpent)
	}
}
