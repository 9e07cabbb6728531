// Package budget allocates a finite budget into per-day spending limits
// across a financial month and reconciles them against classified spending.
//
// A distribution run is stateless and deterministic given its inputs and the
// persisted history: the same request always yields the same MonthBudget,
// and elapsed days keep their persisted limits unless a recompute bypass is
// explicitly requested.
package budget

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"burnplan/internal/analyze"
	"burnplan/internal/classify"
	"burnplan/internal/core"
)

// transactionSampleSize bounds the recent-transaction sample sent to the
// external weighting service.
const transactionSampleSize = 90

// Request carries every input of a distribution run explicitly; there is no
// ambient user or settings state.
type Request struct {
	TotalBudget              int64
	CurrentDate              core.Date
	PastTransactions         []core.Transaction
	CurrentMonthTransactions []core.Transaction
	ExcludedIDs              []string
	IncludedIDs              []string
	CurrentBalance           int64
	UserID                   string
	UseExternalWeighting     bool
	FinancialMonthStartDay   int
	SkipHistoricalLimits     bool
}

func (r Request) validate() error {
	if r.TotalBudget < 0 {
		return fmt.Errorf("validate distribution request: %w", core.ErrNegativeBudget)
	}
	if r.FinancialMonthStartDay < 1 || r.FinancialMonthStartDay > 31 {
		return fmt.Errorf("validate distribution request: %w", core.ErrInvalidStartDay)
	}
	if err := r.CurrentDate.Validate(); err != nil {
		return fmt.Errorf("validate distribution request: %w", err)
	}
	for _, tx := range r.CurrentMonthTransactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("validate distribution request: %w", err)
		}
	}
	for _, tx := range r.PastTransactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("validate distribution request: %w", err)
		}
	}
	return nil
}

// Distributor computes month budgets. The weighting service is optional;
// when absent or unavailable the local normalized-weight fallback is used.
type Distributor struct {
	history   HistoryStore
	weighting WeightingService
}

func NewDistributor(history HistoryStore, weighting WeightingService) *Distributor {
	return &Distributor{history: history, weighting: weighting}
}

// plannedDay is a future-day limit before reconciliation.
type plannedDay struct {
	limit      int64
	confidence float64
	reasoning  string
	external   bool
}

// Distribute runs the allocation pipeline and always returns a complete
// MonthBudget for valid input; external-service and persistence failures are
// logged and recovered, never surfaced.
func (d *Distributor) Distribute(ctx context.Context, req Request) (core.MonthBudget, error) {
	if err := req.validate(); err != nil {
		return core.MonthBudget{}, err
	}

	today := core.DateOf(req.CurrentDate.Time)
	days := core.MonthDays(today, req.FinancialMonthStartDay)
	monthStart, monthEnd := days[0], days[len(days)-1]

	excluded := idSet(req.ExcludedIDs)
	included := idSet(req.IncludedIDs)

	// Reconcile actual spending per day within the financial month. The
	// window is inclusive on both ends at instant granularity.
	var monthTxs []core.Transaction
	windowEnd := monthEnd.EndOfDay()
	for _, tx := range req.CurrentMonthTransactions {
		ts := time.Unix(tx.Time, 0).UTC()
		if ts.Before(monthStart.Time) || ts.After(windowEnd) {
			continue
		}
		monthTxs = append(monthTxs, tx)
	}
	byDay := classify.GroupByDate(monthTxs)

	spentByDay := make(map[string]int64, len(byDay))
	var totalSpent int64
	for key, txs := range byDay {
		for _, tx := range txs {
			if _, skip := excluded[tx.ID]; skip {
				continue
			}
			if !classify.IsExpense(tx, txs, included) {
				continue
			}
			spentByDay[key] += tx.AbsAmount()
			totalSpent += tx.AbsAmount()
		}
	}

	// Negative remaining is a meaningful overspend signal; never clamp.
	remainingBudget := req.TotalBudget - totalSpent

	var future []core.Date
	pastCount := 0
	for _, day := range days {
		if day.Time.Before(today.Time) {
			pastCount++
		} else {
			future = append(future, day)
		}
	}

	pattern := analyze.Pattern(req.PastTransactions, included)
	planned := d.planFuture(ctx, req, remainingBudget, future, pattern, monthStart, monthEnd)

	persisted := d.loadHistory(ctx, req.UserID, monthStart, monthEnd)
	baseline := req.TotalBudget / int64(len(days))

	month := core.MonthBudget{
		TotalBudget:    req.TotalBudget,
		TotalSpent:     totalSpent,
		TotalRemaining: remainingBudget,
		DaysRemaining:  len(future),
		CurrentBalance: req.CurrentBalance,
		Days:           make([]core.DailyBudget, 0, len(days)),
	}

	for i, day := range days {
		key := day.Key()
		db := core.DailyBudget{
			Date:         day,
			Spent:        spentByDay[key],
			Transactions: byDay[key],
		}

		if i < pastCount {
			// Elapsed day: the persisted limit is truth unless the caller
			// explicitly asked for a historical recompute.
			if rec, ok := persisted[key]; ok && !req.SkipHistoricalLimits {
				db.Limit = rec.Limit
			} else {
				db.Limit = baseline
			}
		} else {
			p := planned[i-pastCount]
			db.Limit = p.limit
			if p.external {
				db.Confidence = p.confidence
				db.Reasoning = p.reasoning
			}
		}

		db.Remaining = db.Limit - db.Spent
		db.Status = core.StatusFor(db.Limit, db.Spent)
		month.Days = append(month.Days, db)
	}

	d.persistElapsed(ctx, req, today, month.Days)

	month.Recommendation = recommendation(month, pattern)
	return month, nil
}

// planFuture resolves limits for future days: the external weighting branch
// when requested and healthy, otherwise the local normalized fallback. Any
// external failure is logged and recovered without retry.
func (d *Distributor) planFuture(ctx context.Context, req Request, remaining int64, future []core.Date, pattern core.SpendingPattern, monthStart, monthEnd core.Date) []plannedDay {
	if len(future) == 0 {
		return nil
	}

	if req.UseExternalWeighting && d.weighting != nil {
		wreq := WeightingRequest{
			RemainingBudget:     remaining,
			TotalBudget:         req.TotalBudget,
			Transactions:        recentSample(req.PastTransactions, req.CurrentMonthTransactions),
			MonthStart:          monthStart,
			MonthEnd:            monthEnd,
			FinancialMonthStart: req.FinancialMonthStartDay,
		}

		weighted, err := d.weighting.PlanDailyLimits(ctx, wreq)
		if err != nil {
			slog.WarnContext(ctx, "Weighting service unavailable, using local fallback",
				"error", err, "user_id", req.UserID)
		} else if planned, ok := matchWeightedDays(weighted, future); ok {
			return planned
		} else {
			slog.WarnContext(ctx, "Weighting response incomplete, using local fallback",
				"days_returned", len(weighted), "days_needed", len(future))
		}
	}

	limits := localLimits(remaining, future, pattern)
	planned := make([]plannedDay, len(future))
	for i, limit := range limits {
		planned[i] = plannedDay{limit: limit}
	}
	return planned
}

// matchWeightedDays requires exactly one valid tuple per future day.
func matchWeightedDays(weighted []WeightedDay, future []core.Date) ([]plannedDay, bool) {
	byKey := make(map[string]WeightedDay, len(weighted))
	for _, w := range weighted {
		byKey[w.Date.Key()] = w
	}

	planned := make([]plannedDay, len(future))
	for i, day := range future {
		w, ok := byKey[day.Key()]
		if !ok || w.Limit < 0 || w.Confidence < 0 || w.Confidence > 1 {
			return nil, false
		}
		planned[i] = plannedDay{
			limit:      w.Limit,
			confidence: w.Confidence,
			reasoning:  w.Reasoning,
			external:   true,
		}
	}
	return planned, true
}

// loadHistory reads persisted daily records for the month, keyed by date.
// Read failures degrade to an empty history.
func (d *Distributor) loadHistory(ctx context.Context, userID string, from, to core.Date) map[string]DailyRecord {
	if d.history == nil {
		return nil
	}
	records, err := d.history.List(ctx, userID, from, to)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read persisted daily budgets, proceeding without history",
			"error", err, "user_id", userID)
		return nil
	}
	byKey := make(map[string]DailyRecord, len(records))
	for _, rec := range records {
		byKey[rec.Date.Key()] = rec
	}
	return byKey
}

// persistElapsed upserts a record for every day up to and including today.
// Writes are best-effort and idempotent: recomputing with identical inputs
// rewrites identical values.
func (d *Distributor) persistElapsed(ctx context.Context, req Request, today core.Date, days []core.DailyBudget) {
	if d.history == nil {
		return
	}
	for _, db := range days {
		if db.Date.Time.After(today.Time) {
			continue
		}
		rec := DailyRecord{
			UserID:  req.UserID,
			Date:    db.Date,
			Limit:   db.Limit,
			Spent:   db.Spent,
			Balance: req.CurrentBalance,
		}
		if err := d.history.Upsert(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to persist daily budget",
				"error", err, "user_id", req.UserID, "date", db.Date.Key())
		}
	}
}

// recentSample returns the most recent transactions across history and the
// current month, newest first, bounded to the sample size.
func recentSample(past, current []core.Transaction) []core.Transaction {
	all := make([]core.Transaction, 0, len(past)+len(current))
	all = append(all, past...)
	all = append(all, current...)
	sort.Slice(all, func(i, j int) bool { return all[i].Time > all[j].Time })
	if len(all) > transactionSampleSize {
		all = all[:transactionSampleSize]
	}
	return all
}

func idSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
