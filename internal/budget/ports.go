package budget

import (
	"context"

	"burnplan/internal/core"
)

// Ports for outbound collaborators of the distributor.
type (
	// DailyRecord is the persisted, append-mostly record of a day once it
	// has elapsed. Dates are day-granularity midnight UTC.
	DailyRecord struct {
		UserID  string
		Date    core.Date
		Limit   int64
		Spent   int64
		Balance int64
	}

	// HistoryStore persists daily records. Upsert is last-writer-wins per
	// (user, date); List returns records ordered ascending by date.
	HistoryStore interface {
		Upsert(ctx context.Context, rec DailyRecord) error
		List(ctx context.Context, userID string, from, to core.Date) ([]DailyRecord, error)
	}

	// WeightingRequest is the payload sent to the external weighting service.
	WeightingRequest struct {
		RemainingBudget     int64
		TotalBudget         int64
		Transactions        []core.Transaction
		MonthStart          core.Date
		MonthEnd            core.Date
		FinancialMonthStart int
	}

	// WeightedDay is one future-day limit proposed by the external service.
	WeightedDay struct {
		Date       core.Date
		Limit      int64
		Confidence float64
		Reasoning  string
	}

	// WeightingService proposes per-day limits for the future part of the
	// month. Any error is treated as "unavailable" and never retried; the
	// distributor falls back to local normalized weights.
	WeightingService interface {
		PlanDailyLimits(ctx context.Context, req WeightingRequest) ([]WeightedDay, error)
	}
)
