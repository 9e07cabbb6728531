package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"burnplan/internal/budget"
	"burnplan/internal/core"
)

type distributeRequest struct {
	TotalBudget              int64            `json:"totalBudget"`
	CurrentDate              string           `json:"currentDate"`
	PastTransactions         []transactionDTO `json:"pastTransactions"`
	CurrentMonthTransactions []transactionDTO `json:"currentMonthTransactions"`
	ExcludedIDs              []string         `json:"excludedIds"`
	IncludedIDs              []string         `json:"includedIds"`
	CurrentBalance           int64            `json:"currentBalance"`
	UserID                   string           `json:"userId"`
	UseExternalWeighting     bool             `json:"useExternalWeighting"`
	FinancialMonthStartDay   int              `json:"financialMonthStartDay"`
	SkipHistoricalLimits     bool             `json:"skipHistoricalLimits"`
}

func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req distributeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	currentDate, err := parseDate(req.CurrentDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid currentDate, expected YYYY-MM-DD")
		return
	}

	startDay := req.FinancialMonthStartDay
	if startDay == 0 {
		startDay = s.startDay
	}

	breq := budget.Request{
		TotalBudget:              req.TotalBudget,
		CurrentDate:              currentDate,
		PastTransactions:         toCoreTransactions(req.PastTransactions),
		CurrentMonthTransactions: toCoreTransactions(req.CurrentMonthTransactions),
		ExcludedIDs:              req.ExcludedIDs,
		IncludedIDs:              req.IncludedIDs,
		CurrentBalance:           req.CurrentBalance,
		UserID:                   req.UserID,
		UseExternalWeighting:     req.UseExternalWeighting,
		FinancialMonthStartDay:   startDay,
		SkipHistoricalLimits:     req.SkipHistoricalLimits,
	}

	result, err := s.planner.Distribute(r.Context(), breq)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget distribution failed",
			"user_id", req.UserID, "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if len(result.Days) > 0 {
		s.monthCache.Set(monthCacheKey(req.UserID, result.Days[0].Date), result)
	}

	s.slogger.LogBudgetDistributed(r.Context(), req.UserID, result.TotalBudget, result.TotalSpent, result.DaysRemaining)
	writeJSON(w, http.StatusOK, toMonthBudgetDTO(result))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user parameter")
		return
	}

	today := core.DateOf(time.Now().UTC())
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		today = d
	}

	startDay := s.startDay
	if v := strings.TrimSpace(r.URL.Query().Get("startDay")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 31 {
			writeError(w, http.StatusBadRequest, "invalid startDay, expected 1-31")
			return
		}
		startDay = n
	}

	monthStart := core.MonthStart(today, startDay)

	if cached, found := s.monthCache.Get(monthCacheKey(userID, monthStart)); found {
		slog.DebugContext(r.Context(), "Month budget cache hit", "user_id", userID)
		writeJSON(w, http.StatusOK, toMonthBudgetDTO(cached))
		return
	}

	if s.history == nil {
		writeError(w, http.StatusNotFound, "no budget recorded for user")
		return
	}

	records, err := s.history.List(r.Context(), userID, monthStart, core.MonthEnd(today, startDay))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to read budget history",
			"user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read budget history")
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "no budget recorded for user")
		return
	}

	writeJSON(w, http.StatusOK, toDailyRecordsDTO(records))
}

type forecastRequest struct {
	Transactions   []transactionDTO `json:"transactions"`
	CurrentBalance int64            `json:"currentBalance"`
	IncludedIDs    []string         `json:"includedIds"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req forecastRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	prediction, err := s.planner.Forecast(r.Context(), toCoreTransactions(req.Transactions), req.CurrentBalance, req.IncludedIDs)
	if err != nil {
		slog.ErrorContext(r.Context(), "Forecast failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toPredictionDTO(prediction))
}

func monthCacheKey(userID string, monthStart core.Date) string {
	return userID + "|" + monthStart.Key()
}

type dailyRecordDTO struct {
	Date    string `json:"date"`
	Limit   int64  `json:"limit"`
	Spent   int64  `json:"spent"`
	Balance int64  `json:"balance"`
}

func toDailyRecordsDTO(records []budget.DailyRecord) []dailyRecordDTO {
	dtos := make([]dailyRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = dailyRecordDTO{
			Date:    rec.Date.Key(),
			Limit:   rec.Limit,
			Spent:   rec.Spent,
			Balance: rec.Balance,
		}
	}
	return dtos
}
