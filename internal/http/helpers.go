package http

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"time"

	"burnplan/internal/core"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, err
	}
	return core.DateOf(t), nil
}

// transactionDTO mirrors core.Transaction on the wire.
type transactionDTO struct {
	ID             string `json:"id"`
	Time           int64  `json:"time"`
	Description    string `json:"description"`
	MCC            int    `json:"mcc"`
	Amount         int64  `json:"amount"`
	Balance        int64  `json:"balance"`
	CashbackAmount int64  `json:"cashbackAmount"`
	CurrencyCode   int    `json:"currencyCode"`
	Category       string `json:"category,omitempty"`
	Comment        string `json:"comment,omitempty"`
}

func (d transactionDTO) toCore() core.Transaction {
	return core.Transaction{
		ID:             d.ID,
		Time:           d.Time,
		Description:    d.Description,
		MCC:            d.MCC,
		Amount:         d.Amount,
		Balance:        d.Balance,
		CashbackAmount: d.CashbackAmount,
		CurrencyCode:   d.CurrencyCode,
		Category:       d.Category,
		Comment:        d.Comment,
	}
}

func toCoreTransactions(dtos []transactionDTO) []core.Transaction {
	if len(dtos) == 0 {
		return nil
	}
	txs := make([]core.Transaction, len(dtos))
	for i, d := range dtos {
		txs[i] = d.toCore()
	}
	return txs
}

type dailyBudgetDTO struct {
	Date       string  `json:"date"`
	Limit      int64   `json:"limit"`
	Spent      int64   `json:"spent"`
	Remaining  int64   `json:"remaining"`
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence,omitempty"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

type monthBudgetDTO struct {
	TotalBudget    int64            `json:"totalBudget"`
	TotalSpent     int64            `json:"totalSpent"`
	TotalRemaining int64            `json:"totalRemaining"`
	DaysRemaining  int              `json:"daysRemaining"`
	Days           []dailyBudgetDTO `json:"days"`
	Recommendation string           `json:"recommendation"`
	CurrentBalance int64            `json:"currentBalance"`
}

func toMonthBudgetDTO(mb core.MonthBudget) monthBudgetDTO {
	dto := monthBudgetDTO{
		TotalBudget:    mb.TotalBudget,
		TotalSpent:     mb.TotalSpent,
		TotalRemaining: mb.TotalRemaining,
		DaysRemaining:  mb.DaysRemaining,
		Recommendation: mb.Recommendation,
		CurrentBalance: mb.CurrentBalance,
	}
	for _, d := range mb.Days {
		dto.Days = append(dto.Days, dailyBudgetDTO{
			Date:       d.Date.Key(),
			Limit:      d.Limit,
			Spent:      d.Spent,
			Remaining:  d.Remaining,
			Status:     string(d.Status),
			Confidence: d.Confidence,
			Reasoning:  d.Reasoning,
		})
	}
	return dto
}

type projectionPointDTO struct {
	Month   int   `json:"month"`
	Balance int64 `json:"balance"`
}

type predictionDTO struct {
	CurrentBalance  int64                `json:"currentBalance"`
	MonthlyBurnRate float64              `json:"monthlyBurnRate"`
	MonthsUntilZero *float64             `json:"monthsUntilZero"` // null when balance never depletes
	Projection      []projectionPointDTO `json:"projection"`
	Confidence      float64              `json:"confidence"`
}

func toPredictionDTO(p core.InflationPrediction) predictionDTO {
	dto := predictionDTO{
		CurrentBalance:  p.CurrentBalance,
		MonthlyBurnRate: p.MonthlyBurnRate,
		Confidence:      p.Confidence,
	}
	// +Inf is not representable in JSON, encode it as null.
	if !math.IsInf(p.MonthsUntilZero, 1) {
		v := p.MonthsUntilZero
		dto.MonthsUntilZero = &v
	}
	for _, pt := range p.Projection {
		dto.Projection = append(dto.Projection, projectionPointDTO{Month: pt.Month, Balance: pt.Balance})
	}
	return dto
}
