// Package weighting implements the HTTP client for the external daily-limit
// weighting service.
//
// The service is strictly optional: every failure mode (network error,
// timeout, non-success status, malformed body, out-of-range values) collapses
// into ErrUnavailable so the distributor can fall back to its local strategy.
// Requests are never retried.
package weighting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"burnplan/internal/budget"
	"burnplan/internal/core"
)

// ErrUnavailable marks any weighting-service failure; callers treat all
// causes identically.
var ErrUnavailable = errors.New("weighting service unavailable")

const defaultTimeout = 10 * time.Second

type Client struct {
	endpoint string
	client   *http.Client
}

var _ budget.WeightingService = (*Client)(nil)

// NewClient creates a weighting client for the given endpoint. A
// non-positive timeout falls back to the default.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Wire DTOs. Dates travel as YYYY-MM-DD, amounts as integer minor units.
type (
	wireTransaction struct {
		ID             string `json:"id"`
		Time           int64  `json:"time"`
		Description    string `json:"description"`
		MCC            int    `json:"mcc"`
		Amount         int64  `json:"amount"`
		Balance        int64  `json:"balance"`
		CashbackAmount int64  `json:"cashbackAmount"`
		CurrencyCode   int    `json:"currencyCode,omitempty"`
	}

	wireRequest struct {
		RemainingBudget     int64             `json:"remainingBudget"`
		TotalBudget         int64             `json:"totalBudget"`
		Transactions        []wireTransaction `json:"transactions"`
		MonthStart          string            `json:"monthStart"`
		MonthEnd            string            `json:"monthEnd"`
		FinancialMonthStart int               `json:"financialMonthStart"`
	}

	wireDailyBudget struct {
		Date       string  `json:"date"`
		Limit      int64   `json:"limit"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}

	wireResponse struct {
		DailyBudgets []wireDailyBudget `json:"dailyBudgets"`
	}
)

// PlanDailyLimits submits the weighting request and returns one proposed
// limit per day, or ErrUnavailable.
func (c *Client) PlanDailyLimits(ctx context.Context, req budget.WeightingRequest) ([]budget.WeightedDay, error) {
	body, err := json.Marshal(buildWireRequest(req))
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	days, err := parseWireDays(wire.DailyBudgets)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Weighting service responded",
		"days", len(days),
		"duration_ms", time.Since(start).Milliseconds())

	return days, nil
}

func buildWireRequest(req budget.WeightingRequest) wireRequest {
	txs := make([]wireTransaction, len(req.Transactions))
	for i, tx := range req.Transactions {
		txs[i] = wireTransaction{
			ID:             tx.ID,
			Time:           tx.Time,
			Description:    tx.Description,
			MCC:            tx.MCC,
			Amount:         tx.Amount,
			Balance:        tx.Balance,
			CashbackAmount: tx.CashbackAmount,
			CurrencyCode:   tx.CurrencyCode,
		}
	}
	return wireRequest{
		RemainingBudget:     req.RemainingBudget,
		TotalBudget:         req.TotalBudget,
		Transactions:        txs,
		MonthStart:          req.MonthStart.Key(),
		MonthEnd:            req.MonthEnd.Key(),
		FinancialMonthStart: req.FinancialMonthStart,
	}
}

func parseWireDays(wire []wireDailyBudget) ([]budget.WeightedDay, error) {
	if len(wire) == 0 {
		return nil, fmt.Errorf("%w: empty daily budget list", ErrUnavailable)
	}

	days := make([]budget.WeightedDay, len(wire))
	for i, w := range wire {
		parsed, err := time.Parse("2006-01-02", w.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrUnavailable, w.Date)
		}
		if w.Limit < 0 {
			return nil, fmt.Errorf("%w: negative limit for %s", ErrUnavailable, w.Date)
		}
		if w.Confidence < 0 || w.Confidence > 1 {
			return nil, fmt.Errorf("%w: confidence %v out of range for %s", ErrUnavailable, w.Confidence, w.Date)
		}
		days[i] = budget.WeightedDay{
			Date:       core.DateOf(parsed),
			Limit:      w.Limit,
			Confidence: w.Confidence,
			Reasoning:  w.Reasoning,
		}
	}
	return days, nil
}
