package services

import (
	"context"
	"fmt"
	"log/slog"

	"burnplan/internal/amqp"
	"burnplan/internal/analyze"
	"burnplan/internal/budget"
	"burnplan/internal/core"
)

// EventPublisher publishes budget recomputation events. Satisfied by *amqp.Client.
type EventPublisher interface {
	PublishBudgetRecomputed(ctx context.Context, msg *amqp.BudgetRecomputedMessage) error
	Close() error
}

// BudgetService orchestrates budget distribution and burn-rate forecasting,
// publishing a recomputation event after each successful distribution.
type BudgetService struct {
	distributor *budget.Distributor
	publisher   EventPublisher
}

func NewBudgetService(distributor *budget.Distributor, publisher EventPublisher) *BudgetService {
	return &BudgetService{
		distributor: distributor,
		publisher:   publisher,
	}
}

// Distribute runs a full month distribution and announces the result.
// Publishing is best effort, a broker failure never fails the request.
func (s *BudgetService) Distribute(ctx context.Context, req budget.Request) (core.MonthBudget, error) {
	result, err := s.distributor.Distribute(ctx, req)
	if err != nil {
		return core.MonthBudget{}, fmt.Errorf("distribute budget: %w", err)
	}

	if err := s.publishRecomputed(ctx, req, result); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget recomputed message",
			"user_id", req.UserID, "error", err)
		// Don't fail the request - distribution result is already computed and persisted
	}

	return result, nil
}

// Forecast predicts when the balance hits zero at the current burn rate.
func (s *BudgetService) Forecast(ctx context.Context, history []core.Transaction, currentBalance int64, includedIDs []string) (core.InflationPrediction, error) {
	included := make(map[string]struct{}, len(includedIDs))
	for _, id := range includedIDs {
		included[id] = struct{}{}
	}

	prediction, err := analyze.Predict(history, currentBalance, included)
	if err != nil {
		return core.InflationPrediction{}, fmt.Errorf("forecast burn rate: %w", err)
	}

	slog.InfoContext(ctx, "Burn-rate forecast computed",
		"monthly_burn", prediction.MonthlyBurnRate,
		"months_until_zero", prediction.MonthsUntilZero,
		"confidence", prediction.Confidence)
	return prediction, nil
}

func (s *BudgetService) publishRecomputed(ctx context.Context, req budget.Request, result core.MonthBudget) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping recomputed message")
		return nil
	}

	if len(result.Days) == 0 {
		return nil
	}
	monthStart := result.Days[0].Date.Key()

	msg := amqp.NewBudgetRecomputedMessage(
		req.UserID,
		monthStart,
		result.TotalBudget,
		result.TotalSpent,
		result.TotalRemaining,
		result.DaysRemaining,
	)
	return s.publisher.PublishBudgetRecomputed(ctx, msg)
}

// Close releases the publisher connection.
func (s *BudgetService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
