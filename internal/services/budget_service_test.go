package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"burnplan/internal/amqp"
	"burnplan/internal/budget"
	"burnplan/internal/core"
)

type fakePublisher struct {
	published []*amqp.BudgetRecomputedMessage
	err       error
	closed    bool
}

func (p *fakePublisher) PublishBudgetRecomputed(_ context.Context, msg *amqp.BudgetRecomputedMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func freshMonthRequest() budget.Request {
	return budget.Request{
		TotalBudget:            30000,
		CurrentDate:            core.NewDate(2024, 4, 1),
		CurrentBalance:         50000,
		UserID:                 "u1",
		FinancialMonthStartDay: 1,
	}
}

func TestDistributePublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewBudgetService(budget.NewDistributor(budget.NewMemoryStore(), nil), pub)

	result, err := svc.Distribute(context.Background(), freshMonthRequest())
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if result.TotalBudget != 30000 {
		t.Errorf("TotalBudget = %d, want 30000", result.TotalBudget)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}
	msg := pub.published[0]
	if msg.UserID != "u1" || msg.MonthStart != "2024-04-01" {
		t.Errorf("message identity = %s/%s", msg.UserID, msg.MonthStart)
	}
	if msg.TotalBudget != result.TotalBudget || msg.TotalRemaining != result.TotalRemaining || msg.DaysRemaining != result.DaysRemaining {
		t.Errorf("message totals = %+v, result = %+v", msg, result)
	}
}

func TestDistributeSurvivesPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewBudgetService(budget.NewDistributor(budget.NewMemoryStore(), nil), pub)

	result, err := svc.Distribute(context.Background(), freshMonthRequest())
	if err != nil {
		t.Fatalf("Distribute() error = %v, want nil despite publish failure", err)
	}
	if len(result.Days) == 0 {
		t.Error("distribution result lost on publish failure")
	}
}

func TestDistributeWithoutPublisher(t *testing.T) {
	svc := NewBudgetService(budget.NewDistributor(budget.NewMemoryStore(), nil), nil)

	if _, err := svc.Distribute(context.Background(), freshMonthRequest()); err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
}

func TestDistributeValidationErrorDoesNotPublish(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewBudgetService(budget.NewDistributor(budget.NewMemoryStore(), nil), pub)

	req := freshMonthRequest()
	req.TotalBudget = -1
	if _, err := svc.Distribute(context.Background(), req); !errors.Is(err, core.ErrNegativeBudget) {
		t.Errorf("Distribute() error = %v, want %v", err, core.ErrNegativeBudget)
	}
	if len(pub.published) != 0 {
		t.Error("published an event for a failed distribution")
	}
}

func TestForecast(t *testing.T) {
	svc := NewBudgetService(budget.NewDistributor(budget.NewMemoryStore(), nil), nil)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	history := []core.Transaction{
		{ID: "e1", Time: base.Unix(), Description: "groceries", Amount: -30000},
		{ID: "e2", Time: base.AddDate(0, 0, 30).Unix(), Description: "rent", Amount: -30000},
	}

	got, err := svc.Forecast(context.Background(), history, 60000, nil)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if got.CurrentBalance != 60000 {
		t.Errorf("CurrentBalance = %d, want 60000", got.CurrentBalance)
	}
	if got.MonthlyBurnRate <= 0 || math.IsInf(got.MonthsUntilZero, 1) {
		t.Errorf("expected positive burn, got rate %v until-zero %v", got.MonthlyBurnRate, got.MonthsUntilZero)
	}
}

func TestForecastRejectsNegativeBalance(t *testing.T) {
	svc := NewBudgetService(budget.NewDistributor(budget.NewMemoryStore(), nil), nil)

	if _, err := svc.Forecast(context.Background(), nil, -1, nil); !errors.Is(err, core.ErrNegativeBalance) {
		t.Errorf("Forecast() error = %v, want %v", err, core.ErrNegativeBalance)
	}
}

func TestClose(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewBudgetService(nil, pub)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !pub.closed {
		t.Error("Close() did not close the publisher")
	}
}
