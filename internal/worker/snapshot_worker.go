package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"burnplan/internal/amqp"
	"burnplan/internal/core"
	"burnplan/internal/storage"
)

// SnapshotStore is the slice of the storage layer the worker needs.
type SnapshotStore interface {
	UpsertMonthSnapshot(ctx context.Context, snap storage.MonthSnapshot) error
}

// SnapshotWorker turns budget recomputation events into persisted month
// snapshots. It is the only writer of the month_snapshots table.
type SnapshotWorker struct {
	store SnapshotStore
}

func NewSnapshotWorker(store SnapshotStore) *SnapshotWorker {
	return &SnapshotWorker{store: store}
}

// Handle persists the snapshot carried by one event.
func (w *SnapshotWorker) Handle(ctx context.Context, msg *amqp.BudgetRecomputedMessage) error {
	monthStart, err := time.Parse("2006-01-02", msg.MonthStart)
	if err != nil {
		return fmt.Errorf("parse month start %q: %w", msg.MonthStart, err)
	}

	snap := storage.MonthSnapshot{
		UserID:         msg.UserID,
		MonthStart:     core.DateOf(monthStart),
		TotalBudget:    msg.TotalBudget,
		TotalSpent:     msg.TotalSpent,
		TotalRemaining: msg.TotalRemaining,
		DaysRemaining:  msg.DaysRemaining,
	}
	if err := w.store.UpsertMonthSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("persist month snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot updated",
		"user_id", msg.UserID,
		"month_start", msg.MonthStart,
		"total_remaining", msg.TotalRemaining)
	return nil
}

// Run consumes events from the broker until the context is cancelled,
// reconnecting across broker restarts.
func (w *SnapshotWorker) Run(ctx context.Context, amqpURL, exchange, queue string) error {
	return amqp.ConsumeWithReconnect(ctx, amqpURL, exchange, queue, func(msg *amqp.BudgetRecomputedMessage) error {
		return w.Handle(ctx, msg)
	})
}
