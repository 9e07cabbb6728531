// Package storage persists daily budget history and month snapshots in
// SQLite. The repository implements budget.HistoryStore; upserts are
// last-writer-wins per (user, date) so concurrent sessions for the same user
// need no extra locking.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"burnplan/internal/budget"
	"burnplan/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

var _ budget.HistoryStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Upsert implements budget.HistoryStore.
func (r *SQLiteRepository) Upsert(ctx context.Context, rec budget.DailyRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_budgets (user_id, date, limit_minor, spent_minor, balance_minor, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			limit_minor   = excluded.limit_minor,
			spent_minor   = excluded.spent_minor,
			balance_minor = excluded.balance_minor,
			updated_at    = excluded.updated_at`,
		rec.UserID, rec.Date.Key(), rec.Limit, rec.Spent, rec.Balance, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert daily budget: %w", err)
	}

	slog.DebugContext(ctx, "Daily budget persisted",
		"user_id", rec.UserID,
		"date", rec.Date.Key(),
		"limit_minor", rec.Limit)
	return nil
}

// List implements budget.HistoryStore, returning records ordered ascending
// by date.
func (r *SQLiteRepository) List(ctx context.Context, userID string, from, to core.Date) ([]budget.DailyRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, date, limit_minor, spent_minor, balance_minor
		FROM daily_budgets
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		userID, from.Key(), to.Key())
	if err != nil {
		return nil, fmt.Errorf("list daily budgets: %w", err)
	}
	defer rows.Close()

	var records []budget.DailyRecord
	for rows.Next() {
		var rec budget.DailyRecord
		var date string
		if err := rows.Scan(&rec.UserID, &date, &rec.Limit, &rec.Spent, &rec.Balance); err != nil {
			return nil, fmt.Errorf("scan daily budget: %w", err)
		}
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		rec.Date = core.DateOf(parsed)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily budgets: %w", err)
	}
	return records, nil
}

// MonthSnapshot is the roll-up written by the snapshot worker whenever a
// budget recomputation event arrives.
type MonthSnapshot struct {
	UserID         string
	MonthStart     core.Date
	TotalBudget    int64
	TotalSpent     int64
	TotalRemaining int64
	DaysRemaining  int
}

func (r *SQLiteRepository) UpsertMonthSnapshot(ctx context.Context, snap MonthSnapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO month_snapshots (user_id, month_start, total_budget, total_spent, total_remaining, days_remaining, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, month_start) DO UPDATE SET
			total_budget    = excluded.total_budget,
			total_spent     = excluded.total_spent,
			total_remaining = excluded.total_remaining,
			days_remaining  = excluded.days_remaining,
			updated_at      = excluded.updated_at`,
		snap.UserID, snap.MonthStart.Key(), snap.TotalBudget, snap.TotalSpent,
		snap.TotalRemaining, snap.DaysRemaining, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert month snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Month snapshot persisted",
		"user_id", snap.UserID,
		"month_start", snap.MonthStart.Key(),
		"total_spent", snap.TotalSpent)
	return nil
}

func (r *SQLiteRepository) GetMonthSnapshot(ctx context.Context, userID string, monthStart core.Date) (*MonthSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, month_start, total_budget, total_spent, total_remaining, days_remaining
		FROM month_snapshots
		WHERE user_id = ? AND month_start = ?`,
		userID, monthStart.Key())

	var snap MonthSnapshot
	var start string
	if err := row.Scan(&snap.UserID, &start, &snap.TotalBudget, &snap.TotalSpent, &snap.TotalRemaining, &snap.DaysRemaining); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get month snapshot: %w", err)
	}
	parsed, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("parse stored month start %q: %w", start, err)
	}
	snap.MonthStart = core.DateOf(parsed)
	return &snap, nil
}
