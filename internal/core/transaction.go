package core

import (
	"errors"
	"time"
)

type (
	// Date is a day-granularity point in time, always midnight UTC.
	Date struct {
		time.Time
	}

	// Transaction is a raw record from the banking provider. Records are
	// immutable once ingested; classification and category are derived,
	// never stored on the record.
	Transaction struct {
		ID             string
		Time           int64 // unix seconds
		Description    string
		MCC            int
		Amount         int64 // signed minor units, negative = debit
		Balance        int64
		CashbackAmount int64
		CurrencyCode   int
		Category       string // manual user override, empty when unset
		Comment        string
	}
)

var (
	ErrNegativeBudget  = errors.New("total budget cannot be negative")
	ErrNegativeBalance = errors.New("balance cannot be negative")
	ErrInvalidStartDay = errors.New("financial month start day must be between 1 and 31")
	ErrZeroDate        = errors.New("date cannot be zero")
	ErrEmptyID         = errors.New("empty transaction id")
)

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a point in time to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), int(u.Month()), u.Day())
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time.AddDate(0, 0, n))
}

// Key returns the canonical YYYY-MM-DD form used for grouping and storage.
func (d Date) Key() string {
	return d.Time.Format("2006-01-02")
}

// EndOfDay returns the last representable instant of the day.
func (d Date) EndOfDay() time.Time {
	return d.Time.Add(24*time.Hour - time.Nanosecond)
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Time.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Validate rejects records that cannot participate in a distribution run.
// IDs key the exclusion and inclusion sets, so an empty one is never usable.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return ErrEmptyID
	}
	return nil
}

// Date returns the transaction's UTC calendar day.
func (t Transaction) Date() Date {
	return DateOf(time.Unix(t.Time, 0))
}

// AbsAmount returns the magnitude of the transaction amount in minor units.
func (t Transaction) AbsAmount() int64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}
