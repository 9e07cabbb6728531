// Package core provides the domain types and financial calendar arithmetic.
//
// A financial month is a month-length span of days that begins on a
// configurable day-of-month instead of the calendar 1st. All calendar math
// here goes through time.Date on the first of a month plus explicit day
// arithmetic; mutating the day field directly would silently roll a
// non-existent day (e.g. February 31st) into the following month.
package core

import "time"

// daysIn returns the number of days in the given calendar month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// startOn returns the financial month boundary inside the given calendar
// month. A start day beyond the month's length clamps to its last day, so a
// start day of 31 yields Feb 28 (29 in leap years), Apr 30, and so on.
func startOn(year int, month time.Month, startDay int) Date {
	d := startDay
	if last := daysIn(year, month); d > last {
		d = last
	}
	return NewDate(year, int(month), d)
}

// MonthStart returns the first day of the financial month containing date.
// If the date is on or after this calendar month's (clamped) boundary the
// month starts here, otherwise it started in the previous calendar month.
func MonthStart(date Date, startDay int) Date {
	this := startOn(date.Year(), date.Time.Month(), startDay)
	if date.Time.Before(this.Time) {
		firstOfPrev := time.Date(date.Year(), date.Time.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		return startOn(firstOfPrev.Year(), firstOfPrev.Month(), startDay)
	}
	return this
}

// MonthEnd returns the last day of the financial month containing date,
// i.e. the day before the next boundary. Together with MonthStart it tiles
// the calendar with no gaps or overlaps for any start day.
func MonthEnd(date Date, startDay int) Date {
	start := MonthStart(date, startDay)
	firstOfNext := time.Date(start.Year(), start.Time.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	next := startOn(firstOfNext.Year(), firstOfNext.Month(), startDay)
	return next.AddDays(-1)
}

// MonthDays returns every day of the financial month containing date, in
// ascending order.
func MonthDays(date Date, startDay int) []Date {
	start := MonthStart(date, startDay)
	end := MonthEnd(date, startDay)

	var days []Date
	for d := start; !d.Time.After(end.Time); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
