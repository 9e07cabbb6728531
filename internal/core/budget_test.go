package core

import "testing"

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name  string
		limit int64
		spent int64
		want  DayStatus
	}{
		{"no spending", 1000, 0, StatusUnder},
		{"below warning threshold", 1000, 799, StatusUnder},
		{"at warning threshold", 1000, 800, StatusWarning},
		{"just under limit", 1000, 999, StatusWarning},
		{"at limit", 1000, 1000, StatusOver},
		{"over limit", 1000, 1500, StatusOver},
		{"zero limit", 0, 0, StatusOver},
		{"negative limit reads as over", -200, 0, StatusOver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.limit, tt.spent); got != tt.want {
				t.Errorf("StatusFor(%d, %d) = %s, want %s", tt.limit, tt.spent, got, tt.want)
			}
		})
	}
}

func TestTransactionDate(t *testing.T) {
	// 2024-03-10 22:30 UTC
	tx := Transaction{ID: "a", Time: 1710109800, Amount: -500}
	if got := tx.Date(); !got.Equal(NewDate(2024, 3, 10).Time) {
		t.Errorf("Date() = %s, want 2024-03-10", got.Key())
	}
	if tx.AbsAmount() != 500 {
		t.Errorf("AbsAmount() = %d, want 500", tx.AbsAmount())
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{123456, "1234.56"},
		{-9950, "-99.50"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.minor); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.minor, got, tt.want)
		}
	}
}
