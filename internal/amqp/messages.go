package amqp

import (
	"encoding/json"
	"time"
)

// BudgetRecomputedMessage announces that a user's month budget was recomputed.
// It carries the roll-up totals so the snapshot worker does not need to re-run
// the distribution to persist a month snapshot.
type BudgetRecomputedMessage struct {
	UserID         string    `json:"userId"`
	MonthStart     string    `json:"monthStart"` // "2006-01-02"
	TotalBudget    int64     `json:"totalBudget"`
	TotalSpent     int64     `json:"totalSpent"`
	TotalRemaining int64     `json:"totalRemaining"`
	DaysRemaining  int       `json:"daysRemaining"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewBudgetRecomputedMessage creates a recomputation event stamped with the current time.
func NewBudgetRecomputedMessage(userID, monthStart string, totalBudget, totalSpent, totalRemaining int64, daysRemaining int) *BudgetRecomputedMessage {
	return &BudgetRecomputedMessage{
		UserID:         userID,
		MonthStart:     monthStart,
		TotalBudget:    totalBudget,
		TotalSpent:     totalSpent,
		TotalRemaining: totalRemaining,
		DaysRemaining:  daysRemaining,
		Timestamp:      time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetRecomputedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func BudgetRecomputedMessageFromJSON(data []byte) (*BudgetRecomputedMessage, error) {
	var msg BudgetRecomputedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
