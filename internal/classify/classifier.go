// Package classify labels raw transactions as expense, income or internal
// transfer and resolves their spending category.
//
// Classification is total and mutually exclusive: every transaction gets
// exactly one label. Internal transfers (including cash withdrawals and
// savings movements) are excluded from expense and income totals.
package classify

import (
	"strings"

	"burnplan/internal/core"
)

// Label is the classification outcome for a transaction.
type Label string

const (
	LabelExpense          Label = "expense"
	LabelIncome           Label = "income"
	LabelInternalTransfer Label = "internal-transfer"
)

// Keyword sets are matched case-insensitively as substrings of the
// transaction description. Locale-specific by nature; extend per deployment.
var (
	cashKeywords = []string{
		"atm",
		"cash withdrawal",
		"cashpoint",
		"cash advance",
	}

	transferKeywords = []string{
		"transfer",
		"p2p",
		"own account",
		"between accounts",
		"card to card",
	}

	savingsKeywords = []string{
		"savings",
		"deposit",
		"jar",
		"vault",
		"piggy bank",
	}
)

func matchesAny(description string, keywords []string) bool {
	desc := strings.ToLower(description)
	for _, kw := range keywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// IsCashWithdrawal reports whether the transaction looks like an ATM or
// cash movement based on its description.
func IsCashWithdrawal(tx core.Transaction) bool {
	return matchesAny(tx.Description, cashKeywords)
}

// transferRule is one step of the ordered internal-transfer detection chain.
// Rules run in order; the first hit wins.
type transferRule struct {
	name  string
	match func(tx core.Transaction, sameDay []core.Transaction) bool
}

var transferRules = []transferRule{
	{
		name: "transfer keyword",
		match: func(tx core.Transaction, _ []core.Transaction) bool {
			return matchesAny(tx.Description, transferKeywords)
		},
	},
	{
		name: "savings keyword",
		match: func(tx core.Transaction, _ []core.Transaction) bool {
			return matchesAny(tx.Description, savingsKeywords)
		},
	},
	{
		name: "cash withdrawal",
		match: func(tx core.Transaction, _ []core.Transaction) bool {
			return IsCashWithdrawal(tx)
		},
	},
	{
		name: "paired same-day amount",
		match: func(tx core.Transaction, sameDay []core.Transaction) bool {
			for _, other := range sameDay {
				if other.ID == tx.ID {
					continue
				}
				if other.Amount == -tx.Amount && other.Date().Equal(tx.Date().Time) {
					return true
				}
			}
			return false
		},
	},
}

// IsInternalTransfer reports whether the transaction moves money between the
// user's own accounts. A transaction whose ID is in includedIDs has been
// force-counted by the user and is never a transfer, regardless of the rules.
func IsInternalTransfer(tx core.Transaction, sameDay []core.Transaction, includedIDs map[string]struct{}) bool {
	if _, forced := includedIDs[tx.ID]; forced {
		return false
	}
	for _, rule := range transferRules {
		if rule.match(tx, sameDay) {
			return true
		}
	}
	return false
}

// IsExpense reports whether the transaction is a real debit.
func IsExpense(tx core.Transaction, sameDay []core.Transaction, includedIDs map[string]struct{}) bool {
	return tx.Amount < 0 && !IsInternalTransfer(tx, sameDay, includedIDs)
}

// IsIncome reports whether the transaction is a real credit.
func IsIncome(tx core.Transaction, sameDay []core.Transaction, includedIDs map[string]struct{}) bool {
	return tx.Amount > 0 && !IsInternalTransfer(tx, sameDay, includedIDs)
}

// Classify returns exactly one label for the transaction. Zero-amount
// non-transfers count as income so that totality holds; they contribute
// nothing to either total.
func Classify(tx core.Transaction, sameDay []core.Transaction, includedIDs map[string]struct{}) Label {
	if IsInternalTransfer(tx, sameDay, includedIDs) {
		return LabelInternalTransfer
	}
	if tx.Amount < 0 {
		return LabelExpense
	}
	return LabelIncome
}

// GroupByDate indexes transactions by their calendar day key. The per-day
// slices feed the paired-amount transfer heuristic.
func GroupByDate(txs []core.Transaction) map[string][]core.Transaction {
	byDay := make(map[string][]core.Transaction, len(txs))
	for _, tx := range txs {
		key := tx.Date().Key()
		byDay[key] = append(byDay[key], tx)
	}
	return byDay
}
