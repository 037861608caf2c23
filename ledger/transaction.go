// Package ledger models a transaction being composed: the amounts posted to
// each account and the change operations that add to them.
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Transaction accumulates balance changes per account for a single dated
// entry. Every account holds at most one Amount per commodity, kept sorted by
// commodity.
type Transaction struct {
	Date        time.Time
	Description string

	changes map[string][]Amount
}

// NewTransaction creates an empty transaction.
func NewTransaction(date time.Time, description string) *Transaction {
	return &Transaction{
		Date:        date,
		Description: description,
		changes:     make(map[string][]Amount),
	}
}

// AddChange adds amount to the bucket of its commodity within account. An
// existing bucket is summed in place, otherwise a new one is inserted at its
// sorted position. Buckets that sum to zero are dropped, and so are accounts
// left without buckets.
func (t *Transaction) AddChange(account string, amount Amount) {
	if t.changes == nil {
		t.changes = make(map[string][]Amount)
	}
	amounts := mergeAmount(t.changes[account], amount)
	if len(amounts) == 0 {
		delete(t.changes, account)
		return
	}
	t.changes[account] = amounts
}

// mergeAmount performs the sorted insert-or-merge on a single account.
func mergeAmount(amounts []Amount, amount Amount) []Amount {
	i, found := slices.BinarySearchFunc(amounts, amount.Commodity, func(a Amount, commodity string) int {
		return strings.Compare(a.Commodity, commodity)
	})
	if found {
		sum := amounts[i].Number.Add(amount.Number)
		if sum.IsZero() {
			return slices.Delete(amounts, i, i+1)
		}
		amounts[i].Number = sum
		return amounts
	}
	if amount.Number.IsZero() {
		return amounts
	}
	return slices.Insert(amounts, i, amount)
}

// AddSplitChange divides amount evenly between two accounts.
func (t *Transaction) AddSplitChange(account, splitAccount string, amount Amount) {
	half := amount.Half()
	t.AddChange(account, half)
	t.AddChange(splitAccount, half)
}

// Balance returns the sum of every commodity across all accounts, sorted by
// commodity. Commodities that net to zero are kept.
func (t *Transaction) Balance() []Amount {
	sums := make(map[string]decimal.Decimal)
	for _, amounts := range t.changes {
		for _, a := range amounts {
			if sum, ok := sums[a.Commodity]; ok {
				sums[a.Commodity] = sum.Add(a.Number)
			} else {
				sums[a.Commodity] = a.Number
			}
		}
	}

	commodities := maps.Keys(sums)
	slices.Sort(commodities)

	balance := make([]Amount, 0, len(commodities))
	for _, c := range commodities {
		balance = append(balance, Amount{Commodity: c, Number: sums[c]})
	}
	return balance
}

// Finalize posts the negated balance of every commodity to account, which
// leaves the transaction balanced.
func (t *Transaction) Finalize(account string) {
	for _, a := range t.Balance() {
		t.AddChange(account, a.Neg())
	}
}

// IsBalanced reports whether every commodity sums to zero.
func (t *Transaction) IsBalanced() bool {
	for _, a := range t.Balance() {
		if !a.Number.IsZero() {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no change has been recorded yet.
func (t *Transaction) IsEmpty() bool {
	return len(t.changes) == 0
}

// Accounts returns the accounts with recorded changes, sorted by name.
func (t *Transaction) Accounts() []string {
	accounts := maps.Keys(t.changes)
	slices.Sort(accounts)
	return accounts
}

// Changes returns a copy of the per-commodity amounts of account.
func (t *Transaction) Changes(account string) []Amount {
	return slices.Clone(t.changes[account])
}

// Postings flattens the changes into one Posting per account and commodity,
// ordered by account and then commodity.
func (t *Transaction) Postings() []Posting {
	var postings []Posting
	for _, account := range t.Accounts() {
		for _, a := range t.changes[account] {
			postings = append(postings, Posting{Account: account, Amount: a})
		}
	}
	return postings
}

// Posting is a single account line of a transaction.
type Posting struct {
	Account string
	Amount  Amount
}
