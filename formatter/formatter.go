// Package formatter renders transactions in the canonical plain-text form
// used by the ledger file:
//
//	2020-01-10 Groceries
//		Expenses:Food	CZK 120
//		Expenses:Food	€ 5.95
//		Assets:Cash	CZK -120
//		Assets:Cash	€ -5.95
//
// Credits (non-negative amounts) come first, then debits; each group is
// sorted by account name.
package formatter

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledgerentry/ledger"
)

// DateLayout is the layout of the header date.
const DateLayout = "2006-01-02"

// Format writes the canonical text of t to w.
func Format(w io.Writer, t *ledger.Transaction) error {
	buf := bufio.NewWriter(w)

	_, _ = buf.WriteString(t.Date.Format(DateLayout))
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(t.Description)
	_ = buf.WriteByte('\n')

	credits, debits := partition(t.Postings())
	for _, group := range [][]ledger.Posting{credits, debits} {
		for _, p := range group {
			_ = buf.WriteByte('\t')
			_, _ = buf.WriteString(p.Account)
			_ = buf.WriteByte('\t')
			_, _ = buf.WriteString(p.Amount.String())
			_ = buf.WriteByte('\n')
		}
	}

	return buf.Flush()
}

// String returns the canonical text of t.
func String(t *ledger.Transaction) string {
	var sb strings.Builder
	_ = Format(&sb, t)
	return sb.String()
}

// partition splits postings into credits and debits, each sorted by account.
func partition(postings []ledger.Posting) (credits, debits []ledger.Posting) {
	for _, p := range postings {
		if p.Amount.IsNegative() {
			debits = append(debits, p)
		} else {
			credits = append(credits, p)
		}
	}

	byAccount := func(a, b ledger.Posting) int {
		if c := strings.Compare(a.Account, b.Account); c != 0 {
			return c
		}
		return a.Amount.Compare(b.Amount)
	}
	slices.SortStableFunc(credits, byAccount)
	slices.SortStableFunc(debits, byAccount)

	return credits, debits
}
