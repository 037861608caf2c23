// Package oracle supplies the facts about a ledger file that the composer
// cannot work out on its own: known account names, known commodity symbols
// and where the last entry of every date ends.
//
// Implementations:
//   - Ledger shells out to the ledger binary
//   - Scanner reads canonical-format files in-process
//   - Static serves fixed lists
//   - Cache memoizes completions and drops them when the file changes
package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/ledgerentry/writer"
)

// Oracle answers completion and layout queries about a ledger file.
type Oracle interface {
	// Accounts returns known account names starting with prefix, in order.
	Accounts(ctx context.Context, prefix string) ([]string, error)

	// Commodities returns known commodity symbols starting with prefix, in order.
	Commodities(ctx context.Context, prefix string) ([]string, error)

	// DateOffsets returns one offset per date, sorted by date, pointing just
	// past the last entry of that date.
	DateOffsets(ctx context.Context) ([]writer.DateOffset, error)
}

// Error reports a failed oracle query.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// filterPrefix keeps the names starting with prefix, preserving order.
func filterPrefix(names []string, prefix string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}

// Static serves fixed answers.
type Static struct {
	AccountNames     []string
	CommoditySymbols []string
	Offsets          []writer.DateOffset

	// Err, when set, is returned by every query.
	Err error
}

var _ Oracle = (*Static)(nil)

func (s *Static) Accounts(ctx context.Context, prefix string) ([]string, error) {
	if s.Err != nil {
		return nil, &Error{Op: "accounts", Err: s.Err}
	}
	return filterPrefix(s.AccountNames, prefix), nil
}

func (s *Static) Commodities(ctx context.Context, prefix string) ([]string, error) {
	if s.Err != nil {
		return nil, &Error{Op: "commodities", Err: s.Err}
	}
	return filterPrefix(s.CommoditySymbols, prefix), nil
}

func (s *Static) DateOffsets(ctx context.Context) ([]writer.DateOffset, error) {
	if s.Err != nil {
		return nil, &Error{Op: "date offsets", Err: s.Err}
	}
	return s.Offsets, nil
}
