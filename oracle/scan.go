package oracle

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledgerentry/writer"
)

// Layout is what a scan learns about a ledger file.
type Layout struct {
	Accounts    []string
	Commodities []string

	// Entries holds the end offset of every entry in file order.
	Entries []writer.DateOffset
}

// Offsets returns the folded offsets: entries are sorted by date, keeping file
// order among equal dates, and reduced to the last entry per date.
func (l *Layout) Offsets() ([]writer.DateOffset, error) {
	entries := slices.Clone(l.Entries)
	slices.SortStableFunc(entries, func(a, b writer.DateOffset) int {
		return a.Date.Compare(b.Date)
	})
	return writer.Fold(entries)
}

// Scan reads a ledger file in canonical form. An entry starts with a line
// beginning with a YYYY-MM-DD date and continues over the indented lines
// below it; its end offset points just past the last of those lines. Indented
// lines are read as "<account><tab or 2+ spaces><commodity> <amount>" in
// either order of commodity and amount. Everything else is skipped.
func Scan(content []byte) *Layout {
	layout := &Layout{}
	accounts := map[string]struct{}{}
	commodities := map[string]struct{}{}

	var (
		offset  int64
		inEntry bool
		current writer.DateOffset
	)

	flush := func() {
		if inEntry {
			layout.Entries = append(layout.Entries, current)
			inEntry = false
		}
	}

	s := bufio.NewScanner(bytes.NewReader(content))
	s.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	s.Split(scanLinesKeepEnd)

	for s.Scan() {
		raw := s.Bytes()
		end := offset + int64(len(raw))
		line := strings.TrimRight(string(raw), "\r\n")

		switch {
		case len(line) > 0 && (line[0] == ' ' || line[0] == '\t'):
			if inEntry {
				current.Offset = end
				if account, commodity, ok := parsePosting(line); ok {
					accounts[account] = struct{}{}
					if commodity != "" {
						commodities[commodity] = struct{}{}
					}
				}
			}

		default:
			flush()
			if date, ok := parseDate(line); ok {
				inEntry = true
				current = writer.DateOffset{Date: date, Offset: end}
			}
		}

		offset = end
	}
	flush()

	layout.Accounts = sortedKeys(accounts)
	layout.Commodities = sortedKeys(commodities)
	return layout
}

// scanLinesKeepEnd is bufio.ScanLines without stripping the line ending, so
// byte offsets can be tracked exactly.
func scanLinesKeepEnd(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func parseDate(line string) (time.Time, bool) {
	if len(line) < 10 {
		return time.Time{}, false
	}
	if len(line) > 10 && line[10] != ' ' && line[10] != '\t' {
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", line[:10])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func parsePosting(line string) (account, commodity string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == ';' || line[0] == '#' {
		return "", "", false
	}

	account, rest := line, ""
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		account, rest = line[:i], line[i+1:]
	} else if i := strings.Index(line, "  "); i >= 0 {
		account, rest = line[:i], line[i+2:]
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return "", "", false
	}

	if i := strings.IndexByte(rest, ';'); i >= 0 {
		rest = rest[:i]
	}
	for _, field := range strings.Fields(rest) {
		if _, err := decimal.NewFromString(field); err != nil {
			commodity = field
			break
		}
	}
	return account, commodity, true
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Scanner is an in-process Oracle over a canonical-format ledger file. The
// file is re-read on every query; a missing file is treated as empty.
type Scanner struct {
	Path string
}

var _ Oracle = (*Scanner)(nil)

// NewScanner creates a Scanner for path.
func NewScanner(path string) *Scanner {
	return &Scanner{Path: path}
}

func (s *Scanner) layout(op string) (*Layout, error) {
	content, err := os.ReadFile(s.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &Error{Op: op, Err: err}
	}
	return Scan(content), nil
}

func (s *Scanner) Accounts(ctx context.Context, prefix string) ([]string, error) {
	l, err := s.layout("accounts")
	if err != nil {
		return nil, err
	}
	return filterPrefix(l.Accounts, prefix), nil
}

func (s *Scanner) Commodities(ctx context.Context, prefix string) ([]string, error) {
	l, err := s.layout("commodities")
	if err != nil {
		return nil, err
	}
	return filterPrefix(l.Commodities, prefix), nil
}

func (s *Scanner) DateOffsets(ctx context.Context) ([]writer.DateOffset, error) {
	l, err := s.layout("date offsets")
	if err != nil {
		return nil, err
	}
	offsets, err := l.Offsets()
	if err != nil {
		return nil, &Error{Op: "date offsets", Err: err}
	}
	return offsets, nil
}
