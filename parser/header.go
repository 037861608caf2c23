package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/robinvdvleuten/ledgerentry/ledger"
)

// DateLayout is the calendar format of transaction dates.
const DateLayout = "2006-01-02"

// ParseHeader parses a "<date> <description>" line into a new, empty
// transaction.
func ParseHeader(line string) (*ledger.Transaction, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, &HeaderError{Line: line}
	}

	dateStr, description := trimmed, ""
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		dateStr, description = trimmed[:i], trimmed[i+1:]
	}
	date, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return nil, &HeaderError{Line: line, Underlying: fmt.Errorf("invalid date %q", dateStr)}
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &HeaderError{Line: line, Underlying: fmt.Errorf("missing description")}
	}

	return ledger.NewTransaction(date, description), nil
}
