package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledgerentry/telemetry"
	"github.com/robinvdvleuten/ledgerentry/writer"
)

// DefaultBinary is the ledger executable looked up on PATH.
const DefaultBinary = "ledger"

// offsetsFormat makes the register report print one "<date> <end offset>"
// line per posting. The last posting of a transaction carries the offset
// where the transaction ends.
const offsetsFormat = `%(format_date(date, "%Y-%m-%d")) %(end_pos)\n`

// ErrOutputNotUTF8 is returned when the ledger binary prints invalid UTF-8.
var ErrOutputNotUTF8 = errors.New("output is not valid UTF-8")

// Ledger answers queries by running the ledger command-line tool against a
// journal file.
type Ledger struct {
	Binary string
	File   string
	Logger *log.Logger
}

var _ Oracle = (*Ledger)(nil)

// NewLedger creates a Ledger oracle for file. An empty binary selects
// DefaultBinary.
func NewLedger(binary, file string, logger *log.Logger) *Ledger {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Ledger{Binary: binary, File: file, Logger: logger}
}

// run executes the binary and returns its non-empty output lines.
func (l *Ledger) run(ctx context.Context, op string, args ...string) ([]string, error) {
	timer := telemetry.FromContext(ctx).Start("oracle " + op)
	defer timer.End()

	argv := append([]string{"-f", l.File}, args...)
	l.Logger.Debug("running ledger", "bin", l.Binary, "args", argv)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, l.Binary, argv...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, &Error{Op: op, Err: err}
	}
	if !utf8.Valid(out) {
		return nil, &Error{Op: op, Err: ErrOutputNotUTF8}
	}

	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (l *Ledger) Accounts(ctx context.Context, prefix string) ([]string, error) {
	args := []string{"accounts"}
	if prefix != "" {
		args = append(args, "^"+regexp.QuoteMeta(prefix))
	}
	lines, err := l.run(ctx, "accounts", args...)
	if err != nil {
		return nil, err
	}
	return filterPrefix(lines, prefix), nil
}

func (l *Ledger) Commodities(ctx context.Context, prefix string) ([]string, error) {
	lines, err := l.run(ctx, "commodities", "commodities")
	if err != nil {
		return nil, err
	}
	return filterPrefix(lines, prefix), nil
}

func (l *Ledger) DateOffsets(ctx context.Context) ([]writer.DateOffset, error) {
	lines, err := l.run(ctx, "date offsets", "register", "--format", offsetsFormat)
	if err != nil {
		return nil, err
	}

	raw, err := ParseOffsets(lines)
	if err != nil {
		return nil, &Error{Op: "date offsets", Err: err}
	}
	slices.SortStableFunc(raw, func(a, b writer.DateOffset) int {
		return a.Date.Compare(b.Date)
	})

	offsets, err := writer.Fold(raw)
	if err != nil {
		return nil, &Error{Op: "date offsets", Err: err}
	}
	return offsets, nil
}

// ParseOffsets reads "YYYY-MM-DD <offset>" lines.
func ParseOffsets(lines []string) ([]writer.DateOffset, error) {
	offsets := make([]writer.DateOffset, 0, len(lines))
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: unexpected output %q", i+1, line)
		}
		date, err := time.Parse("2006-01-02", fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		offset, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		offsets = append(offsets, writer.DateOffset{Date: date, Offset: offset})
	}
	return offsets, nil
}
