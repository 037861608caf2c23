package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/charmbracelet/log"

	"github.com/robinvdvleuten/ledgerentry/history"
	"github.com/robinvdvleuten/ledgerentry/oracle"
	"github.com/robinvdvleuten/ledgerentry/output"
	"github.com/robinvdvleuten/ledgerentry/session"
)

type loopRun struct {
	loop   *entryLoop
	stdout strings.Builder
	stderr strings.Builder
}

func newLoopRun(t *testing.T, path, input string, interactive bool, opts ...session.Option) *loopRun {
	t.Helper()
	r := &loopRun{}
	logger := log.New(io.Discard)
	r.loop = &entryLoop{
		session:     session.New(path, oracle.NewScanner(path), append(opts, session.WithLogger(logger))...),
		history:     history.New(history.DefaultLimit),
		prompter:    newLinePrompter(strings.NewReader(input), &r.stdout, false),
		stdout:      &r.stdout,
		stderr:      &r.stderr,
		styles:      output.NewStyles(&r.stdout),
		logger:      logger,
		interactive: interactive,
	}
	return r
}

func TestEntryLoopCommitsTransactions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ledger")
	input := "" +
		"2020-01-12 Rent\n" +
		"a Expenses:Rent CZK 500\n" +
		"f Assets:Bank\n" +
		"\n" +
		"\n" +
		"2020-01-10 Groceries\n" +
		"a Expenses:Food CZK 120\n" +
		"f Assets:Cash\n" +
		"\n"

	r := newLoopRun(t, path, input, false, session.WithCreate())
	assert.NoError(t, r.loop.run(context.Background()))
	assert.Equal(t, 2, r.loop.committed)
	assert.Equal(t, 0, r.loop.failures)

	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, ""+
		"2020-01-10 Groceries\n"+
		"\tExpenses:Food\tCZK 120\n"+
		"\tAssets:Cash\tCZK -120\n"+
		"2020-01-12 Rent\n"+
		"\tExpenses:Rent\tCZK 500\n"+
		"\tAssets:Bank\tCZK -500\n", string(content))

	assert.Contains(t, r.stdout.String(), "2020-01-12 Rent\n\tExpenses:Rent\tCZK 500\n")
	assert.Contains(t, r.stdout.String(), "Added to")
	assert.Equal(t, []string{
		"2020-01-12 Rent",
		"a Expenses:Rent CZK 500",
		"f Assets:Bank",
		"2020-01-10 Groceries",
		"a Expenses:Food CZK 120",
		"f Assets:Cash",
	}, r.loop.history.Entries())
}

func TestEntryLoopReportsRejectedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ledger")
	input := "" +
		"yesterday Groceries\n" +
		"2020-01-10 Groceries\n" +
		"a Food 12 3\n" +
		"a Expenses:Food CZK 120\n" +
		"f Assets:Cash\n" +
		"\n"

	r := newLoopRun(t, path, input, false, session.WithCreate())
	assert.NoError(t, r.loop.run(context.Background()))
	assert.Equal(t, 1, r.loop.committed)
	assert.Equal(t, 2, r.loop.failures)

	assert.Contains(t, r.stderr.String(), "missing or malformed transaction header")
	assert.Contains(t, r.stderr.String(), "invalid currency")
	assert.Contains(t, r.stderr.String(), "   a Food 12 3\n")
}

func TestEntryLoopWarnsAboutUnbalancedTransaction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ledger")
	input := "2020-01-10 Groceries\na Expenses:Food CZK 120\n\n"

	r := newLoopRun(t, path, input, false, session.WithCreate())
	assert.NoError(t, r.loop.run(context.Background()))
	assert.Equal(t, 1, r.loop.committed)
	assert.Contains(t, r.stderr.String(), "transaction does not balance: CZK 120")
}

func TestEntryLoopDiscardsUnfinishedTransaction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ledger")
	input := "2020-01-10 Groceries\na Expenses:Food CZK 120\n"

	r := newLoopRun(t, path, input, false, session.WithCreate())
	assert.NoError(t, r.loop.run(context.Background()))
	assert.Equal(t, 0, r.loop.committed)
	assert.Zero(t, r.loop.session.Pending())
	assert.Contains(t, r.stderr.String(), `discarding unfinished transaction "Groceries"`)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestEntryLoopKeepsTransactionAfterFailedCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ledger")
	input := "2020-01-10 Groceries\na Expenses:Food CZK 120\nf Assets:Cash\n\n"

	r := newLoopRun(t, path, input, false)
	assert.NoError(t, r.loop.run(context.Background()))
	assert.Equal(t, 0, r.loop.committed)
	assert.Equal(t, 1, r.loop.failures)
	assert.Contains(t, r.stderr.String(), "press enter on an empty change line to retry")
	assert.Contains(t, r.stderr.String(), `discarding unfinished transaction "Groceries"`)
}

func TestEntryLoopDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ledger")
	existing := "2020-01-10 Groceries\n\tExpenses:Food\tCZK 120\n\tAssets:Cash\tCZK -120\n"
	assert.NoError(t, os.WriteFile(path, []byte(existing), 0o600))

	r := newLoopRun(t, path, "2020-01-11 Dinner\na Expenses:Food € 7\nf Assets:Card\n\n", false, session.WithDryRun())
	assert.NoError(t, r.loop.run(context.Background()))
	assert.Contains(t, r.stdout.String(), "dry run: would insert at byte 67")

	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, existing, string(content))
}

func TestEntryLoopPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ledger")
	input := "2020-01-10 Groceries\na Expenses:Food CZK 120\na Expenses:Food € 5.95\n"

	r := newLoopRun(t, path, input, true, session.WithCreate())
	assert.NoError(t, r.loop.run(context.Background()))

	assert.Contains(t, r.stdout.String(), "  Expenses:Food  CZK  120\n")
	assert.Contains(t, r.stdout.String(), "  Expenses:Food  €   5.95\n")
	assert.Contains(t, r.stdout.String(), "  unbalanced: CZK 120, € 5.95\n")
}

func TestEntryLoopSuggestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ledger")
	existing := "2020-01-10 Groceries\n\tExpenses:Food\tCZK 120\n\tAssets:Cash\tCZK -120\n"
	assert.NoError(t, os.WriteFile(path, []byte(existing), 0o600))

	r := newLoopRun(t, path, "", false)
	r.loop.history.Add("2020-01-10 Groceries")
	r.loop.history.Add("a Expenses:Food CZK 120")
	r.loop.history.Add("not a command")

	assert.Equal(t, []string{"2020-01-10 Groceries"}, r.loop.suggestHeader("2020"))

	suggest := r.loop.suggestChange(context.Background())
	assert.Equal(t, []string{"a Expenses:Food", "a Expenses:Food CZK 120"}, suggest("a Exp"))
	assert.Equal(t, []string{"a Assets:Cash"}, suggest("a As"))
}

func TestValidateLines(t *testing.T) {
	assert.NoError(t, validateHeader(""))
	assert.NoError(t, validateHeader("2020-01-10 Groceries"))
	assert.Error(t, validateHeader("Groceries"))

	assert.NoError(t, validateChange("  "))
	assert.NoError(t, validateChange("f Assets:Cash"))
	assert.Error(t, validateChange("a Expenses:Food"))
}
