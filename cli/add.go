package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/robinvdvleuten/ledgerentry/formatter"
	"github.com/robinvdvleuten/ledgerentry/history"
	"github.com/robinvdvleuten/ledgerentry/ledger"
	"github.com/robinvdvleuten/ledgerentry/oracle"
	"github.com/robinvdvleuten/ledgerentry/output"
	"github.com/robinvdvleuten/ledgerentry/parser"
	"github.com/robinvdvleuten/ledgerentry/session"
)

const (
	headerPrompt = "header> "
	changePrompt = "change> "
)

// AddCmd composes transactions and inserts them into a ledger file.
//
// Every transaction starts with a "YYYY-MM-DD description" header, followed
// by change commands:
//
//	a ACCOUNT COMMODITY AMOUNT          add AMOUNT to ACCOUNT
//	s ACCOUNT ACCOUNT COMMODITY AMOUNT  add half of AMOUNT to each account
//	f ACCOUNT                           balance the transaction against ACCOUNT
//
// An empty change line prints the transaction and writes it into the file.
type AddCmd struct {
	OracleFlags

	File    string `arg:"" help:"Ledger file to add transactions to." type:"path"`
	Create  bool   `help:"Create the ledger file if it does not exist."`
	History string `help:"File keeping previously entered lines." default:"${history_file}" type:"path" env:"LEDGERENTRY_HISTORY"`
	DryRun  bool   `help:"Show where transactions would go without writing the ledger file."`
}

// Run executes the add command.
func (cmd *AddCmd) Run(ctx *kong.Context, globals *Globals) error {
	logger, err := newLogger(ctx.Stderr, globals.LogLevel)
	if err != nil {
		return err
	}

	runCtx, report := withTelemetry(context.Background(), globals.Telemetry, ctx.Stderr)
	defer report()

	if err := cmd.confirmCreate(ctx.Stderr); err != nil {
		return err
	}

	base, err := cmd.build(cmd.File, logger)
	if err != nil {
		return err
	}
	cache, err := oracle.NewCache(base, cmd.File, logger)
	if err != nil {
		logger.Warn("completions will not notice file changes", "err", err)
		cache, _ = oracle.NewCache(base, "", logger)
	}
	defer cache.Close()

	hist, err := history.Load(cmd.History, history.DefaultLimit)
	if err != nil {
		logger.Warn("starting with empty history", "err", err)
		hist = history.New(history.DefaultLimit)
	}

	opts := []session.Option{session.WithLogger(logger)}
	if cmd.Create {
		opts = append(opts, session.WithCreate())
	}
	if cmd.DryRun {
		opts = append(opts, session.WithDryRun())
	}
	s := session.New(cmd.File, cache, opts...)

	var p prompter
	interactive := isTerminal()
	if interactive {
		p = huhPrompter{}
	} else {
		p = newLinePrompter(os.Stdin, ctx.Stdout, false)
	}

	loop := &entryLoop{
		session:     s,
		history:     hist,
		prompter:    p,
		stdout:      ctx.Stdout,
		stderr:      ctx.Stderr,
		styles:      output.NewStyles(ctx.Stdout),
		logger:      logger,
		interactive: interactive,
	}
	runErr := loop.run(runCtx)

	if err := hist.Save(cmd.History); err != nil {
		logger.Error("failed to save history", "file", cmd.History, "err", err)
	}

	if runErr != nil {
		return runErr
	}
	if loop.failures > 0 {
		return NewCommandError(1)
	}
	return nil
}

// confirmCreate offers to create a missing ledger file when running in a
// terminal without --create.
func (cmd *AddCmd) confirmCreate(w io.Writer) error {
	if cmd.Create {
		return nil
	}
	if _, err := os.Stat(cmd.File); !errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	ok, err := promptYesNo(fmt.Sprintf("%s does not exist. Create it on the first commit?", cmd.File))
	if err != nil {
		return err
	}
	if !ok {
		printError(w, fmt.Sprintf("%s does not exist (use --create to create it)", cmd.File))
		return NewCommandError(1)
	}
	cmd.Create = true
	return nil
}

// entryLoop reads headers and change commands until the input ends.
type entryLoop struct {
	session     *session.Session
	history     *history.History
	prompter    prompter
	stdout      io.Writer
	stderr      io.Writer
	styles      *output.Styles
	logger      *log.Logger
	interactive bool

	committed int
	failures  int
}

func (l *entryLoop) run(ctx context.Context) error {
	for {
		label, validate, suggest := headerPrompt, validateHeader, l.suggestHeader
		if l.session.Pending() != nil {
			label, validate, suggest = changePrompt, validateChange, l.suggestChange(ctx)
		}

		line, err := l.prompter.Prompt(label, validate, suggest)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		l.history.Add(line)

		if l.session.Pending() == nil {
			l.header(line)
		} else {
			l.change(ctx, line)
		}
	}

	if tx := l.session.Pending(); tx != nil {
		printWarning(l.stderr, fmt.Sprintf("discarding unfinished transaction %q", tx.Description))
		l.session.Discard()
	}
	return nil
}

func (l *entryLoop) header(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if _, err := l.session.Begin(line); err != nil {
		l.fail(line, err)
	}
}

func (l *entryLoop) change(ctx context.Context, line string) {
	if strings.TrimSpace(line) != "" {
		if _, err := l.session.Change(line); err != nil {
			l.fail(line, err)
			return
		}
		if l.interactive {
			l.preview(l.session.Pending())
		}
		return
	}

	tx := l.session.Pending()
	_, _ = fmt.Fprint(l.stdout, formatter.String(tx))
	if !tx.IsBalanced() {
		printWarning(l.stderr, "transaction does not balance: "+formatAmounts(tx.Balance()))
	}

	result, err := l.session.Commit(ctx)
	if err != nil {
		l.fail("", err)
		printInfof(l.stderr, "press enter on an empty change line to retry")
		return
	}

	l.committed++
	if !result.Written {
		printInfof(l.stdout, "dry run: would insert at byte %d of %s", result.Offset, pathStyle.Render(result.Path))
		return
	}
	printSuccess(l.stdout, fmt.Sprintf("Added to %s", pathStyle.Render(result.Path)))
}

func (l *entryLoop) fail(line string, err error) {
	l.failures++
	_, _ = fmt.Fprintln(l.stderr, NewErrorRenderer(line).Render(err))
}

// preview prints the postings so far and what is left to balance.
func (l *entryLoop) preview(tx *ledger.Transaction) {
	rows := make([]output.Row, 0)
	for _, p := range tx.Postings() {
		rows = append(rows, output.Row{
			Account:   p.Account,
			Commodity: p.Amount.Commodity,
			Number:    ledger.FormatNumber(p.Amount.Number),
			Negative:  p.Amount.IsNegative(),
		})
	}
	if err := output.WriteTable(l.stdout, rows, "  ", l.styles); err != nil {
		l.logger.Debug("preview failed", "err", err)
	}
	if !tx.IsBalanced() {
		_, _ = fmt.Fprintln(l.stdout, l.styles.Dim("  unbalanced: "+formatAmounts(tx.Balance())))
	}
}

func (l *entryLoop) suggestHeader(line string) []string {
	return l.history.Suggest(func(e string) bool {
		_, err := parser.ParseHeader(e)
		return err == nil && strings.HasPrefix(e, line)
	})
}

func (l *entryLoop) suggestChange(ctx context.Context) func(string) []string {
	return func(line string) []string {
		suggestions := l.session.Complete(ctx, line).Lines(line)
		for _, e := range l.history.Suggest(func(e string) bool { return strings.HasPrefix(e, line) }) {
			if _, err := parser.ParseLine(e); err == nil {
				suggestions = append(suggestions, e)
			}
		}
		return suggestions
	}
}

func validateHeader(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	_, err := parser.ParseHeader(line)
	return err
}

func validateChange(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	_, err := parser.ParseLine(line)
	return err
}

func formatAmounts(amounts []ledger.Amount) string {
	parts := make([]string, 0, len(amounts))
	for _, a := range amounts {
		if !a.Number.IsZero() {
			parts = append(parts, a.String())
		}
	}
	return strings.Join(parts, ", ")
}

// defaultHistoryFile is where history lives when --history is not given.
func defaultHistoryFile() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ledgerentry", history.DefaultFile)
	}
	return history.DefaultFile
}
