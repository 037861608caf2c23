// Package session holds the state of an interactive entry session: the one
// transaction being composed, completion of partially typed change commands
// and committing the finished transaction into the ledger file.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/robinvdvleuten/ledgerentry/formatter"
	"github.com/robinvdvleuten/ledgerentry/ledger"
	"github.com/robinvdvleuten/ledgerentry/loader"
	"github.com/robinvdvleuten/ledgerentry/oracle"
	"github.com/robinvdvleuten/ledgerentry/parser"
	"github.com/robinvdvleuten/ledgerentry/telemetry"
	"github.com/robinvdvleuten/ledgerentry/writer"
)

var (
	// ErrNoTransaction is returned by change and commit calls made before a
	// header started a transaction.
	ErrNoTransaction = errors.New("no transaction in progress")

	// ErrTransactionPending is returned when a header is entered while another
	// transaction is still being composed.
	ErrTransactionPending = errors.New("a transaction is already in progress")
)

// Session composes transactions for a single ledger file.
type Session struct {
	path   string
	oracle oracle.Oracle
	loader *loader.Loader
	logger *log.Logger
	perm   fs.FileMode
	dryRun bool

	pending *ledger.Transaction
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithCreate lets the first commit create a missing ledger file.
func WithCreate() Option {
	return func(s *Session) {
		s.loader.Create = true
	}
}

// WithDryRun makes Commit compute where the entry would go without writing
// the file.
func WithDryRun() Option {
	return func(s *Session) {
		s.dryRun = true
	}
}

// New creates a session writing to path and asking o about it.
func New(path string, o oracle.Oracle, opts ...Option) *Session {
	s := &Session{
		path:   path,
		oracle: o,
		loader: loader.New(o),
		logger: log.Default(),
		perm:   loader.DefaultPerm,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the ledger file the session writes to.
func (s *Session) Path() string {
	return s.path
}

// Pending returns the transaction being composed, or nil.
func (s *Session) Pending() *ledger.Transaction {
	return s.pending
}

// Begin starts a transaction from a "<date> <description>" header line.
func (s *Session) Begin(line string) (*ledger.Transaction, error) {
	if s.pending != nil {
		return nil, ErrTransactionPending
	}
	tx, err := parser.ParseHeader(line)
	if err != nil {
		return nil, err
	}
	s.pending = tx
	s.logger.Debug("transaction started", "date", tx.Date.Format(parser.DateLayout), "description", tx.Description)
	return tx, nil
}

// Change parses a change command and applies it to the pending transaction.
// A rejected command leaves the transaction untouched.
func (s *Session) Change(line string) (ledger.Operation, error) {
	if s.pending == nil {
		return nil, ErrNoTransaction
	}
	op, err := parser.ParseLine(line)
	if err != nil {
		return nil, err
	}
	ledger.Apply(s.pending, op)
	s.logger.Debug("change applied", "kind", op.Kind(), "line", strings.TrimSpace(line))
	return op, nil
}

// Discard drops the pending transaction.
func (s *Session) Discard() {
	s.pending = nil
}

// Completion is the result of completing the word under the cursor.
type Completion struct {
	// Start is the byte offset in the line where the completed word begins.
	Start int

	// Candidates replace line[Start:].
	Candidates []string
}

// Lines returns the candidates spliced into line.
func (c Completion) Lines(line string) []string {
	out := make([]string, 0, len(c.Candidates))
	for _, cand := range c.Candidates {
		out = append(out, line[:c.Start]+cand)
	}
	return out
}

// Complete offers completions for the last word of a partially typed change
// command. The words before it are fed to a fresh parser; if any of them is
// rejected, or the next expected word is neither an account nor a commodity,
// there is nothing to offer. Oracle failures are logged and yield no
// completions.
func (s *Session) Complete(ctx context.Context, line string) Completion {
	words := parser.Split(line)

	start, prefix := len(line), ""
	if n := len(words); n > 0 && words[n-1].Offset+len(words[n-1].Text) == len(line) {
		start, prefix = words[n-1].Offset, words[n-1].Text
		words = words[:n-1]
	}

	p := parser.New()
	for _, w := range words {
		if err := p.Feed(w.Text); err != nil {
			return Completion{Start: start}
		}
	}

	var (
		candidates []string
		err        error
	)
	switch p.Expected() {
	case parser.ACCOUNT:
		candidates, err = s.oracle.Accounts(ctx, prefix)
	case parser.COMMODITY:
		candidates, err = s.oracle.Commodities(ctx, prefix)
	default:
		return Completion{Start: start}
	}
	if err != nil {
		s.logger.Warn("completion unavailable", "expected", p.Expected().String(), "err", err)
		return Completion{Start: start}
	}
	return Completion{Start: start, Candidates: candidates}
}

// Result describes a committed transaction.
type Result struct {
	Path    string
	Text    string
	Offset  int64
	Size    int
	Written bool
}

// Commit renders the pending transaction, splices it into the ledger file at
// its chronological position and atomically replaces the file. The pending
// transaction is kept when anything fails, so the commit can be retried.
func (s *Session) Commit(ctx context.Context) (*Result, error) {
	if s.pending == nil {
		return nil, ErrNoTransaction
	}

	timer := telemetry.FromContext(ctx).Start("commit " + filepath.Base(s.path))
	defer timer.End()

	tx := s.pending
	text := formatter.String(tx)

	snapshot, err := s.loader.Load(ctx, s.path)
	if err != nil {
		return nil, err
	}

	spliceTimer := timer.Child("writer.insert")
	content, offset, err := writer.Insert(snapshot.Content, snapshot.Offsets, tx.Date, text)
	spliceTimer.End()
	if err != nil {
		return nil, fmt.Errorf("failed to place transaction in %s: %w", s.path, err)
	}

	result := &Result{Path: snapshot.Root, Text: text, Offset: offset, Size: len(content)}
	if s.dryRun {
		s.logger.Info("dry run, ledger left unchanged", "file", snapshot.Root, "offset", offset)
		s.pending = nil
		return result, nil
	}

	writeTimer := timer.Child("writer.write_atomic")
	err = writer.WriteFileAtomic(snapshot.Root, content, s.perm)
	writeTimer.End()
	if err != nil {
		return nil, err
	}
	result.Written = true

	if c, ok := s.oracle.(interface{ Invalidate() }); ok {
		c.Invalidate()
	}

	s.logger.Info("transaction committed",
		"file", snapshot.Root,
		"date", tx.Date.Format(parser.DateLayout),
		"offset", offset,
		"created", !snapshot.Exists)

	s.pending = nil
	return result, nil
}
