package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/ledgerentry/ledger"
	"github.com/robinvdvleuten/ledgerentry/parser"
)

// DoctorCmd provides doctor utilities for debugging change commands and
// ledger files.
type DoctorCmd struct {
	Parse   ParseCmd   `cmd:"" help:"Feed words to the change parser and show each step."`
	Offsets OffsetsCmd `cmd:"" help:"Show where the last entry of every date ends."`
}

// ParseCmd feeds words to the change parser.
type ParseCmd struct {
	Words []string `arg:"" help:"Words of a change command, e.g. a Expenses:Food CZK 120." passthrough:""`
}

// parsedOperation is the printable form of an operation.
type parsedOperation struct {
	Kind         string
	Account      string
	SplitAccount string
	Amount       string
}

func describe(op ledger.Operation) parsedOperation {
	switch op := op.(type) {
	case ledger.SimpleChange:
		return parsedOperation{Kind: op.Kind(), Account: op.Account, Amount: op.Amount.String()}
	case ledger.SplitChange:
		return parsedOperation{Kind: op.Kind(), Account: op.Account, SplitAccount: op.SplitAccount, Amount: op.Amount.String()}
	case ledger.Finalize:
		return parsedOperation{Kind: op.Kind(), Account: op.Account}
	default:
		return parsedOperation{Kind: op.Kind()}
	}
}

// Run executes the parse command.
func (cmd *ParseCmd) Run(ctx *kong.Context, globals *Globals) error {
	p := parser.New()

	width := 0
	for _, w := range cmd.Words {
		width = max(width, len(w))
	}

	for _, w := range cmd.Words {
		if err := p.Feed(w); err != nil {
			_, _ = fmt.Fprintf(ctx.Stdout, "%-*s  %s\n", width, w, "rejected")
			_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer("").Render(err))
			return NewCommandError(1)
		}
		_, _ = fmt.Fprintf(ctx.Stdout, "%-*s  → %s\n", width, w, p.Expected())
	}

	op, err := p.Operation()
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(1)
	}

	_, _ = fmt.Fprintln(ctx.Stdout, repr.String(describe(op), repr.Indent("  "), repr.OmitEmpty(true)))
	return nil
}

// OffsetsCmd prints the folded date offsets of a ledger file.
type OffsetsCmd struct {
	OracleFlags

	File string `arg:"" help:"Ledger file." type:"existingfile"`
}

// Run executes the offsets command.
func (cmd *OffsetsCmd) Run(ctx *kong.Context, globals *Globals) error {
	logger, err := newLogger(ctx.Stderr, globals.LogLevel)
	if err != nil {
		return err
	}

	runCtx, report := withTelemetry(context.Background(), globals.Telemetry, ctx.Stderr)
	defer report()

	o, err := cmd.build(cmd.File, logger)
	if err != nil {
		return err
	}

	offsets, err := o.DateOffsets(runCtx)
	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer("").Render(err))
		return NewCommandError(1)
	}

	content, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.File, err)
	}

	for _, o := range offsets {
		_, _ = fmt.Fprintf(ctx.Stdout, "%s %d\n", o.Date.Format(parser.DateLayout), o.Offset)
	}
	printInfof(ctx.Stderr, "%d dates in %d bytes", len(offsets), len(content))
	return nil
}
