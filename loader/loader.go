// Package loader reads a ledger file together with the date offsets that
// describe it, giving the commit step a consistent snapshot to splice into.
//
// Example usage:
//
//	ldr := loader.New(o, loader.WithCreate())
//	result, err := ldr.Load(ctx, "journal.ledger")
//	content, _, err := writer.Insert(result.Content, result.Offsets, tx.Date, text)
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/robinvdvleuten/ledgerentry/oracle"
	"github.com/robinvdvleuten/ledgerentry/telemetry"
	"github.com/robinvdvleuten/ledgerentry/writer"
)

// DefaultPerm is the mode of ledger files created by the loader's callers.
const DefaultPerm fs.FileMode = 0o644

// Loader reads ledger files and asks an oracle where their entries end.
//
// Configure the loader using functional options passed to New:
//
//	loader := New(o, WithCreate())
type Loader struct {
	// Create treats a missing file as empty instead of failing.
	Create bool

	oracle oracle.Oracle
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithCreate makes a missing ledger file load as an empty one, so the first
// commit creates it.
func WithCreate() Option {
	return func(l *Loader) {
		l.Create = true
	}
}

// New creates a new Loader that queries o for date offsets.
func New(o oracle.Oracle, opts ...Option) *Loader {
	l := &Loader{oracle: o}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Result is a snapshot of a ledger file.
type Result struct {
	// Root is the absolute path of the file.
	Root string

	// Content is the file's bytes, empty when the file does not exist yet.
	Content []byte

	// Offsets are the folded date offsets describing Content.
	Offsets []writer.DateOffset

	// Exists reports whether the file was present on disk.
	Exists bool
}

// Load reads filename and its date offsets. An oracle failure aborts the load,
// since splicing without offsets could misplace the entry.
func (l *Loader) Load(ctx context.Context, filename string) (*Result, error) {
	timer := telemetry.FromContext(ctx).Start("loader.load " + filepath.Base(filename))
	defer timer.End()

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	result := &Result{Root: absPath, Exists: true}

	readTimer := timer.Child("loader.read")
	result.Content, err = os.ReadFile(absPath)
	readTimer.End()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || !l.Create {
			return nil, fmt.Errorf("failed to read %s: %w", filename, err)
		}
		result.Content = nil
		result.Exists = false
	}

	if !result.Exists {
		return result, nil
	}

	result.Offsets, err = l.oracle.DateOffsets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to locate entries in %s: %w", filename, err)
	}

	return result, nil
}
