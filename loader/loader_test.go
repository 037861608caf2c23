package loader

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/ledgerentry/oracle"
	"github.com/robinvdvleuten/ledgerentry/telemetry"
	"github.com/robinvdvleuten/ledgerentry/writer"
)

const journal = `2020-01-10 Groceries
	Expenses:Food	CZK 120
	Assets:Cash	CZK -120
`

func TestLoadSingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	mainFile := filepath.Join(tmpDir, "journal.ledger")
	err := os.WriteFile(mainFile, []byte(journal), 0o644)
	assert.NoError(t, err)

	absMainFile, err := filepath.Abs(mainFile)
	assert.NoError(t, err)

	ldr := New(oracle.NewScanner(mainFile))
	result, err := ldr.Load(context.Background(), mainFile)
	assert.NoError(t, err)
	assert.Equal(t, absMainFile, result.Root)
	assert.Equal(t, journal, string(result.Content))
	assert.True(t, result.Exists)
	assert.Equal(t, []writer.DateOffset{
		{Date: time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC), Offset: int64(len(journal))},
	}, result.Offsets)
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "journal.ledger")

	_, err := New(oracle.NewScanner(missing)).Load(context.Background(), missing)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadMissingFileWithCreate(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "journal.ledger")
	o := &oracle.Static{Err: errors.New("must not be asked")}

	result, err := New(o, WithCreate()).Load(context.Background(), missing)
	assert.NoError(t, err)
	assert.False(t, result.Exists)
	assert.Equal(t, 0, len(result.Content))
	assert.Equal(t, 0, len(result.Offsets))
}

func TestLoadOracleFailureAborts(t *testing.T) {
	mainFile := filepath.Join(t.TempDir(), "journal.ledger")
	assert.NoError(t, os.WriteFile(mainFile, []byte(journal), 0o644))

	boom := errors.New("ledger crashed")
	_, err := New(&oracle.Static{Err: boom}).Load(context.Background(), mainFile)
	assert.IsError(t, err, boom)
	assert.Contains(t, err.Error(), "failed to locate entries")
}

func TestLoadRecordsTelemetry(t *testing.T) {
	mainFile := filepath.Join(t.TempDir(), "journal.ledger")
	assert.NoError(t, os.WriteFile(mainFile, []byte(journal), 0o644))

	collector := telemetry.NewTimingCollector()
	ctx := telemetry.WithCollector(context.Background(), collector)

	_, err := New(oracle.NewScanner(mainFile)).Load(ctx, mainFile)
	assert.NoError(t, err)

	var buf strings.Builder
	collector.Report(&buf, nil)
	assert.Contains(t, buf.String(), "loader.load journal.ledger")
	assert.Contains(t, buf.String(), "loader.read")
}
