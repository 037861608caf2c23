// Package history keeps the lines entered in previous sessions so they can be
// offered again as suggestions. The file holds one entry per line, oldest
// first.
package history

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/robinvdvleuten/ledgerentry/writer"
)

// DefaultFile is the history file used when none is configured.
const DefaultFile = "history.txt"

// DefaultLimit caps the number of entries kept.
const DefaultLimit = 1000

// History is an ordered list of previously entered lines.
type History struct {
	entries []string
	limit   int
}

// New creates an empty history keeping at most limit entries. A limit of
// zero or less means DefaultLimit.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Load reads a history file. A missing file yields an empty history.
func Load(path string, limit int) (*History, error) {
	h := New(limit)

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history %s: %w", path, err)
	}

	s := bufio.NewScanner(bytes.NewReader(content))
	for s.Scan() {
		h.Add(s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history %s: %w", path, err)
	}
	return h, nil
}

// Save writes the history to path, replacing the file atomically. Missing
// parent directories are created.
func (h *History) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	var buf bytes.Buffer
	for _, e := range h.entries {
		buf.WriteString(e)
		buf.WriteByte('\n')
	}
	return writer.WriteFileAtomic(path, buf.Bytes(), 0o600)
}

// Add records line. Blank lines, lines starting with a space and repeats of
// the most recent entry are ignored.
func (h *History) Add(line string) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" || line[0] == ' ' {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	h.entries = append(h.entries, line)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Entries returns all entries, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Suggest returns distinct entries accepted by keep, most recent first. A nil
// keep accepts everything.
func (h *History) Suggest(keep func(string) bool) []string {
	seen := make(map[string]struct{}, len(h.entries))
	var out []string
	for i := len(h.entries) - 1; i >= 0; i-- {
		e := h.entries[i]
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	return out
}
