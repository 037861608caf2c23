package oracle

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledgerentry/writer"
)

// Cache memoizes account and commodity lookups of another Oracle. Entries are
// dropped when the watched ledger file changes on disk or Invalidate is
// called. Date offsets are never cached.
type Cache struct {
	next   Oracle
	logger *log.Logger

	watcher *fsnotify.Watcher
	file    string

	mu          sync.Mutex
	accounts    map[string][]string
	commodities map[string][]string
}

var _ Oracle = (*Cache)(nil)

// NewCache wraps next. When path is non-empty, the directory containing it is
// watched so that editor saves (often a rename over the file) are noticed.
func NewCache(next Oracle, path string, logger *log.Logger) (*Cache, error) {
	if logger == nil {
		logger = log.Default()
	}
	c := &Cache{
		next:        next,
		logger:      logger,
		accounts:    map[string][]string{},
		commodities: map[string][]string{},
	}

	if path == "" {
		return c, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	c.watcher = watcher
	c.file = abs
	return c, nil
}

// Close stops watching the ledger file.
func (c *Cache) Close() error {
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

// Invalidate drops every cached lookup.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *Cache) invalidateLocked() {
	clear(c.accounts)
	clear(c.commodities)
}

// drainLocked consumes pending watcher events without blocking and invalidates the
// cache if any of them touched the ledger file.
func (c *Cache) drainLocked() {
	if c.watcher == nil {
		return
	}
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != c.file {
				continue
			}
			c.logger.Debug("ledger file changed, dropping completions", "file", event.Name, "op", event.Op.String())
			c.invalidateLocked()

		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("file watcher error", "err", err)
			c.invalidateLocked()

		default:
			return
		}
	}
}

func (c *Cache) lookup(ctx context.Context, entries map[string][]string, prefix string,
	fetch func(context.Context, string) ([]string, error)) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.drainLocked()
	if names, ok := entries[prefix]; ok {
		return slices.Clone(names), nil
	}

	names, err := fetch(ctx, prefix)
	if err != nil {
		return nil, err
	}
	entries[prefix] = names
	return slices.Clone(names), nil
}

func (c *Cache) Accounts(ctx context.Context, prefix string) ([]string, error) {
	return c.lookup(ctx, c.accounts, prefix, c.next.Accounts)
}

func (c *Cache) Commodities(ctx context.Context, prefix string) ([]string, error) {
	return c.lookup(ctx, c.commodities, prefix, c.next.Commodities)
}

func (c *Cache) DateOffsets(ctx context.Context) ([]writer.DateOffset, error) {
	return c.next.DateOffsets(ctx)
}
