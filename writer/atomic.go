package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteError reports a failed step of an atomic file replace. The original
// file is untouched whenever a WriteError is returned.
type WriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// WriteFileAtomic replaces path with content by writing a temporary file in
// the same directory, syncing it and renaming it over path. An existing file
// keeps its permissions; a new file is created with perm.
func WriteFileAtomic(path string, content []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)

	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &WriteError{Op: "stat", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Op: "create temp file for", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	// Clean up temp file on any error
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return &WriteError{Op: "write", Path: tmpPath, Err: err}
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &WriteError{Op: "sync", Path: tmpPath, Err: err}
	}

	if err := tmp.Close(); err != nil {
		return &WriteError{Op: "close", Path: tmpPath, Err: err}
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return &WriteError{Op: "chmod", Path: tmpPath, Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return &WriteError{Op: "rename", Path: path, Err: err}
	}

	success = true
	return nil
}
