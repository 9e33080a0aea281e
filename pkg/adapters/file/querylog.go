// Package file keeps the query log as a single JSON array on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/revitgen/pkg/domain"
)

// DefaultPath is where the log lives when no path is given.
var DefaultPath = filepath.Join("logs", "ai.json")

// QueryLog implements ports.QueryLog on top of a JSON array file.
//
// Every Append reads the whole file, adds the entry and rewrites it atomically.
// A missing, unreadable or corrupt file reads as an empty log, so a damaged log
// never blocks generation; the next Append replaces it.
type QueryLog struct {
	Path string

	mu sync.Mutex
}

// NewQueryLog creates a QueryLog writing to path, or DefaultPath if empty.
func NewQueryLog(path string) *QueryLog {
	if path == "" {
		path = DefaultPath
	}
	return &QueryLog{Path: path}
}

// Append records entry.
func (l *QueryLog) Append(ctx context.Context, entry domain.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.read()
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal query log: %w", err)
	}
	return writeAtomic(l.Path, data)
}

// Recent returns up to limit entries, newest first.
func (l *QueryLog) Recent(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	l.mu.Lock()
	entries := l.read()
	l.mu.Unlock()

	n := len(entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.LogEntry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (l *QueryLog) read() []domain.LogEntry {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil
	}
	var entries []domain.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// writeAtomic writes to a temp file in the same directory, fsyncs it and renames it
// over path. os.Rename replaces an existing file on every platform, so readers see
// either the old log or the new one.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure log directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
