// Package memory provides in-process implementations of the storage ports.
// They are safe for concurrent use and lose everything on exit.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/revitgen/pkg/domain"
)

// QueryLog implements ports.QueryLog in memory.
type QueryLog struct {
	mu      sync.RWMutex
	entries []domain.LogEntry
}

// NewQueryLog creates an empty log.
func NewQueryLog() *QueryLog {
	return &QueryLog{}
}

// Append records an entry.
func (l *QueryLog) Append(ctx context.Context, entry domain.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *QueryLog) Recent(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return newestFirst(l.entries, limit), nil
}

func newestFirst(entries []domain.LogEntry, limit int) []domain.LogEntry {
	n := len(entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.LogEntry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, entries[i])
	}
	return out
}
