package ports

import (
	"context"
	"time"

	"github.com/aretw0/revitgen/pkg/domain"
)

// QueryLog persists the audit trail of generation requests.
type QueryLog interface {
	// Append records one entry.
	Append(ctx context.Context, entry domain.LogEntry) error

	// Recent returns up to limit entries, newest first. A limit <= 0 returns everything.
	Recent(ctx context.Context, limit int) ([]domain.LogEntry, error)
}

// ScriptCache stores validated scripts keyed by a request fingerprint.
type ScriptCache interface {
	// Get returns the cached script and true, or false when the key is absent or expired.
	Get(ctx context.Context, key string) (*domain.Script, bool, error)

	// Set stores a script. A ttl of zero keeps it until evicted.
	Set(ctx context.Context, key string, script *domain.Script, ttl time.Duration) error
}
