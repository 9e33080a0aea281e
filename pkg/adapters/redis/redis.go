// Package redis backs the query log, the script cache and the generation lock with Redis,
// so several revitgen replicas can share them.
package redis

import (
	"time"

	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "revitgen:"

type settings struct {
	prefix string
	maxLen int64
	ttl    time.Duration
}

// Option configures the Redis adapters.
type Option func(*settings)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = prefix
	}
}

// WithMaxEntries caps the query log; older entries are trimmed on append. Zero keeps all.
func WithMaxEntries(n int64) Option {
	return func(s *settings) {
		s.maxLen = n
	}
}

// WithDefaultTTL applies to cache writes that pass a zero ttl.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *settings) {
		s.ttl = ttl
	}
}

func newSettings(opts []Option) settings {
	s := settings{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewClient opens a client for address. The connection is established lazily.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}
