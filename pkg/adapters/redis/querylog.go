package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/revitgen/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// QueryLog implements ports.QueryLog as a Redis list of JSON entries, oldest at the head.
type QueryLog struct {
	client *backend.Client
	key    string
	maxLen int64
}

// NewQueryLog creates a log stored under <prefix>log.
func NewQueryLog(client *backend.Client, opts ...Option) *QueryLog {
	s := newSettings(opts)
	return &QueryLog{
		client: client,
		key:    s.prefix + "log",
		maxLen: s.maxLen,
	}
}

// Append pushes the entry and trims the list when a cap is configured.
func (l *QueryLog) Append(ctx context.Context, entry domain.LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	pipe := l.client.TxPipeline()
	pipe.RPush(ctx, l.key, data)
	if l.maxLen > 0 {
		pipe.LTrim(ctx, l.key, -l.maxLen, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append log entry to redis: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *QueryLog) Recent(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := l.client.LRange(ctx, l.key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read log from redis: %w", err)
	}

	entries := make([]domain.LogEntry, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var entry domain.LogEntry
		if err := json.Unmarshal([]byte(raw[i]), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal log entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
