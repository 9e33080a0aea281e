package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

// DefaultRedactions catch e-mail addresses and provider API keys pasted into queries.
var DefaultRedactions = []string{
	`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
	`\bsk-[A-Za-z0-9_-]{16,}`,
	`\bAIza[0-9A-Za-z_-]{35}\b`,
}

type piiMiddleware struct {
	next     ports.QueryLog
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks matches of patterns in the
// query, code and error of every appended entry. Reads are passed through.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.QueryLog) ports.QueryLog {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Append(ctx context.Context, entry domain.LogEntry) error {
	// entry is a copy; the caller's value is untouched.
	entry.Query = m.mask(entry.Query)
	entry.Code = m.mask(entry.Code)
	entry.Error = m.mask(entry.Error)
	return m.next.Append(ctx, entry)
}

func (m *piiMiddleware) Recent(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	return m.next.Recent(ctx, limit)
}

func (m *piiMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}
