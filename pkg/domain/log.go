package domain

import "time"

// LogEntry is one row of the query audit log.
// When generation fails, Code holds the error message, matching what operators
// historically grep for in the log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Code      string    `json:"code"`
	Model     string    `json:"model"`
	Provider  string    `json:"provider,omitempty"`
	Error     string    `json:"error,omitempty"`
	Valid     bool      `json:"valid"`
}
