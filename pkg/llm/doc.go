// Package llm decorates Completers with the cross-cutting behavior every provider
// needs: retries with exponential backoff and OpenTelemetry spans.
package llm
