// Package codecheck enforces the output contract of generated pyRevit scripts.
//
// Models are told to answer with raw code, but they still wrap answers in markdown fences
// from time to time. Clean recovers the code; Lint reports whatever still violates the
// contract.
package codecheck

import "strings"

const (
	fence       = "```"
	pythonFence = "```python"
)

// Clean extracts the code from a model reply.
//
// A ```python block wins over a generic ``` block. The block body runs up to the next
// fence, or to the end of the reply when the fence is never closed. A reply without any
// fence is returned as is. The result is always trimmed.
func Clean(reply string) string {
	if body, ok := fencedBody(reply, pythonFence); ok {
		return body
	}
	if body, ok := fencedBody(reply, fence); ok {
		return body
	}
	return strings.TrimSpace(reply)
}

func fencedBody(s, marker string) (string, bool) {
	open := strings.Index(s, marker)
	if open == -1 {
		return "", false
	}
	start := open + len(marker)
	if start < len(s) && s[start] == '\n' {
		start++
	}
	rest := s[start:]
	if end := strings.Index(rest, fence); end != -1 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest), true
}
