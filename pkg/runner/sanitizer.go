package runner

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/revitgen/pkg/domain"
)

var (
	// DefaultMaxInputSize is 8KB, enough for a detailed request.
	DefaultMaxInputSize = 8192
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "REVITGEN_MAX_INPUT_SIZE"
)

// SanitizeInput cleans user input by enforcing size limits,
// validating UTF-8, and stripping dangerous control characters.
func SanitizeInput(input string) (string, error) {
	limit := getMaxInputSize()
	if len(input) > limit {
		// Reject rather than truncate: a truncated request produces a different script.
		return "", fmt.Errorf("%w: size=%d limit=%d", domain.ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", domain.ErrInvalidUTF8
	}

	// Newline, tab and carriage return survive. ESC, NULL, BEL and friends are dropped
	// so queries cannot poison the log or the terminal.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// SanitizeQuery is SanitizeInput followed by trimming. Blank queries fail with
// domain.ErrEmptyQuery.
func SanitizeQuery(input string) (string, error) {
	clean, err := SanitizeInput(input)
	if err != nil {
		return "", err
	}
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return "", domain.ErrEmptyQuery
	}
	return clean, nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func getMaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
