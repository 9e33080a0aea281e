package codecheck

import "strings"

// FStringLines returns the 1-based lines on which an f-string literal starts.
// Comments and the contents of other string literals are skipped, so text such as
// "if" or # f"x" is never mistaken for a prefix.
func FStringLines(code string) []int {
	var (
		lines []int
		line  = 1
		last  = 0
	)
	for i := 0; i < len(code); {
		c := code[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == '#':
			for i < len(code) && code[i] != '\n' {
				i++
			}
		case c == '"' || c == '\'':
			if isFPrefix(stringPrefix(code, i)) && line != last {
				lines = append(lines, line)
				last = line
			}
			var n int
			i, n = skipString(code, i)
			line += n
		default:
			i++
		}
	}
	return lines
}

// stringPrefix returns the identifier characters immediately before the quote at i.
func stringPrefix(code string, i int) string {
	j := i
	for j > 0 && isIdent(code[j-1]) {
		j--
	}
	return code[j:i]
}

func isFPrefix(p string) bool {
	switch strings.ToLower(p) {
	case "f", "rf", "fr":
		return true
	}
	return false
}

func isIdent(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// skipString advances past the literal opening at i and returns the new offset and the
// number of newlines consumed. Unterminated literals run to the end of the code
// (triple-quoted) or of the line (single-quoted).
func skipString(code string, i int) (int, int) {
	q := code[i]
	triple := strings.HasPrefix(code[i:], strings.Repeat(string(q), 3))
	if triple {
		i += 3
	} else {
		i++
	}

	newlines := 0
	for i < len(code) {
		c := code[i]
		switch {
		case c == '\\':
			if i+1 < len(code) && code[i+1] == '\n' {
				newlines++
			}
			i += 2
			continue
		case c == '\n':
			if !triple {
				return i, newlines
			}
			newlines++
		case c == q:
			if !triple {
				return i + 1, newlines
			}
			if strings.HasPrefix(code[i:], strings.Repeat(string(q), 3)) {
				return i + 3, newlines
			}
		}
		i++
	}
	return len(code), newlines
}
