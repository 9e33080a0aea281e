package codecheck

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/revitgen/pkg/domain"
)

// Rule names reported in Diagnostic.Rule.
const (
	RuleEmptyScript          = "empty-script"
	RuleMarkdownFence        = "markdown-fence"
	RuleFString              = "f-string"
	RuleMissingCodingHeader  = "missing-coding-header"
	RuleMissingPyRevitImport = "missing-pyrevit-import"
	RuleMissingErrorHandling = "missing-error-handling"
	RuleMixedIndentation     = "mixed-indentation"
)

var (
	codingHeader  = regexp.MustCompile(`^#.*coding[:=]\s*utf-?8`)
	pyrevitImport = regexp.MustCompile(`(?m)^\s*(from\s+pyrevit(\.\w+)*\s+import\b|import\s+pyrevit\b)`)
	transaction   = regexp.MustCompile(`\bTransaction(Group)?\s*\(`)
	tryStatement  = regexp.MustCompile(`(?m)^\s*try\s*:`)
)

// Lint checks code against the output contract. Diagnostics come back in line order,
// whole-script findings last.
func Lint(code string) []domain.Diagnostic {
	if strings.TrimSpace(code) == "" {
		return []domain.Diagnostic{{
			Rule:     RuleEmptyScript,
			Severity: domain.SeverityError,
			Message:  "script is empty",
		}}
	}

	var diags []domain.Diagnostic
	lines := strings.Split(code, "\n")

	for i, line := range lines {
		if strings.Contains(line, fence) {
			diags = append(diags, domain.Diagnostic{
				Rule:     RuleMarkdownFence,
				Severity: domain.SeverityError,
				Line:     i + 1,
				Message:  "markdown code fence in script; answer with raw code only",
			})
		}
		if mixedIndent(line) {
			diags = append(diags, domain.Diagnostic{
				Rule:     RuleMixedIndentation,
				Severity: domain.SeverityWarning,
				Line:     i + 1,
				Message:  "indentation mixes tabs and spaces",
			})
		}
	}

	for _, line := range FStringLines(code) {
		diags = append(diags, domain.Diagnostic{
			Rule:     RuleFString,
			Severity: domain.SeverityError,
			Line:     line,
			Message:  "f-strings are not supported by IronPython 2.7; use str.format()",
		})
	}
	sortByLine(diags)

	if !hasCodingHeader(lines) {
		diags = append(diags, domain.Diagnostic{
			Rule:     RuleMissingCodingHeader,
			Severity: domain.SeverityWarning,
			Message:  "first line should be: # -*- coding: utf-8 -*-",
		})
	}
	if !pyrevitImport.MatchString(code) {
		diags = append(diags, domain.Diagnostic{
			Rule:     RuleMissingPyRevitImport,
			Severity: domain.SeverityWarning,
			Message:  "script does not import pyrevit",
		})
	}
	if transaction.MatchString(code) && !tryStatement.MatchString(code) {
		diags = append(diags, domain.Diagnostic{
			Rule:     RuleMissingErrorHandling,
			Severity: domain.SeverityWarning,
			Message:  "transaction opened without try/except; changes cannot be rolled back on failure",
		})
	}
	return diags
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []domain.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == domain.SeverityError {
			return true
		}
	}
	return false
}

func hasCodingHeader(lines []string) bool {
	// PEP 263 allows the declaration on the first or second line.
	for i := 0; i < len(lines) && i < 2; i++ {
		if codingHeader.MatchString(strings.TrimSpace(lines[i])) {
			return true
		}
	}
	return false
}

func mixedIndent(line string) bool {
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	return strings.Contains(indent, " ") && strings.Contains(indent, "\t")
}

func sortByLine(diags []domain.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Line < diags[j].Line
	})
}
