package codecheck

import (
	"context"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
)

// RuleSyntax is reported when the interpreter rejects the script.
const RuleSyntax = "syntax"

// NopChecker skips syntax checking. It is used when no interpreter is configured.
type NopChecker struct{}

var _ ports.SyntaxChecker = NopChecker{}

// Check always reports an unchecked result.
func (NopChecker) Check(context.Context, string) (domain.SyntaxResult, error) {
	return domain.SyntaxResult{Checked: false}, nil
}

// Analyze lints code and compiles it with checker.
// Lint errors do not skip the syntax check so both kinds of findings reach the caller.
func Analyze(ctx context.Context, checker ports.SyntaxChecker, code string) (domain.Report, error) {
	report := domain.Report{
		Code:        code,
		Diagnostics: Lint(code),
	}
	if checker == nil || code == "" {
		return report, nil
	}

	res, err := checker.Check(ctx, code)
	if err != nil {
		return report, err
	}
	report.Syntax = res
	if res.Checked && !res.Valid {
		report.Diagnostics = append(report.Diagnostics, domain.Diagnostic{
			Rule:     RuleSyntax,
			Severity: domain.SeverityError,
			Message:  res.Message,
		})
	}
	return report, nil
}
