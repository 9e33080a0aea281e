package domain

import "time"

// Severity grades a Diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one finding raised against a script.
// Line is 1-based; zero means the finding applies to the whole script.
type Diagnostic struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

// SyntaxResult is the outcome of compiling a script with the target interpreter.
type SyntaxResult struct {
	Checked bool   `json:"checked"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Report groups everything known about a piece of code.
type Report struct {
	Code        string       `json:"code"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Syntax      SyntaxResult `json:"syntax"`
}

// Valid reports whether the code has no lint errors and did not fail a syntax check.
// Unchecked syntax does not make a report invalid.
func (r *Report) Valid() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return false
		}
	}
	return !r.Syntax.Checked || r.Syntax.Valid
}

// Script is a generated pyRevit script.
type Script struct {
	Query     string    `json:"query"`
	Raw       string    `json:"raw"`
	Model     string    `json:"model"`
	Provider  string    `json:"provider"`
	Usage     Usage     `json:"usage"`
	Report    Report    `json:"report"`
	Cached    bool      `json:"cached"`
	CreatedAt time.Time `json:"created_at"`
}

// Code returns the cleaned code.
func (s *Script) Code() string {
	return s.Report.Code
}
