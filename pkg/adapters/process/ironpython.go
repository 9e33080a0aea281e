// Package process checks generated scripts by compiling them with an external
// Python interpreter, normally the IronPython 2.7 build that pyRevit ships.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/ports"
)

// DefaultTimeout bounds a single compile run.
const DefaultTimeout = 20 * time.Second

// errorMarkers are the stderr fragments that identify a rejected script.
var errorMarkers = []string{
	"SyntaxError",
	"IndentationError",
	"Traceback (most recent call last):",
	"Sorry:",
}

// Checker compiles code with an interpreter without executing it.
type Checker struct {
	executable string
	timeout    time.Duration
	tempDir    string
}

var _ ports.SyntaxChecker = (*Checker)(nil)

// Option configures the checker.
type Option func(*Checker)

// WithTimeout bounds each compile run.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.timeout = d
	}
}

// WithTempDir sets where scratch files are written (default: os.TempDir()).
func WithTempDir(dir string) Option {
	return func(c *Checker) {
		c.tempDir = dir
	}
}

// NewChecker creates a checker for the interpreter at executable (e.g. ipy.exe).
func NewChecker(executable string, opts ...Option) *Checker {
	c := &Checker{
		executable: executable,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Executable returns the interpreter path.
func (c *Checker) Executable() string {
	return c.executable
}

// Check writes code to a scratch file and asks the interpreter to compile it.
func (c *Checker) Check(ctx context.Context, code string) (domain.SyntaxResult, error) {
	if c.executable == "" {
		return domain.SyntaxResult{}, fmt.Errorf("%w: no interpreter configured", domain.ErrCheckerUnavailable)
	}

	dir, err := os.MkdirTemp(c.tempDir, "revitgen-check-")
	if err != nil {
		return domain.SyntaxResult{}, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	scriptPath := filepath.Join(dir, "script_to_compile.py")
	if err := os.WriteFile(scriptPath, []byte(code), 0o600); err != nil {
		return domain.SyntaxResult{}, fmt.Errorf("failed to write scratch file: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// The interpreter may be a Windows build; forward slashes work on both sides.
	p := filepath.ToSlash(scriptPath)
	program := fmt.Sprintf("source_code = open('%s', 'r').read()\ncompile(source_code, '%s', 'exec')\n", p, p)

	cmd := exec.CommandContext(ctx, c.executable, "-c", program)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	runErr := cmd.Run()
	var (
		execErr *exec.Error
		pathErr *fs.PathError
	)
	if errors.As(runErr, &execErr) || errors.As(runErr, &pathErr) {
		return domain.SyntaxResult{}, fmt.Errorf("%w: %v", domain.ErrCheckerUnavailable, runErr)
	}
	if ctx.Err() != nil {
		return domain.SyntaxResult{}, fmt.Errorf("syntax check aborted: %w", ctx.Err())
	}

	return classify(stderr.String(), runErr, c.executable), nil
}

func classify(stderr string, runErr error, executable string) domain.SyntaxResult {
	stderr = strings.TrimSpace(stderr)
	for _, marker := range errorMarkers {
		if strings.Contains(stderr, marker) {
			return domain.SyntaxResult{Checked: true, Valid: false, Message: stderr}
		}
	}

	if runErr != nil {
		if stderr != "" {
			return domain.SyntaxResult{Checked: true, Valid: false, Message: stderr}
		}
		code := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			code = exitErr.ExitCode()
		}
		return domain.SyntaxResult{
			Checked: true,
			Valid:   false,
			Message: fmt.Sprintf("interpreter %q failed with exit code %d and no error output", executable, code),
		}
	}
	return domain.SyntaxResult{Checked: true, Valid: true}
}
