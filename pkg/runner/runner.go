package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/revitgen/internal/logging"
	"github.com/aretw0/revitgen/pkg/domain"
)

// Generator turns a query into a script. *revitgen.Engine satisfies it.
type Generator interface {
	Generate(ctx context.Context, query string) (*domain.Script, error)
}

// ContentRenderer transforms markdown before it is printed (e.g. glamour).
type ContentRenderer func(string) (string, error)

// Runner is the interactive read-generate-print loop.
type Runner struct {
	gen      Generator
	in       io.Reader
	out      io.Writer
	renderer ContentRenderer
	logger   *slog.Logger
	prompt   string
}

// Option configures a Runner.
type Option func(*Runner)

// WithIO sets the input and output streams. Nil keeps the default (stdin/stdout).
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		if in != nil {
			r.in = in
		}
		if out != nil {
			r.out = out
		}
	}
}

// WithRenderer renders each script, wrapped in a python code fence, before printing.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.renderer = renderer
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithPrompt sets the string printed before each read. Empty disables it.
func WithPrompt(prompt string) Option {
	return func(r *Runner) {
		r.prompt = prompt
	}
}

// New creates a Runner around gen.
func New(gen Generator, opts ...Option) *Runner {
	r := &Runner{
		gen:    gen,
		in:     os.Stdin,
		out:    os.Stdout,
		logger: logging.NewNop(),
		prompt: "> ",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsExit reports whether line ends the session.
func IsExit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit":
		return true
	}
	return false
}

type line struct {
	text string
	err  error
}

// Run loops until the input ends, the user types exit or quit, or ctx is canceled.
// Generation errors are printed and the loop continues.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan line)
	go r.pump(ctx, lines)

	for {
		if r.prompt != "" {
			fmt.Fprint(r.out, r.prompt)
		}

		var in line
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in = <-lines:
		}
		if in.err != nil {
			if errors.Is(in.err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read query: %w", in.err)
		}
		if IsExit(in.text) {
			return nil
		}
		if strings.TrimSpace(in.text) == "" {
			continue
		}

		if err := r.handle(ctx, in.text); err != nil {
			return err
		}
	}
}

func (r *Runner) handle(ctx context.Context, query string) error {
	script, err := r.gen.Generate(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Error("Generation failed", "error", err)
		fmt.Fprintf(r.out, "error: %v\n", err)
		return nil
	}
	r.print(script)
	return nil
}

func (r *Runner) print(script *domain.Script) {
	code := script.Code()
	if r.renderer != nil {
		if rendered, err := r.renderer("```python\n" + code + "\n```"); err == nil {
			code = rendered
		} else {
			r.logger.Warn("Render failed", "error", err)
		}
	}
	fmt.Fprintln(r.out, strings.TrimRight(code, "\n"))
	fmt.Fprint(r.out, FormatDiagnostics(script.Report))
}

// FormatDiagnostics renders findings as Python comment lines so the output stays
// a valid script. Every line of a multi-line message, such as an interpreter
// traceback, is commented.
func FormatDiagnostics(report domain.Report) string {
	var b strings.Builder
	for _, d := range report.Diagnostics {
		lines := strings.Split(strings.TrimRight(d.Message, "\r\n"), "\n")
		if d.Line > 0 {
			fmt.Fprintf(&b, "# %s [%s] line %d: %s\n", d.Severity, d.Rule, d.Line, strings.TrimRight(lines[0], "\r"))
		} else {
			fmt.Fprintf(&b, "# %s [%s]: %s\n", d.Severity, d.Rule, strings.TrimRight(lines[0], "\r"))
		}
		for _, l := range lines[1:] {
			fmt.Fprintf(&b, "#   %s\n", strings.TrimRight(l, "\r"))
		}
	}
	return b.String()
}

// pump forwards lines until the first read error. It exits once ctx is done and the
// pending read returns.
func (r *Runner) pump(ctx context.Context, out chan<- line) {
	reader := bufio.NewReader(r.in)
	for {
		text, err := reader.ReadString('\n')
		if err != nil && text != "" {
			// Last line without a trailing newline.
			err = nil
		}
		select {
		case out <- line{text: strings.TrimRight(text, "\r\n"), err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}
