package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/aretw0/revitgen/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed rules.md api_notes.md examples
var embedded embed.FS

const (
	rulesFile    = "rules.md"
	apiNotesFile = "api_notes.md"
	examplesDir  = "examples"
	indexFile    = "examples/index.yaml"
)

// Variant selects how much material goes into the system prompt.
type Variant string

const (
	Basic    Variant = "basic"
	Extended Variant = "extended"
)

// Variants lists every known variant.
var Variants = []Variant{Basic, Extended}

// ParseVariant converts user input to a Variant. Empty input selects Extended.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return Extended, nil
	case Basic:
		return Basic, nil
	case Extended:
		return Extended, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownVariant, s)
}

// Example is a complete script shown to the model as a reference answer.
type Example struct {
	Name        string   `yaml:"name" json:"name"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	File        string   `yaml:"file" json:"-"`
	Tags        []string `yaml:"tags" json:"tags,omitempty"`
	Code        string   `yaml:"-" json:"code"`
}

type index struct {
	Examples []Example `yaml:"examples"`
}

// Library is a loaded set of prompt material.
type Library struct {
	rules    string
	apiNotes string
	examples []Example
}

// Default returns the library compiled into the binary.
func Default() *Library {
	lib, err := load(embedded)
	if err != nil {
		panic(fmt.Sprintf("prompt: embedded library is broken: %v", err))
	}
	return lib
}

// Load reads a library from dir. Files present in dir replace the embedded ones;
// missing files fall back to the embedded defaults.
func Load(dir string) (*Library, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrPromptNotFound, dir)
	}
	return load(overlay{top: os.DirFS(dir), base: embedded})
}

func load(fsys fs.FS) (*Library, error) {
	rules, err := fs.ReadFile(fsys, rulesFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPromptNotFound, err)
	}
	notes, err := fs.ReadFile(fsys, apiNotesFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPromptNotFound, err)
	}

	raw, err := fs.ReadFile(fsys, indexFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPromptNotFound, err)
	}
	var idx index
	if err := yaml.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", indexFile, err)
	}

	for i := range idx.Examples {
		ex := &idx.Examples[i]
		if ex.Name == "" || ex.File == "" {
			return nil, fmt.Errorf("%s: example #%d needs a name and a file", indexFile, i+1)
		}
		code, err := fs.ReadFile(fsys, path.Join(examplesDir, ex.File))
		if err != nil {
			return nil, fmt.Errorf("%w: example %s: %v", domain.ErrPromptNotFound, ex.Name, err)
		}
		ex.Code = strings.TrimSpace(string(code))
	}

	return &Library{
		rules:    strings.TrimSpace(string(rules)),
		apiNotes: strings.TrimSpace(string(notes)),
		examples: idx.Examples,
	}, nil
}

// System composes the system prompt for the given variant.
func (l *Library) System(v Variant) (string, error) {
	var out string
	switch v {
	case Basic:
		out = l.rules
	case Extended:
		var b strings.Builder
		b.WriteString(l.rules)
		b.WriteString("\n\n")
		b.WriteString(l.apiNotes)
		for i, ex := range l.examples {
			fmt.Fprintf(&b, "\n\nExample %d: %s\n", i+1, ex.Title)
			if ex.Description != "" {
				b.WriteString(ex.Description)
				b.WriteString("\n")
			}
			b.WriteString("\n")
			b.WriteString(ex.Code)
		}
		out = b.String()
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownVariant, v)
	}

	if strings.Contains(out, "```") {
		return "", domain.ErrFencedPrompt
	}
	return out, nil
}

// Examples returns the example scripts in prompt order.
func (l *Library) Examples() []Example {
	out := make([]Example, len(l.examples))
	copy(out, l.examples)
	return out
}

// Example returns a single example by name.
func (l *Library) Example(name string) (Example, error) {
	for _, ex := range l.examples {
		if ex.Name == name {
			return ex, nil
		}
	}
	return Example{}, fmt.Errorf("%w: %s", domain.ErrExampleNotFound, name)
}

// overlay reads from top and falls back to base when the file does not exist there.
type overlay struct {
	top  fs.FS
	base fs.FS
}

func (o overlay) Open(name string) (fs.File, error) {
	f, err := o.top.Open(name)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return o.base.Open(name)
	}
	return nil, err
}
