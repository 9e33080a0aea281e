package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/revitgen/internal/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command in a scratch directory with a static provider and
// an in-memory query log.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runEnv(t, nil, stdin, args...)
}

// runEnv is run with env applied over the defaults.
func runEnv(t *testing.T, env map[string]string, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("REVITGEN_LLM_PROVIDER", "static")
	t.Setenv("REVITGEN_QUERYLOG_BACKEND", "memory")
	for k, v := range env {
		t.Setenv(k, v)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "revitgen version dev\n", out)
}

func TestGenerate(t *testing.T) {
	out, err := run(t, "", "generate", "count", "elements")
	require.NoError(t, err)
	assert.Contains(t, out, "FilteredElementCollector")
	assert.NotContains(t, out, "```")
}

func TestCheck(t *testing.T) {
	bad := "# -*- coding: utf-8 -*-\nfrom pyrevit import revit\nprint(f\"{revit.doc.Title}\")\n"
	out, err := run(t, bad, "check")
	assert.Error(t, err)
	assert.Contains(t, out, "[f-string]")

	good := "# -*- coding: utf-8 -*-\nfrom pyrevit import revit, forms\ntry:\n    forms.alert(revit.doc.Title)\nexcept Exception as e:\n    forms.alert(str(e))\n"
	out, err = run(t, good, "check", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "# ok")
}

func TestCheck_NoAPIKey(t *testing.T) {
	env := map[string]string{
		"REVITGEN_LLM_PROVIDER": "openai",
		"REVITGEN_LLM_API_KEY":  "",
		"OPENAI_API_KEY":        "",
	}
	good := "# -*- coding: utf-8 -*-\nfrom pyrevit import revit, forms\ntry:\n    forms.alert(revit.doc.Title)\nexcept Exception as e:\n    forms.alert(str(e))\n"
	out, err := runEnv(t, env, good, "check", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "# ok")

	out, err = runEnv(t, env, "", "prompt", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "pyRevit")

	_, err = runEnv(t, env, "", "generate", "count", "walls")
	assert.ErrorContains(t, err, "API key required")
}

func TestPromptRaw(t *testing.T) {
	out, err := run(t, "", "prompt", "--raw", "--variant", "basic")
	require.NoError(t, err)
	assert.Contains(t, out, "pyRevit")
}

func TestScan(t *testing.T) {
	base := t.TempDir()
	models := filepath.Join(base, "2024", "Tower", scan.ProjectSubpath)
	require.NoError(t, os.MkdirAll(models, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(models, "tower.rvt"), nil, 0644))
	report := filepath.Join(t.TempDir(), "report.txt")

	out, err := run(t, "", "scan", "--base-dir", base, "--from", "2024", "--to", "2024", "--report", report)
	require.NoError(t, err)
	assert.Contains(t, out, "2024 | Tower")
	assert.Contains(t, out, "Report saved to "+report)

	saved, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "Total .rvt files found (01_REVIT only): 1\n")
	assert.NotContains(t, string(saved), "Report saved to")
}
