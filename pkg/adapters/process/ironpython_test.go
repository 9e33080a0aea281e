package process_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/revitgen/pkg/adapters/process"
	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInterpreter writes a shell script standing in for ipy.
func fakeInterpreter(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter needs /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "ipy")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestChecker_Valid(t *testing.T) {
	exe := fakeInterpreter(t, `exit 0`)
	res, err := process.NewChecker(exe).Check(context.Background(), "print('ok')")
	require.NoError(t, err)
	assert.True(t, res.Checked)
	assert.True(t, res.Valid)
}

func TestChecker_SyntaxError(t *testing.T) {
	exe := fakeInterpreter(t, `echo '  File "script_to_compile.py", line 1' >&2
echo 'SyntaxError: unexpected token' >&2
exit 1`)
	res, err := process.NewChecker(exe).Check(context.Background(), "print(f'{x}')")
	require.NoError(t, err)
	assert.True(t, res.Checked)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "SyntaxError: unexpected token")
}

func TestChecker_MarkerWithZeroExit(t *testing.T) {
	exe := fakeInterpreter(t, `echo 'Traceback (most recent call last):' >&2
exit 0`)
	res, err := process.NewChecker(exe).Check(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestChecker_SilentFailure(t *testing.T) {
	exe := fakeInterpreter(t, `exit 3`)
	res, err := process.NewChecker(exe).Check(context.Background(), "x = 1")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "exit code 3")
}

func TestChecker_ReceivesScriptPath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "program.txt")
	exe := fakeInterpreter(t, `printf '%s' "$2" > `+out)
	_, err := process.NewChecker(exe).Check(context.Background(), "x = 1")
	require.NoError(t, err)

	program, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(program), "compile(source_code,")
	assert.Contains(t, string(program), "script_to_compile.py")
}

func TestChecker_MissingExecutable(t *testing.T) {
	_, err := process.NewChecker(filepath.Join(t.TempDir(), "nope")).Check(context.Background(), "x = 1")
	assert.ErrorIs(t, err, domain.ErrCheckerUnavailable)

	_, err = process.NewChecker("").Check(context.Background(), "x = 1")
	assert.ErrorIs(t, err, domain.ErrCheckerUnavailable)
}

func TestChecker_Timeout(t *testing.T) {
	exe := fakeInterpreter(t, `exec sleep 5`)
	start := time.Now()
	_, err := process.NewChecker(exe, process.WithTimeout(100*time.Millisecond)).Check(context.Background(), "x = 1")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}
