package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so a stray revitgen.yaml cannot leak in.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 3000, cfg.LLM.MaxTokens)
	assert.Equal(t, 3, cfg.LLM.Retry.Attempts)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, ":5000", cfg.Server.Addr())
	assert.Equal(t, BackendFile, cfg.QueryLog.Backend)
	assert.Equal(t, filepath.Join("logs", "ai.json"), cfg.QueryLog.Path)
	assert.Equal(t, BackendNone, cfg.Cache.Backend)
	assert.Equal(t, "extended", cfg.Prompt.Variant)
	assert.Equal(t, 30*time.Second, cfg.Checker.Timeout)
	assert.Equal(t, 2022, cfg.Scan.FromYear)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("revitgen.yaml", []byte(`
llm:
  provider: anthropic
  model: claude-test
  retry:
    initial_interval: 250ms
cache:
  backend: memory
  ttl: 1h
server:
  port: 7000
`), 0644))
	t.Setenv("REVITGEN_SERVER_PORT", "8000")
	t.Setenv("IPY_PATH", `C:\IronPython\ipy.exe`)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("model", "", "")
	flags.Int("port", 0, "")
	require.NoError(t, flags.Parse([]string{"--model", "claude-flag"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider, "from file")
	assert.Equal(t, "claude-flag", cfg.LLM.Model, "flag beats file")
	assert.Equal(t, 8000, cfg.Server.Port, "env beats file, unchanged flag ignored")
	assert.Equal(t, 250*time.Millisecond, cfg.LLM.Retry.InitialInterval)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, `C:\IronPython\ipy.exe`, cfg.Checker.IPyPath)
}

func TestLoad_PrefixedEnvBeatsLegacy(t *testing.T) {
	isolate(t)
	t.Setenv("IPY_PATH", "/legacy/ipy")
	t.Setenv("REVITGEN_CHECKER_IPY_PATH", "/prefixed/ipy")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/prefixed/ipy", cfg.Checker.IPyPath)
}

func TestLoad_ExplicitPath(t *testing.T) {
	isolate(t)
	_, err := Load("missing.yaml", nil)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompt:\n  variant: basic\n"), 0644))
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "basic", cfg.Prompt.Variant)
}

func TestValidate(t *testing.T) {
	isolate(t)
	base, err := Load("", nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.LLM.Provider = "" }},
		{"zero tokens", func(c *Config) { c.LLM.MaxTokens = 0 }},
		{"bad variant", func(c *Config) { c.Prompt.Variant = "huge" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad querylog", func(c *Config) { c.QueryLog.Backend = "s3" }},
		{"file cache", func(c *Config) { c.Cache.Backend = BackendFile }},
		{"years reversed", func(c *Config) { c.Scan.FromYear = 2030 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_QueryLogPrivacy(t *testing.T) {
	isolate(t)
	t.Setenv("REVITGEN_QUERYLOG_REDACT", "true")
	t.Setenv("REVITGEN_QUERYLOG_ENCRYPTION_KEY", "c2VjcmV0")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.True(t, cfg.QueryLog.Redact)
	assert.Equal(t, "c2VjcmV0", cfg.QueryLog.EncryptionKey)
	assert.Empty(t, cfg.QueryLog.FallbackKeys)

	path := filepath.Join(t.TempDir(), "revitgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("querylog:\n  fallback_keys: [a, b]\n  redact_patterns: ['\\d{6}']\n"), 0644))
	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cfg.QueryLog.FallbackKeys)
	assert.Equal(t, []string{`\d{6}`}, cfg.QueryLog.RedactPatterns)
}
