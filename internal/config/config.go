// Package config loads revitgen's settings from a YAML file, the environment and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/revitgen/pkg/prompt"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. REVITGEN_LLM_PROVIDER.
const EnvPrefix = "REVITGEN"

// Backends for the query log and the script cache.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the fully resolved configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Prompt    PromptConfig    `mapstructure:"prompt"`
	Checker   CheckerConfig   `mapstructure:"checker"`
	Server    ServerConfig    `mapstructure:"server"`
	QueryLog  QueryLogConfig  `mapstructure:"querylog"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Scan      ScanConfig      `mapstructure:"scan"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type LLMConfig struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retry     RetryConfig   `mapstructure:"retry"`
}

type RetryConfig struct {
	Attempts        int           `mapstructure:"attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
}

type PromptConfig struct {
	Variant string `mapstructure:"variant"`
	// Dir overrides the embedded prompt files. It is re-read on every request.
	Dir string `mapstructure:"dir"`
}

type CheckerConfig struct {
	// IPyPath is the IronPython executable. Empty disables syntax checking.
	IPyPath string        `mapstructure:"ipy_path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type QueryLogConfig struct {
	Backend    string `mapstructure:"backend"`
	Path       string `mapstructure:"path"`
	MaxEntries int64  `mapstructure:"max_entries"`
	// Redact masks e-mail addresses and API keys (or RedactPatterns) before writing.
	Redact         bool     `mapstructure:"redact"`
	RedactPatterns []string `mapstructure:"redact_patterns"`
	// EncryptionKey is a base64 AES-256 key sealing queries and code at rest.
	// FallbackKeys still decrypt entries written under previous keys.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ScanConfig struct {
	BaseDir    string `mapstructure:"base_dir"`
	FromYear   int    `mapstructure:"from_year"`
	ToYear     int    `mapstructure:"to_year"`
	ReportFile string `mapstructure:"report_file"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.max_tokens", 3000)
	v.SetDefault("llm.timeout", 2*time.Minute)
	v.SetDefault("llm.retry.attempts", 3)
	v.SetDefault("llm.retry.initial_interval", time.Second)
	v.SetDefault("llm.retry.max_interval", 10*time.Second)

	v.SetDefault("prompt.variant", string(prompt.Extended))
	v.SetDefault("prompt.dir", "")

	v.SetDefault("checker.ipy_path", "")
	v.SetDefault("checker.timeout", 30*time.Second)

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 5000)

	v.SetDefault("querylog.backend", BackendFile)
	v.SetDefault("querylog.path", filepath.Join("logs", "ai.json"))
	v.SetDefault("querylog.max_entries", 0)
	v.SetDefault("querylog.redact", false)
	v.SetDefault("querylog.redact_patterns", []string{})
	v.SetDefault("querylog.encryption_key", "")
	v.SetDefault("querylog.fallback_keys", []string{})

	v.SetDefault("cache.backend", BackendNone)
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "revitgen:")

	v.SetDefault("telemetry.enabled", false)

	v.SetDefault("scan.base_dir", "")
	v.SetDefault("scan.from_year", 2022)
	v.SetDefault("scan.to_year", 2025)
	v.SetDefault("scan.report_file", "revit_scan_report.txt")
}

// legacyEnv maps keys to the un-prefixed variables deployments already export.
var legacyEnv = map[string]string{
	"checker.ipy_path": "IPY_PATH",
	"redis.addr":       "REDIS_ADDR",
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"provider":   "llm.provider",
	"model":      "llm.model",
	"max-tokens": "llm.max_tokens",
	"variant":    "prompt.variant",
	"prompt-dir": "prompt.dir",
	"ipy":        "checker.ipy_path",
	"host":       "server.host",
	"port":       "server.port",
	"telemetry":  "telemetry.enabled",
	"base-dir":   "scan.base_dir",
	"from":       "scan.from_year",
	"to":         "scan.to_year",
	"report":     "scan.report_file",
}

// Load resolves the configuration. With an empty path, revitgen.yaml is looked up
// in the working directory and in $HOME/.config/revitgen; a missing file is not an
// error. flags may be nil; only flags that exist in the set and were changed apply.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		v.SetConfigName("revitgen")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "revitgen"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return errors.New("llm.provider must not be empty")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if _, err := prompt.ParseVariant(c.Prompt.Variant); err != nil {
		return fmt.Errorf("prompt.variant: %w", err)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if err := oneOf("querylog.backend", c.QueryLog.Backend, BackendNone, BackendMemory, BackendFile, BackendRedis); err != nil {
		return err
	}
	if err := oneOf("cache.backend", c.Cache.Backend, BackendNone, BackendMemory, BackendRedis); err != nil {
		return err
	}
	if c.Scan.FromYear > c.Scan.ToYear {
		return fmt.Errorf("scan.from_year (%d) is after scan.to_year (%d)", c.Scan.FromYear, c.Scan.ToYear)
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s: %q is invalid (valid values: %s)", key, value, strings.Join(allowed, ", "))
}
