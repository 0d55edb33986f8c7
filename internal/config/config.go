// Package config provides configuration types and defaults for cardkit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/cardkit/internal/component"
	"github.com/zjrosen/cardkit/internal/log"
	"github.com/zjrosen/cardkit/internal/tracing"
)

// Output formats accepted by the output key.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds all configuration options for cardkit.
type Config struct {
	Debug         bool           `mapstructure:"debug"`
	LogPath       string         `mapstructure:"log_path"`  // "-" logs to stderr
	LogLevel      string         `mapstructure:"log_level"` // debug (default), info, warn, error
	Defaults      DefaultsConfig `mapstructure:"defaults"`
	Scopes        []string       `mapstructure:"scopes"`          // extra scopes for fixtures that declare none
	Output        string         `mapstructure:"output"`          // "json" (default) or "yaml"
	QueryCacheTTL time.Duration  `mapstructure:"query_cache_ttl"` // lifetime of parsed queries in the shell
	Tracing       TracingConfig  `mapstructure:"tracing"`
}

// LogStderr is the log_path value that sends debug logs to standard error.
const LogStderr = "-"

// TracingConfig holds OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are recorded.
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the backend: "none", "file", "stdout" or "otlp".
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the JSONL output of the "file" exporter.
	// Default: ~/.config/cardkit/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector address of the "otlp" exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate is the fraction of traces kept (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Provider converts the section into tracing settings, filling in the default
// trace file.
func (t TracingConfig) Provider() tracing.Config {
	path := t.FilePath
	if path == "" {
		path = DefaultTracePath()
	}
	return tracing.Config{
		Enabled:      t.Enabled,
		Exporter:     t.Exporter,
		FilePath:     path,
		OTLPEndpoint: t.OTLPEndpoint,
		SampleRate:   t.SampleRate,
		ServiceName:  "cardkit",
	}
}

// DefaultsConfig holds the component options applied when a fixture does not
// set them explicitly.
type DefaultsConfig struct {
	Errors          bool `mapstructure:"errors"`
	UniqueKey       bool `mapstructure:"unique_key"`
	ReplaceIndex    bool `mapstructure:"replace_index"`
	InheritOwner    bool `mapstructure:"inherit_owner"`
	VirtualContext  bool `mapstructure:"virtual_context"`
	LibraryDeletion bool `mapstructure:"library_deletion"`
}

// ComponentOptions converts the defaults into engine options.
func (d DefaultsConfig) ComponentOptions() component.Options {
	return component.Options{
		Errors:          d.Errors,
		UniqueKey:       d.UniqueKey,
		ReplaceIndex:    d.ReplaceIndex,
		InheritOwner:    d.InheritOwner,
		VirtualContext:  d.VirtualContext,
		LibraryDeletion: d.LibraryDeletion,
	}
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	return Config{
		LogLevel:      "debug",
		Output:        OutputJSON,
		QueryCacheTTL: 5 * time.Minute,
		Tracing: TracingConfig{
			Enabled:      tc.Enabled,
			Exporter:     tc.Exporter,
			OTLPEndpoint: tc.OTLPEndpoint,
			SampleRate:   tc.SampleRate,
		},
	}
}

// DefaultLogPath returns ~/.config/cardkit/debug.log, or "debug.log" when the
// home directory is unavailable.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "debug.log"
	}
	return filepath.Join(home, ".config", "cardkit", "debug.log")
}

// DefaultTracePath returns ~/.config/cardkit/traces/traces.jsonl, or a
// relative traces.jsonl when the home directory is unavailable.
func DefaultTracePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "traces.jsonl"
	}
	return filepath.Join(home, ".config", "cardkit", "traces", "traces.jsonl")
}

// Validate checks the configuration for errors. Empty values use defaults.
func Validate(cfg Config) error {
	if err := ValidateScopes(cfg.Scopes); err != nil {
		return err
	}
	switch cfg.Output {
	case "", OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output must be %q or %q, got %q", OutputJSON, OutputYAML, cfg.Output)
	}
	if cfg.QueryCacheTTL < 0 {
		return fmt.Errorf("query_cache_ttl must not be negative, got %s", cfg.QueryCacheTTL)
	}
	if cfg.LogLevel != "" {
		if _, ok := log.LookupLevel(cfg.LogLevel); !ok {
			return fmt.Errorf("log_level must be debug, info, warn or error, got %q", cfg.LogLevel)
		}
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateTracing checks the tracing section. Path requirements only apply
// when tracing is enabled.
func ValidateTracing(t TracingConfig) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	switch t.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}
	if t.Enabled && t.Exporter == tracing.ExporterOTLP && t.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// ValidateScopes rejects empty, repeated and reserved scope names.
func ValidateScopes(scopes []string) error {
	seen := make(map[string]bool, len(scopes))
	for i, s := range scopes {
		switch {
		case s == "":
			return fmt.Errorf("scope %d: name is required", i)
		case s == component.ScopeDefault || s == component.ScopeVirtual:
			return fmt.Errorf("scope %d: %q is reserved", i, s)
		case seen[s]:
			return fmt.Errorf("scope %d: %q is listed twice", i, s)
		}
		seen[s] = true
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# cardkit configuration

# Write debug logs (same as --debug or CARDKIT_DEBUG=1)
debug: false
# log_path: ~/.config/cardkit/debug.log   # "-" writes to stderr
log_level: debug                          # debug, info, warn or error

# Options applied to managers and bunches a fixture does not configure
defaults:
  errors: false            # record errors at the outermost ancestor instead of returning them
  unique_key: false        # reject a second element with the same key in one bunch
  replace_index: false     # adding at an occupied index replaces the element there
  inherit_owner: false     # added elements take the bunch owner
  virtual_context: false   # bunches reference elements without taking custody
  library_deletion: false  # evict library entries no registered bunch holds

# Extra scopes for fixtures that declare none ("default" and "virtual" always exist)
scopes: []

# Output format for inspect and find: json (default) or yaml
output: json

# How long the shell keeps parsed queries
query_cache_ttl: 5m

# OpenTelemetry spans around fixture loading, queries and shell commands
tracing:
  enabled: false
  exporter: file               # none, file, stdout or otlp
  # file_path: ~/.config/cardkit/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
