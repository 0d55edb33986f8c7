package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/cardkit/internal/config"
	"github.com/zjrosen/cardkit/internal/fixture"
	"github.com/zjrosen/cardkit/internal/log"
	"github.com/zjrosen/cardkit/internal/presentation"
	"github.com/zjrosen/cardkit/internal/tracing"
)

// defaultConfigPath is where config:init writes and where the project config is looked up.
const defaultConfigPath = ".cardkit/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	debugFlag  bool
	cfg        config.Config
	logCleanup func()
	traces     = tracing.Noop()
)

var rootCmd = &cobra.Command{
	Use:   "cardkit",
	Short: "Inspect and query tables of game components",
	Long: `cardkit loads YAML fixtures of players, bunches and elements into an
in-memory component registry and lets you inspect and query them.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return initConfig(cmd) },
	PersistentPostRun: func(cmd *cobra.Command, args []string) { shutdown() },
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .cardkit/config.yaml, then ~/.config/cardkit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also CARDKIT_DEBUG=1)")
}

// initConfig loads configuration into cfg, starts logging when debug is on and
// starts tracing when enabled.
func initConfig(cmd *cobra.Command) error {
	viper.Reset()

	defaults := config.Defaults()
	viper.SetDefault("debug", defaults.Debug)
	viper.SetDefault("log_path", defaults.LogPath)
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("defaults.errors", defaults.Defaults.Errors)
	viper.SetDefault("defaults.unique_key", defaults.Defaults.UniqueKey)
	viper.SetDefault("defaults.replace_index", defaults.Defaults.ReplaceIndex)
	viper.SetDefault("defaults.inherit_owner", defaults.Defaults.InheritOwner)
	viper.SetDefault("defaults.virtual_context", defaults.Defaults.VirtualContext)
	viper.SetDefault("defaults.library_deletion", defaults.Defaults.LibraryDeletion)
	viper.SetDefault("scopes", defaults.Scopes)
	viper.SetDefault("output", defaults.Output)
	viper.SetDefault("query_cache_ttl", defaults.QueryCacheTTL)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	viper.SetEnvPrefix("cardkit")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .cardkit/config.yaml (current directory)
		// 2. ~/.config/cardkit/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "cardkit"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
		// No config anywhere: run on defaults.
	}

	cfg = config.Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if debugFlag {
		cfg.Debug = true
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Debug && logCleanup == nil {
		if err := initLog(cmd); err != nil {
			return err
		}
	}

	if !traces.Enabled() {
		p, err := tracing.NewProvider(cfg.Tracing.Provider())
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
		traces = p
	}
	return nil
}

func initLog(cmd *cobra.Command) error {
	logPath := cfg.LogPath
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	if logPath == config.LogStderr {
		log.InitWriter(cmd.ErrOrStderr())
		logCleanup = func() { log.SetEnabled(false) }
	} else {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing log: %w", err)
		}
		logCleanup = cleanup
	}
	log.SetMinLevel(log.ParseLevel(cfg.LogLevel))
	log.Info(log.CatCLI, "cardkit starting", "version", version, "config", viper.ConfigFileUsed(), "logPath", logPath)
	return nil
}

// shutdown flushes spans and closes the log.
func shutdown() {
	if traces.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := traces.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatCLI, "Failed to flush traces", err)
		}
		cancel()
		traces = tracing.Noop()
	}
	closeLog()
}

func closeLog() {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
}

// tracer returns the tracer of the running command.
func tracer() trace.Tracer {
	return traces.Tracer()
}

// loadTable builds the fixture at path with the configured defaults.
func loadTable(ctx context.Context, path string) (*fixture.Table, error) {
	loader := fixture.NewLoader(cfg.Defaults.ComponentOptions(), cfg.Scopes).WithTracer(tracer())
	table, err := loader.LoadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return table, nil
}

// newFormatter prefers an explicit --format over the configured output.
func newFormatter(cmd *cobra.Command, format string) (*presentation.Formatter, error) {
	if format == "" {
		format = cfg.Output
	}
	return presentation.NewFormatter(cmd.OutOrStdout(), format)
}

// Execute runs the root command
func Execute() error {
	defer shutdown()
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
