package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/healthscope/internal/config"
	"github.com/KaramelBytes/healthscope/internal/logger"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "healthscope",
	Short: "Global Health Explorer: describe, filter and plot a health indicators dataset",
	Long: `healthscope loads a tabular dataset (CSV, TSV or XLSX), describes its columns,
picks the first numeric indicator, filters rows above a threshold and plots the
result over time by country. Pages are printed as markdown or served as a small
HTTP dashboard.`,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.healthscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c
}

// currentConfig returns a copy of the loaded configuration that a command may
// override with its own flags.
func currentConfig() cfgpkg.Global {
	if cfg == nil {
		return *cfgpkg.Defaults()
	}
	return *cfg
}

// newLogger builds the stderr logger. Precedence: --debug > --log-level/--log-format
// > LOG_LEVEL/LOG_FORMAT > config.
func newLogger(cmd *cobra.Command, c cfgpkg.Global) (*slog.Logger, error) {
	lc := logger.LoadConfig()
	lc.Writer = cmd.ErrOrStderr()
	if os.Getenv("LOG_LEVEL") == "" && c.LogLevel != "" {
		if l, ok := logger.ParseLevel(c.LogLevel); ok {
			lc.Level = l
		}
	}
	if os.Getenv("LOG_FORMAT") == "" && c.LogFormat != "" {
		lc.Format = c.LogFormat
	}
	if flagLogLevel != "" {
		l, ok := logger.ParseLevel(flagLogLevel)
		if !ok {
			return nil, fmt.Errorf("invalid --log-level: %s (use debug|info|warn|error)", flagLogLevel)
		}
		lc.Level = l
	}
	switch flagLogFormat {
	case "":
	case "text", "json":
		lc.Format = flagLogFormat
	default:
		return nil, fmt.Errorf("invalid --log-format: %s (use text|json)", flagLogFormat)
	}
	if debug {
		lc.Level = slog.LevelDebug
	}
	return logger.New(lc), nil
}
