// Package cli implements the chemsem command tree.  Commands read the
// upstream contract (notation graphs, pattern trees, coordinates) from YAML or
// JSON documents and print the resulting graphs as text or JSON.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/JibranRasheed/NCDK-sub001/internal/application/perception"
	"github.com/JibranRasheed/NCDK-sub001/internal/config"
	"github.com/JibranRasheed/NCDK-sub001/internal/infrastructure/monitoring/logging"
	"github.com/JibranRasheed/NCDK-sub001/internal/infrastructure/monitoring/prometheus"
	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Metrics      bool
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Service      perception.Service
	Collector    prometheus.MetricsCollector // nil when metrics are off
	OutputFormat string
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "chemsem",
		Short: "chemsem - stereo-aware molecular graph semantics",
		Long: "chemsem turns tokenizer output into molecular graphs with stereo elements,\n" +
			"compiles substructure patterns, splits graphs into fragments and recognises\n" +
			"stereocentres drawn as Haworth or chair projections.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPostRun(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./chemsem.yaml, then ~/.chemsem/config.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")
	pf.BoolVar(&opts.Metrics, "metrics", false, "dump Prometheus metrics to stderr after the command")

	cmd.AddCommand(
		NewAdaptCmd(),
		NewPatternCmd(),
		NewPartitionCmd(),
		NewProjectCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun initializes config, logger, metrics and the service, then
// stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch opts.OutputFormat {
	case "text", "json":
	default:
		return errors.InvalidParam(fmt.Sprintf("output format %q is not one of text, json", opts.OutputFormat))
	}

	cfg, path, err := initConfig(opts)
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg, opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "logger initialization failed")
	}

	var collector prometheus.MetricsCollector
	metrics := prometheus.NewNoopPerceptionMetrics()
	if cfg.Metrics.Enabled || opts.Metrics {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableGoMetrics:      cfg.Metrics.Runtime,
			EnableProcessMetrics: cfg.Metrics.Runtime,
			ConstLabels:          cfg.Metrics.Labels,
		}, logger)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "metrics initialization failed")
		}
		metrics = prometheus.NewPerceptionMetrics(collector)
	}

	svc := perception.NewService(cfg, logger, metrics)
	if path != "" {
		watchConfig(path, svc, logger)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Service:      svc,
		Collector:    collector,
		OutputFormat: opts.OutputFormat,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// persistentPostRun writes the metrics exposition, when enabled, and flushes
// the logger.
func persistentPostRun(cmd *cobra.Command) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil
	}
	defer func() { _ = cliCtx.Logger.Sync() }()

	if cliCtx.Collector == nil {
		return nil
	}
	if err := cliCtx.Collector.WriteText(cmd.ErrOrStderr()); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "write metrics")
	}
	return nil
}

// initConfig loads configuration with priority: flags > env > file > defaults.
// It returns the path of the file it read, empty when none was found.
func initConfig(opts *RootOptions) (*config.Config, string, error) {
	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		return cfg, opts.ConfigPath, err
	}

	searchPaths := []string{"./chemsem.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".chemsem", "config.yaml"))
	}
	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			cfg, err := config.Load(p)
			return cfg, p, err
		}
	}

	cfg, err := config.LoadFromEnv()
	return cfg, "", err
}

// initLogger builds the logger from the log section; --log-level wins over it.
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	logCfg := cfg.Log
	if opts.LogLevel != "" {
		switch strings.ToLower(opts.LogLevel) {
		case "debug", "info", "warn", "error":
		default:
			return nil, fmt.Errorf("log level %q is not one of debug, info, warn, error", opts.LogLevel)
		}
		logCfg.Level = opts.LogLevel
	}
	return logging.NewLogger(logCfg)
}

// watchConfig re-applies perception settings and the log level when the
// config file changes during a long batch.
func watchConfig(path string, svc perception.Service, logger logging.Logger) {
	err := config.Watch(path, func(cfg *config.Config, e fsnotify.Event) {
		svc.Reconfigure(cfg)
		if ls, ok := logger.(logging.LevelSetter); ok {
			ls.SetLevel(cfg.Log.Level)
		}
		logger.Info("configuration reloaded", logging.String("file", e.Name), logging.String("op", e.Op.String()))
	})
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}

	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}

	return cliCtx, nil
}

// Execute runs the command tree with os.Args and returns the process exit
// status.
func Execute() int {
	rootCmd := NewRootCommand()
	err := rootCmd.ExecuteContext(context.Background())
	PrintError(rootCmd, err)
	return ExitStatus(err)
}

// ExitStatus maps an error to a process exit status: 0 for nil, the code's
// status for an AppError, 1 otherwise.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	return errors.ExitStatusForCode(errors.GetCode(err))
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd.OutOrStdout(), data)
	}

	if cliCtx.OutputFormat == "json" {
		return printJSON(cmd.OutOrStdout(), data)
	}
	return printText(cmd.OutOrStdout(), data)
}

// printJSON outputs data as indented JSON.
func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printText outputs data as its String form.
func printText(w io.Writer, data interface{}) error {
	var err error
	switch v := data.(type) {
	case string:
		_, err = fmt.Fprintln(w, v)
	case fmt.Stringer:
		_, err = fmt.Fprint(w, v.String())
	default:
		_, err = fmt.Fprintf(w, "%+v\n", v)
	}
	return err
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", errors.Describe(err))
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells func(i int) string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(padRight(cells(i), colWidths[i]))
		}
		sb.WriteString("\n")
	}

	writeRow(func(i int) string { return headers[i] })
	writeRow(func(i int) string { return strings.Repeat("-", colWidths[i]) })
	for _, row := range rows {
		writeRow(func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		})
	}
	return sb.String()
}

// padRight pads s with spaces to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
