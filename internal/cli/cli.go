package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/standings-scraper/internal/config"
	"github.com/pfrederiksen/standings-scraper/internal/logger"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitDegraded = 2
)

// CodeError carries a specific process exit code out of a command
type CodeError struct {
	Code int
	Err  error
}

func (e *CodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *CodeError) Unwrap() error {
	return e.Err
}

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"url":          "source_url",
	"output":       "output_file",
	"transport":    "fetch.transport",
	"fallback":     "fetch.fallback",
	"timeout":      "fetch.timeout",
	"user-agent":   "fetch.user_agent",
	"metrics-file": "metrics.textfile",
	"gcs-bucket":   "publish.gcs_bucket",
	"gcs-object":   "publish.object",
	"log-level":    "log.level",
}

// app holds state shared by the commands of one root command
type app struct {
	v          *viper.Viper
	configFile string
	format     string
	verbose    bool
}

// NewRootCmd creates the root command. Without a subcommand it performs a run.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:   "standings-scraper",
		Short: "Scrape a standings table into a JSON snapshot",
		Long: `A CLI tool that fetches a competition standings page, extracts the table
and writes it as a JSON snapshot for a static front-end.
When a scrape fails the last known standings are kept and the snapshot is
marked as degraded.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runScrape,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default: ./standings.yaml or ~/.config/standings-scraper/standings.yaml)")
	flags.String("output", config.DefaultOutput, "Snapshot file to read and write")
	flags.String("log-level", string(logger.LevelInfo), "Log level: DEBUG, INFO, WARN or ERROR")
	flags.StringVar(&a.format, "format", string(FormatText), "Output format: text or json")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable verbose output and debug logging")

	addRunFlags(cmd)

	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newShowCmd(a))

	return cmd
}

// load reads the config file, binds the flags of cmd and validates the result
func (a *app) load(cmd *cobra.Command) (config.Config, error) {
	if _, err := config.ReadFile(a.v, a.configFile); err != nil {
		return config.Config{}, err
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return config.Config{}, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	if a.verbose && !cmd.Flags().Changed("log-level") {
		a.v.Set("log.level", string(logger.LevelDebug))
	}

	return config.Load(a.v)
}

// outputFormat validates the --format flag
func (a *app) outputFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(a.format))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", a.format)
	}
	return format, nil
}

// newLogger builds the logger described by cfg writing to w
func newLogger(cfg config.LogConfig, w io.Writer) *logger.Logger {
	// Validate already accepted the level
	level, _ := logger.ParseLevel(cfg.Level)
	if cfg.Development {
		return logger.NewDevelopment(level, w)
	}
	return logger.New(level, w)
}

// exitCode reports err on w and returns the matching process exit code
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *CodeError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(w, "Error: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return ExitError
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	code := exitCode(err, os.Stderr)
	_ = logger.Default().Sync()
	os.Exit(code)
}
