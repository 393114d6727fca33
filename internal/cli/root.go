// Package cli contains the photogrid commands
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"photogrid/internal/config"
	"photogrid/internal/output"
)

var version = "dev"

// SetVersion sets the version string reported by the version command
func SetVersion(v string) {
	version = v
}

// app holds the global flags and the configuration resolved from them
type app struct {
	configPath  string
	apiKey      string
	endpoint    string
	debounce    time.Duration
	logFile     string
	logLevel    string
	metricsAddr string
	noColor     bool

	cfg     *config.Config
	printer *output.Printer
}

// Execute runs the root command with the process arguments
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree. Each call returns independent state.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "photogrid [query]",
		Short: "Search Pixabay photos as you type",
		Long: `photogrid is a terminal photo browser for the Pixabay image API.

Results follow the search field: a search is sent once typing pauses,
and only the newest search is ever shown.

Example usage:
  photogrid                      # Open the search screen
  photogrid red car              # Open it with a query already typed
  photogrid search paris         # Print one page of results and exit
  photogrid config init          # Write the default config file`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: a.runTUI,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&a.apiKey, "api-key", "", "Pixabay API key (default $PIXABAY_API_KEY)")
	flags.StringVar(&a.endpoint, "endpoint", "", "image search endpoint")
	flags.DurationVar(&a.debounce, "debounce", 0, "quiet time before a search is sent")
	flags.StringVar(&a.logFile, "log-file", "", "log file, empty to disable logging")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(a.newSearchCommand())
	root.AddCommand(a.newConfigCommand())
	root.AddCommand(newVersionCommand())

	return root
}

// init loads .env and the config file, then applies the flags that were set
func (a *app) init(cmd *cobra.Command) error {
	a.printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), !a.noColor && output.UseColors())

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg, err := config.NewConfigService(a.configPath).Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.applyFlags(cmd, cfg)
	a.cfg = cfg
	return nil
}

// applyFlags overrides configuration values with explicitly set flags
func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("api-key") {
		cfg.API.Key = a.apiKey
	}
	if f.Changed("endpoint") {
		cfg.API.Endpoint = a.endpoint
	}
	if f.Changed("debounce") {
		cfg.Search.Debounce = config.Duration(a.debounce)
	}
	if f.Changed("log-file") {
		cfg.Log.File = a.logFile
	}
	if f.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if f.Changed("metrics-addr") {
		cfg.Metrics.Addr = a.metricsAddr
	}
}

// configFile returns the path of the config file in use
func (a *app) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.DefaultPath()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), "photogrid "+version+"\n")
			return err
		},
	}
}
