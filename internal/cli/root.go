package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/cypherlite/internal/config"
	"github.com/roach88/cypherlite/internal/engine"
	"github.com/roach88/cypherlite/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigPath string

	// Config is the merged configuration: defaults, then the --config
	// file, then flags. Set by the root command before any subcommand runs.
	Config *config.Config

	// Logger is the process logger. Nil means slog.Default().
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the cypherlite CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cypherlite",
		Short: "cypherlite - Cypher queries over an embedded SQLite graph",
		Long: `cypherlite runs a subset of the Cypher graph query language against a
property graph stored in a single SQLite file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if err := opts.resolve(); err != nil {
				return err
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Config, opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "database file (default from config, else cypherlite.db)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "CUE configuration file")

	// Add subcommands
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewMCPCommand(opts))

	return cmd
}

// resolve merges defaults, the config file and the --db flag.
func (o *RootOptions) resolve() error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid configuration", err)
		}
		cfg = loaded
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	o.Config = &cfg
	return nil
}

// settings returns the merged configuration, resolving it on first use
// when a subcommand runs without the root command (as in tests).
func (o *RootOptions) settings() config.Config {
	if o.Config == nil {
		if err := o.resolve(); err != nil {
			return config.Default()
		}
	}
	return *o.Config
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// openStore opens the configured database.
func (o *RootOptions) openStore() (*store.Store, error) {
	cfg := o.settings()
	o.logger().Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database, cfg.StoreOptions()...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func (o *RootOptions) executor() *engine.Executor {
	return engine.New(engine.WithLogger(o.logger()))
}

// newLogger builds the process logger on w (stderr).
func newLogger(w io.Writer, cfg *config.Config, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
