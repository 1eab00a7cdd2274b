package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/cypherlite/internal/ir"
	"github.com/roach88/cypherlite/internal/server"
)

// Version is reported to MCP clients. Set at build time with
// -ldflags "-X github.com/roach88/cypherlite/internal/cli.Version=...".
var Version = ir.EngineVersion

// NewMCPCommand creates the mcp command.
func NewMCPCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the graph as Model Context Protocol tools over stdio",
		Long: `Serve the execute-cypher and graph-summary tools over stdio.

Protocol messages use stdin and stdout; logs go to stderr.

Examples:
  cypherlite mcp --db graph.db
  cypherlite mcp --config cypherlite.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(rootOpts, cmd)
		},
	}
}

func runMCP(opts *RootOptions, cmd *cobra.Command) error {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.logger().Error("error closing database", "error", closeErr)
		}
	}()

	srv := server.New(st, opts.executor(), Version, opts.logger())
	err = srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "mcp server error", err)
	}
	opts.logger().Info("mcp server stopped")
	return nil
}
