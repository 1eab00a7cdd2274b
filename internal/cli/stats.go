package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show node and relationship counts",
		Long: `Show the number of nodes per label and relationships per type.

Examples:
  cypherlite stats --db graph.db
  cypherlite stats --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runStats(ctx, rootOpts, cmd)
		},
	}
}

func runStats(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		out.Error(CodeDatabase, err.Error(), nil)
		return err
	}
	defer st.Close()

	sum, err := st.Summarize(ctx)
	if err != nil {
		out.Error(CodeDatabase, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to read database", err)
	}

	if out.Format == "json" {
		return out.Success(sum)
	}

	w := out.Writer
	fmt.Fprintf(w, "Nodes: %d\n", sum.Nodes)
	for _, c := range sum.Labels {
		name := ":" + c.Name
		if c.Name == "" {
			name = "(no label)"
		}
		fmt.Fprintf(w, "  %-20s %d\n", name, c.Count)
	}
	fmt.Fprintf(w, "Relationships: %d\n", sum.Edges)
	for _, c := range sum.Types {
		fmt.Fprintf(w, "  %-20s %d\n", ":"+c.Name, c.Count)
	}
	return nil
}
