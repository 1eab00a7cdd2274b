package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cypherlite/internal/engine"
	"github.com/roach88/cypherlite/internal/ir"
	"github.com/roach88/cypherlite/internal/queryir"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Params     []string // key=value pairs
	ParamsFile string   // YAML or JSON mapping
	Explain    bool     // print the translated statements instead of running them
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <cypher>",
		Short: "Run a Cypher query",
		Long: `Run one Cypher query in a single transaction.

Either every change of the query is committed or none is.

Exit codes:
  0 - Query succeeded
  1 - Query failed (parse, translation or execution error)
  2 - Command error (bad flags, database cannot be opened)

Examples:
  cypherlite query "CREATE (n:User {name: 'Alice', age: 30})"
  cypherlite query "MATCH (n:User) WHERE n.age > \$min RETURN n" --param min=26
  cypherlite query "MATCH (n:User {name: \$name}) RETURN n" --params params.yaml --format json
  cypherlite query "MATCH (a)-[r]->(b) RETURN a, r, b" --explain`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "query parameter key=value (repeatable)")
	cmd.Flags().StringVar(&opts.ParamsFile, "params", "", "YAML or JSON file of query parameters")
	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "print the translated SQL statements without executing")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, text string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	params, err := parseParams(opts.ParamsFile, opts.Params)
	if err != nil {
		out.Error(CodeArguments, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid parameters", err)
	}

	exec := opts.executor()
	if opts.Explain {
		return explainQuery(exec, text, params, out)
	}

	st, err := opts.openStore()
	if err != nil {
		out.Error(CodeDatabase, err.Error(), nil)
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.logger().Error("error closing database", "error", closeErr)
		}
	}()
	out.VerboseLog("database: %s", st.Path())

	res, err := exec.Execute(ctx, st, text, params)
	if err != nil {
		failure := engine.Describe(err)
		if outErr := out.Failure(failure); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "query failed", err)
	}

	out.VerboseLog("trace id: %s", res.TraceID)
	if out.Format == "json" {
		return out.SuccessWithTrace(res, res.TraceID)
	}
	return writeResultText(out.Writer, res)
}

// writeResultText prints one canonical JSON line per row and a summary.
func writeResultText(w io.Writer, res *engine.Result) error {
	for _, row := range res.Rows {
		line, err := ir.MarshalCanonical(row)
		if err != nil {
			return fmt.Errorf("render row: %w", err)
		}
		fmt.Fprintln(w, string(line))
	}

	summary := fmt.Sprintf("%d row(s)", res.Count)
	if len(res.Columns) == 0 {
		summary = fmt.Sprintf("%d change(s)", res.Count)
	}
	if stats := formatStats(res.Stats); stats != "" {
		summary += ", " + stats
	}
	fmt.Fprintf(w, "%s (%.3f ms)\n", summary, res.TimeMS)
	return nil
}

// formatStats lists the non-zero counters.
func formatStats(s queryir.Stats) string {
	var parts []string
	add := func(name string, n int) {
		if n != 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", name, n))
		}
	}
	add("nodes created", s.NodesCreated)
	add("nodes deleted", s.NodesDeleted)
	add("relationships created", s.EdgesCreated)
	add("relationships deleted", s.EdgesDeleted)
	add("properties set", s.PropertiesSet)
	return strings.Join(parts, ", ")
}

// PlanStatement is the printable form of one translated statement.
type PlanStatement struct {
	Mode        string   `json:"mode"`
	SQL         string   `json:"sql,omitempty"`
	Args        []string `json:"args"`
	Binds       []string `json:"binds,omitempty"`
	Optional    bool     `json:"optional,omitempty"`
	SkipIfBound string   `json:"skip_if_bound,omitempty"`
}

// Plan is the output of query --explain.
type Plan struct {
	Statements  []PlanStatement `json:"statements"`
	Columns     []string        `json:"columns,omitempty"`
	Fingerprint string          `json:"fingerprint"`
}

func explainQuery(exec *engine.Executor, text string, params map[string]any, out *OutputFormatter) error {
	tr, err := exec.Translate(text, params)
	if err != nil {
		if outErr := out.Failure(engine.Describe(err)); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "query failed", err)
	}

	plan, err := buildPlan(tr)
	if err != nil {
		return WrapExitError(ExitFailure, "explain failed", err)
	}

	if out.Format == "json" {
		return out.Success(plan)
	}
	for i, st := range plan.Statements {
		fmt.Fprintf(out.Writer, "%d. %s", i, st.Mode)
		if st.Optional {
			fmt.Fprint(out.Writer, " (optional)")
		}
		if st.SQL != "" {
			fmt.Fprintf(out.Writer, ": %s", st.SQL)
		}
		fmt.Fprintln(out.Writer)
		if len(st.Args) > 0 {
			fmt.Fprintf(out.Writer, "   args: %s\n", strings.Join(st.Args, ", "))
		}
		if len(st.Binds) > 0 {
			fmt.Fprintf(out.Writer, "   binds: %s\n", strings.Join(st.Binds, ", "))
		}
		if st.SkipIfBound != "" {
			fmt.Fprintf(out.Writer, "   skipped when %s is bound\n", st.SkipIfBound)
		}
	}
	fmt.Fprintf(out.Writer, "fingerprint: %s\n", plan.Fingerprint)
	return nil
}

func buildPlan(tr *queryir.TranslationResult) (*Plan, error) {
	fp, err := tr.Fingerprint()
	if err != nil {
		return nil, err
	}
	plan := &Plan{
		Statements:  make([]PlanStatement, len(tr.Statements)),
		Columns:     tr.Columns,
		Fingerprint: fp,
	}
	for i, st := range tr.Statements {
		args := make([]string, len(st.Args))
		for j, a := range st.Args {
			args[j] = describeArg(a)
		}
		plan.Statements[i] = PlanStatement{
			Mode:        st.Mode.String(),
			SQL:         st.SQL,
			Args:        args,
			Binds:       st.Binds,
			Optional:    st.Optional,
			SkipIfBound: st.SkipIfBound,
		}
	}
	return plan, nil
}

// describeArg renders a bound variable as id(name) and constants as JSON.
func describeArg(a queryir.Arg) string {
	if a.IsVar() {
		return fmt.Sprintf("id(%s)", a.Var)
	}
	b, err := ir.MarshalCanonical(a.Value)
	if err != nil {
		return fmt.Sprintf("%v", a.Value)
	}
	return string(b)
}
