package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/cypherlite/internal/engine"
	"github.com/roach88/cypherlite/internal/ir"
	"github.com/roach88/cypherlite/internal/queryir"
	"github.com/roach88/cypherlite/internal/store"
)

// checkExpect compares a step outcome with its expectation and returns
// one message per mismatch.
func checkExpect(e *Expect, sr StepResult) []string {
	if e == nil {
		return nil
	}

	if e.Error != nil {
		if sr.Failure == nil {
			return []string{fmt.Sprintf("expected %s error, query succeeded", e.Error.Kind)}
		}
		return checkFailure(e.Error, sr.Failure)
	}

	if sr.Failure != nil {
		return []string{fmt.Sprintf("unexpected %s error %s: %s", sr.Failure.Kind, sr.Failure.Code, sr.Failure.Message)}
	}

	var errs []string
	if e.Count != nil && *e.Count != sr.Count {
		errs = append(errs, fmt.Sprintf("count: expected %d, got %d", *e.Count, sr.Count))
	}
	if e.Rows != nil {
		if err := compareRows(e.Rows, sr.Rows); err != nil {
			errs = append(errs, err.Error())
		}
	}
	errs = append(errs, checkStats(e.Stats, sr.Stats)...)
	return errs
}

func checkFailure(want *ExpectedError, got *engine.Failure) []string {
	var errs []string
	if want.Kind != string(got.Kind) {
		errs = append(errs, fmt.Sprintf("error kind: expected %s, got %s (%s)", want.Kind, got.Kind, got.Message))
	}
	if want.Code != "" && want.Code != got.Code {
		errs = append(errs, fmt.Sprintf("error code: expected %s, got %s", want.Code, got.Code))
	}
	if want.Line != 0 && (got.Line == nil || *got.Line != want.Line) {
		errs = append(errs, fmt.Sprintf("error line: expected %d, got %s", want.Line, optInt(got.Line)))
	}
	if want.Column != 0 && (got.Column == nil || *got.Column != want.Column) {
		errs = append(errs, fmt.Sprintf("error column: expected %d, got %s", want.Column, optInt(got.Column)))
	}
	if want.Contains != "" && !strings.Contains(got.Message, want.Contains) {
		errs = append(errs, fmt.Sprintf("error message %q does not contain %q", got.Message, want.Contains))
	}
	return errs
}

func optInt(p *int) string {
	if p == nil {
		return "none"
	}
	return fmt.Sprint(*p)
}

// statsByName exposes stats under their wire names.
func statsByName(s queryir.Stats) map[string]int {
	return map[string]int{
		"nodes_created":  s.NodesCreated,
		"nodes_deleted":  s.NodesDeleted,
		"edges_created":  s.EdgesCreated,
		"edges_deleted":  s.EdgesDeleted,
		"properties_set": s.PropertiesSet,
	}
}

func checkStats(want map[string]int, got queryir.Stats) []string {
	if len(want) == 0 {
		return nil
	}
	actual := statsByName(got)
	var errs []string
	for _, name := range sortedKeys(want) {
		v, ok := actual[name]
		if !ok {
			errs = append(errs, fmt.Sprintf("stats: unknown counter %q", name))
			continue
		}
		if v != want[name] {
			errs = append(errs, fmt.Sprintf("stats.%s: expected %d, got %d", name, want[name], v))
		}
	}
	return errs
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// compareRows checks rows in order with exact value kinds.
func compareRows(want, got []map[string]any) error {
	if len(want) != len(got) {
		return fmt.Errorf("rows: expected %d, got %d", len(want), len(got))
	}
	for i := range want {
		w, err := ir.FromGo(want[i])
		if err != nil {
			return fmt.Errorf("rows[%d]: expected value: %w", i, err)
		}
		g, err := ir.FromGo(got[i])
		if err != nil {
			return fmt.Errorf("rows[%d]: actual value: %w", i, err)
		}
		if !ir.Equal(w, g) {
			return fmt.Errorf("rows[%d]: expected %s, got %s", i, canonical(w), canonical(g))
		}
	}
	return nil
}

func canonical(v ir.IRValue) string {
	b, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// checkAssertion validates one assertion against final state.
func checkAssertion(ctx context.Context, exec *engine.Executor, st *store.Store, a Assertion) error {
	switch a.Type {
	case AssertNodeCount:
		n, err := st.CountNodes(ctx, a.Label)
		if err != nil {
			return err
		}
		if int(n) != *a.Count {
			return fmt.Errorf("expected %d nodes, got %d", *a.Count, n)
		}
	case AssertEdgeCount:
		n, err := st.CountEdges(ctx, a.RelType)
		if err != nil {
			return err
		}
		if int(n) != *a.Count {
			return fmt.Errorf("expected %d relationships, got %d", *a.Count, n)
		}
	case AssertQuery:
		res, err := exec.Execute(ctx, st, a.Query, a.Params)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		return compareRows(a.Rows, res.Rows)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
