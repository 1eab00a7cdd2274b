package harness

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/cypherlite/internal/engine"
	"github.com/roach88/cypherlite/internal/ir"
)

// stepSnapshot converts a step outcome to a map for canonical JSON
// serialization. Timing and trace ids are left out.
func stepSnapshot(sr StepResult) map[string]any {
	if sr.Failure != nil {
		return map[string]any{
			"query":   sr.Query,
			"failure": failureSnapshot(sr.Failure),
		}
	}
	return map[string]any{
		"query": sr.Query,
		"count": sr.Count,
		"rows":  sr.Rows,
		"stats": map[string]any{
			"nodes_created":  sr.Stats.NodesCreated,
			"nodes_deleted":  sr.Stats.NodesDeleted,
			"edges_created":  sr.Stats.EdgesCreated,
			"edges_deleted":  sr.Stats.EdgesDeleted,
			"properties_set": sr.Stats.PropertiesSet,
		},
	}
}

func failureSnapshot(f *engine.Failure) map[string]any {
	out := map[string]any{
		"kind":    string(f.Kind),
		"code":    f.Code,
		"message": f.Message,
	}
	if f.Position != nil {
		out["position"] = *f.Position
	}
	if f.Line != nil {
		out["line"] = *f.Line
	}
	if f.Column != nil {
		out["column"] = *f.Column
	}
	return out
}

// Snapshot renders a scenario result as one canonical JSON line per step.
func Snapshot(result *Result) ([]byte, error) {
	var buf bytes.Buffer
	for i, sr := range result.Steps {
		line, err := ir.MarshalCanonical(stepSnapshot(sr))
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check expectations too.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
