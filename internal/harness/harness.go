package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/cypherlite/internal/engine"
	"github.com/roach88/cypherlite/internal/store"
	"github.com/roach88/cypherlite/internal/testutil"
)

// Run executes a scenario against a fresh in-memory database.
//
// Setup queries must succeed; a failing setup query is returned as an
// error. Step failures are recorded on their StepResult and checked
// against the step's expectation, they never abort the scenario.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:", store.WithJournalMode("MEMORY"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	exec := engine.New(
		engine.WithClock(testutil.NewStepClock(time.Millisecond)),
		engine.WithTraceIDGenerator(testutil.NewFixedTraceGenerator(scenario.TraceID)),
		engine.WithLogger(engine.DiscardLogger()),
	)

	for i, step := range scenario.Setup {
		if _, err := exec.Execute(ctx, st, step.Query, step.Params); err != nil {
			return nil, fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	result := &Result{Pass: true}
	for i, step := range scenario.Steps {
		sr := runStep(ctx, exec, st, step)
		result.Steps = append(result.Steps, sr)
		for _, msg := range checkExpect(step.Expect, sr) {
			result.Errors = append(result.Errors, fmt.Sprintf("steps[%d]: %s", i, msg))
		}
	}

	for i, a := range scenario.Assertions {
		if err := checkAssertion(ctx, exec, st, a); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}

	result.Pass = len(result.Errors) == 0
	return result, nil
}

func runStep(ctx context.Context, exec *engine.Executor, st store.Beginner, step Step) StepResult {
	sr := StepResult{Query: step.Query}
	res, err := exec.Execute(ctx, st, step.Query, step.Params)
	if err != nil {
		f := engine.Describe(err)
		sr.Failure = &f
		return sr
	}
	sr.Rows = res.Rows
	sr.Count = res.Count
	sr.Stats = res.Stats
	return sr
}
