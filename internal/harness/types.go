package harness

import (
	"github.com/roach88/cypherlite/internal/engine"
	"github.com/roach88/cypherlite/internal/queryir"
)

// Result contains the outcome of running a scenario.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool

	// Steps records each step's outcome, in order.
	Steps []StepResult

	// Errors contains expectation and assertion failures.
	Errors []string
}

// StepResult is the recorded outcome of one step.
// Exactly one of Failure or the success fields is meaningful.
type StepResult struct {
	Query   string
	Rows    []map[string]any
	Count   int
	Stats   queryir.Stats
	Failure *engine.Failure
}
