package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cypherlite/internal/engine"
)

// Scenario defines a conformance test scenario: queries run in order
// against one fresh database, followed by assertions on its final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup queries establish initial state. Each must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Steps are the queries under test, optionally with expectations.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final database state.
	// Supported types: node_count, edge_count, query
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// TraceID is an optional fixed trace id. Defaults to "test-trace-default".
	TraceID string `yaml:"trace_id,omitempty"`
}

// Step is one query execution.
type Step struct {
	Query  string         `yaml:"query"`
	Params map[string]any `yaml:"params,omitempty"`

	// Expect validates the outcome. If nil, any outcome is accepted
	// (the golden snapshot still records it).
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
// Error and the success fields (Count, Rows, Stats) are mutually exclusive.
type Expect struct {
	// Count is the expected result count.
	Count *int `yaml:"count,omitempty"`

	// Rows are the expected result rows, compared in order. A nil Rows is
	// not checked; `rows: []` expects no rows.
	Rows []map[string]any `yaml:"rows,omitempty"`

	// Stats is a subset match on the execution stats, keyed by
	// nodes_created, nodes_deleted, edges_created, edges_deleted,
	// properties_set.
	Stats map[string]int `yaml:"stats,omitempty"`

	// Error expects the step to fail.
	Error *ExpectedError `yaml:"error,omitempty"`
}

// ExpectedError matches an engine.Failure. Zero fields are not checked.
type ExpectedError struct {
	Kind     string `yaml:"kind"`
	Code     string `yaml:"code,omitempty"`
	Line     int    `yaml:"line,omitempty"`
	Column   int    `yaml:"column,omitempty"`
	Contains string `yaml:"contains,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "node_count": nodes with Label (all nodes when empty)
	// - "edge_count": relationships with RelType (all when empty)
	// - "query": run Query and compare its rows with Rows
	Type string `yaml:"type"`

	Label   string `yaml:"label,omitempty"`
	RelType string `yaml:"rel_type,omitempty"`
	Count   *int   `yaml:"count,omitempty"`

	Query  string           `yaml:"query,omitempty"`
	Params map[string]any   `yaml:"params,omitempty"`
	Rows   []map[string]any `yaml:"rows,omitempty"`
}

// Assertion type constants.
const (
	AssertNodeCount = "node_count"
	AssertEdgeCount = "edge_count"
	AssertQuery     = "query"
)

var failureKinds = map[string]bool{
	string(engine.FailureParse):       true,
	string(engine.FailureTranslation): true,
	string(engine.FailureExecution):   true,
	string(engine.FailureInternal):    true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	names := make(map[string]string)
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, ok := names[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, s.Name, prev)
		}
		names[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if step.Query == "" {
			return fmt.Errorf("setup[%d]: query is required", i)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: setup steps cannot have expect", i)
		}
	}

	for i, step := range s.Steps {
		if step.Query == "" {
			return fmt.Errorf("steps[%d]: query is required", i)
		}
		if err := validateExpect(step.Expect); err != nil {
			return fmt.Errorf("steps[%d].expect: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateExpect(e *Expect) error {
	if e == nil || e.Error == nil {
		return nil
	}
	if e.Count != nil || e.Rows != nil || e.Stats != nil {
		return fmt.Errorf("error cannot be combined with count, rows or stats")
	}
	if !failureKinds[e.Error.Kind] {
		return fmt.Errorf("error.kind must be parse, translation, execution or internal, got %q", e.Error.Kind)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertNodeCount, AssertEdgeCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertQuery:
		if a.Query == "" {
			return fmt.Errorf("assertions[%d]: query is required for query", index)
		}
		if a.Rows == nil {
			return fmt.Errorf("assertions[%d]: rows is required for query", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
