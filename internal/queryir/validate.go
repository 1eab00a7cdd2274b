package queryir

import "fmt"

// ValidationResult lists structural problems of a statement list.
type ValidationResult struct {
	// IsValid is true when Problems is empty.
	IsValid bool

	// Problems describes each violation found, in statement order.
	Problems []string
}

// Validate checks that a statement list is executable:
//  1. Every statement's placeholder count matches its argument count
//  2. Every VarRef, SkipIfBound and projected variable is bound by an
//     earlier statement
//  3. Mode, shape and binds agree (inserts bind exactly one variable,
//     projections carry columns)
//  4. Only the last statement may be a projection
//  5. Grouped statements are contiguous and never project
//
// Validate is a pure function with no side effects.
func Validate(stmts []Statement) ValidationResult {
	v := &validator{
		problems: []string{},
		bound:    make(map[string]bool),
		closed:   make(map[int]bool),
	}
	for i, st := range stmts {
		v.validateStatement(i, st, i == len(stmts)-1)
	}
	return ValidationResult{
		IsValid:  len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
	bound    map[string]bool
	group    int
	closed   map[int]bool
}

func (v *validator) addProblem(i int, format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf("statement %d: %s", i, fmt.Sprintf(format, args...)))
}

func (v *validator) validateStatement(i int, st Statement, last bool) {
	if n := CountPlaceholders(st.SQL); n != len(st.Args) {
		v.addProblem(i, "%d placeholders but %d args", n, len(st.Args))
	}
	for j, a := range st.Args {
		if a.IsVar() && !v.bound[a.Var] {
			v.addProblem(i, "arg %d references unbound variable %q", j, a.Var)
		}
	}

	v.validateGroup(i, st)

	switch st.Mode {
	case ModeExpand:
		if st.Shape != ShapeBindings {
			v.addProblem(i, "expand must have bindings shape, got %s", st.Shape)
		}
		if st.SQL == "" {
			v.addProblem(i, "expand has no statement text")
		}
	case ModeInsert:
		if st.Shape != ShapeBindings {
			v.addProblem(i, "insert must have bindings shape, got %s", st.Shape)
		}
		if len(st.Binds) != 1 {
			v.addProblem(i, "insert must bind exactly one variable, got %d", len(st.Binds))
		}
		if st.SkipIfBound != "" && !v.bound[st.SkipIfBound] {
			v.addProblem(i, "skip condition references unbound variable %q", st.SkipIfBound)
		}
	case ModeExec:
		if st.Shape != ShapeNone {
			v.addProblem(i, "exec must have no rows, got %s", st.Shape)
		}
		if st.SQL == "" {
			v.addProblem(i, "exec has no statement text")
		}
	case ModeProject:
		if st.Shape != ShapeRows {
			v.addProblem(i, "project must have rows shape, got %s", st.Shape)
		}
		if len(st.Columns) == 0 {
			v.addProblem(i, "project has no columns")
		}
		if !last {
			v.addProblem(i, "project must be the last statement")
		}
		if st.Flat && (len(st.Columns) != 1 || (st.Columns[0].Kind != ColumnNode && st.Columns[0].Kind != ColumnEdge)) {
			v.addProblem(i, "flat projection needs exactly one node or edge column")
		}
		for _, c := range st.Columns {
			if c.Kind != ColumnLiteral && !v.bound[c.Var] {
				v.addProblem(i, "column %q references unbound variable %q", c.Name, c.Var)
			}
		}
	default:
		v.addProblem(i, "unknown mode %s", st.Mode)
	}

	for _, b := range st.Binds {
		v.bound[b] = true
	}
}

func (v *validator) validateGroup(i int, st Statement) {
	if st.Group != v.group {
		v.closed[v.group] = true
		v.group = st.Group
	}
	if st.Group == 0 {
		return
	}
	if v.closed[st.Group] {
		v.addProblem(i, "group %d is not contiguous", st.Group)
	}
	if st.Mode == ModeProject {
		v.addProblem(i, "project cannot be grouped")
	}
}

// CountPlaceholders counts `?` outside single-quoted SQL string literals.
func CountPlaceholders(sql string) int {
	n := 0
	inString := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			inString = !inString
		case '?':
			if !inString {
				n++
			}
		}
	}
	return n
}
