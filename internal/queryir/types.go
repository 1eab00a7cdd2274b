package queryir

import (
	"fmt"

	"github.com/roach88/cypherlite/internal/ir"
)

// Mode selects how the executor runs a statement against the binding table.
type Mode int

const (
	ModeExpand Mode = iota
	ModeInsert
	ModeExec
	ModeProject
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeExpand:
		return "expand"
	case ModeInsert:
		return "insert"
	case ModeExec:
		return "exec"
	case ModeProject:
		return "project"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// RowShape tells the executor what the statement's rows mean.
type RowShape int

const (
	// ShapeNone: the statement returns no rows.
	ShapeNone RowShape = iota
	// ShapeBindings: rows are row ids that extend the binding table.
	ShapeBindings
	// ShapeRows: rows are projected into result rows.
	ShapeRows
)

// String returns the shape name.
func (s RowShape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeBindings:
		return "bindings"
	case ShapeRows:
		return "rows"
	default:
		return fmt.Sprintf("RowShape(%d)", int(s))
	}
}

// Arg is one positional statement argument.
//
// Exactly one of Value or Var is meaningful: when Var is non-empty the
// argument is the row id bound to Var in the current binding row;
// otherwise Value is passed to the driver as is.
type Arg struct {
	Value any
	Var   string
}

// Value returns a constant argument.
func Value(v any) Arg {
	return Arg{Value: v}
}

// VarRef returns an argument resolved from the binding row.
func VarRef(name string) Arg {
	return Arg{Var: name}
}

// IsVar reports whether the argument refers to a bound variable.
func (a Arg) IsVar() bool {
	return a.Var != ""
}

// ColumnKind classifies a projected column.
type ColumnKind int

const (
	// ColumnID is the raw row id of Var.
	ColumnID ColumnKind = iota
	// ColumnProperty is property Key of Var.
	ColumnProperty
	// ColumnNode is the whole node Var as a flat map.
	ColumnNode
	// ColumnEdge is the whole edge Var as a flat map.
	ColumnEdge
	// ColumnLiteral is a constant resolved at translation time.
	ColumnLiteral
)

// String returns the column kind name.
func (k ColumnKind) String() string {
	switch k {
	case ColumnID:
		return "id"
	case ColumnProperty:
		return "property"
	case ColumnNode:
		return "node"
	case ColumnEdge:
		return "edge"
	case ColumnLiteral:
		return "literal"
	default:
		return fmt.Sprintf("ColumnKind(%d)", int(k))
	}
}

// Column describes one output column of a ModeProject statement.
//
// Index is the position of Var's id in the SELECT list; the properties
// column follows at Index+1. Literal columns have no index.
type Column struct {
	Name  string
	Kind  ColumnKind
	Var   string
	Key   string
	Value ir.IRValue
	Index int
}

// Stats counts storage effects.
type Stats struct {
	NodesCreated  int `json:"nodes_created"`
	NodesDeleted  int `json:"nodes_deleted"`
	EdgesCreated  int `json:"edges_created"`
	EdgesDeleted  int `json:"edges_deleted"`
	PropertiesSet int `json:"properties_set"`
}

// Add accumulates other, scaled by times.
func (s *Stats) Add(other Stats, times int) {
	s.NodesCreated += other.NodesCreated * times
	s.NodesDeleted += other.NodesDeleted * times
	s.EdgesCreated += other.EdgesCreated * times
	s.EdgesDeleted += other.EdgesDeleted * times
	s.PropertiesSet += other.PropertiesSet * times
}

// IsZero reports whether no effect is counted.
func (s Stats) IsZero() bool {
	return s == Stats{}
}

// Statement is one relational command.
//
// Effect is counted once per affected storage row. Flat applies to
// projections with a single node or edge column: the entity map itself
// becomes the output row instead of being nested under the column name.
//
// Consecutive statements sharing a non-zero Group run as a unit once per
// binding row: the whole group finishes for one row before the next row
// starts, so a later row sees what an earlier row inserted.
type Statement struct {
	SQL         string
	Args        []Arg
	Mode        Mode
	Optional    bool
	Shape       RowShape
	Binds       []string
	SkipIfBound string
	Columns     []Column
	Flat        bool
	Effect      Stats
	Group       int
}

// TranslationResult is the ordered statement list for one query.
type TranslationResult struct {
	Statements []Statement

	// HasReturn is true when the last statement shapes result rows.
	HasReturn bool

	// Columns lists RETURN column names in declaration order.
	Columns []string
}

// Fingerprint is a content hash of the statement list.
// Identical translations always yield identical fingerprints.
func (r *TranslationResult) Fingerprint() (string, error) {
	stmts := make(ir.IRArray, len(r.Statements))
	for i, st := range r.Statements {
		v, err := st.canonical()
		if err != nil {
			return "", fmt.Errorf("statement %d: %w", i, err)
		}
		stmts[i] = v
	}
	return ir.Fingerprint(ir.DomainTranslation, ir.IRObject{
		"statements": stmts,
		"has_return": ir.IRBool(r.HasReturn),
	})
}

func (s Statement) canonical() (ir.IRValue, error) {
	args := make(ir.IRArray, len(s.Args))
	for i, a := range s.Args {
		if a.IsVar() {
			args[i] = ir.IRObject{"var": ir.IRString(a.Var)}
			continue
		}
		v, err := ir.FromGo(a.Value)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		args[i] = ir.IRObject{"value": v}
	}

	binds := make(ir.IRArray, len(s.Binds))
	for i, b := range s.Binds {
		binds[i] = ir.IRString(b)
	}

	cols := make(ir.IRArray, len(s.Columns))
	for i, c := range s.Columns {
		col := ir.IRObject{
			"name":  ir.IRString(c.Name),
			"kind":  ir.IRString(c.Kind.String()),
			"var":   ir.IRString(c.Var),
			"key":   ir.IRString(c.Key),
			"index": ir.IRInt(c.Index),
		}
		if c.Value != nil {
			col["value"] = c.Value
		}
		cols[i] = col
	}

	return ir.IRObject{
		"sql":           ir.IRString(s.SQL),
		"args":          args,
		"mode":          ir.IRString(s.Mode.String()),
		"optional":      ir.IRBool(s.Optional),
		"shape":         ir.IRString(s.Shape.String()),
		"binds":         binds,
		"skip_if_bound": ir.IRString(s.SkipIfBound),
		"columns":       cols,
		"flat":          ir.IRBool(s.Flat),
		"group":         ir.IRInt(s.Group),
		"effect": ir.IRObject{
			"nodes_created":  ir.IRInt(s.Effect.NodesCreated),
			"nodes_deleted":  ir.IRInt(s.Effect.NodesDeleted),
			"edges_created":  ir.IRInt(s.Effect.EdgesCreated),
			"edges_deleted":  ir.IRInt(s.Effect.EdgesDeleted),
			"properties_set": ir.IRInt(s.Effect.PropertiesSet),
		},
	}, nil
}
