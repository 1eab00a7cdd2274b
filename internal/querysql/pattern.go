package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/cypherlite/internal/cypher"
	"github.com/roach88/cypherlite/internal/ir"
	"github.com/roach88/cypherlite/internal/queryir"
)

// scope builds one SELECT over aliased nodes and edges tables.
//
// Variables bound by earlier statements are pinned to their row id with
// `alias.id = ?`; variables first seen here become output columns and are
// bound by the statement.
type scope struct {
	t       *translator
	from    []string
	order   []string
	aliases map[string]string
	kinds   map[string]varKind
	conds   []string
	args    []queryir.Arg
	binds   []string
	cols    []string
}

func (t *translator) newScope() *scope {
	return &scope{
		t:       t,
		aliases: make(map[string]string),
		kinds:   make(map[string]varKind),
	}
}

func (s *scope) addFrom(table, prefix string) string {
	alias := fmt.Sprintf("%s%d", prefix, len(s.from))
	s.from = append(s.from, table+" "+alias)
	s.order = append(s.order, alias+".id")
	return alias
}

func (s *scope) where(cond string, args ...queryir.Arg) {
	s.conds = append(s.conds, cond)
	s.args = append(s.args, args...)
}

// kindOf reports the kind of a variable bound here or earlier.
func (s *scope) kindOf(name string) (varKind, bool) {
	if k, ok := s.kinds[name]; ok {
		return k, true
	}
	k, ok := s.t.vars[name]
	return k, ok
}

func (s *scope) checkKind(name string, want varKind) error {
	if k, ok := s.kindOf(name); ok && k != want {
		return kindError(name, k, want)
	}
	return nil
}

// declare gives a named element a fresh alias, pinning or binding it.
func (s *scope) declare(name string, kind varKind, alias string) {
	s.aliases[name] = alias
	if _, bound := s.t.vars[name]; bound {
		s.where(alias+".id = ?", queryir.VarRef(name))
		return
	}
	s.kinds[name] = kind
	s.binds = append(s.binds, name)
	s.cols = append(s.cols, alias+".id")
}

// node adds a node pattern and returns its alias.
func (s *scope) node(n cypher.NodePattern) (string, error) {
	if n.Variable != "" {
		if err := s.checkKind(n.Variable, kindNode); err != nil {
			return "", err
		}
		if alias, ok := s.aliases[n.Variable]; ok {
			if err := s.nodeFilters(alias, n); err != nil {
				return "", err
			}
			return alias, nil
		}
	}

	alias := s.addFrom("nodes", "n")
	if n.Variable != "" {
		s.declare(n.Variable, kindNode, alias)
	}
	if err := s.nodeFilters(alias, n); err != nil {
		return "", err
	}
	return alias, nil
}

func (s *scope) nodeFilters(alias string, n cypher.NodePattern) error {
	if label := n.Label(); label != "" {
		s.where(alias+".label = ?", queryir.Value(label))
	}
	return s.propertyFilters(alias, n.Properties)
}

func (s *scope) propertyFilters(alias string, props cypher.Expr) error {
	entries, err := s.t.properties(props)
	if err != nil {
		return err
	}
	for _, e := range entries {
		cond, args, err := propertyCondition(alias+".properties", e.key, e.value)
		if err != nil {
			return err
		}
		s.where(cond, args...)
	}
	return nil
}

// rel adds a relationship between two node aliases.
func (s *scope) rel(r cypher.RelPattern, left, right string) error {
	if r.Variable != "" {
		if err := s.checkKind(r.Variable, kindEdge); err != nil {
			return err
		}
		if _, ok := s.aliases[r.Variable]; ok {
			return newError(ErrCodeUnsupportedPattern, r.Variable,
				"relationship variable %q appears more than once in one clause", r.Variable)
		}
	}

	alias := s.addFrom("edges", "e")
	if r.Variable != "" {
		s.declare(r.Variable, kindEdge, alias)
	}
	if r.Type != "" {
		s.where(alias+".type = ?", queryir.Value(r.Type))
	}
	if err := s.propertyFilters(alias, r.Properties); err != nil {
		return err
	}

	forward := fmt.Sprintf("%s.source_id = %s.id AND %s.target_id = %s.id", alias, left, alias, right)
	backward := fmt.Sprintf("%s.source_id = %s.id AND %s.target_id = %s.id", alias, right, alias, left)
	switch r.Direction {
	case cypher.DirectionRight:
		s.where(forward)
	case cypher.DirectionLeft:
		s.where(backward)
	default:
		s.where("((" + forward + ") OR (" + backward + "))")
	}
	return nil
}

func (s *scope) pattern(p cypher.Pattern) error {
	if err := checkShape(p); err != nil {
		return err
	}
	left, err := s.node(p.Nodes[0])
	if err != nil {
		return err
	}
	if len(p.Rels) == 0 {
		return nil
	}
	right, err := s.node(p.Nodes[1])
	if err != nil {
		return err
	}
	return s.rel(p.Rels[0], left, right)
}

// expand renders the scope as a ModeExpand statement and commits its
// bindings to the symbol table.
func (s *scope) expand(optional bool) queryir.Statement {
	sel := "1"
	if len(s.cols) > 0 {
		sel = strings.Join(s.cols, ", ")
	}
	sql := fmt.Sprintf("SELECT %s FROM %s", sel, strings.Join(s.from, ", "))
	if len(s.conds) > 0 {
		sql += " WHERE " + strings.Join(s.conds, " AND ")
	}
	sql += " ORDER BY " + strings.Join(s.order, ", ")

	for name, kind := range s.kinds {
		s.t.vars[name] = kind
	}
	return queryir.Statement{
		SQL:      sql,
		Args:     s.args,
		Mode:     queryir.ModeExpand,
		Optional: optional,
		Shape:    queryir.ShapeBindings,
		Binds:    s.binds,
	}
}

// match compiles MATCH: every pattern joins into one SELECT, and WHERE
// filters the same statement.
func (t *translator) match(c *cypher.MatchClause) error {
	s := t.newScope()
	for _, p := range c.Patterns {
		if err := s.pattern(p); err != nil {
			return err
		}
	}
	if c.Where != nil {
		cond, args, err := s.expr(c.Where)
		if err != nil {
			return err
		}
		s.where(cond, args...)
	}
	t.emit(s.expand(false))
	return nil
}

// aliasOf returns the alias of a variable, joining a pinned alias for
// variables bound by earlier clauses.
func (s *scope) aliasOf(name string) (string, varKind, error) {
	if alias, ok := s.aliases[name]; ok {
		k, _ := s.kindOf(name)
		return alias, k, nil
	}
	kind, err := s.t.lookup(name)
	if err != nil {
		return "", 0, err
	}
	prefix := "n"
	if kind == kindEdge {
		prefix = "e"
	}
	alias := s.addFrom(kind.table(), prefix)
	s.declare(name, kind, alias)
	return alias, kind, nil
}

var sqlComparison = map[string]string{
	"=": "=", "<>": "<>", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

// expr compiles a WHERE expression to an SQL condition.
func (s *scope) expr(e cypher.Expr) (string, []queryir.Arg, error) {
	switch x := e.(type) {
	case *cypher.Literal, *cypher.Param, *cypher.ListLiteral, *cypher.MapLiteral:
		v, err := s.t.resolve(e)
		if err != nil {
			return "", nil, err
		}
		return valueSQL(v)
	case *cypher.Variable:
		alias, _, err := s.aliasOf(x.Name)
		if err != nil {
			return "", nil, err
		}
		return alias + ".id", nil, nil
	case *cypher.PropertyAccess:
		alias, _, err := s.aliasOf(x.Variable)
		if err != nil {
			return "", nil, err
		}
		path, err := propertyPath(x.Key)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("json_extract(%s.properties, ?)", alias), []queryir.Arg{queryir.Value(path)}, nil
	case *cypher.FuncCall:
		name, err := idArgument(x)
		if err != nil {
			return "", nil, err
		}
		alias, _, err := s.aliasOf(name)
		if err != nil {
			return "", nil, err
		}
		return alias + ".id", nil, nil
	case *cypher.Comparison:
		if cond, args, ok, err := s.typedEquality(x); ok || err != nil {
			return cond, args, err
		}
		op, ok := sqlComparison[x.Op]
		if !ok {
			return "", nil, newError(ErrCodeUnsupportedExpression, "", "comparison %s is not supported", x.Op)
		}
		return s.binary(x.Left, x.Right, "(%s "+op+" %s)")
	case *cypher.BinaryLogical:
		switch x.Op {
		case "AND":
			return s.binary(x.Left, x.Right, "(%s AND %s)")
		case "OR":
			return s.binary(x.Left, x.Right, "(%s OR %s)")
		case "XOR":
			return s.binary(x.Left, x.Right, "((%s) <> (%s))")
		}
		return "", nil, newError(ErrCodeUnsupportedExpression, "", "operator %s is not supported", x.Op)
	case *cypher.Not:
		inner, args, err := s.expr(x.Expr)
		if err != nil {
			return "", nil, err
		}
		return "(NOT " + inner + ")", args, nil
	case *cypher.IsNull:
		inner, args, err := s.expr(x.Expr)
		if err != nil {
			return "", nil, err
		}
		if x.Negated {
			return "(" + inner + " IS NOT NULL)", args, nil
		}
		return "(" + inner + " IS NULL)", args, nil
	default:
		return "", nil, newError(ErrCodeUnsupportedExpression, "", "%s is not supported in WHERE", describe(e))
	}
}

func isConstant(e cypher.Expr) bool {
	switch e.(type) {
	case *cypher.Literal, *cypher.Param, *cypher.ListLiteral, *cypher.MapLiteral:
		return true
	}
	return false
}

// typedEquality compiles `v.k = constant` and `v.k <> constant` with the
// JSON type of the stored value checked, so true never equals 1 and a
// string never equals a number. Integers and floats compare numerically.
// Null constants and other shapes report ok=false.
func (s *scope) typedEquality(c *cypher.Comparison) (string, []queryir.Arg, bool, error) {
	if c.Op != "=" && c.Op != "<>" {
		return "", nil, false, nil
	}
	prop, isProp := c.Left.(*cypher.PropertyAccess)
	other := c.Right
	if !isProp {
		prop, isProp = c.Right.(*cypher.PropertyAccess)
		other = c.Left
	}
	if !isProp || !isConstant(other) {
		return "", nil, false, nil
	}

	v, err := s.t.resolve(other)
	if err != nil {
		return "", nil, false, err
	}
	if ir.IsNull(v) {
		return "", nil, false, nil
	}
	alias, _, err := s.aliasOf(prop.Variable)
	if err != nil {
		return "", nil, false, err
	}
	column := alias + ".properties"
	cond, args, err := propertyCondition(column, prop.Key, v)
	if err != nil {
		return "", nil, false, err
	}
	if c.Op == "=" {
		return cond, args, true, nil
	}

	// A missing key compares as null and filters the row out.
	path, _ := propertyPath(prop.Key)
	return fmt.Sprintf("(json_type(%s, ?) IS NOT NULL AND NOT (%s))", column, cond),
		append([]queryir.Arg{queryir.Value(path)}, args...), true, nil
}

func (s *scope) binary(left, right cypher.Expr, format string) (string, []queryir.Arg, error) {
	l, largs, err := s.expr(left)
	if err != nil {
		return "", nil, err
	}
	r, rargs, err := s.expr(right)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf(format, l, r), append(largs, rargs...), nil
}

// idArgument validates an id(v) call and returns v.
func idArgument(f *cypher.FuncCall) (string, error) {
	if f.Name != "id" {
		return "", newError(ErrCodeUnsupportedExpression, f.Name, "function %s() is not supported", f.Name)
	}
	v, ok := f.Arg.(*cypher.Variable)
	if !ok {
		return "", newError(ErrCodeUnsupportedExpression, "", "id() takes a variable, got %s", describe(f.Arg))
	}
	return v.Name, nil
}
