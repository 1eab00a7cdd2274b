package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/cypherlite/internal/cypher"
	"github.com/roach88/cypherlite/internal/ir"
	"github.com/roach88/cypherlite/internal/queryir"
)

// varKind records what a pattern variable is bound to.
type varKind int

const (
	kindNode varKind = iota + 1
	kindEdge
)

func (k varKind) String() string {
	if k == kindEdge {
		return "relationship"
	}
	return "node"
}

func (k varKind) table() string {
	if k == kindEdge {
		return "edges"
	}
	return "nodes"
}

// translator holds the compile-time symbol table for one query.
type translator struct {
	params  map[string]any
	vars    map[string]varKind
	anon    int
	groups  int
	stmts   []queryir.Statement
	columns []string
}

// Translate maps a parsed query to an ordered statement list.
//
// Every $name in the query is resolved against params here; a missing
// name is an UNBOUND_PARAMETER error and nothing is returned. Errors about
// the query itself are *TranslationError values.
func Translate(q *cypher.Query, params map[string]any) (*queryir.TranslationResult, error) {
	if q == nil {
		return nil, fmt.Errorf("cannot translate nil query")
	}

	t := &translator{
		params: params,
		vars:   make(map[string]varKind),
	}
	for _, c := range q.Clauses {
		if err := t.clause(c); err != nil {
			return nil, err
		}
	}

	result := &queryir.TranslationResult{
		Statements: t.stmts,
		HasReturn:  q.HasReturn(),
		Columns:    t.columns,
	}
	if v := queryir.Validate(result.Statements); !v.IsValid {
		return nil, fmt.Errorf("invalid translation: %s", strings.Join(v.Problems, "; "))
	}
	return result, nil
}

// clause is the single exhaustive dispatch over clause kinds.
func (t *translator) clause(c cypher.Clause) error {
	switch clause := c.(type) {
	case *cypher.CreateClause:
		return t.create(clause)
	case *cypher.MatchClause:
		return t.match(clause)
	case *cypher.MergeClause:
		return t.merge(clause)
	case *cypher.SetClause:
		return t.set(clause)
	case *cypher.DeleteClause:
		return t.delete(clause)
	case *cypher.ReturnClause:
		return t.project(clause)
	default:
		return fmt.Errorf("unsupported clause type: %T", c)
	}
}

func (t *translator) emit(st queryir.Statement) {
	t.stmts = append(t.stmts, st)
}

// emitGroup appends statements that run to completion for one binding row
// before the next row starts.
func (t *translator) emitGroup(stmts ...queryir.Statement) {
	t.groups++
	for _, st := range stmts {
		st.Group = t.groups
		t.emit(st)
	}
}

// synthetic names an anonymous pattern element. The '#' prefix can never
// collide with a user variable.
func (t *translator) synthetic(prefix string) string {
	t.anon++
	return fmt.Sprintf("#%s%d", prefix, t.anon)
}

func (t *translator) nameOr(variable, prefix string) string {
	if variable != "" {
		return variable
	}
	return t.synthetic(prefix)
}

func (t *translator) lookup(name string) (varKind, error) {
	kind, ok := t.vars[name]
	if !ok {
		return 0, newError(ErrCodeUnknownVariable, name, "variable %q is not defined", name)
	}
	return kind, nil
}

func kindError(name string, got, want varKind) *TranslationError {
	return newError(ErrCodeVariableKind, name, "variable %q is a %s, not a %s", name, got, want)
}

// checkShape rejects patterns with more than one relationship.
func checkShape(p cypher.Pattern) error {
	if len(p.Rels) > 1 {
		return newError(ErrCodeUnsupportedPattern, "",
			"patterns with %d relationships are not supported; use one relationship per pattern", len(p.Rels))
	}
	return nil
}

// resolve evaluates a constant expression: a literal, a parameter, or a
// list or map built from them. Strings come back NFC-normalized, so values
// written to storage and values compared against it agree.
func (t *translator) resolve(e cypher.Expr) (ir.IRValue, error) {
	switch expr := e.(type) {
	case *cypher.Literal:
		return ir.NormalizeStrings(expr.Value), nil
	case *cypher.Param:
		return t.param(expr.Name)
	case *cypher.ListLiteral:
		arr := make(ir.IRArray, len(expr.Items))
		for i, item := range expr.Items {
			v, err := t.resolve(item)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case *cypher.MapLiteral:
		obj := make(ir.IRObject, len(expr.Entries))
		for _, entry := range expr.Entries {
			v, err := t.resolve(entry.Value)
			if err != nil {
				return nil, err
			}
			obj[entry.Key] = v
		}
		return obj, nil
	default:
		return nil, newError(ErrCodeUnsupportedExpression, "",
			"%s is not a constant; only literals and parameters are allowed here", describe(e))
	}
}

func (t *translator) param(name string) (ir.IRValue, error) {
	raw, ok := t.params[name]
	if !ok {
		return nil, newError(ErrCodeUnboundParameter, name, "parameter $%s is not bound", name)
	}
	v, err := ir.FromGo(raw)
	if err != nil {
		return nil, newError(ErrCodeInvalidParameter, name, "parameter $%s: %v", name, err)
	}
	return ir.NormalizeStrings(v), nil
}

// propEntry is one resolved pattern property, kept in a stable order.
type propEntry struct {
	key   string
	value ir.IRValue
}

// properties resolves a pattern property map. Map literals keep source
// order; map parameters are ordered by key.
func (t *translator) properties(e cypher.Expr) ([]propEntry, error) {
	switch expr := e.(type) {
	case nil:
		return nil, nil
	case *cypher.MapLiteral:
		entries := make([]propEntry, 0, len(expr.Entries))
		for _, entry := range expr.Entries {
			v, err := t.resolve(entry.Value)
			if err != nil {
				return nil, err
			}
			entries = append(entries, propEntry{key: entry.Key, value: v})
		}
		return entries, nil
	case *cypher.Param:
		v, err := t.param(expr.Name)
		if err != nil {
			return nil, err
		}
		obj, ok := v.(ir.IRObject)
		if !ok {
			return nil, newError(ErrCodeInvalidParameter, expr.Name,
				"parameter $%s must be a map, got %s", expr.Name, ir.TypeName(v))
		}
		entries := make([]propEntry, 0, len(obj))
		for _, k := range obj.SortedKeys() {
			entries = append(entries, propEntry{key: k, value: obj[k]})
		}
		return entries, nil
	default:
		return nil, newError(ErrCodeUnsupportedExpression, "", "%s is not a property map", describe(e))
	}
}

func toObject(entries []propEntry) ir.IRObject {
	obj := make(ir.IRObject, len(entries))
	for _, e := range entries {
		obj[e.key] = e.value
	}
	return obj
}

func countSet(entries []propEntry) int {
	n := 0
	for _, e := range entries {
		if !ir.IsNull(e.value) {
			n++
		}
	}
	return n
}

// serialize renders a property map for the properties column.
func serialize(entries []propEntry) (string, error) {
	text, err := ir.MarshalProperties(toObject(entries))
	if err != nil {
		return "", newError(ErrCodeInvalidParameter, "", "%v", err)
	}
	return text, nil
}

// reservedKey is the projected row id; stored maps cannot carry it.
const reservedKey = "id"

func checkWritable(key string) error {
	if key == reservedKey {
		return newError(ErrCodeReservedProperty, key, "property %q is reserved for the row id", key)
	}
	return nil
}

// serializeWritable checks every key before rendering the map.
func serializeWritable(entries []propEntry) (string, error) {
	for _, e := range entries {
		if err := checkWritable(e.key); err != nil {
			return "", err
		}
	}
	return serialize(entries)
}

// propertyPath builds the JSON path addressing one top-level key.
func propertyPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "\"\\") {
		return "", newError(ErrCodeUnsupportedExpression, key, "property key %q cannot be addressed", key)
	}
	return `$."` + key + `"`, nil
}

// canonicalText renders a value as canonical JSON for json(?) arguments.
func canonicalText(v ir.IRValue) (string, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", newError(ErrCodeInvalidParameter, "", "%v", err)
	}
	return string(data), nil
}

// scalarArg converts a scalar value to a driver argument.
func scalarArg(v ir.IRValue) any {
	switch val := v.(type) {
	case ir.IRString:
		return string(val)
	case ir.IRInt:
		return int64(val)
	case ir.IRFloat:
		return float64(val)
	case ir.IRBool:
		return bool(val)
	default:
		return nil
	}
}

// valueSQL renders a constant as an SQL operand.
func valueSQL(v ir.IRValue) (string, []queryir.Arg, error) {
	switch v.(type) {
	case nil, ir.IRNull:
		return "NULL", nil, nil
	case ir.IRArray, ir.IRObject:
		text, err := canonicalText(v)
		if err != nil {
			return "", nil, err
		}
		return "json(?)", []queryir.Arg{queryir.Value(text)}, nil
	default:
		return "?", []queryir.Arg{queryir.Value(scalarArg(v))}, nil
	}
}

// propertyCondition matches one stored property exactly: same JSON type
// family and equal value. A null pattern value matches an absent key.
func propertyCondition(column, key string, v ir.IRValue) (string, []queryir.Arg, error) {
	path, err := propertyPath(key)
	if err != nil {
		return "", nil, err
	}
	p := queryir.Value(path)

	switch val := v.(type) {
	case nil, ir.IRNull:
		return fmt.Sprintf("json_type(%s, ?) IS NULL", column), []queryir.Arg{p}, nil
	case ir.IRBool:
		typ := "false"
		if val {
			typ = "true"
		}
		return fmt.Sprintf("json_type(%s, ?) = ?", column), []queryir.Arg{p, queryir.Value(typ)}, nil
	case ir.IRString:
		return fmt.Sprintf("(json_type(%s, ?) = ? AND json_extract(%s, ?) = ?)", column, column),
			[]queryir.Arg{p, queryir.Value("text"), p, queryir.Value(string(val))}, nil
	case ir.IRInt, ir.IRFloat:
		return fmt.Sprintf("(json_type(%s, ?) IN (?, ?) AND json_extract(%s, ?) = ?)", column, column),
			[]queryir.Arg{p, queryir.Value("integer"), queryir.Value("real"), p, queryir.Value(scalarArg(v))}, nil
	case ir.IRArray, ir.IRObject:
		typ := "array"
		if _, ok := val.(ir.IRObject); ok {
			typ = "object"
		}
		text, err := canonicalText(v)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("(json_type(%s, ?) = ? AND json_extract(%s, ?) = json(?))", column, column),
			[]queryir.Arg{p, queryir.Value(typ), p, queryir.Value(text)}, nil
	default:
		return "", nil, fmt.Errorf("unsupported property value %T", v)
	}
}

// describe names an expression for error messages.
func describe(e cypher.Expr) string {
	switch expr := e.(type) {
	case *cypher.Literal:
		return ir.TypeName(expr.Value) + " literal"
	case *cypher.Param:
		return "parameter $" + expr.Name
	case *cypher.Variable:
		return "variable " + expr.Name
	case *cypher.PropertyAccess:
		return "property " + expr.Variable + "." + expr.Key
	case *cypher.FuncCall:
		return "function " + expr.Name + "()"
	case *cypher.Comparison:
		return "comparison " + expr.Op
	case *cypher.BinaryLogical:
		return expr.Op + " expression"
	case *cypher.Not:
		return "NOT expression"
	case *cypher.IsNull:
		return "IS NULL test"
	case *cypher.ListLiteral:
		return "list"
	case *cypher.MapLiteral:
		return "map"
	default:
		return fmt.Sprintf("%T", e)
	}
}
