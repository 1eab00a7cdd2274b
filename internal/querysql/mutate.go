package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/cypherlite/internal/cypher"
	"github.com/roach88/cypherlite/internal/ir"
	"github.com/roach88/cypherlite/internal/queryir"
)

const (
	insertNodeSQL = "INSERT INTO nodes (label, properties) VALUES (?, ?)"
	insertEdgeSQL = "INSERT INTO edges (source_id, target_id, type, properties) VALUES (?, ?, ?, ?)"
)

func labelArg(label string) queryir.Arg {
	if label == "" {
		return queryir.Value(nil)
	}
	return queryir.Value(label)
}

// nodeInsert builds the insert for an unbound node pattern.
func (t *translator) nodeInsert(name string, n cypher.NodePattern, skipIfBound string) (queryir.Statement, error) {
	entries, err := t.properties(n.Properties)
	if err != nil {
		return queryir.Statement{}, err
	}
	props, err := serializeWritable(entries)
	if err != nil {
		return queryir.Statement{}, err
	}
	return queryir.Statement{
		SQL:         insertNodeSQL,
		Args:        []queryir.Arg{labelArg(n.Label()), queryir.Value(props)},
		Mode:        queryir.ModeInsert,
		Shape:       queryir.ShapeBindings,
		Binds:       []string{name},
		SkipIfBound: skipIfBound,
		Effect:      queryir.Stats{NodesCreated: 1, PropertiesSet: countSet(entries)},
	}, nil
}

// edgeInsert builds the insert for a relationship between two bound
// node variables. Undirected relationships are created left to right.
func (t *translator) edgeInsert(name string, r cypher.RelPattern, left, right, skipIfBound string) (queryir.Statement, error) {
	if r.Type == "" {
		return queryir.Statement{}, newError(ErrCodeUnsupportedPattern, r.Variable,
			"a created relationship needs exactly one type")
	}
	entries, err := t.properties(r.Properties)
	if err != nil {
		return queryir.Statement{}, err
	}
	props, err := serializeWritable(entries)
	if err != nil {
		return queryir.Statement{}, err
	}

	source, target := left, right
	if r.Direction == cypher.DirectionLeft {
		source, target = right, left
	}
	return queryir.Statement{
		SQL: insertEdgeSQL,
		Args: []queryir.Arg{
			queryir.VarRef(source),
			queryir.VarRef(target),
			queryir.Value(r.Type),
			queryir.Value(props),
		},
		Mode:        queryir.ModeInsert,
		Shape:       queryir.ShapeBindings,
		Binds:       []string{name},
		SkipIfBound: skipIfBound,
		Effect:      queryir.Stats{EdgesCreated: 1, PropertiesSet: countSet(entries)},
	}, nil
}

// redeclared reports whether a pattern element adds labels or properties.
func redeclared(n cypher.NodePattern) bool {
	return len(n.Labels) > 0 || n.Properties != nil
}

// boundNode returns the variable name when n refers to an already bound
// node, or "" when n must be created.
func (t *translator) boundNode(n cypher.NodePattern, clause string) (string, error) {
	if n.Variable == "" {
		return "", nil
	}
	kind, ok := t.vars[n.Variable]
	if !ok {
		return "", nil
	}
	if kind != kindNode {
		return "", kindError(n.Variable, kind, kindNode)
	}
	if redeclared(n) {
		return "", newError(ErrCodeAlreadyBound, n.Variable,
			"variable %q is already bound; %s cannot add labels or properties to it", n.Variable, clause)
	}
	return n.Variable, nil
}

func (t *translator) checkNewRel(r cypher.RelPattern) error {
	if r.Variable == "" {
		return nil
	}
	if kind, ok := t.vars[r.Variable]; ok {
		if kind != kindEdge {
			return kindError(r.Variable, kind, kindEdge)
		}
		return newError(ErrCodeAlreadyBound, r.Variable, "relationship variable %q is already bound", r.Variable)
	}
	return nil
}

// create compiles CREATE: one insert per unbound node, then the
// relationship between them.
func (t *translator) create(c *cypher.CreateClause) error {
	for _, p := range c.Patterns {
		if err := checkShape(p); err != nil {
			return err
		}
		names := make([]string, len(p.Nodes))
		for i, n := range p.Nodes {
			name, err := t.boundNode(n, "CREATE")
			if err != nil {
				return err
			}
			if name == "" {
				name = t.nameOr(n.Variable, "n")
				st, err := t.nodeInsert(name, n, "")
				if err != nil {
					return err
				}
				t.emit(st)
				t.vars[name] = kindNode
			}
			names[i] = name
		}
		if len(p.Rels) == 0 {
			continue
		}

		r := p.Rels[0]
		if r.Direction == cypher.DirectionBoth {
			return newError(ErrCodeUnsupportedPattern, r.Variable, "CREATE needs a directed relationship")
		}
		if err := t.checkNewRel(r); err != nil {
			return err
		}
		name := t.nameOr(r.Variable, "r")
		st, err := t.edgeInsert(name, r, names[0], names[1], "")
		if err != nil {
			return err
		}
		t.emit(st)
		t.vars[name] = kindEdge
	}
	return nil
}

// merge compiles MERGE as an optional lookup followed by inserts that run
// only for binding rows the lookup left unmatched. The anchor variable (the
// node for a node pattern, the relationship otherwise) is bound exactly
// when the lookup matched. Lookup and inserts form one group, so each
// binding row matches what earlier rows created.
func (t *translator) merge(c *cypher.MergeClause) error {
	p := c.Pattern
	if err := checkShape(p); err != nil {
		return err
	}
	if len(p.Rels) == 0 {
		return t.mergeNode(p.Nodes[0])
	}
	return t.mergeRel(p)
}

func (t *translator) mergeNode(n cypher.NodePattern) error {
	bound, err := t.boundNode(n, "MERGE")
	if err != nil || bound != "" {
		return err
	}

	n.Variable = t.nameOr(n.Variable, "n")
	insert, err := t.nodeInsert(n.Variable, n, n.Variable)
	if err != nil {
		return err
	}

	s := t.newScope()
	if _, err := s.node(n); err != nil {
		return err
	}
	t.emitGroup(s.expand(true), insert)
	return nil
}

func (t *translator) mergeRel(p cypher.Pattern) error {
	r := p.Rels[0]
	if err := t.checkNewRel(r); err != nil {
		return err
	}
	if r.Type == "" {
		return newError(ErrCodeUnsupportedPattern, r.Variable, "MERGE needs a relationship type")
	}

	nodes := make([]cypher.NodePattern, len(p.Nodes))
	fresh := make(map[string]bool)
	var creates []cypher.NodePattern
	for i, n := range p.Nodes {
		if n.Variable != "" && fresh[n.Variable] {
			nodes[i] = n
			continue
		}
		bound, err := t.boundNode(n, "MERGE")
		if err != nil {
			return err
		}
		if bound == "" {
			n.Variable = t.nameOr(n.Variable, "n")
			fresh[n.Variable] = true
			creates = append(creates, n)
		}
		nodes[i] = n
	}
	r.Variable = t.nameOr(r.Variable, "r")
	anchor := r.Variable

	// Build every insert before the lookup commits its bindings.
	var inserts []queryir.Statement
	for _, n := range creates {
		st, err := t.nodeInsert(n.Variable, n, anchor)
		if err != nil {
			return err
		}
		inserts = append(inserts, st)
	}
	edge, err := t.edgeInsert(anchor, r, nodes[0].Variable, nodes[1].Variable, anchor)
	if err != nil {
		return err
	}
	inserts = append(inserts, edge)

	s := t.newScope()
	left, err := s.node(nodes[0])
	if err != nil {
		return err
	}
	right, err := s.node(nodes[1])
	if err != nil {
		return err
	}
	if err := s.rel(r, left, right); err != nil {
		return err
	}
	t.emitGroup(append([]queryir.Statement{s.expand(true)}, inserts...)...)
	return nil
}

// set compiles SET items into UPDATE statements on the stored map.
func (t *translator) set(c *cypher.SetClause) error {
	for _, item := range c.Items {
		kind, err := t.lookup(item.Variable)
		if err != nil {
			return err
		}
		table := kind.table()

		var st queryir.Statement
		switch item.Kind {
		case cypher.SetProperty:
			st, err = t.setProperty(table, item)
		case cypher.SetMerge:
			st, err = t.setMerge(table, item)
		case cypher.SetReplace:
			st, err = t.setReplace(table, item)
		case cypher.SetLabels:
			if kind != kindNode {
				return kindError(item.Variable, kind, kindNode)
			}
			st = exec("UPDATE nodes SET label = ? WHERE id = ?", queryir.Stats{},
				queryir.Value(item.Labels[0]), queryir.VarRef(item.Variable))
		default:
			return fmt.Errorf("unsupported SET item kind %d", item.Kind)
		}
		if err != nil {
			return err
		}
		if st.SQL != "" {
			t.emit(st)
		}
	}
	return nil
}

func exec(sql string, effect queryir.Stats, args ...queryir.Arg) queryir.Statement {
	return queryir.Statement{
		SQL:    sql,
		Args:   args,
		Mode:   queryir.ModeExec,
		Shape:  queryir.ShapeNone,
		Effect: effect,
	}
}

func (t *translator) setProperty(table string, item cypher.SetItem) (queryir.Statement, error) {
	if err := checkWritable(item.Key); err != nil {
		return queryir.Statement{}, err
	}
	v, err := t.resolve(item.Value)
	if err != nil {
		return queryir.Statement{}, err
	}
	path, err := propertyPath(item.Key)
	if err != nil {
		return queryir.Statement{}, err
	}
	effect := queryir.Stats{PropertiesSet: 1}
	if ir.IsNull(v) {
		return exec(fmt.Sprintf("UPDATE %s SET properties = json_remove(properties, ?) WHERE id = ?", table), effect,
			queryir.Value(path), queryir.VarRef(item.Variable)), nil
	}
	text, err := canonicalText(v)
	if err != nil {
		return queryir.Statement{}, err
	}
	return exec(fmt.Sprintf("UPDATE %s SET properties = json_set(properties, ?, json(?)) WHERE id = ?", table), effect,
		queryir.Value(path), queryir.Value(text), queryir.VarRef(item.Variable)), nil
}

func (t *translator) mapValue(item cypher.SetItem) (ir.IRObject, error) {
	v, err := t.resolve(item.Value)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(ir.IRObject)
	if !ok {
		return nil, newError(ErrCodeUnsupportedExpression, item.Variable,
			"SET %s needs a map, got %s", item.Variable, ir.TypeName(v))
	}
	return obj, nil
}

// setMerge compiles `v += {map}`: non-null keys are set, null keys removed.
func (t *translator) setMerge(table string, item cypher.SetItem) (queryir.Statement, error) {
	obj, err := t.mapValue(item)
	if err != nil {
		return queryir.Statement{}, err
	}
	if len(obj) == 0 {
		return queryir.Statement{}, nil
	}

	var setParts, removeParts []string
	var setArgs, removeArgs []queryir.Arg
	for _, k := range obj.SortedKeys() {
		if err := checkWritable(k); err != nil {
			return queryir.Statement{}, err
		}
		path, err := propertyPath(k)
		if err != nil {
			return queryir.Statement{}, err
		}
		if ir.IsNull(obj[k]) {
			removeParts = append(removeParts, "?")
			removeArgs = append(removeArgs, queryir.Value(path))
			continue
		}
		text, err := canonicalText(obj[k])
		if err != nil {
			return queryir.Statement{}, err
		}
		setParts = append(setParts, "?, json(?)")
		setArgs = append(setArgs, queryir.Value(path), queryir.Value(text))
	}

	expr := "properties"
	if len(setParts) > 0 {
		expr = "json_set(" + expr + ", " + strings.Join(setParts, ", ") + ")"
	}
	if len(removeParts) > 0 {
		expr = "json_remove(" + expr + ", " + strings.Join(removeParts, ", ") + ")"
	}
	args := append(setArgs, removeArgs...)
	args = append(args, queryir.VarRef(item.Variable))
	return exec(fmt.Sprintf("UPDATE %s SET properties = %s WHERE id = ?", table, expr),
		queryir.Stats{PropertiesSet: len(obj)}, args...), nil
}

// setReplace compiles `v = {map}`: the stored map is replaced wholesale.
func (t *translator) setReplace(table string, item cypher.SetItem) (queryir.Statement, error) {
	obj, err := t.mapValue(item)
	if err != nil {
		return queryir.Statement{}, err
	}
	entries := make([]propEntry, 0, len(obj))
	for _, k := range obj.SortedKeys() {
		entries = append(entries, propEntry{key: k, value: obj[k]})
	}
	text, err := serializeWritable(entries)
	if err != nil {
		return queryir.Statement{}, err
	}
	return exec(fmt.Sprintf("UPDATE %s SET properties = ? WHERE id = ?", table),
		queryir.Stats{PropertiesSet: countSet(entries)},
		queryir.Value(text), queryir.VarRef(item.Variable)), nil
}

// delete compiles DELETE: relationships first, then (for DETACH) every
// edge incident to a deleted node, then the nodes. A node that still has
// edges fails on the foreign key.
func (t *translator) delete(c *cypher.DeleteClause) error {
	var nodes, edges []string
	for _, name := range c.Variables {
		kind, err := t.lookup(name)
		if err != nil {
			return err
		}
		if kind == kindEdge {
			edges = append(edges, name)
		} else {
			nodes = append(nodes, name)
		}
	}

	for _, name := range edges {
		t.emit(exec("DELETE FROM edges WHERE id = ?", queryir.Stats{EdgesDeleted: 1}, queryir.VarRef(name)))
	}
	if c.Detach {
		for _, name := range nodes {
			t.emit(exec("DELETE FROM edges WHERE source_id = ? OR target_id = ?", queryir.Stats{EdgesDeleted: 1},
				queryir.VarRef(name), queryir.VarRef(name)))
		}
	}
	for _, name := range nodes {
		t.emit(exec("DELETE FROM nodes WHERE id = ?", queryir.Stats{NodesDeleted: 1}, queryir.VarRef(name)))
	}
	return nil
}
