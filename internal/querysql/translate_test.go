package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cypherlite/internal/cypher"
	"github.com/roach88/cypherlite/internal/ir"
	"github.com/roach88/cypherlite/internal/queryir"
)

func translate(t *testing.T, text string, params map[string]any) *queryir.TranslationResult {
	t.Helper()
	q, err := cypher.Parse(text)
	require.NoError(t, err)
	res, err := Translate(q, params)
	require.NoError(t, err)
	return res
}

func translateErr(t *testing.T, text string, params map[string]any) *TranslationError {
	t.Helper()
	q, err := cypher.Parse(text)
	require.NoError(t, err)
	res, err := Translate(q, params)
	require.Error(t, err)
	assert.Nil(t, res)

	var te *TranslationError
	require.ErrorAs(t, err, &te)
	return te
}

func v(x any) queryir.Arg { return queryir.Value(x) }
func ref(name string) queryir.Arg { return queryir.VarRef(name) }

func TestTranslate_CreateReturnID(t *testing.T) {
	res := translate(t, `CREATE (n:User {name: "Alice"}) RETURN id(n)`, nil)

	require.Len(t, res.Statements, 2)
	assert.Equal(t, queryir.Statement{
		SQL:    "INSERT INTO nodes (label, properties) VALUES (?, ?)",
		Args:   []queryir.Arg{v("User"), v(`{"name":"Alice"}`)},
		Mode:   queryir.ModeInsert,
		Shape:  queryir.ShapeBindings,
		Binds:  []string{"n"},
		Effect: queryir.Stats{NodesCreated: 1, PropertiesSet: 1},
	}, res.Statements[0])
	assert.Equal(t, queryir.Statement{
		SQL:   "SELECT p0.id, p0.properties FROM nodes p0 WHERE p0.id = ?",
		Args:  []queryir.Arg{ref("n")},
		Mode:  queryir.ModeProject,
		Shape: queryir.ShapeRows,
		Columns: []queryir.Column{
			{Name: "id(n)", Kind: queryir.ColumnID, Var: "n", Index: 0},
		},
	}, res.Statements[1])
	assert.True(t, res.HasReturn)
	assert.Equal(t, []string{"id(n)"}, res.Columns)
}

func TestTranslate_CreateWithoutLabelStoresNull(t *testing.T) {
	res := translate(t, `CREATE ()`, nil)

	require.Len(t, res.Statements, 1)
	assert.Equal(t, []queryir.Arg{v(nil), v("{}")}, res.Statements[0].Args)
	assert.Equal(t, []string{"#n1"}, res.Statements[0].Binds)
	assert.False(t, res.HasReturn)
}

func TestTranslate_CreatePropertiesFromParam(t *testing.T) {
	res := translate(t, `CREATE (n:User $props)`, map[string]any{
		"props": map[string]any{"name": "Bob", "age": 41, "gone": nil},
	})

	assert.Equal(t, v(`{"age":41,"name":"Bob"}`), res.Statements[0].Args[1])
	assert.Equal(t, 2, res.Statements[0].Effect.PropertiesSet)
}

func TestTranslate_CreateRelationship(t *testing.T) {
	res := translate(t, `CREATE (a:User)<-[:FOLLOWS {since: 2020}]-(b:User)`, nil)

	require.Len(t, res.Statements, 3)
	assert.Equal(t, queryir.Statement{
		SQL:    "INSERT INTO edges (source_id, target_id, type, properties) VALUES (?, ?, ?, ?)",
		Args:   []queryir.Arg{ref("b"), ref("a"), v("FOLLOWS"), v(`{"since":2020}`)},
		Mode:   queryir.ModeInsert,
		Shape:  queryir.ShapeBindings,
		Binds:  []string{"#r1"},
		Effect: queryir.Stats{EdgesCreated: 1, PropertiesSet: 1},
	}, res.Statements[2])
}

func TestTranslate_CreateReusesBoundNodes(t *testing.T) {
	res := translate(t, `MATCH (a:User), (b:User) CREATE (a)-[:KNOWS]->(b)`, nil)

	require.Len(t, res.Statements, 2)
	assert.Equal(t, queryir.ModeExpand, res.Statements[0].Mode)
	assert.Equal(t, []queryir.Arg{ref("a"), ref("b"), v("KNOWS"), v("{}")}, res.Statements[1].Args)
}

func TestTranslate_MatchNodeWithProperties(t *testing.T) {
	res := translate(t, `MATCH (n:User {name: $name}) RETURN n`, map[string]any{"name": "Alice"})

	require.Len(t, res.Statements, 2)
	assert.Equal(t, queryir.Statement{
		SQL: "SELECT n0.id FROM nodes n0 WHERE n0.label = ? AND " +
			"(json_type(n0.properties, ?) = ? AND json_extract(n0.properties, ?) = ?) ORDER BY n0.id",
		Args:  []queryir.Arg{v("User"), v(`$."name"`), v("text"), v(`$."name"`), v("Alice")},
		Mode:  queryir.ModeExpand,
		Shape: queryir.ShapeBindings,
		Binds: []string{"n"},
	}, res.Statements[0])

	project := res.Statements[1]
	assert.True(t, project.Flat)
	assert.Equal(t, []queryir.Column{{Name: "n", Kind: queryir.ColumnNode, Var: "n", Index: 0}}, project.Columns)
}

func TestTranslate_MatchPropertyKinds(t *testing.T) {
	tests := []struct {
		name string
		prop string
		sql  string
		args []queryir.Arg
	}{
		{
			name: "integer",
			prop: `{age: 30}`,
			sql:  "(json_type(n0.properties, ?) IN (?, ?) AND json_extract(n0.properties, ?) = ?)",
			args: []queryir.Arg{v(`$."age"`), v("integer"), v("real"), v(`$."age"`), v(int64(30))},
		},
		{
			name: "boolean",
			prop: `{active: true}`,
			sql:  "json_type(n0.properties, ?) = ?",
			args: []queryir.Arg{v(`$."active"`), v("true")},
		},
		{
			name: "null",
			prop: `{deleted: null}`,
			sql:  "json_type(n0.properties, ?) IS NULL",
			args: []queryir.Arg{v(`$."deleted"`)},
		},
		{
			name: "list",
			prop: `{tags: ["a", 1.0]}`,
			sql:  "(json_type(n0.properties, ?) = ? AND json_extract(n0.properties, ?) = json(?))",
			args: []queryir.Arg{v(`$."tags"`), v("array"), v(`$."tags"`), v(`["a",1.0]`)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := translate(t, `MATCH (n `+tc.prop+`) RETURN id(n)`, nil)
			assert.Equal(t, "SELECT n0.id FROM nodes n0 WHERE "+tc.sql+" ORDER BY n0.id", res.Statements[0].SQL)
			assert.Equal(t, tc.args, res.Statements[0].Args)
		})
	}
}

func TestTranslate_MatchRelationshipDirections(t *testing.T) {
	const from = "SELECT n0.id, n1.id, e2.id FROM nodes n0, nodes n1, edges e2 WHERE n0.label = ? AND e2.type = ? AND "
	const order = " ORDER BY n0.id, n1.id, e2.id"

	tests := []struct {
		text string
		join string
	}{
		{
			`MATCH (a:User)-[r:KNOWS]->(b) RETURN b.name`,
			"e2.source_id = n0.id AND e2.target_id = n1.id",
		},
		{
			`MATCH (a:User)<-[r:KNOWS]-(b) RETURN b.name`,
			"e2.source_id = n1.id AND e2.target_id = n0.id",
		},
		{
			`MATCH (a:User)-[r:KNOWS]-(b) RETURN b.name`,
			"((e2.source_id = n0.id AND e2.target_id = n1.id) OR (e2.source_id = n1.id AND e2.target_id = n0.id))",
		},
	}

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			res := translate(t, tc.text, nil)
			st := res.Statements[0]
			assert.Equal(t, from+tc.join+order, st.SQL)
			assert.Equal(t, []queryir.Arg{v("User"), v("KNOWS")}, st.Args)
			assert.Equal(t, []string{"a", "b", "r"}, st.Binds)

			project := res.Statements[1]
			assert.Equal(t, []queryir.Column{
				{Name: "b.name", Kind: queryir.ColumnProperty, Var: "b", Key: "name", Index: 0},
			}, project.Columns)
			assert.False(t, project.Flat)
		})
	}
}

func TestTranslate_MatchAnonymousNodesAreNotBound(t *testing.T) {
	res := translate(t, `MATCH (:User)-->(b) RETURN b`, nil)

	assert.Equal(t, []string{"b"}, res.Statements[0].Binds)
	assert.Equal(t, "SELECT n1.id FROM nodes n0, nodes n1, edges e2 WHERE n0.label = ? AND "+
		"e2.source_id = n0.id AND e2.target_id = n1.id ORDER BY n0.id, n1.id, e2.id", res.Statements[0].SQL)
}

func TestTranslate_WhereID(t *testing.T) {
	res := translate(t, `MATCH (n:User) WHERE id(n) = 5 RETURN n`, nil)

	st := res.Statements[0]
	assert.Equal(t, "SELECT n0.id FROM nodes n0 WHERE n0.label = ? AND (n0.id = ?) ORDER BY n0.id", st.SQL)
	assert.Equal(t, []queryir.Arg{v("User"), v(int64(5))}, st.Args)
}

func TestTranslate_WhereLogic(t *testing.T) {
	res := translate(t, `MATCH (n) WHERE NOT n.a > 1 OR n.b IS NULL XOR n.c <> 'x' RETURN n`, nil)

	st := res.Statements[0]
	assert.Equal(t, "SELECT n0.id FROM nodes n0 WHERE "+
		"((NOT (json_extract(n0.properties, ?) > ?)) OR "+
		"(((json_extract(n0.properties, ?) IS NULL)) <> "+
		"((json_type(n0.properties, ?) IS NOT NULL AND NOT ((json_type(n0.properties, ?) = ? AND json_extract(n0.properties, ?) = ?)))))) ORDER BY n0.id", st.SQL)
	assert.Equal(t, []queryir.Arg{
		v(`$."a"`), v(int64(1)), v(`$."b"`),
		v(`$."c"`), v(`$."c"`), v("text"), v(`$."c"`), v("x"),
	}, st.Args)
}

func TestTranslate_WhereEqualityChecksStoredType(t *testing.T) {
	const col = "n0.properties"
	tests := []struct {
		name string
		text string
		sql  string
		args []queryir.Arg
	}{
		{
			"bool constant",
			`MATCH (n) WHERE n.v = true RETURN n`,
			"json_type(" + col + ", ?) = ?",
			[]queryir.Arg{v(`$."v"`), v("true")},
		},
		{
			"constant on the left",
			`MATCH (n) WHERE false = n.v RETURN n`,
			"json_type(" + col + ", ?) = ?",
			[]queryir.Arg{v(`$."v"`), v("false")},
		},
		{
			"integer constant",
			`MATCH (n) WHERE n.v = 1 RETURN n`,
			"(json_type(" + col + ", ?) IN (?, ?) AND json_extract(" + col + ", ?) = ?)",
			[]queryir.Arg{v(`$."v"`), v("integer"), v("real"), v(`$."v"`), v(int64(1))},
		},
		{
			"not equal bool",
			`MATCH (n) WHERE n.v <> true RETURN n`,
			"(json_type(" + col + ", ?) IS NOT NULL AND NOT (json_type(" + col + ", ?) = ?))",
			[]queryir.Arg{v(`$."v"`), v(`$."v"`), v("true")},
		},
		{
			"null keeps sql semantics",
			`MATCH (n) WHERE n.v = null RETURN n`,
			"(json_extract(" + col + ", ?) = NULL)",
			[]queryir.Arg{v(`$."v"`)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := translate(t, tc.text, nil)
			st := res.Statements[0]
			assert.Equal(t, "SELECT n0.id FROM nodes n0 WHERE "+tc.sql+" ORDER BY n0.id", st.SQL)
			assert.Equal(t, tc.args, st.Args)
		})
	}
}

func TestTranslate_StringsAreNormalized(t *testing.T) {
	decomposed := "Jose\u0301"
	composed := "Jos\u00e9"

	res := translate(t, `CREATE (n:User {name: $name})`, map[string]any{"name": decomposed})
	assert.Equal(t, []queryir.Arg{v("User"), v(`{"name":"` + composed + `"}`)}, res.Statements[0].Args)

	res = translate(t, `MATCH (n:User {name: $name}) WHERE n.name = 'Jose\u0301' RETURN n`, map[string]any{"name": decomposed})
	args := res.Statements[0].Args
	assert.Equal(t, v(composed), args[4])
	assert.Equal(t, v(composed), args[len(args)-1])
}

func TestTranslate_WhereJoinsEarlierVariable(t *testing.T) {
	res := translate(t, `MATCH (a:User) MATCH (b:User) WHERE a.age = b.age RETURN b`, nil)

	require.Len(t, res.Statements, 3)
	st := res.Statements[1]
	assert.Equal(t, "SELECT n0.id FROM nodes n0, nodes n1 WHERE n0.label = ? AND n1.id = ? AND "+
		"(json_extract(n1.properties, ?) = json_extract(n0.properties, ?)) ORDER BY n0.id, n1.id", st.SQL)
	assert.Equal(t, []queryir.Arg{v("User"), ref("a"), v(`$."age"`), v(`$."age"`)}, st.Args)
	assert.Equal(t, []string{"b"}, st.Binds)
}

func TestTranslate_MatchOnlyBoundVariables(t *testing.T) {
	res := translate(t, `MATCH (a) MATCH (a)-->(:Tag) RETURN a`, nil)

	st := res.Statements[1]
	assert.Empty(t, st.Binds)
	assert.Equal(t, "SELECT 1 FROM nodes n0, nodes n1, edges e2 WHERE n0.id = ? AND n1.label = ? AND "+
		"e2.source_id = n0.id AND e2.target_id = n1.id ORDER BY n0.id, n1.id, e2.id", st.SQL)
}

func TestTranslate_SetProperty(t *testing.T) {
	res := translate(t, `MATCH (n) WHERE id(n) = 1 SET n.b = 2, n.c = null`, nil)

	require.Len(t, res.Statements, 3)
	assert.Equal(t, queryir.Statement{
		SQL:    "UPDATE nodes SET properties = json_set(properties, ?, json(?)) WHERE id = ?",
		Args:   []queryir.Arg{v(`$."b"`), v("2"), ref("n")},
		Mode:   queryir.ModeExec,
		Shape:  queryir.ShapeNone,
		Effect: queryir.Stats{PropertiesSet: 1},
	}, res.Statements[1])
	assert.Equal(t, "UPDATE nodes SET properties = json_remove(properties, ?) WHERE id = ?", res.Statements[2].SQL)
	assert.Equal(t, []queryir.Arg{v(`$."c"`), ref("n")}, res.Statements[2].Args)
}

func TestTranslate_SetMergeReplaceAndLabels(t *testing.T) {
	res := translate(t, `MATCH (n)-[r]->() SET n += {b: 2.0, a: 'x', z: null}, r = {w: 1}, n:Admin`, nil)

	require.Len(t, res.Statements, 4)
	assert.Equal(t,
		"UPDATE nodes SET properties = json_remove(json_set(properties, ?, json(?), ?, json(?)), ?) WHERE id = ?",
		res.Statements[1].SQL)
	assert.Equal(t, []queryir.Arg{v(`$."a"`), v(`"x"`), v(`$."b"`), v("2.0"), v(`$."z"`), ref("n")}, res.Statements[1].Args)
	assert.Equal(t, 3, res.Statements[1].Effect.PropertiesSet)

	assert.Equal(t, "UPDATE edges SET properties = ? WHERE id = ?", res.Statements[2].SQL)
	assert.Equal(t, []queryir.Arg{v(`{"w":1}`), ref("r")}, res.Statements[2].Args)

	assert.Equal(t, "UPDATE nodes SET label = ? WHERE id = ?", res.Statements[3].SQL)
	assert.Equal(t, []queryir.Arg{v("Admin"), ref("n")}, res.Statements[3].Args)
}

func TestTranslate_Delete(t *testing.T) {
	res := translate(t, `MATCH (a)-[r]->(b) DELETE r, b`, nil)

	require.Len(t, res.Statements, 3)
	assert.Equal(t, "DELETE FROM edges WHERE id = ?", res.Statements[1].SQL)
	assert.Equal(t, []queryir.Arg{ref("r")}, res.Statements[1].Args)
	assert.Equal(t, "DELETE FROM nodes WHERE id = ?", res.Statements[2].SQL)
	assert.Equal(t, queryir.Stats{NodesDeleted: 1}, res.Statements[2].Effect)
}

func TestTranslate_DetachDelete(t *testing.T) {
	res := translate(t, `MATCH (n:User) WHERE n.name = 'A' DETACH DELETE n`, nil)

	require.Len(t, res.Statements, 3)
	assert.Equal(t, "DELETE FROM edges WHERE source_id = ? OR target_id = ?", res.Statements[1].SQL)
	assert.Equal(t, []queryir.Arg{ref("n"), ref("n")}, res.Statements[1].Args)
	assert.Equal(t, "DELETE FROM nodes WHERE id = ?", res.Statements[2].SQL)
}

func TestTranslate_MergeNode(t *testing.T) {
	res := translate(t, `MERGE (t:Tag {name: "go"})`, nil)

	require.Len(t, res.Statements, 2)
	lookup := res.Statements[0]
	assert.True(t, lookup.Optional)
	assert.Equal(t, []string{"t"}, lookup.Binds)
	assert.Equal(t, "SELECT n0.id FROM nodes n0 WHERE n0.label = ? AND "+
		"(json_type(n0.properties, ?) = ? AND json_extract(n0.properties, ?) = ?) ORDER BY n0.id", lookup.SQL)

	insert := res.Statements[1]
	assert.Equal(t, queryir.ModeInsert, insert.Mode)
	assert.Equal(t, "t", insert.SkipIfBound)
	assert.Equal(t, []queryir.Arg{v("Tag"), v(`{"name":"go"}`)}, insert.Args)
	assert.Equal(t, 1, lookup.Group)
	assert.Equal(t, 1, insert.Group)
}

func TestTranslate_MergeGroupsAreDistinct(t *testing.T) {
	res := translate(t, `MATCH (u:User) MERGE (c:Config {k: 1}) MERGE (u)-[:USES]->(c)`, nil)

	require.Len(t, res.Statements, 5)
	groups := make([]int, len(res.Statements))
	for i, st := range res.Statements {
		groups[i] = st.Group
	}
	assert.Equal(t, []int{0, 1, 1, 2, 2}, groups)
}

func TestTranslate_MergeRelationshipBetweenBoundNodes(t *testing.T) {
	res := translate(t, `MATCH (a:User {name: 'A'}), (b:User {name: 'B'}) MERGE (a)-[:REL]->(b)`, nil)

	require.Len(t, res.Statements, 3)
	assert.Equal(t, queryir.Statement{
		SQL: "SELECT e2.id FROM nodes n0, nodes n1, edges e2 WHERE n0.id = ? AND n1.id = ? AND e2.type = ? AND " +
			"e2.source_id = n0.id AND e2.target_id = n1.id ORDER BY n0.id, n1.id, e2.id",
		Args:     []queryir.Arg{ref("a"), ref("b"), v("REL")},
		Mode:     queryir.ModeExpand,
		Optional: true,
		Shape:    queryir.ShapeBindings,
		Binds:    []string{"#r1"},
		Group:    1,
	}, res.Statements[1])
	assert.Equal(t, queryir.Statement{
		SQL:         "INSERT INTO edges (source_id, target_id, type, properties) VALUES (?, ?, ?, ?)",
		Args:        []queryir.Arg{ref("a"), ref("b"), v("REL"), v("{}")},
		Mode:        queryir.ModeInsert,
		Shape:       queryir.ShapeBindings,
		Binds:       []string{"#r1"},
		SkipIfBound: "#r1",
		Effect:      queryir.Stats{EdgesCreated: 1},
		Group:       1,
	}, res.Statements[2])
}

func TestTranslate_MergeRelationshipCreatesUnboundEndpoints(t *testing.T) {
	res := translate(t, `MATCH (a:User) MERGE (a)-[r:OWNS]-(c:Car {model: 'T'})`, nil)

	require.Len(t, res.Statements, 4)
	lookup := res.Statements[1]
	assert.Equal(t, []string{"c", "r"}, lookup.Binds)
	assert.True(t, lookup.Optional)

	car := res.Statements[2]
	assert.Equal(t, []string{"c"}, car.Binds)
	assert.Equal(t, "r", car.SkipIfBound)
	assert.Equal(t, []queryir.Arg{v("Car"), v(`{"model":"T"}`)}, car.Args)

	edge := res.Statements[3]
	assert.Equal(t, "r", edge.SkipIfBound)
	// Undirected MERGE creates left to right
	assert.Equal(t, []queryir.Arg{ref("a"), ref("c"), v("OWNS"), v("{}")}, edge.Args)
}

func TestTranslate_MergeBoundNodeIsNoop(t *testing.T) {
	res := translate(t, `MATCH (a) MERGE (a) RETURN a`, nil)

	require.Len(t, res.Statements, 2)
	assert.Equal(t, queryir.ModeExpand, res.Statements[0].Mode)
	assert.Equal(t, queryir.ModeProject, res.Statements[1].Mode)
}

func TestTranslate_ReturnShapes(t *testing.T) {
	res := translate(t, `MATCH (a)-[r]->(b) RETURN a, r AS rel, a.name AS name, id(b), 'k' AS kind`, nil)

	project := res.Statements[1]
	assert.Equal(t, "SELECT p0.id, p0.properties, p1.id, p1.properties, p2.id, p2.properties "+
		"FROM nodes p0, edges p1, nodes p2 WHERE p0.id = ? AND p1.id = ? AND p2.id = ?", project.SQL)
	assert.Equal(t, []queryir.Arg{ref("a"), ref("r"), ref("b")}, project.Args)
	assert.Equal(t, []queryir.Column{
		{Name: "a", Kind: queryir.ColumnNode, Var: "a", Index: 0},
		{Name: "rel", Kind: queryir.ColumnEdge, Var: "r", Index: 2},
		{Name: "name", Kind: queryir.ColumnProperty, Var: "a", Key: "name", Index: 0},
		{Name: "id(b)", Kind: queryir.ColumnID, Var: "b", Index: 4},
		{Name: "kind", Kind: queryir.ColumnLiteral, Value: ir.IRString("k")},
	}, project.Columns)
	assert.False(t, project.Flat)
	assert.Equal(t, []string{"a", "rel", "name", "id(b)", "kind"}, res.Columns)
}

func TestTranslate_ReturnAliasedVariableIsNotFlat(t *testing.T) {
	res := translate(t, `MATCH (n) RETURN n AS person`, nil)
	assert.False(t, res.Statements[1].Flat)
}

func TestTranslate_ReturnLiteralsOnly(t *testing.T) {
	res := translate(t, `RETURN 1 AS one, $p AS p`, map[string]any{"p": []any{"x"}})

	require.Len(t, res.Statements, 1)
	st := res.Statements[0]
	assert.Empty(t, st.SQL)
	assert.Empty(t, st.Args)
	assert.Equal(t, ir.IRArray{ir.IRString("x")}, st.Columns[1].Value)
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		params map[string]any
		code   ErrorCode
		ident  string
	}{
		{"unbound parameter", `MATCH (n:User {name: $missing}) RETURN n`, nil, ErrCodeUnboundParameter, "missing"},
		{"unbound in where", `MATCH (n) WHERE n.a = $x RETURN n`, map[string]any{"y": 1}, ErrCodeUnboundParameter, "x"},
		{"invalid parameter", `RETURN $x`, map[string]any{"x": struct{}{}}, ErrCodeInvalidParameter, "x"},
		{"map parameter not map", `CREATE (n $props)`, map[string]any{"props": "x"}, ErrCodeInvalidParameter, "props"},
		{"unknown return variable", `MATCH (n) RETURN m`, nil, ErrCodeUnknownVariable, "m"},
		{"unknown set variable", `MATCH (n) SET m.x = 1`, nil, ErrCodeUnknownVariable, "m"},
		{"unknown delete variable", `MATCH (n) DELETE m`, nil, ErrCodeUnknownVariable, "m"},
		{"edge used as node", `MATCH (a)-[r]->(b) MATCH (r) RETURN r`, nil, ErrCodeVariableKind, "r"},
		{"node used as edge", `MATCH (a), (b) MATCH (a)-[b]->() RETURN a`, nil, ErrCodeVariableKind, "b"},
		{"labels on edge", `MATCH ()-[r]->() SET r:X`, nil, ErrCodeVariableKind, "r"},
		{"create redeclares", `MATCH (n) CREATE (n:User)`, nil, ErrCodeAlreadyBound, "n"},
		{"merge redeclares", `MATCH (n) MERGE (n {a: 1})`, nil, ErrCodeAlreadyBound, "n"},
		{"create bound relationship", `MATCH (a)-[r]->(b) CREATE (a)-[r:X]->(b)`, nil, ErrCodeAlreadyBound, "r"},
		{"long pattern", `MATCH (a)-->(b)-->(c) RETURN a`, nil, ErrCodeUnsupportedPattern, ""},
		{"undirected create", `CREATE (a)-[:R]-(b)`, nil, ErrCodeUnsupportedPattern, ""},
		{"untyped create", `CREATE (a)-[]->(b)`, nil, ErrCodeUnsupportedPattern, ""},
		{"untyped merge", `MERGE (a)-->(b)`, nil, ErrCodeUnsupportedPattern, ""},
		{"set from property", `MATCH (n) SET n.x = n.y`, nil, ErrCodeUnsupportedExpression, ""},
		{"merge non-map", `MATCH (n) SET n += 5`, nil, ErrCodeUnsupportedExpression, "n"},
		{"unknown function", `MATCH (n) RETURN count(n)`, nil, ErrCodeUnsupportedExpression, "count"},
		{"id of property", `MATCH (n) WHERE id(n.x) = 1 RETURN n`, nil, ErrCodeUnsupportedExpression, ""},
		{"duplicate column", `MATCH (n) RETURN n, n`, nil, ErrCodeUnsupportedExpression, "n"},
		{"comparison in return", `MATCH (n) RETURN n.a = 1`, nil, ErrCodeUnsupportedExpression, ""},
		{"create id property", `CREATE (a {id: 'custom'})`, nil, ErrCodeReservedProperty, "id"},
		{"create id from map parameter", `CREATE (a $props)`, map[string]any{"props": map[string]any{"id": 1}}, ErrCodeReservedProperty, "id"},
		{"merge id property", `MERGE (a:T {id: 1})`, nil, ErrCodeReservedProperty, "id"},
		{"relationship id property", `CREATE (a)-[:R {id: 1}]->(b)`, nil, ErrCodeReservedProperty, "id"},
		{"set id", `MATCH (n) SET n.id = 1`, nil, ErrCodeReservedProperty, "id"},
		{"set merge id", `MATCH (n) SET n += {id: 1}`, nil, ErrCodeReservedProperty, "id"},
		{"set replace id", `MATCH (n) SET n = {id: 1}`, nil, ErrCodeReservedProperty, "id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			te := translateErr(t, tc.text, tc.params)
			assert.Equal(t, tc.code, te.Code, te.Message)
			assert.Equal(t, tc.ident, te.Name)
		})
	}
}

func TestTranslate_UnboundParameterMessageNamesIt(t *testing.T) {
	te := translateErr(t, `MATCH (n:User {name: $missing}) RETURN n`, map[string]any{})

	assert.Contains(t, te.Error(), "missing")
	assert.True(t, IsUnboundParameter(te))
	assert.True(t, IsTranslationError(te))
}

func TestTranslate_Deterministic(t *testing.T) {
	text := `MATCH (a:User {name: $name}), (b $props) WHERE a.age > $age MERGE (a)-[:KNOWS]->(b) SET b += $extra RETURN a, b.name`
	params := map[string]any{
		"name":  "Alice",
		"age":   30,
		"props": map[string]any{"z": 1, "a": 2, "m": 3},
		"extra": map[string]any{"k3": true, "k1": 1.5, "k2": nil},
	}

	first := translate(t, text, params)
	fp1, err := first.Fingerprint()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again := translate(t, text, params)
		assert.Equal(t, first, again)
		fp, err := again.Fingerprint()
		require.NoError(t, err)
		assert.Equal(t, fp1, fp)
	}
}

func TestTranslate_NilQuery(t *testing.T) {
	_, err := Translate(nil, nil)
	assert.Error(t, err)
	assert.False(t, IsTranslationError(err))
}
