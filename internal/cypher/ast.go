package cypher

import "github.com/roach88/cypherlite/internal/ir"

// Query is an ordered list of clauses, in source order.
type Query struct {
	Clauses []Clause
}

// HasReturn reports whether the query ends with a RETURN clause.
func (q *Query) HasReturn() bool {
	if len(q.Clauses) == 0 {
		return false
	}
	_, ok := q.Clauses[len(q.Clauses)-1].(*ReturnClause)
	return ok
}

// Clause is a sealed interface over the supported clause kinds.
//
// Implementations: *CreateClause, *MatchClause, *MergeClause, *SetClause,
// *DeleteClause, *ReturnClause. Consumers switch exhaustively on the
// concrete type.
type Clause interface {
	clauseNode()
}

// CreateClause creates every pattern in order.
type CreateClause struct {
	Patterns []Pattern
}

// MatchClause matches every pattern, joined on shared variables, and
// keeps only bindings for which Where (if set) holds.
type MatchClause struct {
	Patterns []Pattern
	Where    Expr
}

// MergeClause matches Pattern, creating it when no match exists.
type MergeClause struct {
	Pattern Pattern
}

// SetClause updates properties or labels of bound variables.
type SetClause struct {
	Items []SetItem
}

// DeleteClause removes bound nodes and relationships.
// Detach also removes every relationship incident to a deleted node.
type DeleteClause struct {
	Detach    bool
	Variables []string
}

// ReturnClause projects the final bindings.
type ReturnClause struct {
	Items []ReturnItem
}

func (*CreateClause) clauseNode() {}
func (*MatchClause) clauseNode()  {}
func (*MergeClause) clauseNode()  {}
func (*SetClause) clauseNode()    {}
func (*DeleteClause) clauseNode() {}
func (*ReturnClause) clauseNode() {}

// Pattern is a chain of nodes connected by relationships.
// len(Rels) is always len(Nodes)-1; Rels[i] connects Nodes[i] and Nodes[i+1].
type Pattern struct {
	Nodes []NodePattern
	Rels  []RelPattern
}

// NodePattern is `(variable:Label {props})`.
// Properties is nil, a *MapLiteral, or a *Param naming a whole map.
type NodePattern struct {
	Variable   string
	Labels     []string
	Properties Expr
}

// Label returns the first label, the only one stored.
func (n NodePattern) Label() string {
	if len(n.Labels) == 0 {
		return ""
	}
	return n.Labels[0]
}

// Direction of a relationship as written, relative to the pattern's
// left-to-right reading order.
type Direction int

const (
	DirectionBoth Direction = iota
	DirectionRight
	DirectionLeft
)

// String renders the direction as arrow syntax.
func (d Direction) String() string {
	switch d {
	case DirectionRight:
		return "->"
	case DirectionLeft:
		return "<-"
	default:
		return "--"
	}
}

// RelPattern is `-[variable:TYPE {props}]->` and its variants.
type RelPattern struct {
	Variable   string
	Type       string
	Properties Expr
	Direction  Direction
}

// SetItemKind distinguishes the forms of a SET item.
type SetItemKind int

const (
	// SetProperty is `v.key = expr`.
	SetProperty SetItemKind = iota
	// SetMerge is `v += {map}`.
	SetMerge
	// SetReplace is `v = {map}`.
	SetReplace
	// SetLabels is `v:Label`.
	SetLabels
)

// SetItem is one comma-separated element of a SET clause.
type SetItem struct {
	Kind     SetItemKind
	Variable string
	Key      string
	Labels   []string
	Value    Expr
}

// ReturnItem is one projected expression.
// Text is the expression's source text, used as the column name when no
// alias is given.
type ReturnItem struct {
	Expr  Expr
	Alias string
	Text  string
}

// Name is the output column name.
func (r ReturnItem) Name() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.Text
}

// Expr is a sealed interface over expression nodes.
type Expr interface {
	exprNode()
}

// Literal is a constant value.
type Literal struct {
	Value ir.IRValue
}

// Param is a `$name` reference, resolved at translation time.
type Param struct {
	Name string
}

// Variable references a pattern variable.
type Variable struct {
	Name string
}

// PropertyAccess is `variable.key`.
type PropertyAccess struct {
	Variable string
	Key      string
}

// FuncCall is a single-argument function call such as id(n).
type FuncCall struct {
	Name string
	Arg  Expr
}

// Comparison is a binary comparison: = <> < <= > >=.
type Comparison struct {
	Op    string
	Left  Expr
	Right Expr
}

// BinaryLogical is AND, OR or XOR.
type BinaryLogical struct {
	Op    string
	Left  Expr
	Right Expr
}

// Not negates its operand.
type Not struct {
	Expr Expr
}

// IsNull is `expr IS NULL`, or `expr IS NOT NULL` when Negated.
type IsNull struct {
	Expr    Expr
	Negated bool
}

// ListLiteral is `[a, b, ...]`.
type ListLiteral struct {
	Items []Expr
}

// MapEntry is one key/value pair of a map literal.
type MapEntry struct {
	Key   string
	Value Expr
}

// MapLiteral is `{key: value, ...}`. Entries keep source order.
type MapLiteral struct {
	Entries []MapEntry
}

func (*Literal) exprNode()        {}
func (*Param) exprNode()          {}
func (*Variable) exprNode()       {}
func (*PropertyAccess) exprNode() {}
func (*FuncCall) exprNode()       {}
func (*Comparison) exprNode()     {}
func (*BinaryLogical) exprNode()  {}
func (*Not) exprNode()            {}
func (*IsNull) exprNode()         {}
func (*ListLiteral) exprNode()    {}
func (*MapLiteral) exprNode()     {}
