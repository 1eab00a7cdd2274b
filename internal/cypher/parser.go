package cypher

import (
	"fmt"
	"strings"

	"github.com/roach88/cypherlite/internal/ir"
)

// Parse parses query text into a Query.
//
// On failure the error is always a *ParseError and the returned query is
// nil. Parsing stops at the first unexpected token; there is no recovery.
func Parse(text string) (*Query, error) {
	p := &parser{lex: NewLexer(text)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	return q, nil
}

type parser struct {
	lex  *Lexer
	tok  Token // current, not yet consumed
	prev Token // most recently consumed
}

func (p *parser) advance() *ParseError {
	p.prev = p.tok
	tok, err := p.lex.Next()
	if err != nil {
		return err.(*ParseError)
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(tok Token, format string, args ...any) *ParseError {
	return newParseError(tok.Pos, format, args...)
}

func (p *parser) unexpected(expected string) *ParseError {
	return p.errorf(p.tok, "expected %s, got %s", expected, p.tok.describe())
}

func (p *parser) expect(punct string) *ParseError {
	if !p.tok.Is(punct) {
		return p.unexpected(fmt.Sprintf("'%s'", punct))
	}
	return p.advance()
}

func (p *parser) expectIdent(what string) (string, *ParseError) {
	if p.tok.Kind != TokenIdent {
		return "", p.unexpected(what)
	}
	name := p.tok.Text
	return name, p.advance()
}

// expectName accepts an identifier or a keyword used as a name, as in
// labels, relationship types and property keys.
func (p *parser) expectName(what string) (string, *ParseError) {
	if p.tok.Kind != TokenIdent && p.tok.Kind != TokenKeyword {
		return "", p.unexpected(what)
	}
	name := p.tok.Text
	return name, p.advance()
}

func (p *parser) atClauseStart() bool {
	return p.tok.Kind == TokenKeyword && clauseKeywords[p.tok.Keyword]
}

func (p *parser) parseQuery() (*Query, *ParseError) {
	q := &Query{}
	for p.tok.Kind != TokenEOF && !p.tok.Is(";") {
		if q.HasReturn() {
			return nil, p.errorf(p.tok, "RETURN must be the last clause, got %s", p.tok.describe())
		}
		clause, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		q.Clauses = append(q.Clauses, clause)
	}
	if len(q.Clauses) == 0 {
		return nil, p.unexpected("a clause (CREATE, MATCH, MERGE, SET, DELETE, RETURN)")
	}
	if p.tok.Is(";") {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.tok.Kind != TokenEOF {
		return nil, p.unexpected("end of input")
	}
	return q, nil
}

func (p *parser) parseClause() (Clause, *ParseError) {
	if !p.atClauseStart() {
		return nil, p.unexpected("a clause (CREATE, MATCH, MERGE, SET, DELETE, RETURN)")
	}
	kw := p.tok.Keyword
	if err := p.advance(); err != nil {
		return nil, err
	}

	var (
		clause Clause
		err    *ParseError
	)
	switch kw {
	case "CREATE":
		clause, err = p.parseCreate()
	case "MATCH":
		clause, err = p.parseMatch()
	case "MERGE":
		clause, err = p.parseMerge()
	case "SET":
		clause, err = p.parseSet()
	case "DETACH":
		if !p.tok.IsKeyword("DELETE") {
			return nil, p.unexpected("DELETE after DETACH")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		clause, err = p.parseDelete(true)
	case "DELETE":
		clause, err = p.parseDelete(false)
	case "RETURN":
		clause, err = p.parseReturn()
	}
	if err != nil {
		return nil, err
	}

	if p.tok.Kind != TokenEOF && !p.tok.Is(";") && !p.atClauseStart() {
		return nil, p.unexpected("a clause keyword, ';' or end of input")
	}
	return clause, nil
}

func (p *parser) parseCreate() (*CreateClause, *ParseError) {
	patterns, err := p.parsePatterns()
	if err != nil {
		return nil, err
	}
	return &CreateClause{Patterns: patterns}, nil
}

func (p *parser) parseMatch() (*MatchClause, *ParseError) {
	patterns, err := p.parsePatterns()
	if err != nil {
		return nil, err
	}
	m := &MatchClause{Patterns: patterns}
	if p.tok.IsKeyword("WHERE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		m.Where = where
	}
	return m, nil
}

func (p *parser) parseMerge() (*MergeClause, *ParseError) {
	pattern, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	return &MergeClause{Pattern: pattern}, nil
}

func (p *parser) parseSet() (*SetClause, *ParseError) {
	s := &SetClause{}
	for {
		item, err := p.parseSetItem()
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
		if !p.tok.Is(",") {
			return s, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseSetItem() (SetItem, *ParseError) {
	name, err := p.expectIdent("a variable")
	if err != nil {
		return SetItem{}, err
	}
	item := SetItem{Variable: name}

	switch {
	case p.tok.Is("."):
		if err := p.advance(); err != nil {
			return SetItem{}, err
		}
		key, err := p.expectName("a property key")
		if err != nil {
			return SetItem{}, err
		}
		if err := p.expect("="); err != nil {
			return SetItem{}, err
		}
		item.Kind = SetProperty
		item.Key = key
	case p.tok.Is("+="):
		item.Kind = SetMerge
		if err := p.advance(); err != nil {
			return SetItem{}, err
		}
	case p.tok.Is("="):
		item.Kind = SetReplace
		if err := p.advance(); err != nil {
			return SetItem{}, err
		}
	case p.tok.Is(":"):
		item.Kind = SetLabels
		labels, err := p.parseLabels()
		if err != nil {
			return SetItem{}, err
		}
		item.Labels = labels
		return item, nil
	default:
		return SetItem{}, p.unexpected("'.', '=', '+=' or ':' in SET item")
	}

	value, err := p.parseExpr()
	if err != nil {
		return SetItem{}, err
	}
	item.Value = value
	return item, nil
}

func (p *parser) parseDelete(detach bool) (*DeleteClause, *ParseError) {
	d := &DeleteClause{Detach: detach}
	for {
		name, err := p.expectIdent("a variable")
		if err != nil {
			return nil, err
		}
		d.Variables = append(d.Variables, name)
		if !p.tok.Is(",") {
			return d, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseReturn() (*ReturnClause, *ParseError) {
	r := &ReturnClause{}
	for {
		start := p.tok.Pos.Offset
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		item := ReturnItem{Expr: expr, Text: p.lex.slice(start, p.prev.End)}
		if p.tok.IsKeyword("AS") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			alias, err := p.expectIdent("an alias")
			if err != nil {
				return nil, err
			}
			item.Alias = alias
		}
		r.Items = append(r.Items, item)
		if !p.tok.Is(",") {
			return r, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parsePatterns() ([]Pattern, *ParseError) {
	var patterns []Pattern
	for {
		pattern, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pattern)
		if !p.tok.Is(",") {
			return patterns, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parsePattern() (Pattern, *ParseError) {
	node, err := p.parseNode()
	if err != nil {
		return Pattern{}, err
	}
	pattern := Pattern{Nodes: []NodePattern{node}}
	for p.tok.Is("-") || p.tok.Is("<") {
		rel, err := p.parseRel()
		if err != nil {
			return Pattern{}, err
		}
		node, err := p.parseNode()
		if err != nil {
			return Pattern{}, err
		}
		pattern.Rels = append(pattern.Rels, rel)
		pattern.Nodes = append(pattern.Nodes, node)
	}
	return pattern, nil
}

func (p *parser) parseNode() (NodePattern, *ParseError) {
	if err := p.expect("("); err != nil {
		return NodePattern{}, err
	}
	var node NodePattern
	if p.tok.Kind == TokenIdent {
		node.Variable = p.tok.Text
		if err := p.advance(); err != nil {
			return NodePattern{}, err
		}
	}
	if p.tok.Is(":") {
		labels, err := p.parseLabels()
		if err != nil {
			return NodePattern{}, err
		}
		node.Labels = labels
	}
	if p.tok.Is("{") || p.tok.Kind == TokenParam {
		props, err := p.parseProperties()
		if err != nil {
			return NodePattern{}, err
		}
		node.Properties = props
	}
	if err := p.expect(")"); err != nil {
		return NodePattern{}, err
	}
	return node, nil
}

func (p *parser) parseLabels() ([]string, *ParseError) {
	var labels []string
	for p.tok.Is(":") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		label, err := p.expectName("a label")
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}

func (p *parser) parseRel() (RelPattern, *ParseError) {
	var rel RelPattern
	left := p.tok.Is("<")
	if left {
		if err := p.advance(); err != nil {
			return RelPattern{}, err
		}
	}
	if err := p.expect("-"); err != nil {
		return RelPattern{}, err
	}

	if p.tok.Is("[") {
		if err := p.advance(); err != nil {
			return RelPattern{}, err
		}
		if p.tok.Kind == TokenIdent {
			rel.Variable = p.tok.Text
			if err := p.advance(); err != nil {
				return RelPattern{}, err
			}
		}
		if p.tok.Is(":") {
			if err := p.advance(); err != nil {
				return RelPattern{}, err
			}
			typ, err := p.expectName("a relationship type")
			if err != nil {
				return RelPattern{}, err
			}
			rel.Type = typ
		}
		if p.tok.Is("{") || p.tok.Kind == TokenParam {
			props, err := p.parseProperties()
			if err != nil {
				return RelPattern{}, err
			}
			rel.Properties = props
		}
		if err := p.expect("]"); err != nil {
			return RelPattern{}, err
		}
	}

	if err := p.expect("-"); err != nil {
		return RelPattern{}, err
	}
	switch {
	case p.tok.Is(">"):
		if left {
			return RelPattern{}, p.errorf(p.tok, "relationship cannot point in both directions")
		}
		rel.Direction = DirectionRight
		if err := p.advance(); err != nil {
			return RelPattern{}, err
		}
	case left:
		rel.Direction = DirectionLeft
	default:
		rel.Direction = DirectionBoth
	}
	return rel, nil
}

// parseProperties parses a pattern property map: a map literal or a
// parameter holding a whole map.
func (p *parser) parseProperties() (Expr, *ParseError) {
	if p.tok.Kind == TokenParam {
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Param{Name: name}, nil
	}
	return p.parseMap()
}

func (p *parser) parseMap() (*MapLiteral, *ParseError) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	m := &MapLiteral{}
	if p.tok.Is("}") {
		return m, p.advance()
	}
	seen := make(map[string]bool)
	for {
		keyTok := p.tok
		var key string
		switch p.tok.Kind {
		case TokenIdent, TokenKeyword, TokenString:
			key = p.tok.Text
		default:
			return nil, p.unexpected("a property key")
		}
		if seen[key] {
			return nil, p.errorf(keyTok, "duplicate property key %q", key)
		}
		seen[key] = true
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, MapEntry{Key: key, Value: value})

		switch {
		case p.tok.Is(","):
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.tok.Is("}"):
			return m, p.advance()
		default:
			return nil, p.unexpected("',' or '}' in map")
		}
	}
}

// Expression grammar, loosest binding first:
//
//	OR, XOR, AND, NOT, comparison / IS [NOT] NULL, property access, atom
func (p *parser) parseExpr() (Expr, *ParseError) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, *ParseError) {
	return p.parseLogical("OR", p.parseXor)
}

func (p *parser) parseXor() (Expr, *ParseError) {
	return p.parseLogical("XOR", p.parseAnd)
}

func (p *parser) parseAnd() (Expr, *ParseError) {
	return p.parseLogical("AND", p.parseNot)
}

func (p *parser) parseLogical(op string, next func() (Expr, *ParseError)) (Expr, *ParseError) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.tok.IsKeyword(op) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryLogical{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Expr, *ParseError) {
	if p.tok.IsKeyword("NOT") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Not{Expr: inner}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[string]bool{
	"=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true,
}

func (p *parser) parseComparison() (Expr, *ParseError) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind == TokenPunct && comparisonOps[p.tok.Text] {
		op := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = &Comparison{Op: op, Left: left, Right: right}
	}
	if p.tok.IsKeyword("IS") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		negated := false
		if p.tok.IsKeyword("NOT") {
			negated = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if !p.tok.IsKeyword("NULL") {
			return nil, p.unexpected("NULL")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		left = &IsNull{Expr: left, Negated: negated}
	}
	return left, nil
}

func (p *parser) parsePostfix() (Expr, *ParseError) {
	expr, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if !p.tok.Is(".") {
		return expr, nil
	}
	v, ok := expr.(*Variable)
	if !ok {
		return nil, p.errorf(p.tok, "property access requires a variable")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	key, err := p.expectName("a property key")
	if err != nil {
		return nil, err
	}
	return &PropertyAccess{Variable: v.Name, Key: key}, nil
}

func (p *parser) parseAtom() (Expr, *ParseError) {
	tok := p.tok
	switch tok.Kind {
	case TokenString:
		return &Literal{Value: ir.IRString(tok.Text)}, p.advance()
	case TokenInteger:
		if tok.Int < 0 {
			return nil, newParseError(tok.Pos, "integer literal %s out of range", tok.Text)
		}
		return &Literal{Value: ir.IRInt(tok.Int)}, p.advance()
	case TokenFloat:
		return &Literal{Value: ir.IRFloat(tok.Float)}, p.advance()
	case TokenParam:
		return &Param{Name: tok.Text}, p.advance()
	case TokenKeyword:
		switch tok.Keyword {
		case "TRUE":
			return &Literal{Value: ir.IRBool(true)}, p.advance()
		case "FALSE":
			return &Literal{Value: ir.IRBool(false)}, p.advance()
		case "NULL":
			return &Literal{Value: ir.IRNull{}}, p.advance()
		}
	case TokenIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.tok.Is("(") {
			return &Variable{Name: tok.Text}, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return &FuncCall{Name: strings.ToLower(tok.Text), Arg: arg}, nil
	case TokenPunct:
		switch tok.Text {
		case "(":
			if err := p.advance(); err != nil {
				return nil, err
			}
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return inner, nil
		case "[":
			return p.parseList()
		case "{":
			return p.parseMap()
		case "-":
			return p.parseNegative()
		}
	}
	return nil, p.unexpected("an expression")
}

func (p *parser) parseList() (Expr, *ParseError) {
	if err := p.expect("["); err != nil {
		return nil, err
	}
	list := &ListLiteral{}
	if p.tok.Is("]") {
		return list, p.advance()
	}
	for {
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
		switch {
		case p.tok.Is(","):
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.tok.Is("]"):
			return list, p.advance()
		default:
			return nil, p.unexpected("',' or ']' in list")
		}
	}
}

func (p *parser) parseNegative() (Expr, *ParseError) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	tok := p.tok
	switch tok.Kind {
	case TokenInteger:
		return &Literal{Value: ir.IRInt(-tok.Int)}, p.advance()
	case TokenFloat:
		return &Literal{Value: ir.IRFloat(-tok.Float)}, p.advance()
	}
	return nil, p.unexpected("a number after '-'")
}
