package cypher

import (
	"fmt"
	"strings"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenKeyword
	TokenIdent
	TokenString
	TokenInteger
	TokenFloat
	TokenParam
	TokenPunct
)

// String returns a short name for the kind.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenKeyword:
		return "keyword"
	case TokenIdent:
		return "identifier"
	case TokenString:
		return "string"
	case TokenInteger:
		return "integer"
	case TokenFloat:
		return "float"
	case TokenParam:
		return "parameter"
	case TokenPunct:
		return "punctuation"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Position locates a character in the source text.
// Offset and Column count characters (runes), not bytes. Line and Column
// are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Token is one lexeme of a query.
//
// Text holds the raw source for keywords, identifiers, numbers and
// punctuation; the decoded contents for strings; and the bare name
// (without '$') for parameters. Keyword holds the upper-cased keyword
// for TokenKeyword.
type Token struct {
	Kind    TokenKind
	Text    string
	Keyword string
	Int     int64
	Float   float64
	Pos     Position
	End     int // rune offset just past the token
}

// Is reports whether the token is the given punctuation.
func (t Token) Is(punct string) bool {
	return t.Kind == TokenPunct && t.Text == punct
}

// IsKeyword reports whether the token is the given keyword.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == TokenKeyword && t.Keyword == kw
}

// describe renders the token for error messages.
func (t Token) describe() string {
	switch t.Kind {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return fmt.Sprintf("string %q", t.Text)
	case TokenParam:
		return fmt.Sprintf("parameter '$%s'", t.Text)
	case TokenKeyword:
		return fmt.Sprintf("keyword %s", t.Keyword)
	default:
		return fmt.Sprintf("'%s'", t.Text)
	}
}

var keywords = map[string]bool{
	"CREATE": true,
	"MATCH":  true,
	"MERGE":  true,
	"SET":    true,
	"DELETE": true,
	"DETACH": true,
	"WHERE":  true,
	"RETURN": true,
	"AND":    true,
	"OR":     true,
	"XOR":    true,
	"NOT":    true,
	"IS":     true,
	"NULL":   true,
	"TRUE":   true,
	"FALSE":  true,
	"AS":     true,
}

// clauseKeywords start a new clause.
var clauseKeywords = map[string]bool{
	"CREATE": true,
	"MATCH":  true,
	"MERGE":  true,
	"SET":    true,
	"DELETE": true,
	"DETACH": true,
	"RETURN": true,
}

func lookupKeyword(word string) (string, bool) {
	upper := strings.ToUpper(word)
	if keywords[upper] {
		return upper, true
	}
	return "", false
}
