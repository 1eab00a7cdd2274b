package cypher

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// minInt64Magnitude is the digits of math.MinInt64 without the sign.
const minInt64Magnitude = "9223372036854775808"

// Lexer produces tokens lazily from query text.
//
// A Lexer is single-use: once Next returns an EOF token it keeps returning
// EOF. The first error is sticky; every later call returns it again.
type Lexer struct {
	src  []rune
	pos  int
	line int
	col  int
	err  *ParseError
}

// NewLexer creates a lexer over src. Text that is not valid UTF-8 fails
// on the first call to Next, positioned at the first invalid byte.
func NewLexer(src string) *Lexer {
	l := &Lexer{
		src:  []rune(src),
		line: 1,
		col:  1,
	}
	if !utf8.ValidString(src) {
		l.err = invalidUTF8(src)
	}
	return l
}

// invalidUTF8 locates the first byte of src that does not start a valid
// UTF-8 sequence.
func invalidUTF8(src string) *ParseError {
	pos := Position{Line: 1, Column: 1}
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r == utf8.RuneError && size <= 1 {
			return newParseError(pos, "invalid UTF-8 byte 0x%02x", src[i])
		}
		pos.Offset++
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
		i += size
	}
	return newParseError(pos, "invalid UTF-8")
}

// Tokenize drains a lexer over src. The result ends with an EOF token.
func Tokenize(src string) ([]Token, error) {
	lx := NewLexer(src)
	var toks []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			return toks, nil
		}
	}
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}
	tok, err := l.scan()
	if err != nil {
		l.err = err
		return Token{}, err
	}
	return tok, nil
}

// slice returns the source text between two rune offsets.
func (l *Lexer) slice(start, end int) string {
	if start < 0 || end > len(l.src) || start > end {
		return ""
	}
	return string(l.src[start:end])
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) peek(ahead int) rune {
	if l.pos+ahead >= len(l.src) {
		return utf8.RuneError
	}
	return l.src[l.pos+ahead]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) scan() (Token, *ParseError) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}

	start := l.position()
	if l.atEnd() {
		return Token{Kind: TokenEOF, Pos: start, End: l.pos}, nil
	}

	r := l.peek(0)
	switch {
	case isIdentStart(r):
		return l.scanWord(start), nil
	case isDigit(r):
		return l.scanNumber(start)
	case r == '\'' || r == '"':
		return l.scanString(start)
	case r == '$':
		return l.scanParam(start)
	}

	l.advance()
	text := string(r)
	switch r {
	case '(', ')', '[', ']', '{', '}', ',', ':', '.', ';', '-', '*':
	case '<':
		if l.peek(0) == '>' || l.peek(0) == '=' {
			text += string(l.advance())
		}
	case '>':
		if l.peek(0) == '=' {
			text += string(l.advance())
		}
	case '+':
		if l.peek(0) == '=' {
			text += string(l.advance())
		}
	case '=':
	default:
		return Token{}, newParseError(start, "unexpected character %q", r)
	}
	return Token{Kind: TokenPunct, Text: text, Pos: start, End: l.pos}, nil
}

// skipTrivia skips whitespace, line comments and block comments.
func (l *Lexer) skipTrivia() *ParseError {
	for !l.atEnd() {
		r := l.peek(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f':
			l.advance()
		case r == '/' && l.peek(1) == '/':
			for !l.atEnd() && l.peek(0) != '\n' {
				l.advance()
			}
		case r == '/' && l.peek(1) == '*':
			start := l.position()
			l.advance()
			l.advance()
			for {
				if l.atEnd() {
					return newParseError(start, "unterminated block comment")
				}
				if l.peek(0) == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) scanWord(start Position) Token {
	for !l.atEnd() && isIdentPart(l.peek(0)) {
		l.advance()
	}
	text := l.slice(start.Offset, l.pos)
	if kw, ok := lookupKeyword(text); ok {
		return Token{Kind: TokenKeyword, Text: text, Keyword: kw, Pos: start, End: l.pos}
	}
	return Token{Kind: TokenIdent, Text: text, Pos: start, End: l.pos}
}

func (l *Lexer) scanNumber(start Position) (Token, *ParseError) {
	for !l.atEnd() && isDigit(l.peek(0)) {
		l.advance()
	}

	isFloat := false
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		isFloat = true
		l.advance()
		for !l.atEnd() && isDigit(l.peek(0)) {
			l.advance()
		}
	}
	if r := l.peek(0); r == 'e' || r == 'E' {
		next := l.peek(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peek(2))) {
			isFloat = true
			l.advance()
			if next == '+' || next == '-' {
				l.advance()
			}
			for !l.atEnd() && isDigit(l.peek(0)) {
				l.advance()
			}
		}
	}
	if !l.atEnd() && isIdentStart(l.peek(0)) {
		return Token{}, newParseError(l.position(), "unexpected character %q in number", l.peek(0))
	}

	text := l.slice(start.Offset, l.pos)
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, newParseError(start, "invalid float literal %s", text)
		}
		return Token{Kind: TokenFloat, Text: text, Float: f, Pos: start, End: l.pos}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		// 2^63 only fits as the operand of a unary minus; the parser
		// rejects it anywhere else.
		if text != minInt64Magnitude {
			return Token{}, newParseError(start, "integer literal %s out of range", text)
		}
		i = math.MinInt64
	}
	return Token{Kind: TokenInteger, Text: text, Int: i, Pos: start, End: l.pos}, nil
}

func (l *Lexer) scanString(start Position) (Token, *ParseError) {
	quote := l.advance()
	var b strings.Builder
	for {
		if l.atEnd() {
			return Token{}, newParseError(start, "unterminated string literal")
		}
		r := l.peek(0)
		if r == quote {
			l.advance()
			return Token{Kind: TokenString, Text: b.String(), Pos: start, End: l.pos}, nil
		}
		if r != '\\' {
			b.WriteRune(l.advance())
			continue
		}

		escPos := l.position()
		l.advance()
		if l.atEnd() {
			return Token{}, newParseError(start, "unterminated string literal")
		}
		switch esc := l.advance(); esc {
		case '\\', '\'', '"', '/':
			b.WriteRune(esc)
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			r, ok := l.scanHex4()
			if !ok {
				return Token{}, newParseError(escPos, "invalid unicode escape")
			}
			b.WriteRune(r)
		default:
			return Token{}, newParseError(escPos, "invalid escape sequence \\%c", esc)
		}
	}
}

func (l *Lexer) scanHex4() (rune, bool) {
	var v rune
	for i := 0; i < 4; i++ {
		if l.atEnd() {
			return 0, false
		}
		d, ok := hexValue(l.peek(0))
		if !ok {
			return 0, false
		}
		l.advance()
		v = v<<4 | d
	}
	return v, true
}

func (l *Lexer) scanParam(start Position) (Token, *ParseError) {
	l.advance()
	if l.atEnd() || !isIdentStart(l.peek(0)) {
		return Token{}, newParseError(start, "expected parameter name after '$'")
	}
	nameStart := l.pos
	for !l.atEnd() && isIdentPart(l.peek(0)) {
		l.advance()
	}
	return Token{Kind: TokenParam, Text: l.slice(nameStart, l.pos), Pos: start, End: l.pos}, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func hexValue(r rune) (rune, bool) {
	switch {
	case r >= '0' && r <= '9':
		return r - '0', true
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10, true
	case r >= 'A' && r <= 'F':
		return r - 'A' + 10, true
	}
	return 0, false
}
