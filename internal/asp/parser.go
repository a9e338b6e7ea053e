package asp

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseError is a syntax error with a source position.
type ParseError struct {
	Loc Location
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Msg)
}

// Parse parses a program from src. The name is used for error
// positions and statement locations.
func Parse(name, src string) (*Program, error) {
	p := &parser{lex: newLexer(name, src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	prog := &Program{}
	for p.tok.kind != tokEOF {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// ParseFiles parses the given files in order and concatenates their
// statements. The path "-" reads from stdin.
func ParseFiles(paths []string) (*Program, error) {
	prog := &Program{}
	for _, path := range paths {
		var (
			src []byte
			err error
		)
		if path == "-" {
			src, err = io.ReadAll(os.Stdin)
		} else {
			src, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("read program %s: %w", path, err)
		}
		part, err := Parse(path, string(src))
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, part.Statements...)
	}
	return prog, nil
}

// ----------------------------------------------------------------------------
// Lexer
// ----------------------------------------------------------------------------

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokVariable
	tokNumber
	tokString
	tokDirective // #const, #include, ...
	tokNot
	tokIf       // :-
	tokDot      // .
	tokDotDot   // ..
	tokComma    // ,
	tokSemi     // ;
	tokColon    // :
	tokLParen   // (
	tokRParen   // )
	tokLBrace   // {
	tokRBrace   // }
	tokCompare  // = != < <= > >=
	tokMinus    // -
)

type token struct {
	kind tokenKind
	text string
	loc  Location
}

type lexer struct {
	name string
	src  string
	pos  int
	line int
	col  int
}

func newLexer(name, src string) *lexer {
	return &lexer{name: name, src: src, line: 1, col: 1}
}

func (l *lexer) loc() Location {
	return Location{File: l.name, Line: l.line, Column: l.col}
}

func (l *lexer) errorf(loc Location, format string, args ...interface{}) error {
	return &ParseError{Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) skipSpaceAndComments() error {
	for l.pos < len(l.src) {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '%':
			if l.peekAt(1) == '*' {
				start := l.loc()
				l.advance()
				l.advance()
				closed := false
				for l.pos < len(l.src) {
					if l.peek() == '*' && l.peekAt(1) == '%' {
						l.advance()
						l.advance()
						closed = true
						break
					}
					l.advance()
				}
				if !closed {
					return l.errorf(start, "unterminated block comment")
				}
			} else {
				for l.pos < len(l.src) && l.peek() != '\n' {
					l.advance()
				}
			}
		default:
			return nil
		}
	}
	return nil
}

func isLower(c byte) bool  { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isALNum(c byte) bool  { return isLower(c) || isUpper(c) || isDigit(c) || c == '_' }
func isIdentStart(c byte) bool {
	return isLower(c) || c == '_'
}

func (l *lexer) nextToken() (token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token{}, err
	}
	loc := l.loc()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, loc: loc}, nil
	}

	c := l.peek()
	switch {
	case isIdentStart(c):
		start := l.pos
		for l.pos < len(l.src) && isALNum(l.peek()) {
			l.advance()
		}
		text := l.src[start:l.pos]
		if text == "not" {
			return token{kind: tokNot, text: text, loc: loc}, nil
		}
		// A bare "_" is the anonymous variable, not an identifier.
		if text == "_" {
			return token{kind: tokVariable, text: text, loc: loc}, nil
		}
		return token{kind: tokIdent, text: text, loc: loc}, nil
	case isUpper(c):
		start := l.pos
		for l.pos < len(l.src) && isALNum(l.peek()) {
			l.advance()
		}
		return token{kind: tokVariable, text: l.src[start:l.pos], loc: loc}, nil
	case isDigit(c):
		start := l.pos
		for l.pos < len(l.src) && isDigit(l.peek()) {
			l.advance()
		}
		return token{kind: tokNumber, text: l.src[start:l.pos], loc: loc}, nil
	case c == '"':
		l.advance()
		var sb strings.Builder
		for {
			if l.pos >= len(l.src) {
				return token{}, l.errorf(loc, "unterminated string")
			}
			ch := l.advance()
			if ch == '\\' && l.pos < len(l.src) {
				sb.WriteByte(l.advance())
				continue
			}
			if ch == '"' {
				break
			}
			sb.WriteByte(ch)
		}
		return token{kind: tokString, text: sb.String(), loc: loc}, nil
	case c == '#':
		l.advance()
		start := l.pos
		for l.pos < len(l.src) && isALNum(l.peek()) {
			l.advance()
		}
		return token{kind: tokDirective, text: l.src[start:l.pos], loc: loc}, nil
	case c == ':':
		l.advance()
		if l.peek() == '-' {
			l.advance()
			return token{kind: tokIf, text: ":-", loc: loc}, nil
		}
		return token{kind: tokColon, text: ":", loc: loc}, nil
	case c == '.':
		l.advance()
		if l.peek() == '.' {
			l.advance()
			return token{kind: tokDotDot, text: "..", loc: loc}, nil
		}
		return token{kind: tokDot, text: ".", loc: loc}, nil
	case c == ',':
		l.advance()
		return token{kind: tokComma, text: ",", loc: loc}, nil
	case c == ';':
		l.advance()
		return token{kind: tokSemi, text: ";", loc: loc}, nil
	case c == '(':
		l.advance()
		return token{kind: tokLParen, text: "(", loc: loc}, nil
	case c == ')':
		l.advance()
		return token{kind: tokRParen, text: ")", loc: loc}, nil
	case c == '{':
		l.advance()
		return token{kind: tokLBrace, text: "{", loc: loc}, nil
	case c == '}':
		l.advance()
		return token{kind: tokRBrace, text: "}", loc: loc}, nil
	case c == '-':
		l.advance()
		return token{kind: tokMinus, text: "-", loc: loc}, nil
	case c == '=':
		l.advance()
		return token{kind: tokCompare, text: "=", loc: loc}, nil
	case c == '!':
		l.advance()
		if l.peek() != '=' {
			return token{}, l.errorf(loc, "expected '=' after '!'")
		}
		l.advance()
		return token{kind: tokCompare, text: "!=", loc: loc}, nil
	case c == '<':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokCompare, text: "<=", loc: loc}, nil
		}
		return token{kind: tokCompare, text: "<", loc: loc}, nil
	case c == '>':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokCompare, text: ">=", loc: loc}, nil
		}
		return token{kind: tokCompare, text: ">", loc: loc}, nil
	default:
		return token{}, l.errorf(loc, "unexpected character %q", string(c))
	}
}

// ----------------------------------------------------------------------------
// Parser
// ----------------------------------------------------------------------------

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) next() error {
	tok, err := p.lex.nextToken()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Loc: p.tok.loc, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.tok.kind != kind {
		return token{}, p.errorf("expected %s, found %q", what, p.tok.text)
	}
	tok := p.tok
	if err := p.next(); err != nil {
		return token{}, err
	}
	return tok, nil
}

func (p *parser) statement() (Statement, error) {
	loc := p.tok.loc
	switch p.tok.kind {
	case tokDirective:
		return p.directive(loc)
	case tokIf:
		if err := p.next(); err != nil {
			return nil, err
		}
		body, err := p.body()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokDot, `"."`); err != nil {
			return nil, err
		}
		return &Constraint{located: located{loc}, Body: body}, nil
	case tokLBrace:
		return p.choice(loc)
	case tokIdent:
		head, err := p.atom()
		if err != nil {
			return nil, err
		}
		if p.tok.kind == tokDot {
			if err := p.next(); err != nil {
				return nil, err
			}
			return &Fact{located: located{loc}, Head: head}, nil
		}
		if _, err := p.expect(tokIf, `":-" or "."`); err != nil {
			return nil, err
		}
		body, err := p.body()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokDot, `"."`); err != nil {
			return nil, err
		}
		return &Rule{located: located{loc}, Head: head, Body: body}, nil
	default:
		return nil, p.errorf("unexpected token %q at start of statement", p.tok.text)
	}
}

func (p *parser) directive(loc Location) (Statement, error) {
	name := p.tok.text
	if err := p.next(); err != nil {
		return nil, err
	}
	switch name {
	case "const":
		ident, err := p.expect(tokIdent, "constant name")
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokCompare || p.tok.text != "=" {
			return nil, p.errorf(`expected "=" in #const directive`)
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		value, err := p.term()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokDot, `"."`); err != nil {
			return nil, err
		}
		return &Const{located: located{loc}, Name: ident.text, Value: value}, nil
	case "include":
		path, err := p.expect(tokString, "file path")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokDot, `"."`); err != nil {
			return nil, err
		}
		return &Include{located: located{loc}, Path: path.text}, nil
	case "minimize", "maximize":
		raw, err := p.rawBraces()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokDot, `"."`); err != nil {
			return nil, err
		}
		return &Optimize{located: located{loc}, Maximize: name == "maximize", Raw: raw}, nil
	case "show":
		raw, err := p.rawUntilDot()
		if err != nil {
			return nil, err
		}
		return &Show{located: located{loc}, Raw: raw}, nil
	default:
		return nil, p.errorf("unsupported directive #%s", name)
	}
}

// rawBraces consumes a brace-delimited token sequence and returns its
// text. Used for optimization statements, which are never interpreted.
func (p *parser) rawBraces() (string, error) {
	if _, err := p.expect(tokLBrace, `"{"`); err != nil {
		return "", err
	}
	var parts []string
	depth := 1
	for {
		switch p.tok.kind {
		case tokEOF:
			return "", p.errorf("unterminated optimization statement")
		case tokLBrace:
			depth++
		case tokRBrace:
			depth--
			if depth == 0 {
				if err := p.next(); err != nil {
					return "", err
				}
				return strings.Join(parts, " "), nil
			}
		}
		parts = append(parts, p.tok.text)
		if err := p.next(); err != nil {
			return "", err
		}
	}
}

func (p *parser) rawUntilDot() (string, error) {
	var parts []string
	for p.tok.kind != tokDot {
		if p.tok.kind == tokEOF {
			return "", p.errorf("unterminated directive")
		}
		parts = append(parts, p.tok.text)
		if err := p.next(); err != nil {
			return "", err
		}
	}
	if err := p.next(); err != nil {
		return "", err
	}
	return strings.Join(parts, ""), nil
}

func (p *parser) choice(loc Location) (Statement, error) {
	if err := p.next(); err != nil { // consume "{"
		return nil, err
	}
	choice := &Choice{located: located{loc}}
	if p.tok.kind != tokRBrace {
		for {
			atom, err := p.atom()
			if err != nil {
				return nil, err
			}
			choice.Elements = append(choice.Elements, atom)
			if p.tok.kind == tokColon {
				return nil, p.errorf("conditional choice elements are not supported")
			}
			if p.tok.kind != tokSemi {
				break
			}
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(tokRBrace, `"}"`); err != nil {
		return nil, err
	}
	if p.tok.kind == tokIf {
		if err := p.next(); err != nil {
			return nil, err
		}
		body, err := p.body()
		if err != nil {
			return nil, err
		}
		choice.Body = body
	}
	if _, err := p.expect(tokDot, `"."`); err != nil {
		return nil, err
	}
	return choice, nil
}

func (p *parser) body() ([]BodyElement, error) {
	var body []BodyElement
	for {
		elem, err := p.bodyElement()
		if err != nil {
			return nil, err
		}
		body = append(body, elem)
		if p.tok.kind != tokComma {
			return body, nil
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) bodyElement() (BodyElement, error) {
	if p.tok.kind == tokNot {
		if err := p.next(); err != nil {
			return nil, err
		}
		atom, err := p.atom()
		if err != nil {
			return nil, err
		}
		return Literal{Negated: true, Atom: atom}, nil
	}

	// Could be an atom or the left side of a comparison.
	if p.tok.kind == tokIdent {
		atom, err := p.atom()
		if err != nil {
			return nil, err
		}
		if p.tok.kind == tokCompare {
			// A zero-arity atom followed by a comparison operator is
			// really a constant term comparison.
			if len(atom.Args) > 0 {
				return nil, p.errorf("cannot compare compound atom %s", atom)
			}
			return p.comparison(Constant(atom.Name))
		}
		return Literal{Atom: atom}, nil
	}

	left, err := p.term()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokCompare {
		return nil, p.errorf("expected comparison operator after term %s", left)
	}
	return p.comparison(left)
}

func (p *parser) comparison(left Term) (BodyElement, error) {
	op := CompareOp(p.tok.text)
	if err := p.next(); err != nil {
		return nil, err
	}
	right, err := p.term()
	if err != nil {
		return nil, err
	}
	return Comparison{Op: op, Left: left, Right: right}, nil
}

func (p *parser) atom() (Atom, error) {
	ident, err := p.expect(tokIdent, "predicate name")
	if err != nil {
		return Atom{}, err
	}
	atom := Atom{Name: ident.text}
	if p.tok.kind != tokLParen {
		return atom, nil
	}
	if err := p.next(); err != nil {
		return Atom{}, err
	}
	for {
		term, err := p.term()
		if err != nil {
			return Atom{}, err
		}
		atom.Args = append(atom.Args, term)
		if p.tok.kind == tokComma {
			if err := p.next(); err != nil {
				return Atom{}, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return Atom{}, err
	}
	return atom, nil
}

func (p *parser) term() (Term, error) {
	switch p.tok.kind {
	case tokMinus:
		if err := p.next(); err != nil {
			return nil, err
		}
		num, err := p.expect(tokNumber, "number")
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(num.text, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid number -%s", num.text)
		}
		return p.intervalTail(-n)
	case tokNumber:
		num := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		lo, err := strconv.ParseInt(num.text, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid number %s", num.text)
		}
		return p.intervalTail(lo)
	case tokString:
		s := p.tok.text
		if err := p.next(); err != nil {
			return nil, err
		}
		return Str(s), nil
	case tokVariable:
		v := p.tok.text
		if err := p.next(); err != nil {
			return nil, err
		}
		return Variable(v), nil
	case tokIdent:
		name := p.tok.text
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokLParen {
			return Constant(name), nil
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		fn := Function{Name: name}
		for {
			arg, err := p.term()
			if err != nil {
				return nil, err
			}
			fn.Args = append(fn.Args, arg)
			if p.tok.kind == tokComma {
				if err := p.next(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return fn, nil
	default:
		return nil, p.errorf("expected term, found %q", p.tok.text)
	}
}

// intervalTail finishes a numeric term: given its parsed value it
// either returns the plain number or, when ".." follows, reads the
// upper bound and returns the interval.
func (p *parser) intervalTail(lo int64) (Term, error) {
	if p.tok.kind != tokDotDot {
		return Number(lo), nil
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	neg := false
	if p.tok.kind == tokMinus {
		neg = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	hiTok, err := p.expect(tokNumber, "interval upper bound")
	if err != nil {
		return nil, err
	}
	hi, err := strconv.ParseInt(hiTok.text, 10, 64)
	if err != nil {
		return nil, p.errorf("invalid number %s", hiTok.text)
	}
	if neg {
		hi = -hi
	}
	return Interval{Lo: lo, Hi: hi}, nil
}
