package token

import (
	"fmt"
	"strings"
)

// Lexer tokenizes Dana source text, tracking significant indentation and
// emitting synthetic INDENT/DEDENT/NEWLINE tokens the way a Python-style
// grammar expects.
type Lexer struct {
	src        []rune
	pos        int
	line       int
	col        int
	indents    []int
	atLineHead bool
	parenDepth int // "[", "(", "{" suppress NEWLINE/INDENT while > 0
	indentChar rune
	pending    []Token
}

// NewLexer creates a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:        []rune(src),
		line:       1,
		col:        1,
		indents:    []int{0},
		atLineHead: true,
	}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) advance() rune {
	r := l.peek()
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) here() Position { return Position{Line: l.line, Column: l.col} }

// Tokenize runs the lexer to completion and returns the full token stream,
// terminated by an EOF token.
func (l *Lexer) Tokenize() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return toks, nil
}

// Next returns the next token, or an error on malformed input (e.g.
// inconsistent tab/space indentation within one block).
func (l *Lexer) Next() (Token, error) {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t, nil
	}

	if l.atLineHead && l.parenDepth == 0 {
		if tok, emit, err := l.handleIndentation(); err != nil {
			return Token{}, err
		} else if emit {
			return tok, nil
		}
	}

	l.skipSpacesAndComments()

	if l.pos >= len(l.src) {
		if l.parenDepth == 0 && len(l.indents) > 1 {
			l.indents = l.indents[:len(l.indents)-1]
			return Token{Kind: DEDENT, Position: l.here()}, nil
		}
		return Token{Kind: EOF, Position: l.here()}, nil
	}

	r := l.peek()

	if r == '\n' {
		pos := l.here()
		l.advance()
		l.atLineHead = true
		if l.parenDepth > 0 {
			return l.Next()
		}
		return Token{Kind: NEWLINE, Position: pos}, nil
	}

	if isIdentStart(r) {
		return l.lexIdent(), nil
	}
	if isDigit(r) {
		return l.lexNumber()
	}
	if r == '"' || r == '\'' {
		return l.lexString(r)
	}

	return l.lexOperator()
}

func (l *Lexer) skipSpacesAndComments() {
	for l.pos < len(l.src) {
		r := l.peek()
		if r == ' ' || r == '\t' {
			l.advance()
			continue
		}
		if r == '#' {
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}
}

// handleIndentation consumes leading whitespace of a new logical line and
// emits INDENT/DEDENT tokens as needed. Returns emit=false when the line
// was blank or a comment, so the caller falls through to normal lexing.
func (l *Lexer) handleIndentation() (Token, bool, error) {
	start := l.pos
	width := 0
	var ch rune
	for l.pos < len(l.src) {
		r := l.peek()
		if r == ' ' || r == '\t' {
			if ch == 0 {
				ch = r
			} else if ch != r {
				return Token{}, false, fmt.Errorf("lexer: mixed tabs and spaces in indentation at line %d", l.line)
			}
			width++
			l.advance()
			continue
		}
		break
	}
	_ = start

	// Blank line or comment-only line: don't affect indentation.
	if l.pos >= len(l.src) || l.peek() == '\n' || l.peek() == '#' {
		l.atLineHead = false
		return Token{}, false, nil
	}

	l.atLineHead = false
	current := l.indents[len(l.indents)-1]

	if width > current {
		l.indents = append(l.indents, width)
		return Token{Kind: INDENT, Position: l.here()}, true, nil
	}
	if width < current {
		// Emit one DEDENT per level popped; queue the rest as pending.
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, Token{Kind: DEDENT, Position: l.here()})
		}
		if l.indents[len(l.indents)-1] != width {
			return Token{}, false, fmt.Errorf("lexer: unindent does not match any outer indentation level at line %d", l.line)
		}
		first := l.pending[0]
		l.pending = l.pending[1:]
		return first, true, nil
	}
	return Token{}, false, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool { return isIdentStart(r) || isDigit(r) }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (l *Lexer) lexIdent() Token {
	pos := l.here()
	var sb strings.Builder
	for l.pos < len(l.src) && isIdentCont(l.peek()) {
		sb.WriteRune(l.advance())
	}
	word := sb.String()

	if word == "not" {
		save := l.pos
		saveLine, saveCol := l.line, l.col
		l.skipSpacesAndComments()
		if l.pos+2 <= len(l.src) && string(l.src[l.pos:minInt(l.pos+2, len(l.src))]) == "in" &&
			(l.pos+2 == len(l.src) || !isIdentCont(l.peekAt(2))) {
			l.pos += 2
			l.col += 2
			return Token{Kind: NOT_IN, Literal: "not in", Position: pos}
		}
		l.pos, l.line, l.col = save, saveLine, saveCol
	}

	if kind, ok := Lookup(word); ok {
		return Token{Kind: kind, Literal: word, Position: pos}
	}
	return Token{Kind: IDENT, Literal: word, Position: pos}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (l *Lexer) lexNumber() (Token, error) {
	pos := l.here()
	var sb strings.Builder
	isFloat := false
	for l.pos < len(l.src) && isDigit(l.peek()) {
		sb.WriteRune(l.advance())
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		isFloat = true
		sb.WriteRune(l.advance())
		for l.pos < len(l.src) && isDigit(l.peek()) {
			sb.WriteRune(l.advance())
		}
	}
	if isFloat {
		return Token{Kind: FLOAT, Literal: sb.String(), Position: pos}, nil
	}
	return Token{Kind: INT, Literal: sb.String(), Position: pos}, nil
}

func (l *Lexer) lexString(quote rune) (Token, error) {
	pos := l.here()
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{}, fmt.Errorf("lexer: unterminated string literal starting at line %d", pos.Line)
		}
		r := l.peek()
		if r == quote {
			l.advance()
			break
		}
		if r == '\\' {
			l.advance()
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\':
				sb.WriteRune('\\')
			case '"':
				sb.WriteRune('"')
			case '\'':
				sb.WriteRune('\'')
			default:
				sb.WriteRune(esc)
			}
			continue
		}
		sb.WriteRune(l.advance())
	}
	return Token{Kind: STRING, Literal: sb.String(), Position: pos}, nil
}

func (l *Lexer) lexOperator() (Token, error) {
	pos := l.here()
	r := l.advance()

	two := func(next rune, k Kind, lit string) (Token, bool) {
		if l.peek() == next {
			l.advance()
			return Token{Kind: k, Literal: lit, Position: pos}, true
		}
		return Token{}, false
	}

	switch r {
	case '+':
		if t, ok := two('=', PLUS_EQ, "+="); ok {
			return t, nil
		}
		return Token{Kind: PLUS, Literal: "+", Position: pos}, nil
	case '-':
		if t, ok := two('=', MINUS_EQ, "-="); ok {
			return t, nil
		}
		if t, ok := two('>', ARROW, "->"); ok {
			return t, nil
		}
		return Token{Kind: MINUS, Literal: "-", Position: pos}, nil
	case '*':
		if l.peek() == '*' {
			l.advance()
			return Token{Kind: STAR_STAR, Literal: "**", Position: pos}, nil
		}
		if t, ok := two('=', STAR_EQ, "*="); ok {
			return t, nil
		}
		return Token{Kind: STAR, Literal: "*", Position: pos}, nil
	case '/':
		if t, ok := two('=', SLASH_EQ, "/="); ok {
			return t, nil
		}
		return Token{Kind: SLASH, Literal: "/", Position: pos}, nil
	case '%':
		return Token{Kind: PERCENT, Literal: "%", Position: pos}, nil
	case '=':
		if t, ok := two('=', EQ, "=="); ok {
			return t, nil
		}
		return Token{Kind: ASSIGN, Literal: "=", Position: pos}, nil
	case '!':
		if t, ok := two('=', NEQ, "!="); ok {
			return t, nil
		}
		return Token{}, fmt.Errorf("lexer: unexpected '!' at line %d", pos.Line)
	case '<':
		if t, ok := two('=', LTE, "<="); ok {
			return t, nil
		}
		return Token{Kind: LT, Literal: "<", Position: pos}, nil
	case '>':
		if t, ok := two('=', GTE, ">="); ok {
			return t, nil
		}
		return Token{Kind: GT, Literal: ">", Position: pos}, nil
	case '|':
		return Token{Kind: PIPE, Literal: "|", Position: pos}, nil
	case ':':
		return Token{Kind: COLON, Literal: ":", Position: pos}, nil
	case ',':
		return Token{Kind: COMMA, Literal: ",", Position: pos}, nil
	case '.':
		return Token{Kind: DOT, Literal: ".", Position: pos}, nil
	case '(':
		l.parenDepth++
		return Token{Kind: LPAREN, Literal: "(", Position: pos}, nil
	case ')':
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		return Token{Kind: RPAREN, Literal: ")", Position: pos}, nil
	case '[':
		l.parenDepth++
		return Token{Kind: LBRACKET, Literal: "[", Position: pos}, nil
	case ']':
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		return Token{Kind: RBRACKET, Literal: "]", Position: pos}, nil
	case '{':
		l.parenDepth++
		return Token{Kind: LBRACE, Literal: "{", Position: pos}, nil
	case '}':
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		return Token{Kind: RBRACE, Literal: "}", Position: pos}, nil
	}

	return Token{}, fmt.Errorf("lexer: unexpected character %q at line %d, column %d", r, pos.Line, pos.Column)
}
