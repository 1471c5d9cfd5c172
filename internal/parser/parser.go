// Package parser turns Dana source text into an *ast.Program (spec §4.1).
// The parser is a pure function of its input: it holds no state beyond the
// token stream and reports every syntax error it can without aborting on
// the first one, so a host can surface several diagnostics per pass.
package parser

import (
	"fmt"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/token"
)

// Parser is a recursive-descent, Pratt-style expression parser over a
// pre-lexed token stream.
type Parser struct {
	file   string
	toks   []token.Token
	pos    int
	errors []error
}

// New creates a Parser over a complete token stream (as produced by
// token.Lexer.Tokenize). file is used only for diagnostics.
func New(file string, toks []token.Token) *Parser {
	return &Parser{file: file, toks: toks}
}

// Parse lexes src and parses the resulting token stream, returning the
// program plus any accumulated syntax errors. A lexer error is returned as
// a single ParseError with no program.
func Parse(file, src string) (*ast.Program, []error) {
	lx := token.NewLexer(src)
	toks, err := lx.Tokenize()
	if err != nil {
		return nil, []error{danaerr.NewParseError(danaerr.Location{File: file}, "%v", err)}
	}
	p := New(file, toks)
	prog := p.ParseProgram()
	return prog, p.errors
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) accept(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.at(k) {
		return p.advance()
	}
	p.errorf("expected %s, got %s %q", k, p.cur().Kind, p.cur().Literal)
	return p.cur()
}

func (p *Parser) loc(t token.Token) danaerr.Location {
	return danaerr.Location{File: p.file, Line: t.Position.Line, Column: t.Position.Column}
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, danaerr.NewParseError(p.loc(p.cur()), format, args...))
}

// synchronize skips tokens until the next NEWLINE/DEDENT/EOF, so one bad
// statement doesn't cascade into spurious follow-on errors.
func (p *Parser) synchronize() {
	for !p.at(token.NEWLINE) && !p.at(token.DEDENT) && !p.at(token.EOF) {
		p.advance()
	}
	p.accept(token.NEWLINE)
}

func pos(t token.Token) token.Position { return t.Position }

// ---- Program / blocks ----

func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{Position: token.Position{Line: 1, Column: 1}}
	for !p.at(token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog
}

// parseBlock consumes `:` NEWLINE INDENT statement+ DEDENT.
func (p *Parser) parseBlock() *ast.Block {
	start := p.cur()
	p.expect(token.COLON)
	p.expect(token.NEWLINE)
	p.expect(token.INDENT)
	blk := &ast.Block{Position: pos(start)}
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			blk.Statements = append(blk.Statements, stmt)
		}
	}
	p.expect(token.DEDENT)
	return blk
}

// ---- Statements ----

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Kind {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.DEF:
		return p.parseFuncDef()
	case token.STRUCT:
		return p.parseStructDef()
	case token.RETURN:
		return p.parseReturn()
	case token.IMPORT:
		return p.parseImport()
	case token.WITH:
		return p.parseWith()
	case token.TRY:
		return p.parseTry()
	case token.PASS:
		t := p.advance()
		p.acceptStmtEnd()
		return &ast.PassStatement{Position: pos(t)}
	case token.BREAK:
		t := p.advance()
		p.acceptStmtEnd()
		return &ast.BreakStatement{Position: pos(t)}
	case token.CONTINUE:
		t := p.advance()
		p.acceptStmtEnd()
		return &ast.ContinueStatement{Position: pos(t)}
	}

	return p.parseSimpleStatement()
}

func (p *Parser) acceptStmtEnd() {
	if p.at(token.NEWLINE) {
		p.advance()
		return
	}
	if p.at(token.EOF) || p.at(token.DEDENT) {
		return
	}
	p.errorf("expected end of statement, got %s %q", p.cur().Kind, p.cur().Literal)
	p.synchronize()
}

// parseSimpleStatement handles assignment, compound assignment, and bare
// expression statements, all of which start with an expression.
func (p *Parser) parseSimpleStatement() ast.Statement {
	start := p.cur()
	target := p.parseExpr()

	var targetType *ast.TypeExpr
	if p.at(token.COLON) {
		p.advance()
		targetType = p.parseTypeExpr()
	}

	switch p.cur().Kind {
	case token.ASSIGN:
		p.advance()
		val := p.parseExpr()
		p.acceptStmtEnd()
		return &ast.Assignment{Target: target, TargetType: targetType, Value: val, Position: pos(start)}
	case token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ:
		opTok := p.advance()
		val := p.parseExpr()
		p.acceptStmtEnd()
		return &ast.CompoundAssignment{Target: target, Op: ast.CompoundAssignOp(opTok.Literal), Value: val, Position: pos(start)}
	}

	if targetType != nil {
		p.errorf("type annotation is only valid on an assignment target")
	}
	p.acceptStmtEnd()
	return &ast.ExprStatement{X: target, Position: pos(start)}
}

func (p *Parser) parseIf() ast.Statement {
	start := p.advance() // "if"
	cond := p.parseExpr()
	then := p.parseBlock()
	stmt := &ast.IfStatement{Cond: cond, Then: then, Position: pos(start)}
	for p.at(token.ELIF) {
		p.advance()
		c := p.parseExpr()
		b := p.parseBlock()
		stmt.Elifs = append(stmt.Elifs, ast.ElifClause{Cond: c, Body: b})
	}
	if p.at(token.ELSE) {
		p.advance()
		stmt.Else = p.parseBlock()
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Statement {
	start := p.advance() // "while"
	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.WhileStatement{Cond: cond, Body: body, Position: pos(start)}
}

func (p *Parser) parseFor() ast.Statement {
	start := p.advance() // "for"
	target := p.parsePrimary()
	p.expect(token.IN)
	iter := p.parseExpr()
	body := p.parseBlock()
	return &ast.ForStatement{Target: target, Iter: iter, Body: body, Position: pos(start)}
}

func (p *Parser) parseReturn() ast.Statement {
	start := p.advance() // "return"
	var val ast.Expr
	if !p.at(token.NEWLINE) && !p.at(token.EOF) && !p.at(token.DEDENT) {
		val = p.parseExpr()
	}
	p.acceptStmtEnd()
	return &ast.ReturnStatement{Value: val, Position: pos(start)}
}

func (p *Parser) parseFuncDef() ast.Statement {
	start := p.advance() // "def"
	fd := &ast.FuncDef{Position: pos(start)}

	if p.at(token.LPAREN) {
		p.advance()
		fd.ReceiverName = p.expect(token.IDENT).Literal
		p.expect(token.COLON)
		fd.ReceiverType = p.parseTypeExpr()
		p.expect(token.RPAREN)
	}

	fd.Name = p.expect(token.IDENT).Literal
	p.expect(token.LPAREN)
	fd.Params = p.parseParams()
	p.expect(token.RPAREN)

	if p.at(token.ARROW) {
		p.advance()
		fd.ReturnType = p.parseTypeExpr()
	}

	fd.Body = p.parseBlock()
	return fd
}

func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		param := &ast.Param{}
		if p.at(token.STAR) {
			p.advance()
			param.Variadic = true
		}
		param.Name = p.expect(token.IDENT).Literal
		if p.at(token.COLON) {
			p.advance()
			param.Type = p.parseTypeExpr()
		}
		if p.at(token.ASSIGN) {
			p.advance()
			param.Default = p.parseExpr()
		}
		params = append(params, param)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return params
}

func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	start := p.cur()
	name := p.expect(token.IDENT).Literal
	te := &ast.TypeExpr{Name: name, Position: pos(start)}
	if p.at(token.LBRACKET) {
		p.advance()
		for !p.at(token.RBRACKET) && !p.at(token.EOF) {
			te.Args = append(te.Args, p.parseTypeExpr())
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RBRACKET)
	}
	return te
}

func (p *Parser) parseStructDef() ast.Statement {
	start := p.advance() // "struct"
	sd := &ast.StructDef{Position: pos(start)}
	sd.Name = p.expect(token.IDENT).Literal
	p.expect(token.COLON)
	p.expect(token.NEWLINE)
	p.expect(token.INDENT)
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		if p.at(token.NEWLINE) {
			p.advance()
			continue
		}
		f := &ast.StructField{}
		f.Name = p.expect(token.IDENT).Literal
		p.expect(token.COLON)
		f.Type = p.parseTypeExpr()
		if p.at(token.ASSIGN) {
			p.advance()
			f.Default = p.parseExpr()
		}
		p.acceptStmtEnd()
		sd.Fields = append(sd.Fields, f)
	}
	p.expect(token.DEDENT)
	return sd
}

func (p *Parser) parseImport() ast.Statement {
	start := p.advance() // "import"
	is := &ast.ImportStatement{Position: pos(start)}
	path := p.expect(token.IDENT).Literal
	for p.at(token.DOT) {
		p.advance()
		path += "." + p.expect(token.IDENT).Literal
	}
	is.Path = path
	if p.at(token.AS) {
		p.advance()
		is.Namespace = p.expect(token.IDENT).Literal
	}
	p.acceptStmtEnd()
	return is
}

func (p *Parser) parseWith() ast.Statement {
	start := p.advance() // "with"
	ws := &ast.WithStatement{Position: pos(start)}
	for {
		b := p.parseWithBinding()
		ws.Bindings = append(ws.Bindings, b)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	ws.Body = p.parseBlock()
	return ws
}

func (p *Parser) parseWithBinding() ast.WithBinding {
	// `name = expr` vs bare `expr`: disambiguate by lookahead on IDENT ASSIGN.
	if p.at(token.IDENT) && p.peekAt(1).Kind == token.ASSIGN {
		name := p.advance().Literal
		p.advance() // "="
		return ast.WithBinding{Name: name, Expr: p.parseExpr()}
	}
	return ast.WithBinding{Expr: p.parseExpr()}
}

func (p *Parser) parseTry() ast.Statement {
	start := p.advance() // "try"
	ts := &ast.TryStatement{Position: pos(start)}
	ts.Body = p.parseBlock()
	for p.at(token.EXCEPT) {
		p.advance()
		var clause ast.ExceptClause
		if !p.at(token.COLON) {
			clause.Type = p.expect(token.IDENT).Literal
			if p.at(token.AS) {
				p.advance()
				clause.As = p.expect(token.IDENT).Literal
			}
		}
		clause.Body = p.parseBlock()
		ts.Excepts = append(ts.Excepts, clause)
	}
	if p.at(token.FINALLY) {
		p.advance()
		ts.Finally = p.parseBlock()
	}
	return ts
}

// ---- Expressions (Pratt-style precedence climb) ----

func (p *Parser) parseExpr() ast.Expr { return p.parsePipeline() }

// pipeline binds loosest, left-associative: a | b | c == (a | b) | c.
func (p *Parser) parsePipeline() ast.Expr {
	left := p.parseOr()
	for p.at(token.PIPE) {
		t := p.advance()
		right := p.parseOr()
		left = &ast.Pipeline{Left: left, Right: right, Position: pos(t)}
	}
	return left
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.at(token.OR) {
		t := p.advance()
		right := p.parseAnd()
		left = &ast.BinaryOp{Op: "or", Left: left, Right: right, Position: pos(t)}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	for p.at(token.AND) {
		t := p.advance()
		right := p.parseNot()
		left = &ast.BinaryOp{Op: "and", Left: left, Right: right, Position: pos(t)}
	}
	return left
}

func (p *Parser) parseNot() ast.Expr {
	if p.at(token.NOT) {
		t := p.advance()
		x := p.parseNot()
		return &ast.UnaryOp{Op: "not", X: x, Position: pos(t)}
	}
	return p.parseComparison()
}

var comparisonKinds = map[token.Kind]string{
	token.LT: "<", token.LTE: "<=", token.GT: ">", token.GTE: ">=",
	token.EQ: "==", token.NEQ: "!=", token.IN: "in", token.NOT_IN: "not in",
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseSum()
	for {
		opStr, ok := comparisonKinds[p.cur().Kind]
		if !ok {
			break
		}
		t := p.advance()
		right := p.parseSum()
		left = &ast.BinaryOp{Op: opStr, Left: left, Right: right, Position: pos(t)}
	}
	return left
}

func (p *Parser) parseSum() ast.Expr {
	left := p.parseTerm()
	for p.at(token.PLUS) || p.at(token.MINUS) {
		t := p.advance()
		right := p.parseTerm()
		left = &ast.BinaryOp{Op: t.Literal, Left: left, Right: right, Position: pos(t)}
	}
	return left
}

func (p *Parser) parseTerm() ast.Expr {
	left := p.parseUnary()
	for p.at(token.STAR) || p.at(token.SLASH) || p.at(token.PERCENT) {
		t := p.advance()
		right := p.parseUnary()
		left = &ast.BinaryOp{Op: t.Literal, Left: left, Right: right, Position: pos(t)}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.at(token.MINUS) {
		t := p.advance()
		x := p.parseUnary()
		return &ast.UnaryOp{Op: "-", X: x, Position: pos(t)}
	}
	return p.parsePower()
}

// power is right-associative: 2 ** 3 ** 2 == 2 ** (3 ** 2).
func (p *Parser) parsePower() ast.Expr {
	base := p.parsePostfix()
	if p.at(token.STAR_STAR) {
		t := p.advance()
		exp := p.parseUnary()
		return &ast.BinaryOp{Op: "**", Left: base, Right: exp, Position: pos(t)}
	}
	return base
}

// parsePostfix handles call/attribute/subscript chains binding tightest.
func (p *Parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case token.DOT:
			t := p.advance()
			field := p.expect(token.IDENT).Literal
			x = &ast.Attribute{X: x, Field: field, Position: pos(t)}
		case token.LPAREN:
			t := p.advance()
			args := p.parseArgs()
			p.expect(token.RPAREN)
			x = &ast.Call{Callee: x, Args: args, Position: pos(t)}
		case token.LBRACKET:
			t := p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACKET)
			x = &ast.Subscript{X: x, Index: idx, Position: pos(t)}
		default:
			return x
		}
	}
}

func (p *Parser) parseArgs() []ast.CallArg {
	var args []ast.CallArg
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		if p.at(token.IDENT) && p.peekAt(1).Kind == token.ASSIGN {
			name := p.advance().Literal
			p.advance() // "="
			args = append(args, ast.CallArg{Name: name, Value: p.parseExpr()})
		} else {
			args = append(args, ast.CallArg{Value: p.parseExpr()})
		}
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.INT:
		p.advance()
		var v int64
		fmt.Sscanf(t.Literal, "%d", &v)
		return &ast.Literal{Kind: ast.LitInt, IntVal: v, Position: pos(t)}
	case token.FLOAT:
		p.advance()
		var v float64
		fmt.Sscanf(t.Literal, "%g", &v)
		return &ast.Literal{Kind: ast.LitFloat, FloatVal: v, Position: pos(t)}
	case token.STRING:
		p.advance()
		return &ast.Literal{Kind: ast.LitString, StrVal: t.Literal, Position: pos(t)}
	case token.TRUE:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, BoolVal: true, Position: pos(t)}
	case token.FALSE:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, BoolVal: false, Position: pos(t)}
	case token.NULL:
		p.advance()
		return &ast.Literal{Kind: ast.LitNull, Position: pos(t)}
	case token.LAMBDA:
		return p.parseLambda()
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.LBRACKET:
		return p.parseBracket()
	case token.LBRACE:
		return p.parseBrace()
	case token.IDENT:
		return p.parseScopedOrIdent()
	}

	p.errorf("unexpected token %s %q in expression", t.Kind, t.Literal)
	p.advance()
	return &ast.Literal{Kind: ast.LitNull, Position: pos(t)}
}

// parseScopedOrIdent disambiguates `scope:name` from a bare identifier by
// lookahead: a recognized scope name followed by a COLON and then another
// IDENT marks a scoped reference. Whitespace around the COLON is not
// checked.
func (p *Parser) parseScopedOrIdent() ast.Expr {
	t := p.advance()
	if p.at(token.COLON) && isScopeWord(t.Literal) && p.peekAt(1).Kind == token.IDENT {
		p.advance() // ":"
		name := p.advance().Literal
		return &ast.ScopedName{Scope: t.Literal, Name: name, Position: pos(t)}
	}
	return &ast.Identifier{Name: t.Literal, Position: pos(t)}
}

func isScopeWord(s string) bool {
	switch s {
	case "local", "private", "public", "system":
		return true
	}
	return false
}

func (p *Parser) parseLambda() ast.Expr {
	start := p.advance() // "lambda"
	var params []*ast.Param
	for !p.at(token.COLON) && !p.at(token.EOF) {
		param := &ast.Param{}
		if p.at(token.STAR) {
			p.advance()
			param.Variadic = true
		}
		param.Name = p.expect(token.IDENT).Literal
		if p.at(token.ASSIGN) {
			p.advance()
			param.Default = p.parseExpr()
		}
		params = append(params, param)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.COLON)
	body := p.parseExpr()
	return &ast.Lambda{Params: params, Body: body, Position: pos(start)}
}

// parseParenOrTuple handles `(expr)` grouping and `(a, b, ...)` tuple
// literals; a single trailing comma with one element still yields a tuple.
func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.advance() // "("
	if p.at(token.RPAREN) {
		p.advance()
		return &ast.TupleLit{Position: pos(start)}
	}
	first := p.parseExpr()
	if !p.at(token.COMMA) {
		p.expect(token.RPAREN)
		return first
	}
	elems := []ast.Expr{first}
	for p.at(token.COMMA) {
		p.advance()
		if p.at(token.RPAREN) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RPAREN)
	return &ast.TupleLit{Elems: elems, Position: pos(start)}
}

// parseBracket handles list literals and list comprehensions.
func (p *Parser) parseBracket() ast.Expr {
	start := p.advance() // "["
	if p.at(token.RBRACKET) {
		p.advance()
		return &ast.ListLit{Position: pos(start)}
	}
	first := p.parseExpr()
	if p.at(token.FOR) {
		p.advance()
		target := p.parsePrimary()
		p.expect(token.IN)
		iter := p.parseExpr()
		var cond ast.Expr
		if p.at(token.IF) {
			p.advance()
			cond = p.parseExpr()
		}
		p.expect(token.RBRACKET)
		return &ast.Comprehension{Result: first, Target: target, Iter: iter, Cond: cond, Position: pos(start)}
	}
	elems := []ast.Expr{first}
	for p.at(token.COMMA) {
		p.advance()
		if p.at(token.RBRACKET) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RBRACKET)
	return &ast.ListLit{Elems: elems, Position: pos(start)}
}

// parseBrace handles `{1, 2}` set literals and `{k: v}` dict literals; an
// empty `{}` is a dict, per the common scripting-language convention.
func (p *Parser) parseBrace() ast.Expr {
	start := p.advance() // "{"
	if p.at(token.RBRACE) {
		p.advance()
		return &ast.DictLit{Position: pos(start)}
	}
	firstKey := p.parseExpr()
	if p.at(token.COLON) {
		p.advance()
		firstVal := p.parseExpr()
		dl := &ast.DictLit{Entries: []ast.DictEntry{{Key: firstKey, Value: firstVal}}, Position: pos(start)}
		for p.at(token.COMMA) {
			p.advance()
			if p.at(token.RBRACE) {
				break
			}
			k := p.parseExpr()
			p.expect(token.COLON)
			v := p.parseExpr()
			dl.Entries = append(dl.Entries, ast.DictEntry{Key: k, Value: v})
		}
		p.expect(token.RBRACE)
		return dl
	}
	sl := &ast.SetLit{Elems: []ast.Expr{firstKey}, Position: pos(start)}
	for p.at(token.COMMA) {
		p.advance()
		if p.at(token.RBRACE) {
			break
		}
		sl.Elems = append(sl.Elems, p.parseExpr())
	}
	p.expect(token.RBRACE)
	return sl
}
