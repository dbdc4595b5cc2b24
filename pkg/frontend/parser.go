// Package frontend - Recursive descent parser for pyx source
// Design: Predictive parsing, one statement at a time, resynchronizing
// at the next logical line after an error
package frontend

import (
	"fmt"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/diag"
	"github.com/GriffinCanCode/pyxc/pkg/fragment"
	"github.com/GriffinCanCode/pyxc/pkg/source"
)

type Parser struct {
	file    string
	tokens  []Token
	pos     int
	current Token
	errors  Errors
}

// bailout unwinds the parser to the enclosing statement after an error.
type bailout struct{}

func newParser(file string, tokens []Token) *Parser {
	p := &Parser{file: file, tokens: tokens, pos: -1}
	p.advance()
	return p
}

func (p *Parser) module() *ast.Module {
	start := p.at(p.current)
	stats := p.statements(EOF)
	m := &ast.Module{Base: ast.At(source.Pos{File: p.file, Line: 1, Col: 1})}
	m.Doc, stats = docstring(stats)
	m.Body = ast.NewStatList(start, stats...)
	return m
}

// statements parses statements up to (not including) end.
func (p *Parser) statements(end TokenType) []ast.Stmt {
	var stats []ast.Stmt
	for !p.check(end) && !p.check(EOF) {
		stats = append(stats, p.guarded(p.statement)...)
	}
	return stats
}

// guarded runs parse, recovering from a syntax error by skipping to the
// next line.
func (p *Parser) guarded(parse func() []ast.Stmt) (stats []ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			stats = nil
			p.synchronize()
		}
	}()
	return parse()
}

func (p *Parser) synchronize() {
	for !p.check(NEWLINE) && !p.check(EOF) {
		p.advance()
	}
	if p.check(NEWLINE) {
		p.advance()
	}
	if !p.check(INDENT) {
		return
	}
	// Drop the block of the broken header as well
	depth := 0
	for !p.check(EOF) {
		switch p.advance().Type {
		case INDENT:
			depth++
		case DEDENT:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *Parser) statement() []ast.Stmt {
	switch p.current.Type {
	case AT:
		return []ast.Stmt{p.decorated()}
	case DEF:
		return []ast.Stmt{p.funcDef(nil)}
	case CLASS:
		return []ast.Stmt{p.classDef(nil)}
	case CDEF:
		return p.cdefStatement(nil)
	case CPDEF:
		return []ast.Stmt{p.cpdef(nil)}
	case IF:
		return []ast.Stmt{p.ifStatement()}
	case WHILE:
		return []ast.Stmt{p.whileStatement()}
	case FOR:
		return []ast.Stmt{p.forStatement()}
	case TRY:
		return []ast.Stmt{p.tryStatement()}
	case WITH:
		return []ast.Stmt{p.withStatement()}
	case INDENT:
		p.error("unexpected indent")
	}
	return p.simpleStatements()
}

// block parses the suite after a ':'. It is either an indented block or
// simple statements on the same line.
func (p *Parser) block() *ast.StatList {
	pos := p.at(p.current)
	if !p.match(NEWLINE) {
		return ast.NewStatList(pos, p.simpleStatements()...)
	}
	p.advance()
	p.consume(INDENT, "expected an indented block")
	stats := p.statements(DEDENT)
	p.consume(DEDENT, "expected dedent")
	if len(stats) > 0 {
		pos = stats[0].Position()
	}
	return ast.NewStatList(pos, stats...)
}

func (p *Parser) simpleStatements() []ast.Stmt {
	var stats []ast.Stmt
	for {
		stats = append(stats, p.smallStatement()...)
		if !p.match(SEMICOLON) {
			break
		}
		p.advance()
		if p.check(NEWLINE) {
			break
		}
	}
	p.consume(NEWLINE, "expected newline")
	return stats
}

func (p *Parser) smallStatement() []ast.Stmt {
	tok := p.current
	pos := p.at(tok)
	switch tok.Type {
	case PASS:
		p.advance()
		return []ast.Stmt{&ast.Pass{Base: ast.At(pos)}}
	case BREAK:
		p.advance()
		return []ast.Stmt{&ast.Break{Base: ast.At(pos)}}
	case CONTINUE:
		p.advance()
		return []ast.Stmt{&ast.Continue{Base: ast.At(pos)}}
	case RETURN:
		p.advance()
		ret := &ast.Return{Base: ast.At(pos)}
		if !p.endOfStatement() {
			ret.Value = p.testList()
		}
		return []ast.Stmt{ret}
	case RAISE:
		p.advance()
		raise := &ast.Raise{Base: ast.At(pos)}
		if !p.endOfStatement() {
			raise.Exc = p.test()
		}
		return []ast.Stmt{raise}
	case IMPORT, CIMPORT:
		return p.importStatement()
	case FROM:
		return []ast.Stmt{p.fromImport()}
	}
	return []ast.Stmt{p.exprStatement()}
}

func (p *Parser) endOfStatement() bool {
	return p.match(NEWLINE, SEMICOLON, EOF)
}

// exprStatement parses an expression statement or an assignment.
func (p *Parser) exprStatement() ast.Stmt {
	pos := p.at(p.current)
	first := p.yieldOrTestList()

	if p.check(AUGASSIGN) {
		op := p.advance().Lexeme
		rhs := p.yieldOrTestList()
		value := &ast.BinOp{Base: ast.At(pos), Op: op[:len(op)-1], Left: fragment.Clone(first), Right: rhs}
		return ast.NewAssign(pos, first, value)
	}

	if !p.check(ASSIGN) {
		return ast.NewExprStat(pos, first)
	}
	exprs := []ast.Expr{first}
	for p.match(ASSIGN) {
		p.advance()
		exprs = append(exprs, p.yieldOrTestList())
	}
	rhs := exprs[len(exprs)-1]
	if len(exprs) == 2 {
		return ast.NewAssign(pos, exprs[0], rhs)
	}
	return &ast.CascadedAssignment{Base: ast.At(pos), LhsList: exprs[:len(exprs)-1], Rhs: rhs}
}

func (p *Parser) yieldOrTestList() ast.Expr {
	if p.check(YIELD) {
		return p.yieldExpr()
	}
	return p.testListStar()
}

// importStatement parses "import a.b [as c], d" and the cimport form.
// Each module becomes its own statement.
func (p *Parser) importStatement() []ast.Stmt {
	cimport := p.advance().Type == CIMPORT
	var stats []ast.Stmt
	for {
		pos := p.at(p.current)
		module := p.dottedName()
		asName := ""
		if p.match(AS) {
			p.advance()
			asName = p.name("expected name after 'as'")
		}
		if cimport {
			stats = append(stats, &ast.CImport{Base: ast.At(pos), Module: module, AsName: asName})
		} else {
			stats = append(stats, &ast.Import{Base: ast.At(pos), Module: module, AsName: asName})
		}
		if !p.match(COMMA) {
			return stats
		}
		p.advance()
	}
}

// fromImport parses "from m import a [as b], ..." and "from m cimport
// [struct] a [as b], ...".
func (p *Parser) fromImport() ast.Stmt {
	pos := p.at(p.advance())
	module := p.dottedName()
	cimport := false
	switch {
	case p.match(CIMPORT):
		cimport = true
	case !p.match(IMPORT):
		p.error("expected 'import' or 'cimport'")
	}
	p.advance()

	paren := p.match(LPAREN)
	if paren {
		p.advance()
	}
	var names []ast.ImportedName
	for {
		item := ast.ImportedName{Pos: p.at(p.current)}
		if cimport && p.peek(1).Type == NAME && (p.check(CLASS) || p.check(NAME) && isCImportKind(p.current.Lexeme)) {
			item.Kind = p.advance().Lexeme
		}
		item.Name = p.name("expected name to import")
		if p.match(AS) {
			p.advance()
			item.AsName = p.name("expected name after 'as'")
		}
		names = append(names, item)
		if !p.match(COMMA) {
			break
		}
		p.advance()
		if paren && p.check(RPAREN) {
			break
		}
	}
	if paren {
		p.consume(RPAREN, "expected ')'")
	}

	if cimport {
		return &ast.FromCImport{Base: ast.At(pos), Module: module, Names: names}
	}
	return &ast.FromImport{Base: ast.At(pos), Module: module, Names: names}
}

func isCImportKind(s string) bool {
	return s == "struct" || s == "union"
}

func (p *Parser) dottedName() string {
	name := p.name("expected module name")
	for p.match(DOT) {
		p.advance()
		name += "." + p.name("expected name after '.'")
	}
	return name
}

func (p *Parser) ifStatement() ast.Stmt {
	n := &ast.If{Base: ast.At(p.at(p.current))}
	for {
		pos := p.at(p.advance())
		cond := p.test()
		p.consume(COLON, "expected ':'")
		n.Clauses = append(n.Clauses, &ast.IfClause{Base: ast.At(pos), Cond: cond, Body: p.block()})
		if !p.check(ELIF) {
			break
		}
	}
	n.Else = p.elseBlock()
	return n
}

func (p *Parser) elseBlock() ast.Stmt {
	if !p.match(ELSE) {
		return nil
	}
	p.advance()
	p.consume(COLON, "expected ':' after 'else'")
	return p.block()
}

func (p *Parser) whileStatement() ast.Stmt {
	pos := p.at(p.advance())
	cond := p.test()
	p.consume(COLON, "expected ':'")
	body := p.block()
	return &ast.While{Base: ast.At(pos), Cond: cond, Body: body, Else: p.elseBlock()}
}

func (p *Parser) forStatement() ast.Stmt {
	pos := p.at(p.advance())
	target := p.targetList()
	p.consume(IN, "expected 'in'")
	iter := p.testList()
	p.consume(COLON, "expected ':'")
	body := p.block()
	return &ast.ForIn{Base: ast.At(pos), Target: target, Iter: iter, Body: body, Else: p.elseBlock()}
}

// tryStatement parses try/except/else/finally. A statement with both
// handlers and a finally clause becomes a try-finally around a
// try-except.
func (p *Parser) tryStatement() ast.Stmt {
	pos := p.at(p.advance())
	p.consume(COLON, "expected ':' after 'try'")
	body := p.block()

	var clauses []*ast.ExceptClause
	for p.check(EXCEPT) {
		clauses = append(clauses, p.exceptClause())
	}
	var elseBody ast.Stmt
	if len(clauses) > 0 {
		elseBody = p.elseBlock()
	}
	var stat ast.Stmt = body
	if len(clauses) > 0 {
		stat = &ast.TryExcept{Base: ast.At(pos), Body: body, Clauses: clauses, Else: elseBody}
	}
	if p.match(FINALLY) {
		p.advance()
		p.consume(COLON, "expected ':' after 'finally'")
		return &ast.TryFinally{Base: ast.At(pos), Body: ast.Block(stat), Finally: p.block()}
	}
	if len(clauses) == 0 {
		p.error("expected 'except' or 'finally'")
	}
	return stat
}

func (p *Parser) exceptClause() *ast.ExceptClause {
	c := &ast.ExceptClause{Base: ast.At(p.at(p.advance()))}
	if !p.check(COLON) {
		c.Pattern = p.test()
		if p.match(AS, COMMA) {
			p.advance()
			c.Target = p.test()
		}
	}
	p.consume(COLON, "expected ':'")
	c.Body = p.block()
	return c
}

// withStatement parses "with a as x, b: body" into nested with
// statements. A leading gil or nogil item becomes a GILStat.
func (p *Parser) withStatement() ast.Stmt {
	pos := p.at(p.advance())
	if (p.checkWord("gil") || p.checkWord("nogil")) && (p.peek(1).Type == COLON || p.peek(1).Type == COMMA) {
		g := &ast.GILStat{Base: ast.At(pos), State: p.advance().Lexeme}
		if p.match(COMMA) {
			p.advance()
			g.Body = ast.NewStatList(p.at(p.current), p.withItems())
			return g
		}
		p.consume(COLON, "expected ':'")
		g.Body = p.block()
		return g
	}
	return p.withItems()
}

// withItems parses the managers of a with statement and its body.
func (p *Parser) withItems() ast.Stmt {
	var items []*ast.With
	for {
		w := &ast.With{Base: ast.At(p.at(p.current))}
		w.Manager = p.test()
		if p.match(AS) {
			p.advance()
			w.Target = p.bitOr()
		}
		items = append(items, w)
		if !p.match(COMMA) {
			break
		}
		p.advance()
	}
	p.consume(COLON, "expected ':'")
	var body ast.Stmt = p.block()
	for i := len(items) - 1; i >= 0; i-- {
		items[i].Body = body
		body = items[i]
	}
	return body
}

// decorated parses decorators and the definition they apply to.
func (p *Parser) decorated() ast.Stmt {
	var decorators []*ast.Decorator
	for p.match(AT) {
		pos := p.at(p.advance())
		decorators = append(decorators, &ast.Decorator{Base: ast.At(pos), Expr: p.test()})
		p.consume(NEWLINE, "expected newline after decorator")
	}
	switch p.current.Type {
	case DEF:
		return p.funcDef(decorators)
	case CLASS:
		return p.classDef(decorators)
	case CPDEF:
		return p.cpdef(decorators)
	case CDEF:
		stats := p.cdefStatement(decorators)
		if len(stats) != 1 {
			p.error("decorators must be followed by a single definition")
		}
		return stats[0]
	}
	p.error("expected 'def', 'cdef' or 'class' after decorator")
	return nil
}

// docstring splits a leading string literal off a body.
func docstring(stats []ast.Stmt) (string, []ast.Stmt) {
	if len(stats) == 0 {
		return "", stats
	}
	if es, ok := stats[0].(*ast.ExprStat); ok {
		if s, ok := es.Expr.(*ast.StrLit); ok {
			return s.Value, stats[1:]
		}
	}
	return "", stats
}

func (p *Parser) at(tok Token) ast.Pos {
	return source.Pos{File: p.file, Line: tok.Line, Col: tok.Col}
}

func (p *Parser) name(msg string) string {
	if !p.check(NAME) {
		p.error(msg)
	}
	return p.advance().Lexeme
}

func (p *Parser) match(types ...TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			return true
		}
	}
	return false
}

func (p *Parser) check(typ TokenType) bool {
	return p.current.Type == typ
}

// peek returns the token n places after the current one.
func (p *Parser) peek(n int) Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) advance() Token {
	prev := p.current
	for {
		if p.pos < len(p.tokens)-1 {
			p.pos++
		}
		p.current = p.tokens[p.pos]
		if p.current.Type != ERROR {
			return prev
		}
		p.report(p.current, p.current.Lexeme)
	}
}

func (p *Parser) consume(typ TokenType, msg string) Token {
	if p.check(typ) {
		return p.advance()
	}
	p.error(msg)
	return Token{}
}

// error reports msg at the current token and abandons the statement.
func (p *Parser) error(msg string) {
	p.report(p.current, fmt.Sprintf("%s, got %s", msg, p.current))
	panic(bailout{})
}

func (p *Parser) report(tok Token, msg string) {
	p.errors = append(p.errors, diag.Diagnostic{Pos: p.at(tok), Pass: "Parse", Message: msg})
}
