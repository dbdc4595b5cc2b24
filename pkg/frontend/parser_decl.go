package frontend

import (
	"strings"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
)

// typeModifiers combine with a following C type name ("unsigned int").
var typeModifiers = map[string]bool{
	"unsigned": true,
	"signed":   true,
	"long":     true,
	"short":    true,
	"const":    true,
}

var visibilities = map[string]bool{
	"public":   true,
	"readonly": true,
	"extern":   true,
	"api":      true,
}

func (p *Parser) funcDef(decorators []*ast.Decorator) ast.Stmt {
	pos := p.at(p.advance())
	fn := &ast.FuncDef{Base: ast.At(pos), Decorators: decorators}
	fn.Name = p.name("expected function name")
	p.parameters(fn)
	if p.match(ARROW) {
		p.advance()
		fn.ReturnType = annotationType(p.test())
	}
	p.consume(COLON, "expected ':'")
	p.funcBody(fn)
	return fn
}

func (p *Parser) funcBody(fn *ast.FuncDef) {
	body := p.block()
	fn.Doc, body.Stats = docstring(body.Stats)
	fn.Body = body
}

// annotationType turns a return annotation naming a type into a base
// type. Other annotations are dropped.
func annotationType(e ast.Expr) ast.BaseType {
	if name := dotted(e); name != "" {
		return &ast.SimpleBaseType{Base: ast.At(e.Position()), Name: name}
	}
	return nil
}

func dotted(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.Name:
		return x.Name
	case *ast.Attribute:
		if obj := dotted(x.Obj); obj != "" {
			return obj + "." + x.Attr
		}
	}
	return ""
}

// cpdef parses "cpdef [type] name(args):".
func (p *Parser) cpdef(decorators []*ast.Decorator) ast.Stmt {
	pos := p.at(p.advance())
	vis := p.visibility()
	base := p.baseType()
	decl := p.declarator()
	if !p.check(LPAREN) {
		p.error("expected '(' after cpdef function name")
	}
	return p.cFuncDef(pos, decorators, vis, base, decl, true)
}

// cdefStatement parses a cdef statement or a "cdef:" block of
// declarations.
func (p *Parser) cdefStatement(decorators []*ast.Decorator) []ast.Stmt {
	pos := p.at(p.advance())
	if !p.match(COLON) {
		return []ast.Stmt{p.cdefDeclaration(pos, decorators)}
	}
	if len(decorators) > 0 {
		p.error("decorators cannot be applied to a cdef block")
	}
	p.advance()
	p.consume(NEWLINE, "expected newline after 'cdef:'")
	p.consume(INDENT, "expected an indented block")
	var stats []ast.Stmt
	for !p.check(DEDENT) && !p.check(EOF) {
		stats = append(stats, p.guarded(func() []ast.Stmt {
			return []ast.Stmt{p.cdefDeclaration(p.at(p.current), nil)}
		})...)
	}
	p.consume(DEDENT, "expected dedent")
	return stats
}

func (p *Parser) cdefDeclaration(pos ast.Pos, decorators []*ast.Decorator) ast.Stmt {
	vis := p.visibility()
	switch {
	case p.check(CLASS):
		return p.class(pos, decorators, true, vis)
	case p.check(FROM) && vis == "extern":
		p.error("cdef extern blocks are not supported")
	case p.checkWord("struct"), p.checkWord("union"):
		return p.structDef(pos, vis)
	case p.checkWord("enum"):
		return p.enumDef(pos, vis)
	}

	base := p.baseType()
	decl := p.declarator()
	if p.check(LPAREN) {
		return p.cFuncDef(pos, decorators, vis, base, decl, false)
	}

	def := &ast.CVarDef{Base: ast.At(pos), Decorators: decorators, BaseType: base, Visibility: vis}
	for {
		p.declaratorDefault(decl)
		def.Declarators = append(def.Declarators, decl)
		if !p.match(COMMA) {
			break
		}
		p.advance()
		decl = p.declarator()
	}
	p.consume(NEWLINE, "expected newline after declaration")
	return def
}

// cFuncDef parses the rest of a cdef or cpdef function after its name.
// Exception value clauses are skipped; a nogil marker sets Nogil.
func (p *Parser) cFuncDef(pos ast.Pos, decorators []*ast.Decorator, vis string, base ast.BaseType, decl ast.Declarator, overridable bool) ast.Stmt {
	fn := &ast.FuncDef{
		Base:        ast.At(pos),
		Name:        decl.DeclaredName(),
		Decorators:  decorators,
		Cdef:        true,
		Overridable: overridable,
		Visibility:  vis,
		ReturnType:  base,
	}
	if _, ok := decl.(*ast.NameDeclarator); !ok {
		fn.ReturnType = &ast.SimpleBaseType{Base: ast.At(base.Position()), Name: ast.DeclaredType(base.TypeName(), decl)}
	}
	p.parameters(fn)
	for !p.match(COLON, NEWLINE, EOF) {
		if p.checkWord("nogil") {
			fn.Nogil = true
		}
		p.advance()
	}
	p.consume(COLON, "expected ':'")
	p.funcBody(fn)
	return fn
}

func (p *Parser) classDef(decorators []*ast.Decorator) ast.Stmt {
	return p.class(p.at(p.current), decorators, false, "")
}

func (p *Parser) class(pos ast.Pos, decorators []*ast.Decorator, cdef bool, vis string) ast.Stmt {
	p.consume(CLASS, "expected 'class'")
	cls := &ast.ClassDef{Base: ast.At(pos), Decorators: decorators, Cdef: cdef, Visibility: vis}
	cls.Name = p.name("expected class name")
	if p.match(LPAREN) {
		p.advance()
		for !p.check(RPAREN) {
			cls.Bases = append(cls.Bases, p.test())
			if !p.match(COMMA) {
				break
			}
			p.advance()
		}
		p.consume(RPAREN, "expected ')'")
	}
	p.consume(COLON, "expected ':'")
	body := p.block()
	cls.Doc, body.Stats = docstring(body.Stats)
	cls.Body = body
	return cls
}

// structDef parses "cdef struct Name:" and "cdef union Name:" with one
// field declaration per line.
func (p *Parser) structDef(pos ast.Pos, vis string) ast.Stmt {
	s := &ast.StructDef{Base: ast.At(pos), Union: p.advance().Lexeme == "union", Visibility: vis}
	s.Name = p.name("expected struct name")
	p.consume(COLON, "expected ':'")
	p.consume(NEWLINE, "expected newline")
	p.consume(INDENT, "expected an indented block")
	for !p.check(DEDENT) && !p.check(EOF) {
		if p.match(PASS) {
			p.advance()
			p.consume(NEWLINE, "expected newline")
			continue
		}
		fieldPos := p.at(p.current)
		field := &ast.CVarDef{Base: ast.At(fieldPos), BaseType: p.baseType()}
		for {
			d := p.declarator()
			p.declaratorDefault(d)
			field.Declarators = append(field.Declarators, d)
			if !p.match(COMMA) {
				break
			}
			p.advance()
		}
		p.consume(NEWLINE, "expected newline after field")
		s.Attributes = append(s.Attributes, field)
	}
	p.consume(DEDENT, "expected dedent")
	return s
}

// enumDef parses "cdef enum [Name]:" with comma or newline separated
// items. Item values are not kept.
func (p *Parser) enumDef(pos ast.Pos, vis string) ast.Stmt {
	p.advance()
	e := &ast.EnumDef{Base: ast.At(pos), Visibility: vis}
	if p.check(NAME) {
		e.Name = p.advance().Lexeme
	}
	p.consume(COLON, "expected ':'")
	p.consume(NEWLINE, "expected newline")
	p.consume(INDENT, "expected an indented block")
	for !p.check(DEDENT) && !p.check(EOF) {
		if p.match(PASS) {
			p.advance()
		} else {
			for {
				e.Items = append(e.Items, p.name("expected enum item"))
				if p.match(ASSIGN) {
					p.advance()
					p.test()
				}
				if !p.match(COMMA) {
					break
				}
				p.advance()
			}
		}
		p.consume(NEWLINE, "expected newline after enum item")
	}
	p.consume(DEDENT, "expected dedent")
	return e
}

func (p *Parser) checkWord(word string) bool {
	return p.check(NAME) && p.current.Lexeme == word
}

// visibility consumes the visibility and inline modifiers of a cdef
// declaration.
func (p *Parser) visibility() string {
	vis := ""
	for p.check(NAME) && !p.endsDeclarator(p.peek(1)) {
		word := p.current.Lexeme
		switch {
		case visibilities[word]:
			vis = word
		case word == "inline":
		default:
			return vis
		}
		p.advance()
	}
	return vis
}

// endsDeclarator reports whether tok can follow a declared name, so the
// name before it is not a type or modifier.
func (p *Parser) endsDeclarator(tok Token) bool {
	switch tok.Type {
	case LPAREN, ASSIGN, COMMA, NEWLINE, SEMICOLON, COLON, RPAREN, EOF:
		return true
	}
	return false
}

// baseType parses the type of a C declaration. A name directly followed
// by a declarator terminator has no type: object is implied.
func (p *Parser) baseType() ast.BaseType {
	pos := p.at(p.current)
	if p.check(NAME) && p.endsDeclarator(p.peek(1)) {
		return &ast.SimpleBaseType{Base: ast.At(pos), Name: "object", Implicit: true}
	}
	var base ast.BaseType = &ast.SimpleBaseType{Base: ast.At(pos), Name: p.cTypeName(true)}
	if p.match(LBRACKET) {
		base = p.templatedType(base)
	}
	return base
}

// cTypeName parses a possibly dotted or modified C type name and returns
// its canonical spelling ("unsigned long long" is "ulonglong"). When
// declared is set a declared name follows the type, so a lone name after
// the modifiers is not part of the type.
func (p *Parser) cTypeName(declared bool) string {
	sign, longs, short := "", 0, false
	modified := false
	for p.check(NAME) && typeModifiers[p.current.Lexeme] {
		switch p.advance().Lexeme {
		case "unsigned":
			sign = "u"
		case "signed":
			sign = "s"
		case "long":
			longs++
		case "short":
			short = true
		}
		modified = true
		if declared && p.endsDeclarator(p.peek(1)) {
			break
		}
	}

	name := ""
	if !modified || p.check(NAME) && !typeModifiers[p.current.Lexeme] && !(declared && p.endsDeclarator(p.peek(1))) {
		name = p.name("expected type name")
		for p.match(DOT) {
			p.advance()
			name += "." + p.name("expected name after '.'")
		}
	}
	if !modified {
		return name
	}

	switch name {
	case "double":
		if longs > 0 {
			return "longdouble"
		}
		return name
	case "", "int":
		switch {
		case short:
			name = "short"
		case longs == 1:
			name = "long"
		case longs > 1:
			name = "longlong"
		default:
			name = "int"
		}
	}
	return sign + name
}

// templatedType parses the buffer option block of "object[int, ndim=2]".
func (p *Parser) templatedType(base ast.BaseType) ast.BaseType {
	t := &ast.TemplatedType{Base: ast.At(p.at(p.advance())), BaseType: base}
	for !p.check(RBRACKET) {
		if p.check(NAME) && p.peek(1).Type == ASSIGN {
			kwPos := p.at(p.current)
			name := p.advance().Lexeme
			p.advance()
			t.Keywords = append(t.Keywords, &ast.Keyword{Base: ast.At(kwPos), Name: name, Value: p.test()})
		} else {
			t.Positional = append(t.Positional, p.test())
		}
		if !p.match(COMMA) {
			break
		}
		p.advance()
	}
	p.consume(RBRACKET, "expected ']'")
	return t
}

// declarator parses "*name", "name[10]" and combinations.
func (p *Parser) declarator() ast.Declarator {
	pos := p.at(p.current)
	switch {
	case p.match(STAR):
		p.advance()
		return &ast.PtrDeclarator{Base: ast.At(pos), Inner: p.declarator()}
	case p.match(DOUBLESTAR):
		p.advance()
		inner := &ast.PtrDeclarator{Base: ast.At(pos), Inner: p.declarator()}
		return &ast.PtrDeclarator{Base: ast.At(pos), Inner: inner}
	}
	var d ast.Declarator = &ast.NameDeclarator{Base: ast.At(pos), Name: p.name("expected name in declaration")}
	for p.match(LBRACKET) {
		p.advance()
		arr := &ast.ArrayDeclarator{Base: ast.At(d.Position()), Inner: d}
		if !p.check(RBRACKET) {
			arr.Dimension = p.test()
		}
		p.consume(RBRACKET, "expected ']'")
		d = arr
	}
	return d
}

func (p *Parser) declaratorDefault(d ast.Declarator) {
	if !p.match(ASSIGN) {
		return
	}
	core := ast.Core(d)
	if core == nil {
		p.error("cannot assign a default value to an array")
	}
	p.advance()
	core.Default = p.test()
}

// parameters parses a parenthesized parameter list into fn.
func (p *Parser) parameters(fn *ast.FuncDef) {
	p.consume(LPAREN, "expected '('")
	for !p.check(RPAREN) {
		switch {
		case p.match(STAR):
			pos := p.at(p.advance())
			if p.check(NAME) {
				fn.StarArg = &ast.Arg{Base: ast.At(pos), Name: p.advance().Lexeme}
			}
		case p.match(DOUBLESTAR):
			pos := p.at(p.advance())
			fn.StarStarArg = &ast.Arg{Base: ast.At(pos), Name: p.name("expected name after '**'")}
		case p.checkWord("void") && p.peek(1).Type == RPAREN:
			p.advance()
		default:
			fn.Args = append(fn.Args, p.parameter(true))
		}
		if !p.match(COMMA) {
			break
		}
		p.advance()
	}
	p.consume(RPAREN, "expected ')'")
}

// parameter parses "[type [*]] name [: annotation] [= default]". Lambda
// parameters take no type.
func (p *Parser) parameter(typed bool) *ast.Arg {
	arg := &ast.Arg{Base: ast.At(p.at(p.current))}
	if typed && p.check(NAME) && p.typedParameter() {
		arg.BaseType = p.baseType()
		stars := 0
		for p.match(STAR) {
			p.advance()
			stars++
		}
		if stars > 0 {
			arg.BaseType = &ast.SimpleBaseType{
				Base: ast.At(arg.BaseType.Position()),
				Name: arg.BaseType.TypeName() + strings.Repeat("*", stars),
			}
		}
	}
	arg.Name = p.name("expected parameter name")
	if typed && p.match(COLON) {
		p.advance()
		arg.Annotation = p.test()
	}
	if p.match(ASSIGN) {
		p.advance()
		arg.Default = p.test()
	}
	return arg
}

func (p *Parser) typedParameter() bool {
	switch p.peek(1).Type {
	case NAME, STAR, LBRACKET:
		return true
	case DOT:
		return p.peek(2).Type == NAME && p.peek(3).Type == NAME
	}
	return false
}
