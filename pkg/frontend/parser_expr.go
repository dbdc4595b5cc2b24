package frontend

import (
	"strconv"
	"strings"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
)

var (
	orOps    = map[TokenType]string{OR: "or"}
	andOps   = map[TokenType]string{AND: "and"}
	bitOrOps = map[TokenType]string{PIPE: "|"}
	xorOps   = map[TokenType]string{CARET: "^"}
	andBits  = map[TokenType]string{AMPER: "&"}
	shiftOps = map[TokenType]string{LSHIFT: "<<", RSHIFT: ">>"}
	arithOps = map[TokenType]string{PLUS: "+", MINUS: "-"}
	termOps  = map[TokenType]string{STAR: "*", SLASH: "/", DOUBLESLASH: "//", PERCENT: "%"}
)

func (p *Parser) test() ast.Expr {
	if p.check(LAMBDA) {
		return p.lambda()
	}
	return p.orTest()
}

func (p *Parser) lambda() ast.Expr {
	l := &ast.Lambda{Base: ast.At(p.at(p.advance()))}
	for !p.check(COLON) {
		l.Args = append(l.Args, p.parameter(false))
		if !p.match(COMMA) {
			break
		}
		p.advance()
	}
	p.consume(COLON, "expected ':' in lambda")
	l.Body = p.test()
	return l
}

// binary parses a left-associative chain of the operators in ops.
func (p *Parser) binary(operand func() ast.Expr, ops map[TokenType]string) ast.Expr {
	left := operand()
	for {
		op, ok := ops[p.current.Type]
		if !ok {
			return left
		}
		pos := p.at(p.advance())
		left = &ast.BinOp{Base: ast.At(pos), Op: op, Left: left, Right: operand()}
	}
}

func (p *Parser) orTest() ast.Expr  { return p.binary(p.andTest, orOps) }
func (p *Parser) andTest() ast.Expr { return p.binary(p.notTest, andOps) }

func (p *Parser) notTest() ast.Expr {
	if p.check(NOT) {
		pos := p.at(p.advance())
		return &ast.UnaryOp{Base: ast.At(pos), Op: "not", Operand: p.notTest()}
	}
	return p.comparison()
}

func (p *Parser) comparison() ast.Expr {
	left := p.bitOr()
	for {
		pos := p.at(p.current)
		var op string
		switch p.current.Type {
		case EQ, NE, LT, LE, GT, GE:
			op = p.advance().Lexeme
		case IN:
			p.advance()
			op = "in"
		case IS:
			p.advance()
			op = "is"
			if p.match(NOT) {
				p.advance()
				op = "is not"
			}
		case NOT:
			if p.peek(1).Type != IN {
				return left
			}
			p.advance()
			p.advance()
			op = "not in"
		default:
			return left
		}
		left = &ast.BinOp{Base: ast.At(pos), Op: op, Left: left, Right: p.bitOr()}
	}
}

func (p *Parser) bitOr() ast.Expr  { return p.binary(p.bitXor, bitOrOps) }
func (p *Parser) bitXor() ast.Expr { return p.binary(p.bitAnd, xorOps) }
func (p *Parser) bitAnd() ast.Expr { return p.binary(p.shift, andBits) }
func (p *Parser) shift() ast.Expr  { return p.binary(p.arith, shiftOps) }
func (p *Parser) arith() ast.Expr  { return p.binary(p.term, arithOps) }
func (p *Parser) term() ast.Expr   { return p.binary(p.factor, termOps) }

// factor parses unary operators, the address-of operator and
// "<type>operand" casts.
func (p *Parser) factor() ast.Expr {
	pos := p.at(p.current)
	switch p.current.Type {
	case MINUS, PLUS, TILDE, AMPER:
		op := p.advance().Lexeme
		return &ast.UnaryOp{Base: ast.At(pos), Op: op, Operand: p.factor()}
	case LT:
		p.advance()
		typ := p.castType()
		p.consume(GT, "expected '>' after cast type")
		return &ast.Typecast{Base: ast.At(pos), Type: typ, Operand: p.factor()}
	}
	return p.power()
}

// castType parses a C type name with pointer stars.
func (p *Parser) castType() ast.Expr {
	pos := p.at(p.current)
	name := p.cTypeName(false)
	for p.match(STAR) {
		p.advance()
		name += "*"
	}
	return ast.NewName(pos, name)
}

func (p *Parser) power() ast.Expr {
	base := p.primary()
	if !p.match(DOUBLESTAR) {
		return base
	}
	pos := p.at(p.advance())
	return &ast.BinOp{Base: ast.At(pos), Op: "**", Left: base, Right: p.factor()}
}

func (p *Parser) primary() ast.Expr {
	e := p.atom()
	for {
		switch p.current.Type {
		case LPAREN:
			e = p.call(e)
		case LBRACKET:
			pos := p.at(p.advance())
			if p.check(COLON) {
				p.error("slices are not supported")
			}
			index := p.exprList(p.test)
			if p.check(COLON) {
				p.error("slices are not supported")
			}
			p.consume(RBRACKET, "expected ']'")
			e = &ast.Index{Base: ast.At(pos), Obj: e, Index: index}
		case DOT:
			pos := p.at(p.advance())
			e = ast.NewAttribute(pos, e, p.name("expected attribute name"))
		default:
			return e
		}
	}
}

func (p *Parser) call(fn ast.Expr) ast.Expr {
	p.advance()
	call := &ast.Call{Base: ast.At(fn.Position()), Func: fn}
	for !p.check(RPAREN) {
		switch {
		case p.match(STAR):
			p.advance()
			call.StarArg = p.test()
		case p.match(DOUBLESTAR):
			p.advance()
			call.StarStarArg = p.test()
		case p.check(NAME) && p.peek(1).Type == ASSIGN:
			pos := p.at(p.current)
			name := p.advance().Lexeme
			p.advance()
			call.Keywords = append(call.Keywords, &ast.Keyword{Base: ast.At(pos), Name: name, Value: p.test()})
		default:
			if len(call.Keywords) > 0 || call.StarStarArg != nil {
				p.error("positional argument follows keyword argument")
			}
			call.Args = append(call.Args, p.test())
		}
		if !p.match(COMMA) {
			break
		}
		p.advance()
	}
	p.consume(RPAREN, "expected ')'")
	return call
}

func (p *Parser) atom() ast.Expr {
	tok := p.current
	pos := p.at(tok)
	switch tok.Type {
	case NAME:
		p.advance()
		switch {
		case tok.Lexeme == "NULL":
			return &ast.NullLit{Base: ast.At(pos)}
		case tok.Lexeme == "sizeof" && p.check(LPAREN):
			p.advance()
			operand := p.sizeofOperand()
			p.consume(RPAREN, "expected ')'")
			return &ast.Sizeof{Base: ast.At(pos), Operand: operand}
		}
		return ast.NewName(pos, tok.Lexeme)
	case INT:
		p.advance()
		v, ok := parseInt(tok.Lexeme)
		if !ok {
			p.report(tok, "integer literal out of range: "+tok.Lexeme)
		}
		return &ast.IntLit{Base: ast.At(pos), Text: tok.Lexeme, Value: v}
	case FLOAT:
		p.advance()
		return &ast.FloatLit{Base: ast.At(pos), Text: tok.Lexeme}
	case STRING:
		return p.str()
	case NONE:
		p.advance()
		return ast.NewNone(pos)
	case TRUE, FALSE:
		p.advance()
		return ast.NewBool(pos, tok.Type == TRUE)
	case LPAREN:
		p.advance()
		if p.match(RPAREN) {
			p.advance()
			return ast.NewTuple(pos)
		}
		var e ast.Expr
		if p.check(YIELD) {
			e = p.yieldExpr()
		} else {
			e = p.testListStar()
		}
		p.consume(RPAREN, "expected ')'")
		if seq, ok := e.(*ast.Sequence); ok && !seq.List {
			seq.SetPosition(pos)
		}
		return e
	case LBRACKET:
		p.advance()
		list := &ast.Sequence{Base: ast.At(pos), List: true, Args: []ast.Expr{}}
		for !p.check(RBRACKET) {
			list.Args = append(list.Args, p.starOrTest())
			if !p.match(COMMA) {
				break
			}
			p.advance()
		}
		p.consume(RBRACKET, "expected ']'")
		return list
	case LBRACE:
		return p.dict()
	}
	p.error("expected expression")
	return nil
}

// sizeofOperand parses a C type ("unsigned int", "char*") or an
// expression.
func (p *Parser) sizeofOperand() ast.Expr {
	if !p.check(NAME) {
		return p.test()
	}
	if typeModifiers[p.current.Lexeme] {
		return p.castType()
	}
	i := 1
	for p.peek(i).Type == STAR {
		i++
	}
	if i > 1 && p.peek(i).Type == RPAREN {
		return p.castType()
	}
	return p.test()
}

func (p *Parser) dict() ast.Expr {
	d := &ast.Dict{Base: ast.At(p.at(p.advance()))}
	for !p.check(RBRACE) {
		key := p.test()
		if !p.check(COLON) {
			p.error("set literals are not supported")
		}
		pos := p.at(p.advance())
		d.Items = append(d.Items, &ast.DictItem{Base: ast.At(pos), Key: key, Value: p.test()})
		if !p.match(COMMA) {
			break
		}
		p.advance()
	}
	p.consume(RBRACE, "expected '}'")
	return d
}

func (p *Parser) yieldExpr() ast.Expr {
	y := &ast.Yield{Base: ast.At(p.at(p.advance()))}
	if !p.endsExprList() {
		y.Value = p.testList()
	}
	return y
}

// str parses adjacent string literals into one.
func (p *Parser) str() ast.Expr {
	lit := &ast.StrLit{Base: ast.At(p.at(p.current))}
	var b strings.Builder
	for p.check(STRING) {
		tok := p.advance()
		value, unicode := decodeString(tok.Lexeme)
		b.WriteString(value)
		lit.Unicode = lit.Unicode || unicode
	}
	lit.Value = b.String()
	return lit
}

// exprList parses elem separated by commas. More than one element, or a
// trailing comma, makes a tuple.
func (p *Parser) exprList(elem func() ast.Expr) ast.Expr {
	pos := p.at(p.current)
	first := elem()
	if !p.match(COMMA) {
		return first
	}
	elems := []ast.Expr{first}
	for p.match(COMMA) {
		p.advance()
		if p.endsExprList() {
			break
		}
		elems = append(elems, elem())
	}
	return ast.NewTuple(pos, elems...)
}

func (p *Parser) endsExprList() bool {
	switch p.current.Type {
	case NEWLINE, SEMICOLON, ASSIGN, AUGASSIGN, RPAREN, RBRACKET, RBRACE, COLON, IN, EOF:
		return true
	}
	return false
}

func (p *Parser) testList() ast.Expr     { return p.exprList(p.test) }
func (p *Parser) testListStar() ast.Expr { return p.exprList(p.starOrTest) }

// targetList parses loop targets, which stop before "in".
func (p *Parser) targetList() ast.Expr {
	return p.exprList(func() ast.Expr {
		if p.check(STAR) {
			return p.starred(p.bitOr)
		}
		return p.bitOr()
	})
}

func (p *Parser) starOrTest() ast.Expr {
	if p.check(STAR) {
		return p.starred(p.bitOr)
	}
	return p.test()
}

func (p *Parser) starred(operand func() ast.Expr) ast.Expr {
	pos := p.at(p.advance())
	return &ast.Starred{Base: ast.At(pos), Target: operand()}
}

func parseInt(text string) (int64, bool) {
	clean := strings.TrimRight(strings.ReplaceAll(text, "_", ""), "lLuU")
	base := 0
	if len(clean) > 1 && clean[0] == '0' && clean[1] >= '0' && clean[1] <= '9' {
		base = 10
	}
	v, err := strconv.ParseInt(clean, base, 64)
	return v, err == nil
}

// decodeString strips the prefix and quotes of a string token and
// resolves its escapes. unicode is set for u-prefixed literals.
func decodeString(lexeme string) (value string, unicode bool) {
	i := strings.IndexAny(lexeme, `'"`)
	prefix := strings.ToLower(lexeme[:i])
	body := lexeme[i:]
	quote := body[:1]
	if strings.HasPrefix(body, strings.Repeat(quote, 3)) && len(body) >= 6 {
		body = body[3 : len(body)-3]
	} else {
		body = body[1 : len(body)-1]
	}
	unicode = strings.Contains(prefix, "u")
	if strings.Contains(prefix, "r") {
		return body, unicode
	}
	return unescape(body, !strings.Contains(prefix, "b")), unicode
}

func unescape(s string, text bool) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch esc := s[i]; esc {
		case '\n':
		case '\\', '\'', '"':
			b.WriteByte(esc)
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case 'x', 'u', 'U':
			width := 2
			switch esc {
			case 'u':
				width = 4
			case 'U':
				width = 8
			}
			if (esc != 'x' && !text) || i+1+width > len(s) {
				b.WriteByte('\\')
				b.WriteByte(esc)
				continue
			}
			code, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				b.WriteByte('\\')
				b.WriteByte(esc)
				continue
			}
			if esc == 'x' && !text {
				b.WriteByte(byte(code))
			} else {
				b.WriteRune(rune(code))
			}
			i += width
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			code, _ := strconv.ParseUint(s[i:j], 8, 32)
			if text {
				b.WriteRune(rune(code))
			} else {
				b.WriteByte(byte(code))
			}
			i = j - 1
		default:
			b.WriteByte('\\')
			b.WriteByte(esc)
		}
	}
	return b.String()
}
