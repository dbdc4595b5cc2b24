package transform

import (
	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/symtab"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

type builtinCtx struct {
	c     *Context
	scope symtab.ScopeID
}

// unaryMethods map cython functions of one argument to unary operators.
var unaryMethods = map[string]struct {
	op      string
	postfix bool
}{
	"address":                {op: "&"},
	"operator.address":       {op: "&"},
	"operator.dereference":   {op: "*"},
	"operator.preincrement":  {op: "++"},
	"operator.predecrement":  {op: "--"},
	"operator.postincrement": {op: "++", postfix: true},
	"operator.postdecrement": {op: "--", postfix: true},
}

var builtinMethods = visitor.New[builtinCtx]("TransformBuiltinMethods").
	On(builtinScoped, ast.KindFuncDef, ast.KindLambda, ast.KindClassDef).
	On(builtinAttribute, ast.KindAttribute).
	On(builtinName, ast.KindName).
	On(builtinCall, ast.KindCall).
	OnNode(visitor.Descend[builtinCtx])

// TransformBuiltinMethods replaces uses of the cython module's
// compile-time functions and constants with the nodes they stand for.
func TransformBuiltinMethods(c *Context, m *ast.Module) *ast.Module {
	builtinMethods.VisitChildren(builtinCtx{c: c, scope: m.Scope}, m)
	return m
}

func builtinScoped(v *visitor.Visitor[builtinCtx], ctx builtinCtx, n ast.Node) visitor.Result {
	inner := ctx
	switch x := n.(type) {
	case *ast.FuncDef:
		v.VisitChildren(ctx, n, "decorators", "args", "star_arg", "starstar_arg", "return_type")
		inner.scope = x.LocalScope
		v.VisitChildren(inner, n, "body")
		return visitor.Keep(n)
	case *ast.Lambda:
		v.VisitChildren(ctx, n, "args")
		inner.scope = x.LocalScope
		v.VisitChildren(inner, n, "body")
		return visitor.Keep(n)
	case *ast.ClassDef:
		v.VisitChildren(ctx, n, "decorators", "bases")
		inner.scope = x.Scope
		v.VisitChildren(inner, n, "body")
	}
	return visitor.Keep(n)
}

func builtinAttribute(v *visitor.Visitor[builtinCtx], ctx builtinCtx, n ast.Node) visitor.Result {
	v.VisitChildren(ctx, n)
	return ctx.cythonAttribute(n.(ast.Expr))
}

func builtinName(_ *visitor.Visitor[builtinCtx], ctx builtinCtx, n ast.Node) visitor.Result {
	return ctx.cythonAttribute(n.(ast.Expr))
}

func (ctx builtinCtx) cythonAttribute(e ast.Expr) visitor.Result {
	attr := ast.CythonAttribute(e)
	pos := e.Position()
	switch {
	case attr == "":
	case attr == "compiled":
		return visitor.Replace(ast.NewBool(pos, true))
	case attr == "NULL":
		return visitor.Replace(&ast.NullLit{Base: ast.At(pos)})
	case attr == "set" || attr == "frozenset":
		name := ast.NewName(pos, attr)
		name.Entry, _ = ctx.c.Table.Scope(ctx.c.Table.Builtins()).LookupHere(attr)
		return visitor.Replace(name)
	case !symtab.IsBasicType(attr):
		ctx.c.Sink.Errorf(pos, "'%s' not a valid cython attribute or is being used incorrectly", attr)
	}
	return visitor.Keep(e)
}

func builtinCall(v *visitor.Visitor[builtinCtx], ctx builtinCtx, n ast.Node) visitor.Result {
	call := n.(*ast.Call)
	if fn, ok := call.Func.(*ast.Name); ok && fn.Name == "locals" && fn.CythonAttribute == "" {
		return ctx.locals(v, call)
	}
	function := ast.CythonAttribute(call.Func)
	if function == "" {
		v.VisitChildren(ctx, n)
		return visitor.Keep(n)
	}

	v.VisitChildren(ctx, n, "args", "keywords", "star_arg", "starstar_arg")
	args := call.Args
	pos := call.Func.Position()
	arity := func(want int, text string) bool {
		if len(args) == want {
			return true
		}
		ctx.c.Sink.Errorf(pos, "%s() takes exactly %s", function, text)
		return false
	}

	if u, ok := unaryMethods[function]; ok {
		if arity(1, "one argument") {
			return visitor.Replace(&ast.UnaryOp{Base: ast.At(pos), Op: u.op, Operand: args[0], Postfix: u.postfix})
		}
		return visitor.Keep(n)
	}
	switch function {
	case "operator.comma":
		if arity(2, "two arguments") {
			return visitor.Replace(&ast.BinOp{Base: ast.At(pos), Op: ",", Left: args[0], Right: args[1]})
		}
	case "cast":
		if arity(2, "two arguments") {
			if _, isType := typeName(ctx.c, ctx.scope, args[0]); !isType {
				ctx.c.Sink.Errorf(args[0].Position(), "Not a type")
				return visitor.Keep(n)
			}
			return visitor.Replace(&ast.Typecast{Base: ast.At(pos), Type: args[0], Operand: args[1]})
		}
	case "sizeof":
		if arity(1, "one argument") {
			return visitor.Replace(&ast.Sizeof{Base: ast.At(pos), Operand: args[0]})
		}
	case "typeof":
		if arity(1, "one argument") {
			return visitor.Replace(&ast.Typeof{Base: ast.At(pos), Operand: args[0]})
		}
	case "cmod", "cdiv":
		if arity(2, "two arguments") {
			op := "%"
			if function == "cdiv" {
				op = "/"
			}
			return visitor.Replace(&ast.BinOp{Base: ast.At(pos), Op: op, Left: args[0], Right: args[1], CDivision: true})
		}
	case "declare":
		if len(args) != 1 && len(args) != 2 {
			ctx.c.Sink.Errorf(pos, "declare() takes one or two arguments")
			return visitor.Keep(n)
		}
		if _, isType := typeName(ctx.c, ctx.scope, args[0]); !isType {
			ctx.c.Sink.Errorf(args[0].Position(), "Not a type")
			return visitor.Keep(n)
		}
		if len(args) == 2 {
			return visitor.Replace(args[1])
		}
		return visitor.Replace(ast.NewNone(call.Position()))
	case "set":
		call.Func = ast.NewName(pos, "set")
	default:
		ctx.c.Sink.Errorf(pos, "'%s' not a valid cython language construct", function)
	}
	return visitor.Keep(n)
}

// locals replaces a call of the builtin locals() with a dict literal of
// the names bound in the current scope.
func (ctx builtinCtx) locals(v *visitor.Visitor[builtinCtx], call *ast.Call) visitor.Result {
	scope := ctx.c.Table.Scope(ctx.scope)
	if scope == nil {
		v.VisitChildren(ctx, call)
		return visitor.Keep(call)
	}
	if _, e := scope.LookupHere("locals"); e != nil {
		v.VisitChildren(ctx, call)
		return visitor.Keep(call)
	}
	if len(call.Args) > 0 {
		ctx.c.Sink.Errorf(call.Position(), "Builtin 'locals()' called with wrong number of args, expected 0, got %d", len(call.Args))
		return visitor.Keep(call)
	}
	pos := call.Position()
	dict := &ast.Dict{Base: ast.At(pos)}
	for _, e := range scope.Entries() {
		name := ast.NewName(pos, e.Name)
		name.Entry, _ = scope.LookupHere(e.Name)
		dict.Items = append(dict.Items, &ast.DictItem{
			Base:  ast.At(pos),
			Key:   &ast.StrLit{Base: ast.At(pos), Value: e.Name},
			Value: name,
		})
	}
	return visitor.Replace(dict)
}
