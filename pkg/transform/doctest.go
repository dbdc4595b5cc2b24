package transform

import (
	"fmt"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/logger"
	"github.com/GriffinCanCode/pyxc/pkg/symtab"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

type doctestCtx struct {
	pos   ast.Pos
	tests *[]*ast.DictItem
	// class is the module-level class being visited, nil at module level.
	class *ast.ClassDef
}

var doctestCollector = visitor.New[doctestCtx]("DoctestHack").
	On(doctestFunc, ast.KindFuncDef).
	On(doctestClass, ast.KindClassDef).
	On(visitor.Identity[doctestCtx], ast.KindPropertyDef).
	OnExpr(visitor.Identity[doctestCtx]).
	OnNode(visitor.Descend[doctestCtx])

// DoctestHack implements the doctesthack directive: it publishes the
// docstrings of module functions and class methods in a module level
// __test__ dict so doctest finds them in the compiled module. A module
// that binds __test__ itself is left alone.
func DoctestHack(c *Context, m *ast.Module) *ast.Module {
	if !m.Directives.Bool("doctesthack") {
		return m
	}
	scope := c.Table.Scope(m.Scope)
	if scope == nil {
		return m
	}
	if _, e := scope.LookupHere("__test__"); e != nil {
		return m
	}
	pos := m.Position()
	entry, _ := scope.Declare(symtab.Entry{
		Name:       "__test__",
		Type:       symtab.ObjectType,
		Kind:       symtab.VarEntry,
		Visibility: symtab.Public,
		Pos:        pos,
	})

	var tests []*ast.DictItem
	doctestCollector.VisitChildren(doctestCtx{pos: pos, tests: &tests}, m)

	lhs := ast.NewName(pos, "__test__")
	lhs.Entry = entry
	body := ast.Block(m.Body)
	body.Stats = append(body.Stats, ast.NewAssign(pos, lhs, &ast.Dict{Base: ast.At(pos), Items: tests}))
	m.Body = body
	logger.LogExpansion("DoctestHack", "__test__", pos.Line)
	return m
}

func doctestFunc(_ *visitor.Visitor[doctestCtx], ctx doctestCtx, n ast.Node) visitor.Result {
	fn := n.(*ast.FuncDef)
	if fn.Doc == "" || (fn.Cdef && !fn.Overridable) {
		return visitor.Keep(n)
	}
	name := fn.Name
	var parent ast.Expr
	if ctx.class == nil {
		ref := ast.NewName(ctx.pos, fn.Name)
		ref.Entry = fn.Entry
		parent = ref
	} else {
		cls := ast.NewName(ctx.pos, ctx.class.Name)
		cls.Entry = ctx.class.Entry
		parent = ast.NewAttribute(ctx.pos, cls, fn.Name)
		name = ctx.class.Name + "." + fn.Name
	}
	*ctx.tests = append(*ctx.tests, &ast.DictItem{
		Base:  ast.At(ctx.pos),
		Key:   &ast.StrLit{Base: ast.At(ctx.pos), Value: fmt.Sprintf("%s (line %d)", name, fn.Position().Line), Unicode: true},
		Value: ast.NewAttribute(ctx.pos, parent, "__doc__"),
	})
	return visitor.Keep(n)
}

func doctestClass(v *visitor.Visitor[doctestCtx], ctx doctestCtx, n ast.Node) visitor.Result {
	if ctx.class != nil {
		return visitor.Keep(n)
	}
	ctx.class = n.(*ast.ClassDef)
	v.VisitChildren(ctx, n)
	return visitor.Keep(n)
}
