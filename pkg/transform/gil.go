package transform

import (
	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

type gilCtx struct {
	c     *Context
	nogil bool
}

var gilChecker = visitor.New[gilCtx]("GilCheck").
	On(gilFunc, ast.KindFuncDef).
	On(gilStat, ast.KindGILStat).
	On(gilWith, ast.KindWith).
	OnExpr(visitor.Identity[gilCtx]).
	OnNode(visitor.Descend[gilCtx])

// GilCheck tracks whether the GIL is held through the tree and reports
// GIL state changes that cannot happen at runtime. Module code holds the
// GIL; a nogil function body starts without it.
func GilCheck(c *Context, m *ast.Module) *ast.Module {
	gilChecker.VisitChildren(gilCtx{c: c}, m)
	return m
}

func gilFunc(v *visitor.Visitor[gilCtx], ctx gilCtx, n ast.Node) visitor.Result {
	ctx.nogil = n.(*ast.FuncDef).Nogil
	v.VisitChildren(ctx, n)
	return visitor.Keep(n)
}

func gilStat(v *visitor.Visitor[gilCtx], ctx gilCtx, n ast.Node) visitor.Result {
	g := n.(*ast.GILStat)
	release := g.State == "nogil"
	switch {
	case release && ctx.nogil:
		ctx.c.Sink.Errorf(g.Position(), "Trying to release the GIL while it was previously released.")
	case !release && !ctx.nogil:
		ctx.c.Sink.Errorf(g.Position(), "Trying to acquire the GIL while it is already held.")
	}
	ctx.nogil = release
	v.VisitChildren(ctx, n)
	return visitor.Keep(n)
}

func gilWith(v *visitor.Visitor[gilCtx], ctx gilCtx, n ast.Node) visitor.Result {
	if ctx.nogil {
		ctx.c.Sink.Errorf(n.Position(), "with statement not allowed without gil")
	}
	v.VisitChildren(ctx, n)
	return visitor.Keep(n)
}
