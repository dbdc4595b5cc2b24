package transform

import (
	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

// normCtx records whether the current node sits directly in a statement
// list and whether it sits inside an expression.
type normCtx struct {
	inList bool
	inExpr bool
}

var normalizer = visitor.New[normCtx]("NormalizeTree").
	On(normStatList, ast.KindStatList).
	On(normPass, ast.KindPass).
	On(normListContainer, ast.KindParallelAssignment, ast.KindEnumDef, ast.KindStructDef).
	On(visitor.Identity[normCtx], ast.KindNameDeclarator, ast.KindPtrDeclarator, ast.KindArrayDeclarator).
	OnStmt(normStmt).
	OnExpr(normExpr).
	OnNode(visitor.Descend[normCtx])

// NormalizeTree wraps every bare statement body in a StatList and
// removes Pass statements. It is idempotent.
func NormalizeTree(c *Context, m *ast.Module) *ast.Module {
	normalizer.VisitChildren(normCtx{}, m)
	return m
}

func normStatList(v *visitor.Visitor[normCtx], ctx normCtx, n ast.Node) visitor.Result {
	v.VisitChildren(normCtx{inList: true, inExpr: ctx.inExpr}, n)
	return visitor.Keep(n)
}

func normStmt(v *visitor.Visitor[normCtx], ctx normCtx, n ast.Node) visitor.Result {
	return normWrap(v, ctx, n, false)
}

func normListContainer(v *visitor.Visitor[normCtx], ctx normCtx, n ast.Node) visitor.Result {
	return normWrap(v, ctx, n, true)
}

func normWrap(v *visitor.Visitor[normCtx], ctx normCtx, n ast.Node, listContainer bool) visitor.Result {
	v.VisitChildren(normCtx{inList: listContainer, inExpr: ctx.inExpr}, n)
	if !ctx.inList && !ctx.inExpr {
		return visitor.Replace(ast.NewStatList(n.Position(), n.(ast.Stmt)))
	}
	return visitor.Keep(n)
}

func normPass(_ *visitor.Visitor[normCtx], ctx normCtx, n ast.Node) visitor.Result {
	if ctx.inList {
		return visitor.Prune()
	}
	return visitor.Replace(ast.NewStatList(n.Position()))
}

func normExpr(v *visitor.Visitor[normCtx], ctx normCtx, n ast.Node) visitor.Result {
	v.VisitChildren(normCtx{inList: ctx.inList, inExpr: true}, n)
	return visitor.Keep(n)
}
