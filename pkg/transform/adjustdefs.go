package transform

import (
	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/directives"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

type adjustCtx struct {
	c          *Context
	directives directives.Set
	inPyClass  bool
}

var defAdjuster = visitor.New[adjustCtx]("AdjustDefByDirectives").
	On(adjustDirectives, ast.KindCompilerDirectives).
	On(adjustFunc, ast.KindFuncDef).
	On(adjustClass, ast.KindClassDef).
	OnExpr(visitor.Identity[adjustCtx]).
	OnNode(visitor.Descend[adjustCtx])

// markerDirectives only apply to the definition they decorate.
var markerDirectives = []string{"cfunc", "ccall", "cclass"}

// AdjustDefByDirectives turns defs and classes into cdef functions and
// extension types as requested by the cfunc, ccall and cclass
// directives.
func AdjustDefByDirectives(c *Context, m *ast.Module) *ast.Module {
	defAdjuster.VisitChildren(adjustCtx{c: c, directives: m.Directives}, m)
	return m
}

func adjustDirectives(v *visitor.Visitor[adjustCtx], ctx adjustCtx, n ast.Node) visitor.Result {
	ctx.directives = n.(*ast.CompilerDirectives).Directives
	v.VisitChildren(ctx, n)
	return visitor.Keep(n)
}

// body returns the context for the body of a definition: marker
// directives stop there.
func (ctx adjustCtx) body(inPyClass bool) adjustCtx {
	set := ctx.directives.Copy()
	for _, name := range markerDirectives {
		delete(set, name)
	}
	ctx.directives = set
	ctx.inPyClass = inPyClass
	return ctx
}

func adjustFunc(v *visitor.Visitor[adjustCtx], ctx adjustCtx, n ast.Node) visitor.Result {
	fn := n.(*ast.FuncDef)
	switch {
	case ctx.directives.Has("ccall"):
		fn.Cdef = true
		fn.Overridable = true
	case ctx.directives.Has("cfunc"):
		if ctx.inPyClass {
			ctx.c.Sink.Errorf(fn.Position(), "cfunc directive is not allowed here")
		}
		fn.Cdef = true
		fn.Overridable = false
	}
	v.VisitChildren(ctx.body(false), n)
	return visitor.Keep(n)
}

func adjustClass(v *visitor.Visitor[adjustCtx], ctx adjustCtx, n ast.Node) visitor.Result {
	cls := n.(*ast.ClassDef)
	if ctx.directives.Has("cclass") {
		cls.Cdef = true
	}
	v.VisitChildren(ctx.body(!cls.Cdef), n)
	return visitor.Keep(n)
}
