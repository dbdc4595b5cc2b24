package transform

import (
	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

var decoratorLowerer = visitor.New[*Context]("DecoratorTransform").
	On(lowerDecorators, ast.KindFuncDef, ast.KindClassDef).
	OnExpr(visitor.Identity[*Context]).
	OnNode(visitor.Descend[*Context])

// DecoratorTransform replaces the decorators of defs and Python classes
// with a rebinding after the definition: "@a @b def f" becomes
// "def f; f = a(b(f))".
func DecoratorTransform(c *Context, m *ast.Module) *ast.Module {
	decoratorLowerer.VisitChildren(c, m)
	return m
}

func lowerDecorators(v *visitor.Visitor[*Context], c *Context, n ast.Node) visitor.Result {
	v.VisitChildren(c, n)

	var name string
	var decs *[]*ast.Decorator
	switch x := n.(type) {
	case *ast.FuncDef:
		if x.Cdef {
			return visitor.Keep(n)
		}
		name, decs = x.Name, &x.Decorators
	case *ast.ClassDef:
		if x.Cdef {
			return visitor.Keep(n)
		}
		name, decs = x.Name, &x.Decorators
	}
	if len(*decs) == 0 {
		return visitor.Keep(n)
	}

	pos := n.Position()
	var rhs ast.Expr = ast.NewName(pos, name)
	for i := len(*decs) - 1; i >= 0; i-- {
		rhs = ast.NewCall((*decs)[i].Position(), (*decs)[i].Expr, rhs)
	}
	*decs = nil
	return visitor.Splice(n, ast.NewAssign(pos, ast.NewName(pos, name), rhs))
}
