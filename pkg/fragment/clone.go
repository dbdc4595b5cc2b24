package fragment

import (
	"slices"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

var cloner = visitor.New[struct{}]("Clone").OnNode(cloneNode)

// Clone returns a deep copy of the tree rooted at n. Positions, scope
// handles and flags are copied as they are.
func Clone[T ast.Node](n T) T {
	res := cloner.Visit(struct{}{}, n)
	if len(res) != 1 {
		return n
	}
	return res[0].(T)
}

func cloneNode(v *visitor.Visitor[struct{}], ctx struct{}, n ast.Node) visitor.Result {
	c := n.Copy()
	switch x := c.(type) {
	case *ast.Module:
		x.DirectiveComments = x.DirectiveComments.Copy()
		x.Directives = x.Directives.Copy()
		x.CythonModuleNames = slices.Clone(x.CythonModuleNames)
	case *ast.CompilerDirectives:
		x.Directives = x.Directives.Copy()
	case *ast.FuncDef:
		x.DirectiveLocals = cloneLocals(v, x.DirectiveLocals)
	case *ast.CVarDef:
		x.DirectiveLocals = cloneLocals(v, x.DirectiveLocals)
	case *ast.FromImport:
		x.Names = slices.Clone(x.Names)
	case *ast.FromCImport:
		x.Names = slices.Clone(x.Names)
	case *ast.EnumDef:
		x.Items = slices.Clone(x.Items)
	case *ast.ClassDef:
		if x.BufferDefaults != nil {
			opts := *x.BufferDefaults
			if opts.Dtype != nil {
				opts.Dtype = cloneExpr(v, opts.Dtype)
			}
			x.BufferDefaults = &opts
		}
	case *ast.TemplatedType:
		if x.Options != nil {
			opts := *x.Options
			if opts.Dtype != nil {
				opts.Dtype = cloneExpr(v, opts.Dtype)
			}
			x.Options = &opts
		}
	}
	v.VisitChildren(ctx, c)
	cloneLists(c)
	return visitor.Keep(c)
}

func cloneExpr(v *visitor.Visitor[struct{}], e ast.Expr) ast.Expr {
	return v.Visit(struct{}{}, e)[0].(ast.Expr)
}

func cloneLocals(v *visitor.Visitor[struct{}], m map[string]ast.Expr) map[string]ast.Expr {
	if m == nil {
		return nil
	}
	out := make(map[string]ast.Expr, len(m))
	for k, e := range m {
		out[k] = cloneExpr(v, e)
	}
	return out
}

// cloneLists detaches empty child slices, which VisitChildren leaves
// shared with the original.
func cloneLists(n ast.Node) {
	switch x := n.(type) {
	case *ast.StatList:
		x.Stats = slices.Clip(x.Stats)
	case *ast.Call:
		x.Args = slices.Clip(x.Args)
		x.Keywords = slices.Clip(x.Keywords)
	case *ast.FuncDef:
		x.Args = slices.Clip(x.Args)
		x.Decorators = slices.Clip(x.Decorators)
	case *ast.ClassDef:
		x.Bases = slices.Clip(x.Bases)
		x.Decorators = slices.Clip(x.Decorators)
	}
}
