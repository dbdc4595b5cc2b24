package transform

import (
	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/fragment"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

// clearFragment builds "try: BODY finally: HOLE = None" with one
// clearing assignment per hole.
func clearFragment(name string, holes ...string) *fragment.Fragment {
	var p ast.Pos
	clear := make([]ast.Stmt, len(holes))
	for i, h := range holes {
		clear[i] = ast.NewAssign(p, fragment.ExprHole(h), ast.NewNone(p))
	}
	return fragment.New(name, nil, &ast.TryFinally{
		Body:    ast.NewStatList(p, fragment.StmtHole("BODY")),
		Finally: ast.NewStatList(p, clear...),
	})
}

var (
	clearTarget  = clearFragment("except_target", "EXC")
	clearExcInfo = clearFragment("except_excinfo", "EXCINFO")
	clearBoth    = clearFragment("except_target_excinfo", "EXC", "EXCINFO")
)

var exceptLowerer = visitor.New[*Context]("ExceptTransform").
	On(lowerExcept, ast.KindExceptClause).
	OnExpr(visitor.Identity[*Context]).
	OnNode(visitor.Descend[*Context])

// ExceptTransform unbinds the targets of an except clause when the
// clause is left, as Python 3 does. It does nothing below language
// level 3.
func ExceptTransform(c *Context, m *ast.Module) *ast.Module {
	if m.Directives.Int("language_level") != 3 {
		return m
	}
	exceptLowerer.VisitChildren(c, m)
	return m
}

func lowerExcept(v *visitor.Visitor[*Context], c *Context, n ast.Node) visitor.Result {
	clause := n.(*ast.ExceptClause)
	v.VisitChildren(c, n, "body")

	exprs := map[string]ast.Expr{}
	var frag *fragment.Fragment
	switch {
	case clause.Target != nil && clause.ExcInfoTarget != nil:
		frag = clearBoth
	case clause.Target != nil:
		frag = clearTarget
	case clause.ExcInfoTarget != nil:
		frag = clearExcInfo
	default:
		return visitor.Keep(n)
	}
	if clause.Target != nil {
		exprs["EXC"] = fragment.Clone(clause.Target)
	}
	if clause.ExcInfoTarget != nil {
		exprs["EXCINFO"] = fragment.Clone(clause.ExcInfoTarget)
	}
	exp := frag.Substitute(clause.Position(), fragment.Args{
		Stmts: map[string]ast.Stmt{"BODY": clause.Body},
		Exprs: exprs,
	})
	clause.Body = ast.NewStatList(clause.Position(), exp.Stats...)
	return visitor.Keep(n)
}
